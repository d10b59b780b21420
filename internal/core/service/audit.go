package service

import (
	"context"
	"time"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

const (
	entityUser      = "user"
	entityDzongkhag = "dzongkhag"
	entityGewog     = "gewog"
	entityConsumer  = "consumer"
)

func recordAudit(ctx context.Context, rec ports.AuditRecorder, action domain.AuditAction, entity, id string) {
	if rec == nil {
		return
	}
	rec.Record(domain.AuditEntry{
		ActorID:  domain.ActorFrom(ctx),
		Action:   action,
		Entity:   entity,
		EntityID: id,
		At:       time.Now().UTC(),
	})
}
