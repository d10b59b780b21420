package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

const collectionAudit = "audit_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

// Insert appends one entry to the audit_events collection.
func (r *AuditRepository) Insert(ctx context.Context, e domain.AuditEntry) error {
	doc := bson.M{
		"action":      string(e.Action),
		"entity":      e.Entity,
		"entityId":    e.EntityID,
		"at":          e.At.UTC(),
		"processedAt": time.Now().UTC(),
	}
	if e.ActorID != "" {
		doc["actorId"] = e.ActorID
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
