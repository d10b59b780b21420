package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type DzongkhagService struct {
	repo   ports.DzongkhagRepository
	gewogs ports.GewogRepository
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewDzongkhagService(
	repo ports.DzongkhagRepository,
	gewogs ports.GewogRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *DzongkhagService {
	return &DzongkhagService{repo: repo, gewogs: gewogs, audit: audit, log: log}
}

func (s *DzongkhagService) Create(ctx context.Context, d *domain.Dzongkhag) (*domain.Dzongkhag, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	if d.Name == "" || d.Code == "" {
		return nil, domain.Invalid("fields required: name, code, region")
	}
	if !d.Region.Valid() {
		return nil, domain.Invalid("region must be one of: western, central, eastern, southern")
	}
	if d.Area < 0 || d.Population < 0 {
		return nil, domain.Invalid("area and population cannot be negative")
	}

	now := time.Now().UTC()
	d.CreatedBy = domain.ActorFrom(ctx)
	d.CreatedAt, d.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, domain.AuditCreate, entityDzongkhag, created.ID)
	s.log.Info().Str("dzongkhag_id", created.ID).Str("code", created.Code).Msg("dzongkhag created")
	return created, nil
}

func (s *DzongkhagService) Get(ctx context.Context, id string) (*domain.Dzongkhag, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *DzongkhagService) List(ctx context.Context) ([]*domain.Dzongkhag, error) {
	return s.repo.FindAll(ctx)
}

func (s *DzongkhagService) Update(ctx context.Context, id string, p domain.DzongkhagPatch) (*domain.Dzongkhag, error) {
	if p.Name != nil {
		*p.Name = strings.TrimSpace(*p.Name)
		if *p.Name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
	}
	if p.Code != nil {
		*p.Code = strings.ToUpper(strings.TrimSpace(*p.Code))
		if *p.Code == "" {
			return nil, domain.Invalid("code cannot be empty")
		}
	}
	if p.Region != nil && !p.Region.Valid() {
		return nil, domain.Invalid("region must be one of: western, central, eastern, southern")
	}
	if (p.Area != nil && *p.Area < 0) || (p.Population != nil && *p.Population < 0) {
		return nil, domain.Invalid("area and population cannot be negative")
	}

	updated, err := s.repo.UpdateByID(ctx, id, p)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, domain.AuditUpdate, entityDzongkhag, id)
	return updated, nil
}

// Delete refuses to orphan gewogs.
func (s *DzongkhagService) Delete(ctx context.Context, id string) error {
	n, err := s.gewogs.CountByDzongkhag(ctx, id)
	if err != nil {
		return fmt.Errorf("delete dzongkhag: %w", err)
	}
	if n > 0 {
		return domain.ErrDzongkhagInUse
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, domain.AuditDelete, entityDzongkhag, id)
	s.log.Info().Str("dzongkhag_id", id).Msg("dzongkhag deleted")
	return nil
}
