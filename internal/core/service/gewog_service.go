package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type GewogService struct {
	repo       ports.GewogRepository
	dzongkhags ports.DzongkhagRepository
	consumers  ports.ConsumerRepository
	audit      ports.AuditRecorder
	log        zerolog.Logger
}

func NewGewogService(
	repo ports.GewogRepository,
	dzongkhags ports.DzongkhagRepository,
	consumers ports.ConsumerRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *GewogService {
	return &GewogService{repo: repo, dzongkhags: dzongkhags, consumers: consumers, audit: audit, log: log}
}

func (s *GewogService) Create(ctx context.Context, g *domain.Gewog) (*domain.Gewog, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" || g.DzongkhagID == "" {
		return nil, domain.Invalid("fields required: name, dzongkhag")
	}
	if g.Area < 0 || g.Population < 0 {
		return nil, domain.Invalid("area and population cannot be negative")
	}
	if err := s.requireDzongkhag(ctx, g.DzongkhagID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g.CreatedBy = domain.ActorFrom(ctx)
	g.CreatedAt, g.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, g)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, domain.AuditCreate, entityGewog, created.ID)
	s.log.Info().Str("gewog_id", created.ID).Str("dzongkhag_id", created.DzongkhagID).Msg("gewog created")
	return created, nil
}

func (s *GewogService) Get(ctx context.Context, id string) (*domain.Gewog, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *GewogService) List(ctx context.Context, dzongkhagID string) ([]*domain.Gewog, error) {
	return s.repo.FindAll(ctx, dzongkhagID)
}

func (s *GewogService) Update(ctx context.Context, id string, p domain.GewogPatch) (*domain.Gewog, error) {
	if p.Name != nil {
		*p.Name = strings.TrimSpace(*p.Name)
		if *p.Name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
	}
	if (p.Area != nil && *p.Area < 0) || (p.Population != nil && *p.Population < 0) {
		return nil, domain.Invalid("area and population cannot be negative")
	}
	if p.DzongkhagID != nil {
		if err := s.requireDzongkhag(ctx, *p.DzongkhagID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateByID(ctx, id, p)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, domain.AuditUpdate, entityGewog, id)
	return updated, nil
}

// Delete refuses to orphan consumers.
func (s *GewogService) Delete(ctx context.Context, id string) error {
	n, err := s.consumers.CountByGewog(ctx, id)
	if err != nil {
		return fmt.Errorf("delete gewog: %w", err)
	}
	if n > 0 {
		return domain.ErrGewogInUse
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, domain.AuditDelete, entityGewog, id)
	s.log.Info().Str("gewog_id", id).Msg("gewog deleted")
	return nil
}

func (s *GewogService) requireDzongkhag(ctx context.Context, id string) error {
	if _, err := s.dzongkhags.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invalid("dzongkhag %s does not exist", id)
		}
		return fmt.Errorf("lookup dzongkhag: %w", err)
	}
	return nil
}
