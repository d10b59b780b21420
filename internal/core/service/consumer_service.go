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

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	defaultSortField = "createdAt"
)

var consumerSortFields = map[string]struct{}{
	"createdAt":      {},
	"householdId":    {},
	"meterNumber":    {},
	"connectionDate": {},
}

type ConsumerService struct {
	repo   ports.ConsumerRepository
	users  ports.UserRepository
	gewogs ports.GewogRepository
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewConsumerService(
	repo ports.ConsumerRepository,
	users ports.UserRepository,
	gewogs ports.GewogRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *ConsumerService {
	return &ConsumerService{repo: repo, users: users, gewogs: gewogs, audit: audit, log: log}
}

func (s *ConsumerService) Create(ctx context.Context, c *domain.Consumer) (*domain.Consumer, error) {
	if err := validateConsumer(c); err != nil {
		return nil, err
	}
	if err := s.requireReferences(ctx, &c.HouseholdHeadID, &c.Address.GewogID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, domain.AuditCreate, entityConsumer, created.ID)
	s.log.Info().Str("consumer_id", created.ID).Str("household_id", created.HouseholdID).Msg("consumer created")
	return created, nil
}

func (s *ConsumerService) Get(ctx context.Context, id string) (*domain.Consumer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ConsumerService) List(ctx context.Context, in ports.ListConsumersInput) (*ports.ListConsumersResult, error) {
	if in.Status != "" && !domain.ConsumerStatus(in.Status).Valid() {
		return nil, domain.Invalid("unknown status filter %q", in.Status)
	}
	if in.TariffCategory != "" && !domain.TariffCategory(in.TariffCategory).Valid() {
		return nil, domain.Invalid("unknown tariffCategory filter %q", in.TariffCategory)
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	sortBy := in.SortBy
	if _, ok := consumerSortFields[sortBy]; !ok {
		sortBy = defaultSortField
	}

	items, total, err := s.repo.List(ctx, ports.ConsumerFilter{
		GewogID:        in.GewogID,
		Status:         in.Status,
		TariffCategory: in.TariffCategory,
		Search:         strings.TrimSpace(in.Search),
		SortBy:         sortBy,
		Ascending:      strings.EqualFold(in.Order, "asc"),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list consumers: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListConsumersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *ConsumerService) Update(ctx context.Context, id string, p domain.ConsumerPatch) (*domain.Consumer, error) {
	if err := validateConsumerPatch(p); err != nil {
		return nil, err
	}
	if err := s.requireReferences(ctx, p.HouseholdHeadID, p.GewogID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateByID(ctx, id, p)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, domain.AuditUpdate, entityConsumer, id)
	return updated, nil
}

func (s *ConsumerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, domain.AuditDelete, entityConsumer, id)
	s.log.Info().Str("consumer_id", id).Msg("consumer deleted")
	return nil
}

// requireReferences checks that the referenced household head and gewog
// exist. Nil pointers are skipped.
func (s *ConsumerService) requireReferences(ctx context.Context, headID, gewogID *string) error {
	if headID != nil {
		if _, err := s.users.FindByID(ctx, *headID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Invalid("householdHead %s does not exist", *headID)
			}
			return fmt.Errorf("lookup household head: %w", err)
		}
	}
	if gewogID != nil {
		if _, err := s.gewogs.FindByID(ctx, *gewogID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Invalid("gewog %s does not exist", *gewogID)
			}
			return fmt.Errorf("lookup gewog: %w", err)
		}
	}
	return nil
}

func validateConsumer(c *domain.Consumer) error {
	c.HouseholdID = strings.TrimSpace(c.HouseholdID)
	c.MeterNumber = strings.TrimSpace(c.MeterNumber)
	c.Address.Village = strings.TrimSpace(c.Address.Village)
	c.Address.HouseNumber = strings.TrimSpace(c.Address.HouseNumber)

	switch {
	case c.HouseholdID == "", c.HouseholdHeadID == "", c.Address.GewogID == "",
		c.Address.Village == "", c.Address.HouseNumber == "", c.MeterNumber == "":
		return domain.Invalid("fields required: householdId, householdHead, address.gewog, address.village, address.houseNumber, meterNumber")
	case c.FamilySize < 1:
		return domain.Invalid("familySize must be at least 1")
	case c.ConnectionDate.IsZero():
		return domain.Invalid("connectionDate is required")
	case !c.ConnectionType.Valid():
		return domain.Invalid("unknown connectionType %q", c.ConnectionType)
	case !c.Status.Valid():
		return domain.Invalid("unknown status %q", c.Status)
	case !c.TariffCategory.Valid():
		return domain.Invalid("unknown tariffCategory %q", c.TariffCategory)
	}
	return nil
}

func validateConsumerPatch(p domain.ConsumerPatch) error {
	for field, v := range map[string]*string{
		"householdId":         p.HouseholdID,
		"householdHead":       p.HouseholdHeadID,
		"address.gewog":       p.GewogID,
		"address.village":     p.Village,
		"address.houseNumber": p.HouseNumber,
		"meterNumber":         p.MeterNumber,
	} {
		if v == nil {
			continue
		}
		*v = strings.TrimSpace(*v)
		if *v == "" {
			return domain.Invalid("%s cannot be empty", field)
		}
	}

	switch {
	case p.FamilySize != nil && *p.FamilySize < 1:
		return domain.Invalid("familySize must be at least 1")
	case p.ConnectionDate != nil && p.ConnectionDate.IsZero():
		return domain.Invalid("connectionDate cannot be empty")
	case p.ConnectionType != nil && !p.ConnectionType.Valid():
		return domain.Invalid("unknown connectionType %q", *p.ConnectionType)
	case p.Status != nil && !p.Status.Valid():
		return domain.Invalid("unknown status %q", *p.Status)
	case p.TariffCategory != nil && !p.TariffCategory.Valid():
		return domain.Invalid("unknown tariffCategory %q", *p.TariffCategory)
	}
	return nil
}
