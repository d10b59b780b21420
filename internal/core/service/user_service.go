package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

// UserService manages the user directory.
type UserService struct {
	repo  ports.UserRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
}

func NewUserService(repo ports.UserRepository, audit ports.AuditRecorder, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, audit: audit, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.Identity, error) {
	return s.repo.FindAll(ctx)
}

// Update applies a partial change to name, phone, cid or role. Password
// rotation is not exposed.
func (s *UserService) Update(ctx context.Context, id string, patch domain.IdentityPatch) (*domain.Identity, error) {
	if patch.Empty() {
		return nil, domain.Invalid("no valid fields to update")
	}
	if err := normalizeIdentityPatch(&patch); err != nil {
		return nil, err
	}

	var phone, cid string
	if patch.Phone != nil {
		phone = *patch.Phone
	}
	if patch.CID != nil {
		cid = *patch.CID
	}
	if phone != "" || cid != "" {
		taken, err := s.repo.ExistsByPhoneOrCID(ctx, phone, cid, id)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if taken {
			return nil, domain.ErrUserExists
		}
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, domain.AuditUpdate, entityUser, id)
	s.log.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, domain.AuditDelete, entityUser, id)
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func normalizeIdentityPatch(p *domain.IdentityPatch) error {
	for field, v := range map[string]*string{"name": p.Name, "phone": p.Phone, "cid": p.CID} {
		if v == nil {
			continue
		}
		*v = strings.TrimSpace(*v)
		if *v == "" {
			return domain.Invalid("%s cannot be empty", field)
		}
	}
	if p.Phone != nil {
		phone, ok := domain.CanonicalPhone(*p.Phone)
		if !ok {
			return domain.Invalid("phone must be a valid Bhutan phone number")
		}
		*p.Phone = phone
	}
	if p.CID != nil && !domain.IsCID(*p.CID) {
		return domain.Invalid("cid must be exactly 11 digits")
	}
	if p.Role != nil && !p.Role.Valid() {
		return domain.Invalid("role must be one of the known roles")
	}
	return nil
}
