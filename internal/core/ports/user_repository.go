package ports

import (
	"context"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByPhoneOrCID returns the identity matching phone or cid.
	FindByPhoneOrCID(ctx context.Context, phone, cid string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	FindAll(ctx context.Context) ([]*domain.Identity, error)
	// Create fails with domain.ErrUserExists when phone or cid is taken.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	UpdateByID(ctx context.Context, id string, patch domain.IdentityPatch) (*domain.Identity, error)
	DeleteByID(ctx context.Context, id string) error
	// ExistsByPhoneOrCID reports whether another identity (id != excludeID)
	// already uses phone or cid. Empty values are ignored.
	ExistsByPhoneOrCID(ctx context.Context, phone, cid, excludeID string) (bool, error)
}
