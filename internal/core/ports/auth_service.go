package ports

import (
	"context"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
)

// RegisterInput carries registration data. Password may be empty.
type RegisterInput struct {
	Name     string
	Phone    string
	CID      string
	Role     string
	Password string
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	// Login accepts a phone number or cid as identifier.
	Login(ctx context.Context, identifier, password string) (string, *domain.Identity, error)
}

// AccessGate is the request-time access check.
type AccessGate interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
	Authorize(identity *domain.Identity, required ...domain.Role) error
}

// UserService manages the user directory.
type UserService interface {
	List(ctx context.Context) ([]*domain.Identity, error)
	Update(ctx context.Context, id string, patch domain.IdentityPatch) (*domain.Identity, error)
	Delete(ctx context.Context, id string) error
}
