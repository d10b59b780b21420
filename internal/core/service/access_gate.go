package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

// AccessGate authenticates bearer tokens against the credential store and
// authorizes identities against required roles.
type AccessGate struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
}

func NewAccessGate(users ports.UserRepository, tokens ports.TokenIssuer) *AccessGate {
	return &AccessGate{users: users, tokens: tokens}
}

// Authenticate verifies token and re-reads the identity it names, so tokens
// of deleted identities stop working before they expire.
func (g *AccessGate) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	identity, err := g.users.FindByID(ctx, claims.IdentityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrIdentityGone
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return identity, nil
}

// Authorize succeeds when the identity's current role implies at least one
// of required.
func (g *AccessGate) Authorize(identity *domain.Identity, required ...domain.Role) error {
	if identity == nil {
		return domain.ErrUnauthorized
	}
	if !identity.Permissions().Intersects(required...) {
		return domain.ErrInsufficientRole
	}
	return nil
}
