package domain

import (
	"context"
	"time"
)

// SessionClaims is the identity snapshot carried inside a bearer token.
type SessionClaims struct {
	IdentityID string
	Phone      string
	CID        string
	Role       Role
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// ClaimsFor snapshots an identity for token issuance.
func ClaimsFor(i *Identity) SessionClaims {
	return SessionClaims{
		IdentityID: i.ID,
		Phone:      i.Phone,
		CID:        i.CID,
		Role:       i.Role,
	}
}

type actorKey struct{}

// WithActor returns a context carrying the authenticated identity id.
func WithActor(ctx context.Context, identityID string) context.Context {
	return context.WithValue(ctx, actorKey{}, identityID)
}

// ActorFrom returns the identity id stored by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}
