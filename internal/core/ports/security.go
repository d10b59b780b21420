package ports

import (
	"context"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns false for a mismatch or a malformed hash.
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(claims domain.SessionClaims) (string, error)
	// Verify fails with domain.ErrInvalidToken for anything but a valid,
	// unexpired token signed with the configured key and algorithm.
	Verify(token string) (*domain.SessionClaims, error)
}

// LoginLimiter throttles repeated failed logins for one identifier.
type LoginLimiter interface {
	Blocked(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// AuditRecorder accepts audit entries for asynchronous persistence.
type AuditRecorder interface {
	Record(entry domain.AuditEntry)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry domain.AuditEntry) error
}
