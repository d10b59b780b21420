package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// tokenClaims is the signed payload. Field names are part of the token
// contract shared with already-issued tokens.
type tokenClaims struct {
	UserID string `json:"userId"`
	Phone  string `json:"phone"`
	CID    string `json:"cid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer fails with domain.ErrMissingSigningSecret when secret is
// empty. A non-positive ttl falls back to 24h.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, domain.ErrMissingSigningSecret
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *TokenIssuer) configured() bool {
	return i != nil && len(i.secret) > 0
}

// Issue signs claims. IssuedAt and ExpiresAt on the input are ignored and set
// from the issuer's clock and TTL.
func (i *TokenIssuer) Issue(claims domain.SessionClaims) (string, error) {
	if !i.configured() {
		return "", domain.ErrMissingSigningSecret
	}

	now := i.now()
	tc := tokenClaims{
		UserID: claims.IdentityID,
		Phone:  claims.Phone,
		CID:    claims.CID,
		Role:   string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.IdentityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	return t.SignedString(i.secret)
}

// Verify parses token and returns its claims. Only HS256 is accepted and exp
// is mandatory.
func (i *TokenIssuer) Verify(token string) (*domain.SessionClaims, error) {
	if !i.configured() {
		return nil, domain.ErrMissingSigningSecret
	}
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	tc := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, tc, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid || tc.UserID == "" {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.SessionClaims{
		IdentityID: tc.UserID,
		Phone:      tc.Phone,
		CID:        tc.CID,
		Role:       domain.Role(tc.Role),
		ExpiresAt:  tc.ExpiresAt.Time,
	}
	if tc.IssuedAt != nil {
		out.IssuedAt = tc.IssuedAt.Time
	}
	return out, nil
}
