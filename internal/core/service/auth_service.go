package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

const (
	minPasswordLength = 6
	dummyPassword     = "registry-login-dummy"
)

// AuthService implements registration and login.
type AuthService struct {
	repo    ports.UserRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenIssuer
	limiter ports.LoginLimiter
	audit   ports.AuditRecorder
	log     zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the credential store, hasher and token issuer.
// limiter and audit may be nil.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	limiter ports.LoginLimiter,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		limiter: limiter,
		audit:   audit,
		log:     log,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	name := strings.TrimSpace(in.Name)
	cid := strings.TrimSpace(in.CID)
	if name == "" || strings.TrimSpace(in.Phone) == "" || cid == "" {
		return nil, domain.Invalid("fields required: name, phone, cid")
	}
	phone, ok := domain.CanonicalPhone(in.Phone)
	if !ok {
		return nil, domain.Invalid("phone must be a valid Bhutan phone number")
	}
	if !domain.IsCID(cid) {
		return nil, domain.Invalid("cid must be exactly 11 digits")
	}

	role := domain.RoleConsumer
	if in.Role != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	existing, err := s.repo.FindByPhoneOrCID(ctx, phone, cid)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	password := domain.NoPassword()
	if in.Password != "" {
		if len(in.Password) < minPasswordLength {
			return nil, domain.Invalid("password must be at least %d characters", minPasswordLength)
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("register: hash password: %w", err)
		}
		password = domain.HashedPassword(hash)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Identity{
		Name:      name,
		Phone:     phone,
		CID:       cid,
		Role:      role,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, domain.AuditCreate, entityUser, created.ID)
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login accepts a CID or a phone number in any accepted form. An 11-digit
// identifier is looked up as a CID first and as a phone only when no
// identity holds that CID.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *domain.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", nil, domain.Invalid("phone or cid is required")
	}
	key := throttleKey(identifier)

	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
		} else if blocked {
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	identity, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.verifyDummy(password)
			s.loginFailed(ctx, key)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	hash, ok := identity.Password.Hash()
	if !ok {
		s.verifyDummy(password)
		s.loginFailed(ctx, key)
		return "", nil, domain.ErrPasswordNotSet
	}
	if !s.hasher.Verify(password, hash) || password == "" {
		s.loginFailed(ctx, key)
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.ClaimsFor(identity))
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, key); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	s.log.Info().Str("user_id", identity.ID).Msg("login succeeded")
	return token, identity, nil
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.Identity, error) {
	phone, isPhone := domain.CanonicalPhone(identifier)
	if domain.IsCID(identifier) {
		identity, err := s.repo.FindByPhoneOrCID(ctx, "", identifier)
		if err == nil || !errors.Is(err, domain.ErrNotFound) || !isPhone {
			return identity, err
		}
	}
	if !isPhone {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByPhoneOrCID(ctx, phone, "")
}

// verifyDummy spends one hash comparison so that unknown identifiers and
// password-less identities take as long as a wrong password.
func (s *AuthService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		s.hasher.Verify(password, s.dummyHash)
	}
}

// throttleKey counts failures per CID or per canonical phone, so every
// spelling of one number shares a counter.
func throttleKey(identifier string) string {
	if domain.IsCID(identifier) {
		return identifier
	}
	if phone, ok := domain.CanonicalPhone(identifier); ok {
		return phone
	}
	return identifier
}

func (s *AuthService) loginFailed(ctx context.Context, identifier string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, identifier); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}
