package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/druk-utility/consumer-registry/internal/api/metrics"
	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

const identityKey = "identity"

// Auth resolves the bearer token to a live identity and stores it on the
// echo context. The identity id is also placed on the request context so
// services can attribute writes.
func Auth(gate ports.AccessGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return err
			}

			identity, err := gate.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return err
			}

			c.Set(identityKey, identity)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithActor(req.Context(), identity.ID)))
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(identityKey).(*domain.Identity)
	return identity
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", domain.ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", domain.ErrInvalidToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}
