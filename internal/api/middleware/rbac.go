package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/druk-utility/consumer-registry/internal/api/metrics"
	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

// RBAC admits the request when the authenticated identity's role implies at
// least one of required. It must run after Auth.
func RBAC(gate ports.AccessGate, required ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := gate.Authorize(IdentityFrom(c), required...); err != nil {
				metrics.AccessDeniedTotal.WithLabelValues(denialReason(err)).Inc()
				return err
			}
			return next(c)
		}
	}
}

func denialReason(err error) string {
	if errors.Is(err, domain.ErrForbidden) {
		return "forbidden"
	}
	return "unauthenticated"
}
