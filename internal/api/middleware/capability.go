package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// RequireCapability lets the request through only when the principal's role
// grants c. It must run after Auth.
func RequireCapability(c domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, ok := PrincipalFrom(ctx)
			if !ok {
				return domain.ErrSessionExpired
			}
			if !p.Can(c) {
				return domain.ErrForbidden
			}
			return next(ctx)
		}
	}
}
