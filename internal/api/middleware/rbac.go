package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
)

// AuthorizeRoles lets the request through only when the authenticated identity
// holds one of the allowed roles. Must run after Authenticate.
func AuthorizeRoles(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := Identity(c)
			if !ok {
				return domain.Errorf(domain.ErrUnauthenticated, "Access token required")
			}
			if !identity.HasRole(allowed...) {
				return domain.Errorf(domain.ErrForbidden, "You do not have permission to perform this action")
			}
			return next(c)
		}
	}
}
