package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
	"github.com/candycraft/sweetshop-api/internal/core/ports"
)

const identityKey = "identity"

// Authenticate requires a bearer token. A missing token is Unauthenticated; a
// token that fails verification is Forbidden. On success the decoded identity
// is attached to the request context.
func Authenticate(validator ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.Errorf(domain.ErrUnauthenticated, "Access token required")
			}

			identity, err := validator.ValidateToken(token)
			if err != nil {
				return domain.Errorf(domain.ErrForbidden, "Invalid or expired token")
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// SetIdentity attaches identity to the request context.
func SetIdentity(c echo.Context, identity *domain.Identity) {
	c.Set(identityKey, identity)
}

// Identity returns the identity attached by Authenticate.
func Identity(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(identityKey).(*domain.Identity)
	return id, ok && id != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
