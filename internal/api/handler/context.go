package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/candycraft/sweetshop-api/internal/api/middleware"
	"github.com/candycraft/sweetshop-api/internal/core/domain"
)

// currentIdentity returns the identity attached by the Authenticate
// middleware, or Unauthenticated when the route was mounted without it.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := middleware.Identity(c)
	if !ok {
		return nil, domain.Errorf(domain.ErrUnauthenticated, "Access token required")
	}
	return id, nil
}

// bindJSON decodes the request body. Malformed JSON is a validation failure.
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return domain.Validationf("invalid request body")
	}
	return nil
}
