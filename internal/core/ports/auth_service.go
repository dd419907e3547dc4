package ports

import (
	"context"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // empty means customer
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*domain.PublicUser, error)
}

// TokenValidator decodes and verifies session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*domain.Identity, error)
}
