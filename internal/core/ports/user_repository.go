package ports

import (
	"context"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// Create persists a new user. Fails with domain.ErrDuplicateEmail when the
	// (normalized) email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns the user including its password hash.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateCredentials(ctx context.Context, id, passwordHash string, role domain.Role) error
}
