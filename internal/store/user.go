package store

import (
	"context"

	"github.com/weilandt/circ-api/internal/domain"
)

// UserStore defines the interface for member persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrUsernameExists if the name is already taken
	// (names are compared case-insensitively).
	Create(ctx context.Context, user *domain.User) error

	// GetByName retrieves a user by name, case-insensitively.
	// Returns ErrUserNotFound if the user does not exist.
	// The returned user carries its loan records.
	GetByName(ctx context.Context, name string) (*domain.User, error)

	// Update rewrites an existing user's persisted state, including the
	// fine balance and the posted flags on its loan records.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by name, along with its loan
	// records. Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, name string) error

	// List returns all users in registration order.
	List(ctx context.Context) ([]*domain.User, error)
}
