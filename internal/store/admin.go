package store

import (
	"context"

	"github.com/weilandt/circ-api/internal/domain"
)

// AdminStore defines the interface for admin credential persistence.
type AdminStore interface {
	// Create saves a new admin account.
	// Returns ErrUsernameExists if the name is already taken.
	Create(ctx context.Context, admin *domain.Admin) error

	// GetByName retrieves an admin by name, case-insensitively.
	// Returns ErrAdminNotFound if the admin does not exist.
	GetByName(ctx context.Context, name string) (*domain.Admin, error)

	// List returns all admin accounts.
	List(ctx context.Context) ([]*domain.Admin, error)
}
