package store

import (
	"context"

	"github.com/weilandt/circ-api/internal/domain"
)

// MediaStore defines the interface for catalog persistence.
type MediaStore interface {
	// Create adds a new item to the catalog.
	// Returns ErrMediaExists if the ID is already in use.
	Create(ctx context.Context, item *domain.MediaItem) error

	// GetByID retrieves a catalog item by its ID.
	// Returns ErrMediaNotFound if the item does not exist.
	GetByID(ctx context.Context, id string) (*domain.MediaItem, error)

	// Update rewrites an existing item's persisted state (copy counts).
	// Returns ErrMediaNotFound if the item does not exist.
	Update(ctx context.Context, item *domain.MediaItem) error

	// List returns the whole catalog in insertion order.
	List(ctx context.Context) ([]*domain.MediaItem, error)
}
