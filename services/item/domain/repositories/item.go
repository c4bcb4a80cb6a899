package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/services/item/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
// It is the only component allowed to read or write persisted Item state.
type ItemRepository interface {
	// GetByID returns domain.ErrItemNotFound when no item has the given ID.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// List returns every stored item. Order is not guaranteed.
	List(ctx context.Context) ([]*models.Item, error)

	// Create inserts a fully-populated item. Returns domain.ErrItemAlreadyExists
	// if the ID is taken.
	Create(ctx context.Context, item *models.Item) error

	// Update replaces the stored record matching item.ID.
	// Returns domain.ErrItemNotFound if no record matched.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes the item with the given ID. Deleting a missing ID is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error
}
