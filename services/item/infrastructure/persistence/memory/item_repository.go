// Package memory provides an in-process ItemRepository. It keeps the same
// contract as the MongoDB implementation and backs the service and handler tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// ItemRepository stores copies of items in a map guarded by a RWMutex.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]models.Item
}

// NewItemRepository returns a repository pre-populated with seed.
func NewItemRepository(seed ...*models.Item) *ItemRepository {
	r := &ItemRepository{items: make(map[uuid.UUID]models.Item, len(seed))}
	for _, item := range seed {
		r.items[item.ID] = *item
	}
	return r
}

// GetByID returns a copy of the stored item, or ErrItemNotFound.
func (r *ItemRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, itemdomain.ErrItemNotFound
	}
	return &item, nil
}

// List returns copies of every stored item in map order.
func (r *ItemRepository) List(_ context.Context) ([]*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, &item)
	}
	return out, nil
}

// Create stores a copy of item. Returns ErrItemAlreadyExists on a duplicate id.
func (r *ItemRepository) Create(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; ok {
		return itemdomain.ErrItemAlreadyExists
	}
	r.items[item.ID] = *item
	return nil
}

// Update replaces the stored item with the same id. Returns ErrItemNotFound
// when there is none.
func (r *ItemRepository) Update(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return itemdomain.ErrItemNotFound
	}
	r.items[item.ID] = *item
	return nil
}

// Delete removes the item with id. Missing ids are ignored.
func (r *ItemRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// Len returns the number of stored items.
func (r *ItemRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
