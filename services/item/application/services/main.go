package services

import (
	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/services/item/infrastructure/persistence/mongodb"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all item application services with infrastructure from the Application container.
// A nil Redis or Publisher leaves the service without a cache or without events.
func New(a *app.Application) *Services {
	repo := mongodb.NewItemRepository(a.Db)

	var itemCache ItemCache
	if a.Redis != nil {
		itemCache = cache.NewItemCache(a.Redis)
	}
	var publisher EventPublisher
	if a.Publisher != nil {
		publisher = a.Publisher
	}

	return &Services{
		Item: NewItemService(repo, itemCache, publisher, a.Logger),
	}
}
