package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	pkgcache "github.com/ghuser/inventory/pkg/cache"
	pkgevents "github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/logger"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	itemevents "github.com/ghuser/inventory/services/item/domain/events"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/inventory/services/item/domain/services"
)

const meterName = "github.com/ghuser/inventory/services/item"

// ItemCache is the read-model cache consulted by GetByID.
// Get returns redis.Nil on a miss.
type ItemCache interface {
	Get(ctx context.Context, id uuid.UUID) (*pkgcache.CachedItem, error)
	Set(ctx context.Context, item *pkgcache.CachedItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventPublisher publishes item notifications after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// ItemService orchestrates the Item lifecycle over the repository.
// Reads are served from the cache when available; writes evict it and publish
// an item.* event. Cache and publish failures are logged, never returned.
type ItemService struct {
	repo      repositories.ItemRepository
	cache     ItemCache
	publisher EventPublisher
	log       logger.Logger
	mutations metric.Int64Counter
}

// NewItemService returns an ItemService. cache and publisher may be nil.
func NewItemService(
	repo repositories.ItemRepository,
	cache ItemCache,
	publisher EventPublisher,
	log logger.Logger,
) *ItemService {
	counter, err := otel.Meter(meterName).Int64Counter("inventory.items.mutations",
		metric.WithDescription("Item writes that reached the store, by operation"),
	)
	if err != nil {
		counter = noop.Int64Counter{}
	}
	return &ItemService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log.With("component", "item_service"),
		mutations: counter,
	}
}

// List returns every item, or only those whose name contains nameToMatch
// (case-insensitive) when nameToMatch is not blank. Never returns a nil slice.
func (s *ItemService) List(ctx context.Context, nameToMatch string) ([]*models.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	result := make([]*models.Item, 0, len(items))
	filter := strings.TrimSpace(nameToMatch) != ""
	for _, item := range items {
		if filter && !item.Name.Contains(nameToMatch) {
			continue
		}
		result = append(result, item)
	}

	s.log.InfoContext(ctx, "items retrieved", "count", len(result), "name_to_match", nameToMatch)
	return result, nil
}

// GetByID retrieves an Item using a read-through cache:
//  1. Check Redis first.
//  2. On a miss (or cache error), read the store.
//  3. Write the store result back to the cache.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			item, convErr := fromCached(cached)
			if convErr == nil {
				return item, nil
			}
			s.log.WarnContext(ctx, "discarding unreadable cache entry", "item_id", id, "error", convErr)
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	s.cacheItem(ctx, item)
	return item, nil
}

// Create validates the fields, generates ID and CreatedDate, persists the new
// Item and publishes item.created.
func (s *ItemService) Create(ctx context.Context, name, description string, price decimal.Decimal) (*models.Item, error) {
	itemName, itemPrice, err := buildFields(name, price)
	if err != nil {
		return nil, err
	}

	item := models.NewItem(itemName, description, itemPrice)
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, fmt.Errorf("validate item: %w", err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.recordMutation(ctx, "create")
	s.log.InfoContext(ctx, "item created", "item_id", item.ID)
	s.publish(ctx, itemevents.TopicItemCreated,
		itemevents.NewItemEvent(item.ID, item.Name.String(), item.Price.String()))
	return item, nil
}

// Update replaces Name, Description and Price of an existing Item. ID and
// CreatedDate are preserved. Returns ErrItemNotFound, without writing, if the
// item does not exist.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, name, description string, price decimal.Decimal) (*models.Item, error) {
	itemName, itemPrice, err := buildFields(name, price)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	item.Replace(itemName, description, itemPrice)
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, fmt.Errorf("validate item: %w", err)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.recordMutation(ctx, "update")
	s.evict(ctx, id)
	s.log.InfoContext(ctx, "item updated", "item_id", id)
	s.publish(ctx, itemevents.TopicItemUpdated,
		itemevents.NewItemEvent(item.ID, item.Name.String(), item.Price.String()))
	return item, nil
}

// Delete removes an Item. Returns ErrItemNotFound if no matching item exists.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.recordMutation(ctx, "delete")
	s.evict(ctx, id)
	s.log.InfoContext(ctx, "item deleted", "item_id", id)
	s.publish(ctx, itemevents.TopicItemDeleted, itemevents.NewItemEvent(id, "", ""))
	return nil
}

// SyncCache brings the cache entry for id in line with the store: the current
// record is written, or the entry is evicted when the item no longer exists.
// Safe to call any number of times for the same id.
func (s *ItemService) SyncCache(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}

	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		if err := s.cache.Delete(ctx, id); err != nil {
			return fmt.Errorf("sync cache: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync cache: %w", err)
	}

	if err := s.cache.Set(ctx, toCached(item)); err != nil {
		return fmt.Errorf("sync cache: %w", err)
	}
	return nil
}

func buildFields(name string, price decimal.Decimal) (models.ItemName, models.Price, error) {
	itemName, err := models.NewItemName(name)
	if err != nil {
		return "", models.Price{}, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}
	itemPrice, err := models.NewPrice(price)
	if err != nil {
		return "", models.Price{}, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemPrice, err)
	}
	return itemName, itemPrice, nil
}

func (s *ItemService) recordMutation(ctx context.Context, operation string) {
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func (s *ItemService) cacheItem(ctx context.Context, item *models.Item) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, toCached(item)); err != nil {
		s.log.WarnContext(ctx, "item cache write failed", "item_id", item.ID, "error", err)
	}
}

func (s *ItemService) evict(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "item cache eviction failed", "item_id", id, "error", err)
	}
}

func (s *ItemService) publish(ctx context.Context, topic string, evt itemevents.ItemEvent) {
	if s.publisher == nil {
		return
	}
	msg, err := pkgevents.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to encode item event", "topic", topic, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, topic, msg); err != nil {
		s.log.ErrorContext(ctx, "failed to publish item event",
			"topic", topic, "item_id", evt.ItemID, "error", err)
	}
}

func toCached(item *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
		ID:          item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Price:       item.Price.String(),
		CreatedDate: item.CreatedDate,
	}
}

func fromCached(c *pkgcache.CachedItem) (*models.Item, error) {
	amount, err := decimal.NewFromString(c.Price)
	if err != nil {
		return nil, fmt.Errorf("parse cached price: %w", err)
	}
	return &models.Item{
		ID:          c.ID,
		Name:        models.ItemName(c.Name),
		Description: c.Description,
		Price:       models.RestorePrice(amount),
		CreatedDate: c.CreatedDate,
	}, nil
}
