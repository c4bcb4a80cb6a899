package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published after an Item write succeeds.
const (
	TopicItemCreated = "item.created"
	TopicItemUpdated = "item.updated"
	TopicItemDeleted = "item.deleted"
)

// Topics lists every item topic, in the order subscribers should register them.
var Topics = []string{TopicItemCreated, TopicItemUpdated, TopicItemDeleted}

// EventVersion is the payload schema version; increment on breaking changes.
const EventVersion = 1

// ItemEvent is the payload for all item topics. Name and Price are empty for
// item.deleted.
type ItemEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`
	ItemID     uuid.UUID `json:"item_id"`
	Name       string    `json:"name,omitempty"`
	Price      string    `json:"price,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewItemEvent returns an ItemEvent stamped with a fresh event id and the current time.
func NewItemEvent(itemID uuid.UUID, name, price string) ItemEvent {
	return ItemEvent{
		EventID:    uuid.New(),
		Version:    EventVersion,
		ItemID:     itemID,
		Name:       name,
		Price:      price,
		OccurredAt: time.Now().UTC(),
	}
}
