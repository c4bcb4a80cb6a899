package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is the sole aggregate of the inventory: a named, priced entry.
type Item struct {
	ID          uuid.UUID
	Name        ItemName
	Description string
	Price       Price
	CreatedDate time.Time
}

// NewItem constructs an Item with a generated ID and the current UTC time.
// CreatedDate is truncated to milliseconds, the precision the store keeps.
func NewItem(name ItemName, description string, price Price) *Item {
	return &Item{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		CreatedDate: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// Replace overwrites the mutable fields. ID and CreatedDate are left untouched.
func (i *Item) Replace(name ItemName, description string, price Price) {
	i.Name = name
	i.Description = description
	i.Price = price
}
