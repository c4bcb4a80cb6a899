// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/services/item/domain/models"
)

// ValidateName rejects an ItemName that bypassed models.NewItemName, such as
// one converted directly from a string.
func ValidateName(name models.ItemName) error {
	if _, err := models.NewItemName(name.String()); err != nil {
		return err
	}
	return nil
}

// ValidatePrice rejects a zero-value Price, which can only appear when an
// Item was assembled without models.NewPrice.
func ValidatePrice(price models.Price) error {
	if price.IsZero() {
		return fmt.Errorf("price must be set")
	}
	if _, err := models.NewPrice(price.Decimal()); err != nil {
		return err
	}
	return nil
}

// ValidateItem performs cross-field validation on a fully-constructed Item
// before it is persisted, whether newly created or replaced by an update.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	if err := ValidatePrice(item.Price); err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}

	if item.CreatedDate.IsZero() {
		return fmt.Errorf("created date must be set")
	}

	return nil
}
