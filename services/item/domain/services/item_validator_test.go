package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/services/item/domain/models"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   models.ItemName
		wantErr bool
	}{
		{"valid name", "Black Shirt", false},
		{"valid name with special chars", "Item-Name_123!@#", false},
		{"leading whitespace allowed", " Hat", false},
		{"only whitespace", "   ", true},
		{"empty", "", true},
		{"tab inside name", "Name\tName", false},
		{"255 multibyte characters", models.ItemName(strings.Repeat("é", 255)), false},
		{"256 characters", models.ItemName(strings.Repeat("x", 256)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	valid := func() *models.Item {
		return &models.Item{
			ID:          uuid.New(),
			Name:        "Hat",
			Price:       models.MustPrice("15"),
			CreatedDate: time.Now().UTC(),
		}
	}

	t.Run("nil item returns error", func(t *testing.T) {
		if err := ValidateItem(nil); err == nil {
			t.Fatal("expected error for nil item")
		}
	})

	t.Run("valid item returns nil", func(t *testing.T) {
		if err := ValidateItem(valid()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("item built by NewItem is valid", func(t *testing.T) {
		if err := ValidateItem(models.NewItem("Hat", "", models.MustPrice("0.5"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*models.Item)
	}{
		{"zero ID", func(i *models.Item) { i.ID = uuid.Nil }},
		{"blank name", func(i *models.Item) { i.Name = "  " }},
		{"name too long", func(i *models.Item) { i.Name = models.ItemName(strings.Repeat("x", 256)) }},
		{"zero price", func(i *models.Item) { i.Price = models.Price{} }},
		{"zero created date", func(i *models.Item) { i.CreatedDate = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name+" returns error", func(t *testing.T) {
			item := valid()
			tt.mutate(item)
			if err := ValidateItem(item); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
