package handlers

import (
	"encoding/json"
	"testing"

	"github.com/ghuser/inventory/services/item/domain/models"
)

func TestNewItemResponse(t *testing.T) {
	item := models.NewItem(models.ItemName("Hat"), "Wool", models.MustPrice("15.50"))

	got := NewItemResponse(item)

	if got.ID != item.ID || got.Name != "Hat" || got.Description != "Wool" {
		t.Errorf("unexpected response: %+v", got)
	}
	if !got.Price.Equal(item.Price.Decimal()) {
		t.Errorf("price: got %s", got.Price)
	}
	if !got.CreatedDate.Equal(item.CreatedDate) {
		t.Errorf("createdDate: got %s", got.CreatedDate)
	}
}

func TestItemResponse_JSON(t *testing.T) {
	item := models.NewItem(models.ItemName("Hat"), "", models.MustPrice("15"))

	data, err := json.Marshal(NewItemResponse(item))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["price"]) != "15" {
		t.Errorf("price should be a bare number, got %s", raw["price"])
	}
	if string(raw["description"]) != `""` {
		t.Errorf("description should be present and empty, got %s", raw["description"])
	}
	if _, ok := raw["createdDate"]; !ok {
		t.Error("missing createdDate")
	}
}

func TestNewItemResponses_NeverNil(t *testing.T) {
	if got := NewItemResponses(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
