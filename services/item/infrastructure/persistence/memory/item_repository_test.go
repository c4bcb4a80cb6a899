package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/domain/repositories"
)

var _ repositories.ItemRepository = (*ItemRepository)(nil)

func TestItemRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository()
	item := models.NewItem("Hat", "", models.MustPrice("15"))

	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, item); !errors.Is(err, itemdomain.ErrItemAlreadyExists) {
		t.Fatalf("expected ErrItemAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Hat" {
		t.Fatalf("unexpected name %q", got.Name)
	}

	got.Name = "mutated outside"
	again, _ := repo.GetByID(ctx, item.ID)
	if again.Name != "Hat" {
		t.Fatal("returned item must be a copy")
	}

	again.Replace("Cap", "", models.MustPrice("20"))
	if err := repo.Update(ctx, again); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Update(ctx, models.NewItem("Ghost", "", models.MustPrice("1"))); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Cap" {
		t.Fatalf("unexpected list: %+v", items)
	}

	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, uuid.New()); err != nil {
		t.Fatalf("Delete of missing id should be a no-op, got %v", err)
	}
	if _, err := repo.GetByID(ctx, item.ID); !errors.Is(err, itemdomain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if repo.Len() != 0 {
		t.Fatalf("expected empty repository, got %d", repo.Len())
	}
}

func TestNewItemRepository_Seed(t *testing.T) {
	repo := NewItemRepository(
		models.NewItem("Black Shirt", "", models.MustPrice("10")),
		models.NewItem("Blue Shirt", "", models.MustPrice("12")),
	)
	if repo.Len() != 2 {
		t.Fatalf("expected 2 seeded items, got %d", repo.Len())
	}
}

func TestItemRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	item := models.NewItem("Hat", "", models.MustPrice("15"))
	repo := NewItemRepository(item)

	item.Name = "mutated after seeding"
	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.Name = "mutated after read"

	listed, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Hat" {
		t.Fatalf("stored item changed through a caller's pointer: %+v", listed)
	}
}
