package repository

import (
	"context"
	"errors"
	"testing"

	"stockroom/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Property: a created product reads back with the same attributes.
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	repo := NewProductRepository(testDB, zap.NewNop())

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, price float64, quantity int) bool {
			ctx := context.Background()
			sku := "SKU-" + uuid.New().String()

			product, err := domain.NewProduct(name, price, sku, quantity, description, "tools")
			if err != nil {
				t.Logf("FAIL: Could not build product: %v", err)
				return false
			}

			created, err := repo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Create failed: %v", err)
				return false
			}
			id, err := created.ID()
			if err != nil {
				t.Logf("FAIL: Created product has no identifier: %v", err)
				return false
			}

			found, err := repo.FindByID(ctx, id)
			if err != nil {
				t.Logf("FAIL: FindByID failed: %v", err)
				return false
			}

			if found.Name() != name || found.Description() != description ||
				found.SKU() != sku || found.Quantity() != quantity ||
				found.Category() != "tools" {
				t.Logf("FAIL: Attributes not preserved: %+v", found)
				return false
			}
			// The price column is DECIMAL(12,2); compare at that precision.
			if diff := found.Price() - price; diff > 0.005 || diff < -0.005 {
				t.Logf("FAIL: Price not preserved: %v != %v", found.Price(), price)
				return false
			}
			return true
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9 ]{0,30}`),
		gen.RegexMatch(`[A-Za-z0-9 ]{0,50}`),
		gen.Float64Range(0, 99999),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepositoryDuplicateSKU(t *testing.T) {
	repo := NewProductRepository(testDB, zap.NewNop())
	ctx := context.Background()
	sku := "DUP-" + uuid.New().String()

	first, err := domain.NewProduct("First", 1, sku, 0, "", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second, err := domain.NewProduct("Second", 2, sku, 0, "", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := repo.Create(ctx, second); !errors.Is(err, ErrDuplicateSKU) {
		t.Fatalf("expected ErrDuplicateSKU, got %v", err)
	}
}

func TestProductRepositoryFindBySKU(t *testing.T) {
	repo := NewProductRepository(testDB, zap.NewNop())
	ctx := context.Background()
	sku := "FIND-" + uuid.New().String()

	product, _ := domain.NewProduct("Findable", 5, sku, 2, "", "")
	if _, err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindBySKU(ctx, sku)
	if err != nil {
		t.Fatalf("FindBySKU: %v", err)
	}
	if found.SKU() != sku {
		t.Fatalf("wrong product: %s", found.SKU())
	}

	if _, err := repo.FindBySKU(ctx, "missing-"+uuid.New().String()); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepositoryFindByName(t *testing.T) {
	repo := NewProductRepository(testDB, zap.NewNop())
	ctx := context.Background()

	marker := uuid.New().String()[:8]
	product, _ := domain.NewProduct("Precision Caliper "+marker, 49.9, "CAL-"+marker, 1, "", "")
	if _, err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Case-insensitive substring match.
	found, err := repo.FindByName(ctx, "CALIPER "+marker)
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if found.Name() != "Precision Caliper "+marker {
		t.Fatalf("wrong product: %s", found.Name())
	}

	if _, err := repo.FindByName(ctx, "no-such-"+marker); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepositoryFindAllSearch(t *testing.T) {
	repo := NewProductRepository(testDB, zap.NewNop())
	ctx := context.Background()

	marker := uuid.New().String()[:8]
	byName, _ := domain.NewProduct("Drill "+marker, 1, "D1-"+uuid.New().String(), 0, "", "")
	bySKU, _ := domain.NewProduct("Other", 1, "SKU-"+marker, 0, "", "")
	byDescription, _ := domain.NewProduct("Another", 1, "D3-"+uuid.New().String(), 0, "contains "+marker, "")
	unrelated, _ := domain.NewProduct("Unrelated", 1, "D4-"+uuid.New().String(), 0, "", "")
	for _, p := range []*domain.Product{byName, bySKU, byDescription, unrelated} {
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	results, err := repo.FindAll(ctx, marker)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3 (name, sku and description matches)", len(results))
	}
	for _, product := range results {
		if product.Name() == "Unrelated" {
			t.Fatal("unrelated product matched the search")
		}
	}
}

func TestProductRepositoryUpdate(t *testing.T) {
	repo := NewProductRepository(testDB, zap.NewNop())
	ctx := context.Background()

	product, _ := domain.NewProduct("Before", 1, "UPD-"+uuid.New().String(), 3, "", "")
	created, err := repo.Create(ctx, product)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id, _ := created.ID()

	if err := created.UpdateName("After"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := created.IncreaseStock(2); err != nil {
		t.Fatalf("IncreaseStock: %v", err)
	}

	updated, err := repo.Update(ctx, id, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name() != "After" || updated.Quantity() != 5 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := repo.Update(ctx, uuid.New(), created); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepositoryDelete(t *testing.T) {
	repo := NewProductRepository(testDB, zap.NewNop())
	ctx := context.Background()

	product, _ := domain.NewProduct("Doomed", 1, "DEL-"+uuid.New().String(), 0, "", "")
	created, err := repo.Create(ctx, product)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id, _ := created.ID()

	deleted, err := repo.Delete(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}

	deleted, err = repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if deleted {
		t.Fatal("delete of a missing row reported a match")
	}

	if _, err := repo.FindByID(ctx, id); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
}
