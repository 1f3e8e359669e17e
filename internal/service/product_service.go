package service

import (
	"context"
	"errors"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSKUTaken is returned when a create or sku change collides with a sku
// already owned by another product. Maps to HTTP 409.
var ErrSKUTaken = errors.New("sku already used by another product")

// CreateProductInput carries the fields of a new product.
type CreateProductInput struct {
	Name        string
	Price       float64
	SKU         string
	Quantity    int
	Description string
	Category    string
}

// UpdateProductInput is a tagged-optional partial update: only non-nil fields
// are applied, each through the corresponding entity mutator.
type UpdateProductInput struct {
	Name        *string
	Price       *float64
	SKU         *string
	Quantity    *int
	Description *string
	Category    *string
}

// ProductService enforces the cross-record rules the entity and repository
// cannot enforce alone.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	FindAll(ctx context.Context, searchTerm string) ([]*domain.Product, error)
	UpdateFields(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type productService struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new instance of ProductService.
func NewProductService(products repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{products: products, logger: logger}
}

// Create persists a new product. The sku lookup is a best-effort fast path
// for a clean conflict answer; the storage unique constraint remains the
// authoritative guard against concurrent creates.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	existing, err := s.products.FindBySKU(ctx, input.SKU)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check existing sku: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Attempt to create product with duplicate sku", zap.String("sku", input.SKU))
		return nil, ErrSKUTaken
	}

	product, err := domain.NewProduct(input.Name, input.Price, input.SKU,
		input.Quantity, input.Description, input.Category)
	if err != nil {
		return nil, err
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSKU) {
			return nil, ErrSKUTaken
		}
		return nil, err
	}
	return created, nil
}

func (s *productService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *productService) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.products.FindByName(ctx, name)
}

func (s *productService) FindAll(ctx context.Context, searchTerm string) ([]*domain.Product, error) {
	return s.products.FindAll(ctx, searchTerm)
}

// UpdateFields loads the product, applies each supplied field through its
// entity mutator and persists the result. A quantity change is translated
// into a stock delta so the non-negative invariant is exercised on every
// change, not only at creation. An input with no fields set is a no-op that
// returns the unchanged product.
func (s *productService) UpdateFields(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input == (UpdateProductInput{}) {
		return product, nil
	}

	if input.Name != nil {
		if err := product.UpdateName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Price != nil {
		if err := product.UpdatePrice(*input.Price); err != nil {
			return nil, err
		}
	}
	if input.SKU != nil {
		if err := s.applySKUChange(ctx, product, *input.SKU); err != nil {
			return nil, err
		}
	}
	if input.Quantity != nil {
		if err := applyQuantityDelta(product, *input.Quantity); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		product.UpdateDescription(*input.Description)
	}
	if input.Category != nil {
		product.UpdateCategory(*input.Category)
	}

	updated, err := s.products.Update(ctx, id, product)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSKU) {
			return nil, ErrSKUTaken
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			// The row existed moments ago: it was deleted between our load
			// and the write. Surface as a storage failure, not a 404.
			return nil, fmt.Errorf("product %s disappeared during update", id)
		}
		return nil, err
	}
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.products.Delete(ctx, id)
}

// applySKUChange verifies the new sku is not owned by a different product
// before mutating. Changing a sku to its current value succeeds trivially.
func (s *productService) applySKUChange(ctx context.Context, product *domain.Product, newSKU string) error {
	if product.SKU() != newSKU {
		owner, err := s.products.FindBySKU(ctx, newSKU)
		if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
			return fmt.Errorf("failed to check sku owner: %w", err)
		}
		if owner != nil {
			ownerID, idErr := owner.ID()
			productID, _ := product.ID()
			if idErr == nil && ownerID != productID {
				s.logger.Warn("Attempt to reuse sku of another product", zap.String("sku", newSKU))
				return ErrSKUTaken
			}
		}
	}
	return product.UpdateSKU(newSKU)
}

// applyQuantityDelta routes a target quantity through the stock mutators.
func applyQuantityDelta(product *domain.Product, target int) error {
	if target < 0 {
		return domain.NewValidationError("product quantity cannot be negative")
	}
	current := product.Quantity()
	switch {
	case target > current:
		return product.IncreaseStock(target - current)
	case target < current:
		return product.DecreaseStock(current - target)
	default:
		return nil
	}
}
