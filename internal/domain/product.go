package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Product is the stocked-item aggregate. Fields are unexported so that every
// mutation goes through a named operation and its invariant check; an invalid
// product can never reach the repository layer.
//
// A product starts transient (no identifier) and becomes persisted once the
// repository stores it and reconstructs it with an identifier.
type Product struct {
	id          uuid.UUID
	name        string
	description string
	price       float64
	sku         string
	quantity    int
	category    string
}

// NewProduct constructs a transient product, validating every field invariant.
func NewProduct(name string, price float64, sku string, quantity int, description, category string) (*Product, error) {
	p := &Product{
		description: description,
		category:    category,
	}

	if err := p.UpdateName(name); err != nil {
		return nil, err
	}
	if err := p.UpdatePrice(price); err != nil {
		return nil, err
	}
	if err := p.UpdateSKU(sku); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, NewValidationError("product quantity cannot be negative")
	}
	p.quantity = quantity

	return p, nil
}

// RestoreProduct reconstructs a persisted product from storage. Storage must
// always supply an identifier; a zero id is rejected.
func RestoreProduct(id uuid.UUID, name string, price float64, sku string, quantity int, description, category string) (*Product, error) {
	if id == uuid.Nil {
		return nil, NewValidationError("stored product must have an identifier")
	}

	p, err := NewProduct(name, price, sku, quantity, description, category)
	if err != nil {
		return nil, err
	}
	p.id = id
	return p, nil
}

// ID returns the product identifier. Asking a transient product for its
// identity is a programming error, reported as ErrTransientProduct.
func (p *Product) ID() (uuid.UUID, error) {
	if p.id == uuid.Nil {
		return uuid.Nil, ErrTransientProduct
	}
	return p.id, nil
}

// Persisted reports whether the product has been assigned an identifier.
func (p *Product) Persisted() bool {
	return p.id != uuid.Nil
}

func (p *Product) Name() string        { return p.name }
func (p *Product) Description() string { return p.description }
func (p *Product) Price() float64      { return p.price }
func (p *Product) SKU() string         { return p.sku }
func (p *Product) Quantity() int       { return p.quantity }
func (p *Product) Category() string    { return p.category }

// UpdateName replaces the product name. The name must be non-empty.
func (p *Product) UpdateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("product name cannot be empty")
	}
	p.name = name
	return nil
}

// UpdatePrice replaces the product price. The price must be non-negative.
func (p *Product) UpdatePrice(price float64) error {
	if price < 0 {
		return NewValidationError("product price cannot be negative")
	}
	p.price = price
	return nil
}

// UpdateSKU replaces the product SKU. The SKU must be non-empty; global
// uniqueness is enforced by the service and the storage constraint, since a
// single product cannot see other records.
func (p *Product) UpdateSKU(sku string) error {
	if strings.TrimSpace(sku) == "" {
		return NewValidationError("product sku cannot be empty")
	}
	p.sku = sku
	return nil
}

// UpdateDescription replaces the optional description. An empty string clears it.
func (p *Product) UpdateDescription(description string) {
	p.description = description
}

// UpdateCategory replaces the optional category. An empty string clears it.
func (p *Product) UpdateCategory(category string) {
	p.category = category
}

// IncreaseStock adds amount to the on-hand quantity. Amount must be positive.
func (p *Product) IncreaseStock(amount int) error {
	if amount <= 0 {
		return NewValidationError("amount to add to stock must be greater than zero")
	}
	p.quantity += amount
	return nil
}

// DecreaseStock removes amount from the on-hand quantity. Amount must be
// positive and may not exceed the current quantity; on failure the quantity
// is left unchanged.
func (p *Product) DecreaseStock(amount int) error {
	if amount <= 0 {
		return NewValidationError("amount to remove from stock must be greater than zero")
	}
	if amount > p.quantity {
		return ErrInsufficientStock
	}
	p.quantity -= amount
	return nil
}
