package domain

import (
	"time"

	"github.com/google/uuid"
)

// MovementType enumerates the two directions of a stock movement.
type MovementType string

const (
	MovementEntrada MovementType = "entrada" // inbound
	MovementSaida   MovementType = "saida"   // outbound
)

// Valid reports whether t is one of the enumerated movement types.
func (t MovementType) Valid() bool {
	return t == MovementEntrada || t == MovementSaida
}

// Movement is an audit record of a stock change: who moved how much of which
// product, in which direction. The timestamp is assigned by storage.
type Movement struct {
	ID        uuid.UUID     `json:"id"`
	ProductID uuid.UUID     `json:"product_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Type      MovementType  `json:"type"`
	Quantity  int           `json:"quantity"`
	Note      *string       `json:"note,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewMovement builds an unpersisted movement, validating its invariants.
func NewMovement(productID, userID uuid.UUID, movementType MovementType, quantity int, note *string) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, NewValidationError("movement requires a product")
	}
	if userID == uuid.Nil {
		return nil, NewValidationError("movement requires a user")
	}
	if !movementType.Valid() {
		return nil, NewValidationError("movement type must be 'entrada' or 'saida'")
	}
	if quantity <= 0 {
		return nil, NewValidationError("moved quantity must be greater than zero")
	}

	return &Movement{
		ProductID: productID,
		UserID:    userID,
		Type:      movementType,
		Quantity:  quantity,
		Note:      note,
	}, nil
}
