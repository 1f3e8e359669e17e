package service

import (
	"context"
	"errors"
	"fmt"

	"stockroom/internal/database"
	"stockroom/internal/domain"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxRunner executes a function inside a database transaction. Implemented by
// *database.Service.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx database.DBTX) error) error
}

// CreateMovementInput carries the fields of a new stock movement.
type CreateMovementInput struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	Type      domain.MovementType
	Quantity  int
	Note      *string
}

// MovementService records entradas and saídas. Recording a movement also
// applies the stock delta to the referenced product, so the ledger and the
// on-hand quantity move together or not at all.
type MovementService interface {
	Create(ctx context.Context, input CreateMovementInput) (*domain.Movement, error)
	List(ctx context.Context) ([]*domain.Movement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error)
	// UpdateFields corrects a ledger entry in place; it does not re-apply
	// stock deltas. Reports whether a row matched.
	UpdateFields(ctx context.Context, id uuid.UUID, params repository.UpdateMovementParams) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type movementService struct {
	tx        TxRunner
	movements repository.MovementRepository
	products  repository.ProductRepository
	logger    *zap.Logger
}

// NewMovementService creates a new instance of MovementService.
func NewMovementService(
	tx TxRunner,
	movements repository.MovementRepository,
	products repository.ProductRepository,
	logger *zap.Logger,
) MovementService {
	return &movementService{
		tx:        tx,
		movements: movements,
		products:  products,
		logger:    logger,
	}
}

// Create validates the movement, applies the quantity change to the product
// and persists both in one transaction. A saída larger than the on-hand
// stock fails with domain.ErrInsufficientStock and writes nothing.
func (s *movementService) Create(ctx context.Context, input CreateMovementInput) (*domain.Movement, error) {
	movement, err := domain.NewMovement(input.ProductID, input.UserID, input.Type, input.Quantity, input.Note)
	if err != nil {
		return nil, err
	}

	var created *domain.Movement
	err = s.tx.WithinTx(ctx, func(tx database.DBTX) error {
		products := s.products.WithTx(tx)
		movements := s.movements.WithTx(tx)

		product, err := products.FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		switch input.Type {
		case domain.MovementEntrada:
			err = product.IncreaseStock(input.Quantity)
		case domain.MovementSaida:
			err = product.DecreaseStock(input.Quantity)
		}
		if err != nil {
			return err
		}

		if _, err := products.Update(ctx, input.ProductID, product); err != nil {
			return fmt.Errorf("failed to apply stock change: %w", err)
		}

		created, err = movements.Create(ctx, movement)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Movement recorded",
		zap.String("movement_id", created.ID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.String("type", string(input.Type)),
		zap.Int("quantity", input.Quantity),
	)
	return created, nil
}

func (s *movementService) List(ctx context.Context) ([]*domain.Movement, error) {
	return s.movements.List(ctx)
}

func (s *movementService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	return s.movements.FindByID(ctx, id)
}

func (s *movementService) UpdateFields(ctx context.Context, id uuid.UUID, params repository.UpdateMovementParams) (bool, error) {
	if params.Type != nil && !params.Type.Valid() {
		return false, domain.NewValidationError("movement type must be 'entrada' or 'saida'")
	}
	if params.Quantity != nil && *params.Quantity <= 0 {
		return false, domain.NewValidationError("moved quantity must be greater than zero")
	}
	if params == (repository.UpdateMovementParams{}) {
		// Nothing to change; still report whether the entry exists.
		if _, err := s.movements.FindByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrMovementNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
	return s.movements.Update(ctx, id, params)
}

func (s *movementService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.movements.Delete(ctx, id)
}
