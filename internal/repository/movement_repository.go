package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/database"
	"stockroom/internal/domain"

	"github.com/google/uuid"
)

var ErrMovementNotFound = errors.New("movement not found")

// UpdateMovementParams carries the bounded set of movement fields that may be
// corrected after the fact. Only non-nil fields are written.
type UpdateMovementParams struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
	Type      *domain.MovementType
	Quantity  *int
	Note      *string
}

// MovementRepository is the append-mostly ledger of stock movements.
type MovementRepository interface {
	WithTx(tx database.DBTX) MovementRepository
	Create(ctx context.Context, movement *domain.Movement) (*domain.Movement, error)
	// List returns all movements, newest first.
	List(ctx context.Context) ([]*domain.Movement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error)
	// Update writes only the supplied fields, reporting whether a row matched.
	Update(ctx context.Context, id uuid.UUID, params UpdateMovementParams) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type movementRepository struct {
	db database.DBTX
}

// NewMovementRepository creates a new instance of MovementRepository.
func NewMovementRepository(db database.DBTX) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) WithTx(tx database.DBTX) MovementRepository {
	return &movementRepository{db: tx}
}

func (r *movementRepository) Create(ctx context.Context, movement *domain.Movement) (*domain.Movement, error) {
	query := `
		INSERT INTO movements (id, product_id, user_id, type, quantity, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	stored := *movement
	stored.ID = uuid.New()

	err := r.db.QueryRowContext(
		ctx,
		query,
		stored.ID,
		stored.ProductID,
		stored.UserID,
		stored.Type,
		stored.Quantity,
		stored.Note,
		time.Now(),
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create movement: %w", err)
	}

	return &stored, nil
}

func (r *movementRepository) List(ctx context.Context) ([]*domain.Movement, error) {
	query := `
		SELECT id, product_id, user_id, type, quantity, note, created_at
		FROM movements
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	movements := []*domain.Movement{}
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movements: %w", err)
	}

	return movements, nil
}

func (r *movementRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	query := `
		SELECT id, product_id, user_id, type, quantity, note, created_at
		FROM movements
		WHERE id = $1
	`

	movement, err := scanMovement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovementNotFound
		}
		return nil, err
	}
	return movement, nil
}

func (r *movementRepository) Update(ctx context.Context, id uuid.UUID, params UpdateMovementParams) (bool, error) {
	sets := []string{}
	args := []interface{}{}
	argIndex := 1

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if params.ProductID != nil {
		appendSet("product_id", *params.ProductID)
	}
	if params.UserID != nil {
		appendSet("user_id", *params.UserID)
	}
	if params.Type != nil {
		appendSet("type", *params.Type)
	}
	if params.Quantity != nil {
		appendSet("quantity", *params.Quantity)
	}
	if params.Note != nil {
		appendSet("note", *params.Note)
	}

	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE movements SET %s WHERE id = $%d`, strings.Join(sets, ", "), argIndex)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update movement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *movementRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete movement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func scanMovement(row rowScanner) (*domain.Movement, error) {
	movement := &domain.Movement{}
	var note sql.NullString

	err := row.Scan(
		&movement.ID,
		&movement.ProductID,
		&movement.UserID,
		&movement.Type,
		&movement.Quantity,
		&note,
		&movement.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan movement: %w", err)
	}

	if note.Valid {
		movement.Note = &note.String
	}
	return movement, nil
}
