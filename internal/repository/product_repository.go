package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/database"
	"stockroom/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("product sku already exists")
)

// ProductRepository defines the data access contract for the product aggregate.
type ProductRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx database.DBTX) ProductRepository

	// Create persists a transient product and returns the persisted instance
	// carrying its new identifier. Returns ErrDuplicateSKU when the sku
	// unique constraint is violated.
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	// FindByName returns the first product whose name contains name,
	// case-insensitively.
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	// FindAll returns every product, or only those whose name, sku or
	// description contain searchTerm when it is non-empty.
	FindAll(ctx context.Context, searchTerm string) ([]*domain.Product, error)
	// Update overwrites the full row with the product's current field values.
	// Returns ErrProductNotFound if no row matched id, ErrDuplicateSKU on a
	// sku constraint violation.
	Update(ctx context.Context, id uuid.UUID, product *domain.Product) (*domain.Product, error)
	// Delete removes the row, reporting whether one matched.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type productRepository struct {
	db     database.DBTX
	logger *zap.Logger
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db database.DBTX, logger *zap.Logger) ProductRepository {
	return &productRepository{db: db, logger: logger}
}

func (r *productRepository) WithTx(tx database.DBTX) ProductRepository {
	return &productRepository{db: tx, logger: r.logger}
}

const productColumns = `id, name, description, price, sku, quantity, category`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (id, name, description, price, sku, quantity, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	// Storage assigns the identifier: the product is transient until here.
	id := uuid.New()
	now := time.Now()

	_, err := r.db.ExecContext(
		ctx,
		query,
		id,
		product.Name(),
		nullable(product.Description()),
		product.Price(),
		product.SKU(),
		product.Quantity(),
		nullable(product.Category()),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return domain.RestoreProduct(id, product.Name(), product.Price(), product.SKU(),
		product.Quantity(), product.Description(), product.Category())
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE sku = $1`, productColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, sku))
}

func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE name ILIKE $1 LIMIT 1`, productColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, "%"+name+"%"))
}

func (r *productRepository) FindAll(ctx context.Context, searchTerm string) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products`, productColumns)
	args := []interface{}{}

	if searchTerm != "" {
		query += ` WHERE name ILIKE $1 OR sku ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+searchTerm+"%")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			// A row that fails reconstruction is skipped rather than
			// aborting the listing: partial results over total failure.
			r.logger.Warn("Skipping unreadable product row", zap.Error(err))
			continue
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) Update(ctx context.Context, id uuid.UUID, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, sku = $5, quantity = $6,
		    category = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		id,
		product.Name(),
		nullable(product.Description()),
		product.Price(),
		product.SKU(),
		product.Quantity(),
		nullable(product.Category()),
		time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	return domain.RestoreProduct(id, product.Name(), product.Price(), product.SKU(),
		product.Quantity(), product.Description(), product.Category())
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *productRepository) scanOne(row *sql.Row) (*domain.Product, error) {
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		id          uuid.UUID
		name        string
		description sql.NullString
		price       float64
		sku         string
		quantity    int
		category    sql.NullString
	)

	if err := row.Scan(&id, &name, &description, &price, &sku, &quantity, &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	product, err := domain.RestoreProduct(id, name, price, sku, quantity, description.String, category.String)
	if err != nil {
		return nil, fmt.Errorf("failed to restore product %s: %w", id, err)
	}
	return product, nil
}

// nullable maps an empty optional string to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
