package inventory

import (
	"context"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product stock persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate finds a product by ID and acquires its row lock for
	// the duration of the surrounding transaction. Every stock mutation must
	// read the product through this method so concurrent movements on the
	// same product serialize instead of overwriting each other.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindLowStock finds products whose low stock alert is raised
	FindLowStock(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateStock writes the stock fields computed under the row lock
	UpdateStock(ctx context.Context, product *Product) error
}

// StockMovementRepository defines the interface for the append-only ledger
type StockMovementRepository interface {
	// Append persists a new ledger row. Movements are never updated or deleted.
	Append(ctx context.Context, movement *StockMovement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByProduct returns the movement history for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// CountByProduct counts movements for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
