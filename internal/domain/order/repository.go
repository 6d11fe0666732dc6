package order

import (
	"context"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the persistence port for orders
type Repository interface {
	// FindByID loads an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate loads an order holding its row lock for the
	// duration of the enclosing transaction. Payment aggregation and
	// status transitions run under this lock.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber loads an order by its business key
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByCustomer finds a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders in a given status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)

	// GenerateOrderNumber returns the next order number
	GenerateOrderNumber(ctx context.Context) (string, error)

	// Save persists the order and its items
	Save(ctx context.Context, order *Order) error

	// Count returns the total number of orders
	Count(ctx context.Context) (int64, error)
}
