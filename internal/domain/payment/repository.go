package payment

import (
	"context"
	"time"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the persistence port for payments. The terminal
// transition methods are compare-and-set: they succeed only if the row is
// still PENDING, and report shared.ErrConcurrencyConflict when another
// trigger already finalized the payment.
type Repository interface {
	// FindByID loads a payment
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByCheckoutRequestID loads a payment by its gateway correlation id
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*Payment, error)

	// FindByOrder returns all payment attempts for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)

	// FindStalePending returns PENDING mobile-money payments initiated
	// before the cutoff, oldest first, for the reconciliation sweep
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*Payment, error)

	// Save persists a payment
	Save(ctx context.Context, p *Payment) error

	// SettleIfPending atomically moves PENDING -> SETTLED. Returns
	// shared.ErrConcurrencyConflict if the payment was already terminal.
	SettleIfPending(ctx context.Context, p *Payment) error

	// FailIfPending atomically moves PENDING -> FAILED or CANCELLED
	// according to p.Status. Returns shared.ErrConcurrencyConflict if the
	// payment was already terminal.
	FailIfPending(ctx context.Context, p *Payment) error

	// SumSettledByOrder returns the sum of settled amounts for an order
	SumSettledByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	// FindByStatus finds payments in a status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Payment, error)

	// CountByStatus counts payments in a status
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
