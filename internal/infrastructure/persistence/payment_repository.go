package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dukapos/backend/internal/domain/payment"
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements the payment Repository using GORM.
// SettleIfPending and FailIfPending are compare-and-set updates guarded by
// status = PENDING, so of all the triggers racing to finalize one payment
// (webhook, poll, sweep) exactly one wins at the database.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID loads a payment
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByCheckoutRequestID loads a payment by its gateway correlation id
func (r *GormPaymentRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Where("checkout_request_id = ?", checkoutRequestID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByOrder returns all payment attempts for an order, oldest first
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindStalePending returns PENDING mobile-money payments initiated before the
// cutoff, oldest first
func (r *GormPaymentRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := r.db.WithContext(ctx).
		Where("status = ? AND method = ? AND created_at < ?",
			payment.StatusPending, payment.MethodMobileMoney, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save persists a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SettleIfPending atomically moves PENDING -> SETTLED
func (r *GormPaymentRepository) SettleIfPending(ctx context.Context, p *payment.Payment) error {
	return r.finalizeIfPending(ctx, p)
}

// FailIfPending atomically moves PENDING -> FAILED or CANCELLED
func (r *GormPaymentRepository) FailIfPending(ctx context.Context, p *payment.Payment) error {
	return r.finalizeIfPending(ctx, p)
}

// finalizeIfPending writes the terminal fields only if the row is still
// PENDING. Zero rows affected means another trigger won the race.
func (r *GormPaymentRepository) finalizeIfPending(ctx context.Context, p *payment.Payment) error {
	result := r.db.WithContext(ctx).
		Model(p).
		Where("id = ? AND status = ?", p.ID, payment.StatusPending).
		Updates(map[string]interface{}{
			"status":             p.Status,
			"settled_amount":     p.SettledAmount,
			"gateway_receipt":    p.GatewayReceipt,
			"result_code":        p.ResultCode,
			"result_description": p.ResultDescription,
			"settled_at":         p.SettledAt,
			"failed_at":          p.FailedAt,
			"version":            p.Version,
			"updated_at":         p.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SumSettledByOrder returns the sum of gateway-settled amounts for an order.
// Rows settled before the settled_amount column existed fall back to the
// requested amount.
func (r *GormPaymentRepository) SumSettledByOrder(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Select("COALESCE(SUM(COALESCE(settled_amount, amount)), 0)").
		Where("order_id = ? AND status = ?", orderID, payment.StatusSettled).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// FindByStatus finds payments in a status
func (r *GormPaymentRepository) FindByStatus(ctx context.Context, status payment.Status, filter shared.Filter) ([]payment.Payment, error) {
	var payments []payment.Payment
	query := applyFilter(
		r.db.WithContext(ctx).Model(&payment.Payment{}).
			Where("status = ?", status),
		filter, paymentSortFields, "created_at",
	)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CountByStatus counts payments in a status
func (r *GormPaymentRepository) CountByStatus(ctx context.Context, status payment.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var paymentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"amount":     true,
	"settled_at": true,
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
