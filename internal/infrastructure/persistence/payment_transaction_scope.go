package persistence

import (
	"context"

	apppay "github.com/dukapos/backend/internal/application/payment"
	"github.com/dukapos/backend/internal/domain/order"
	"github.com/dukapos/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormPaymentTransactionScope implements the payment TransactionScope using
// GORM transactions. Settlement finalizes the payment row and recomputes the
// order-level payment status in one transaction, with the order row locked.
type GormPaymentTransactionScope struct {
	db *gorm.DB
}

// NewGormPaymentTransactionScope creates a new GormPaymentTransactionScope
func NewGormPaymentTransactionScope(db *gorm.DB) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos apppay.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPaymentRepositories{tx: tx})
	})
}

type gormPaymentRepositories struct {
	tx *gorm.DB
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormPaymentRepositories) PaymentRepo() payment.Repository {
	return NewGormPaymentRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormPaymentRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

var _ apppay.TransactionScope = (*GormPaymentTransactionScope)(nil)
var _ apppay.TransactionalRepositories = (*gormPaymentRepositories)(nil)
