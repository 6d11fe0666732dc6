package payment

import (
	"context"

	"github.com/dukapos/backend/internal/domain/order"
	"github.com/dukapos/backend/internal/domain/payment"
)

// TransactionScope provides transactional access to the repositories a
// settlement touches. Finalizing a payment and recomputing the order-level
// payment status happen in one transaction, with the order row locked.
type TransactionScope interface {
	// Execute runs the given function within a database transaction
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction
type TransactionalRepositories interface {
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() payment.Repository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
}

// NoOpTransactionScope runs the function without a real transaction
type NoOpTransactionScope struct {
	paymentRepo payment.Repository
	orderRepo   order.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(paymentRepo payment.Repository, orderRepo order.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() payment.Repository {
	return s.paymentRepo
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
