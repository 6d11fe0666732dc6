package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukapos/backend/internal/domain/order"
	"github.com/dukapos/backend/internal/domain/payment"
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultStaleAfter is how long a PENDING mobile payment may sit without a
// gateway outcome before the sweep starts polling for it. STK prompts expire
// gateway-side after about a minute, so two minutes is already overdue.
const DefaultStaleAfter = 2 * time.Minute

// callbackDedupTTL is how long a processed callback key stays in the
// idempotency store. Gateways retry for at most a day.
const callbackDedupTTL = 24 * time.Hour

// ReconciliationService converges payment state from two independent
// triggers: the gateway's webhook and our own status polls. Both normalize
// the gateway outcome into a SettlementNotice and funnel through applyNotice,
// where a compare-and-set on the payment row guarantees exactly one winner.
// The losing trigger observes the conflict and treats it as success.
type ReconciliationService struct {
	txScope        TransactionScope
	paymentRepo    payment.Repository
	orderRepo      order.Repository
	gateway        payment.Gateway
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	staleAfter     time.Duration
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	txScope TransactionScope,
	paymentRepo payment.Repository,
	orderRepo order.Repository,
	gateway payment.Gateway,
	logger *zap.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		txScope:     txScope,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		logger:      logger,
		staleAfter:  DefaultStaleAfter,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReconciliationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the fast-path duplicate filter for webhook
// deliveries. The database CAS remains the authority; the store only saves
// work on obvious replays.
func (s *ReconciliationService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetStaleAfter overrides how long a payment may stay PENDING before the
// sweep polls it
func (s *ReconciliationService) SetStaleAfter(d time.Duration) {
	if d > 0 {
		s.staleAfter = d
	}
}

// InitiateMobilePayment creates a PENDING payment and asks the gateway to
// prompt the customer's phone. If the gateway refuses or is unreachable the
// payment is recorded as FAILED so the attempt stays visible to operators.
func (s *ReconciliationService) InitiateMobilePayment(ctx context.Context, req InitiateMobilePaymentRequest) (*PaymentResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, shared.NewDomainError("ORDER_CLOSED", "Cannot take payment on a closed order")
	}
	if o.PaymentStatus == order.PaymentStatusCompleted {
		return nil, shared.NewDomainError("ALREADY_PAID", "Order is already fully paid")
	}

	p, err := payment.NewPayment(req.OrderID, payment.MethodMobileMoney, req.Amount, "", req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	push, pushErr := s.gateway.InitiateSTKPush(ctx, payment.PushRequest{
		Amount:           req.Amount,
		PhoneNumber:      req.PhoneNumber,
		AccountReference: o.OrderNumber,
		Description:      fmt.Sprintf("Payment for order %s", o.OrderNumber),
	})
	if pushErr != nil {
		// keep a FAILED record of the attempt
		_ = p.MarkFailed(-1, pushErr.Error())
		if saveErr := s.paymentRepo.Save(ctx, p); saveErr != nil {
			s.logger.Error("failed to persist rejected payment attempt",
				zap.String("order_id", req.OrderID.String()),
				zap.Error(saveErr))
		}
		s.publishEvents(ctx, p)
		return nil, pushErr
	}

	if err := p.AttachCheckout(push.CheckoutRequestID); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, p)
	s.logger.Info("mobile payment initiated",
		zap.String("payment_id", p.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("checkout_request_id", p.CheckoutRequestID))

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// RecordCashPayment records a cash payment. Cash has no asynchronous leg:
// the payment is created already settled and the order aggregate is
// recomputed in the same transaction.
func (s *ReconciliationService) RecordCashPayment(ctx context.Context, req RecordCashPaymentRequest) (*PaymentResponse, error) {
	var (
		p *payment.Payment
		o *order.Order
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindByIDForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if o.Status.IsTerminal() {
			return shared.NewDomainError("ORDER_CLOSED", "Cannot take payment on a closed order")
		}
		if o.PaymentStatus == order.PaymentStatusCompleted {
			return shared.NewDomainError("ALREADY_PAID", "Order is already fully paid")
		}

		p, err = payment.NewPayment(req.OrderID, payment.MethodCash, req.Amount, "", "")
		if err != nil {
			return err
		}
		if err := p.MarkSettled("", req.Amount, payment.ResultCodeSuccess, "Cash received", time.Now()); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}

		return s.recomputeOrderLocked(ctx, repos, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, p)
	s.publishOrderEvents(ctx, o)

	resp := ToPaymentResponse(p)
	return &resp, nil
}

// HandleNotice applies a gateway outcome delivered by webhook. Duplicate and
// late deliveries are safe: the payment CAS makes replays no-ops.
func (s *ReconciliationService) HandleNotice(ctx context.Context, notice SettlementNotice) error {
	if notice.CheckoutRequestID == "" {
		return shared.NewDomainError("INVALID_NOTICE", "Notice is missing the checkout request ID")
	}

	var dedupKey string
	if s.idempotency != nil {
		dedupKey = fmt.Sprintf("callback:%s:%d", notice.CheckoutRequestID, notice.ResultCode)
		seen, err := s.idempotency.IsProcessed(ctx, dedupKey)
		if err == nil && seen {
			s.logger.Debug("duplicate callback skipped",
				zap.String("checkout_request_id", notice.CheckoutRequestID))
			return nil
		}
	}

	p, err := s.paymentRepo.FindByCheckoutRequestID(ctx, notice.CheckoutRequestID)
	if err != nil {
		// an unknown checkout id will not become known on redelivery
		if dedupKey != "" && errors.Is(err, shared.ErrNotFound) {
			_, _ = s.idempotency.MarkProcessed(ctx, dedupKey, callbackDedupTTL)
		}
		return err
	}

	if err := s.applyNotice(ctx, p, notice); err != nil {
		// transient failure: leave the key unmarked so the gateway's
		// redelivery gets another run at the CAS
		return err
	}

	if dedupKey != "" {
		_, _ = s.idempotency.MarkProcessed(ctx, dedupKey, callbackDedupTTL)
	}
	return nil
}

// Poll asks the gateway for the current state of a pending payment and, if
// the gateway reports a final outcome, applies it through the same path as
// the webhook.
func (s *ReconciliationService) Poll(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.Status.IsTerminal() {
		resp := ToPaymentResponse(p)
		return &resp, nil
	}
	if p.Method != payment.MethodMobileMoney || p.CheckoutRequestID == "" {
		return nil, shared.NewDomainError("NOT_POLLABLE", "Payment has no gateway leg to poll")
	}

	result, err := s.gateway.QueryStatus(ctx, p.CheckoutRequestID)
	if err != nil {
		return nil, err
	}

	if result.Pending {
		resp := ToPaymentResponse(p)
		return &resp, nil
	}

	notice := SettlementNotice{
		CheckoutRequestID: p.CheckoutRequestID,
		ResultCode:        result.ResultCode,
		ResultDescription: result.ResultDescription,
		Receipt:           result.Receipt,
		Amount:            result.Amount,
		PaidAt:            result.TransactionTime,
	}
	if err := s.applyNotice(ctx, p, notice); err != nil {
		return nil, err
	}

	refreshed, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(refreshed)
	return &resp, nil
}

// SweepStale polls every PENDING mobile payment older than the stale
// window. This is the safety net for webhooks the gateway never delivered.
func (s *ReconciliationService) SweepStale(ctx context.Context, limit int) (*SweepResult, error) {
	if limit <= 0 {
		limit = 100
	}
	cutoff := time.Now().Add(-s.staleAfter)

	stale, err := s.paymentRepo.FindStalePending(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(stale)}
	for _, p := range stale {
		resp, err := s.Poll(ctx, p.ID)
		if err != nil {
			result.Errors++
			s.logger.Warn("stale payment poll failed",
				zap.String("payment_id", p.ID.String()),
				zap.Error(err))
			continue
		}
		switch resp.Status {
		case payment.StatusSettled:
			result.Settled++
		case payment.StatusFailed:
			result.Failed++
		case payment.StatusCancelled:
			result.Cancelled++
		default:
			result.StillPend++
		}
	}

	s.logger.Info("stale payment sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("settled", result.Settled),
		zap.Int("failed", result.Failed),
		zap.Int("cancelled", result.Cancelled),
		zap.Int("still_pending", result.StillPend),
		zap.Int("errors", result.Errors))

	return result, nil
}

// Get returns a payment by id
func (s *ReconciliationService) Get(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

// ListByOrder returns all payment attempts for an order
func (s *ReconciliationService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, ToPaymentResponse(p))
	}
	return responses, nil
}

// applyNotice finalizes a payment from a gateway outcome. The repository
// CAS only succeeds while the row is still PENDING; when the other trigger
// got there first the conflict is swallowed and the call reports success,
// because the payment did reach a final state.
func (s *ReconciliationService) applyNotice(ctx context.Context, p *payment.Payment, notice SettlementNotice) error {
	var o *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindByIDForUpdate(ctx, p.OrderID)
		if err != nil {
			return err
		}

		switch {
		case notice.Succeeded():
			if err := p.MarkSettled(notice.Receipt, notice.Amount, notice.ResultCode, notice.ResultDescription, notice.PaidAt); err != nil {
				return err
			}
			if err := repos.PaymentRepo().SettleIfPending(ctx, p); err != nil {
				return err
			}
		case notice.ResultCode == payment.ResultCodeUserCancelled:
			if err := p.MarkCancelled(notice.ResultCode, notice.ResultDescription); err != nil {
				return err
			}
			if err := repos.PaymentRepo().FailIfPending(ctx, p); err != nil {
				return err
			}
		default:
			if err := p.MarkFailed(notice.ResultCode, notice.ResultDescription); err != nil {
				return err
			}
			if err := repos.PaymentRepo().FailIfPending(ctx, p); err != nil {
				return err
			}
		}

		return s.recomputeOrderLocked(ctx, repos, o)
	})
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		// the other trigger already finalized this payment
		s.logger.Debug("settlement already applied by other trigger",
			zap.String("payment_id", p.ID.String()),
			zap.String("checkout_request_id", notice.CheckoutRequestID))
		return nil
	}
	if err != nil {
		return err
	}

	s.publishEvents(ctx, p)
	s.publishOrderEvents(ctx, o)
	return nil
}

// recomputeOrderLocked rederives the order-level payment status from the
// settled sum. The caller must hold the order's row lock.
func (s *ReconciliationService) recomputeOrderLocked(ctx context.Context, repos TransactionalRepositories, o *order.Order) error {
	settled, err := repos.PaymentRepo().SumSettledByOrder(ctx, o.ID)
	if err != nil {
		return err
	}

	status := order.PaymentStatusForSettledSum(settled, o.Total)
	if status == o.PaymentStatus {
		return nil
	}

	if err := o.SetPaymentStatus(status); err != nil {
		return err
	}
	o.AddDomainEvent(order.NewOrderPaymentStatusChangedEvent(o, settled))
	return repos.OrderRepo().Save(ctx, o)
}

func (s *ReconciliationService) publishEvents(ctx context.Context, p *payment.Payment) {
	if s.eventPublisher == nil || p == nil {
		return
	}
	for _, event := range p.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	p.ClearDomainEvents()
}

func (s *ReconciliationService) publishOrderEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	o.ClearDomainEvents()
}
