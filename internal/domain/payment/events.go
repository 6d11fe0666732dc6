package payment

import (
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypePayment = "payment"

	EventTypePaymentInitiated = "payment.initiated"
	EventTypePaymentSettled   = "payment.settled"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentCancelled = "payment.cancelled"
)

// PaymentInitiatedEvent is emitted when a payment attempt is created
type PaymentInitiatedEvent struct {
	shared.BaseDomainEvent
	OrderID string          `json:"order_id"`
	Method  string          `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
}

// NewPaymentInitiatedEvent creates a PaymentInitiatedEvent
func NewPaymentInitiatedEvent(p *Payment) *PaymentInitiatedEvent {
	return &PaymentInitiatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentInitiated, AggregateTypePayment, p.ID),
		OrderID:         p.OrderID.String(),
		Method:          string(p.Method),
		Amount:          p.Amount,
	}
}

// PaymentSettledEvent is emitted once per payment, by whichever of the
// webhook and poll paths wins the settlement CAS
type PaymentSettledEvent struct {
	shared.BaseDomainEvent
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Receipt string          `json:"receipt"`
}

// NewPaymentSettledEvent creates a PaymentSettledEvent
func NewPaymentSettledEvent(p *Payment) *PaymentSettledEvent {
	return &PaymentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentSettled, AggregateTypePayment, p.ID),
		OrderID:         p.OrderID.String(),
		Amount:          p.Amount,
		Receipt:         p.GatewayReceipt,
	}
}

// PaymentFailedEvent is emitted when the gateway reports a failure
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	OrderID    string `json:"order_id"`
	ResultCode int    `json:"result_code"`
	Reason     string `json:"reason"`
}

// NewPaymentFailedEvent creates a PaymentFailedEvent
func NewPaymentFailedEvent(p *Payment) *PaymentFailedEvent {
	code := 0
	if p.ResultCode != nil {
		code = *p.ResultCode
	}
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateTypePayment, p.ID),
		OrderID:         p.OrderID.String(),
		ResultCode:      code,
		Reason:          p.ResultDescription,
	}
}

// PaymentCancelledEvent is emitted when the customer dismisses the prompt
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// NewPaymentCancelledEvent creates a PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCancelled, AggregateTypePayment, p.ID),
		OrderID:         p.OrderID.String(),
		Reason:          p.ResultDescription,
	}
}
