package payment

import (
	"time"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/dukapos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is how the customer pays
type Method string

const (
	MethodCash        Method = "CASH"
	MethodMobileMoney Method = "MOBILE_MONEY"
)

// IsValid checks if the method is a valid Method
func (m Method) IsValid() bool {
	return m == MethodCash || m == MethodMobileMoney
}

// Status represents the settlement status of a single payment attempt.
// PENDING is the only non-terminal state; SETTLED, FAILED and CANCELLED
// are terminal and a payment never leaves them.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSettled   Status = "SETTLED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSettled, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for settlement outcomes
func (s Status) IsTerminal() bool {
	return s == StatusSettled || s == StatusFailed || s == StatusCancelled
}

// Payment is one settlement attempt against an order. An order may carry
// several payments (retries, split cash/mobile). The PENDING -> terminal
// transition is a database compare-and-set; whichever of the webhook and
// poll paths lands first wins and the loser observes zero rows affected.
type Payment struct {
	shared.BaseAggregateRoot
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	Method  Method    `gorm:"type:varchar(20);not null"`
	Status  Status    `gorm:"type:varchar(20);not null;index"`
	// Amount is what we asked the customer for. SettledAmount is what the
	// gateway reports it actually collected; the two can differ and only
	// SettledAmount counts towards the order.
	Amount            decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	SettledAmount     decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	Currency          string              `gorm:"type:varchar(3);not null"`
	PhoneNumber       string              `gorm:"type:varchar(20)"`
	CheckoutRequestID string              `gorm:"type:varchar(64);uniqueIndex"`
	GatewayReceipt    string              `gorm:"type:varchar(64)"`
	ResultCode        *int                `gorm:""`
	ResultDescription string              `gorm:"type:varchar(255)"`
	SettledAt         *time.Time
	FailedAt          *time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment attempt in PENDING status
func NewPayment(orderID uuid.UUID, method Method, amount decimal.Decimal, currency, phoneNumber string) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}
	if !amount.GreaterThan(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if currency == "" {
		currency = string(valueobject.DefaultCurrency)
	}
	if _, err := valueobject.NewMoney(amount, valueobject.Currency(currency)); err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	if method == MethodMobileMoney && phoneNumber == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Mobile money payment requires a phone number")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Method:            method,
		Status:            StatusPending,
		Amount:            amount,
		Currency:          currency,
		PhoneNumber:       phoneNumber,
	}
	p.AddDomainEvent(NewPaymentInitiatedEvent(p))
	return p, nil
}

// AttachCheckout records the gateway-side correlation id after a successful
// push initiation
func (p *Payment) AttachCheckout(checkoutRequestID string) error {
	if checkoutRequestID == "" {
		return shared.NewDomainError("INVALID_CHECKOUT_ID", "Checkout request ID cannot be empty")
	}
	p.CheckoutRequestID = checkoutRequestID
	p.UpdatedAt = time.Now()
	return nil
}

// MarkSettled applies the in-memory side of a won settlement CAS. The
// repository performs the actual conditional UPDATE; this keeps the loaded
// aggregate consistent with it. settledAmount is the gateway-reported sum;
// when the gateway did not report one the requested amount stands in.
func (p *Payment) MarkSettled(receipt string, settledAmount decimal.Decimal, resultCode int, description string, settledAt time.Time) error {
	if p.Status.IsTerminal() {
		return shared.ErrConcurrencyConflict
	}
	now := settledAt
	if now.IsZero() {
		now = time.Now()
	}
	if !settledAmount.GreaterThan(decimal.Zero) {
		settledAmount = p.Amount
	}
	p.Status = StatusSettled
	p.SettledAmount = decimal.NewNullDecimal(settledAmount)
	p.GatewayReceipt = receipt
	p.ResultCode = &resultCode
	p.ResultDescription = description
	p.SettledAt = &now
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentSettledEvent(p))
	return nil
}

// MarkFailed applies the in-memory side of a won failure CAS
func (p *Payment) MarkFailed(resultCode int, description string) error {
	if p.Status.IsTerminal() {
		return shared.ErrConcurrencyConflict
	}
	now := time.Now()
	p.Status = StatusFailed
	p.ResultCode = &resultCode
	p.ResultDescription = description
	p.FailedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentFailedEvent(p))
	return nil
}

// MarkCancelled applies the in-memory side of a user-cancelled outcome.
// Result code 1032 from the gateway maps here rather than to FAILED so
// operators can tell abandonment from gateway errors.
func (p *Payment) MarkCancelled(resultCode int, description string) error {
	if p.Status.IsTerminal() {
		return shared.ErrConcurrencyConflict
	}
	now := time.Now()
	p.Status = StatusCancelled
	p.ResultCode = &resultCode
	p.ResultDescription = description
	p.FailedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentCancelledEvent(p))
	return nil
}

// IsSettled returns true if the payment settled successfully
func (p *Payment) IsSettled() bool {
	return p.Status == StatusSettled
}

// AmountSettled returns the gateway-settled amount, or zero while the payment
// has not settled
func (p *Payment) AmountSettled() decimal.Decimal {
	if !p.SettledAmount.Valid {
		return decimal.Zero
	}
	return p.SettledAmount.Decimal
}
