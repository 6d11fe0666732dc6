package payment

import (
	"time"

	"github.com/dukapos/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitiateMobilePaymentRequest represents a request to start an STK push
type InitiateMobilePaymentRequest struct {
	OrderID     uuid.UUID       `json:"order_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PhoneNumber string          `json:"phone_number" binding:"required,msisdn"`
}

// RecordCashPaymentRequest represents a cash payment taken at the till.
// Cash settles immediately; there is no gateway round trip.
type RecordCashPaymentRequest struct {
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

// SettlementNotice is a gateway outcome normalized from either the webhook
// or the poll path. Both paths converge on the same notice shape so the
// reconciliation logic cannot diverge between them.
type SettlementNotice struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDescription string
	Receipt           string
	Amount            decimal.Decimal
	PaidAt            time.Time
}

// Succeeded returns true for a successful settlement notice
func (n SettlementNotice) Succeeded() bool {
	return n.ResultCode == payment.ResultCodeSuccess
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                uuid.UUID        `json:"id"`
	OrderID           uuid.UUID        `json:"order_id"`
	Method            payment.Method   `json:"method"`
	Status            payment.Status   `json:"status"`
	Amount            decimal.Decimal  `json:"amount"`
	SettledAmount     *decimal.Decimal `json:"settled_amount,omitempty"`
	Currency          string           `json:"currency"`
	PhoneNumber       string           `json:"phone_number,omitempty"`
	CheckoutRequestID string           `json:"checkout_request_id,omitempty"`
	GatewayReceipt    string           `json:"gateway_receipt,omitempty"`
	ResultCode        *int             `json:"result_code,omitempty"`
	ResultDescription string           `json:"result_description,omitempty"`
	SettledAt         *time.Time       `json:"settled_at,omitempty"`
	FailedAt          *time.Time       `json:"failed_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// ToPaymentResponse converts a payment to its response representation
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	var settledAmount *decimal.Decimal
	if p.SettledAmount.Valid {
		v := p.SettledAmount.Decimal
		settledAmount = &v
	}
	return PaymentResponse{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Method:            p.Method,
		Status:            p.Status,
		Amount:            p.Amount,
		SettledAmount:     settledAmount,
		Currency:          p.Currency,
		PhoneNumber:       p.PhoneNumber,
		CheckoutRequestID: p.CheckoutRequestID,
		GatewayReceipt:    p.GatewayReceipt,
		ResultCode:        p.ResultCode,
		ResultDescription: p.ResultDescription,
		SettledAt:         p.SettledAt,
		FailedAt:          p.FailedAt,
		CreatedAt:         p.CreatedAt,
	}
}

// SweepResult summarizes one reconciliation sweep over stale payments
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Settled   int `json:"settled"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	StillPend int `json:"still_pending"`
	Errors    int `json:"errors"`
}
