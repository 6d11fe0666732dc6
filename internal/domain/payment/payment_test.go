package payment

import (
	"testing"
	"time"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestPayment(t *testing.T) *Payment {
	p, err := NewPayment(uuid.New(), MethodMobileMoney, decimal.NewFromInt(500), "KES", "254712345678")
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

// ============================================
// Payment Creation Tests
// ============================================

func TestNewPayment_Success(t *testing.T) {
	orderID := uuid.New()
	p, err := NewPayment(orderID, MethodMobileMoney, decimal.NewFromInt(500), "", "254712345678")
	require.NoError(t, err)

	assert.Equal(t, orderID, p.OrderID)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "KES", p.Currency)
	assert.Len(t, p.GetDomainEvents(), 1)
}

func TestNewPayment_CashWithoutPhone(t *testing.T) {
	_, err := NewPayment(uuid.New(), MethodCash, decimal.NewFromInt(100), "KES", "")
	assert.NoError(t, err)
}

func TestNewPayment_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		order  uuid.UUID
		method Method
		amount decimal.Decimal
		phone  string
	}{
		{"nil order", uuid.Nil, MethodCash, decimal.NewFromInt(100), ""},
		{"unknown method", uuid.New(), Method("CHEQUE"), decimal.NewFromInt(100), ""},
		{"zero amount", uuid.New(), MethodCash, decimal.Zero, ""},
		{"negative amount", uuid.New(), MethodCash, decimal.NewFromInt(-10), ""},
		{"mobile money without phone", uuid.New(), MethodMobileMoney, decimal.NewFromInt(100), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(tt.order, tt.method, tt.amount, "KES", tt.phone)
			assert.Error(t, err)
		})
	}
}

// ============================================
// Status Tests
// ============================================

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusSettled.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

// ============================================
// Terminal Transition Tests
// ============================================

func TestPayment_MarkSettled(t *testing.T) {
	p := createTestPayment(t)
	settledAt := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	err := p.MarkSettled("SHM31XYZ9A", decimal.NewFromInt(500), ResultCodeSuccess, "The service request is processed successfully.", settledAt)
	require.NoError(t, err)

	assert.Equal(t, StatusSettled, p.Status)
	assert.Equal(t, "SHM31XYZ9A", p.GatewayReceipt)
	require.NotNil(t, p.ResultCode)
	assert.Equal(t, ResultCodeSuccess, *p.ResultCode)
	require.NotNil(t, p.SettledAt)
	assert.Equal(t, settledAt, *p.SettledAt)
	assert.True(t, p.IsSettled())
	assert.True(t, p.AmountSettled().Equal(decimal.NewFromInt(500)))
	assert.Len(t, p.GetDomainEvents(), 1)
}

func TestPayment_MarkSettled_GatewayAmountRecorded(t *testing.T) {
	// the gateway may collect a different sum than requested; the payment
	// keeps both
	p := createTestPayment(t)

	require.NoError(t, p.MarkSettled("SHM31XYZ9A", decimal.NewFromInt(400), ResultCodeSuccess, "ok", time.Now()))

	assert.True(t, p.Amount.Equal(decimal.NewFromInt(500)))
	assert.True(t, p.AmountSettled().Equal(decimal.NewFromInt(400)))
}

func TestPayment_MarkSettled_NoAmountFallsBackToRequested(t *testing.T) {
	p := createTestPayment(t)

	require.NoError(t, p.MarkSettled("SHM31XYZ9A", decimal.Zero, ResultCodeSuccess, "ok", time.Now()))

	assert.True(t, p.AmountSettled().Equal(decimal.NewFromInt(500)))
}

func TestPayment_MarkFailed(t *testing.T) {
	p := createTestPayment(t)

	err := p.MarkFailed(2001, "The initiator information is invalid.")
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, p.Status)
	assert.NotNil(t, p.FailedAt)
	assert.False(t, p.IsSettled())
}

func TestPayment_MarkCancelled(t *testing.T) {
	p := createTestPayment(t)

	err := p.MarkCancelled(ResultCodeUserCancelled, "Request cancelled by user")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, p.Status)
	require.NotNil(t, p.ResultCode)
	assert.Equal(t, ResultCodeUserCancelled, *p.ResultCode)
}

func TestPayment_TerminalStatesAreFinal(t *testing.T) {
	// once settled, neither the poll path nor a replayed webhook may
	// change the outcome
	p := createTestPayment(t)
	require.NoError(t, p.MarkSettled("RCPT1", decimal.NewFromInt(500), ResultCodeSuccess, "ok", time.Now()))

	assert.ErrorIs(t, p.MarkSettled("RCPT2", decimal.NewFromInt(500), ResultCodeSuccess, "ok", time.Now()), shared.ErrConcurrencyConflict)
	assert.ErrorIs(t, p.MarkFailed(1, "late failure"), shared.ErrConcurrencyConflict)
	assert.ErrorIs(t, p.MarkCancelled(ResultCodeUserCancelled, ""), shared.ErrConcurrencyConflict)

	assert.Equal(t, StatusSettled, p.Status)
	assert.Equal(t, "RCPT1", p.GatewayReceipt)
}

func TestPayment_FailedThenSettleRejected(t *testing.T) {
	p := createTestPayment(t)
	require.NoError(t, p.MarkFailed(1037, "DS timeout"))

	assert.ErrorIs(t, p.MarkSettled("RCPT", decimal.NewFromInt(500), ResultCodeSuccess, "ok", time.Now()), shared.ErrConcurrencyConflict)
	assert.Equal(t, StatusFailed, p.Status)
}

func TestPayment_AttachCheckout(t *testing.T) {
	p := createTestPayment(t)

	require.NoError(t, p.AttachCheckout("ws_CO_30082026140500123456"))
	assert.Equal(t, "ws_CO_30082026140500123456", p.CheckoutRequestID)

	assert.Error(t, p.AttachCheckout(""))
}
