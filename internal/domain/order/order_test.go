package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestOrder(t *testing.T) *Order {
	items := []ItemInput{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	}
	o, err := NewOrder("ORD-2026-0001", uuid.New(), items, decimal.NewFromFloat(0.16), decimal.Zero)
	require.NoError(t, err)
	return o
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusDraft, true},
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusProcessing, true},
		{OrderStatusShipped, true},
		{OrderStatusDelivered, true},
		{OrderStatusCancelled, true},
		{OrderStatusReturned, true},
		{OrderStatus("INVALID"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		{OrderStatusDraft, OrderStatusPending, true},
		{OrderStatusDraft, OrderStatusCancelled, true},
		{OrderStatusDraft, OrderStatusConfirmed, false},
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusReturned, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusDraft, false},
		{OrderStatusReturned, OrderStatusDelivered, false},
		{OrderStatusReturned, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusReturned.IsTerminal())
	assert.False(t, OrderStatusDelivered.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
}

// ============================================
// PaymentStatus Tests
// ============================================

func TestPaymentStatusForSettledSum(t *testing.T) {
	total := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		settled decimal.Decimal
		want    PaymentStatus
	}{
		{"nothing settled", decimal.Zero, PaymentStatusPending},
		{"partial", decimal.NewFromInt(40), PaymentStatusPartial},
		{"exact", decimal.NewFromInt(100), PaymentStatusCompleted},
		{"overpaid", decimal.NewFromInt(120), PaymentStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentStatusForSettledSum(tt.settled, total))
		})
	}
}

// ============================================
// Order Creation Tests
// ============================================

func TestNewOrder_Success(t *testing.T) {
	o := createTestOrder(t)

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, 2, o.ItemCount())
	// 2*100 + 1*50 = 250
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(250)))
	// 250 * 0.16 = 40
	assert.True(t, o.Tax.Equal(decimal.NewFromInt(40)))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(290)))
	assert.Len(t, o.GetDomainEvents(), 1)
}

func TestNewOrder_ItemTotals(t *testing.T) {
	o := createTestOrder(t)

	for _, item := range o.Items {
		expected := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		assert.True(t, item.TotalPrice.Equal(expected))
		assert.Equal(t, o.ID, item.OrderID)
	}
}

func TestNewOrder_Discount(t *testing.T) {
	items := []ItemInput{{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(100)}}
	o, err := NewOrder("ORD-2026-0002", uuid.New(), items, decimal.Zero, decimal.NewFromInt(25))
	require.NoError(t, err)

	assert.True(t, o.Total.Equal(decimal.NewFromInt(75)))
}

func TestNewOrder_ValidationErrors(t *testing.T) {
	customerID := uuid.New()
	validItems := []ItemInput{{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}}

	tests := []struct {
		name     string
		number   string
		customer uuid.UUID
		items    []ItemInput
		taxRate  decimal.Decimal
		discount decimal.Decimal
	}{
		{"empty order number", "", customerID, validItems, decimal.Zero, decimal.Zero},
		{"nil customer", "ORD-1", uuid.Nil, validItems, decimal.Zero, decimal.Zero},
		{"no items", "ORD-1", customerID, nil, decimal.Zero, decimal.Zero},
		{"zero quantity", "ORD-1", customerID,
			[]ItemInput{{ProductID: uuid.New(), Quantity: 0, UnitPrice: decimal.NewFromInt(10)}},
			decimal.Zero, decimal.Zero},
		{"negative price", "ORD-1", customerID,
			[]ItemInput{{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(-10)}},
			decimal.Zero, decimal.Zero},
		{"negative tax rate", "ORD-1", customerID, validItems, decimal.NewFromFloat(-0.1), decimal.Zero},
		{"negative discount", "ORD-1", customerID, validItems, decimal.Zero, decimal.NewFromInt(-5)},
		{"discount exceeds total", "ORD-1", customerID, validItems, decimal.Zero, decimal.NewFromInt(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.number, tt.customer, tt.items, tt.taxRate, tt.discount)
			assert.Error(t, err)
		})
	}
}

// ============================================
// Order Transition Tests
// ============================================

func TestOrder_TransitionTo_HappyPath(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.TransitionTo(OrderStatusConfirmed, ""))
	require.NoError(t, o.TransitionTo(OrderStatusProcessing, ""))
	require.NoError(t, o.TransitionTo(OrderStatusShipped, ""))
	require.NoError(t, o.TransitionTo(OrderStatusDelivered, ""))
	require.NoError(t, o.TransitionTo(OrderStatusReturned, "damaged in transit"))

	assert.Equal(t, OrderStatusReturned, o.Status)
}

func TestOrder_TransitionTo_Invalid(t *testing.T) {
	o := createTestOrder(t)

	err := o.TransitionTo(OrderStatusDelivered, "")
	assert.Error(t, err)
	assert.Equal(t, OrderStatusPending, o.Status)
}

func TestOrder_TransitionTo_UnknownStatus(t *testing.T) {
	o := createTestOrder(t)
	assert.Error(t, o.TransitionTo(OrderStatus("BOGUS"), ""))
}

func TestOrder_Cancel(t *testing.T) {
	o := createTestOrder(t)
	o.ClearDomainEvents()
	versionBefore := o.GetVersion()

	require.NoError(t, o.TransitionTo(OrderStatusCancelled, "customer request"))

	assert.True(t, o.IsCancelled())
	assert.NotNil(t, o.CancelledAt)
	assert.Equal(t, "customer request", o.CancelReason)
	assert.Equal(t, versionBefore+1, o.GetVersion())
	// cancelled + status-changed events
	assert.Len(t, o.GetDomainEvents(), 2)
}

func TestOrder_TerminalStatesRejectEverything(t *testing.T) {
	targets := []OrderStatus{
		OrderStatusDraft, OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusReturned,
	}

	o := createTestOrder(t)
	require.NoError(t, o.TransitionTo(OrderStatusCancelled, ""))
	for _, target := range targets {
		assert.Error(t, o.TransitionTo(target, ""), "CANCELLED -> %s should be rejected", target)
	}
}

func TestOrder_SetPaymentStatus(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.SetPaymentStatus(PaymentStatusPartial))
	assert.Equal(t, PaymentStatusPartial, o.PaymentStatus)

	assert.Error(t, o.SetPaymentStatus(PaymentStatus("BOGUS")))
	assert.Equal(t, PaymentStatusPartial, o.PaymentStatus)
}
