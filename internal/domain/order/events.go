package order

import (
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeOrder = "order"

	EventTypeOrderCreated       = "order.created"
	EventTypeOrderStatusChanged = "order.status_changed"
	EventTypeOrderCancelled     = "order.cancelled"
	EventTypeOrderPaymentStatus = "order.payment_status_changed"
)

// OrderCreatedEvent is emitted when an order is placed
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	CustomerID  string          `json:"customer_id"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// NewOrderCreatedEvent creates an OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID.String(),
		Total:           o.Total,
		ItemCount:       len(o.Items),
	}
}

// OrderStatusChangedEvent is emitted on every status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from.String(),
		ToStatus:        to.String(),
	}
}

// OrderCancelledEvent is emitted when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewOrderCancelledEvent creates an OrderCancelledEvent
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
	}
}

// OrderPaymentStatusChangedEvent is emitted when the aggregated payment
// status over the order's payments changes
type OrderPaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	SettledSum  decimal.Decimal `json:"settled_sum"`
}

// NewOrderPaymentStatusChangedEvent creates an OrderPaymentStatusChangedEvent
func NewOrderPaymentStatusChangedEvent(o *Order, settled decimal.Decimal) *OrderPaymentStatusChangedEvent {
	return &OrderPaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentStatus, AggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Status:          string(o.PaymentStatus),
		SettledSum:      settled,
	}
}
