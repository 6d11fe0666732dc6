package order

import (
	"fmt"
	"time"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// The table is conservative: cancellation is possible until the order ships,
// a delivered order can only come back as a return, and CANCELLED and
// RETURNED are terminal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusPending || target == OrderStatusCancelled
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered:
		return target == OrderStatusReturned
	case OrderStatusCancelled, OrderStatusReturned:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// PaymentStatus is the order-level aggregate over its payments
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentStatusForSettledSum derives the order-level payment status from the
// sum of settled payment amounts versus the order total. It is a pure
// function so webhook and poll paths cannot diverge.
func PaymentStatusForSettledSum(settled, total decimal.Decimal) PaymentStatus {
	if settled.GreaterThanOrEqual(total) && total.GreaterThan(decimal.Zero) {
		return PaymentStatusCompleted
	}
	if settled.GreaterThan(decimal.Zero) {
		return PaymentStatusPartial
	}
	return PaymentStatusPending
}

// OrderItem is a line item. Items are immutable once the order is created;
// there is no partial re-pricing.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int64           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order line item
func NewOrderItem(orderID, productID uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		ID:         uuid.New(),
		OrderID:    orderID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:  time.Now(),
	}, nil
}

// Order is the aggregate root for a customer order. Stock for its items is
// decremented at creation time (reservation-at-commit); cancellation emits
// compensating RETURN movements for exactly the original quantities.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null"`
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// ItemInput describes one requested line at order creation
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// NewOrder creates an order in PENDING status with its items and computed
// totals: subtotal = sum of line totals, tax = subtotal * taxRate,
// total = subtotal + tax - discount.
func NewOrder(orderNumber string, customerID uuid.UUID, inputs []ItemInput, taxRate, discount decimal.Decimal) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one item")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Status:            OrderStatusPending,
		Items:             make([]OrderItem, 0, len(inputs)),
		Discount:          discount,
		PaymentStatus:     PaymentStatusPending,
	}

	subtotal := decimal.Zero
	for _, input := range inputs {
		item, err := NewOrderItem(order.ID, input.ProductID, input.Quantity, input.UnitPrice)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
		subtotal = subtotal.Add(item.TotalPrice)
	}

	order.Subtotal = subtotal
	order.Tax = subtotal.Mul(taxRate).Round(2)
	order.Total = order.Subtotal.Add(order.Tax).Sub(order.Discount)
	if order.Total.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total must be positive")
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// TransitionTo moves the order to a new status, rejecting edges outside the
// transition table with ErrInvalidTransition.
func (o *Order) TransitionTo(target OrderStatus, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now
	o.IncrementVersion()

	if target == OrderStatusCancelled {
		o.CancelledAt = &now
		o.CancelReason = reason
		o.AddDomainEvent(NewOrderCancelledEvent(o))
	}
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))

	return nil
}

// SetPaymentStatus updates the order-level payment aggregate. Callers must
// hold the order's row lock so concurrent settlements serialize.
func (o *Order) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Unknown payment status")
	}
	o.PaymentStatus = status
	o.UpdatedAt = time.Now()
	return nil
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}
