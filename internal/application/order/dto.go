package order

import (
	"time"

	"github.com/dukapos/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderItemInput represents one requested line in a create request
type CreateOrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	CustomerID uuid.UUID              `json:"customer_id" binding:"required"`
	Items      []CreateOrderItemInput `json:"items" binding:"required,min=1"`
	TaxRate    decimal.Decimal        `json:"tax_rate"`
	Discount   decimal.Decimal        `json:"discount"`
	ActorID    uuid.UUID              `json:"actor_id" binding:"required"`
}

// SetStatusRequest represents a request to transition an order
type SetStatusRequest struct {
	Status  order.OrderStatus `json:"status" binding:"required"`
	Reason  string            `json:"reason" binding:"max=255"`
	ActorID uuid.UUID         `json:"actor_id" binding:"required"`
}

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	Status        order.OrderStatus   `json:"status"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Tax           decimal.Decimal     `json:"tax"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order to its response representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Items:         items,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Discount:      o.Discount,
		Total:         o.Total,
		CancelledAt:   o.CancelledAt,
		CancelReason:  o.CancelReason,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
