package inventory

import (
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeStockMovementRecorded = "StockMovementRecorded"
	EventTypeLowStockAlertRaised   = "LowStockAlertRaised"
	EventTypeLowStockAlertCleared  = "LowStockAlertCleared"
)

// StockMovementRecordedEvent is raised whenever a ledger movement is applied
type StockMovementRecordedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID         `json:"product_id"`
	MovementID    uuid.UUID         `json:"movement_id"`
	Kind          MovementKind      `json:"kind"`
	Direction     MovementDirection `json:"direction"`
	Quantity      int64             `json:"quantity"`
	PreviousStock int64             `json:"previous_stock"`
	NewStock      int64             `json:"new_stock"`
}

// NewStockMovementRecordedEvent creates a new StockMovementRecordedEvent
func NewStockMovementRecordedEvent(product *Product, movement *StockMovement) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementRecorded, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		MovementID:      movement.ID,
		Kind:            movement.Kind,
		Direction:       movement.Direction,
		Quantity:        movement.Quantity,
		PreviousStock:   movement.PreviousStock,
		NewStock:        movement.NewStock,
	}
}

// EventType returns the event type name
func (e *StockMovementRecordedEvent) EventType() string {
	return EventTypeStockMovementRecorded
}

// LowStockAlertRaisedEvent is raised when stock drops to or below the minimum threshold
type LowStockAlertRaisedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	CurrentStock  int64     `json:"current_stock"`
	MinStockLevel int64     `json:"min_stock_level"`
}

// NewLowStockAlertRaisedEvent creates a new LowStockAlertRaisedEvent
func NewLowStockAlertRaisedEvent(product *Product) *LowStockAlertRaisedEvent {
	return &LowStockAlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlertRaised, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		SKU:             product.SKU,
		CurrentStock:    product.CurrentStock,
		MinStockLevel:   product.MinStockLevel,
	}
}

// EventType returns the event type name
func (e *LowStockAlertRaisedEvent) EventType() string {
	return EventTypeLowStockAlertRaised
}

// LowStockAlertClearedEvent is raised when stock recovers above the minimum threshold
type LowStockAlertClearedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	CurrentStock int64     `json:"current_stock"`
}

// NewLowStockAlertClearedEvent creates a new LowStockAlertClearedEvent
func NewLowStockAlertClearedEvent(product *Product) *LowStockAlertClearedEvent {
	return &LowStockAlertClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlertCleared, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		SKU:             product.SKU,
		CurrentStock:    product.CurrentStock,
	}
}

// EventType returns the event type name
func (e *LowStockAlertClearedEvent) EventType() string {
	return EventTypeLowStockAlertCleared
}
