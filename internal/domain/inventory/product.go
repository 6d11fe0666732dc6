package inventory

import (
	"time"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Product holds the authoritative stock counter for a sellable item.
// CurrentStock is only ever mutated through a ledger movement; there is no
// direct setter. Identity, pricing and descriptive fields are owned by the
// catalog module and treated as read-only here.
type Product struct {
	shared.BaseAggregateRoot
	SKU           string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string `gorm:"type:varchar(255);not null"`
	CurrentStock  int64  `gorm:"not null;default:0"`
	MinStockLevel int64  `gorm:"not null;default:0"`
	LowStockAlert bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with zero stock
func NewProduct(sku, name string, minStockLevel int64) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if minStockLevel < 0 {
		return nil, shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock level cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		CurrentStock:      0,
		MinStockLevel:     minStockLevel,
		LowStockAlert:     0 <= minStockLevel,
	}, nil
}

// RecordMovement applies a stock movement to the product and returns the
// resulting ledger row. The caller is responsible for holding the product's
// row lock for the duration of the surrounding transaction; this method only
// enforces the arithmetic invariants.
//
// Subtracting movements that would drive stock below zero fail with
// ErrInsufficientStock and leave the product untouched.
func (p *Product) RecordMovement(kind MovementKind, direction MovementDirection, quantity int64, reason string, actorID uuid.UUID) (*StockMovement, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}

	dir, err := kind.ResolveDirection(direction)
	if err != nil {
		return nil, err
	}

	previous := p.CurrentStock
	var next int64
	switch dir {
	case DirectionIn:
		next = previous + quantity
	case DirectionOut:
		if quantity > previous {
			return nil, shared.ErrInsufficientStock
		}
		next = previous - quantity
	}

	movement, err := NewStockMovement(p.ID, kind, dir, quantity, previous, next, reason, actorID)
	if err != nil {
		return nil, err
	}

	wasLow := p.LowStockAlert
	p.CurrentStock = next
	p.LowStockAlert = next <= p.MinStockLevel
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockMovementRecordedEvent(p, movement))
	if p.LowStockAlert && !wasLow {
		p.AddDomainEvent(NewLowStockAlertRaisedEvent(p))
	} else if !p.LowStockAlert && wasLow {
		p.AddDomainEvent(NewLowStockAlertClearedEvent(p))
	}

	return movement, nil
}

// CanFulfill returns true if current stock can cover the requested quantity
func (p *Product) CanFulfill(quantity int64) bool {
	return quantity > 0 && p.CurrentStock >= quantity
}

// IsBelowMinimum returns true if stock is at or below the minimum threshold
func (p *Product) IsBelowMinimum() bool {
	return p.CurrentStock <= p.MinStockLevel
}
