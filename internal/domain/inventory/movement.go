package inventory

import (
	"time"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementKind represents the business reason for a stock movement
type MovementKind string

const (
	// MovementKindPurchase is stock received from a supplier
	MovementKindPurchase MovementKind = "PURCHASE"
	// MovementKindSale is stock sold to a customer
	MovementKindSale MovementKind = "SALE"
	// MovementKindReturn is stock returned by a customer (or a cancelled order)
	MovementKindReturn MovementKind = "RETURN"
	// MovementKindAdjustment is a manual correction; direction must be given explicitly
	MovementKindAdjustment MovementKind = "ADJUSTMENT"
	// MovementKindDamage is stock written off as damaged
	MovementKindDamage MovementKind = "DAMAGE"
	// MovementKindTransfer is stock moved between locations; direction must be given explicitly
	MovementKindTransfer MovementKind = "TRANSFER"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindPurchase, MovementKindSale, MovementKindReturn,
		MovementKindAdjustment, MovementKindDamage, MovementKindTransfer:
		return true
	}
	return false
}

// MovementDirection is the sign of a stock movement
type MovementDirection string

const (
	// DirectionIn increases stock
	DirectionIn MovementDirection = "IN"
	// DirectionOut decreases stock
	DirectionOut MovementDirection = "OUT"
	// DirectionUnspecified is only legal for kinds with a fixed direction
	DirectionUnspecified MovementDirection = ""
)

// FixedDirection returns the implied direction for kinds whose sign never
// varies, or DirectionUnspecified for ADJUSTMENT and TRANSFER which require
// the caller to say which way the stock moves.
func (k MovementKind) FixedDirection() MovementDirection {
	switch k {
	case MovementKindPurchase, MovementKindReturn:
		return DirectionIn
	case MovementKindSale, MovementKindDamage:
		return DirectionOut
	}
	return DirectionUnspecified
}

// ResolveDirection validates the supplied direction against the kind.
// Kinds with a fixed sign ignore the supplied direction unless it
// contradicts the fixed one; ADJUSTMENT and TRANSFER must supply one.
func (k MovementKind) ResolveDirection(supplied MovementDirection) (MovementDirection, error) {
	if !k.IsValid() {
		return DirectionUnspecified, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Unknown movement kind")
	}

	fixed := k.FixedDirection()
	if fixed != DirectionUnspecified {
		if supplied != DirectionUnspecified && supplied != fixed {
			return DirectionUnspecified, shared.NewDomainError("INVALID_DIRECTION",
				"Movement kind "+k.String()+" always moves stock "+string(fixed))
		}
		return fixed, nil
	}

	switch supplied {
	case DirectionIn, DirectionOut:
		return supplied, nil
	}
	return DirectionUnspecified, shared.NewDomainError("DIRECTION_REQUIRED",
		"Movement kind "+k.String()+" requires an explicit direction")
}

// StockMovement is one immutable row in the inventory ledger. Rows are
// created once and never updated or deleted; corrections are recorded as
// new compensating movements.
type StockMovement struct {
	shared.BaseEntity
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movements_product"`
	Kind          MovementKind      `gorm:"type:varchar(20);not null;index:idx_stock_movements_kind"`
	Direction     MovementDirection `gorm:"type:varchar(5);not null"`
	Quantity      int64             `gorm:"not null"`
	PreviousStock int64             `gorm:"not null"`
	NewStock      int64             `gorm:"not null"`
	Reason        string            `gorm:"type:varchar(255)"`
	ActorID       uuid.UUID         `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new ledger row. The previous/new stock pair is
// supplied by the caller, which must have observed previousStock under the
// product's row lock so consecutive movements chain causally.
func NewStockMovement(productID uuid.UUID, kind MovementKind, direction MovementDirection, quantity, previousStock, newStock int64, reason string, actorID uuid.UUID) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_KIND", "Unknown movement kind")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	switch direction {
	case DirectionIn:
		if newStock != previousStock+quantity {
			return nil, shared.NewDomainError("INVALID_BALANCE", "New stock does not match previous stock plus quantity")
		}
	case DirectionOut:
		if newStock != previousStock-quantity {
			return nil, shared.NewDomainError("INVALID_BALANCE", "New stock does not match previous stock minus quantity")
		}
	default:
		return nil, shared.NewDomainError("DIRECTION_REQUIRED", "Movement direction must be IN or OUT")
	}
	if newStock < 0 {
		return nil, shared.ErrInsufficientStock
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		Kind:          kind,
		Direction:     direction,
		Quantity:      quantity,
		PreviousStock: previousStock,
		NewStock:      newStock,
		Reason:        reason,
		ActorID:       actorID,
	}, nil
}

// SignedQuantity returns the quantity with its sign applied
func (m *StockMovement) SignedQuantity() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}

// AppliedAt returns when the movement was recorded
func (m *StockMovement) AppliedAt() time.Time {
	return m.CreatedAt
}
