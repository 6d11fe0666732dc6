package inventory

import (
	"time"

	"github.com/dukapos/backend/internal/domain/inventory"
	"github.com/google/uuid"
)

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	SKU           string `json:"sku" binding:"required,min=1,max=50"`
	Name          string `json:"name" binding:"required,min=1,max=255"`
	MinStockLevel int64  `json:"min_stock_level" binding:"min=0"`
}

// RecordMovementRequest represents a request to apply a stock movement
type RecordMovementRequest struct {
	Kind      inventory.MovementKind      `json:"kind" binding:"required"`
	Direction inventory.MovementDirection `json:"direction"`
	Quantity  int64                       `json:"quantity" binding:"required,gt=0"`
	Reason    string                      `json:"reason" binding:"max=255"`
	ActorID   uuid.UUID                   `json:"actor_id" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	CurrentStock  int64     `json:"current_stock"`
	MinStockLevel int64     `json:"min_stock_level"`
	LowStockAlert bool      `json:"low_stock_alert"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToProductResponse converts a product to its response representation
func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		CurrentStock:  p.CurrentStock,
		MinStockLevel: p.MinStockLevel,
		LowStockAlert: p.LowStockAlert,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// MovementResponse represents a ledger row in API responses
type MovementResponse struct {
	ID            uuid.UUID                   `json:"id"`
	ProductID     uuid.UUID                   `json:"product_id"`
	Kind          inventory.MovementKind      `json:"kind"`
	Direction     inventory.MovementDirection `json:"direction"`
	Quantity      int64                       `json:"quantity"`
	PreviousStock int64                       `json:"previous_stock"`
	NewStock      int64                       `json:"new_stock"`
	Reason        string                      `json:"reason"`
	ActorID       uuid.UUID                   `json:"actor_id"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// ToMovementResponse converts a stock movement to its response representation
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Kind:          m.Kind,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}
