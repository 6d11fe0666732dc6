package inventory

import (
	"testing"

	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestProduct(t *testing.T, minStock int64) *Product {
	p, err := NewProduct("SKU-001", "Maize Flour 2kg", minStock)
	require.NoError(t, err)
	return p
}

func stockProduct(t *testing.T, p *Product, quantity int64) {
	_, err := p.RecordMovement(MovementKindPurchase, DirectionUnspecified, quantity, "initial stock", uuid.New())
	require.NoError(t, err)
	p.ClearDomainEvents()
}

// ============================================
// Product Creation Tests
// ============================================

func TestNewProduct_Success(t *testing.T) {
	p := createTestProduct(t, 10)

	assert.Equal(t, "SKU-001", p.SKU)
	assert.Equal(t, int64(0), p.CurrentStock)
	assert.Equal(t, int64(10), p.MinStockLevel)
	// zero stock starts at or below any non-negative minimum
	assert.True(t, p.LowStockAlert)
	assert.Equal(t, 1, p.GetVersion())
}

func TestNewProduct_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		sku      string
		prodName string
		minStock int64
	}{
		{"empty sku", "", "Maize Flour", 0},
		{"empty name", "SKU-001", "", 0},
		{"negative min stock", "SKU-001", "Maize Flour", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProduct(tt.sku, tt.prodName, tt.minStock)
			assert.Error(t, err)
		})
	}
}

// ============================================
// RecordMovement Tests
// ============================================

func TestProduct_RecordMovement_Purchase(t *testing.T) {
	p := createTestProduct(t, 5)
	actor := uuid.New()

	m, err := p.RecordMovement(MovementKindPurchase, DirectionUnspecified, 20, "supplier delivery", actor)
	require.NoError(t, err)

	assert.Equal(t, int64(20), p.CurrentStock)
	assert.Equal(t, int64(0), m.PreviousStock)
	assert.Equal(t, int64(20), m.NewStock)
	assert.Equal(t, DirectionIn, m.Direction)
	assert.Equal(t, actor, m.ActorID)
	assert.False(t, p.LowStockAlert)
	assert.Equal(t, 2, p.GetVersion())
}

func TestProduct_RecordMovement_SaleInsufficientStock(t *testing.T) {
	p := createTestProduct(t, 0)
	stockProduct(t, p, 5)

	_, err := p.RecordMovement(MovementKindSale, DirectionUnspecified, 6, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	// product untouched on failure
	assert.Equal(t, int64(5), p.CurrentStock)
	assert.Empty(t, p.GetDomainEvents())
}

func TestProduct_RecordMovement_SaleExactStock(t *testing.T) {
	p := createTestProduct(t, 0)
	stockProduct(t, p, 5)

	m, err := p.RecordMovement(MovementKindSale, DirectionUnspecified, 5, "", uuid.New())
	require.NoError(t, err)

	assert.Equal(t, int64(0), p.CurrentStock)
	assert.Equal(t, int64(-5), m.SignedQuantity())
}

func TestProduct_RecordMovement_LedgerChain(t *testing.T) {
	p := createTestProduct(t, 0)
	actor := uuid.New()

	m1, err := p.RecordMovement(MovementKindPurchase, DirectionUnspecified, 10, "", actor)
	require.NoError(t, err)
	m2, err := p.RecordMovement(MovementKindSale, DirectionUnspecified, 3, "", actor)
	require.NoError(t, err)
	m3, err := p.RecordMovement(MovementKindAdjustment, DirectionOut, 2, "stocktake", actor)
	require.NoError(t, err)

	// each row's PreviousStock equals the prior row's NewStock
	assert.Equal(t, m1.NewStock, m2.PreviousStock)
	assert.Equal(t, m2.NewStock, m3.PreviousStock)
	assert.Equal(t, int64(5), p.CurrentStock)
}

func TestProduct_RecordMovement_InvalidQuantity(t *testing.T) {
	p := createTestProduct(t, 0)

	_, err := p.RecordMovement(MovementKindPurchase, DirectionUnspecified, 0, "", uuid.New())
	assert.Error(t, err)

	_, err = p.RecordMovement(MovementKindPurchase, DirectionUnspecified, -3, "", uuid.New())
	assert.Error(t, err)
}

func TestProduct_RecordMovement_LowStockAlert(t *testing.T) {
	p := createTestProduct(t, 5)
	stockProduct(t, p, 10)
	require.False(t, p.LowStockAlert)

	_, err := p.RecordMovement(MovementKindSale, DirectionUnspecified, 5, "", uuid.New())
	require.NoError(t, err)

	assert.True(t, p.LowStockAlert)
	events := p.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeLowStockAlertRaised, events[1].EventType())
}

func TestProduct_RecordMovement_LowStockAlertCleared(t *testing.T) {
	p := createTestProduct(t, 5)
	require.True(t, p.LowStockAlert)

	_, err := p.RecordMovement(MovementKindPurchase, DirectionUnspecified, 20, "", uuid.New())
	require.NoError(t, err)

	assert.False(t, p.LowStockAlert)
	events := p.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeLowStockAlertCleared, events[1].EventType())
}

func TestProduct_CanFulfill(t *testing.T) {
	p := createTestProduct(t, 0)
	stockProduct(t, p, 5)

	assert.True(t, p.CanFulfill(5))
	assert.True(t, p.CanFulfill(1))
	assert.False(t, p.CanFulfill(6))
	assert.False(t, p.CanFulfill(0))
	assert.False(t, p.CanFulfill(-1))
}

// ============================================
// Direction Resolution Tests
// ============================================

func TestMovementKind_ResolveDirection(t *testing.T) {
	tests := []struct {
		name     string
		kind     MovementKind
		supplied MovementDirection
		want     MovementDirection
		wantErr  bool
	}{
		{"purchase implies in", MovementKindPurchase, DirectionUnspecified, DirectionIn, false},
		{"sale implies out", MovementKindSale, DirectionUnspecified, DirectionOut, false},
		{"return implies in", MovementKindReturn, DirectionUnspecified, DirectionIn, false},
		{"damage implies out", MovementKindDamage, DirectionUnspecified, DirectionOut, false},
		{"purchase agrees with in", MovementKindPurchase, DirectionIn, DirectionIn, false},
		{"purchase contradicts out", MovementKindPurchase, DirectionOut, DirectionUnspecified, true},
		{"sale contradicts in", MovementKindSale, DirectionIn, DirectionUnspecified, true},
		{"adjustment requires direction", MovementKindAdjustment, DirectionUnspecified, DirectionUnspecified, true},
		{"adjustment in", MovementKindAdjustment, DirectionIn, DirectionIn, false},
		{"adjustment out", MovementKindAdjustment, DirectionOut, DirectionOut, false},
		{"transfer requires direction", MovementKindTransfer, DirectionUnspecified, DirectionUnspecified, true},
		{"transfer out", MovementKindTransfer, DirectionOut, DirectionOut, false},
		{"unknown kind", MovementKind("BOGUS"), DirectionIn, DirectionUnspecified, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.kind.ResolveDirection(tt.supplied)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ============================================
// StockMovement Tests
// ============================================

func TestNewStockMovement_BalanceValidation(t *testing.T) {
	productID := uuid.New()
	actor := uuid.New()

	_, err := NewStockMovement(productID, MovementKindPurchase, DirectionIn, 5, 10, 15, "", actor)
	assert.NoError(t, err)

	_, err = NewStockMovement(productID, MovementKindPurchase, DirectionIn, 5, 10, 14, "", actor)
	assert.Error(t, err)

	_, err = NewStockMovement(productID, MovementKindSale, DirectionOut, 5, 10, 5, "", actor)
	assert.NoError(t, err)

	_, err = NewStockMovement(productID, MovementKindSale, DirectionOut, 5, 10, 6, "", actor)
	assert.Error(t, err)
}

func TestNewStockMovement_RejectsNegativeResult(t *testing.T) {
	_, err := NewStockMovement(uuid.New(), MovementKindSale, DirectionOut, 5, 3, -2, "", uuid.New())
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}
