package integration

import (
	"context"
	"testing"
	"time"

	inventoryapp "github.com/dukapos/backend/internal/application/inventory"
	orderapp "github.com/dukapos/backend/internal/application/order"
	paymentapp "github.com/dukapos/backend/internal/application/payment"
	"github.com/dukapos/backend/internal/domain/inventory"
	"github.com/dukapos/backend/internal/domain/order"
	"github.com/dukapos/backend/internal/domain/payment"
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/dukapos/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGateway is a controllable Gateway for integration tests. The flow
// under test is reconciliation, not transport, so the gateway is scripted.
type stubGateway struct {
	pushResp   *payment.PushResponse
	pushErr    error
	statusResp *payment.StatusResult
	statusErr  error
	pushCalls  int
}

func (g *stubGateway) InitiateSTKPush(_ context.Context, _ payment.PushRequest) (*payment.PushResponse, error) {
	g.pushCalls++
	if g.pushErr != nil {
		return nil, g.pushErr
	}
	return g.pushResp, nil
}

func (g *stubGateway) QueryStatus(_ context.Context, _ string) (*payment.StatusResult, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.statusResp, nil
}

type testServices struct {
	ledger *inventoryapp.LedgerService
	orders *orderapp.OrderService
	recon  *paymentapp.ReconciliationService
}

func newTestServices(testDB *TestDB, gateway payment.Gateway) testServices {
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	movementRepo := persistence.NewGormStockMovementRepository(testDB.DB)
	orderRepo := persistence.NewGormOrderRepository(testDB.DB)
	paymentRepo := persistence.NewGormPaymentRepository(testDB.DB)

	ledger := inventoryapp.NewLedgerService(
		persistence.NewGormInventoryTransactionScope(testDB.DB), productRepo, movementRepo)
	orders := orderapp.NewOrderService(
		persistence.NewGormOrderTransactionScope(testDB.DB), orderRepo)
	recon := paymentapp.NewReconciliationService(
		persistence.NewGormPaymentTransactionScope(testDB.DB), paymentRepo, orderRepo, gateway, zap.NewNop())

	return testServices{ledger: ledger, orders: orders, recon: recon}
}

// stockProduct registers a product and receives initial stock into it
func stockProduct(t *testing.T, svc testServices, sku string, initial int64) *inventoryapp.ProductResponse {
	t.Helper()
	ctx := context.Background()

	product, err := svc.ledger.CreateProduct(ctx, inventoryapp.CreateProductRequest{
		SKU:           sku,
		Name:          "Test " + sku,
		MinStockLevel: 10,
	})
	require.NoError(t, err)

	if initial > 0 {
		_, err = svc.ledger.RecordMovement(ctx, product.ID, inventoryapp.RecordMovementRequest{
			Kind:     inventory.MovementKindPurchase,
			Quantity: initial,
			Reason:   "initial delivery",
			ActorID:  uuid.New(),
		})
		require.NoError(t, err)
	}
	return product
}

func TestLedgerFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	svc := newTestServices(testDB, &stubGateway{})
	ctx := context.Background()

	product := stockProduct(t, svc, "SUGAR-1KG", 100)
	actorID := uuid.New()

	t.Run("movements chain and stock tracks the ledger", func(t *testing.T) {
		sale, err := svc.ledger.RecordMovement(ctx, product.ID, inventoryapp.RecordMovementRequest{
			Kind:     inventory.MovementKindSale,
			Quantity: 95,
			Reason:   "bulk sale",
			ActorID:  actorID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100), sale.PreviousStock)
		assert.Equal(t, int64(5), sale.NewStock)
		assert.Equal(t, inventory.DirectionOut, sale.Direction)

		found, err := svc.ledger.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), found.CurrentStock)
		assert.True(t, found.LowStockAlert, "stock of 5 is below the minimum of 10")

		movements, err := svc.ledger.ListMovements(ctx, product.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), movements.Total)
	})

	t.Run("overdraw is rejected and leaves the ledger untouched", func(t *testing.T) {
		_, err := svc.ledger.RecordMovement(ctx, product.ID, inventoryapp.RecordMovementRequest{
			Kind:     inventory.MovementKindSale,
			Quantity: 50,
			Reason:   "oversell attempt",
			ActorID:  actorID,
		})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		found, err := svc.ledger.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), found.CurrentStock)

		movements, err := svc.ledger.ListMovements(ctx, product.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), movements.Total)
	})
}

func TestOrderFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	svc := newTestServices(testDB, &stubGateway{})
	ctx := context.Background()

	product := stockProduct(t, svc, "RICE-5KG", 50)
	customerID := uuid.New()
	actorID := uuid.New()

	t.Run("creating an order deducts stock in the same transaction", func(t *testing.T) {
		created, err := svc.orders.Create(ctx, orderapp.CreateOrderRequest{
			CustomerID: customerID,
			Items: []orderapp.CreateOrderItemInput{
				{ProductID: product.ID, Quantity: 30, UnitPrice: decimal.NewFromInt(750)},
			},
			ActorID: actorID,
		})
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusPending, created.Status)
		assert.Equal(t, order.PaymentStatusPending, created.PaymentStatus)
		assert.True(t, created.Total.Equal(decimal.NewFromInt(22500)))

		found, err := svc.ledger.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20), found.CurrentStock)
	})

	t.Run("insufficient stock rolls the whole order back", func(t *testing.T) {
		_, err := svc.orders.Create(ctx, orderapp.CreateOrderRequest{
			CustomerID: customerID,
			Items: []orderapp.CreateOrderItemInput{
				{ProductID: product.ID, Quantity: 100, UnitPrice: decimal.NewFromInt(750)},
			},
			ActorID: actorID,
		})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		found, err := svc.ledger.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20), found.CurrentStock)
	})

	t.Run("cancelling a pending order restocks its items", func(t *testing.T) {
		created, err := svc.orders.Create(ctx, orderapp.CreateOrderRequest{
			CustomerID: customerID,
			Items: []orderapp.CreateOrderItemInput{
				{ProductID: product.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(750)},
			},
			ActorID: actorID,
		})
		require.NoError(t, err)

		cancelled, err := svc.orders.SetStatus(ctx, created.ID, orderapp.SetStatusRequest{
			Status:  order.OrderStatusCancelled,
			Reason:  "customer changed their mind",
			ActorID: actorID,
		})
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusCancelled, cancelled.Status)

		found, err := svc.ledger.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20), found.CurrentStock, "cancellation returns the 5 units")
	})
}

func TestReconciliationFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	gateway := &stubGateway{
		pushResp: &payment.PushResponse{
			MerchantRequestID: "29115-34620561-1",
			CheckoutRequestID: "ws_CO_20260115101010001",
			CustomerMessage:   "Success. Request accepted for processing",
		},
	}
	svc := newTestServices(testDB, gateway)
	ctx := context.Background()

	customerID := uuid.New()
	actorID := uuid.New()
	product := stockProduct(t, svc, "OIL-3L", 100)

	placeOrder := func(t *testing.T, quantity int64) *orderapp.OrderResponse {
		t.Helper()
		o, err := svc.orders.Create(ctx, orderapp.CreateOrderRequest{
			CustomerID: customerID,
			Items: []orderapp.CreateOrderItemInput{
				{ProductID: product.ID, Quantity: quantity, UnitPrice: decimal.NewFromInt(500)},
			},
			ActorID: actorID,
		})
		require.NoError(t, err)
		return o
	}

	t.Run("webhook settles a pending mobile payment and completes the order", func(t *testing.T) {
		o := placeOrder(t, 3) // total 1500

		initiated, err := svc.recon.InitiateMobilePayment(ctx, paymentapp.InitiateMobilePaymentRequest{
			OrderID:     o.ID,
			Amount:      o.Total,
			PhoneNumber: "254712345678",
		})
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, initiated.Status)
		assert.Equal(t, "ws_CO_20260115101010001", initiated.CheckoutRequestID)

		err = svc.recon.HandleNotice(ctx, paymentapp.SettlementNotice{
			CheckoutRequestID: initiated.CheckoutRequestID,
			ResultCode:        payment.ResultCodeSuccess,
			ResultDescription: "The service request is processed successfully.",
			Receipt:           "NLJ7RT61SV",
			Amount:            o.Total,
			PaidAt:            time.Now(),
		})
		require.NoError(t, err)

		settled, err := svc.recon.Get(ctx, initiated.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusSettled, settled.Status)
		assert.Equal(t, "NLJ7RT61SV", settled.GatewayReceipt)

		paid, err := svc.orders.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusCompleted, paid.PaymentStatus)

		// gateway retries deliver the same callback again; the replay is a no-op
		err = svc.recon.HandleNotice(ctx, paymentapp.SettlementNotice{
			CheckoutRequestID: initiated.CheckoutRequestID,
			ResultCode:        payment.ResultCodeSuccess,
			Receipt:           "NLJ7RT61SV",
			Amount:            o.Total,
			PaidAt:            time.Now(),
		})
		require.NoError(t, err)

		payments, err := svc.recon.ListByOrder(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, payment.StatusSettled, payments[0].Status)
	})

	t.Run("customer dismissing the prompt cancels the payment, not the order", func(t *testing.T) {
		o := placeOrder(t, 2)

		gateway.pushResp.CheckoutRequestID = "ws_CO_20260115101010002"
		initiated, err := svc.recon.InitiateMobilePayment(ctx, paymentapp.InitiateMobilePaymentRequest{
			OrderID:     o.ID,
			Amount:      o.Total,
			PhoneNumber: "254712345678",
		})
		require.NoError(t, err)

		err = svc.recon.HandleNotice(ctx, paymentapp.SettlementNotice{
			CheckoutRequestID: initiated.CheckoutRequestID,
			ResultCode:        payment.ResultCodeUserCancelled,
			ResultDescription: "Request cancelled by user",
		})
		require.NoError(t, err)

		p, err := svc.recon.Get(ctx, initiated.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusCancelled, p.Status)

		unpaid, err := svc.orders.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPending, unpaid.PaymentStatus)
	})

	t.Run("poll converges a payment whose callback never arrived", func(t *testing.T) {
		o := placeOrder(t, 4) // total 2000

		gateway.pushResp.CheckoutRequestID = "ws_CO_20260115101010003"
		initiated, err := svc.recon.InitiateMobilePayment(ctx, paymentapp.InitiateMobilePaymentRequest{
			OrderID:     o.ID,
			Amount:      o.Total,
			PhoneNumber: "254712345678",
		})
		require.NoError(t, err)

		gateway.statusResp = &payment.StatusResult{
			CheckoutRequestID: initiated.CheckoutRequestID,
			ResultCode:        payment.ResultCodeSuccess,
			ResultDescription: "The service request is processed successfully.",
			Receipt:           "NLJ8XK42PQ",
			Amount:            o.Total,
			TransactionTime:   time.Now(),
		}

		polled, err := svc.recon.Poll(ctx, initiated.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusSettled, polled.Status)
		assert.Equal(t, "NLJ8XK42PQ", polled.GatewayReceipt)

		paid, err := svc.orders.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusCompleted, paid.PaymentStatus)
	})

	t.Run("cash instalments move the order through partial to completed", func(t *testing.T) {
		o := placeOrder(t, 2) // total 1000

		_, err := svc.recon.RecordCashPayment(ctx, paymentapp.RecordCashPaymentRequest{
			OrderID: o.ID,
			Amount:  decimal.NewFromInt(400),
		})
		require.NoError(t, err)

		partial, err := svc.orders.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPartial, partial.PaymentStatus)

		_, err = svc.recon.RecordCashPayment(ctx, paymentapp.RecordCashPaymentRequest{
			OrderID: o.ID,
			Amount:  decimal.NewFromInt(600),
		})
		require.NoError(t, err)

		completed, err := svc.orders.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusCompleted, completed.PaymentStatus)
	})

	t.Run("order counts what the gateway settled, not what was requested", func(t *testing.T) {
		o := placeOrder(t, 2) // total 1000

		gateway.pushResp.CheckoutRequestID = "ws_CO_20260115101010004"
		initiated, err := svc.recon.InitiateMobilePayment(ctx, paymentapp.InitiateMobilePaymentRequest{
			OrderID:     o.ID,
			Amount:      o.Total,
			PhoneNumber: "254712345678",
		})
		require.NoError(t, err)

		err = svc.recon.HandleNotice(ctx, paymentapp.SettlementNotice{
			CheckoutRequestID: initiated.CheckoutRequestID,
			ResultCode:        payment.ResultCodeSuccess,
			ResultDescription: "The service request is processed successfully.",
			Receipt:           "NLJ9QW53RT",
			Amount:            decimal.NewFromInt(400),
			PaidAt:            time.Now(),
		})
		require.NoError(t, err)

		settled, err := svc.recon.Get(ctx, initiated.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusSettled, settled.Status)
		assert.True(t, settled.Amount.Equal(o.Total))
		require.NotNil(t, settled.SettledAmount)
		assert.True(t, settled.SettledAmount.Equal(decimal.NewFromInt(400)))

		shortPaid, err := svc.orders.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPartial, shortPaid.PaymentStatus)
	})
}
