package order

import (
	"context"
	"fmt"
	"sort"

	"github.com/dukapos/backend/internal/domain/inventory"
	"github.com/dukapos/backend/internal/domain/order"
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService handles order placement and lifecycle transitions. Stock is
// committed at creation: every line produces a SALE movement in the same
// transaction that persists the order, so an order either exists with all
// its stock deducted or not at all. Cancellation and returns restock through
// compensating RETURN movements for exactly the original quantities.
type OrderService struct {
	txScope        TransactionScope
	orderRepo      order.Repository
	eventPublisher shared.EventPublisher
	defaultTaxRate decimal.Decimal
}

// NewOrderService creates a new OrderService
func NewOrderService(txScope TransactionScope, orderRepo order.Repository) *OrderService {
	return &OrderService{
		txScope:   txScope,
		orderRepo: orderRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaultTaxRate sets the tax rate applied when a create request carries
// no explicit rate
func (s *OrderService) SetDefaultTaxRate(rate decimal.Decimal) {
	s.defaultTaxRate = rate
}

// Create places an order and deducts stock for all its lines atomically.
// Products are locked in ascending ID order so two orders sharing products
// cannot deadlock; if any line has insufficient stock the whole order is
// rolled back.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one item")
	}

	taxRate := req.TaxRate
	if taxRate.IsZero() {
		taxRate = s.defaultTaxRate
	}

	// merge duplicate product lines so each product is locked once
	quantities := make(map[uuid.UUID]int64, len(req.Items))
	inputs := make([]order.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		quantities[item.ProductID] += item.Quantity
		inputs = append(inputs, order.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	productIDs := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	var (
		newOrder *order.Order
		products []*inventory.Product
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		orderNumber, err := repos.OrderRepo().GenerateOrderNumber(ctx)
		if err != nil {
			return err
		}

		newOrder, err = order.NewOrder(orderNumber, req.CustomerID, inputs, taxRate, req.Discount)
		if err != nil {
			return err
		}

		for _, productID := range productIDs {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, productID)
			if err != nil {
				return err
			}

			movement, err := product.RecordMovement(
				inventory.MovementKindSale,
				inventory.DirectionUnspecified,
				quantities[productID],
				fmt.Sprintf("order %s", orderNumber),
				req.ActorID,
			)
			if err != nil {
				return err
			}

			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return err
			}
			if err := repos.ProductRepo().UpdateStock(ctx, product); err != nil {
				return err
			}
			products = append(products, product)
		}

		return repos.OrderRepo().Save(ctx, newOrder)
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvents(ctx, newOrder)
	for _, product := range products {
		s.publishProductEvents(ctx, product)
	}

	resp := ToOrderResponse(newOrder)
	return &resp, nil
}

// Get returns an order by id
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByOrderNumber returns an order by its business key
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListByCustomer returns a customer's orders, newest first
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// ListByStatus returns orders in a given status
func (s *OrderService) ListByStatus(ctx context.Context, status order.OrderStatus, filter shared.Filter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// SetStatus transitions an order. Moving to CANCELLED or RETURNED restocks
// every line with a compensating RETURN movement in the same transaction as
// the status change.
func (s *OrderService) SetStatus(ctx context.Context, orderID uuid.UUID, req SetStatusRequest) (*OrderResponse, error) {
	var (
		target   = req.Status
		o        *order.Order
		products []*inventory.Product
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if err := o.TransitionTo(target, req.Reason); err != nil {
			return err
		}

		if target == order.OrderStatusCancelled || target == order.OrderStatusReturned {
			products, err = s.restockItems(ctx, repos, o, req.ActorID)
			if err != nil {
				return err
			}
		}

		return repos.OrderRepo().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvents(ctx, o)
	for _, product := range products {
		s.publishProductEvents(ctx, product)
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// restockItems records a RETURN movement per order line. Products are locked
// in ascending ID order, same as Create.
func (s *OrderService) restockItems(ctx context.Context, repos TransactionalRepositories, o *order.Order, actorID uuid.UUID) ([]*inventory.Product, error) {
	quantities := make(map[uuid.UUID]int64, len(o.Items))
	for _, item := range o.Items {
		quantities[item.ProductID] += item.Quantity
	}

	productIDs := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	reason := fmt.Sprintf("order %s %s", o.OrderNumber, o.Status)

	products := make([]*inventory.Product, 0, len(productIDs))
	for _, productID := range productIDs {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return nil, err
		}

		movement, err := product.RecordMovement(
			inventory.MovementKindReturn,
			inventory.DirectionUnspecified,
			quantities[productID],
			reason,
			actorID,
		)
		if err != nil {
			return nil, err
		}

		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return nil, err
		}
		if err := repos.ProductRepo().UpdateStock(ctx, product); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func toOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses
}

// publishOrderEvents publishes the order's pending events after commit.
// Event handling is best effort; a failed publish never fails the operation.
func (s *OrderService) publishOrderEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	o.ClearDomainEvents()
}

func (s *OrderService) publishProductEvents(ctx context.Context, product *inventory.Product) {
	if s.eventPublisher == nil || product == nil {
		return
	}
	for _, event := range product.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	product.ClearDomainEvents()
}
