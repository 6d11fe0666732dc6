package inventory

import (
	"context"
	"errors"

	"github.com/dukapos/backend/internal/domain/inventory"
	"github.com/dukapos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LedgerService handles product registration and stock movements. Every
// stock change goes through RecordMovement, which runs the read-modify-write
// under the product's row lock so concurrent movements serialize per product
// and the ledger chain stays gapless.
type LedgerService struct {
	txScope        TransactionScope
	productRepo    inventory.ProductRepository
	movementRepo   inventory.StockMovementRepository
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	txScope TransactionScope,
	productRepo inventory.ProductRepository,
	movementRepo inventory.StockMovementRepository,
) *LedgerService {
	return &LedgerService{
		txScope:      txScope,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateProduct registers a new product with zero stock
func (s *LedgerService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindBySKU(ctx, req.SKU)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	product, err := inventory.NewProduct(req.SKU, req.Name, req.MinStockLevel)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns a product by id
func (s *LedgerService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProductBySKU returns a product by its SKU
func (s *LedgerService) GetProductBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListLowStock returns products at or below their minimum stock level
func (s *LedgerService) ListLowStock(ctx context.Context, filter shared.Filter) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses, nil
}

// RecordMovement applies one stock movement and appends its ledger row,
// atomically. The product row is locked for the duration of the transaction,
// so two concurrent movements on the same product cannot both read the same
// balance.
func (s *LedgerService) RecordMovement(ctx context.Context, productID uuid.UUID, req RecordMovementRequest) (*MovementResponse, error) {
	var (
		movement *inventory.StockMovement
		product  *inventory.Product
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		movement, err = product.RecordMovement(req.Kind, req.Direction, req.Quantity, req.Reason, req.ActorID)
		if err != nil {
			return err
		}

		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	resp := ToMovementResponse(movement)
	return &resp, nil
}

// ListMovements returns a page of a product's ledger rows, newest first
func (s *LedgerService) ListMovements(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[MovementResponse], error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	movements, err := s.movementRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.movementRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// publishEvents publishes the aggregate's pending events after commit.
// Event handling is best effort; a failed publish never fails the operation.
func (s *LedgerService) publishEvents(ctx context.Context, product *inventory.Product) {
	if s.eventPublisher == nil || product == nil {
		return
	}
	for _, event := range product.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	product.ClearDomainEvents()
}
