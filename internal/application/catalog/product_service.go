package catalog

import (
	"context"

	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/erp/pricesync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var errPriceRequired = shared.NewDomainError("INVALID_PRICE", "Price is required")

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. events may be nil, in
// which case domain events are dropped.
func NewProductService(productRepo catalog.ProductRepository, events shared.EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		events:      events,
		logger:      logger.Named("product_service"),
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, errPriceRequired
	}
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := catalog.NewProduct(req.Name, *req.Price, quantity)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with search and pagination, ordered by name
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	return shared.NewPaginated(ToProductResponses(products), total, domainFilter.Page, domainFilter.PageSize), nil
}

// Update replaces a product's name, price and quantity
func (s *ProductService) Update(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResponse, error) {
	if req.Price == nil || req.Quantity == nil {
		return nil, shared.ErrInvalidInput
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := product.SetPrice(*req.Price); err != nil {
		return nil, err
	}
	if err := product.SetQuantity(*req.Quantity); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// UpdatePrice changes only the product's price
func (s *ProductService) UpdatePrice(ctx context.Context, id int64, req UpdatePriceRequest) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, errPriceRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "update_price", telemetry.AttrProductID.Int64(id))
	defer span.End()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := product.SetPrice(*req.Price); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetOK(span)
	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	product.MarkDeleted()
	s.publishEvents(ctx, product)
	return nil
}

// CheckAvailability reports whether quantity units of the product can be sold
func (s *ProductService) CheckAvailability(ctx context.Context, id int64, quantity int) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return product.CheckAvailability(quantity)
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) error {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	s.publishEvents(ctx, product)
	return nil
}

// publishEvents hands pending events to the bus once the change is stored.
// Handler failures are logged; the write has already happened.
func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}

	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.Int64("product_id", product.ID),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}
