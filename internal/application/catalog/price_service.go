package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/erp/pricesync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultPriceCacheTTL is used when no TTL option is given
const DefaultPriceCacheTTL = 30 * time.Second

// PriceService serves product price lookups through a read-through cache.
// Cache failures are logged and the repository answers instead.
type PriceService struct {
	productRepo catalog.ProductRepository
	cache       catalog.PriceCache
	ttl         time.Duration
	metrics     *telemetry.PriceLookupMetrics
	logger      *zap.Logger
}

// PriceServiceOption configures a PriceService
type PriceServiceOption func(*PriceService)

// WithPriceCache enables read-through caching. A ttl of zero or less
// reads from the cache but never populates it.
func WithPriceCache(cache catalog.PriceCache, ttl time.Duration) PriceServiceOption {
	return func(s *PriceService) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithPriceMetrics records lookups by result
func WithPriceMetrics(metrics *telemetry.PriceLookupMetrics) PriceServiceOption {
	return func(s *PriceService) {
		s.metrics = metrics
	}
}

// WithPriceLogger sets the service logger
func WithPriceLogger(logger *zap.Logger) PriceServiceOption {
	return func(s *PriceService) {
		s.logger = logger
	}
}

// NewPriceService creates a new PriceService
func NewPriceService(productRepo catalog.ProductRepository, opts ...PriceServiceOption) *PriceService {
	s := &PriceService{
		productRepo: productRepo,
		ttl:         DefaultPriceCacheTTL,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("price_service")
	return s
}

// GetPrice returns the current price and stock of a product.
// Unknown products yield shared.ErrNotFound.
func (s *PriceService) GetPrice(ctx context.Context, productID int64) (*PriceResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "price", "get", telemetry.AttrProductID.Int64(productID))
	defer span.End()

	if quote, ok := s.fromCache(ctx, productID); ok {
		s.metrics.RecordLookup(ctx, telemetry.LookupResultHit, time.Since(start))
		telemetry.SetOK(span)
		response := ToPriceResponse(quote)
		return &response, nil
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		result := telemetry.LookupResultError
		if errors.Is(err, shared.ErrNotFound) {
			result = telemetry.LookupResultNotFound
		} else {
			telemetry.RecordError(span, err)
		}
		s.metrics.RecordLookup(ctx, result, time.Since(start))
		return nil, err
	}

	quote := catalog.QuoteOf(product)
	s.toCache(ctx, quote)

	s.metrics.RecordLookup(ctx, telemetry.LookupResultMiss, time.Since(start))
	telemetry.SetOK(span)
	response := ToPriceResponse(quote)
	return &response, nil
}

func (s *PriceService) fromCache(ctx context.Context, productID int64) (catalog.PriceQuote, bool) {
	if s.cache == nil {
		return catalog.PriceQuote{}, false
	}
	quote, found, err := s.cache.Get(ctx, productID)
	if err != nil {
		s.logger.Warn("price cache read failed",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return catalog.PriceQuote{}, false
	}
	return quote, found
}

func (s *PriceService) toCache(ctx context.Context, quote catalog.PriceQuote) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, quote, s.ttl); err != nil {
		s.logger.Warn("price cache write failed",
			zap.Int64("product_id", quote.ProductID),
			zap.Error(err),
		)
	}
}
