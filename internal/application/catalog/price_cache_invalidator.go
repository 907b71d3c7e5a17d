package catalog

import (
	"context"
	"fmt"

	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/erp/pricesync/internal/domain/shared"
	"go.uber.org/zap"
)

// PriceCacheInvalidator evicts cached price quotes when a product's price
// or stock changes or the product is deleted.
type PriceCacheInvalidator struct {
	cache  catalog.PriceCache
	logger *zap.Logger
}

// NewPriceCacheInvalidator creates a new invalidation handler
func NewPriceCacheInvalidator(cache catalog.PriceCache, logger *zap.Logger) *PriceCacheInvalidator {
	return &PriceCacheInvalidator{
		cache:  cache,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PriceCacheInvalidator) EventTypes() []string {
	return []string{
		catalog.EventTypeProductPriceChanged,
		catalog.EventTypeProductDeleted,
		catalog.EventTypeProductStockChanged,
	}
}

// Handle evicts the event's product from the cache
func (h *PriceCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch event.(type) {
	case *catalog.ProductPriceChangedEvent, *catalog.ProductDeletedEvent, *catalog.ProductStockChangedEvent:
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	productID := event.AggregateID()
	if err := h.cache.Delete(ctx, productID); err != nil {
		return fmt.Errorf("evict price of product %d: %w", productID, err)
	}

	h.logger.Debug("price cache entry evicted",
		zap.Int64("product_id", productID),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

var _ shared.EventHandler = (*PriceCacheInvalidator)(nil)
