package cache

import (
	"context"
	"time"

	"github.com/erp/pricesync/internal/domain/catalog"
)

// PriceCache is a catalog.PriceCache that owns resources to release
type PriceCache interface {
	catalog.PriceCache
	Close() error
}

// NopPriceCache never stores anything; used when caching is disabled
type NopPriceCache struct{}

// Get always misses
func (NopPriceCache) Get(context.Context, int64) (catalog.PriceQuote, bool, error) {
	return catalog.PriceQuote{}, false, nil
}

// Set discards the quote
func (NopPriceCache) Set(context.Context, catalog.PriceQuote, time.Duration) error { return nil }

// Delete does nothing
func (NopPriceCache) Delete(context.Context, int64) error { return nil }

// Close does nothing
func (NopPriceCache) Close() error { return nil }

var _ PriceCache = NopPriceCache{}
