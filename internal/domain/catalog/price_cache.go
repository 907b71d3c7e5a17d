package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is the price and stock snapshot served by the price lookup
// endpoint.
type PriceQuote struct {
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// QuoteOf takes a snapshot of the product's current price and stock
func QuoteOf(p *Product) PriceQuote {
	return PriceQuote{
		ProductID: p.ID,
		Price:     p.Price,
		Quantity:  p.AvailableQuantity(),
	}
}

// PriceCache stores price quotes keyed by product ID
type PriceCache interface {
	// Get returns the cached quote; found is false on a miss
	Get(ctx context.Context, productID int64) (quote PriceQuote, found bool, err error)

	// Set stores a quote for ttl
	Set(ctx context.Context, quote PriceQuote, ttl time.Duration) error

	// Delete evicts a product's quote; deleting a missing key is not an error
	Delete(ctx context.Context, productID int64) error
}
