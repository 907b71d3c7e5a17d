package fieldsync

import "context"

// ProductID is the opaque identifier read from the product selector
type ProductID string

// Quote is the result of a price lookup.
// Price is the raw text of the price field, e.g. "15.50".
type Quote struct {
	Price    string
	Quantity *int
}

// Lookup fetches the current price of a product
type Lookup interface {
	LookupPrice(ctx context.Context, id ProductID) (Quote, error)
}

// LookupFunc adapts a function to the Lookup interface
type LookupFunc func(ctx context.Context, id ProductID) (Quote, error)

// LookupPrice calls f
func (f LookupFunc) LookupPrice(ctx context.Context, id ProductID) (Quote, error) {
	return f(ctx, id)
}
