package catalog

import (
	"context"

	"github.com/erp/pricesync/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID; returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll finds products matching the filter, ordered by name by default
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product; returns shared.ErrNotFound when absent
	Delete(ctx context.Context, id int64) error
}
