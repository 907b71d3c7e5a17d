package partner

import (
	"context"

	"github.com/erp/pricesync/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID; returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id int64) (*Customer, error)

	// FindAll finds customers matching the filter, ordered by name by default
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error
}
