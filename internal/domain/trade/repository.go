package trade

import (
	"context"

	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/erp/pricesync/internal/domain/partner"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID loads an invoice with its items; returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id int64) (*Invoice, error)

	// FindUnpaidByCustomer lists a customer's unpaid invoices with their
	// items, newest first
	FindUnpaidByCustomer(ctx context.Context, customerID int64) ([]Invoice, error)

	// Save creates or updates an invoice together with its items: stored
	// items missing from invoice.Items are deleted. A new invoice gets its
	// number assigned.
	Save(ctx context.Context, invoice *Invoice) error
}

// Stores groups the repositories an invoice change writes through.
// Stores handed to a Transactor callback share one transaction.
type Stores struct {
	Invoices  InvoiceRepository
	Products  catalog.ProductRepository
	Customers partner.CustomerRepository
}

// Transactor runs fn in a transaction: every write made through the given
// Stores commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(stores Stores) error) error
}
