package persistence

import (
	"context"

	"github.com/erp/pricesync/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactor implements trade.Transactor on top of Database.Transaction
type GormTransactor struct {
	db *Database
}

// NewGormTransactor creates a new GormTransactor
func NewGormTransactor(db *Database) *GormTransactor {
	return &GormTransactor{db: db}
}

// InTx runs fn with repositories bound to a single transaction.
// Only the given stores may be used inside fn: an in-memory sqlite pool
// has one connection, which the transaction holds.
func (t *GormTransactor) InTx(ctx context.Context, fn func(stores trade.Stores) error) error {
	return t.db.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(StoresFor(tx))
	})
}

// StoresFor returns repositories that read and write through db
func StoresFor(db *gorm.DB) trade.Stores {
	return trade.Stores{
		Invoices:  NewGormInvoiceRepository(db),
		Products:  NewGormProductRepository(db),
		Customers: NewGormCustomerRepository(db),
	}
}

var _ trade.Transactor = (*GormTransactor)(nil)
