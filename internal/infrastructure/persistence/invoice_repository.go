package persistence

import (
	"context"
	"errors"

	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/erp/pricesync/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements trade.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID, items included
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id int64) (*trade.Invoice, error) {
	var invoice trade.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindUnpaidByCustomer lists a customer's unpaid invoices, newest first
func (r *GormInvoiceRepository) FindUnpaidByCustomer(ctx context.Context, customerID int64) ([]trade.Invoice, error) {
	var invoices []trade.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("customer_id = ? AND is_paid = ?", customerID, false).
		Order("date DESC").
		Order("id DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save writes the invoice and brings its stored items in line with
// invoice.Items: missing items are deleted, the rest are upserted.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *trade.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice.IsNew() {
			// inserted without a number, then numbered from the new ID
			if err := tx.Omit(clause.Associations, "Number").Create(invoice).Error; err != nil {
				return err
			}
			invoice.AssignNumber()
			if err := tx.Model(invoice).Update("number", invoice.Number).Error; err != nil {
				return err
			}
		} else {
			result := tx.Model(invoice).
				Select("date", "customer_id", "is_paid", "paid_at", "total", "updated_at").
				Updates(invoice)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}

		keep := make([]int64, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			if item.ID != 0 {
				keep = append(keep, item.ID)
			}
		}
		stale := tx.Where("invoice_id = ?", invoice.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&trade.InvoiceItem{}).Error; err != nil {
			return err
		}

		for i := range invoice.Items {
			invoice.Items[i].InvoiceID = invoice.ID
			if err := tx.Save(&invoice.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ trade.InvoiceRepository = (*GormInvoiceRepository)(nil)
