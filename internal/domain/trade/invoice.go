package trade

import (
	"fmt"
	"slices"
	"time"

	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/erp/pricesync/internal/domain/partner"
	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places kept for invoice amounts
const AmountScale = 2

// Invoice item errors
var (
	ErrInvoicePaid  = shared.NewDomainError("INVALID_STATE", "Cannot change items of a paid invoice")
	ErrItemNotFound = shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
)

// InvoiceItem is one product line of an invoice. Price is copied from the
// product when the line is added.
type InvoiceItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	InvoiceID int64           `gorm:"not null;index"`
	ProductID int64           `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// Amount returns price times quantity
func (i *InvoiceItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Invoice is a bill issued to a company customer. Adding, resizing or
// removing a line moves the product's stock, and Total always equals the
// sum of line amounts.
type Invoice struct {
	shared.BaseAggregateRoot
	Number     string    `gorm:"type:varchar(20);uniqueIndex"`
	Date       time.Time `gorm:"type:date;not null;index"`
	CustomerID int64     `gorm:"not null;index"`
	IsPaid     bool      `gorm:"not null;default:false;index"`
	PaidAt     *time.Time
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Items      []InvoiceItem   `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an empty invoice dated date (today when zero).
// The number is assigned once the invoice has an ID.
func NewInvoice(customer *partner.Customer, date time.Time) (*Invoice, error) {
	if customer == nil || customer.IsNew() {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if !customer.CanBeInvoiced() {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Invoices can only be issued to companies")
	}
	if date.IsZero() {
		date = time.Now()
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Date:              truncateToDay(date),
		CustomerID:        customer.ID,
		Total:             decimal.Zero,
		Items:             make([]InvoiceItem, 0),
	}, nil
}

// AssignNumber derives the invoice number from its ID, e.g. "INV-12".
// It does nothing once a number is set.
func (i *Invoice) AssignNumber() {
	if i.Number == "" && i.ID > 0 {
		i.Number = fmt.Sprintf("INV-%d", i.ID)
	}
}

// AddItem adds a line for product at the product's current price and
// deducts quantity units from its stock
func (i *Invoice) AddItem(product *catalog.Product, quantity int) (*InvoiceItem, error) {
	if i.IsPaid {
		return nil, ErrInvoicePaid
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if i.ItemByProduct(product.ID) != nil {
		return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product is already on the invoice, change its quantity instead")
	}
	if err := product.DeductStock(quantity); err != nil {
		return nil, err
	}

	i.Items = append(i.Items, InvoiceItem{
		InvoiceID: i.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
		CreatedAt: time.Now(),
	})
	i.changed()
	return &i.Items[len(i.Items)-1], nil
}

// UpdateItemQuantity resizes a line. The old quantity goes back to stock
// before the new one is taken, so the line can grow by at most the stock
// on hand.
func (i *Invoice) UpdateItemQuantity(itemID int64, product *catalog.Product, quantity int) error {
	if i.IsPaid {
		return ErrInvoicePaid
	}
	item := i.ItemByID(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	if item.ProductID != product.ID {
		return shared.NewDomainError("INVALID_PRODUCT", "Product does not match the invoice item")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if quantity > product.AvailableQuantity()+item.Quantity {
		return shared.ErrInsufficientStock
	}

	var err error
	switch delta := quantity - item.Quantity; {
	case delta > 0:
		err = product.DeductStock(delta)
	case delta < 0:
		err = product.RestoreStock(-delta)
	}
	if err != nil {
		return err
	}

	item.Quantity = quantity
	i.changed()
	return nil
}

// RemoveItem drops a line and returns its quantity to stock
func (i *Invoice) RemoveItem(itemID int64, product *catalog.Product) error {
	if i.IsPaid {
		return ErrInvoicePaid
	}
	idx := slices.IndexFunc(i.Items, func(it InvoiceItem) bool { return it.ID == itemID })
	if idx < 0 {
		return ErrItemNotFound
	}
	if i.Items[idx].ProductID != product.ID {
		return shared.NewDomainError("INVALID_PRODUCT", "Product does not match the invoice item")
	}
	if err := product.RestoreStock(i.Items[idx].Quantity); err != nil {
		return err
	}

	i.Items = slices.Delete(i.Items, idx, idx+1)
	i.changed()
	return nil
}

// MarkPaid marks the invoice paid. Paying a paid invoice does nothing.
func (i *Invoice) MarkPaid() {
	if i.IsPaid {
		return
	}
	now := time.Now()
	i.IsPaid = true
	i.PaidAt = &now
	i.UpdatedAt = now
}

// ItemByID returns the line with the given ID, or nil
func (i *Invoice) ItemByID(itemID int64) *InvoiceItem {
	for idx := range i.Items {
		if i.Items[idx].ID == itemID {
			return &i.Items[idx]
		}
	}
	return nil
}

// ItemByProduct returns the line for a product, or nil
func (i *Invoice) ItemByProduct(productID int64) *InvoiceItem {
	for idx := range i.Items {
		if i.Items[idx].ProductID == productID {
			return &i.Items[idx]
		}
	}
	return nil
}

// FormattedTotal returns the total with two decimal places, e.g. "31.00"
func (i *Invoice) FormattedTotal() string {
	return i.Total.StringFixed(AmountScale)
}

func (i *Invoice) changed() {
	total := decimal.Zero
	for idx := range i.Items {
		total = total.Add(i.Items[idx].Amount())
	}
	i.Total = total.Round(AmountScale)
	i.UpdatedAt = time.Now()
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
