package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// MaxNameLength is the maximum product name length in characters
	MaxNameLength = 255
	// PriceScale is the number of decimal places stored for a price
	PriceScale = 2
)

// maxPrice is the largest value a decimal(10,2) column holds
var maxPrice = decimal.RequireFromString("99999999.99")

// Product is a sellable item with a unit price and on-hand quantity
type Product struct {
	shared.BaseAggregateRoot
	Name     string          `gorm:"type:varchar(255);not null;index"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name string, price decimal.Decimal, quantity int) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price.Round(PriceScale),
		Quantity:          quantity,
	}, nil
}

// Rename changes the product name
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	p.Name = name
	p.touch()
	return nil
}

// SetPrice changes the unit price. A ProductPriceChanged event is recorded
// only when the value actually changes.
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	price = price.Round(PriceScale)
	if price.Equal(p.Price) {
		return nil
	}

	old := p.Price
	p.Price = price
	p.touch()
	p.AddDomainEvent(NewProductPriceChangedEvent(p, old))
	return nil
}

// SetQuantity replaces the on-hand quantity. A ProductStockChanged event
// is recorded only when the value actually changes.
func (p *Product) SetQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	p.changeQuantity(quantity)
	return nil
}

// DeductStock removes sold units from stock
func (p *Product) DeductStock(units int) error {
	if err := p.CheckAvailability(units); err != nil {
		return err
	}
	p.changeQuantity(p.Quantity - units)
	return nil
}

// RestoreStock puts units back into stock, e.g. when an invoice line is
// reduced or removed
func (p *Product) RestoreStock(units int) error {
	if units <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restored quantity must be positive")
	}
	p.changeQuantity(p.Quantity + units)
	return nil
}

func (p *Product) changeQuantity(quantity int) {
	if quantity == p.Quantity {
		return
	}
	old := p.Quantity
	p.Quantity = quantity
	p.touch()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
}

// AvailableQuantity returns the quantity that can be sold
func (p *Product) AvailableQuantity() int {
	return p.Quantity
}

// CheckAvailability returns ErrInsufficientStock when fewer than
// requested units are on hand.
func (p *Product) CheckAvailability(requested int) error {
	if requested <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	if requested > p.AvailableQuantity() {
		return shared.ErrInsufficientStock
	}
	return nil
}

// MarkDeleted records a ProductDeleted event; the caller removes the row.
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// FormattedPrice returns the price with exactly two decimal places, e.g. "15.50"
func (p *Product) FormattedPrice() string {
	return p.Price.StringFixed(PriceScale)
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 255 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if !price.Equal(price.Round(PriceScale)) {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot have more than 2 decimal places")
	}
	if price.GreaterThan(maxPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot exceed 99999999.99")
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	return nil
}
