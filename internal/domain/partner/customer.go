package partner

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/pricesync/internal/domain/shared"
)

const (
	// MaxNameLength is the maximum customer name length in characters
	MaxNameLength = 255
	// MaxContactLength is the maximum contact length in characters
	MaxContactLength = 255
)

// Customer is a buyer. Only companies can be invoiced.
type Customer struct {
	shared.BaseAggregateRoot
	Name      string `gorm:"type:varchar(255);not null;index"`
	IsCompany bool   `gorm:"not null;default:false;index"`
	Contact   string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name, contact string, isCompany bool) (*Customer, error) {
	name, contact = strings.TrimSpace(name), strings.TrimSpace(contact)
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validateContact(contact); err != nil {
		return nil, err
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IsCompany:         isCompany,
		Contact:           contact,
	}, nil
}

// Update replaces the customer's editable fields
func (c *Customer) Update(name, contact string, isCompany bool) error {
	name, contact = strings.TrimSpace(name), strings.TrimSpace(contact)
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateContact(contact); err != nil {
		return err
	}

	c.Name = name
	c.Contact = contact
	c.IsCompany = isCompany
	c.UpdatedAt = time.Now()
	return nil
}

// CanBeInvoiced reports whether invoices may be issued to the customer
func (c *Customer) CanBeInvoiced() bool {
	return c.IsCompany
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 255 characters")
	}
	return nil
}

func validateContact(contact string) error {
	if utf8.RuneCountInString(contact) > MaxContactLength {
		return shared.NewDomainError("INVALID_CONTACT", "Contact cannot exceed 255 characters")
	}
	return nil
}
