package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/erp/pricesync/internal/domain/trade"
	"github.com/erp/pricesync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var errInvalidDate = shared.NewDomainError("INVALID_INPUT", "Date must be in YYYY-MM-DD format")

// InvoiceService issues invoices and edits their lines. Every change that
// moves stock runs in one transaction with the invoice write; the stock
// events are published after commit.
type InvoiceService struct {
	stores trade.Stores
	tx     trade.Transactor
	events shared.EventPublisher
	logger *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. stores serves reads
// outside a transaction. events may be nil.
func NewInvoiceService(stores trade.Stores, tx trade.Transactor, events shared.EventPublisher, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		stores: stores,
		tx:     tx,
		events: events,
		logger: logger.Named("invoice_service"),
	}
}

// Create issues an invoice to a company customer, pricing each line from
// its product and deducting the quantities from stock
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create", telemetry.AttrCustomerID.Int64(req.CustomerID))
	defer span.End()

	date, err := parseDate(req.Date)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		invoice *trade.Invoice
		touched []*catalog.Product
	)
	err = s.tx.InTx(ctx, func(stores trade.Stores) error {
		customer, err := stores.Customers.FindByID(ctx, req.CustomerID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CUSTOMER", fmt.Sprintf("Customer %d does not exist", req.CustomerID))
		}
		if err != nil {
			return err
		}

		inv, err := trade.NewInvoice(customer, date)
		if err != nil {
			return err
		}
		products := make([]*catalog.Product, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := loadProduct(ctx, stores, line.ProductID)
			if err != nil {
				return err
			}
			if _, err := inv.AddItem(product, line.Quantity); err != nil {
				return err
			}
			products = append(products, product)
		}

		if err := commit(ctx, stores, inv, products); err != nil {
			return err
		}
		invoice, touched = inv, products
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishStockEvents(ctx, touched)
	s.logger.Info("invoice created",
		zap.Int64("invoice_id", invoice.ID),
		zap.String("number", invoice.Number),
		zap.Int64("customer_id", invoice.CustomerID),
		zap.String("total", invoice.FormattedTotal()))
	telemetry.SetOK(span)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice with its lines
func (s *InvoiceService) GetByID(ctx context.Context, id int64) (*InvoiceResponse, error) {
	invoice, err := s.stores.Invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// ListUnpaidForCustomer lists a customer's unpaid invoices, newest first.
// An unknown customer is shared.ErrNotFound.
func (s *InvoiceService) ListUnpaidForCustomer(ctx context.Context, customerID int64) ([]InvoiceSummary, error) {
	if _, err := s.stores.Customers.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	invoices, err := s.stores.Invoices.FindUnpaidByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceSummaries(invoices), nil
}

// AddItem adds a product line to an unpaid invoice
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID int64, req InvoiceItemRequest) (*InvoiceResponse, error) {
	return s.modify(ctx, invoiceID, "add_item", func(stores trade.Stores, inv *trade.Invoice) ([]*catalog.Product, error) {
		product, err := loadProduct(ctx, stores, req.ProductID)
		if err != nil {
			return nil, err
		}
		if _, err := inv.AddItem(product, req.Quantity); err != nil {
			return nil, err
		}
		return []*catalog.Product{product}, nil
	})
}

// UpdateItem changes the quantity of an invoice line
func (s *InvoiceService) UpdateItem(ctx context.Context, invoiceID, itemID int64, req UpdateInvoiceItemRequest) (*InvoiceResponse, error) {
	return s.modify(ctx, invoiceID, "update_item", func(stores trade.Stores, inv *trade.Invoice) ([]*catalog.Product, error) {
		product, err := lineProduct(ctx, stores, inv, itemID)
		if err != nil {
			return nil, err
		}
		if err := inv.UpdateItemQuantity(itemID, product, req.Quantity); err != nil {
			return nil, err
		}
		return []*catalog.Product{product}, nil
	})
}

// RemoveItem drops an invoice line and returns its quantity to stock
func (s *InvoiceService) RemoveItem(ctx context.Context, invoiceID, itemID int64) (*InvoiceResponse, error) {
	return s.modify(ctx, invoiceID, "remove_item", func(stores trade.Stores, inv *trade.Invoice) ([]*catalog.Product, error) {
		product, err := lineProduct(ctx, stores, inv, itemID)
		if err != nil {
			return nil, err
		}
		if err := inv.RemoveItem(itemID, product); err != nil {
			return nil, err
		}
		return []*catalog.Product{product}, nil
	})
}

// MarkPaid marks an invoice paid; paying twice is not an error
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID int64) (*InvoiceResponse, error) {
	return s.modify(ctx, invoiceID, "mark_paid", func(_ trade.Stores, inv *trade.Invoice) ([]*catalog.Product, error) {
		inv.MarkPaid()
		return nil, nil
	})
}

// modify loads an invoice inside a transaction, applies change and stores
// the invoice with every product change returns
func (s *InvoiceService) modify(
	ctx context.Context,
	invoiceID int64,
	method string,
	change func(stores trade.Stores, inv *trade.Invoice) ([]*catalog.Product, error),
) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", method, telemetry.AttrInvoiceID.Int64(invoiceID))
	defer span.End()

	var (
		invoice *trade.Invoice
		touched []*catalog.Product
	)
	err := s.tx.InTx(ctx, func(stores trade.Stores) error {
		inv, err := stores.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		products, err := change(stores, inv)
		if err != nil {
			return err
		}
		if err := commit(ctx, stores, inv, products); err != nil {
			return err
		}
		invoice, touched = inv, products
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishStockEvents(ctx, touched)
	telemetry.SetOK(span)
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

func commit(ctx context.Context, stores trade.Stores, inv *trade.Invoice, products []*catalog.Product) error {
	for _, p := range products {
		if err := stores.Products.Save(ctx, p); err != nil {
			return err
		}
	}
	return stores.Invoices.Save(ctx, inv)
}

// publishStockEvents hands the committed stock changes to the bus so
// cached price quotes are evicted. Failures are logged only.
func (s *InvoiceService) publishStockEvents(ctx context.Context, products []*catalog.Product) {
	var events []shared.DomainEvent
	for _, p := range products {
		events = append(events, p.GetDomainEvents()...)
		p.ClearDomainEvents()
	}
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock events",
			zap.Int("event_count", len(events)),
			zap.Error(err))
	}
}

func loadProduct(ctx context.Context, stores trade.Stores, id int64) (*catalog.Product, error) {
	product, err := stores.Products.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Product %d does not exist", id))
	}
	return product, err
}

func lineProduct(ctx context.Context, stores trade.Stores, inv *trade.Invoice, itemID int64) (*catalog.Product, error) {
	item := inv.ItemByID(itemID)
	if item == nil {
		return nil, trade.ErrItemNotFound
	}
	return loadProduct(ctx, stores, item.ProductID)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return date, nil
}
