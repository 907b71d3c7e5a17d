package trade

import (
	"time"

	"github.com/erp/pricesync/internal/domain/trade"
)

// DateLayout is the wire format of invoice dates
const DateLayout = "2006-01-02"

// InvoiceItemRequest is one product line of a new invoice
type InvoiceItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// CreateInvoiceRequest represents a request to issue an invoice.
// Date is YYYY-MM-DD and defaults to today.
type CreateInvoiceRequest struct {
	CustomerID int64                `json:"customer_id" binding:"required,min=1"`
	Date       string               `json:"date"`
	Items      []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateInvoiceItemRequest changes the quantity of an invoice line
type UpdateInvoiceItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Amount    string `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID         int64                 `json:"id"`
	Number     string                `json:"number"`
	Date       string                `json:"date"`
	CustomerID int64                 `json:"customer_id"`
	IsPaid     bool                  `json:"is_paid"`
	PaidAt     *time.Time            `json:"paid_at,omitempty"`
	Total      string                `json:"total"`
	Items      []InvoiceItemResponse `json:"items"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// InvoiceSummary is the short form used in a customer's unpaid list
type InvoiceSummary struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
	Total  string `json:"total"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *trade.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i := range inv.Items {
		item := &inv.Items[i]
		items[i] = InvoiceItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(trade.AmountScale),
			Amount:    item.Amount().StringFixed(trade.AmountScale),
		}
	}
	return InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		Date:       inv.Date.Format(DateLayout),
		CustomerID: inv.CustomerID,
		IsPaid:     inv.IsPaid,
		PaidAt:     inv.PaidAt,
		Total:      inv.FormattedTotal(),
		Items:      items,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

// ToInvoiceSummaries converts invoices to their short form
func ToInvoiceSummaries(invoices []trade.Invoice) []InvoiceSummary {
	summaries := make([]InvoiceSummary, len(invoices))
	for i := range invoices {
		summaries[i] = InvoiceSummary{
			ID:     invoices[i].ID,
			Number: invoices[i].Number,
			Total:  invoices[i].FormattedTotal(),
		}
	}
	return summaries
}
