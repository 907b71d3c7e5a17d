package handler

import (
	"net/http"

	tradeapp "github.com/erp/pricesync/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// CustomerInvoicesPath lists a customer's unpaid invoices as a bare JSON
// array, e.g. [{"id": 3, "number": "INV-3", "total": "31.00"}].
const CustomerInvoicesPath = "/api/customers/:id/invoices/"

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *tradeapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *tradeapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes mounts the invoice routes under the versioned group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.Create)
	invoices.GET("/:id", h.GetByID)
	invoices.POST("/:id/items", h.AddItem)
	invoices.PUT("/:id/items/:item_id", h.UpdateItem)
	invoices.DELETE("/:id/items/:item_id", h.RemoveItem)
	invoices.POST("/:id/pay", h.MarkPaid)

	rg.GET("/customers/:id/invoices", h.ListUnpaid)
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req tradeapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// AddItem handles POST /invoices/:id/items
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req tradeapp.InvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// UpdateItem handles PUT /invoices/:id/items/:item_id
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	id, itemID, ok := h.itemPath(c)
	if !ok {
		return
	}

	var req tradeapp.UpdateInvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RemoveItem handles DELETE /invoices/:id/items/:item_id
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	id, itemID, ok := h.itemPath(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// MarkPaid handles POST /invoices/:id/pay
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.MarkPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListUnpaid handles GET /customers/:id/invoices with the standard envelope
func (h *InvoiceHandler) ListUnpaid(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	invoices, err := h.invoiceService.ListUnpaidForCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// UnpaidInvoices answers CustomerInvoicesPath with the bare list.
// Errors use the standard envelope.
func (h *InvoiceHandler) UnpaidInvoices(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Customer id must be a positive integer")
		return
	}

	invoices, err := h.invoiceService.ListUnpaidForCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) itemPath(c *gin.Context) (int64, int64, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return 0, 0, false
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return 0, 0, false
	}
	return id, itemID, true
}
