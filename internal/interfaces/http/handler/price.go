package handler

import (
	"context"
	"net/http"

	catalogapp "github.com/erp/pricesync/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// PriceLookupPath is the route the product form's price field sync calls.
const PriceLookupPath = "/get-product-price/:id/"

// PriceGetter is the read side the price endpoint depends on
type PriceGetter interface {
	GetPrice(ctx context.Context, productID int64) (*catalogapp.PriceResponse, error)
}

// PriceHandler serves product price lookups
type PriceHandler struct {
	BaseHandler
	prices PriceGetter
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(prices PriceGetter) *PriceHandler {
	return &PriceHandler{prices: prices}
}

// GetPrice answers GET /get-product-price/:id/ with the bare
// {"price": "15.50", "quantity": 7} body the form script reads.
// Errors use the standard envelope.
func (h *PriceHandler) GetPrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Product id must be a positive integer")
		return
	}

	price, err := h.prices.GetPrice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, price)
}

// RegisterRoutes mounts the API alias under the versioned group
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog/products/:id/price", h.GetPrice)
}
