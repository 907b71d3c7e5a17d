package catalog

import (
	"time"

	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name     string           `json:"name" binding:"required,min=1,max=255"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Quantity *int             `json:"quantity" binding:"omitempty,min=0"`
}

// UpdateProductRequest replaces every editable field of a product
type UpdateProductRequest struct {
	Name     string           `json:"name" binding:"required,min=1,max=255"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Quantity *int             `json:"quantity" binding:"required,min=0"`
}

// UpdatePriceRequest represents a request to change only the price
type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search   string `form:"search" binding:"max=255"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses.
// Price is the fixed two-decimal string, e.g. "15.50".
type ProductResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Price             string    `json:"price"`
	Quantity          int       `json:"quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PriceResponse is the body of the price lookup endpoint
type PriceResponse struct {
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.FormattedPrice(),
		Quantity:          p.Quantity,
		AvailableQuantity: p.AvailableQuantity(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToPriceResponse converts a cached quote to the lookup response
func ToPriceResponse(q catalog.PriceQuote) PriceResponse {
	return PriceResponse{
		Price:    q.Price.StringFixed(catalog.PriceScale),
		Quantity: q.Quantity,
	}
}
