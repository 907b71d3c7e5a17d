package persistence

import "strings"

// ValidateSortOrder normalizes a sort direction to ASC or DESC, falling
// back to def for anything else.
func ValidateSortOrder(orderDir, def string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return def
}

// ValidateSortField returns sortField when it is whitelisted, else defaultField.
// Only whitelisted names ever reach ORDER BY.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"price":      true,
	"quantity":   true,
	"created_at": true,
	"updated_at": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"is_company": true,
	"created_at": true,
	"updated_at": true,
}
