package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"whitespace around DESC returns DESC", "  DESC ", "DESC"},
		{"sql injection attempt returns default", "ASC; DROP TABLE products;--", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input, "ASC"))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "price", ValidateSortField("price", ProductSortFields, "name"))
	assert.Equal(t, "name", ValidateSortField(" name ", ProductSortFields, "name"))
	assert.Equal(t, "name", ValidateSortField("", ProductSortFields, "name"))
	assert.Equal(t, "name", ValidateSortField("name; DROP TABLE products", ProductSortFields, "name"))
	assert.Equal(t, "name", ValidateSortField("tenant_id", ProductSortFields, "name"))
}
