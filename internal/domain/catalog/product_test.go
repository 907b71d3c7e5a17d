package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("  Widget  ", dec("15.5"), 3)
		require.NoError(t, err)

		assert.Equal(t, "Widget", product.Name)
		assert.True(t, product.Price.Equal(dec("15.50")))
		assert.Equal(t, "15.50", product.FormattedPrice())
		assert.Equal(t, 3, product.Quantity)
		assert.True(t, product.IsNew())
		assert.False(t, product.CreatedAt.IsZero())
		assert.Empty(t, product.GetDomainEvents())
	})

	t.Run("accepts zero price and quantity", func(t *testing.T) {
		product, err := NewProduct("Free sample", decimal.Zero, 0)
		require.NoError(t, err)
		assert.Equal(t, "0.00", product.FormattedPrice())
	})

	tests := []struct {
		name     string
		pName    string
		price    string
		quantity int
		code     string
	}{
		{"empty name", "   ", "1.00", 0, "INVALID_NAME"},
		{"name too long", strings.Repeat("я", MaxNameLength+1), "1.00", 0, "INVALID_NAME"},
		{"negative price", "Widget", "-0.01", 0, "INVALID_PRICE"},
		{"too many decimals", "Widget", "1.005", 0, "INVALID_PRICE"},
		{"price overflow", "Widget", "100000000.00", 0, "INVALID_PRICE"},
		{"negative quantity", "Widget", "1.00", -1, "INVALID_QUANTITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProduct(tt.pName, dec(tt.price), tt.quantity)
			require.Error(t, err)
			assert.Equal(t, tt.code, codeOf(t, err))
		})
	}

	t.Run("name limit counts characters not bytes", func(t *testing.T) {
		_, err := NewProduct(strings.Repeat("я", MaxNameLength), dec("1.00"), 0)
		assert.NoError(t, err)
	})
}

func TestProduct_SetPrice(t *testing.T) {
	t.Run("records price change event", func(t *testing.T) {
		product, err := NewProduct("Widget", dec("10.00"), 1)
		require.NoError(t, err)
		product.ID = 42

		require.NoError(t, product.SetPrice(dec("12.50")))
		assert.Equal(t, "12.50", product.FormattedPrice())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*ProductPriceChangedEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeProductPriceChanged, ev.EventType())
		assert.Equal(t, int64(42), ev.ProductID)
		assert.Equal(t, int64(42), ev.AggregateID())
		assert.True(t, ev.OldPrice.Equal(dec("10.00")))
		assert.True(t, ev.NewPrice.Equal(dec("12.50")))
	})

	t.Run("same price is a no-op", func(t *testing.T) {
		product, err := NewProduct("Widget", dec("10.00"), 1)
		require.NoError(t, err)

		require.NoError(t, product.SetPrice(dec("10")))
		assert.Empty(t, product.GetDomainEvents())
	})

	t.Run("rejects invalid price", func(t *testing.T) {
		product, err := NewProduct("Widget", dec("10.00"), 1)
		require.NoError(t, err)

		err = product.SetPrice(dec("-1"))
		assert.Equal(t, "INVALID_PRICE", codeOf(t, err))
		assert.Equal(t, "10.00", product.FormattedPrice())
	})
}

func TestProduct_Stock(t *testing.T) {
	product, err := NewProduct("Widget", dec("1.00"), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, product.AvailableQuantity())
	assert.NoError(t, product.CheckAvailability(5))
	assert.ErrorIs(t, product.CheckAvailability(6), shared.ErrInsufficientStock)
	assert.Equal(t, "INVALID_QUANTITY", codeOf(t, product.CheckAvailability(0)))

	require.NoError(t, product.SetQuantity(0))
	assert.ErrorIs(t, product.CheckAvailability(1), shared.ErrInsufficientStock)
	assert.Error(t, product.SetQuantity(-3))
}

func TestProduct_StockEvents(t *testing.T) {
	product, err := NewProduct("Widget", dec("1.00"), 5)
	require.NoError(t, err)
	product.ID = 4

	require.NoError(t, product.SetQuantity(5))
	assert.Empty(t, product.GetDomainEvents(), "unchanged quantity records nothing")

	require.NoError(t, product.SetQuantity(3))
	require.NoError(t, product.DeductStock(2))
	require.NoError(t, product.RestoreStock(4))
	assert.Equal(t, 5, product.Quantity)

	events := product.GetDomainEvents()
	require.Len(t, events, 3)
	last, ok := events[2].(*ProductStockChangedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeProductStockChanged, last.EventType())
	assert.Equal(t, int64(4), last.AggregateID())
	assert.Equal(t, 1, last.OldQuantity)
	assert.Equal(t, 5, last.NewQuantity)

	assert.ErrorIs(t, product.DeductStock(6), shared.ErrInsufficientStock)
	assert.Equal(t, "INVALID_QUANTITY", codeOf(t, product.DeductStock(0)))
	assert.Equal(t, "INVALID_QUANTITY", codeOf(t, product.RestoreStock(0)))
	assert.Equal(t, 5, product.Quantity)
	assert.Len(t, product.GetDomainEvents(), 3)
}

func TestProduct_RenameAndDelete(t *testing.T) {
	product, err := NewProduct("Widget", dec("1.00"), 5)
	require.NoError(t, err)
	product.ID = 9

	require.NoError(t, product.Rename("Gadget"))
	assert.Equal(t, "Gadget", product.Name)
	assert.Error(t, product.Rename(""))

	product.MarkDeleted()
	events := product.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeProductDeleted, events[0].EventType())
}
