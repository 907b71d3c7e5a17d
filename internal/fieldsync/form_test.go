package fieldsync_test

import (
	"testing"

	"github.com/erp/pricesync/internal/fieldsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm(t *testing.T) {
	form := fieldsync.NewForm()
	product := form.AddSelect(fieldsync.ProductElementID, "1", "2")
	price := form.AddInput(fieldsync.PriceElementID, "0.00")

	assert.Same(t, product, form.ElementByID(fieldsync.ProductElementID))
	assert.Same(t, price, form.ElementByID(fieldsync.PriceElementID))
	assert.Nil(t, form.ElementByID("id_quantity"))
	assert.Equal(t, []string{"1", "2"}, product.Options())
	assert.Equal(t, "", product.Value())
}

func TestSelectField_Select(t *testing.T) {
	form := fieldsync.NewForm()
	product := form.AddSelect(fieldsync.ProductElementID, "1", "2")

	var seen []string
	product.OnChange(func() { seen = append(seen, "first:"+product.Value()) })
	product.OnChange(func() { seen = append(seen, "second:"+product.Value()) })

	require.NoError(t, product.Select("2"))
	require.NoError(t, product.Select(""))
	assert.ErrorIs(t, product.Select("3"), fieldsync.ErrUnknownOption)

	assert.Equal(t, "", product.Value())
	assert.Equal(t, []string{"first:2", "second:2", "first:", "second:"}, seen)
}

func TestInputField(t *testing.T) {
	price := fieldsync.NewForm().AddInput(fieldsync.PriceElementID, "1.00")
	price.SetValue("2.50")
	assert.Equal(t, "2.50", price.Value())
	assert.Equal(t, fieldsync.PriceElementID, price.ID())
}
