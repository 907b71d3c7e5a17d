package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := fmt.Errorf("load product: %w", NewDomainError("NOT_FOUND", "Product not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "load product: Product not found", err.Error())

	var de *DomainError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]string{"a", "b"}, 21, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(21), p.Total)

	empty := NewPaginated[string](nil, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.True(t, root.IsNew())

	ev := NewBaseDomainEvent("Thing", "Aggregate", 7)
	root.AddDomainEvent(&ev)
	assert.Len(t, root.GetDomainEvents(), 1)
	assert.Equal(t, int64(7), root.GetDomainEvents()[0].AggregateID())

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}
