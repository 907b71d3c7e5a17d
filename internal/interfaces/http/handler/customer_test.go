package handler

import (
	"net/http"
	"testing"

	partnerapp "github.com/erp/pricesync/internal/application/partner"
	"github.com/erp/pricesync/internal/domain/partner"
	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/erp/pricesync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCustomerRouter(repo *MockCustomerRepository) *gin.Engine {
	h := NewCustomerHandler(partnerapp.NewCustomerService(repo, nil))
	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestCustomerHandler_Create(t *testing.T) {
	t.Run("creates a company", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Customer")).
			Run(func(args mock.Arguments) { args.Get(1).(*partner.Customer).ID = 3 }).
			Return(nil)

		w := doJSON(newCustomerRouter(repo), http.MethodPost, "/api/v1/customers",
			`{"name":"Acme LLC","contact":"ops@acme.test","is_company":true}`)

		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, float64(3), data["id"])
		assert.Equal(t, true, data["is_company"])
	})

	t.Run("name is required", func(t *testing.T) {
		repo := new(MockCustomerRepository)

		w := doJSON(newCustomerRouter(repo), http.MethodPost, "/api/v1/customers", `{"contact":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("blank name is a domain error", func(t *testing.T) {
		repo := new(MockCustomerRepository)

		w := doJSON(newCustomerRouter(repo), http.MethodPost, "/api/v1/customers", `{"name":"   "}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidName, decodeResponse(t, w).Error.Code)
	})
}

func TestCustomerHandler_GetAndList(t *testing.T) {
	repo := new(MockCustomerRepository)
	repo.On("FindByID", mock.Anything, int64(3)).Return(newStoredCustomer(t, 3, "Acme LLC", true), nil)
	repo.On("FindByID", mock.Anything, int64(9)).Return(nil, shared.ErrNotFound)
	repo.On("FindAll", mock.Anything, mock.Anything).
		Return([]partner.Customer{*newStoredCustomer(t, 3, "Acme LLC", true)}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)
	router := newCustomerRouter(repo)

	w := doJSON(router, http.MethodGet, "/api/v1/customers/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme LLC", decodeResponse(t, w).Data.(map[string]any)["name"])

	w = doJSON(router, http.MethodGet, "/api/v1/customers/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/customers/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/customers?search=acme", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestCustomerHandler_Update(t *testing.T) {
	repo := new(MockCustomerRepository)
	repo.On("FindByID", mock.Anything, int64(3)).Return(newStoredCustomer(t, 3, "Acme LLC", true), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Customer")).Return(nil)

	w := doJSON(newCustomerRouter(repo), http.MethodPut, "/api/v1/customers/3",
		`{"name":"Acme Inc","is_company":false}`)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Acme Inc", data["name"])
	assert.Equal(t, false, data["is_company"])
}
