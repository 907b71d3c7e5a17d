package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/erp/pricesync/internal/application/catalog"
	"github.com/erp/pricesync/internal/domain/shared"
	"github.com/erp/pricesync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPriceRouter(repo *MockProductRepository) *gin.Engine {
	h := NewPriceHandler(catalogapp.NewPriceService(repo))
	router := gin.New()
	router.GET(PriceLookupPath, h.GetPrice)
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestPriceHandler_GetPrice(t *testing.T) {
	t.Run("returns the bare price body", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, int64(42)).Return(newStoredProduct(t, 42, "Widget", "15.5", 7), nil)

		w := httptest.NewRecorder()
		newPriceRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-product-price/42/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"price":"15.50","quantity":7}`, w.Body.String())
		repo.AssertExpectations(t)
	})

	t.Run("api alias serves the same body", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, int64(3)).Return(newStoredProduct(t, 3, "Bolt", "0.1", 0), nil)

		w := httptest.NewRecorder()
		newPriceRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/3/price", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"price":"0.10","quantity":0}`, w.Body.String())
	})

	t.Run("non-integer id is a bad request", func(t *testing.T) {
		repo := new(MockProductRepository)

		w := httptest.NewRecorder()
		newPriceRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-product-price/abc/", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown product is a 404 envelope", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, int64(9)).Return(nil, shared.ErrNotFound)

		w := httptest.NewRecorder()
		newPriceRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-product-price/9/", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("repository failure is a 500", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, int64(5)).Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		newPriceRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-product-price/5/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})

	t.Run("missing trailing slash is not routed", func(t *testing.T) {
		repo := new(MockProductRepository)
		router := newPriceRouter(repo)
		router.RedirectTrailingSlash = false

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get-product-price/42", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
