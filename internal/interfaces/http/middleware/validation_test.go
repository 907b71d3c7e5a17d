package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/pricesync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationError(t *testing.T) {
	type createRequest struct {
		Name     string `json:"name" binding:"required,max=10"`
		Quantity *int   `json:"quantity" binding:"omitempty,min=0"`
	}

	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(body string) (*httptest.ResponseRecorder, dto.Response) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-v")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp dto.Response
		if w.Body.Len() > 0 {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		}
		return w, resp
	}

	t.Run("reports json field names", func(t *testing.T) {
		w, resp := post(`{"quantity": -1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-v", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)

		byField := map[string]dto.ValidationDetail{}
		for _, d := range resp.Error.Details {
			byField[d.Field] = d
		}
		assert.Equal(t, "This field is required", byField["name"].Message)
		assert.Equal(t, dto.ErrCodeValidationRequired, byField["name"].Code)
		assert.Equal(t, "Must be at least 0", byField["quantity"].Message)
		assert.Equal(t, dto.ErrCodeValidationRange, byField["quantity"].Code)
	})

	t.Run("string length", func(t *testing.T) {
		_, resp := post(`{"name": "far too long a name"}`)

		require.NotNil(t, resp.Error)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "Must be at most 10 characters", resp.Error.Details[0].Message)
		assert.Equal(t, dto.ErrCodeValidationLength, resp.Error.Details[0].Code)
	})

	t.Run("valid body passes", func(t *testing.T) {
		w, _ := post(`{"name": "widget"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
