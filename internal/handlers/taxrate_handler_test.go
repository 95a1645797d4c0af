package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/propreg/api/internal/models"
)

func setupTaxRateRouter(taxes *MockTaxService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewTaxRateHandler(taxes)

	router := gin.New()
	router.GET("/api/v1/tax-rates", handler.List)
	router.PUT("/api/v1/tax-rates/:category", handler.Change)
	return router
}

func TestTaxRateHandler_List(t *testing.T) {
	// Arrange
	mockTaxes := new(MockTaxService)
	router := setupTaxRateRouter(mockTaxes)

	mockTaxes.On("ListRates", mock.Anything).Return(models.DefaultTaxRates(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tax-rates", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Rates []models.TaxRate `json:"rates"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 3, response.Count)
}

func TestTaxRateHandler_Change(t *testing.T) {
	// Arrange
	mockTaxes := new(MockTaxService)
	router := setupTaxRateRouter(mockTaxes)

	mockTaxes.On("ChangeRate", mock.Anything, models.CategoryHouse, mock.MatchedBy(func(r decimal.Decimal) bool {
		return r.Equal(decimal.RequireFromString("9.5"))
	})).Return(nil)

	body, _ := json.Marshal(ChangeRateRequest{Rate: "9.5"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tax-rates/HOUSE", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNoContent, w.Code)
	mockTaxes.AssertExpectations(t)
}

func TestTaxRateHandler_Change_LowercaseCategory(t *testing.T) {
	// Arrange: category parsing is case-insensitive
	mockTaxes := new(MockTaxService)
	router := setupTaxRateRouter(mockTaxes)

	mockTaxes.On("ChangeRate", mock.Anything, models.CategoryFlat, mock.Anything).Return(nil)

	body, _ := json.Marshal(ChangeRateRequest{Rate: "7"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tax-rates/flat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTaxRateHandler_Change_UnknownCategory(t *testing.T) {
	// Arrange
	mockTaxes := new(MockTaxService)
	router := setupTaxRateRouter(mockTaxes)

	body, _ := json.Marshal(ChangeRateRequest{Rate: "7"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tax-rates/BARN", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	mockTaxes.AssertNotCalled(t, "ChangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaxRateHandler_Change_InvalidRate(t *testing.T) {
	tests := []struct {
		name string
		rate string
	}{
		{name: "not a number", rate: "six"},
		{name: "zero", rate: "0"},
		{name: "negative", rate: "-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockTaxes := new(MockTaxService)
			router := setupTaxRateRouter(mockTaxes)

			body, _ := json.Marshal(ChangeRateRequest{Rate: tt.rate})
			req := httptest.NewRequest(http.MethodPut, "/api/v1/tax-rates/FLAT", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Act
			router.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, http.StatusBadRequest, w.Code)
			mockTaxes.AssertNotCalled(t, "ChangeRate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
