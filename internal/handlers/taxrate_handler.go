package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apierrors "github.com/propreg/api/internal/errors"
	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/services"
)

// TaxRateHandler handles rate table HTTP requests.
type TaxRateHandler struct {
	taxes services.TaxService
}

// NewTaxRateHandler creates a new TaxRateHandler instance.
func NewTaxRateHandler(taxes services.TaxService) *TaxRateHandler {
	return &TaxRateHandler{
		taxes: taxes,
	}
}

// ChangeRateRequest represents the JSON body for a rate change. The rate is
// a decimal string; it must parse and be positive.
type ChangeRateRequest struct {
	Rate string `json:"rate" binding:"required"`
}

// List handles GET /api/v1/tax-rates.
func (h *TaxRateHandler) List(c *gin.Context) {
	rates, err := h.taxes.ListRates(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list tax rates", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rates": rates, "count": len(rates)})
}

// Change handles PUT /api/v1/tax-rates/:category.
func (h *TaxRateHandler) Change(c *gin.Context) {
	category, err := models.ParsePropertyCategory(c.Param("category"))
	if err != nil {
		apierrors.NotFound(c, "Unknown property category")
		return
	}

	var req ChangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil || !rate.IsPositive() {
		apierrors.BadRequest(c, "Rate must be a positive decimal", nil)
		return
	}

	if err := h.taxes.ChangeRate(c.Request.Context(), category, rate); err != nil {
		if errors.Is(err, services.ErrUnknownCategory) {
			apierrors.NotFound(c, "Unknown property category")
			return
		}
		apierrors.InternalServerError(c, "Failed to change tax rate", err)
		return
	}

	c.Status(http.StatusNoContent)
}
