package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apierrors "github.com/propreg/api/internal/errors"
	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/services"
)

// PropertyHandler handles portfolio HTTP requests nested under an owner.
type PropertyHandler struct {
	owners services.OwnerService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(owners services.OwnerService) *PropertyHandler {
	return &PropertyHandler{
		owners: owners,
	}
}

// CreatePropertyRequest represents the JSON body for adding a property.
type CreatePropertyRequest struct {
	Category   string `json:"category" binding:"required"`
	City       string `json:"city" binding:"required"`
	Address    string `json:"address" binding:"required"`
	Area       int    `json:"area" binding:"required,gt=0"`
	Rooms      int    `json:"rooms" binding:"omitempty,gte=0"`
	Cost       string `json:"cost"`
	AcquiredOn string `json:"acquiredOn" binding:"omitempty,datetime=2006-01-02"`
	BuiltOn    string `json:"builtOn" binding:"omitempty,datetime=2006-01-02"`
	Condition  string `json:"condition" binding:"omitempty,oneof=GOOD NORMAL BAD"`
}

func (r CreatePropertyRequest) toModel() (models.Property, string, error) {
	category, err := models.ParsePropertyCategory(r.Category)
	if err != nil {
		return models.Property{}, "category", err
	}

	property := models.Property{
		Category:  category,
		City:      r.City,
		Address:   r.Address,
		Area:      r.Area,
		Rooms:     r.Rooms,
		Cost:      decimal.Zero,
		Condition: models.PropertyCondition(r.Condition),
	}

	if r.Cost != "" {
		property.Cost, err = decimal.NewFromString(r.Cost)
		if err != nil {
			return models.Property{}, "cost", err
		}
	}
	if r.AcquiredOn != "" {
		property.AcquiredOn, err = time.Parse(dateLayout, r.AcquiredOn)
		if err != nil {
			return models.Property{}, "acquiredOn", err
		}
	}
	if r.BuiltOn != "" {
		property.BuiltOn, err = time.Parse(dateLayout, r.BuiltOn)
		if err != nil {
			return models.Property{}, "builtOn", err
		}
	}

	return property, "", nil
}

// UpdatePropertyRequest carries the canonical mutable field set: location,
// room count and condition. Cost, dates, category and area are fixed at
// creation.
type UpdatePropertyRequest struct {
	City      string `json:"city" binding:"required"`
	Address   string `json:"address" binding:"required"`
	Rooms     int    `json:"rooms" binding:"required,gt=0"`
	Condition string `json:"condition" binding:"required,oneof=GOOD NORMAL BAD"`
}

// List handles GET /api/v1/owners/:id/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	properties, err := h.owners.ListProperties(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			apierrors.NotFound(c, "Owner not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to list properties", err)
		return
	}

	if properties == nil {
		properties = []models.Property{}
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties, "count": len(properties)})
}

// Create handles POST /api/v1/owners/:id/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	property, field, err := req.toModel()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{field: err.Error()})
		return
	}

	id, err := h.owners.AddProperty(c.Request.Context(), ownerID, property)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			apierrors.NotFound(c, "Owner not found")
		case errors.Is(err, services.ErrInvalidArea):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to add property", err)
		}
		return
	}

	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// Update handles PUT /api/v1/owners/:id/properties/:propertyID.
func (h *PropertyHandler) Update(c *gin.Context) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "propertyID")
	if !ok {
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	update := services.PropertyUpdate{
		City:      req.City,
		Address:   req.Address,
		Rooms:     req.Rooms,
		Condition: models.PropertyCondition(req.Condition),
	}

	if err := h.owners.UpdateProperty(c.Request.Context(), ownerID, propertyID, update); err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			apierrors.NotFound(c, "Owner not found")
		case errors.Is(err, services.ErrPropertyNotFound):
			apierrors.NotFound(c, "Property not found")
		default:
			apierrors.InternalServerError(c, "Failed to update property", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/owners/:id/properties/:propertyID.
func (h *PropertyHandler) Delete(c *gin.Context) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "propertyID")
	if !ok {
		return
	}

	if err := h.owners.RemoveProperty(c.Request.Context(), ownerID, propertyID); err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			apierrors.NotFound(c, "Owner not found")
		case errors.Is(err, services.ErrPropertyNotFound):
			apierrors.NotFound(c, "Property not found")
		default:
			apierrors.InternalServerError(c, "Failed to remove property", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
