package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apierrors "github.com/propreg/api/internal/errors"
	"github.com/propreg/api/internal/middleware"
	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/services"
)

const dateLayout = "2006-01-02"

// OwnerHandler handles owner-related HTTP requests.
type OwnerHandler struct {
	owners services.OwnerService
	taxes  services.TaxService
}

// NewOwnerHandler creates a new OwnerHandler instance.
func NewOwnerHandler(owners services.OwnerService, taxes services.TaxService) *OwnerHandler {
	return &OwnerHandler{
		owners: owners,
		taxes:  taxes,
	}
}

// OwnerRequest represents the JSON body for creating or updating an owner.
// Dates arrive as YYYY-MM-DD strings and money as decimal strings; both are
// parsed into their exact types before touching the service layer.
type OwnerRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Age          int    `json:"age" binding:"omitempty,gte=0"`
	FamilyStatus string `json:"familyStatus" binding:"required"`
	HasChildren  bool   `json:"hasChildren"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Birthday     string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	TaxDebt      string `json:"taxDebt"`
}

// toModel converts the request into an Owner, reporting which field failed
// to parse.
func (r OwnerRequest) toModel() (models.Owner, string, error) {
	status, err := models.ParseFamilyStatus(r.FamilyStatus)
	if err != nil {
		return models.Owner{}, "familyStatus", err
	}

	owner := models.Owner{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Age:          r.Age,
		FamilyStatus: status,
		HasChildren:  r.HasChildren,
		Email:        r.Email,
		Phone:        r.Phone,
		TaxDebt:      decimal.Zero,
	}

	if r.Birthday != "" {
		owner.Birthday, err = time.Parse(dateLayout, r.Birthday)
		if err != nil {
			return models.Owner{}, "birthday", err
		}
	}

	if r.TaxDebt != "" {
		owner.TaxDebt, err = decimal.NewFromString(r.TaxDebt)
		if err != nil {
			return models.Owner{}, "taxDebt", err
		}
	}

	return owner, "", nil
}

// ObligationResponse is the payload for the obligation query. The amount is
// rendered as a decimal string to keep exact precision on the wire.
type ObligationResponse struct {
	OwnerID    int    `json:"ownerId"`
	Obligation string `json:"obligation"`
}

// CreatedResponse carries the id assigned to a newly created resource.
type CreatedResponse struct {
	ID int `json:"id"`
}

// List handles GET /api/v1/owners.
func (h *OwnerHandler) List(c *gin.Context) {
	owners, err := h.owners.List(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list owners", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"owners": owners, "count": len(owners)})
}

// Get handles GET /api/v1/owners/:id.
func (h *OwnerHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	owner, err := h.owners.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			apierrors.NotFound(c, "Owner not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load owner", err)
		return
	}

	c.JSON(http.StatusOK, owner)
}

// Create handles POST /api/v1/owners.
func (h *OwnerHandler) Create(c *gin.Context) {
	var req OwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	owner, field, err := req.toModel()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{field: err.Error()})
		return
	}

	id, err := h.owners.Create(c.Request.Context(), owner)
	if err != nil {
		if errors.Is(err, services.ErrNegativeDebt) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to create owner", err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Owner registered", map[string]interface{}{
			"owner_id": id,
		})
	}

	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// Update handles PUT /api/v1/owners/:id.
func (h *OwnerHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req OwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	owner, field, err := req.toModel()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{field: err.Error()})
		return
	}

	if err := h.owners.Update(c.Request.Context(), id, owner); err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			apierrors.NotFound(c, "Owner not found")
		case errors.Is(err, services.ErrVersionConflict):
			apierrors.Conflict(c, "Owner was modified concurrently, retry with fresh data")
		case errors.Is(err, services.ErrNegativeDebt):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to update owner", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/owners/:id.
func (h *OwnerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.owners.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrOwnerNotFound) {
			apierrors.NotFound(c, "Owner not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete owner", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Obligation handles GET /api/v1/owners/:id/obligation.
// It computes the owner's current tax obligation from their portfolio and
// the rate table.
func (h *OwnerHandler) Obligation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	obligation, err := h.taxes.ComputeObligation(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			apierrors.NotFound(c, "Owner not found")
		case errors.Is(err, services.ErrMissingPortfolio):
			apierrors.BadRequest(c, "Owner has no property portfolio", nil)
		default:
			apierrors.InternalServerError(c, "Failed to compute tax obligation", err)
		}
		return
	}

	c.JSON(http.StatusOK, ObligationResponse{
		OwnerID:    id,
		Obligation: obligation.String(),
	})
}

// pathID parses an integer path parameter, answering 400 on garbage.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, "Invalid "+name+" path parameter", nil)
		return 0, false
	}
	return id, true
}
