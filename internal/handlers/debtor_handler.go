package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/propreg/api/internal/errors"
	"github.com/propreg/api/internal/middleware"
	"github.com/propreg/api/internal/services"
)

// DebtorHandler exposes the debt recalculation and notification triggers.
type DebtorHandler struct {
	debts    services.DebtService
	notifier services.NotifierService
}

// NewDebtorHandler creates a new DebtorHandler instance.
func NewDebtorHandler(debts services.DebtService, notifier services.NotifierService) *DebtorHandler {
	return &DebtorHandler{
		debts:    debts,
		notifier: notifier,
	}
}

// NotifyAllResponse reports how many notification events were handed to
// the bus.
type NotifyAllResponse struct {
	Notified int `json:"notified"`
}

// List handles GET /api/v1/debtors.
func (h *DebtorHandler) List(c *gin.Context) {
	debtors, err := h.debts.FindDebtors(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list debtors", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"debtors": debtors, "count": len(debtors)})
}

// Recalculate handles POST /api/v1/debtors/recalculate. It runs one
// compounding cycle on demand, outside the scheduler's cadence.
func (h *DebtorHandler) Recalculate(c *gin.Context) {
	summary, err := h.debts.Recalculate(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to recalculate debts", err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Manual debt recalculation triggered", map[string]interface{}{
			"debtors": summary.Debtors,
			"updated": summary.Updated,
			"failed":  summary.Failed,
		})
	}

	c.JSON(http.StatusOK, summary)
}

// NotifyAll handles POST /api/v1/debtors/notify. An empty debtor set is a
// business "nothing to do" and answers 204, not an error status.
func (h *DebtorHandler) NotifyAll(c *gin.Context) {
	sent, err := h.notifier.NotifyAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoDebtors) {
			c.Status(http.StatusNoContent)
			return
		}
		apierrors.InternalServerError(c, "Failed to notify debtors", err)
		return
	}

	c.JSON(http.StatusOK, NotifyAllResponse{Notified: sent})
}

// NotifyOne handles POST /api/v1/debtors/:id/notify.
func (h *DebtorHandler) NotifyOne(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notifier.NotifyOne(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			apierrors.NotFound(c, "Owner not found")
		case errors.Is(err, services.ErrNoDebtIncurred):
			apierrors.BadRequest(c, "Owner has no outstanding tax debt", nil)
		default:
			apierrors.InternalServerError(c, "Failed to notify debtor", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
