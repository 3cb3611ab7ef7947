package exports

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/httpkit"
)

// Handler handles export requests.
type Handler struct {
	svc *Service
}

// NewHandler creates a new exports handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type exportLeadsRequest struct {
	Status     string `form:"status" binding:"omitempty,lead_status"`
	Priority   string `form:"priority" binding:"omitempty,lead_priority"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
	Source     string `form:"source"`
}

// ExportLeads generates a CSV snapshot of the (filtered) lead book.
// POST /api/v1/admin/exports/leads
func (h *Handler) ExportLeads(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req exportLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	var filter ports.ListLeadsFilter
	if req.Status != "" {
		status := domain.Status(req.Status)
		filter.Status = &status
	}
	if req.Priority != "" {
		priority := domain.Priority(req.Priority)
		filter.Priority = &priority
	}
	if req.AssignedTo != "" {
		id, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid assigned_to", nil)
			return
		}
		filter.AssignedTo = &id
	}
	if req.Source != "" {
		filter.Source = &req.Source
	}

	result, err := h.svc.ExportLeads(c.Request.Context(), filter, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
