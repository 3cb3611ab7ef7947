package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admin_console_backend/internal/tenants/domain"
	"admin_console_backend/internal/tenants/service"
	"admin_console_backend/internal/tenants/transport"
	"admin_console_backend/platform/httpkit"
)

// Handler handles HTTP requests for tenants.
type Handler struct {
	svc *service.Service
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid tenant id"
)

// New creates a new tenants handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List retrieves tenants.
// GET /api/v1/admin/tenants
func (h *Handler) List(c *gin.Context) {
	var req transport.ListTenantsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	tenants, err := h.svc.List(c.Request.Context(), req.Limit, req.Offset)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, transport.ToTenantResponse(t))
	}
	httpkit.OK(c, out)
}

// Get retrieves a tenant by id.
// GET /api/v1/admin/tenants/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	tenant, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTenantResponse(tenant))
}

// ChangePlan changes a tenant's subscription plan.
// PUT /api/v1/admin/tenants/:id/plan
func (h *Handler) ChangePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	tenant, err := h.svc.ChangePlan(c.Request.Context(), id, req.Plan)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTenantResponse(tenant))
}

// ChangeStatus suspends or reactivates a tenant.
// PUT /api/v1/admin/tenants/:id/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	tenant, err := h.svc.ChangeStatus(c.Request.Context(), id, domain.TenantStatus(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTenantResponse(tenant))
}
