package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admin_console_backend/internal/identity/domain"
	"admin_console_backend/internal/identity/service"
	"admin_console_backend/internal/identity/transport"
	"admin_console_backend/platform/httpkit"
)

// Handler handles HTTP requests for admin user management.
type Handler struct {
	svc *service.Service
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid user id"
)

// New creates a new identity handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List retrieves all admin users.
// GET /api/v1/admin/users
func (h *Handler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.AdminResponse, 0, len(users))
	for _, u := range users {
		out = append(out, transport.ToAdminResponse(u))
	}
	httpkit.OK(c, out)
}

// Get retrieves an admin user by id.
// GET /api/v1/admin/users/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	user, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAdminResponse(user))
}

// Create creates an admin user and emails credentials.
// POST /api/v1/admin/users
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	user, err := h.svc.CreateAdmin(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToAdminResponse(user))
}

// Update changes an admin user's profile.
// PUT /api/v1/admin/users/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	user, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAdminResponse(user))
}

// ChangeStatus activates or deactivates an admin user.
// PUT /api/v1/admin/users/:id/status
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
	user, err := h.svc.ChangeStatus(c.Request.Context(), id, domain.AdminStatus(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAdminResponse(user))
}

// ResetCredentials issues and emails a fresh temp password.
// POST /api/v1/admin/users/:id/reset-credentials
func (h *Handler) ResetCredentials(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	if httpkit.HandleError(c, h.svc.ResetCredentials(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}
