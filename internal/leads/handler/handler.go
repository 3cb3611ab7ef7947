package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admin_console_backend/internal/leads/conversion"
	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/internal/leads/service"
	"admin_console_backend/internal/leads/transport"
	"admin_console_backend/platform/httpkit"
)

// AuditLogLister reads a lead's audit trail for the timeline endpoint.
type AuditLogLister interface {
	ListAuditLog(ctx context.Context, leadID uuid.UUID) ([]domain.AuditEntry, error)
}

// Handler handles HTTP requests for the lead lifecycle.
type Handler struct {
	svc       *service.Service
	converter *conversion.Orchestrator
	auditLog  AuditLogLister
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid lead id"
)

// New creates a new leads handler.
func New(svc *service.Service, converter *conversion.Orchestrator, auditLog AuditLogLister) *Handler {
	return &Handler{svc: svc, converter: converter, auditLog: auditLog}
}

// Create captures a new lead.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req, actionContext(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToLeadResponse(lead))
}

// List retrieves leads with optional filters.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	leads, err := h.svc.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, transport.ToLeadResponse(lead))
	}
	httpkit.OK(c, out)
}

// ListWithAnalytics retrieves the full lead book plus pipeline aggregates.
// GET /api/v1/leads/analytics
func (h *Handler) ListWithAnalytics(c *gin.Context) {
	result, err := h.svc.GetLeadsWithAnalytics(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get retrieves a lead by id.
// GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// Update edits lead fields. Status and conversion fields are rejected here;
// they move through their dedicated endpoints.
// PATCH /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req, actionContext(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// Assign assigns a lead to an admin.
// POST /api/v1/leads/:id/assign
func (h *Handler) Assign(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	lead, err := h.svc.Assign(c.Request.Context(), id, req.AdminID, req.Reason, actionContext(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// TransitionStatus moves a lead through the pipeline.
// POST /api/v1/leads/:id/status
func (h *Handler) TransitionStatus(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	lead, err := h.svc.TransitionStatus(c.Request.Context(), id, domain.Status(req.Status), req.Notes, actionContext(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// Convert runs the qualified-lead to tenant workflow.
// POST /api/v1/leads/:id/convert
func (h *Handler) Convert(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var req transport.ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	result, err := h.converter.Convert(c.Request.Context(), id, req, actionContext(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Rescore forces a synchronous score recomputation.
// POST /api/v1/leads/:id/rescore
func (h *Handler) Rescore(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	if err := h.svc.RecomputeScore(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

type auditEntryResponse struct {
	ID          uuid.UUID           `json:"id"`
	Action      string              `json:"action"`
	OldValues   map[string]any      `json:"oldValues,omitempty"`
	NewValues   map[string]any      `json:"newValues,omitempty"`
	PerformedBy *uuid.UUID          `json:"performedBy,omitempty"`
	Source      string              `json:"source,omitempty"`
	Context     domain.AuditContext `json:"context"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// AuditLog returns a lead's audit trail, oldest first.
// GET /api/v1/leads/:id/audit-log
func (h *Handler) AuditLog(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	entries, err := h.auditLog.ListAuditLog(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := auditEntryResponse{
			ID:        e.ID,
			Action:    string(e.Action),
			OldValues: e.OldValues,
			NewValues: e.NewValues,
			Source:    e.Source,
			Context:   e.Context,
			CreatedAt: e.CreatedAt,
		}
		if e.PerformedBy != uuid.Nil {
			performedBy := e.PerformedBy
			resp.PerformedBy = &performedBy
		}
		out = append(out, resp)
	}
	httpkit.OK(c, out)
}

func leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// actionContext captures who performed the request and from where.
func actionContext(c *gin.Context) service.ActionContext {
	actor := service.ActionContext{
		Source:    "web",
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
		SessionID: c.GetHeader("X-Session-ID"),
	}
	if identity := httpkit.GetIdentity(c); identity.IsAuthenticated() {
		actor.PerformedBy = identity.UserID()
	}
	return actor
}

func parseListFilter(c *gin.Context) (ports.ListLeadsFilter, bool) {
	var filter ports.ListLeadsFilter

	if raw := c.Query("status"); raw != "" {
		status := domain.Status(raw)
		if !domain.IsKnownStatus(status) {
			httpkit.Error(c, http.StatusBadRequest, "unknown status filter", nil)
			return filter, false
		}
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.Priority(raw)
		if !domain.IsKnownPriority(priority) {
			httpkit.Error(c, http.StatusBadRequest, "unknown priority filter", nil)
			return filter, false
		}
		filter.Priority = &priority
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid assigned_to filter", nil)
			return filter, false
		}
		filter.AssignedTo = &id
	}
	if raw := c.Query("source"); raw != "" {
		filter.Source = &raw
	}
	return filter, true
}
