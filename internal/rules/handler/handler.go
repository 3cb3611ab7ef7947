package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admin_console_backend/internal/rules/service"
	"admin_console_backend/internal/rules/transport"
	"admin_console_backend/platform/httpkit"
)

// Handler handles HTTP requests for rule management.
type Handler struct {
	svc *service.Service
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid rule id"
)

// New creates a new rules handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListScoringRules retrieves all scoring rules.
// GET /api/v1/admin/rules/scoring
func (h *Handler) ListScoringRules(c *gin.Context) {
	rules, err := h.svc.ListScoringRules(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.ScoringRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, transport.ToScoringRuleResponse(r))
	}
	httpkit.OK(c, out)
}

// CreateScoringRule creates a scoring rule.
// POST /api/v1/admin/rules/scoring
func (h *Handler) CreateScoringRule(c *gin.Context) {
	var req transport.CreateScoringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	rule, err := h.svc.CreateScoringRule(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToScoringRuleResponse(rule))
}

// UpdateScoringRule replaces a scoring rule.
// PUT /api/v1/admin/rules/scoring/:id
func (h *Handler) UpdateScoringRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateScoringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	rule, err := h.svc.UpdateScoringRule(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToScoringRuleResponse(rule))
}

// DeleteScoringRule removes a scoring rule.
// DELETE /api/v1/admin/rules/scoring/:id
func (h *Handler) DeleteScoringRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteScoringRule(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAssignmentRules retrieves all assignment rules.
// GET /api/v1/admin/rules/assignment
func (h *Handler) ListAssignmentRules(c *gin.Context) {
	rules, err := h.svc.ListAssignmentRules(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.AssignmentRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, transport.ToAssignmentRuleResponse(r))
	}
	httpkit.OK(c, out)
}

// CreateAssignmentRule creates an assignment rule.
// POST /api/v1/admin/rules/assignment
func (h *Handler) CreateAssignmentRule(c *gin.Context) {
	var req transport.CreateAssignmentRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	rule, err := h.svc.CreateAssignmentRule(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToAssignmentRuleResponse(rule))
}

// UpdateAssignmentRule replaces an assignment rule.
// PUT /api/v1/admin/rules/assignment/:id
func (h *Handler) UpdateAssignmentRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateAssignmentRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	rule, err := h.svc.UpdateAssignmentRule(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAssignmentRuleResponse(rule))
}

// DeleteAssignmentRule removes an assignment rule.
// DELETE /api/v1/admin/rules/assignment/:id
func (h *Handler) DeleteAssignmentRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteAssignmentRule(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}
