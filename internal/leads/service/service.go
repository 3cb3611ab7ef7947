// Package service implements the lead lifecycle operations: capture, update,
// assignment, status transitions and the analytics view.
package service

import (
	"context"
	"time"

	"admin_console_backend/internal/events"
	"admin_console_backend/internal/leads/assignment"
	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/internal/leads/scoring"
	"admin_console_backend/internal/leads/transport"
	"admin_console_backend/platform/apperr"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/phone"
	"admin_console_backend/platform/sanitize"
	"admin_console_backend/platform/validator"

	"github.com/google/uuid"
)

// ActionContext identifies who performed an operation and from where, for
// audit entries and events.
type ActionContext struct {
	PerformedBy uuid.UUID
	Source      string
	UserAgent   string
	IPAddress   string
	SessionID   string
}

// systemActor is used for mutations the system performs on its own
// (async scoring, conversion completion).
var systemActor = ActionContext{Source: "system"}

// RescoreEnqueuer hands score recomputation off to the background worker.
// Optional; when absent the service falls back to an in-process goroutine.
type RescoreEnqueuer interface {
	EnqueueRescore(ctx context.Context, leadID uuid.UUID) error
}

// Service orchestrates lead lifecycle operations. All collaborators are
// constructor-injected; there is no package-level state.
type Service struct {
	store    ports.LeadStore
	audit    ports.AuditSink
	rules    ports.RuleStore
	bus      events.Bus
	engine   *scoring.Engine
	selector *assignment.Selector
	rescorer RescoreEnqueuer
	val      *validator.Validator
	log      *logger.Logger
	cache    *AnalyticsCache
}

// New creates the lead lifecycle service. rescorer and cache may be nil.
func New(
	store ports.LeadStore,
	audit ports.AuditSink,
	rules ports.RuleStore,
	bus events.Bus,
	engine *scoring.Engine,
	selector *assignment.Selector,
	rescorer RescoreEnqueuer,
	val *validator.Validator,
	log *logger.Logger,
	cache *AnalyticsCache,
) *Service {
	return &Service{
		store:    store,
		audit:    audit,
		rules:    rules,
		bus:      bus,
		engine:   engine,
		selector: selector,
		rescorer: rescorer,
		val:      val,
		log:      log,
		cache:    cache,
	}
}

// Create validates and persists a new lead with status=new and score 0,
// attempts rule-based auto-assignment, and schedules the initial score
// computation. The audit entry for creation has empty old values.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest, actor ActionContext) (domain.Lead, error) {
	if err := s.validateCreate(req); err != nil {
		return domain.Lead{}, err
	}

	params := ports.CreateLeadParams{
		ContactName: sanitize.Text(req.ContactName),
		Email:       req.Email,
		Priority:    domain.Priority(req.Priority),
		Source:      sanitize.Text(req.Source),
		Notes:       sanitize.Text(req.Notes),
	}
	if req.Phone != "" {
		normalized := phone.NormalizeE164(req.Phone)
		params.Phone = &normalized
	}
	if req.OrganizationName != "" {
		org := sanitize.Text(req.OrganizationName)
		params.OrganizationName = &org
	}
	params.CustomFields = toCustomFields(req.CustomFields)

	lead, err := s.store.Insert(ctx, params)
	if err != nil {
		return domain.Lead{}, err
	}

	s.appendAudit(ctx, domain.AuditEntry{
		LeadID:    lead.ID,
		Action:    domain.AuditLeadCreated,
		OldValues: map[string]any{},
		NewValues: map[string]any{
			"contact_name": lead.ContactName,
			"email":        lead.Email,
			"priority":     string(lead.Priority),
			"status":       string(lead.Status),
		},
	}, actor)

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		ContactName: lead.ContactName,
		Email:       lead.Email,
		Priority:    string(lead.Priority),
		Source:      lead.Source,
	})

	if assigned, ok := s.autoAssign(ctx, lead, actor); ok {
		lead = assigned
	}

	s.scheduleRescore(ctx, lead.ID)
	s.invalidateAnalytics(ctx)

	return lead, nil
}

// Update applies a sparse patch. Direct writes to status and the conversion
// fields are rejected; enum values are validated; the audit entry carries the
// old/new diff. Rescoring is triggered when priority or notes changed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest, actor ActionContext) (domain.Lead, error) {
	if req.Status != nil {
		return domain.Lead{}, apperr.Validation("status cannot be written directly; use the status transition endpoint")
	}
	if req.ConvertedTenantID != nil || req.ConvertedAt != nil {
		return domain.Lead{}, apperr.Validation("conversion fields are system-managed")
	}
	if req.Priority != nil && !domain.IsKnownPriority(domain.Priority(*req.Priority)) {
		return domain.Lead{}, apperr.Validation("unknown priority: " + *req.Priority)
	}
	if req.Email != nil {
		if err := s.val.Var(*req.Email, "required,email"); err != nil {
			return domain.Lead{}, apperr.Validation("invalid email address")
		}
	}
	if req.ContactName != nil && sanitize.Text(*req.ContactName) == "" {
		return domain.Lead{}, apperr.Validation("contact name cannot be empty")
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	patch, oldValues, newValues := buildPatch(&current, req)
	if len(newValues) == 0 {
		return current, nil
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return domain.Lead{}, err
	}

	s.appendAudit(ctx, domain.AuditEntry{
		LeadID:    id,
		Action:    domain.AuditLeadUpdated,
		OldValues: oldValues,
		NewValues: newValues,
	}, actor)

	changed := make([]string, 0, len(newValues))
	for field := range newValues {
		changed = append(changed, field)
	}
	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        id,
		ChangedFields: changed,
		PerformedBy:   actor.PerformedBy,
	})

	if _, ok := newValues["priority"]; ok {
		s.scheduleRescore(ctx, id)
	} else if _, ok := newValues["notes"]; ok {
		s.scheduleRescore(ctx, id)
	}
	s.invalidateAnalytics(ctx)

	return updated, nil
}

// Assign writes the assignee onto the lead. A lead still in status new is
// advanced to assigned as part of the same operation, validated through the
// transition table.
func (s *Service) Assign(ctx context.Context, id, adminID uuid.UUID, reason string, actor ActionContext) (domain.Lead, error) {
	return s.assign(ctx, id, adminID, reason, nil, actor)
}

// assign is the shared path for manual and rule-driven assignment. ruleID,
// when set, is recorded in the audit entry so the round-robin cursor can be
// derived from history.
func (s *Service) assign(ctx context.Context, id, adminID uuid.UUID, reason string, ruleID *uuid.UUID, actor ActionContext) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	status := lead.Status
	if lead.Status == domain.StatusNew {
		if err := domain.CheckTransition(lead.Status, domain.StatusAssigned, true); err != nil {
			return domain.Lead{}, err
		}
		status = domain.StatusAssigned
	}

	previous := lead.AssignedTo
	updated, err := s.store.SetAssignee(ctx, id, adminID, time.Now().UTC(), status)
	if err != nil {
		return domain.Lead{}, err
	}

	newValues := map[string]any{"assigned_to": adminID.String(), "status": string(status), "reason": reason}
	if ruleID != nil {
		newValues["rule_id"] = ruleID.String()
	}
	s.appendAudit(ctx, domain.AuditEntry{
		LeadID:    id,
		Action:    domain.AuditLeadAssigned,
		OldValues: map[string]any{"assigned_to": uuidPtrString(previous), "status": string(lead.Status)},
		NewValues: newValues,
	}, actor)

	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           id,
		PreviousAssignee: previous,
		NewAssignee:      adminID,
		AssignedByID:     actor.PerformedBy,
		Reason:           reason,
	})
	s.invalidateAnalytics(ctx)

	return updated, nil
}

// TransitionStatus moves the lead through the pipeline. converted is never
// reachable here; the conversion workflow owns that edge. rejected requires a
// non-empty reason, persisted as rejection_reason.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus domain.Status, notes string, actor ActionContext) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	if err := domain.CheckTransition(lead.Status, newStatus, true); err != nil {
		return domain.Lead{}, err
	}

	var rejectionReason *string
	if newStatus == domain.StatusRejected {
		cleaned := sanitize.Text(notes)
		if cleaned == "" {
			return domain.Lead{}, apperr.Validation("a rejection reason is required")
		}
		rejectionReason = &cleaned
	}

	updated, err := s.store.SetStatus(ctx, id, newStatus, rejectionReason)
	if err != nil {
		return domain.Lead{}, err
	}

	newValues := map[string]any{"status": string(newStatus)}
	if rejectionReason != nil {
		newValues["rejection_reason"] = *rejectionReason
	}
	s.appendAudit(ctx, domain.AuditEntry{
		LeadID:    id,
		Action:    domain.AuditStatusChanged,
		OldValues: map[string]any{"status": string(lead.Status)},
		NewValues: newValues,
	}, actor)

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      id,
		OldStatus:   string(lead.Status),
		NewStatus:   string(newStatus),
		PerformedBy: actor.PerformedBy,
	})

	s.scheduleRescore(ctx, id)
	s.invalidateAnalytics(ctx)

	return updated, nil
}

// CompleteConversion is the sanctioned system path that marks a lead
// converted with its tenant reference. Only the conversion workflow calls it.
func (s *Service) CompleteConversion(ctx context.Context, leadID, tenantID uuid.UUID, tenantSlug string, actor ActionContext) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}

	updated, err := s.store.MarkConverted(ctx, leadID, tenantID, time.Now().UTC())
	if err != nil {
		return domain.Lead{}, err
	}

	s.appendAudit(ctx, domain.AuditEntry{
		LeadID:    leadID,
		Action:    domain.AuditLeadConverted,
		OldValues: map[string]any{"status": string(lead.Status)},
		NewValues: map[string]any{"status": string(domain.StatusConverted), "converted_tenant_id": tenantID.String()},
	}, actor)

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     leadID,
		TenantID:   tenantID,
		TenantSlug: tenantSlug,
	})

	s.scheduleRescore(ctx, leadID)
	s.invalidateAnalytics(ctx)

	return updated, nil
}

// GetByID returns a single lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return s.store.GetByID(ctx, id)
}

// List returns leads matching the filter.
func (s *Service) List(ctx context.Context, filter ports.ListLeadsFilter) ([]domain.Lead, error) {
	return s.store.List(ctx, filter)
}

// RecomputeScore recalculates and persists the qualification score for a
// lead. Runs on the async path: every failure is logged and swallowed so the
// triggering mutation is never affected.
func (s *Service) RecomputeScore(ctx context.Context, leadID uuid.UUID) error {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		s.log.DatabaseError("rescore load lead", err)
		return err
	}

	rules, err := s.rules.ListActiveScoringRules(ctx)
	if err != nil {
		s.log.DatabaseError("rescore load rules", err)
		rules = nil
	}

	result := s.engine.Score(&lead, rules)
	if err := s.store.SetScores(ctx, leadID, result.Score, lead.AIScore); err != nil {
		s.log.DatabaseError("rescore persist", err)
		return err
	}

	s.appendAudit(ctx, domain.AuditEntry{
		LeadID:    leadID,
		Action:    domain.AuditLeadScored,
		OldValues: map[string]any{"qualification_score": lead.QualificationScore},
		NewValues: map[string]any{"qualification_score": result.Score},
	}, systemActor)

	s.bus.Publish(ctx, events.LeadScored{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     leadID,
		Score:      result.Score,
		Confidence: result.Confidence,
	})

	return nil
}

// SetAIScore persists a model-derived score for a lead, keeping the
// rule-based qualification score intact. Used by the AI advisor.
func (s *Service) SetAIScore(ctx context.Context, leadID uuid.UUID, aiScore int) error {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return err
	}
	return s.store.SetScores(ctx, leadID, lead.QualificationScore, &aiScore)
}

// autoAssign consults the active assignment rules for a newly created lead.
// Failures are logged and leave the lead unassigned; assignment at capture
// is opportunistic, not required.
func (s *Service) autoAssign(ctx context.Context, lead domain.Lead, actor ActionContext) (domain.Lead, bool) {
	rules, err := s.rules.ListActiveAssignmentRules(ctx)
	if err != nil {
		s.log.DatabaseError("load assignment rules", err)
		return domain.Lead{}, false
	}

	rule := assignment.PickRule(rules)
	if rule == nil {
		return domain.Lead{}, false
	}

	adminID, ok, err := s.selector.SelectAssignee(ctx, rule)
	if err != nil {
		s.log.DatabaseError("select assignee", err)
		return domain.Lead{}, false
	}
	if !ok {
		return domain.Lead{}, false
	}

	assigned, err := s.assign(ctx, lead.ID, adminID, "rule: "+rule.RuleName, &rule.ID, actor)
	if err != nil {
		s.log.Error("auto assignment failed", "leadId", lead.ID, "error", err)
		return domain.Lead{}, false
	}
	return assigned, true
}

func (s *Service) validateCreate(req transport.CreateLeadRequest) error {
	if sanitize.Text(req.ContactName) == "" {
		return apperr.Validation("contact name is required")
	}
	if err := s.val.Var(req.Email, "required,email"); err != nil {
		return apperr.Validation("invalid email address")
	}
	if err := s.val.Var(req.Priority, "required,lead_priority"); err != nil {
		return apperr.Validation("priority must be one of low, medium, high, urgent")
	}
	return nil
}

// scheduleRescore fires the score recomputation without blocking the caller.
// Prefers the background worker; falls back to a goroutine when no worker is
// wired (tests, minimal deployments).
func (s *Service) scheduleRescore(ctx context.Context, leadID uuid.UUID) {
	if s.rescorer != nil {
		err := s.rescorer.EnqueueRescore(ctx, leadID)
		if err == nil {
			return
		}
		s.log.Warn("rescore enqueue failed, falling back to in-process", "leadId", leadID, "error", err)
	}
	go func() {
		// Detached from the request context: the caller does not wait for
		// scoring, and the request may already be finished.
		_ = s.RecomputeScore(context.Background(), leadID)
	}()
}

// appendAudit writes an audit entry. Audit is advisory: failures are logged
// and never propagated, and the primary mutation is never rolled back.
func (s *Service) appendAudit(ctx context.Context, entry domain.AuditEntry, actor ActionContext) {
	entry.PerformedBy = actor.PerformedBy
	entry.Source = actor.Source
	entry.Context = domain.AuditContext{
		UserAgent: actor.UserAgent,
		IPAddress: actor.IPAddress,
		SessionID: actor.SessionID,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.SinkError("audit", entry.LeadID.String(), err)
	}
}

func buildPatch(current *domain.Lead, req transport.UpdateLeadRequest) (ports.UpdateLeadPatch, map[string]any, map[string]any) {
	patch := ports.UpdateLeadPatch{}
	oldValues := map[string]any{}
	newValues := map[string]any{}

	if req.ContactName != nil {
		cleaned := sanitize.Text(*req.ContactName)
		if cleaned != current.ContactName {
			patch.ContactName = &cleaned
			oldValues["contact_name"] = current.ContactName
			newValues["contact_name"] = cleaned
		}
	}
	if req.Email != nil && *req.Email != current.Email {
		patch.Email = req.Email
		oldValues["email"] = current.Email
		newValues["email"] = *req.Email
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		if current.Phone == nil || normalized != *current.Phone {
			patch.Phone = &normalized
			oldValues["phone"] = strPtrValue(current.Phone)
			newValues["phone"] = normalized
		}
	}
	if req.OrganizationName != nil {
		cleaned := sanitize.Text(*req.OrganizationName)
		if current.OrganizationName == nil || cleaned != *current.OrganizationName {
			patch.OrganizationName = &cleaned
			oldValues["organization_name"] = strPtrValue(current.OrganizationName)
			newValues["organization_name"] = cleaned
		}
	}
	if req.Priority != nil && domain.Priority(*req.Priority) != current.Priority {
		p := domain.Priority(*req.Priority)
		patch.Priority = &p
		oldValues["priority"] = string(current.Priority)
		newValues["priority"] = *req.Priority
	}
	if req.Source != nil {
		cleaned := sanitize.Text(*req.Source)
		if cleaned != current.Source {
			patch.Source = &cleaned
			oldValues["source"] = current.Source
			newValues["source"] = cleaned
		}
	}
	if req.Notes != nil {
		cleaned := sanitize.Text(*req.Notes)
		if cleaned != current.Notes {
			patch.Notes = &cleaned
			oldValues["notes"] = current.Notes
			newValues["notes"] = cleaned
		}
	}
	if req.CustomFields != nil {
		patch.CustomFields = toCustomFields(req.CustomFields)
		oldValues["custom_fields"] = current.CustomFields
		newValues["custom_fields"] = patch.CustomFields
	}

	return patch, oldValues, newValues
}

func toCustomFields(dtos []transport.CustomFieldDTO) []domain.CustomField {
	if dtos == nil {
		return nil
	}
	fields := make([]domain.CustomField, 0, len(dtos))
	for _, f := range dtos {
		fields = append(fields, domain.CustomField{
			FieldName: f.FieldName,
			FieldType: f.FieldType,
			Value:     f.Value,
			Label:     f.Label,
		})
	}
	return fields
}

func uuidPtrString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func strPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
