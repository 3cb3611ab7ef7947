// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"admin_console_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a new lead is captured.
type LeadCreated struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Priority    string    `json:"priority"`
	Source      string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadUpdated is published when lead fields are edited.
type LeadUpdated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ChangedFields []string  `json:"changedFields"`
	PerformedBy   uuid.UUID `json:"performedBy"`
}

func (e LeadUpdated) EventName() string { return "leads.updated" }

// LeadAssigned is published when a lead is assigned to an admin.
type LeadAssigned struct {
	BaseEvent
	LeadID           uuid.UUID  `json:"leadId"`
	PreviousAssignee *uuid.UUID `json:"previousAssignee,omitempty"`
	NewAssignee      uuid.UUID  `json:"newAssignee"`
	AssignedByID     uuid.UUID  `json:"assignedById"`
	Reason           string     `json:"reason,omitempty"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// LeadStatusChanged is published when a lead moves through the pipeline.
type LeadStatusChanged struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	OldStatus   string    `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
	PerformedBy uuid.UUID `json:"performedBy"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadScored is published when the qualification score for a lead is recomputed.
type LeadScored struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	Score      int       `json:"score"`
	Confidence int       `json:"confidence"`
}

func (e LeadScored) EventName() string { return "leads.scored" }

// LeadConverted is published when a qualified lead becomes a tenant.
type LeadConverted struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	TenantID   uuid.UUID `json:"tenantId"`
	TenantSlug string    `json:"tenantSlug"`
	IsRecovery bool      `json:"isRecovery"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// =============================================================================
// Tenant / Identity Domain Events
// =============================================================================

// TenantProvisioned is published when a tenant record is created.
type TenantProvisioned struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	Slug     string    `json:"slug"`
	Plan     string    `json:"plan"`
}

func (e TenantProvisioned) EventName() string { return "tenants.provisioned" }

// AdminUserProvisioned is published when a new admin user is created
// (either directly or as part of a lead conversion).
type AdminUserProvisioned struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func (e AdminUserProvisioned) EventName() string { return "identity.admin.provisioned" }
