package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction enumerates the lead actions recorded in the audit log.
type AuditAction string

const (
	AuditLeadCreated   AuditAction = "lead_created"
	AuditLeadUpdated   AuditAction = "lead_updated"
	AuditLeadAssigned  AuditAction = "lead_assigned"
	AuditStatusChanged AuditAction = "status_changed"
	AuditLeadConverted AuditAction = "lead_converted"
	AuditLeadScored    AuditAction = "lead_scored"
)

// AuditContext carries request metadata for an audit entry. Free-form by
// nature; all fields optional.
type AuditContext struct {
	UserAgent string `json:"userAgent,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// AuditEntry is one append-only record of an action taken against a lead.
// OldValues/NewValues hold the changed fields as wire-name keyed maps;
// lead_created entries have empty OldValues.
type AuditEntry struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Action      AuditAction
	OldValues   map[string]any
	NewValues   map[string]any
	PerformedBy uuid.UUID
	Source      string
	Context     AuditContext
	CreatedAt   time.Time
}
