// Package ports defines consumer-driven interfaces for external dependencies.
// These interfaces are defined in the Leads domain based on what it needs,
// rather than what other domains choose to offer.
package ports

import (
	"context"
	"time"

	"admin_console_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// CreateLeadParams holds the fields for inserting a new lead. Status and
// score are set by the lifecycle service, never by the caller.
type CreateLeadParams struct {
	ContactName      string
	Email            string
	Phone            *string
	OrganizationName *string
	Priority         domain.Priority
	Source           string
	Notes            string
	CustomFields     []domain.CustomField
}

// UpdateLeadPatch is a sparse patch; nil fields are left untouched.
// Status and conversion fields are system-managed and only settable through
// the dedicated store methods below.
type UpdateLeadPatch struct {
	ContactName      *string
	Email            *string
	Phone            *string
	OrganizationName *string
	Priority         *domain.Priority
	Source           *string
	Notes            *string
	CustomFields     []domain.CustomField
}

// ListLeadsFilter narrows List results; zero value lists everything.
type ListLeadsFilter struct {
	Status     *domain.Status
	Priority   *domain.Priority
	AssignedTo *uuid.UUID
	Source     *string
}

// LeadStore is the persistence boundary for leads. Every write is a single
// row; the core relies on last-write-wins rather than row locking.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	Insert(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdateLeadPatch) (domain.Lead, error)
	List(ctx context.Context, filter ListLeadsFilter) ([]domain.Lead, error)

	// SetStatus persists a validated status change, clearing or setting
	// rejection_reason as the transition requires.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.Status, rejectionReason *string) (domain.Lead, error)

	// SetAssignee persists assignment fields and optionally the combined
	// new→assigned status advance.
	SetAssignee(ctx context.Context, id uuid.UUID, adminID uuid.UUID, assignedAt time.Time, status domain.Status) (domain.Lead, error)

	// SetScores persists recomputed qualification/AI scores. Called from the
	// async scoring path; failures are logged by the caller, never surfaced.
	SetScores(ctx context.Context, id uuid.UUID, qualificationScore int, aiScore *int) error

	// MarkConverted is the sanctioned system path for entering the converted
	// status together with the conversion fields.
	MarkConverted(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, convertedAt time.Time) (domain.Lead, error)

	// ConversionStats returns the store-side conversion aggregates that are
	// cheaper to compute in SQL than from the full lead list.
	ConversionStats(ctx context.Context) (ConversionStats, error)
}

// ConversionStats holds conversion aggregates for the analytics view.
type ConversionStats struct {
	ConvertedCount      int
	AvgDaysToConversion float64
}

// AuditSink records append-only audit entries. Best-effort: the lifecycle
// service logs failures and continues.
type AuditSink interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// RuleStore provides the operator-maintained scoring and assignment rules.
// Read-only to the leads core.
type RuleStore interface {
	ListActiveScoringRules(ctx context.Context) ([]domain.ScoringRule, error)
	ListActiveAssignmentRules(ctx context.Context) ([]domain.AssignmentRule, error)
}
