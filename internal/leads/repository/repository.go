// Package repository persists leads and their audit trail in Postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadColumns = `id, contact_name, email, phone, organization_name, status, priority, source,
	qualification_score, ai_score, assigned_to, assigned_at, converted_tenant_id, converted_at,
	rejection_reason, notes, custom_fields, created_at, updated_at`

// Repository implements ports.LeadStore and ports.AuditSink over pgx.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID loads a single lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

// Insert persists a new lead with status=new and score 0.
func (r *Repository) Insert(ctx context.Context, params ports.CreateLeadParams) (domain.Lead, error) {
	customFields, err := marshalCustomFields(params.CustomFields)
	if err != nil {
		return domain.Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			contact_name, email, phone, organization_name, status, priority, source,
			qualification_score, notes, custom_fields
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
		RETURNING `+leadColumns,
		params.ContactName, params.Email, params.Phone, params.OrganizationName,
		string(domain.StatusNew), string(params.Priority), params.Source,
		params.Notes, customFields,
	)
	return scanLead(row)
}

// Update applies a sparse patch built from the non-nil fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch ports.UpdateLeadPatch) (domain.Lead, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.ContactName != nil {
		add("contact_name", *patch.ContactName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.OrganizationName != nil {
		add("organization_name", *patch.OrganizationName)
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.Source != nil {
		add("source", *patch.Source)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.CustomFields != nil {
		customFields, err := marshalCustomFields(patch.CustomFields)
		if err != nil {
			return domain.Lead{}, err
		}
		add("custom_fields", customFields)
	}

	query := `UPDATE leads SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + leadColumns
	row := r.pool.QueryRow(ctx, query, args...)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

// List returns leads matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListLeadsFilter) ([]domain.Lead, error) {
	where := []string{"true"}
	args := []any{}

	addFilter := func(column string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Status != nil {
		addFilter("status", string(*filter.Status))
	}
	if filter.Priority != nil {
		addFilter("priority", string(*filter.Priority))
	}
	if filter.AssignedTo != nil {
		addFilter("assigned_to", *filter.AssignedTo)
	}
	if filter.Source != nil {
		addFilter("source", *filter.Source)
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// SetStatus persists a validated status change. Moving into rejected records
// the reason; moving out of rejected (reactivation) clears it.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status domain.Status, rejectionReason *string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $2, rejection_reason = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, string(status), rejectionReason,
	)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

// SetAssignee writes assignment fields together with the (possibly advanced)
// status in a single row update.
func (r *Repository) SetAssignee(ctx context.Context, id uuid.UUID, adminID uuid.UUID, assignedAt time.Time, status domain.Status) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET assigned_to = $2, assigned_at = $3, status = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, adminID, assignedAt, string(status),
	)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

// SetScores persists recomputed scores without touching other fields.
func (r *Repository) SetScores(ctx context.Context, id uuid.UUID, qualificationScore int, aiScore *int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET qualification_score = $2, ai_score = $3, updated_at = now() WHERE id = $1
	`, id, qualificationScore, aiScore)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}

// MarkConverted sets the converted status together with the conversion
// fields. This is the only write path that produces status=converted.
func (r *Repository) MarkConverted(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, convertedAt time.Time) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $2, converted_tenant_id = $3, converted_at = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, string(domain.StatusConverted), tenantID, convertedAt,
	)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

// ConversionStats computes conversion aggregates in SQL.
func (r *Repository) ConversionStats(ctx context.Context) (ports.ConversionStats, error) {
	var stats ports.ConversionStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE status = 'converted'),
			COALESCE(avg(EXTRACT(EPOCH FROM converted_at - created_at) / 86400.0)
				FILTER (WHERE converted_at IS NOT NULL), 0)
		FROM leads
	`).Scan(&stats.ConvertedCount, &stats.AvgDaysToConversion)
	return stats, err
}

// CountOpenAssignments returns how many non-terminal leads are assigned to
// the admin. Part of the AdminDirectory surface.
func (r *Repository) CountOpenAssignments(ctx context.Context, adminID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads
		WHERE assigned_to = $1 AND status NOT IN ('converted', 'rejected')
	`, adminID).Scan(&count)
	return count, err
}

// CountAssignmentsForRule counts audit-logged assignments attributed to the
// rule, which drives the round-robin cursor. Derived fresh per call so
// multiple instances cannot drift.
func (r *Repository) CountAssignmentsForRule(ctx context.Context, ruleID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM lead_audit_log
		WHERE action_type = 'lead_assigned' AND new_values->>'rule_id' = $1
	`, ruleID.String()).Scan(&count)
	return count, err
}

// ListStaleLeadIDs returns open leads not touched within the window, oldest
// first. Feeds the nightly rescore sweep; freshness points decay with age.
func (r *Repository) ListStaleLeadIDs(ctx context.Context, olderThan time.Duration, limit int) ([]uuid.UUID, error) {
	cutoff := time.Now().Add(-olderThan)
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM leads
		WHERE status NOT IN ('converted', 'rejected') AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (domain.Lead, error) {
	var (
		lead         domain.Lead
		status       string
		priority     string
		customFields []byte
	)
	err := row.Scan(
		&lead.ID, &lead.ContactName, &lead.Email, &lead.Phone, &lead.OrganizationName,
		&status, &priority, &lead.Source, &lead.QualificationScore, &lead.AIScore,
		&lead.AssignedTo, &lead.AssignedAt, &lead.ConvertedTenantID, &lead.ConvertedAt,
		&lead.RejectionReason, &lead.Notes, &customFields, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	lead.Priority = domain.Priority(priority)

	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &lead.CustomFields); err != nil {
			return domain.Lead{}, fmt.Errorf("decode custom fields: %w", err)
		}
	}
	return lead, nil
}

func marshalCustomFields(fields []domain.CustomField) ([]byte, error) {
	if fields == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(fields)
}
