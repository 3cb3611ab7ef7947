package repository

import (
	"context"
	"encoding/json"

	"admin_console_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Append writes an audit entry. The table is append-only; rows are never
// updated or deleted by the application.
func (r *Repository) Append(ctx context.Context, entry domain.AuditEntry) error {
	oldValues, err := json.Marshal(entry.OldValues)
	if err != nil {
		return err
	}
	newValues, err := json.Marshal(entry.NewValues)
	if err != nil {
		return err
	}
	auditContext, err := json.Marshal(entry.Context)
	if err != nil {
		return err
	}

	var performedBy *uuid.UUID
	if entry.PerformedBy != uuid.Nil {
		performedBy = &entry.PerformedBy
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO lead_audit_log (lead_id, action_type, old_values, new_values, performed_by, source, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.LeadID, string(entry.Action), oldValues, newValues, performedBy, entry.Source, auditContext)
	return err
}

// ListAuditLog returns the audit trail for a lead, oldest first.
func (r *Repository) ListAuditLog(ctx context.Context, leadID uuid.UUID) ([]domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, action_type, old_values, new_values, performed_by, source, context, created_at
		FROM lead_audit_log
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			entry        domain.AuditEntry
			action       string
			oldValues    []byte
			newValues    []byte
			auditContext []byte
			performedBy  *uuid.UUID
		)
		if err := rows.Scan(&entry.ID, &entry.LeadID, &action, &oldValues, &newValues,
			&performedBy, &entry.Source, &auditContext, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Action = domain.AuditAction(action)
		if performedBy != nil {
			entry.PerformedBy = *performedBy
		}
		if err := json.Unmarshal(oldValues, &entry.OldValues); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(newValues, &entry.NewValues); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(auditContext, &entry.Context); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
