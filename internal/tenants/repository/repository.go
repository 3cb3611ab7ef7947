// Package repository persists tenants in Postgres.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/internal/tenants/domain"
	"admin_console_backend/platform/apperr"
)

// Repository implements tenant persistence, including ports.TenantStore.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new tenants repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tenantColumns = `id, name, slug, plan, status, owner_name, owner_email, created_at, updated_at`

// Create inserts a tenant provisioned by the conversion workflow. New
// tenants start on the default plan with active status.
func (r *Repository) Create(ctx context.Context, params ports.CreateTenantParams) (ports.TenantRef, error) {
	var ref ports.TenantRef
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tenants (name, slug, plan, status, owner_name, owner_email)
		VALUES ($1, $2, $3, 'active', $4, $5)
		RETURNING id, slug
	`, params.Name, params.Slug, params.Plan, params.OwnerName, params.OwnerEmail).Scan(&ref.ID, &ref.Slug)
	if err != nil {
		return ports.TenantRef{}, err
	}
	return ref, nil
}

// ExistsBySlug reports whether a tenant already uses the slug.
func (r *Repository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// GetByID returns the minimal tenant reference the conversion workflow needs.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (ports.TenantRef, error) {
	var ref ports.TenantRef
	err := r.pool.QueryRow(ctx, `SELECT id, slug FROM tenants WHERE id = $1`, id).Scan(&ref.ID, &ref.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.TenantRef{}, apperr.NotFound("tenant not found")
		}
		return ports.TenantRef{}, err
	}
	return ref, nil
}

// Get returns the full tenant record.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tenant{}, apperr.NotFound("tenant not found")
		}
		return domain.Tenant{}, err
	}
	return t, nil
}

// List returns tenants newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]domain.Tenant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]domain.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// SetStatus suspends or reactivates a tenant.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants SET status = $2, updated_at = now() WHERE id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tenant not found")
	}
	return nil
}

// SetPlan changes a tenant's subscription plan.
func (r *Repository) SetPlan(ctx context.Context, id uuid.UUID, plan string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants SET plan = $2, updated_at = now() WHERE id = $1
	`, id, plan)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tenant not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (domain.Tenant, error) {
	var (
		t         domain.Tenant
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Plan, &status, &t.OwnerName, &t.OwnerEmail, &createdAt, &updatedAt); err != nil {
		return domain.Tenant{}, err
	}
	t.Status = domain.TenantStatus(status)
	t.CreatedAt = createdAt
	t.UpdatedAt = updatedAt
	return t, nil
}
