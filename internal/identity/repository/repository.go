// Package repository persists admin users and their tenant memberships.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"admin_console_backend/internal/identity/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/apperr"
)

// Repository implements admin user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new identity repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const adminColumns = `id, email, name, roles, status, password_hash, must_change_password, last_login_at, created_at, updated_at`

// GetByID returns an admin user by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.AdminUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id)
	return scanAdmin(row)
}

// GetByEmail returns an admin user by email, case-insensitive.
func (r *Repository) GetByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	return scanAdmin(row)
}

// Insert creates an admin user.
func (r *Repository) Insert(ctx context.Context, user domain.AdminUser) (domain.AdminUser, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO admin_users (email, name, roles, status, password_hash, must_change_password)
		VALUES (lower($1), $2, $3, $4, $5, $6)
		RETURNING `+adminColumns+`
	`, user.Email, user.Name, user.Roles, string(user.Status), user.PasswordHash, user.MustChangePassword)
	created, err := scanAdmin(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.AdminUser{}, apperr.Conflict("email already in use")
		}
		return domain.AdminUser{}, err
	}
	return created, nil
}

// List returns admin users, active first, then by name.
func (r *Repository) List(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+adminColumns+`
		FROM admin_users
		ORDER BY status ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.AdminUser, 0)
	for rows.Next() {
		u, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile updates name and roles.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, roles []string) (domain.AdminUser, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE admin_users
		SET name = $2, roles = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+adminColumns+`
	`, id, name, roles)
	return scanAdmin(row)
}

// SetStatus activates or deactivates an admin user.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status domain.AdminStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE admin_users SET status = $2, updated_at = now() WHERE id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("admin user not found")
	}
	return nil
}

// UpdatePassword replaces the password hash and clears the forced-change flag.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE admin_users
		SET password_hash = $2, must_change_password = false, updated_at = now()
		WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("admin user not found")
	}
	return nil
}

// SetMustChangePassword toggles the forced password change flag.
func (r *Repository) SetMustChangePassword(ctx context.Context, id uuid.UUID, must bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE admin_users SET must_change_password = $2, updated_at = now() WHERE id = $1
	`, id, must)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("admin user not found")
	}
	return nil
}

// TouchLastLogin records a successful sign-in.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE admin_users SET last_login_at = now() WHERE id = $1`, id)
	return err
}

// ListActiveAdmins returns the assignment-eligible admin pool.
func (r *Repository) ListActiveAdmins(ctx context.Context) ([]ports.AdminInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email
		FROM admin_users
		WHERE status = 'active'
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := make([]ports.AdminInfo, 0)
	for rows.Next() {
		var a ports.AdminInfo
		if err := rows.Scan(&a.ID, &a.Name, &a.Email); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// LinkUserToTenant records a user's membership in a tenant. Linking the same
// pair twice is a no-op, which keeps conversion recovery idempotent.
func (r *Repository) LinkUserToTenant(ctx context.Context, userID, tenantID uuid.UUID, role string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_tenants (user_id, tenant_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, tenant_id) DO NOTHING
	`, userID, tenantID, role)
	return err
}

// TenantIDsForUser returns the tenants a user belongs to.
func (r *Repository) TenantIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id FROM user_tenants WHERE user_id = $1 ORDER BY created_at ASC
	`, userID)
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

func scanAdmin(row rowScanner) (domain.AdminUser, error) {
	var (
		u      domain.AdminUser
		status string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Roles, &status, &u.PasswordHash, &u.MustChangePassword, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AdminUser{}, apperr.NotFound("admin user not found")
		}
		return domain.AdminUser{}, err
	}
	u.Status = domain.AdminStatus(status)
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
