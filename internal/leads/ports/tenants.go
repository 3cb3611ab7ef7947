package ports

import (
	"context"

	"github.com/google/uuid"
)

// CreateTenantParams holds the fields the conversion workflow provides when
// provisioning a tenant from a qualified lead.
type CreateTenantParams struct {
	Name       string
	Slug       string
	Plan       string
	OwnerName  string
	OwnerEmail string
}

// TenantRef is the minimal tenant data the conversion workflow needs back.
type TenantRef struct {
	ID   uuid.UUID
	Slug string
}

// TenantStore is the persistence boundary for tenants, owned by the tenants
// module.
type TenantStore interface {
	Create(ctx context.Context, params CreateTenantParams) (TenantRef, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (TenantRef, error)
}

// ProvisionedUser is the result of a find-or-create admin user call.
// TempPassword is only set when a user was newly created, and is surfaced to
// the conversion caller exactly once.
type ProvisionedUser struct {
	UserID       uuid.UUID
	IsNew        bool
	TempPassword string
}

// UserProvisioner creates or links tenant-admin users during conversion.
// Implemented by the identity module.
type UserProvisioner interface {
	FindOrCreateAdminUser(ctx context.Context, email, name string) (ProvisionedUser, error)
	LinkUserToTenant(ctx context.Context, userID, tenantID uuid.UUID, role string) error
}

// WelcomeEmailSender sends the post-conversion welcome email. Best-effort;
// tempPassword is empty when an existing user was linked.
type WelcomeEmailSender interface {
	SendTenantWelcomeEmail(ctx context.Context, to, tenantName, loginURL, tempPassword string) error
}
