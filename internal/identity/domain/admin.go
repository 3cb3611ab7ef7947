// Package domain holds admin user entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminStatus is an admin account's lifecycle state. Inactive admins keep
// their history but cannot sign in and leave the assignment pool.
type AdminStatus string

const (
	StatusActive   AdminStatus = "active"
	StatusInactive AdminStatus = "inactive"
)

// Role names used across the console.
const (
	RoleSuperAdmin  = "super_admin"
	RoleAdmin       = "admin"
	RoleSales       = "sales"
	RoleTenantAdmin = "tenant_admin"
)

// AdminUser is a console user. Tenant-admin users created during lead
// conversion live in the same table as internal operators.
type AdminUser struct {
	ID                 uuid.UUID
	Email              string
	Name               string
	Roles              []string
	Status             AdminStatus
	PasswordHash       string
	MustChangePassword bool
	LastLoginAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasRole reports whether the user carries the given role.
func (u AdminUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
