// Package domain holds tenant entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus is the lifecycle state of a tenant workspace.
type TenantStatus string

const (
	StatusActive    TenantStatus = "active"
	StatusSuspended TenantStatus = "suspended"
)

// DefaultPlan is the plan new tenants are provisioned on when conversion
// does not name one.
const DefaultPlan = "Kisan_Basic"

// Tenant is a customer workspace, typically provisioned by converting a
// qualified lead.
type Tenant struct {
	ID         uuid.UUID
	Name       string
	Slug       string
	Plan       string
	Status     TenantStatus
	OwnerName  string
	OwnerEmail string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
