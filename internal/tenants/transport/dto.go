// Package transport defines request and response types for the tenants API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"admin_console_backend/internal/tenants/domain"
)

// ListTenantsRequest are the pagination query params for listing tenants.
type ListTenantsRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ChangePlanRequest changes a tenant's subscription plan.
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required,min=2,max=60"`
}

// ChangeStatusRequest suspends or reactivates a tenant.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// TenantResponse is the wire form of a tenant.
type TenantResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Plan       string    `json:"plan"`
	Status     string    `json:"status"`
	OwnerName  string    `json:"owner_name"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToTenantResponse maps a domain tenant to its wire form.
func ToTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:         t.ID,
		Name:       t.Name,
		Slug:       t.Slug,
		Plan:       t.Plan,
		Status:     string(t.Status),
		OwnerName:  t.OwnerName,
		OwnerEmail: t.OwnerEmail,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
