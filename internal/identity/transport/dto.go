// Package transport defines request and response types for the identity API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"admin_console_backend/internal/identity/domain"
)

// CreateAdminRequest creates a console admin user.
type CreateAdminRequest struct {
	Email string   `json:"email" binding:"required,email"`
	Name  string   `json:"name" binding:"required,min=2,max=120"`
	Roles []string `json:"roles" binding:"required,min=1,dive,oneof=super_admin admin sales tenant_admin"`
}

// UpdateAdminRequest updates an admin user's profile.
type UpdateAdminRequest struct {
	Name  string   `json:"name" binding:"required,min=2,max=120"`
	Roles []string `json:"roles" binding:"required,min=1,dive,oneof=super_admin admin sales tenant_admin"`
}

// ChangeStatusRequest activates or deactivates an admin user.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// AdminResponse is the wire form of an admin user. Password material is
// never serialized.
type AdminResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Roles              []string   `json:"roles"`
	Status             string     `json:"status"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ToAdminResponse maps an admin user to its wire form.
func ToAdminResponse(u domain.AdminUser) AdminResponse {
	return AdminResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Roles:              u.Roles,
		Status:             string(u.Status),
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
