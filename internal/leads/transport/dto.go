// Package transport defines the JSON request/response shapes for the leads API.
package transport

import (
	"time"

	"admin_console_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// CustomFieldDTO mirrors domain.CustomField on the wire.
type CustomFieldDTO struct {
	FieldName string `json:"fieldName" binding:"required"`
	FieldType string `json:"fieldType" binding:"required"`
	Value     string `json:"value"`
	Label     string `json:"label"`
}

// CreateLeadRequest captures a new lead.
type CreateLeadRequest struct {
	ContactName      string           `json:"contactName" binding:"required"`
	Email            string           `json:"email" binding:"required,email"`
	Phone            string           `json:"phone"`
	OrganizationName string           `json:"organizationName"`
	Priority         string           `json:"priority" binding:"required"`
	Source           string           `json:"source"`
	Notes            string           `json:"notes"`
	CustomFields     []CustomFieldDTO `json:"customFields"`
}

// UpdateLeadRequest is a sparse patch. Status and conversion fields are
// rejected here; they only move through their dedicated endpoints.
type UpdateLeadRequest struct {
	ContactName      *string          `json:"contactName"`
	Email            *string          `json:"email"`
	Phone            *string          `json:"phone"`
	OrganizationName *string          `json:"organizationName"`
	Priority         *string          `json:"priority"`
	Source           *string          `json:"source"`
	Notes            *string          `json:"notes"`
	CustomFields     []CustomFieldDTO `json:"customFields"`

	// Rejected when present; kept in the DTO so the attempt is reported as a
	// validation error rather than silently dropped.
	Status            *string `json:"status"`
	ConvertedTenantID *string `json:"convertedTenantId"`
	ConvertedAt       *string `json:"convertedAt"`
}

// AssignLeadRequest assigns a lead to an admin.
type AssignLeadRequest struct {
	AdminID uuid.UUID `json:"adminId" binding:"required"`
	Reason  string    `json:"reason"`
}

// TransitionStatusRequest moves a lead through the pipeline.
type TransitionStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ConvertLeadRequest starts the qualified-lead→tenant workflow.
type ConvertLeadRequest struct {
	TenantName       string `json:"tenantName" binding:"required"`
	TenantSlug       string `json:"tenantSlug" binding:"required"`
	SubscriptionPlan string `json:"subscriptionPlan" binding:"required"`
	AdminName        string `json:"adminName" binding:"required"`
	AdminEmail       string `json:"adminEmail" binding:"required,email"`
}

// ConversionResponse reports the outcome of a conversion attempt.
// TempPassword is present exactly once, when a new admin user was created.
type ConversionResponse struct {
	Success           bool       `json:"success"`
	TenantID          uuid.UUID  `json:"tenantId"`
	TenantSlug        string     `json:"tenantSlug"`
	UserID            *uuid.UUID `json:"userId,omitempty"`
	TempPassword      string     `json:"tempPassword,omitempty"`
	IsRecovery        bool       `json:"isRecovery"`
	UserTenantCreated bool       `json:"userTenantCreated"`
	EmailSent         bool       `json:"emailSent"`
}

// LeadResponse is the wire shape of a lead.
type LeadResponse struct {
	ID                 uuid.UUID        `json:"id"`
	ContactName        string           `json:"contactName"`
	Email              string           `json:"email"`
	Phone              *string          `json:"phone,omitempty"`
	OrganizationName   *string          `json:"organizationName,omitempty"`
	Status             string           `json:"status"`
	Priority           string           `json:"priority"`
	Source             string           `json:"source,omitempty"`
	QualificationScore int              `json:"qualificationScore"`
	AIScore            *int             `json:"aiScore,omitempty"`
	AssignedTo         *uuid.UUID       `json:"assignedTo,omitempty"`
	AssignedAt         *time.Time       `json:"assignedAt,omitempty"`
	ConvertedTenantID  *uuid.UUID       `json:"convertedTenantId,omitempty"`
	ConvertedAt        *time.Time       `json:"convertedAt,omitempty"`
	RejectionReason    *string          `json:"rejectionReason,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	CustomFields       []CustomFieldDTO `json:"customFields,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// ToLeadResponse maps a domain lead to its wire shape.
func ToLeadResponse(lead domain.Lead) LeadResponse {
	fields := make([]CustomFieldDTO, 0, len(lead.CustomFields))
	for _, f := range lead.CustomFields {
		fields = append(fields, CustomFieldDTO{
			FieldName: f.FieldName,
			FieldType: f.FieldType,
			Value:     f.Value,
			Label:     f.Label,
		})
	}
	return LeadResponse{
		ID:                 lead.ID,
		ContactName:        lead.ContactName,
		Email:              lead.Email,
		Phone:              lead.Phone,
		OrganizationName:   lead.OrganizationName,
		Status:             string(lead.Status),
		Priority:           string(lead.Priority),
		Source:             lead.Source,
		QualificationScore: lead.QualificationScore,
		AIScore:            lead.AIScore,
		AssignedTo:         lead.AssignedTo,
		AssignedAt:         lead.AssignedAt,
		ConvertedTenantID:  lead.ConvertedTenantID,
		ConvertedAt:        lead.ConvertedAt,
		RejectionReason:    lead.RejectionReason,
		Notes:              lead.Notes,
		CustomFields:       fields,
		CreatedAt:          lead.CreatedAt,
		UpdatedAt:          lead.UpdatedAt,
	}
}

// Analytics is the derived, read-only lead book summary.
type Analytics struct {
	TotalLeads          int            `json:"totalLeads"`
	CountsByStatus      map[string]int `json:"countsByStatus"`
	CountsByPriority    map[string]int `json:"countsByPriority"`
	CountsBySource      map[string]int `json:"countsBySource"`
	AverageScore        float64        `json:"averageScore"`
	ConversionRate      float64        `json:"conversionRate"`
	AvgDaysToConversion float64        `json:"avgDaysToConversion"`
}

// LeadsWithAnalyticsResponse bundles the lead list with its analytics view.
type LeadsWithAnalyticsResponse struct {
	Leads     []LeadResponse `json:"leads"`
	Analytics Analytics      `json:"analytics"`
}
