package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomField is one entry of a lead's ordered custom field list.
type CustomField struct {
	FieldName string `json:"fieldName"`
	FieldType string `json:"fieldType"`
	Value     string `json:"value"`
	Label     string `json:"label"`
}

// Lead is a prospective customer record moving through the qualification
// pipeline toward tenant conversion.
type Lead struct {
	ID               uuid.UUID
	ContactName      string
	Email            string
	Phone            *string
	OrganizationName *string
	Status           Status
	Priority         Priority
	Source           string
	// QualificationScore is recomputed asynchronously after relevant
	// mutations; 0-100.
	QualificationScore int
	// AIScore is an optional model-derived score, 0-100.
	AIScore           *int
	AssignedTo        *uuid.UUID
	AssignedAt        *time.Time
	ConvertedTenantID *uuid.UUID
	ConvertedAt       *time.Time
	RejectionReason   *string
	Notes             string
	CustomFields      []CustomField
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Field returns the value of a lead attribute by its wire name, used for
// scoring rule condition matching. Matching is strict string equality against
// these values; unknown keys return ok=false and never match.
func (l *Lead) Field(key string) (string, bool) {
	switch key {
	case "contact_name":
		return l.ContactName, true
	case "email":
		return l.Email, true
	case "phone":
		if l.Phone == nil {
			return "", false
		}
		return *l.Phone, true
	case "organization_name":
		if l.OrganizationName == nil {
			return "", false
		}
		return *l.OrganizationName, true
	case "status":
		return string(l.Status), true
	case "priority":
		return string(l.Priority), true
	case "source":
		return l.Source, true
	case "notes":
		return l.Notes, true
	default:
		return "", false
	}
}
