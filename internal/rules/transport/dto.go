// Package transport defines request and response types for the rules API.
package transport

import (
	"github.com/google/uuid"

	"admin_console_backend/internal/leads/domain"
)

// CreateScoringRuleRequest creates a scoring rule.
type CreateScoringRuleRequest struct {
	RuleName   string            `json:"rule_name" binding:"required,min=2,max=120"`
	RuleType   string            `json:"rule_type" binding:"required,oneof=demographic behavioral engagement company"`
	ScoreValue int               `json:"score_value" binding:"required,min=-100,max=100"`
	IsActive   *bool             `json:"is_active"`
	Conditions map[string]string `json:"conditions"`
}

// UpdateScoringRuleRequest replaces a scoring rule.
type UpdateScoringRuleRequest struct {
	RuleName   string            `json:"rule_name" binding:"required,min=2,max=120"`
	RuleType   string            `json:"rule_type" binding:"required,oneof=demographic behavioral engagement company"`
	ScoreValue int               `json:"score_value" binding:"required,min=-100,max=100"`
	IsActive   bool              `json:"is_active"`
	Conditions map[string]string `json:"conditions"`
}

// ScoringRuleResponse is the wire form of a scoring rule.
type ScoringRuleResponse struct {
	ID         uuid.UUID         `json:"id"`
	RuleName   string            `json:"rule_name"`
	RuleType   string            `json:"rule_type"`
	ScoreValue int               `json:"score_value"`
	IsActive   bool              `json:"is_active"`
	Conditions map[string]string `json:"conditions"`
}

// ToScoringRuleResponse maps a domain scoring rule to its wire form.
func ToScoringRuleResponse(r domain.ScoringRule) ScoringRuleResponse {
	return ScoringRuleResponse{
		ID:         r.ID,
		RuleName:   r.RuleName,
		RuleType:   string(r.RuleType),
		ScoreValue: r.ScoreValue,
		IsActive:   r.IsActive,
		Conditions: r.Conditions,
	}
}

// CreateAssignmentRuleRequest creates an assignment rule.
type CreateAssignmentRuleRequest struct {
	RuleName      string            `json:"rule_name" binding:"required,min=2,max=120"`
	RuleType      string            `json:"rule_type" binding:"required,oneof=round_robin load_balanced territory skill_based"`
	AdminPool     []uuid.UUID       `json:"admin_pool" binding:"required,min=1"`
	PriorityOrder int               `json:"priority_order" binding:"min=0"`
	IsActive      *bool             `json:"is_active"`
	Conditions    map[string]string `json:"conditions"`
}

// UpdateAssignmentRuleRequest replaces an assignment rule.
type UpdateAssignmentRuleRequest struct {
	RuleName      string            `json:"rule_name" binding:"required,min=2,max=120"`
	RuleType      string            `json:"rule_type" binding:"required,oneof=round_robin load_balanced territory skill_based"`
	AdminPool     []uuid.UUID       `json:"admin_pool" binding:"required,min=1"`
	PriorityOrder int               `json:"priority_order" binding:"min=0"`
	IsActive      bool              `json:"is_active"`
	Conditions    map[string]string `json:"conditions"`
}

// AssignmentRuleResponse is the wire form of an assignment rule.
type AssignmentRuleResponse struct {
	ID            uuid.UUID         `json:"id"`
	RuleName      string            `json:"rule_name"`
	RuleType      string            `json:"rule_type"`
	AdminPool     []uuid.UUID       `json:"admin_pool"`
	PriorityOrder int               `json:"priority_order"`
	IsActive      bool              `json:"is_active"`
	Conditions    map[string]string `json:"conditions"`
}

// ToAssignmentRuleResponse maps a domain assignment rule to its wire form.
func ToAssignmentRuleResponse(r domain.AssignmentRule) AssignmentRuleResponse {
	return AssignmentRuleResponse{
		ID:            r.ID,
		RuleName:      r.RuleName,
		RuleType:      string(r.RuleType),
		AdminPool:     r.AdminPool,
		PriorityOrder: r.PriorityOrder,
		IsActive:      r.IsActive,
		Conditions:    r.Conditions,
	}
}
