// Package service implements operator management of scoring and
// assignment rules.
package service

import (
	"context"

	"github.com/google/uuid"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/rules/transport"
	"admin_console_backend/platform/logger"
)

// Store is the persistence surface the rules service needs.
type Store interface {
	ListScoringRules(ctx context.Context) ([]domain.ScoringRule, error)
	CreateScoringRule(ctx context.Context, rule domain.ScoringRule) (domain.ScoringRule, error)
	UpdateScoringRule(ctx context.Context, rule domain.ScoringRule) (domain.ScoringRule, error)
	DeleteScoringRule(ctx context.Context, id uuid.UUID) error

	ListAssignmentRules(ctx context.Context) ([]domain.AssignmentRule, error)
	CreateAssignmentRule(ctx context.Context, rule domain.AssignmentRule) (domain.AssignmentRule, error)
	UpdateAssignmentRule(ctx context.Context, rule domain.AssignmentRule) (domain.AssignmentRule, error)
	DeleteAssignmentRule(ctx context.Context, id uuid.UUID) error
}

// Service manages rule configuration. Rule changes take effect on the next
// lead rather than retroactively.
type Service struct {
	store Store
	log   *logger.Logger
}

// New creates a new rules service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// ListScoringRules returns all scoring rules, active or not.
func (s *Service) ListScoringRules(ctx context.Context) ([]domain.ScoringRule, error) {
	return s.store.ListScoringRules(ctx)
}

// CreateScoringRule creates a scoring rule from an operator request.
func (s *Service) CreateScoringRule(ctx context.Context, req transport.CreateScoringRuleRequest) (domain.ScoringRule, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	rule, err := s.store.CreateScoringRule(ctx, domain.ScoringRule{
		RuleName:   req.RuleName,
		RuleType:   domain.ScoringRuleType(req.RuleType),
		ScoreValue: req.ScoreValue,
		IsActive:   active,
		Conditions: req.Conditions,
	})
	if err != nil {
		return domain.ScoringRule{}, err
	}
	s.log.Info("scoring rule created", "rule_id", rule.ID, "rule_name", rule.RuleName)
	return rule, nil
}

// UpdateScoringRule replaces a scoring rule's configuration.
func (s *Service) UpdateScoringRule(ctx context.Context, id uuid.UUID, req transport.UpdateScoringRuleRequest) (domain.ScoringRule, error) {
	rule, err := s.store.UpdateScoringRule(ctx, domain.ScoringRule{
		ID:         id,
		RuleName:   req.RuleName,
		RuleType:   domain.ScoringRuleType(req.RuleType),
		ScoreValue: req.ScoreValue,
		IsActive:   req.IsActive,
		Conditions: req.Conditions,
	})
	if err != nil {
		return domain.ScoringRule{}, err
	}
	s.log.Info("scoring rule updated", "rule_id", rule.ID, "rule_name", rule.RuleName)
	return rule, nil
}

// DeleteScoringRule removes a scoring rule.
func (s *Service) DeleteScoringRule(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteScoringRule(ctx, id); err != nil {
		return err
	}
	s.log.Info("scoring rule deleted", "rule_id", id)
	return nil
}

// ListAssignmentRules returns all assignment rules, active or not.
func (s *Service) ListAssignmentRules(ctx context.Context) ([]domain.AssignmentRule, error) {
	return s.store.ListAssignmentRules(ctx)
}

// CreateAssignmentRule creates an assignment rule from an operator request.
func (s *Service) CreateAssignmentRule(ctx context.Context, req transport.CreateAssignmentRuleRequest) (domain.AssignmentRule, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	rule, err := s.store.CreateAssignmentRule(ctx, domain.AssignmentRule{
		RuleName:      req.RuleName,
		RuleType:      domain.AssignmentRuleType(req.RuleType),
		AdminPool:     req.AdminPool,
		PriorityOrder: req.PriorityOrder,
		IsActive:      active,
		Conditions:    req.Conditions,
	})
	if err != nil {
		return domain.AssignmentRule{}, err
	}
	s.log.Info("assignment rule created", "rule_id", rule.ID, "rule_name", rule.RuleName, "rule_type", rule.RuleType)
	return rule, nil
}

// UpdateAssignmentRule replaces an assignment rule's configuration.
func (s *Service) UpdateAssignmentRule(ctx context.Context, id uuid.UUID, req transport.UpdateAssignmentRuleRequest) (domain.AssignmentRule, error) {
	rule, err := s.store.UpdateAssignmentRule(ctx, domain.AssignmentRule{
		ID:            id,
		RuleName:      req.RuleName,
		RuleType:      domain.AssignmentRuleType(req.RuleType),
		AdminPool:     req.AdminPool,
		PriorityOrder: req.PriorityOrder,
		IsActive:      req.IsActive,
		Conditions:    req.Conditions,
	})
	if err != nil {
		return domain.AssignmentRule{}, err
	}
	s.log.Info("assignment rule updated", "rule_id", rule.ID, "rule_name", rule.RuleName, "rule_type", rule.RuleType)
	return rule, nil
}

// DeleteAssignmentRule removes an assignment rule.
func (s *Service) DeleteAssignmentRule(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteAssignmentRule(ctx, id); err != nil {
		return err
	}
	s.log.Info("assignment rule deleted", "rule_id", id)
	return nil
}
