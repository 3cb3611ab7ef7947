// Package assignment picks an assignee for new or reassigned leads based on
// the operator-configured assignment rules.
package assignment

import (
	"context"
	"sort"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/logger"

	"github.com/google/uuid"
)

// Selector resolves an assignment rule to a concrete admin. Stateless: the
// round-robin cursor is derived from persisted assignment history on every
// call, so multiple instances cannot drift.
type Selector struct {
	directory ports.AdminDirectory
	log       *logger.Logger
}

// New creates a new assignment selector.
func New(directory ports.AdminDirectory, log *logger.Logger) *Selector {
	return &Selector{directory: directory, log: log}
}

// PickRule returns the first active rule (by PriorityOrder, lower first)
// with a non-empty pool, or nil when none qualifies.
func PickRule(rules []domain.AssignmentRule) *domain.AssignmentRule {
	candidates := make([]domain.AssignmentRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive && len(rule.AdminPool) > 0 {
			candidates = append(candidates, rule)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PriorityOrder < candidates[j].PriorityOrder
	})
	return &candidates[0]
}

// SelectAssignee picks an admin from the rule's pool. Returns uuid.Nil and
// false when no assignee can be determined; the caller leaves the lead
// unassigned in that case.
func (s *Selector) SelectAssignee(ctx context.Context, rule *domain.AssignmentRule) (uuid.UUID, bool, error) {
	if rule == nil || len(rule.AdminPool) == 0 {
		return uuid.Nil, false, nil
	}

	switch rule.RuleType {
	case domain.AssignmentLoadBalanced:
		return s.selectLeastLoaded(ctx, rule)
	case domain.AssignmentTerritory, domain.AssignmentSkillBased:
		// Condition matching for these rule types is not implemented; they
		// degrade to round-robin over the pool. Logged so the limitation is
		// visible in production.
		if s.log != nil {
			s.log.Warn("assignment rule type not matched against lead attributes, using round robin",
				"ruleType", string(rule.RuleType), "rule", rule.RuleName)
		}
		return s.selectRoundRobin(ctx, rule)
	default:
		return s.selectRoundRobin(ctx, rule)
	}
}

// selectRoundRobin cycles through the pool in array order. The cursor is the
// count of assignments already attributed to this rule, so selection is a
// pure function of (pool, history).
func (s *Selector) selectRoundRobin(ctx context.Context, rule *domain.AssignmentRule) (uuid.UUID, bool, error) {
	count, err := s.directory.CountAssignmentsForRule(ctx, rule.ID)
	if err != nil {
		return uuid.Nil, false, err
	}
	return rule.AdminPool[count%len(rule.AdminPool)], true, nil
}

// selectLeastLoaded picks the pool admin with the fewest open leads, ties
// broken by pool order.
func (s *Selector) selectLeastLoaded(ctx context.Context, rule *domain.AssignmentRule) (uuid.UUID, bool, error) {
	best := uuid.Nil
	bestLoad := -1
	for _, adminID := range rule.AdminPool {
		load, err := s.directory.CountOpenAssignments(ctx, adminID)
		if err != nil {
			return uuid.Nil, false, err
		}
		if bestLoad == -1 || load < bestLoad {
			best = adminID
			bestLoad = load
		}
	}
	if best == uuid.Nil {
		return uuid.Nil, false, nil
	}
	return best, true, nil
}
