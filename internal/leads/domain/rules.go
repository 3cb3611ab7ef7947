package domain

import (
	"github.com/google/uuid"
)

// ScoringRuleType categorizes what a scoring rule measures.
type ScoringRuleType string

const (
	ScoringRuleDemographic ScoringRuleType = "demographic"
	ScoringRuleBehavioral  ScoringRuleType = "behavioral"
	ScoringRuleEngagement  ScoringRuleType = "engagement"
	ScoringRuleCompany     ScoringRuleType = "company"
)

// ScoringRule contributes a fixed point value to the qualification score
// when all of its conditions match a lead. Conditions are ANDed and compared
// with strict equality against Lead.Field values.
type ScoringRule struct {
	ID         uuid.UUID
	RuleName   string
	RuleType   ScoringRuleType
	ScoreValue int
	IsActive   bool
	Conditions map[string]string
}

// AssignmentRuleType selects the strategy an assignment rule uses.
type AssignmentRuleType string

const (
	AssignmentRoundRobin   AssignmentRuleType = "round_robin"
	AssignmentLoadBalanced AssignmentRuleType = "load_balanced"
	AssignmentTerritory    AssignmentRuleType = "territory"
	AssignmentSkillBased   AssignmentRuleType = "skill_based"
)

// AssignmentRule controls which admin receives newly created or reassigned
// leads. Rules are evaluated in PriorityOrder (lower first); the first active
// rule with a non-empty pool wins.
type AssignmentRule struct {
	ID            uuid.UUID
	RuleName      string
	RuleType      AssignmentRuleType
	AdminPool     []uuid.UUID
	PriorityOrder int
	IsActive      bool
	// Conditions are stored for territory/skill_based rules but are not
	// evaluated against lead attributes. See assignment.Selector.
	Conditions map[string]string
}
