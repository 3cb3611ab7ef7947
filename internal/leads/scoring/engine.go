// Package scoring computes lead qualification scores.
package scoring

import (
	"sort"
	"time"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/platform/logger"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "2026-v1"

	minScore = 0
	maxScore = 100
)

// Demographic contributions.
const (
	organizationPoints = 15
	phonePoints        = 10
)

// priorityPoints weights the operator-set priority.
var priorityPoints = map[domain.Priority]int{
	domain.PriorityUrgent: 25,
	domain.PriorityHigh:   20,
	domain.PriorityMedium: 10,
	domain.PriorityLow:    5,
}

// statusPoints rewards pipeline progression.
var statusPoints = map[domain.Status]int{
	domain.StatusContacted: 15,
	domain.StatusQualified: 25,
	domain.StatusConverted: 50,
}

// confidenceFields are the contact-completeness fields confidence is
// computed over.
var confidenceFields = []string{
	"contact_name", "email", "phone", "organization_name", "source", "notes",
}

// Factor reports one contribution to the final score.
type Factor struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Points   int    `json:"points"`
}

// Result holds scoring output and factor details.
type Result struct {
	Score             int       `json:"score"`
	Confidence        int       `json:"confidence"`
	RecommendedAction string    `json:"recommendedAction"`
	Factors           []Factor  `json:"factors"`
	Version           string    `json:"version"`
	ComputedAt        time.Time `json:"computedAt"`
}

// Engine computes qualification scores. Pure and side-effect-free: persisting
// the result is the caller's responsibility.
type Engine struct {
	log *logger.Logger
	now func() time.Time
}

// New creates a new scoring engine.
func New(log *logger.Logger) *Engine {
	return &Engine{log: log, now: time.Now}
}

// Score evaluates the active rules plus the built-in demographic and
// engagement factors against the lead, returning a clamped 0-100 score.
// Idempotent for a fixed lead, rule set and clock.
func (e *Engine) Score(lead *domain.Lead, rules []domain.ScoringRule) Result {
	now := e.now().UTC()

	var sum int
	var factors []Factor

	// Custom rules first, highest value first. Order does not affect the sum
	// but keeps factor reporting stable.
	active := make([]domain.ScoringRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsActive {
			active = append(active, rule)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ScoreValue > active[j].ScoreValue
	})

	for _, rule := range active {
		if ruleMatches(lead, rule) {
			sum += rule.ScoreValue
			factors = append(factors, Factor{
				Name:     rule.RuleName,
				Category: string(rule.RuleType),
				Points:   rule.ScoreValue,
			})
		}
	}

	sum, factors = addDemographics(lead, sum, factors)
	sum, factors = addEngagement(lead, now, sum, factors)

	score := clamp(sum, minScore, maxScore)
	confidence := confidence(lead)

	return Result{
		Score:             score,
		Confidence:        confidence,
		RecommendedAction: recommendedAction(score),
		Factors:           factors,
		Version:           scoreVersion,
		ComputedAt:        now,
	}
}

// ruleMatches evaluates a rule's conditions with strict equality, ANDed.
// Unknown or unpopulated lead fields never match. A rule with no conditions
// matches every lead (vacuous AND), giving operators a flat bonus knob.
func ruleMatches(lead *domain.Lead, rule domain.ScoringRule) bool {
	for key, expected := range rule.Conditions {
		value, ok := lead.Field(key)
		if !ok || value != expected {
			return false
		}
	}
	return true
}

func addDemographics(lead *domain.Lead, sum int, factors []Factor) (int, []Factor) {
	if lead.OrganizationName != nil && *lead.OrganizationName != "" {
		sum += organizationPoints
		factors = append(factors, Factor{Name: "has_organization", Category: "demographic", Points: organizationPoints})
	}
	if lead.Phone != nil && *lead.Phone != "" {
		sum += phonePoints
		factors = append(factors, Factor{Name: "has_phone", Category: "demographic", Points: phonePoints})
	}
	if points, ok := priorityPoints[lead.Priority]; ok {
		sum += points
		factors = append(factors, Factor{Name: "priority_" + string(lead.Priority), Category: "demographic", Points: points})
	}
	return sum, factors
}

func addEngagement(lead *domain.Lead, now time.Time, sum int, factors []Factor) (int, []Factor) {
	freshness := freshnessPoints(now.Sub(lead.CreatedAt))
	sum += freshness
	factors = append(factors, Factor{Name: "freshness", Category: "engagement", Points: freshness})

	if points, ok := statusPoints[lead.Status]; ok {
		sum += points
		factors = append(factors, Factor{Name: "status_" + string(lead.Status), Category: "engagement", Points: points})
	}

	if len(lead.Notes) > 20 {
		sum += 10
		factors = append(factors, Factor{Name: "detailed_notes", Category: "engagement", Points: 10})
	}

	return sum, factors
}

func freshnessPoints(age time.Duration) int {
	days := age.Hours() / 24
	switch {
	case days <= 1:
		return 20
	case days <= 7:
		return 15
	case days <= 30:
		return 10
	default:
		return 5
	}
}

func confidence(lead *domain.Lead) int {
	populated := 0
	for _, field := range confidenceFields {
		if value, ok := lead.Field(field); ok && value != "" {
			populated++
		}
	}
	return int(float64(populated)/float64(len(confidenceFields))*100 + 0.5)
}

func recommendedAction(score int) string {
	switch {
	case score >= 80:
		return "schedule immediate follow-up"
	case score >= 60:
		return "send personalized email within 24h"
	case score >= 40:
		return "add to nurturing campaign"
	case score >= 20:
		return "include in newsletter"
	default:
		return "review manually"
	}
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
