package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/platform/logger"
)

func testEngine(now time.Time) *Engine {
	e := New(logger.New("test"))
	e.now = func() time.Time { return now }
	return e
}

func strPtr(s string) *string { return &s }

func baseLead(now time.Time) domain.Lead {
	return domain.Lead{
		ID:          uuid.New(),
		ContactName: "Asha Patil",
		Email:       "asha@agrico.example",
		Status:      domain.StatusNew,
		Priority:    domain.PriorityMedium,
		CreatedAt:   now.Add(-2 * time.Hour),
	}
}

func TestScoreBaseline(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lead := baseLead(now)

	result := testEngine(now).Score(&lead, nil)

	// medium priority (10) + freshness <=1d (20)
	if result.Score != 30 {
		t.Errorf("Score = %d, want 30", result.Score)
	}
	if result.Version != scoreVersion {
		t.Errorf("Version = %q, want %q", result.Version, scoreVersion)
	}
	if result.RecommendedAction != "include in newsletter" {
		t.Errorf("RecommendedAction = %q", result.RecommendedAction)
	}
}

func TestScoreDemographicAndEngagementFactors(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	lead := baseLead(now)
	lead.Phone = strPtr("+919812345678")
	lead.OrganizationName = strPtr("Agrico Farms")
	lead.Priority = domain.PriorityUrgent
	lead.Status = domain.StatusQualified
	lead.Notes = "met at the Pune agri expo, wants a demo next week"

	result := testEngine(now).Score(&lead, nil)

	// org 15 + phone 10 + urgent 25 + freshness 20 + qualified 25 + notes 10 = 105, clamped
	if result.Score != 100 {
		t.Errorf("Score = %d, want 100 (clamped)", result.Score)
	}

	wantFactors := map[string]int{
		"has_organization": 15,
		"has_phone":        10,
		"priority_urgent":  25,
		"freshness":        20,
		"status_qualified": 25,
		"detailed_notes":   10,
	}
	if len(result.Factors) != len(wantFactors) {
		t.Fatalf("got %d factors %v, want %d", len(result.Factors), result.Factors, len(wantFactors))
	}
	for _, f := range result.Factors {
		if want, ok := wantFactors[f.Name]; !ok || f.Points != want {
			t.Errorf("factor %s = %d points, want %d", f.Name, f.Points, want)
		}
	}
}

func TestScoreCustomRules(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	rules := []domain.ScoringRule{
		{RuleName: "referral source", RuleType: domain.ScoringRuleBehavioral, ScoreValue: 30, IsActive: true,
			Conditions: map[string]string{"source": "referral"}},
		{RuleName: "inactive bonus", RuleType: domain.ScoringRuleCompany, ScoreValue: 50, IsActive: false},
		{RuleName: "flat bonus", RuleType: domain.ScoringRuleCompany, ScoreValue: 5, IsActive: true},
		{RuleName: "needs phone", RuleType: domain.ScoringRuleDemographic, ScoreValue: 10, IsActive: true,
			Conditions: map[string]string{"phone": "+919812345678"}},
	}

	lead := baseLead(now)
	lead.Source = "referral"

	result := testEngine(now).Score(&lead, rules)

	// referral 30 + flat 5 + medium 10 + freshness 20 = 65.
	// The inactive rule is skipped; the phone condition fails on a nil field.
	if result.Score != 65 {
		t.Errorf("Score = %d, want 65", result.Score)
	}
	for _, f := range result.Factors {
		if f.Name == "inactive bonus" || f.Name == "needs phone" {
			t.Errorf("unexpected factor %q", f.Name)
		}
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	engine := testEngine(now)
	lead := baseLead(now)
	lead.Source = "webinar"

	first := engine.Score(&lead, nil)
	second := engine.Score(&lead, nil)
	if first.Score != second.Score || first.Confidence != second.Confidence {
		t.Errorf("repeated scoring diverged: %+v vs %+v", first, second)
	}
}

func TestFreshnessPoints(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want int
	}{
		{12 * time.Hour, 20},
		{24 * time.Hour, 20},
		{3 * 24 * time.Hour, 15},
		{7 * 24 * time.Hour, 15},
		{20 * 24 * time.Hour, 10},
		{90 * 24 * time.Hour, 5},
	}
	for _, tc := range cases {
		if got := freshnessPoints(tc.age); got != tc.want {
			t.Errorf("freshnessPoints(%v) = %d, want %d", tc.age, got, tc.want)
		}
	}
}

func TestConfidence(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	empty := domain.Lead{CreatedAt: now}
	if got := confidence(&empty); got != 0 {
		t.Errorf("confidence(empty) = %d, want 0", got)
	}

	full := baseLead(now)
	full.Phone = strPtr("+919812345678")
	full.OrganizationName = strPtr("Agrico Farms")
	full.Source = "referral"
	full.Notes = "spoke on the phone"
	if got := confidence(&full); got != 100 {
		t.Errorf("confidence(full) = %d, want 100", got)
	}

	// 3 of 6 fields populated rounds to 50.
	half := domain.Lead{ContactName: "Asha", Email: "a@b.c", Source: "ad", CreatedAt: now}
	if got := confidence(&half); got != 50 {
		t.Errorf("confidence(half) = %d, want 50", got)
	}
}

func TestRecommendedActionBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{95, "schedule immediate follow-up"},
		{80, "schedule immediate follow-up"},
		{79, "send personalized email within 24h"},
		{60, "send personalized email within 24h"},
		{59, "add to nurturing campaign"},
		{40, "add to nurturing campaign"},
		{39, "include in newsletter"},
		{20, "include in newsletter"},
		{19, "review manually"},
		{0, "review manually"},
	}
	for _, tc := range cases {
		if got := recommendedAction(tc.score); got != tc.want {
			t.Errorf("recommendedAction(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
