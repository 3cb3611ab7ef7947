package assignment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/logger"
)

type fakeDirectory struct {
	ruleCounts map[uuid.UUID]int
	openLoads  map[uuid.UUID]int
	err        error
}

func (f *fakeDirectory) ListActiveAdmins(context.Context) ([]ports.AdminInfo, error) {
	return nil, nil
}

func (f *fakeDirectory) CountOpenAssignments(_ context.Context, adminID uuid.UUID) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.openLoads[adminID], nil
}

func (f *fakeDirectory) CountAssignmentsForRule(_ context.Context, ruleID uuid.UUID) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.ruleCounts[ruleID], nil
}

func TestPickRule(t *testing.T) {
	admin := uuid.New()

	active := domain.AssignmentRule{ID: uuid.New(), RuleName: "default", PriorityOrder: 10,
		IsActive: true, AdminPool: []uuid.UUID{admin}}
	preferred := domain.AssignmentRule{ID: uuid.New(), RuleName: "priority desk", PriorityOrder: 1,
		IsActive: true, AdminPool: []uuid.UUID{admin}}
	inactive := domain.AssignmentRule{ID: uuid.New(), RuleName: "off", PriorityOrder: 0,
		IsActive: false, AdminPool: []uuid.UUID{admin}}
	emptyPool := domain.AssignmentRule{ID: uuid.New(), RuleName: "empty", PriorityOrder: 0,
		IsActive: true}

	cases := []struct {
		name  string
		rules []domain.AssignmentRule
		want  string
	}{
		{"lowest priority order wins", []domain.AssignmentRule{active, preferred}, "priority desk"},
		{"inactive skipped", []domain.AssignmentRule{inactive, active}, "default"},
		{"empty pool skipped", []domain.AssignmentRule{emptyPool, active}, "default"},
		{"no candidates", []domain.AssignmentRule{inactive, emptyPool}, ""},
		{"no rules", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PickRule(tc.rules)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("PickRule = %q, want nil", got.RuleName)
				}
				return
			}
			if got == nil || got.RuleName != tc.want {
				t.Fatalf("PickRule = %v, want %q", got, tc.want)
			}
		})
	}
}

func TestSelectRoundRobinCyclesDeterministically(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	rule := &domain.AssignmentRule{
		ID:        uuid.New(),
		RuleType:  domain.AssignmentRoundRobin,
		AdminPool: []uuid.UUID{a, b, c},
	}

	dir := &fakeDirectory{ruleCounts: map[uuid.UUID]int{}}
	sel := New(dir, logger.New("test"))

	want := []uuid.UUID{a, b, c, a, b}
	for i, wantID := range want {
		dir.ruleCounts[rule.ID] = i
		got, ok, err := sel.SelectAssignee(context.Background(), rule)
		if err != nil || !ok {
			t.Fatalf("SelectAssignee(count=%d) ok=%v err=%v", i, ok, err)
		}
		if got != wantID {
			t.Errorf("SelectAssignee(count=%d) = %s, want %s", i, got, wantID)
		}
	}
}

func TestSelectLeastLoaded(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	rule := &domain.AssignmentRule{
		ID:        uuid.New(),
		RuleType:  domain.AssignmentLoadBalanced,
		AdminPool: []uuid.UUID{a, b, c},
	}

	dir := &fakeDirectory{openLoads: map[uuid.UUID]int{a: 5, b: 2, c: 2}}
	sel := New(dir, logger.New("test"))

	got, ok, err := sel.SelectAssignee(context.Background(), rule)
	if err != nil || !ok {
		t.Fatalf("SelectAssignee ok=%v err=%v", ok, err)
	}
	// b and c tie on load; pool order breaks the tie.
	if got != b {
		t.Errorf("SelectAssignee = %s, want %s", got, b)
	}
}

func TestSelectAssigneeDegradedTypes(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	for _, ruleType := range []domain.AssignmentRuleType{domain.AssignmentTerritory, domain.AssignmentSkillBased} {
		rule := &domain.AssignmentRule{
			ID:        uuid.New(),
			RuleType:  ruleType,
			AdminPool: []uuid.UUID{a, b},
		}
		dir := &fakeDirectory{ruleCounts: map[uuid.UUID]int{rule.ID: 1}}
		sel := New(dir, logger.New("test"))

		got, ok, err := sel.SelectAssignee(context.Background(), rule)
		if err != nil || !ok {
			t.Fatalf("SelectAssignee(%s) ok=%v err=%v", ruleType, ok, err)
		}
		if got != b {
			t.Errorf("SelectAssignee(%s) = %s, want round-robin pick %s", ruleType, got, b)
		}
	}
}

func TestSelectAssigneeEdgeCases(t *testing.T) {
	sel := New(&fakeDirectory{}, logger.New("test"))

	if _, ok, err := sel.SelectAssignee(context.Background(), nil); ok || err != nil {
		t.Errorf("nil rule: ok=%v err=%v, want no assignee", ok, err)
	}

	empty := &domain.AssignmentRule{ID: uuid.New(), RuleType: domain.AssignmentRoundRobin}
	if _, ok, err := sel.SelectAssignee(context.Background(), empty); ok || err != nil {
		t.Errorf("empty pool: ok=%v err=%v, want no assignee", ok, err)
	}

	failing := New(&fakeDirectory{err: errors.New("db down")}, logger.New("test"))
	rule := &domain.AssignmentRule{ID: uuid.New(), RuleType: domain.AssignmentRoundRobin, AdminPool: []uuid.UUID{uuid.New()}}
	if _, ok, err := failing.SelectAssignee(context.Background(), rule); ok || err == nil {
		t.Errorf("directory error: ok=%v err=%v, want error", ok, err)
	}
}
