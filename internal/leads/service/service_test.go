package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"admin_console_backend/internal/events"
	"admin_console_backend/internal/leads/assignment"
	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/internal/leads/scoring"
	"admin_console_backend/internal/leads/transport"
	"admin_console_backend/platform/apperr"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/validator"
)

// ---------------------------------------------------------------------------
// fakes

type fakeStore struct {
	leads     map[uuid.UUID]domain.Lead
	insertErr error
	updateErr error
	statusErr error
}

func newFakeStore(leads ...domain.Lead) *fakeStore {
	f := &fakeStore{leads: map[uuid.UUID]domain.Lead{}}
	for _, l := range leads {
		f.leads[l.ID] = l
	}
	return f
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeStore) Insert(_ context.Context, params ports.CreateLeadParams) (domain.Lead, error) {
	if f.insertErr != nil {
		return domain.Lead{}, f.insertErr
	}
	lead := domain.Lead{
		ID:               uuid.New(),
		ContactName:      params.ContactName,
		Email:            params.Email,
		Phone:            params.Phone,
		OrganizationName: params.OrganizationName,
		Status:           domain.StatusNew,
		Priority:         params.Priority,
		Source:           params.Source,
		Notes:            params.Notes,
		CustomFields:     params.CustomFields,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, patch ports.UpdateLeadPatch) (domain.Lead, error) {
	if f.updateErr != nil {
		return domain.Lead{}, f.updateErr
	}
	lead := f.leads[id]
	if patch.ContactName != nil {
		lead.ContactName = *patch.ContactName
	}
	if patch.Email != nil {
		lead.Email = *patch.Email
	}
	if patch.Phone != nil {
		lead.Phone = patch.Phone
	}
	if patch.Priority != nil {
		lead.Priority = *patch.Priority
	}
	if patch.Notes != nil {
		lead.Notes = *patch.Notes
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, _ ports.ListLeadsFilter) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0, len(f.leads))
	for _, l := range f.leads {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id uuid.UUID, status domain.Status, rejectionReason *string) (domain.Lead, error) {
	if f.statusErr != nil {
		return domain.Lead{}, f.statusErr
	}
	lead := f.leads[id]
	lead.Status = status
	lead.RejectionReason = rejectionReason
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) SetAssignee(_ context.Context, id, adminID uuid.UUID, assignedAt time.Time, status domain.Status) (domain.Lead, error) {
	lead := f.leads[id]
	lead.AssignedTo = &adminID
	lead.AssignedAt = &assignedAt
	lead.Status = status
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) SetScores(_ context.Context, id uuid.UUID, qualificationScore int, aiScore *int) error {
	lead := f.leads[id]
	lead.QualificationScore = qualificationScore
	lead.AIScore = aiScore
	f.leads[id] = lead
	return nil
}

func (f *fakeStore) MarkConverted(_ context.Context, id, tenantID uuid.UUID, convertedAt time.Time) (domain.Lead, error) {
	lead := f.leads[id]
	lead.Status = domain.StatusConverted
	lead.ConvertedTenantID = &tenantID
	lead.ConvertedAt = &convertedAt
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) ConversionStats(context.Context) (ports.ConversionStats, error) {
	return ports.ConversionStats{}, nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
	err     error
}

func (f *fakeAudit) Append(_ context.Context, entry domain.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeRules struct {
	scoring    []domain.ScoringRule
	assignment []domain.AssignmentRule
}

func (f *fakeRules) ListActiveScoringRules(context.Context) ([]domain.ScoringRule, error) {
	return f.scoring, nil
}

func (f *fakeRules) ListActiveAssignmentRules(context.Context) ([]domain.AssignmentRule, error) {
	return f.assignment, nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func (f *fakeBus) names() []string {
	out := make([]string, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.EventName())
	}
	return out
}

type fakeEnqueuer struct {
	enqueued []uuid.UUID
	err      error
}

func (f *fakeEnqueuer) EnqueueRescore(_ context.Context, leadID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, leadID)
	return nil
}

type fakeAdminDirectory struct {
	ruleCounts map[uuid.UUID]int
}

func (f *fakeAdminDirectory) ListActiveAdmins(context.Context) ([]ports.AdminInfo, error) {
	return nil, nil
}

func (f *fakeAdminDirectory) CountOpenAssignments(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeAdminDirectory) CountAssignmentsForRule(_ context.Context, ruleID uuid.UUID) (int, error) {
	return f.ruleCounts[ruleID], nil
}

type fixture struct {
	svc      *Service
	store    *fakeStore
	audit    *fakeAudit
	rules    *fakeRules
	bus      *fakeBus
	enqueuer *fakeEnqueuer
}

func newFixture(store *fakeStore, rules *fakeRules) *fixture {
	log := logger.New("test")
	audit := &fakeAudit{}
	bus := &fakeBus{}
	enqueuer := &fakeEnqueuer{}
	selector := assignment.New(&fakeAdminDirectory{ruleCounts: map[uuid.UUID]int{}}, log)

	svc := New(store, audit, rules, bus, scoring.New(log), selector, enqueuer, validator.New(), log, nil)
	return &fixture{svc: svc, store: store, audit: audit, rules: rules, bus: bus, enqueuer: enqueuer}
}

func testActor() ActionContext {
	return ActionContext{PerformedBy: uuid.New(), Source: "web", IPAddress: "10.0.0.7"}
}

// ---------------------------------------------------------------------------
// Create

func TestCreateValidation(t *testing.T) {
	fx := newFixture(newFakeStore(), &fakeRules{})

	cases := []struct {
		name string
		req  transport.CreateLeadRequest
	}{
		{"missing contact name", transport.CreateLeadRequest{Email: "a@b.example", Priority: "high"}},
		{"whitespace contact name", transport.CreateLeadRequest{ContactName: "   ", Email: "a@b.example", Priority: "high"}},
		{"invalid email", transport.CreateLeadRequest{ContactName: "Asha", Email: "nope", Priority: "high"}},
		{"unknown priority", transport.CreateLeadRequest{ContactName: "Asha", Email: "a@b.example", Priority: "critical"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Create(context.Background(), tc.req, testActor())
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Errorf("Create() err = %v, want validation error", err)
			}
		})
	}
	if len(fx.store.leads) != 0 {
		t.Errorf("invalid requests persisted %d leads", len(fx.store.leads))
	}
}

func TestCreatePersistsAuditsAndSchedulesScoring(t *testing.T) {
	fx := newFixture(newFakeStore(), &fakeRules{})
	actor := testActor()

	lead, err := fx.svc.Create(context.Background(), transport.CreateLeadRequest{
		ContactName:      "Asha Patil",
		Email:            "asha@agrico.example",
		Phone:            "9812345678",
		OrganizationName: "Agrico Farms",
		Priority:         "high",
		Source:           "webinar",
	}, actor)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if lead.Status != domain.StatusNew {
		t.Errorf("Status = %s, want new", lead.Status)
	}
	if lead.QualificationScore != 0 {
		t.Errorf("QualificationScore = %d, want 0", lead.QualificationScore)
	}
	if lead.Phone == nil || *lead.Phone != "+919812345678" {
		t.Errorf("Phone = %v, want normalized +919812345678", lead.Phone)
	}

	if len(fx.audit.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(fx.audit.entries))
	}
	entry := fx.audit.entries[0]
	if entry.Action != domain.AuditLeadCreated {
		t.Errorf("audit action = %s", entry.Action)
	}
	if len(entry.OldValues) != 0 {
		t.Errorf("creation audit old values = %v, want empty", entry.OldValues)
	}
	if entry.PerformedBy != actor.PerformedBy || entry.Context.IPAddress != "10.0.0.7" {
		t.Errorf("audit actor = %+v", entry)
	}

	if got := fx.bus.names(); len(got) != 1 || got[0] != (events.LeadCreated{}).EventName() {
		t.Errorf("published = %v", got)
	}
	if len(fx.enqueuer.enqueued) != 1 || fx.enqueuer.enqueued[0] != lead.ID {
		t.Errorf("rescore enqueued = %v", fx.enqueuer.enqueued)
	}
}

func TestCreateAutoAssignsViaRule(t *testing.T) {
	adminA, adminB := uuid.New(), uuid.New()
	rule := domain.AssignmentRule{
		ID: uuid.New(), RuleName: "sales desk", RuleType: domain.AssignmentRoundRobin,
		AdminPool: []uuid.UUID{adminA, adminB}, PriorityOrder: 1, IsActive: true,
	}
	fx := newFixture(newFakeStore(), &fakeRules{assignment: []domain.AssignmentRule{rule}})

	lead, err := fx.svc.Create(context.Background(), transport.CreateLeadRequest{
		ContactName: "Asha", Email: "asha@agrico.example", Priority: "medium",
	}, testActor())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if lead.AssignedTo == nil || *lead.AssignedTo != adminA {
		t.Fatalf("AssignedTo = %v, want %s", lead.AssignedTo, adminA)
	}
	if lead.Status != domain.StatusAssigned {
		t.Errorf("Status = %s, want assigned", lead.Status)
	}

	// created + assigned
	if len(fx.audit.entries) != 2 {
		t.Fatalf("got %d audit entries, want 2", len(fx.audit.entries))
	}
	assignedEntry := fx.audit.entries[1]
	if assignedEntry.Action != domain.AuditLeadAssigned {
		t.Errorf("second audit action = %s", assignedEntry.Action)
	}
	if assignedEntry.NewValues["rule_id"] != rule.ID.String() {
		t.Errorf("rule id not recorded: %v", assignedEntry.NewValues)
	}
}

func TestCreateSucceedsWhenAuditFails(t *testing.T) {
	fx := newFixture(newFakeStore(), &fakeRules{})
	fx.audit.err = errors.New("audit table gone")

	_, err := fx.svc.Create(context.Background(), transport.CreateLeadRequest{
		ContactName: "Asha", Email: "asha@agrico.example", Priority: "low",
	}, testActor())
	if err != nil {
		t.Fatalf("Create() error = %v, want nil despite audit failure", err)
	}
	if len(fx.store.leads) != 1 {
		t.Errorf("lead not persisted")
	}
}

// ---------------------------------------------------------------------------
// Update

func TestUpdateRejectsSystemManagedFields(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusNew, Priority: domain.PriorityMedium}
	fx := newFixture(newFakeStore(lead), &fakeRules{})

	status := "qualified"
	tenantID := uuid.New().String()

	cases := []struct {
		name string
		req  transport.UpdateLeadRequest
	}{
		{"direct status write", transport.UpdateLeadRequest{Status: &status}},
		{"converted tenant id", transport.UpdateLeadRequest{ConvertedTenantID: &tenantID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Update(context.Background(), lead.ID, tc.req, testActor())
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Errorf("Update() err = %v, want validation error", err)
			}
		})
	}
}

func TestUpdateNoopWhenNothingChanged(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusNew, Priority: domain.PriorityMedium}
	fx := newFixture(newFakeStore(lead), &fakeRules{})

	same := "Asha"
	got, err := fx.svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{ContactName: &same}, testActor())
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.ContactName != "Asha" {
		t.Errorf("ContactName = %q", got.ContactName)
	}
	if len(fx.audit.entries) != 0 || len(fx.bus.published) != 0 {
		t.Errorf("no-op update produced side effects: %d audits, %d events",
			len(fx.audit.entries), len(fx.bus.published))
	}
}

func TestUpdatePriorityTriggersRescore(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusContacted, Priority: domain.PriorityMedium}
	fx := newFixture(newFakeStore(lead), &fakeRules{})

	priority := "urgent"
	updated, err := fx.svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{Priority: &priority}, testActor())
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Priority != domain.PriorityUrgent {
		t.Errorf("Priority = %s", updated.Priority)
	}

	if len(fx.enqueuer.enqueued) != 1 {
		t.Errorf("rescore enqueued %d times, want 1", len(fx.enqueuer.enqueued))
	}
	if len(fx.audit.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(fx.audit.entries))
	}
	entry := fx.audit.entries[0]
	if entry.OldValues["priority"] != "medium" || entry.NewValues["priority"] != "urgent" {
		t.Errorf("audit diff = %v -> %v", entry.OldValues, entry.NewValues)
	}
}

// ---------------------------------------------------------------------------
// Assign

func TestAssignAdvancesNewLead(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusNew, Priority: domain.PriorityMedium}
	fx := newFixture(newFakeStore(lead), &fakeRules{})
	admin := uuid.New()

	updated, err := fx.svc.Assign(context.Background(), lead.ID, admin, "manual pick", testActor())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if updated.Status != domain.StatusAssigned {
		t.Errorf("Status = %s, want assigned", updated.Status)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != admin {
		t.Errorf("AssignedTo = %v", updated.AssignedTo)
	}
}

func TestAssignKeepsLaterStatus(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusContacted, Priority: domain.PriorityMedium}
	fx := newFixture(newFakeStore(lead), &fakeRules{})

	updated, err := fx.svc.Assign(context.Background(), lead.ID, uuid.New(), "reassignment", testActor())
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if updated.Status != domain.StatusContacted {
		t.Errorf("reassignment moved status to %s", updated.Status)
	}
}

func TestAssignUnknownLead(t *testing.T) {
	fx := newFixture(newFakeStore(), &fakeRules{})
	_, err := fx.svc.Assign(context.Background(), uuid.New(), uuid.New(), "", testActor())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("Assign() err = %v, want not found", err)
	}
}

// ---------------------------------------------------------------------------
// TransitionStatus

func TestTransitionStatus(t *testing.T) {
	cases := []struct {
		name     string
		from     domain.Status
		to       domain.Status
		notes    string
		wantKind apperr.Kind
	}{
		{"assigned to contacted", domain.StatusAssigned, domain.StatusContacted, "", apperr.KindUnknown},
		{"contacted to qualified", domain.StatusContacted, domain.StatusQualified, "", apperr.KindUnknown},
		{"rejection with reason", domain.StatusQualified, domain.StatusRejected, "budget withdrawn", apperr.KindUnknown},
		{"reactivate rejected", domain.StatusRejected, domain.StatusNew, "", apperr.KindUnknown},
		{"rejection without reason", domain.StatusContacted, domain.StatusRejected, "  ", apperr.KindValidation},
		{"direct conversion blocked", domain.StatusQualified, domain.StatusConverted, "", apperr.KindInvalidTransition},
		{"illegal skip", domain.StatusNew, domain.StatusQualified, "", apperr.KindInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
				Status: tc.from, Priority: domain.PriorityMedium}
			fx := newFixture(newFakeStore(lead), &fakeRules{})

			updated, err := fx.svc.TransitionStatus(context.Background(), lead.ID, tc.to, tc.notes, testActor())
			if tc.wantKind != apperr.KindUnknown {
				if apperr.GetKind(err) != tc.wantKind {
					t.Fatalf("TransitionStatus() err = %v, want kind %d", err, tc.wantKind)
				}
				if fx.store.leads[lead.ID].Status != tc.from {
					t.Errorf("failed transition mutated status to %s", fx.store.leads[lead.ID].Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransitionStatus() error = %v", err)
			}
			if updated.Status != tc.to {
				t.Errorf("Status = %s, want %s", updated.Status, tc.to)
			}
		})
	}
}

func TestTransitionToRejectedStoresReason(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusContacted, Priority: domain.PriorityMedium}
	fx := newFixture(newFakeStore(lead), &fakeRules{})

	updated, err := fx.svc.TransitionStatus(context.Background(), lead.ID, domain.StatusRejected, "no longer farming", testActor())
	if err != nil {
		t.Fatalf("TransitionStatus() error = %v", err)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != "no longer farming" {
		t.Errorf("RejectionReason = %v", updated.RejectionReason)
	}

	if len(fx.audit.entries) != 1 {
		t.Fatalf("got %d audit entries", len(fx.audit.entries))
	}
	if fx.audit.entries[0].NewValues["rejection_reason"] != "no longer farming" {
		t.Errorf("audit new values = %v", fx.audit.entries[0].NewValues)
	}
}

// ---------------------------------------------------------------------------
// CompleteConversion and scoring

func TestCompleteConversion(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusQualified, Priority: domain.PriorityHigh}
	fx := newFixture(newFakeStore(lead), &fakeRules{})
	tenantID := uuid.New()

	updated, err := fx.svc.CompleteConversion(context.Background(), lead.ID, tenantID, "agrico-farms", testActor())
	if err != nil {
		t.Fatalf("CompleteConversion() error = %v", err)
	}
	if updated.Status != domain.StatusConverted {
		t.Errorf("Status = %s", updated.Status)
	}
	if updated.ConvertedTenantID == nil || *updated.ConvertedTenantID != tenantID {
		t.Errorf("ConvertedTenantID = %v", updated.ConvertedTenantID)
	}
	if got := fx.bus.names(); len(got) != 1 || got[0] != (events.LeadConverted{}).EventName() {
		t.Errorf("published = %v", got)
	}
}

func TestRecomputeScorePersistsAndAudits(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusQualified, Priority: domain.PriorityUrgent,
		CreatedAt: time.Now().Add(-time.Hour)}
	fx := newFixture(newFakeStore(lead), &fakeRules{})

	if err := fx.svc.RecomputeScore(context.Background(), lead.ID); err != nil {
		t.Fatalf("RecomputeScore() error = %v", err)
	}

	stored := fx.store.leads[lead.ID]
	// urgent 25 + freshness 20 + qualified 25 = 70
	if stored.QualificationScore != 70 {
		t.Errorf("QualificationScore = %d, want 70", stored.QualificationScore)
	}

	if len(fx.audit.entries) != 1 || fx.audit.entries[0].Action != domain.AuditLeadScored {
		t.Fatalf("audit entries = %+v", fx.audit.entries)
	}
	if fx.audit.entries[0].Source != "system" {
		t.Errorf("scoring audit source = %q, want system", fx.audit.entries[0].Source)
	}
}

func TestSetAIScoreKeepsQualificationScore(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), ContactName: "Asha", Email: "a@b.example",
		Status: domain.StatusContacted, Priority: domain.PriorityMedium, QualificationScore: 55}
	fx := newFixture(newFakeStore(lead), &fakeRules{})

	if err := fx.svc.SetAIScore(context.Background(), lead.ID, 82); err != nil {
		t.Fatalf("SetAIScore() error = %v", err)
	}
	stored := fx.store.leads[lead.ID]
	if stored.QualificationScore != 55 {
		t.Errorf("QualificationScore = %d, want untouched 55", stored.QualificationScore)
	}
	if stored.AIScore == nil || *stored.AIScore != 82 {
		t.Errorf("AIScore = %v, want 82", stored.AIScore)
	}
}
