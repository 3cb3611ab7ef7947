package conversion

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
	"admin_console_backend/internal/leads/service"
	"admin_console_backend/internal/leads/transport"
	"admin_console_backend/platform/apperr"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/validator"
)

// ---------------------------------------------------------------------------
// fakes

type fakeLeadStore struct {
	leads map[uuid.UUID]domain.Lead
}

func (f *fakeLeadStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeLeadStore) Insert(context.Context, ports.CreateLeadParams) (domain.Lead, error) {
	return domain.Lead{}, errors.New("not used")
}

func (f *fakeLeadStore) Update(context.Context, uuid.UUID, ports.UpdateLeadPatch) (domain.Lead, error) {
	return domain.Lead{}, errors.New("not used")
}

func (f *fakeLeadStore) List(context.Context, ports.ListLeadsFilter) ([]domain.Lead, error) {
	return nil, nil
}

func (f *fakeLeadStore) SetStatus(context.Context, uuid.UUID, domain.Status, *string) (domain.Lead, error) {
	return domain.Lead{}, errors.New("not used")
}

func (f *fakeLeadStore) SetAssignee(context.Context, uuid.UUID, uuid.UUID, time.Time, domain.Status) (domain.Lead, error) {
	return domain.Lead{}, errors.New("not used")
}

func (f *fakeLeadStore) SetScores(_ context.Context, id uuid.UUID, score int, aiScore *int) error {
	lead := f.leads[id]
	lead.QualificationScore = score
	lead.AIScore = aiScore
	f.leads[id] = lead
	return nil
}

func (f *fakeLeadStore) MarkConverted(_ context.Context, id, tenantID uuid.UUID, convertedAt time.Time) (domain.Lead, error) {
	lead := f.leads[id]
	lead.Status = domain.StatusConverted
	lead.ConvertedTenantID = &tenantID
	lead.ConvertedAt = &convertedAt
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeLeadStore) ConversionStats(context.Context) (ports.ConversionStats, error) {
	return ports.ConversionStats{}, nil
}

type fakeAudit struct{}

func (fakeAudit) Append(context.Context, domain.AuditEntry) error { return nil }

type fakeRules struct{}

func (fakeRules) ListActiveScoringRules(context.Context) ([]domain.ScoringRule, error) {
	return nil, nil
}

func (fakeRules) ListActiveAssignmentRules(context.Context) ([]domain.AssignmentRule, error) {
	return nil, nil
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

type fakeEnqueuer struct{}

func (fakeEnqueuer) EnqueueRescore(context.Context, uuid.UUID) error { return nil }

type fakeTenants struct {
	tenants    map[uuid.UUID]ports.TenantRef
	takenSlugs map[string]bool
	createErr  error
	created    []ports.CreateTenantParams
}

func newFakeTenants() *fakeTenants {
	return &fakeTenants{tenants: map[uuid.UUID]ports.TenantRef{}, takenSlugs: map[string]bool{}}
}

func (f *fakeTenants) Create(_ context.Context, params ports.CreateTenantParams) (ports.TenantRef, error) {
	if f.createErr != nil {
		return ports.TenantRef{}, f.createErr
	}
	f.created = append(f.created, params)
	ref := ports.TenantRef{ID: uuid.New(), Slug: params.Slug}
	f.tenants[ref.ID] = ref
	f.takenSlugs[params.Slug] = true
	return ref, nil
}

func (f *fakeTenants) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	return f.takenSlugs[slug], nil
}

func (f *fakeTenants) GetByID(_ context.Context, id uuid.UUID) (ports.TenantRef, error) {
	ref, ok := f.tenants[id]
	if !ok {
		return ports.TenantRef{}, errors.New("tenant not found")
	}
	return ref, nil
}

type fakeProvisioner struct {
	user      ports.ProvisionedUser
	findErr   error
	linkErr   error
	linkCalls int
}

func (f *fakeProvisioner) FindOrCreateAdminUser(context.Context, string, string) (ports.ProvisionedUser, error) {
	if f.findErr != nil {
		return ports.ProvisionedUser{}, f.findErr
	}
	return f.user, nil
}

func (f *fakeProvisioner) LinkUserToTenant(_ context.Context, _, _ uuid.UUID, role string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	if role != TenantAdminRole {
		return errors.New("unexpected role " + role)
	}
	f.linkCalls++
	return nil
}

type fakeEmail struct {
	sent    int
	lastPwd string
	err     error
}

func (f *fakeEmail) SendTenantWelcomeEmail(_ context.Context, _, _, _, tempPassword string) error {
	if f.err != nil {
		return f.err
	}
	f.sent++
	f.lastPwd = tempPassword
	return nil
}

type fixture struct {
	orch        *Orchestrator
	store       *fakeLeadStore
	tenants     *fakeTenants
	provisioner *fakeProvisioner
	email       *fakeEmail
	bus         *fakeBus
}

func newFixture(lead domain.Lead) *fixture {
	log := logger.New("test")
	val := validator.New()
	bus := &fakeBus{}
	store := &fakeLeadStore{leads: map[uuid.UUID]domain.Lead{lead.ID: lead}}

	leadSvc := service.New(store, fakeAudit{}, fakeRules{}, bus,
		scoring.New(log), assignment.New(nopDirectory{}, log), fakeEnqueuer{}, val, log, nil)

	tenants := newFakeTenants()
	provisioner := &fakeProvisioner{user: ports.ProvisionedUser{UserID: uuid.New(), IsNew: true, TempPassword: "Temp#1234"}}
	email := &fakeEmail{}

	orch := New(leadSvc, tenants, provisioner, email, bus, val, log, "https://console.example.com/sign-in")
	return &fixture{orch: orch, store: store, tenants: tenants, provisioner: provisioner, email: email, bus: bus}
}

type nopDirectory struct{}

func (nopDirectory) ListActiveAdmins(context.Context) ([]ports.AdminInfo, error) { return nil, nil }
func (nopDirectory) CountOpenAssignments(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}
func (nopDirectory) CountAssignmentsForRule(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

func qualifiedLead() domain.Lead {
	return domain.Lead{
		ID:          uuid.New(),
		ContactName: "Asha Patil",
		Email:       "asha@agrico.example",
		Status:      domain.StatusQualified,
		Priority:    domain.PriorityHigh,
	}
}

func validRequest() transport.ConvertLeadRequest {
	return transport.ConvertLeadRequest{
		TenantName:       "Agrico Farms",
		TenantSlug:       "agrico-farms",
		SubscriptionPlan: "Kisan_Basic",
		AdminName:        "Asha Patil",
		AdminEmail:       "asha@agrico.example",
	}
}

// ---------------------------------------------------------------------------
// tests

func TestConvertHappyPath(t *testing.T) {
	lead := qualifiedLead()
	fx := newFixture(lead)

	resp, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{Source: "web"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if !resp.Success || resp.TenantSlug != "agrico-farms" {
		t.Errorf("response = %+v", resp)
	}
	if resp.TempPassword != "Temp#1234" {
		t.Errorf("TempPassword = %q, want the freshly generated one", resp.TempPassword)
	}
	if !resp.UserTenantCreated || !resp.EmailSent || resp.IsRecovery {
		t.Errorf("flags = %+v", resp)
	}

	stored := fx.store.leads[lead.ID]
	if stored.Status != domain.StatusConverted {
		t.Errorf("lead status = %s, want converted", stored.Status)
	}
	if stored.ConvertedTenantID == nil || *stored.ConvertedTenantID != resp.TenantID {
		t.Errorf("ConvertedTenantID = %v, want %s", stored.ConvertedTenantID, resp.TenantID)
	}
	if fx.provisioner.linkCalls != 1 {
		t.Errorf("linkCalls = %d", fx.provisioner.linkCalls)
	}
	if fx.email.lastPwd != "Temp#1234" {
		t.Errorf("welcome email password = %q", fx.email.lastPwd)
	}
}

func TestConvertExistingUserGetsNoTempPassword(t *testing.T) {
	lead := qualifiedLead()
	fx := newFixture(lead)
	fx.provisioner.user = ports.ProvisionedUser{UserID: uuid.New(), IsNew: false}

	resp, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if resp.TempPassword != "" {
		t.Errorf("TempPassword = %q, want empty for an existing user", resp.TempPassword)
	}
	if !resp.UserTenantCreated {
		t.Errorf("UserTenantCreated = false, want true")
	}
}

func TestConvertRequiresQualifiedStatus(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusNew, domain.StatusAssigned, domain.StatusContacted, domain.StatusRejected} {
		lead := qualifiedLead()
		lead.Status = status
		fx := newFixture(lead)

		_, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
		if apperr.GetKind(err) != apperr.KindPrecondition {
			t.Errorf("status %s: err = %v, want precondition", status, err)
		}
		if len(fx.tenants.created) != 0 {
			t.Errorf("status %s: tenant was created", status)
		}
	}
}

func TestConvertRejectsBadSlug(t *testing.T) {
	for _, slug := range []string{"", "Agrico Farms", "agrico_farms", "AGRICO"} {
		lead := qualifiedLead()
		fx := newFixture(lead)
		req := validRequest()
		req.TenantSlug = slug

		_, err := fx.orch.Convert(context.Background(), lead.ID, req, service.ActionContext{})
		if apperr.GetKind(err) != apperr.KindValidation {
			t.Errorf("slug %q: err = %v, want validation", slug, err)
		}
	}
}

func TestConvertSlugConflictHasNoSideEffects(t *testing.T) {
	lead := qualifiedLead()
	fx := newFixture(lead)
	fx.tenants.takenSlugs["agrico-farms"] = true

	_, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
	if apperr.GetKind(err) != apperr.KindSlugConflict {
		t.Fatalf("Convert() err = %v, want slug conflict", err)
	}

	if len(fx.tenants.created) != 0 {
		t.Errorf("tenant created despite slug conflict")
	}
	if fx.store.leads[lead.ID].Status != domain.StatusQualified {
		t.Errorf("lead status changed to %s", fx.store.leads[lead.ID].Status)
	}
	if fx.email.sent != 0 {
		t.Errorf("welcome email sent despite slug conflict")
	}
}

func TestConvertUserSetupFailureKeepsTenant(t *testing.T) {
	lead := qualifiedLead()
	fx := newFixture(lead)
	fx.provisioner.findErr = errors.New("identity store down")

	_, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
	if apperr.GetKind(err) != apperr.KindUserSetup {
		t.Fatalf("Convert() err = %v, want user setup error", err)
	}

	// The tenant survives for manual reconciliation; the lead is untouched.
	if len(fx.tenants.created) != 1 {
		t.Errorf("created tenants = %d, want 1", len(fx.tenants.created))
	}
	if fx.store.leads[lead.ID].Status != domain.StatusQualified {
		t.Errorf("lead status = %s, want still qualified", fx.store.leads[lead.ID].Status)
	}
}

func TestConvertEmailFailureIsNotFatal(t *testing.T) {
	lead := qualifiedLead()
	fx := newFixture(lead)
	fx.email.err = errors.New("smtp refused")

	resp, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if resp.EmailSent {
		t.Errorf("EmailSent = true, want false after smtp failure")
	}
	if fx.store.leads[lead.ID].Status != domain.StatusConverted {
		t.Errorf("lead not converted after email failure")
	}
}

func TestConvertAlreadyConvertedRecovers(t *testing.T) {
	lead := qualifiedLead()
	fx := newFixture(lead)

	first, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
	if err != nil {
		t.Fatalf("first Convert() error = %v", err)
	}

	second, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
	if err != nil {
		t.Fatalf("second Convert() error = %v", err)
	}

	if !second.IsRecovery {
		t.Errorf("IsRecovery = false on duplicate conversion")
	}
	if second.TenantID != first.TenantID {
		t.Errorf("recovery tenant = %s, want %s", second.TenantID, first.TenantID)
	}
	if second.TempPassword != "" {
		t.Errorf("recovery resurfaced a temp password: %q", second.TempPassword)
	}
	if len(fx.tenants.created) != 1 {
		t.Errorf("duplicate conversion created %d tenants, want 1", len(fx.tenants.created))
	}
}

func TestConvertRecoveryMissingTenant(t *testing.T) {
	tenantID := uuid.New()
	lead := qualifiedLead()
	lead.Status = domain.StatusConverted
	lead.ConvertedTenantID = &tenantID
	fx := newFixture(lead)

	_, err := fx.orch.Convert(context.Background(), lead.ID, validRequest(), service.ActionContext{})
	if apperr.GetKind(err) != apperr.KindDatabase {
		t.Errorf("Convert() err = %v, want database error for missing tenant", err)
	}
}
