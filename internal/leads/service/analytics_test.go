package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"admin_console_backend/internal/leads/assignment"
	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/internal/leads/scoring"
	"admin_console_backend/internal/leads/transport"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/validator"
)

func sampleLeads() []domain.Lead {
	return []domain.Lead{
		{ID: uuid.New(), Status: domain.StatusNew, Priority: domain.PriorityHigh, Source: "webinar", QualificationScore: 40},
		{ID: uuid.New(), Status: domain.StatusNew, Priority: domain.PriorityLow, Source: "webinar", QualificationScore: 20},
		{ID: uuid.New(), Status: domain.StatusQualified, Priority: domain.PriorityHigh, Source: "referral", QualificationScore: 80},
		{ID: uuid.New(), Status: domain.StatusConverted, Priority: domain.PriorityUrgent, QualificationScore: 100},
	}
}

func TestDeriveAnalytics(t *testing.T) {
	got := deriveAnalytics(sampleLeads(), ports.ConversionStats{ConvertedCount: 1, AvgDaysToConversion: 3.5})

	if got.TotalLeads != 4 {
		t.Errorf("TotalLeads = %d, want 4", got.TotalLeads)
	}
	if got.CountsByStatus["new"] != 2 || got.CountsByStatus["qualified"] != 1 || got.CountsByStatus["converted"] != 1 {
		t.Errorf("CountsByStatus = %v", got.CountsByStatus)
	}
	if got.CountsByPriority["high"] != 2 {
		t.Errorf("CountsByPriority = %v", got.CountsByPriority)
	}
	// Leads without a source are not counted as an empty-string bucket.
	if len(got.CountsBySource) != 2 || got.CountsBySource["webinar"] != 2 || got.CountsBySource["referral"] != 1 {
		t.Errorf("CountsBySource = %v", got.CountsBySource)
	}
	if got.AverageScore != 60 {
		t.Errorf("AverageScore = %v, want 60", got.AverageScore)
	}
	if got.ConversionRate != 0.25 {
		t.Errorf("ConversionRate = %v, want 0.25", got.ConversionRate)
	}
	if got.AvgDaysToConversion != 3.5 {
		t.Errorf("AvgDaysToConversion = %v", got.AvgDaysToConversion)
	}
}

func TestDeriveAnalyticsEmpty(t *testing.T) {
	got := deriveAnalytics(nil, ports.ConversionStats{})
	if got.TotalLeads != 0 || got.AverageScore != 0 || got.ConversionRate != 0 {
		t.Errorf("empty analytics = %+v", got)
	}
}

func newCachedService(t *testing.T, store *fakeStore) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.New("test")
	cache := NewAnalyticsCache(client, time.Minute, log)
	svc := New(store, &fakeAudit{}, &fakeRules{}, &fakeBus{},
		scoring.New(log), assignment.New(&fakeAdminDirectory{}, log), &fakeEnqueuer{}, validator.New(), log, cache)
	return svc, mr
}

func TestGetLeadsWithAnalyticsCaches(t *testing.T) {
	store := newFakeStore(sampleLeads()...)
	svc, mr := newCachedService(t, store)
	ctx := context.Background()

	first, err := svc.GetLeadsWithAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetLeadsWithAnalytics() error = %v", err)
	}
	if first.Analytics.TotalLeads != 4 {
		t.Fatalf("TotalLeads = %d", first.Analytics.TotalLeads)
	}
	if !mr.Exists("leads:analytics") {
		t.Fatalf("analytics view was not cached")
	}

	// A direct store write does not show up until the cache expires or a
	// service mutation invalidates it.
	extra := domain.Lead{ID: uuid.New(), Status: domain.StatusNew, Priority: domain.PriorityLow}
	store.leads[extra.ID] = extra

	second, err := svc.GetLeadsWithAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetLeadsWithAnalytics() error = %v", err)
	}
	if second.Analytics.TotalLeads != 4 {
		t.Errorf("cached TotalLeads = %d, want stale 4", second.Analytics.TotalLeads)
	}

	mr.FastForward(2 * time.Minute)

	third, err := svc.GetLeadsWithAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetLeadsWithAnalytics() error = %v", err)
	}
	if third.Analytics.TotalLeads != 5 {
		t.Errorf("TotalLeads after expiry = %d, want 5", third.Analytics.TotalLeads)
	}
}

func TestMutationInvalidatesAnalyticsCache(t *testing.T) {
	store := newFakeStore(sampleLeads()...)
	svc, mr := newCachedService(t, store)
	ctx := context.Background()

	if _, err := svc.GetLeadsWithAnalytics(ctx); err != nil {
		t.Fatalf("GetLeadsWithAnalytics() error = %v", err)
	}
	if !mr.Exists("leads:analytics") {
		t.Fatalf("analytics view was not cached")
	}

	_, err := svc.Create(ctx, transport.CreateLeadRequest{
		ContactName: "Asha", Email: "asha@agrico.example", Priority: "medium",
	}, ActionContext{Source: "web"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if mr.Exists("leads:analytics") {
		t.Errorf("cache not invalidated by lead creation")
	}

	fresh, err := svc.GetLeadsWithAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetLeadsWithAnalytics() error = %v", err)
	}
	if fresh.Analytics.TotalLeads != 5 {
		t.Errorf("TotalLeads = %d, want 5", fresh.Analytics.TotalLeads)
	}
}

func TestAnalyticsWithoutRedis(t *testing.T) {
	store := newFakeStore(sampleLeads()...)
	fx := newFixture(store, &fakeRules{})

	got, err := fx.svc.GetLeadsWithAnalytics(context.Background())
	if err != nil {
		t.Fatalf("GetLeadsWithAnalytics() error = %v", err)
	}
	if got.Analytics.TotalLeads != 4 {
		t.Errorf("TotalLeads = %d, want 4", got.Analytics.TotalLeads)
	}
}
