package service

import (
	"context"
	"encoding/json"
	"time"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/internal/leads/transport"
	"admin_console_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const analyticsCacheKey = "leads:analytics"

// AnalyticsCache is a short-TTL redis cache in front of the analytics view.
// Purely an optimization: every method degrades to a no-op when redis is
// unreachable.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewAnalyticsCache creates the cache. client may be nil to disable caching.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *AnalyticsCache {
	return &AnalyticsCache{client: client, ttl: ttl, log: log}
}

func (c *AnalyticsCache) get(ctx context.Context) (*transport.LeadsWithAnalyticsResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, analyticsCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var cached transport.LeadsWithAnalyticsResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

func (c *AnalyticsCache) set(ctx context.Context, value transport.LeadsWithAnalyticsResponse) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, analyticsCacheKey, raw, c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warn("analytics cache write failed", "error", err)
	}
}

func (c *AnalyticsCache) invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, analyticsCacheKey).Err(); err != nil && c.log != nil {
		c.log.Warn("analytics cache invalidation failed", "error", err)
	}
}

func (s *Service) invalidateAnalytics(ctx context.Context) {
	s.cache.invalidate(ctx)
}

// GetLeadsWithAnalytics returns the lead book together with its derived
// analytics view. Read-only; the list and the store-side conversion
// aggregates are fetched concurrently.
func (s *Service) GetLeadsWithAnalytics(ctx context.Context) (transport.LeadsWithAnalyticsResponse, error) {
	if cached, ok := s.cache.get(ctx); ok {
		return *cached, nil
	}

	var (
		leads []domain.Lead
		stats ports.ConversionStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = s.store.List(gctx, ports.ListLeadsFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.store.ConversionStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.LeadsWithAnalyticsResponse{}, err
	}

	response := transport.LeadsWithAnalyticsResponse{
		Leads:     make([]transport.LeadResponse, 0, len(leads)),
		Analytics: deriveAnalytics(leads, stats),
	}
	for _, lead := range leads {
		response.Leads = append(response.Leads, transport.ToLeadResponse(lead))
	}

	s.cache.set(ctx, response)
	return response, nil
}

func deriveAnalytics(leads []domain.Lead, stats ports.ConversionStats) transport.Analytics {
	analytics := transport.Analytics{
		TotalLeads:          len(leads),
		CountsByStatus:      map[string]int{},
		CountsByPriority:    map[string]int{},
		CountsBySource:      map[string]int{},
		AvgDaysToConversion: stats.AvgDaysToConversion,
	}

	var scoreSum int
	for _, lead := range leads {
		analytics.CountsByStatus[string(lead.Status)]++
		analytics.CountsByPriority[string(lead.Priority)]++
		if lead.Source != "" {
			analytics.CountsBySource[lead.Source]++
		}
		scoreSum += lead.QualificationScore
	}

	if len(leads) > 0 {
		analytics.AverageScore = float64(scoreSum) / float64(len(leads))
		analytics.ConversionRate = float64(stats.ConvertedCount) / float64(len(leads))
	}

	return analytics
}
