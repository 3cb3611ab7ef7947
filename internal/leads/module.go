// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"admin_console_backend/internal/events"
	apphttp "admin_console_backend/internal/http"
	"admin_console_backend/internal/leads/advisor"
	"admin_console_backend/internal/leads/assignment"
	"admin_console_backend/internal/leads/conversion"
	"admin_console_backend/internal/leads/handler"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/internal/leads/repository"
	"admin_console_backend/internal/leads/scoring"
	"admin_console_backend/internal/leads/service"
	"admin_console_backend/platform/config"
	platformevents "admin_console_backend/platform/events"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/validator"
)

// Deps carries the cross-module collaborators the leads module consumes.
// Rescorer and Redis are optional; leave them nil to run without the
// background worker or the analytics cache.
type Deps struct {
	Rules       ports.RuleStore
	Tenants     ports.TenantStore
	Provisioner ports.UserProvisioner
	Email       ports.WelcomeEmailSender
	Admins      ports.AdminDirectory
	Rescorer    service.RescoreEnqueuer
	Redis       *redis.Client
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	service   *service.Service
	converter *conversion.Orchestrator
	repo      *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus platformevents.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger, deps Deps) (*Module, error) {
	repo := repository.New(pool)

	engine := scoring.New(log)
	selector := assignment.New(deps.Admins, log)
	cache := service.NewAnalyticsCache(deps.Redis, cfg.GetAnalyticsCacheTTL(), log)

	svc := service.New(repo, repo, deps.Rules, eventBus, engine, selector, deps.Rescorer, val, log, cache)

	converter := conversion.New(svc, deps.Tenants, deps.Provisioner, deps.Email, eventBus, val, log, cfg.GetAppBaseURL()+"/sign-in")

	if cfg.IsAdvisorEnabled() {
		adv, err := advisor.New(context.Background(), cfg.GetGeminiAPIKey(), log)
		if err != nil {
			return nil, err
		}
		subscribeAdvisor(eventBus, adv, svc, log)
	}

	h := handler.New(svc, converter, repo)

	return &Module{
		handler:   h,
		service:   svc,
		converter: converter,
		repo:      repo,
	}, nil
}

// subscribeAdvisor scores each new lead with the Gemini advisor in the
// background. Failures are logged and never block lead creation.
func subscribeAdvisor(eventBus platformevents.Bus, adv *advisor.Advisor, svc *service.Service, log *logger.Logger) {
	eventBus.Subscribe(events.LeadCreated{}.EventName(), platformevents.HandlerFunc(func(ctx context.Context, event platformevents.Event) error {
		e, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}

		go func() {
			lead, err := svc.GetByID(context.Background(), e.LeadID)
			if err != nil {
				log.Error("advisor lead lookup failed", "error", err, "leadId", e.LeadID)
				return
			}
			score, err := adv.Score(context.Background(), lead)
			if err != nil {
				log.Error("advisor scoring failed", "error", err, "leadId", e.LeadID)
				return
			}
			if err := svc.SetAIScore(context.Background(), e.LeadID, score); err != nil {
				log.Error("storing advisor score failed", "error", err, "leadId", e.LeadID)
			}
		}()

		return nil
	}))
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead lifecycle service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the leads repository for external use.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
// Reading and working leads requires authentication; conversion and manual
// rescoring are admin-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	grp := ctx.Protected.Group("/leads")
	{
		grp.POST("", m.handler.Create)
		grp.GET("", m.handler.List)
		grp.GET("/analytics", m.handler.ListWithAnalytics)
		grp.GET("/:id", m.handler.Get)
		grp.PATCH("/:id", m.handler.Update)
		grp.POST("/:id/assign", m.handler.Assign)
		grp.POST("/:id/status", m.handler.TransitionStatus)
		grp.GET("/:id/audit-log", m.handler.AuditLog)
	}

	admin := ctx.Admin.Group("/leads")
	{
		admin.POST("/:id/convert", m.handler.Convert)
		admin.POST("/:id/rescore", m.handler.Rescore)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
