// Package rules provides the rule configuration bounded context module.
package rules

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "admin_console_backend/internal/http"
	"admin_console_backend/internal/rules/handler"
	"admin_console_backend/internal/rules/repository"
	"admin_console_backend/internal/rules/service"
	"admin_console_backend/platform/logger"
)

// Module is the rules bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the rules module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)
	return &Module{handler: h, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "rules"
}

// RuleStore returns the repository for the leads module to consume.
func (m *Module) RuleStore() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts rule management routes. All rule configuration is
// admin-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	grp := ctx.Admin.Group("/rules")
	{
		grp.GET("/scoring", m.handler.ListScoringRules)
		grp.POST("/scoring", m.handler.CreateScoringRule)
		grp.PUT("/scoring/:id", m.handler.UpdateScoringRule)
		grp.DELETE("/scoring/:id", m.handler.DeleteScoringRule)

		grp.GET("/assignment", m.handler.ListAssignmentRules)
		grp.POST("/assignment", m.handler.CreateAssignmentRule)
		grp.PUT("/assignment/:id", m.handler.UpdateAssignmentRule)
		grp.DELETE("/assignment/:id", m.handler.DeleteAssignmentRule)
	}
}
