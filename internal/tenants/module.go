// Package tenants provides the tenant administration bounded context module.
package tenants

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "admin_console_backend/internal/http"
	"admin_console_backend/internal/tenants/handler"
	"admin_console_backend/internal/tenants/repository"
	"admin_console_backend/internal/tenants/service"
	"admin_console_backend/platform/logger"
)

// Module is the tenants bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the tenants module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)
	return &Module{handler: h, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tenants"
}

// TenantStore returns the repository for the conversion workflow to consume.
func (m *Module) TenantStore() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts tenant administration routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	grp := ctx.Admin.Group("/tenants")
	{
		grp.GET("", m.handler.List)
		grp.GET("/:id", m.handler.Get)
		grp.PUT("/:id/plan", m.handler.ChangePlan)
		grp.PUT("/:id/status", m.handler.ChangeStatus)
	}
}
