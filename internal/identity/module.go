// Package identity provides the admin user bounded context module.
package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"admin_console_backend/internal/events"
	apphttp "admin_console_backend/internal/http"
	"admin_console_backend/internal/identity/handler"
	"admin_console_backend/internal/identity/repository"
	"admin_console_backend/internal/identity/service"
	"admin_console_backend/platform/logger"
)

// Module is the identity bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the identity module. invites may be nil
// when email is disabled.
func NewModule(pool *pgxpool.Pool, bus events.Bus, invites service.InviteEmailSender, loginURL string, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, invites, loginURL, log)
	h := handler.New(svc)
	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "identity"
}

// Service returns the service for the conversion workflow (UserProvisioner).
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the admin user store for the auth module and the
// assignment directory adapter.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts admin user management routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	grp := ctx.Admin.Group("/users")
	{
		grp.GET("", m.handler.List)
		grp.GET("/:id", m.handler.Get)
		grp.POST("", m.handler.Create)
		grp.PUT("/:id", m.handler.Update)
		grp.PUT("/:id/status", m.handler.ChangeStatus)
		grp.POST("/:id/reset-credentials", m.handler.ResetCredentials)
	}
}
