// Package auth provides the authentication bounded context module.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"admin_console_backend/internal/auth/handler"
	"admin_console_backend/internal/auth/repository"
	"admin_console_backend/internal/auth/service"
	apphttp "admin_console_backend/internal/http"
	identityrepo "admin_console_backend/internal/identity/repository"
	"admin_console_backend/platform/config"
	"admin_console_backend/platform/logger"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module. Admin accounts live in
// the identity repository; auth only owns token storage.
func NewModule(pool *pgxpool.Pool, users *identityrepo.Repository, cfg config.AuthServiceConfig, mail service.ResetEmailSender, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(users, repo, cfg, mail, log)
	h := handler.New(svc)
	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes. Public auth endpoints get the stricter
// rate limiter; password change requires an authenticated session.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.POST("/users/me/password", m.handler.ChangePassword)
}

var _ apphttp.Module = (*Module)(nil)
