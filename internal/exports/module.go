package exports

import (
	"admin_console_backend/internal/adapters/storage"
	apphttp "admin_console_backend/internal/http"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/logger"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module.
func NewModule(leads ports.LeadStore, store storage.ObjectStore, bucket string, log *logger.Logger) *Module {
	svc := NewService(leads, store, bucket, log)
	return &Module{handler: NewHandler(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes. Exports carry the full lead book, so
// they are admin-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.POST("/exports/leads", m.handler.ExportLeads)
}

var _ apphttp.Module = (*Module)(nil)
