// Package service implements tenant administration. Tenant creation itself
// happens through the lead conversion workflow; this service covers the
// read and maintenance side.
package service

import (
	"context"

	"github.com/google/uuid"

	"admin_console_backend/internal/tenants/domain"
	"admin_console_backend/internal/tenants/repository"
	"admin_console_backend/platform/logger"
)

const defaultListLimit = 50

// Service manages existing tenants.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new tenants service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Get returns a tenant by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	return s.repo.Get(ctx, id)
}

// List returns tenants newest first with pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Tenant, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, limit, offset)
}

// ChangePlan moves a tenant to a different subscription plan.
func (s *Service) ChangePlan(ctx context.Context, id uuid.UUID, plan string) (domain.Tenant, error) {
	if err := s.repo.SetPlan(ctx, id, plan); err != nil {
		return domain.Tenant{}, err
	}
	s.log.Info("tenant plan changed", "tenant_id", id, "plan", plan)
	return s.repo.Get(ctx, id)
}

// ChangeStatus suspends or reactivates a tenant.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) (domain.Tenant, error) {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return domain.Tenant{}, err
	}
	s.log.Info("tenant status changed", "tenant_id", id, "status", status)
	return s.repo.Get(ctx, id)
}
