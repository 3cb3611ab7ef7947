package adapters

import (
	"context"

	"github.com/google/uuid"

	identityrepo "admin_console_backend/internal/identity/repository"
	leadsrepo "admin_console_backend/internal/leads/repository"
	"admin_console_backend/internal/leads/ports"
)

// AdminDirectoryAdapter satisfies ports.AdminDirectory by combining the
// identity module's admin pool with the leads module's assignment counts.
type AdminDirectoryAdapter struct {
	identity *identityrepo.Repository
	leads    *leadsrepo.Repository
}

// NewAdminDirectoryAdapter creates the assignment directory adapter.
func NewAdminDirectoryAdapter(identity *identityrepo.Repository, leads *leadsrepo.Repository) *AdminDirectoryAdapter {
	return &AdminDirectoryAdapter{identity: identity, leads: leads}
}

func (a *AdminDirectoryAdapter) ListActiveAdmins(ctx context.Context) ([]ports.AdminInfo, error) {
	return a.identity.ListActiveAdmins(ctx)
}

func (a *AdminDirectoryAdapter) CountOpenAssignments(ctx context.Context, adminID uuid.UUID) (int, error) {
	return a.leads.CountOpenAssignments(ctx, adminID)
}

func (a *AdminDirectoryAdapter) CountAssignmentsForRule(ctx context.Context, ruleID uuid.UUID) (int, error) {
	return a.leads.CountAssignmentsForRule(ctx, ruleID)
}
