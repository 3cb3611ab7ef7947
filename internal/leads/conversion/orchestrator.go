// Package conversion implements the qualified-lead→tenant workflow.
//
// The workflow is forward-only: once a step has committed, later failures do
// not roll it back. Reversing a created tenant or user is more error-prone
// than leaving the partial state for manual cleanup, so each step has its own
// failure domain and a typed error kind.
package conversion

import (
	"context"

	"admin_console_backend/internal/events"
	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	leadservice "admin_console_backend/internal/leads/service"
	"admin_console_backend/internal/leads/transport"
	"admin_console_backend/platform/apperr"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/validator"

	"github.com/google/uuid"
)

// TenantAdminRole is the role granted to the admin user of a converted tenant.
const TenantAdminRole = "tenant_admin"

// Orchestrator runs the multi-step conversion workflow.
type Orchestrator struct {
	leads       *leadservice.Service
	tenants     ports.TenantStore
	provisioner ports.UserProvisioner
	email       ports.WelcomeEmailSender
	bus         events.Bus
	val         *validator.Validator
	log         *logger.Logger
	loginURL    string
}

// New creates the conversion orchestrator. loginURL is included in the
// welcome email.
func New(
	leads *leadservice.Service,
	tenants ports.TenantStore,
	provisioner ports.UserProvisioner,
	email ports.WelcomeEmailSender,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
	loginURL string,
) *Orchestrator {
	return &Orchestrator{
		leads:       leads,
		tenants:     tenants,
		provisioner: provisioner,
		email:       email,
		bus:         bus,
		val:         val,
		log:         log,
		loginURL:    loginURL,
	}
}

// Convert provisions a tenant and its admin user from a qualified lead and
// marks the lead converted.
//
// Calling Convert again for a lead that is already converted is not an
// error: the workflow verifies the recorded tenant still exists and reports
// success with IsRecovery=true, so a duplicate click or retried request
// self-heals instead of creating a second tenant.
func (o *Orchestrator) Convert(ctx context.Context, leadID uuid.UUID, req transport.ConvertLeadRequest, actor leadservice.ActionContext) (transport.ConversionResponse, error) {
	lead, err := o.leads.GetByID(ctx, leadID)
	if err != nil {
		return transport.ConversionResponse{}, err
	}

	if lead.Status == domain.StatusConverted && lead.ConvertedTenantID != nil {
		return o.recover(ctx, lead)
	}
	if lead.Status != domain.StatusQualified {
		return transport.ConversionResponse{}, apperr.Precondition(
			"lead must be qualified before conversion, current status is " + string(lead.Status))
	}

	// Step 1: slug syntax and uniqueness. Fail-fast, nothing written yet.
	if err := o.val.Var(req.TenantSlug, "required,tenant_slug"); err != nil {
		return transport.ConversionResponse{}, apperr.Validation("tenant slug must be lowercase letters, digits and hyphens")
	}
	taken, err := o.tenants.ExistsBySlug(ctx, req.TenantSlug)
	if err != nil {
		return transport.ConversionResponse{}, apperr.Database("slug lookup failed", err)
	}
	if taken {
		// The caller picks a different slug and retries; no auto-suffixing.
		return transport.ConversionResponse{}, apperr.SlugConflict(req.TenantSlug)
	}

	// Step 2: create the tenant. A failure here stops the workflow with
	// nothing to clean up.
	tenant, err := o.tenants.Create(ctx, ports.CreateTenantParams{
		Name:       req.TenantName,
		Slug:       req.TenantSlug,
		Plan:       req.SubscriptionPlan,
		OwnerName:  req.AdminName,
		OwnerEmail: req.AdminEmail,
	})
	o.log.ConversionStep("create_tenant", leadID.String(), err)
	if err != nil {
		return transport.ConversionResponse{}, apperr.Database("tenant creation failed", err)
	}

	o.bus.Publish(ctx, events.TenantProvisioned{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenant.ID,
		Slug:      tenant.Slug,
		Plan:      req.SubscriptionPlan,
	})

	result := transport.ConversionResponse{
		Success:    true,
		TenantID:   tenant.ID,
		TenantSlug: tenant.Slug,
	}

	// Step 3: provision or link the tenant admin. The tenant stays in place
	// if this fails.
	user, err := o.provisioner.FindOrCreateAdminUser(ctx, req.AdminEmail, req.AdminName)
	o.log.ConversionStep("provision_admin", leadID.String(), err)
	if err != nil {
		return transport.ConversionResponse{}, apperr.UserSetup("tenant created but admin user setup failed", err).
			WithDetails(map[string]string{"tenantId": tenant.ID.String()})
	}
	if err := o.provisioner.LinkUserToTenant(ctx, user.UserID, tenant.ID, TenantAdminRole); err != nil {
		o.log.ConversionStep("link_admin", leadID.String(), err)
		return transport.ConversionResponse{}, apperr.UserSetup("tenant created but admin link failed", err).
			WithDetails(map[string]string{"tenantId": tenant.ID.String(), "userId": user.UserID.String()})
	}

	result.UserID = &user.UserID
	result.UserTenantCreated = true
	if user.IsNew {
		result.TempPassword = user.TempPassword
	}

	// Step 4: welcome email, best-effort.
	if err := o.email.SendTenantWelcomeEmail(ctx, req.AdminEmail, req.TenantName, o.loginURL, user.TempPassword); err != nil {
		o.log.ConversionStep("welcome_email", leadID.String(), err)
	} else {
		result.EmailSent = true
	}

	// Step 5: mark the lead converted through the sanctioned system path.
	if _, err := o.leads.CompleteConversion(ctx, leadID, tenant.ID, tenant.Slug, actor); err != nil {
		// Tenant and user exist; the lead state lags behind. Reported as a
		// user-setup class failure so operators know to reconcile manually.
		o.log.ConversionStep("mark_converted", leadID.String(), err)
		return transport.ConversionResponse{}, apperr.UserSetup("tenant created but lead could not be marked converted", err).
			WithDetails(map[string]string{"tenantId": tenant.ID.String()})
	}

	return result, nil
}

// recover handles the duplicate-conversion path: confirm the recorded tenant
// still exists and report success without creating anything. Temp passwords
// are never stored, so recovery cannot re-surface one; the caller is expected
// to use the password reset flow if credentials were lost.
func (o *Orchestrator) recover(ctx context.Context, lead domain.Lead) (transport.ConversionResponse, error) {
	tenant, err := o.tenants.GetByID(ctx, *lead.ConvertedTenantID)
	if err != nil {
		return transport.ConversionResponse{}, apperr.Database("converted lead references a missing tenant", err).
			WithDetails(map[string]string{"tenantId": lead.ConvertedTenantID.String()})
	}

	o.log.ConversionStep("recovery", lead.ID.String(), nil)
	o.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		TenantID:   tenant.ID,
		TenantSlug: tenant.Slug,
		IsRecovery: true,
	})

	return transport.ConversionResponse{
		Success:    true,
		TenantID:   tenant.ID,
		TenantSlug: tenant.Slug,
		IsRecovery: true,
	}, nil
}
