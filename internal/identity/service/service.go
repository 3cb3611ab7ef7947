// Package service implements admin user management and the user
// provisioning side of lead conversion.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"admin_console_backend/internal/auth/password"
	"admin_console_backend/internal/auth/token"
	"admin_console_backend/internal/events"
	"admin_console_backend/internal/identity/domain"
	"admin_console_backend/internal/identity/repository"
	"admin_console_backend/internal/identity/transport"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/apperr"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/sanitize"
)

// tempPasswordBytes sizes the random temp password. 12 bytes of entropy
// encode to a 16-character base64url string.
const tempPasswordBytes = 12

// InviteEmailSender delivers credentials to newly created console admins.
// Delivery failures are logged, not returned; the operator can resend.
type InviteEmailSender interface {
	SendAdminInviteEmail(ctx context.Context, to, name, loginURL, tempPassword string) error
}

// Service manages admin users. It also implements ports.UserProvisioner for
// the conversion workflow.
type Service struct {
	repo     *repository.Repository
	bus      events.Bus
	invites  InviteEmailSender
	log      *logger.Logger
	loginURL string
}

// New creates a new identity service. invites may be nil when email is
// disabled.
func New(repo *repository.Repository, bus events.Bus, invites InviteEmailSender, loginURL string, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, invites: invites, log: log, loginURL: loginURL}
}

// FindOrCreateAdminUser returns the existing user for the email, or creates
// one with a random temp password and a forced password change. The temp
// password is returned to the caller exactly once and never stored in clear.
func (s *Service) FindOrCreateAdminUser(ctx context.Context, email, name string) (ports.ProvisionedUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ports.ProvisionedUser{}, apperr.Validation("email is required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return ports.ProvisionedUser{UserID: existing.ID, IsNew: false}, nil
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		return ports.ProvisionedUser{}, err
	}

	tempPassword, err := token.GenerateRandomToken(tempPasswordBytes)
	if err != nil {
		return ports.ProvisionedUser{}, fmt.Errorf("generate temp password: %w", err)
	}
	hash, err := password.Hash(tempPassword)
	if err != nil {
		return ports.ProvisionedUser{}, fmt.Errorf("hash temp password: %w", err)
	}

	created, err := s.repo.Insert(ctx, domain.AdminUser{
		Email:              email,
		Name:               sanitize.Text(name),
		Roles:              []string{domain.RoleTenantAdmin},
		Status:             domain.StatusActive,
		PasswordHash:       hash,
		MustChangePassword: true,
	})
	if err != nil {
		// A concurrent create for the same email loses the insert race;
		// fall back to the winner's row.
		if apperr.GetKind(err) == apperr.KindConflict {
			winner, lookupErr := s.repo.GetByEmail(ctx, email)
			if lookupErr == nil {
				return ports.ProvisionedUser{UserID: winner.ID, IsNew: false}, nil
			}
		}
		return ports.ProvisionedUser{}, err
	}

	s.publish(ctx, events.AdminUserProvisioned{
		BaseEvent: events.NewBaseEvent(),
		UserID:    created.ID,
		Email:     created.Email,
		Role:      domain.RoleTenantAdmin,
	})
	s.log.Info("admin user provisioned", "user_id", created.ID, "email", created.Email)

	return ports.ProvisionedUser{UserID: created.ID, IsNew: true, TempPassword: tempPassword}, nil
}

// LinkUserToTenant attaches a user to a tenant with the given role.
func (s *Service) LinkUserToTenant(ctx context.Context, userID, tenantID uuid.UUID, role string) error {
	return s.repo.LinkUserToTenant(ctx, userID, tenantID, role)
}

// CreateAdmin creates a console operator account and emails the credentials.
func (s *Service) CreateAdmin(ctx context.Context, req transport.CreateAdminRequest) (domain.AdminUser, error) {
	tempPassword, err := token.GenerateRandomToken(tempPasswordBytes)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("generate temp password: %w", err)
	}
	hash, err := password.Hash(tempPassword)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("hash temp password: %w", err)
	}

	created, err := s.repo.Insert(ctx, domain.AdminUser{
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Name:               sanitize.Text(req.Name),
		Roles:              req.Roles,
		Status:             domain.StatusActive,
		PasswordHash:       hash,
		MustChangePassword: true,
	})
	if err != nil {
		return domain.AdminUser{}, err
	}

	s.publish(ctx, events.AdminUserProvisioned{
		BaseEvent: events.NewBaseEvent(),
		UserID:    created.ID,
		Email:     created.Email,
		Role:      firstRole(created.Roles),
	})

	if s.invites != nil {
		if err := s.invites.SendAdminInviteEmail(ctx, created.Email, created.Name, s.loginURL, tempPassword); err != nil {
			s.log.Warn("admin invite email failed", "user_id", created.ID, "error", err)
		}
	}

	s.log.Info("admin user created", "user_id", created.ID, "email", created.Email, "roles", created.Roles)
	return created, nil
}

// Get returns an admin user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.AdminUser, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all admin users.
func (s *Service) List(ctx context.Context) ([]domain.AdminUser, error) {
	return s.repo.List(ctx)
}

// Update changes an admin's name and roles.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateAdminRequest) (domain.AdminUser, error) {
	updated, err := s.repo.UpdateProfile(ctx, id, sanitize.Text(req.Name), req.Roles)
	if err != nil {
		return domain.AdminUser{}, err
	}
	s.log.Info("admin user updated", "user_id", id)
	return updated, nil
}

// ChangeStatus activates or deactivates an admin user. Deactivated admins
// leave the assignment pool on the next selection; existing assignments are
// untouched.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status domain.AdminStatus) (domain.AdminUser, error) {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return domain.AdminUser{}, err
	}
	s.log.Info("admin user status changed", "user_id", id, "status", status)
	return s.repo.GetByID(ctx, id)
}

// ResetCredentials issues a fresh temp password for an admin and emails it.
// Used when the conversion temp password is lost; the old hash is replaced.
func (s *Service) ResetCredentials(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tempPassword, err := token.GenerateRandomToken(tempPasswordBytes)
	if err != nil {
		return fmt.Errorf("generate temp password: %w", err)
	}
	hash, err := password.Hash(tempPassword)
	if err != nil {
		return fmt.Errorf("hash temp password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	// UpdatePassword clears the flag; force a change for issued credentials.
	if err := s.repo.SetMustChangePassword(ctx, id, true); err != nil {
		return err
	}

	if s.invites == nil {
		return errors.New("email disabled: cannot deliver reset credentials")
	}
	if err := s.invites.SendAdminInviteEmail(ctx, user.Email, user.Name, s.loginURL, tempPassword); err != nil {
		return fmt.Errorf("send credentials email: %w", err)
	}
	s.log.Info("admin credentials reset", "user_id", id)
	return nil
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, evt)
}

func firstRole(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	return roles[0]
}
