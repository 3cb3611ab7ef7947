// Package email delivers transactional console mail over SMTP.
package email

import (
	"context"

	"admin_console_backend/platform/config"
	"admin_console_backend/platform/logger"
)

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender is the outgoing mail surface consumed by other modules. All
// implementations render the shared HTML templates.
type Sender interface {
	// SendTenantWelcomeEmail greets a newly converted tenant's owner. The
	// temp password is included only for newly created accounts; pass ""
	// when an existing user was linked.
	SendTenantWelcomeEmail(ctx context.Context, to, tenantName, loginURL, tempPassword string) error

	// SendAdminInviteEmail delivers credentials to a new console admin.
	SendAdminInviteEmail(ctx context.Context, to, name, loginURL, tempPassword string) error

	// SendPasswordResetEmail delivers a password reset link.
	SendPasswordResetEmail(ctx context.Context, to, resetURL string) error
}

// NewSender returns the SMTP sender, or a logging no-op when email delivery
// is disabled by configuration.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email delivery disabled; outgoing mail will be dropped")
		return NewDisabledSender(log)
	}
	return NewSMTPSender(cfg)
}
