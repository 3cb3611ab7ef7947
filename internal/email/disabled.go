package email

import (
	"context"

	"admin_console_backend/platform/logger"
)

// DisabledSender is used when SMTP is not configured. Every send is a no-op
// logged at debug level so local development works without a mail server.
type DisabledSender struct {
	log *logger.Logger
}

// NewDisabledSender creates a no-op sender.
func NewDisabledSender(log *logger.Logger) *DisabledSender {
	return &DisabledSender{log: log}
}

func (s *DisabledSender) SendTenantWelcomeEmail(_ context.Context, to, tenantName, _, _ string) error {
	s.log.Debug("email disabled: skipping tenant welcome", "to", to, "tenant", tenantName)
	return nil
}

func (s *DisabledSender) SendAdminInviteEmail(_ context.Context, to, _, _, _ string) error {
	s.log.Debug("email disabled: skipping admin invite", "to", to)
	return nil
}

func (s *DisabledSender) SendPasswordResetEmail(_ context.Context, to, _ string) error {
	s.log.Debug("email disabled: skipping password reset", "to", to)
	return nil
}

var _ Sender = (*DisabledSender)(nil)
