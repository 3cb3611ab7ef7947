package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	gomail "github.com/wneessen/go-mail"

	"admin_console_backend/platform/config"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender from email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendTenantWelcomeEmail greets a converted tenant's owner, attaching a QR
// code that opens the sign-in page.
func (s *SMTPSender) SendTenantWelcomeEmail(ctx context.Context, to, tenantName, loginURL, tempPassword string) error {
	qr, qrErr := qrcode.Encode(loginURL, qrcode.Medium, 256)

	content, err := renderEmailTemplate("tenant_welcome.html", tenantWelcomeEmailData{
		baseEmailData: baseEmailData{
			Title:    "Welcome to Admin Console",
			Heading:  fmt.Sprintf("Welcome, %s", tenantName),
			CTALabel: "Sign in",
			CTAURL:   loginURL,
		},
		TenantName:   tenantName,
		TempPassword: tempPassword,
		HasQRCode:    qrErr == nil,
	})
	if err != nil {
		return err
	}

	var attachments []Attachment
	if qrErr == nil {
		attachments = append(attachments, Attachment{FileName: "sign-in-qr.png", Content: qr})
	}
	return s.send(ctx, to, fmt.Sprintf(subjectTenantWelcomeFmt, tenantName), content, attachments...)
}

// SendAdminInviteEmail delivers credentials to a new console admin.
func (s *SMTPSender) SendAdminInviteEmail(ctx context.Context, to, name, loginURL, tempPassword string) error {
	content, err := renderEmailTemplate("admin_invite.html", adminInviteEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your Admin Console account",
			Heading:  "Your account is ready",
			CTALabel: "Sign in",
			CTAURL:   loginURL,
		},
		Name:         name,
		TempPassword: tempPassword,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, subjectAdminInvite, content)
}

// SendPasswordResetEmail delivers a password reset link.
func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, to, resetURL string) error {
	content, err := renderEmailTemplate("password_reset.html", passwordResetEmailData{
		baseEmailData: baseEmailData{
			Title:    "Reset your password",
			Heading:  "Reset your password",
			CTALabel: "Choose a new password",
			CTAURL:   resetURL,
		},
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, subjectPasswordReset, content)
}

var _ Sender = (*SMTPSender)(nil)
