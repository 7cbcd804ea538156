package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const sendAttempts = 3

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Provider presets. Both speak STARTTLS on the submission port with
// LOGIN auth.
var providerHosts = map[string]string{
	"gmail":     "smtp.gmail.com",
	"office365": "smtp.office365.com",
}

// SMTPConfig carries the transport settings for the SMTP sender.
type SMTPConfig struct {
	Provider string
	Username string
	Password string
	From     string
}

// smtpSender sends via go-mail, dialing a fresh connection per attempt.
type smtpSender struct {
	cfg    SMTPConfig
	host   string
	logger *zap.Logger
}

// NewSender creates an SMTP-backed Sender for a known provider.
func NewSender(cfg SMTPConfig, logger *zap.Logger) (Sender, error) {
	host, ok := providerHosts[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("email credentials are required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &smtpSender{cfg: cfg, host: host, logger: logger.Named("email")}, nil
}

// Send delivers the message, retrying up to three times. Every attempt
// dials a fresh connection; a half-dead reused session is the common
// SMTP failure mode.
func (s *smtpSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	var lastErr error
	for attempt := 0; attempt < sendAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}

		client, err := mail.NewClient(s.host,
			mail.WithPort(587),
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
		if err != nil {
			lastErr = fmt.Errorf("failed to create smtp client: %w", err)
			continue
		}

		if err := client.DialAndSendWithContext(ctx, msg); err != nil {
			lastErr = fmt.Errorf("smtp delivery failed: %w", err)
			s.logger.Warn("email send attempt failed",
				zap.Int("attempt", attempt+1),
				zap.String("to", to),
				zap.Error(err))
			continue
		}

		s.logger.Info("email sent",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Int("attempt", attempt+1))
		return nil
	}
	return fmt.Errorf("email to %s failed after %d attempts: %w", to, sendAttempts, lastErr)
}

var _ Sender = (*smtpSender)(nil)
