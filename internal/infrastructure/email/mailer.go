package email

import (
	"context"
	"fmt"
	"time"

	sharedConfig "github.com/Mordecai-Wambua/User-Auth/internal/shared/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/retry"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

const defaultSendTimeout = 10 * time.Second

// Mailer renders lifecycle emails and hands them to a Sender. Each attempt
// is bounded by the configured timeout; a failed attempt is retried once.
type Mailer struct {
	sender   Sender
	renderer *TemplateRenderer
	frontend sharedConfig.FrontendConfig
	appName  string
	timeout  time.Duration
	retry    retry.Policy
	logger   logger.Interface
}

type MailerOptions struct {
	AppName string
	Timeout time.Duration
	Retry   retry.Policy
}

func NewMailer(sender Sender, renderer *TemplateRenderer, frontend sharedConfig.FrontendConfig, opts MailerOptions, log logger.Interface) *Mailer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	appName := opts.AppName
	if appName == "" {
		appName = "User Auth"
	}
	return &Mailer{
		sender:   sender,
		renderer: renderer,
		frontend: frontend,
		appName:  appName,
		timeout:  timeout,
		retry:    opts.Retry,
		logger:   log.Named("mailer"),
	}
}

// SendVerification mails the email-verify link carrying token.
func (m *Mailer) SendVerification(ctx context.Context, to, name, token string, ttl time.Duration) error {
	return m.send(ctx, KindVerifyEmail, to, name, m.frontend.VerifyURL(token), ttl)
}

// SendPasswordReset mails the password-reset link carrying token.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string, ttl time.Duration) error {
	return m.send(ctx, KindPasswordReset, to, name, m.frontend.ResetPasswordURL(token), ttl)
}

func (m *Mailer) SendPasswordChanged(ctx context.Context, to, name string) error {
	return m.send(ctx, KindPasswordChanged, to, name, "", 0)
}

func (m *Mailer) send(ctx context.Context, kind Kind, to, name, link string, ttl time.Duration) error {
	rendered, err := m.renderer.Render(kind, TemplateData{
		AppName:   m.appName,
		Name:      name,
		Link:      link,
		ExpiresIn: ttl,
	})
	if err != nil {
		return err
	}

	attempt := 0
	err = m.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		if err := m.sender.Send(sendCtx, to, rendered.Subject, rendered.Text, rendered.HTML); err != nil {
			m.logger.Warnw("email delivery attempt failed",
				"kind", kind,
				"to", utils.MaskEmail(to),
				"attempt", attempt,
				"error", err,
			)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to deliver %s email: %w", kind, err)
	}

	m.logger.Infow("email sent", "kind", kind, "to", utils.MaskEmail(to))
	return nil
}
