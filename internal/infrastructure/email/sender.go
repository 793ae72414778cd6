// Package email delivers the account lifecycle emails: verification links,
// password reset links and password change notices.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sharedConfig "github.com/Mordecai-Wambua/User-Auth/internal/shared/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const (
	BackendSMTP    = "smtp"
	BackendConsole = "console"
	BackendMemory  = "memory"
)

var ErrEmailServiceNotConfigured = errors.New("email service not configured")

// Sender dispatches one message. Implementations must honor ctx.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// NewSender builds the sender selected by email.backend.
func NewSender(cfg sharedConfig.EmailConfig, log logger.Interface) (Sender, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendSMTP:
		if cfg.SMTPHost == "" {
			return nil, ErrEmailServiceNotConfigured
		}
		log.Infow("smtp email backend enabled",
			"host", cfg.SMTPHost,
			"port", cfg.SMTPPort,
			"from", cfg.FromAddress,
		)
		return NewSMTPSender(SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPassword,
			FromAddress: cfg.FromAddress,
			FromName:    cfg.FromName,
		}), nil
	case BackendConsole, "":
		return NewConsoleSender(log), nil
	case BackendMemory:
		return NewMemorySender(), nil
	default:
		return nil, fmt.Errorf("unsupported email backend %q", cfg.Backend)
	}
}
