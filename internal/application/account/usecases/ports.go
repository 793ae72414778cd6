package usecases

import (
	"context"
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/auth"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/goroutine"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// TokenService is implemented by tokens.Service.
type TokenService interface {
	IssuePair(sid string) (*token.Pair, error)
	Verify(ctx context.Context, raw string, expected token.Type) (*token.Claims, error)
	Rotate(ctx context.Context, raw string) (*token.Pair, *token.Claims, error)
	Revoke(ctx context.Context, raw string) error
}

// Mailer sends the lifecycle emails. Implemented by email.Mailer.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string, ttl time.Duration) error
	SendPasswordReset(ctx context.Context, to, name, token string, ttl time.Duration) error
	SendPasswordChanged(ctx context.Context, to, name string) error
}

// TransactionRunner is implemented by db.TransactionManager.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProviderLookup resolves configured OAuth providers by name.
type ProviderLookup interface {
	Get(name string) (auth.Provider, error)
}

// FlowSettings are the tunables of the email-driven flows.
type FlowSettings struct {
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	// PreventEnumeration answers unknown-email requests like known ones.
	PreventEnumeration bool
	// NoticeTimeout bounds background notices sent after the response.
	NoticeTimeout time.Duration
}

func (s FlowSettings) noticeTimeout() time.Duration {
	if s.NoticeTimeout <= 0 {
		return 30 * time.Second
	}
	return s.NoticeTimeout
}

// dispatch sends a mail for an account that exists. With enumeration
// prevention on, the send runs after the response and failures are only
// logged, so the caller answers exactly as it does for an unknown email.
func (s FlowSettings) dispatch(ctx context.Context, log logger.Interface, name string, send func(ctx context.Context) error) error {
	if s.PreventEnumeration {
		goroutine.Detached(ctx, log, name, s.noticeTimeout(), send)
		return nil
	}
	if err := send(ctx); err != nil {
		log.Errorw("failed to send email", "kind", name, "error", err)
		return errors.NewDeliveryError(err.Error())
	}
	return nil
}
