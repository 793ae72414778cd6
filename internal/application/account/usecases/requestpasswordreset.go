package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

type RequestPasswordResetCommand struct {
	Email string
}

type RequestPasswordResetUseCase struct {
	accountRepo account.Repository
	tokenRepo   account.VerificationTokenRepository
	mailer      Mailer
	settings    FlowSettings
	now         biztime.Clock
	logger      logger.Interface
}

func NewRequestPasswordResetUseCase(
	accountRepo account.Repository,
	tokenRepo account.VerificationTokenRepository,
	mailer Mailer,
	settings FlowSettings,
	logger logger.Interface,
) *RequestPasswordResetUseCase {
	return &RequestPasswordResetUseCase{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		mailer:      mailer,
		settings:    settings,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

// Execute mails a reset link. With enumeration prevention on, an unknown or
// deleted email gets the same nil result as a known one.
func (uc *RequestPasswordResetUseCase) Execute(ctx context.Context, cmd RequestPasswordResetCommand) error {
	acct, err := uc.accountRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to get account by email", "error", err)
		return fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil || acct.IsDeleted() {
		if uc.settings.PreventEnumeration {
			uc.logger.Infow("password reset requested for unknown email", "email", utils.MaskEmail(cmd.Email))
			return nil
		}
		return errors.NewNotFoundError("no account with this email")
	}

	tok, secret, err := account.IssueVerificationToken(acct.ID(), account.PurposePasswordReset, uc.settings.ResetTTL, uc.now())
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := uc.tokenRepo.Create(ctx, tok); err != nil {
		uc.logger.Errorw("failed to save reset token", "error", err, "sid", acct.SID())
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	to, name := acct.Email().String(), acct.FullName()
	if err := uc.settings.dispatch(ctx, uc.logger, "password-reset-email", func(ctx context.Context) error {
		return uc.mailer.SendPasswordReset(ctx, to, name, secret, uc.settings.ResetTTL)
	}); err != nil {
		return err
	}

	uc.logger.Infow("password reset email dispatched", "sid", acct.SID())
	return nil
}
