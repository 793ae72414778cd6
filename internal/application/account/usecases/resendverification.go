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

type ResendVerificationCommand struct {
	Email string
}

// ResendVerificationUseCase replaces any outstanding verification link with
// a new one. Verified and deleted accounts get nothing, with the same answer.
type ResendVerificationUseCase struct {
	accountRepo account.Repository
	tokenRepo   account.VerificationTokenRepository
	mailer      Mailer
	settings    FlowSettings
	now         biztime.Clock
	logger      logger.Interface
}

func NewResendVerificationUseCase(
	accountRepo account.Repository,
	tokenRepo account.VerificationTokenRepository,
	mailer Mailer,
	settings FlowSettings,
	logger logger.Interface,
) *ResendVerificationUseCase {
	return &ResendVerificationUseCase{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		mailer:      mailer,
		settings:    settings,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *ResendVerificationUseCase) Execute(ctx context.Context, cmd ResendVerificationCommand) error {
	acct, err := uc.accountRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to get account by email", "error", err)
		return fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil || acct.IsDeleted() {
		if uc.settings.PreventEnumeration {
			uc.logger.Infow("verification resend for unknown email", "email", utils.MaskEmail(cmd.Email))
			return nil
		}
		return errors.NewNotFoundError("no account with this email")
	}
	if acct.IsEmailVerified() {
		return nil
	}

	now := uc.now()
	if err := uc.tokenRepo.ConsumeAllForAccount(ctx, acct.ID(), account.PurposeEmailVerify, now); err != nil {
		return fmt.Errorf("failed to invalidate old tokens: %w", err)
	}
	tok, secret, err := account.IssueVerificationToken(acct.ID(), account.PurposeEmailVerify, uc.settings.VerificationTTL, now)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	if err := uc.tokenRepo.Create(ctx, tok); err != nil {
		return fmt.Errorf("failed to save verification token: %w", err)
	}

	to, name := acct.Email().String(), acct.FullName()
	if err := uc.settings.dispatch(ctx, uc.logger, "verification-resend-email", func(ctx context.Context) error {
		return uc.mailer.SendVerification(ctx, to, name, secret, uc.settings.VerificationTTL)
	}); err != nil {
		return err
	}

	uc.logger.Infow("verification email dispatched", "sid", acct.SID())
	return nil
}
