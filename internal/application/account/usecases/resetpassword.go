package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/goroutine"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type ResetPasswordCommand struct {
	Token        string
	NewPassword1 string
	NewPassword2 string
}

// ResetPasswordUseCase sets a new password from an emailed reset token.
// Every other outstanding reset token of the account dies with it.
type ResetPasswordUseCase struct {
	accountRepo account.Repository
	tokenRepo   account.VerificationTokenRepository
	hasher      account.PasswordHasher
	policy      *vo.PasswordPolicy
	mailer      Mailer
	txManager   TransactionRunner
	settings    FlowSettings
	now         biztime.Clock
	logger      logger.Interface
}

func NewResetPasswordUseCase(
	accountRepo account.Repository,
	tokenRepo account.VerificationTokenRepository,
	hasher account.PasswordHasher,
	policy *vo.PasswordPolicy,
	mailer Mailer,
	txManager TransactionRunner,
	settings FlowSettings,
	logger logger.Interface,
) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		hasher:      hasher,
		policy:      policy,
		mailer:      mailer,
		txManager:   txManager,
		settings:    settings,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *ResetPasswordUseCase) Execute(ctx context.Context, cmd ResetPasswordCommand) error {
	if cmd.NewPassword1 != cmd.NewPassword2 {
		return errors.NewValidationError("the two password fields didn't match")
	}

	now := uc.now()
	tok, err := lookupVerificationToken(ctx, uc.tokenRepo, account.PurposePasswordReset, cmd.Token, now)
	if err != nil {
		return err
	}

	acct, err := uc.accountRepo.GetByID(ctx, tok.AccountID())
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil || acct.IsDeleted() {
		return errors.NewVerificationInvalidError()
	}
	// A weak password leaves the token usable for another try.
	if err := acct.ValidatePassword(cmd.NewPassword1, uc.policy); err != nil {
		return err
	}

	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := consumeVerificationToken(ctx, uc.tokenRepo, tok, now); err != nil {
			return err
		}
		if err := acct.SetPassword(cmd.NewPassword1, uc.policy, uc.hasher, now); err != nil {
			return err
		}
		if err := uc.accountRepo.Update(ctx, acct); err != nil {
			return err
		}
		return uc.tokenRepo.ConsumeAllForAccount(ctx, acct.ID(), account.PurposePasswordReset, now)
	})
	if err != nil {
		if errors.IsAppError(err) {
			return err
		}
		uc.logger.Errorw("failed to reset password", "error", err, "sid", acct.SID())
		return fmt.Errorf("failed to reset password: %w", err)
	}

	to, name := acct.Email().String(), acct.FullName()
	goroutine.Detached(ctx, uc.logger, "password-changed-notice", uc.settings.noticeTimeout(), func(ctx context.Context) error {
		return uc.mailer.SendPasswordChanged(ctx, to, name)
	})

	uc.logger.Infow("password reset", "sid", acct.SID())
	return nil
}
