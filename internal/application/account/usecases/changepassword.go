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

type ChangePasswordCommand struct {
	AccountSID   string
	OldPassword  string
	NewPassword1 string
	NewPassword2 string
}

type ChangePasswordUseCase struct {
	accountRepo account.Repository
	hasher      account.PasswordHasher
	policy      *vo.PasswordPolicy
	mailer      Mailer
	settings    FlowSettings
	now         biztime.Clock
	logger      logger.Interface
}

func NewChangePasswordUseCase(
	accountRepo account.Repository,
	hasher account.PasswordHasher,
	policy *vo.PasswordPolicy,
	mailer Mailer,
	settings FlowSettings,
	logger logger.Interface,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		accountRepo: accountRepo,
		hasher:      hasher,
		policy:      policy,
		mailer:      mailer,
		settings:    settings,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *ChangePasswordUseCase) Execute(ctx context.Context, cmd ChangePasswordCommand) error {
	if cmd.NewPassword1 != cmd.NewPassword2 {
		return errors.NewValidationError("the two password fields didn't match")
	}

	acct, err := loadActiveAccount(ctx, uc.accountRepo, cmd.AccountSID)
	if err != nil {
		return err
	}

	if err := acct.ChangePassword(cmd.OldPassword, cmd.NewPassword1, uc.policy, uc.hasher, uc.now()); err != nil {
		return err
	}
	if err := uc.accountRepo.Update(ctx, acct); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		uc.logger.Errorw("failed to save new password", "error", err, "sid", acct.SID())
		return fmt.Errorf("failed to change password: %w", err)
	}

	to, name := acct.Email().String(), acct.FullName()
	goroutine.Detached(ctx, uc.logger, "password-changed-notice", uc.settings.noticeTimeout(), func(ctx context.Context) error {
		return uc.mailer.SendPasswordChanged(ctx, to, name)
	})

	uc.logger.Infow("password changed", "sid", acct.SID())
	return nil
}
