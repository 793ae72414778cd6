package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type DeleteOwnAccountCommand struct {
	AccountSID   string
	AccessToken  string
	RefreshToken string
}

// DeleteAccountUseCase soft-deletes accounts. Rows are kept; the account can
// no longer log in and drops out of active listings.
type DeleteAccountUseCase struct {
	accountRepo account.Repository
	tokens      TokenService
	now         biztime.Clock
	logger      logger.Interface
}

func NewDeleteAccountUseCase(accountRepo account.Repository, tokens TokenService, logger logger.Interface) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		accountRepo: accountRepo,
		tokens:      tokens,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

// ExecuteSelf deletes the caller's account and revokes the tokens it presented.
func (uc *DeleteAccountUseCase) ExecuteSelf(ctx context.Context, cmd DeleteOwnAccountCommand) error {
	acct, err := loadActiveAccount(ctx, uc.accountRepo, cmd.AccountSID)
	if err != nil {
		return err
	}
	if err := uc.softDelete(ctx, acct); err != nil {
		return err
	}

	for _, raw := range []string{cmd.AccessToken, cmd.RefreshToken} {
		if raw == "" {
			continue
		}
		if err := uc.tokens.Revoke(ctx, raw); err != nil {
			uc.logger.Warnw("failed to revoke token of deleted account", "sid", acct.SID(), "error", err)
		}
	}

	uc.logger.Infow("account deleted by owner", "sid", acct.SID())
	return nil
}

// ExecuteBySID is the admin variant. Deleting an already deleted account succeeds.
func (uc *DeleteAccountUseCase) ExecuteBySID(ctx context.Context, actorSID, sid string) error {
	acct, err := uc.accountRepo.GetBySID(ctx, sid)
	if err != nil {
		uc.logger.Errorw("failed to get account", "sid", sid, "error", err)
		return fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return errors.NewNotFoundError("account not found")
	}
	if err := uc.softDelete(ctx, acct); err != nil {
		return err
	}

	uc.logger.Infow("account deleted by admin", "sid", sid, "actor", actorSID)
	return nil
}

func (uc *DeleteAccountUseCase) softDelete(ctx context.Context, acct *account.Account) error {
	acct.SoftDelete(uc.now())
	if err := uc.accountRepo.Update(ctx, acct); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		uc.logger.Errorw("failed to delete account", "sid", acct.SID(), "error", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
