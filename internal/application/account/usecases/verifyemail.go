package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type VerifyEmailCommand struct {
	Key string
}

// VerifyEmailUseCase confirms an email-verify token and activates the account.
type VerifyEmailUseCase struct {
	accountRepo account.Repository
	tokenRepo   account.VerificationTokenRepository
	txManager   TransactionRunner
	now         biztime.Clock
	logger      logger.Interface
}

func NewVerifyEmailUseCase(
	accountRepo account.Repository,
	tokenRepo account.VerificationTokenRepository,
	txManager TransactionRunner,
	logger logger.Interface,
) *VerifyEmailUseCase {
	return &VerifyEmailUseCase{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		txManager:   txManager,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *VerifyEmailUseCase) Execute(ctx context.Context, cmd VerifyEmailCommand) (*account.Account, error) {
	now := uc.now()
	tok, err := lookupVerificationToken(ctx, uc.tokenRepo, account.PurposeEmailVerify, cmd.Key, now)
	if err != nil {
		return nil, err
	}

	var verified *account.Account
	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := consumeVerificationToken(ctx, uc.tokenRepo, tok, now); err != nil {
			return err
		}

		acct, err := uc.accountRepo.GetByID(ctx, tok.AccountID())
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if acct == nil {
			return errors.NewVerificationInvalidError()
		}
		if err := acct.MarkEmailVerified(now); err != nil {
			return err
		}
		if err := uc.accountRepo.Update(ctx, acct); err != nil {
			return err
		}
		verified = acct
		return nil
	})
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to verify email", "error", err, "token_id", tok.ID())
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}

	uc.logger.Infow("email verified", "sid", verified.SID())
	return verified, nil
}
