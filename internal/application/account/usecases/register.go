package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

type RegisterCommand struct {
	Email     string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
}

// RegisterUseCase creates an inactive account with a password and mails the
// verification link. A failed delivery does not undo the registration; the
// user can ask for the link again.
type RegisterUseCase struct {
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

func NewRegisterUseCase(
	accountRepo account.Repository,
	tokenRepo account.VerificationTokenRepository,
	hasher account.PasswordHasher,
	policy *vo.PasswordPolicy,
	mailer Mailer,
	txManager TransactionRunner,
	settings FlowSettings,
	logger logger.Interface,
) *RegisterUseCase {
	return &RegisterUseCase{
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

func (uc *RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (*account.Account, error) {
	if cmd.Password1 != cmd.Password2 {
		return nil, errors.NewValidationError("the two password fields didn't match")
	}
	email, err := vo.NewEmail(cmd.Email)
	if err != nil {
		return nil, errors.NewValidationError("invalid email", err.Error())
	}

	now := uc.now()
	var (
		newAccount *account.Account
		secret     string
	)
	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := uc.accountRepo.ExistsByEmail(ctx, email.String())
		if err != nil {
			return fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return errors.NewDuplicateEmailError()
		}

		newAccount, err = account.NewAccount(email, cmd.FirstName, cmd.LastName, now)
		if err != nil {
			return err
		}
		if err := newAccount.SetPassword(cmd.Password1, uc.policy, uc.hasher, now); err != nil {
			return err
		}
		if err := uc.accountRepo.Create(ctx, newAccount); err != nil {
			return err
		}

		var tok *account.VerificationToken
		tok, secret, err = account.IssueVerificationToken(newAccount.ID(), account.PurposeEmailVerify, uc.settings.VerificationTTL, now)
		if err != nil {
			return fmt.Errorf("failed to generate verification token: %w", err)
		}
		return uc.tokenRepo.Create(ctx, tok)
	})
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to register account", "error", err, "email", utils.MaskEmail(email.String()))
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	if err := uc.mailer.SendVerification(ctx, newAccount.Email().String(), newAccount.FullName(), secret, uc.settings.VerificationTTL); err != nil {
		uc.logger.Warnw("failed to send verification email", "error", err, "sid", newAccount.SID())
	}

	uc.logger.Infow("account registered", "sid", newAccount.SID(), "email", utils.MaskEmail(email.String()))
	return newAccount, nil
}
