package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type CreateSuperuserCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateSuperuserUseCase creates an active, verified staff superuser. It is
// only reachable from the command line.
type CreateSuperuserUseCase struct {
	accountRepo account.Repository
	hasher      account.PasswordHasher
	policy      *vo.PasswordPolicy
	now         biztime.Clock
	logger      logger.Interface
}

func NewCreateSuperuserUseCase(
	accountRepo account.Repository,
	hasher account.PasswordHasher,
	policy *vo.PasswordPolicy,
	logger logger.Interface,
) *CreateSuperuserUseCase {
	return &CreateSuperuserUseCase{
		accountRepo: accountRepo,
		hasher:      hasher,
		policy:      policy,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *CreateSuperuserUseCase) Execute(ctx context.Context, cmd CreateSuperuserCommand) (*account.Account, error) {
	email, err := vo.NewEmail(cmd.Email)
	if err != nil {
		return nil, errors.NewValidationError("invalid email", err.Error())
	}
	exists, err := uc.accountRepo.ExistsByEmail(ctx, email.String())
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, errors.NewDuplicateEmailError()
	}

	now := uc.now()
	acct, err := account.NewAccount(email, cmd.FirstName, cmd.LastName, now)
	if err != nil {
		return nil, err
	}
	if err := acct.SetPassword(cmd.Password, uc.policy, uc.hasher, now); err != nil {
		return nil, err
	}
	acct.GrantSuperuser(now)

	if err := uc.accountRepo.Create(ctx, acct); err != nil {
		return nil, err
	}

	uc.logger.Infow("superuser created", "sid", acct.SID())
	return acct, nil
}
