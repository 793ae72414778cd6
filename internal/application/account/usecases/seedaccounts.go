package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// SeedAccount is one entry of a seed file.
type SeedAccount struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Staff     bool   `yaml:"staff"`
	Superuser bool   `yaml:"superuser"`
	// Verified accounts start active; others wait for email verification.
	Verified bool `yaml:"verified"`
}

type SeedResult struct {
	Created []string
	Skipped []string
}

// SeedAccountsUseCase loads fixture accounts. Emails that already exist are
// skipped, so running it twice is harmless.
type SeedAccountsUseCase struct {
	accountRepo account.Repository
	hasher      account.PasswordHasher
	policy      *vo.PasswordPolicy
	txManager   TransactionRunner
	now         biztime.Clock
	logger      logger.Interface
}

func NewSeedAccountsUseCase(
	accountRepo account.Repository,
	hasher account.PasswordHasher,
	policy *vo.PasswordPolicy,
	txManager TransactionRunner,
	logger logger.Interface,
) *SeedAccountsUseCase {
	return &SeedAccountsUseCase{
		accountRepo: accountRepo,
		hasher:      hasher,
		policy:      policy,
		txManager:   txManager,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

// Execute creates all new accounts in one transaction; any invalid entry
// aborts the whole seed.
func (uc *SeedAccountsUseCase) Execute(ctx context.Context, seeds []SeedAccount) (*SeedResult, error) {
	result := &SeedResult{}
	now := uc.now()

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for i, seed := range seeds {
			email, err := vo.NewEmail(seed.Email)
			if err != nil {
				return errors.NewValidationError(fmt.Sprintf("entry %d: invalid email", i+1), err.Error())
			}
			exists, err := uc.accountRepo.ExistsByEmail(ctx, email.String())
			if err != nil {
				return fmt.Errorf("failed to check email existence: %w", err)
			}
			if exists {
				result.Skipped = append(result.Skipped, email.String())
				continue
			}

			acct, err := uc.build(email, seed, now)
			if err != nil {
				return fmt.Errorf("entry %d (%s): %w", i+1, email.String(), err)
			}
			if err := uc.accountRepo.Create(ctx, acct); err != nil {
				return err
			}
			result.Created = append(result.Created, email.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("accounts seeded", "created", len(result.Created), "skipped", len(result.Skipped))
	return result, nil
}

func (uc *SeedAccountsUseCase) build(email *vo.Email, seed SeedAccount, now time.Time) (*account.Account, error) {
	acct, err := account.NewAccount(email, seed.FirstName, seed.LastName, now)
	if err != nil {
		return nil, err
	}
	if seed.Password != "" {
		if err := acct.SetPassword(seed.Password, uc.policy, uc.hasher, now); err != nil {
			return nil, err
		}
	}
	switch {
	case seed.Superuser:
		acct.GrantSuperuser(now)
	case seed.Verified:
		if err := acct.MarkEmailVerified(now); err != nil {
			return nil, err
		}
	}
	if seed.Staff {
		acct.SetStaff(true, now)
	}
	return acct, nil
}
