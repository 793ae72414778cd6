package usecases

import (
	"context"
	"sync"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

type LoginCommand struct {
	Email    string
	Password string
}

type LoginResult struct {
	Account *account.Account
	Tokens  *token.Pair
}

// LoginUseCase checks email and password and opens a session. Unknown emails
// still pay for one hash comparison so response timing does not reveal them.
type LoginUseCase struct {
	accountRepo account.Repository
	hasher      account.PasswordHasher
	tokens      TokenService
	now         biztime.Clock
	logger      logger.Interface

	dummyOnce sync.Once
	dummyHash string
}

func NewLoginUseCase(
	accountRepo account.Repository,
	hasher account.PasswordHasher,
	tokens TokenService,
	logger logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		accountRepo: accountRepo,
		hasher:      hasher,
		tokens:      tokens,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	acct, err := uc.accountRepo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		uc.logger.Errorw("failed to get account by email", "error", err)
		return nil, errors.NewInternalError("failed to authenticate")
	}
	if acct == nil {
		uc.burnHash(cmd.Password)
		uc.logger.Warnw("login attempt for unknown email", "email", utils.MaskEmail(cmd.Email))
		return nil, errors.NewInvalidCredentialsError()
	}
	if !acct.VerifyPassword(cmd.Password, uc.hasher) {
		uc.logger.Warnw("login attempt with wrong password", "sid", acct.SID())
		return nil, errors.NewInvalidCredentialsError()
	}
	if err := acct.CanAuthenticate(); err != nil {
		uc.logger.Infow("login refused", "sid", acct.SID(), "reason", errors.ReasonOf(err))
		return nil, err
	}

	acct.RecordLogin(uc.now())
	if err := uc.accountRepo.Update(ctx, acct); err != nil {
		uc.logger.Warnw("failed to record last login", "error", err, "sid", acct.SID())
	}

	pair, err := uc.tokens.IssuePair(acct.SID())
	if err != nil {
		uc.logger.Errorw("failed to issue tokens", "error", err, "sid", acct.SID())
		return nil, errors.NewInternalError("failed to issue tokens")
	}

	uc.logger.Infow("account logged in", "sid", acct.SID())
	return &LoginResult{Account: acct, Tokens: pair}, nil
}

func (uc *LoginUseCase) burnHash(password string) {
	uc.dummyOnce.Do(func() {
		hash, err := uc.hasher.Hash("timing-equalizer-password")
		if err == nil {
			uc.dummyHash = hash
		}
	})
	if uc.dummyHash != "" {
		_ = uc.hasher.Verify(password, uc.dummyHash)
	}
}
