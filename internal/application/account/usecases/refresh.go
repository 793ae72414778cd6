package usecases

import (
	"context"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type RefreshCommand struct {
	RefreshToken string
}

// RefreshUseCase trades a refresh token for a new pair. The presented token
// is blacklisted as part of the trade, so replaying it fails.
type RefreshUseCase struct {
	accountRepo account.Repository
	tokens      TokenService
	logger      logger.Interface
}

func NewRefreshUseCase(accountRepo account.Repository, tokens TokenService, logger logger.Interface) *RefreshUseCase {
	return &RefreshUseCase{
		accountRepo: accountRepo,
		tokens:      tokens,
		logger:      logger,
	}
}

func (uc *RefreshUseCase) Execute(ctx context.Context, cmd RefreshCommand) (*token.Pair, error) {
	if cmd.RefreshToken == "" {
		return nil, errors.NewInvalidRefreshTokenError("refresh token is required")
	}

	claims, err := uc.tokens.Verify(ctx, cmd.RefreshToken, token.TypeRefresh)
	if err != nil {
		return nil, refreshError(err)
	}

	acct, err := uc.accountRepo.GetBySID(ctx, claims.Subject)
	if err != nil {
		uc.logger.Errorw("failed to get account for refresh", "error", err, "sid", claims.Subject)
		return nil, errors.NewInternalError("failed to refresh token")
	}
	if acct == nil {
		return nil, errors.NewInvalidRefreshTokenError("account no longer exists")
	}
	if err := acct.CanAuthenticate(); err != nil {
		return nil, err
	}

	pair, _, err := uc.tokens.Rotate(ctx, cmd.RefreshToken)
	if err != nil {
		if errors.IsSecurityEvent(err) {
			uc.logger.Warnw("refresh token replayed", "sid", claims.Subject, "jti", claims.JTI)
		}
		return nil, refreshError(err)
	}

	uc.logger.Infow("tokens refreshed", "sid", acct.SID())
	return pair, nil
}

// refreshError keeps Blacklisted and InvalidRefreshToken and folds every
// other token failure into InvalidRefreshToken.
func refreshError(err error) error {
	switch errors.ReasonOf(err) {
	case errors.ReasonTokenBlacklisted, errors.ReasonInvalidRefreshToken:
		return err
	case "":
		return err
	default:
		return errors.NewInvalidRefreshTokenError(string(errors.ReasonOf(err)))
	}
}
