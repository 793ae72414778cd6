package usecases

import (
	"context"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type LogoutCommand struct {
	AccessToken  string
	RefreshToken string
}

// LogoutUseCase revokes whatever tokens the client still holds. It never
// fails: a client without usable tokens is already logged out.
type LogoutUseCase struct {
	tokens TokenService
	logger logger.Interface
}

func NewLogoutUseCase(tokens TokenService, logger logger.Interface) *LogoutUseCase {
	return &LogoutUseCase{tokens: tokens, logger: logger}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, cmd LogoutCommand) {
	for _, raw := range []string{cmd.AccessToken, cmd.RefreshToken} {
		if raw == "" {
			continue
		}
		if err := uc.tokens.Revoke(ctx, raw); err != nil {
			uc.logger.Warnw("failed to revoke token on logout", "error", err)
		}
	}
}
