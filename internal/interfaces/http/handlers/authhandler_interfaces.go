package handlers

import (
	"context"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/usecases"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
)

// Use case interfaces for AuthHandler and AccountHandler - enables unit testing with mocks.

type registerUseCase interface {
	Execute(ctx context.Context, cmd usecases.RegisterCommand) (*account.Account, error)
}

type verifyEmailUseCase interface {
	Execute(ctx context.Context, cmd usecases.VerifyEmailCommand) (*account.Account, error)
}

type resendVerificationUseCase interface {
	Execute(ctx context.Context, cmd usecases.ResendVerificationCommand) error
}

type loginUseCase interface {
	Execute(ctx context.Context, cmd usecases.LoginCommand) (*usecases.LoginResult, error)
}

type refreshUseCase interface {
	Execute(ctx context.Context, cmd usecases.RefreshCommand) (*token.Pair, error)
}

type logoutUseCase interface {
	Execute(ctx context.Context, cmd usecases.LogoutCommand)
}

type requestPasswordResetUseCase interface {
	Execute(ctx context.Context, cmd usecases.RequestPasswordResetCommand) error
}

type resetPasswordUseCase interface {
	Execute(ctx context.Context, cmd usecases.ResetPasswordCommand) error
}

type initiateOAuthUseCase interface {
	Execute(ctx context.Context, cmd usecases.InitiateOAuthCommand) (string, error)
}

type handleOAuthCallbackUseCase interface {
	Execute(ctx context.Context, cmd usecases.OAuthCallbackCommand) (*usecases.OAuthCallbackResult, error)
}

type getAccountUseCase interface {
	ExecuteBySID(ctx context.Context, sid string) (*dto.AccountResponse, error)
}

type updateProfileUseCase interface {
	Execute(ctx context.Context, sid string, req dto.UpdateProfileRequest) (*dto.AccountResponse, error)
}

type deleteOwnAccountUseCase interface {
	ExecuteSelf(ctx context.Context, cmd usecases.DeleteOwnAccountCommand) error
}

type changePasswordUseCase interface {
	Execute(ctx context.Context, cmd usecases.ChangePasswordCommand) error
}
