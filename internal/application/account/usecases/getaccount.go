package usecases

import (
	"context"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// GetAccountUseCase handles retrieving the current account
type GetAccountUseCase struct {
	accountRepo account.Repository
	logger      logger.Interface
}

func NewGetAccountUseCase(accountRepo account.Repository, logger logger.Interface) *GetAccountUseCase {
	return &GetAccountUseCase{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// ExecuteBySID returns the account if it may still use the API.
func (uc *GetAccountUseCase) ExecuteBySID(ctx context.Context, sid string) (*dto.AccountResponse, error) {
	if sid == "" {
		return nil, errors.NewValidationError("account id cannot be empty")
	}
	acct, err := loadActiveAccount(ctx, uc.accountRepo, sid)
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to get account", "sid", sid, "error", err)
		}
		return nil, err
	}
	return dto.ToAccountResponse(acct), nil
}

// Roles returns the authorization roles of an active account.
func (uc *GetAccountUseCase) Roles(ctx context.Context, sid string) ([]string, error) {
	acct, err := loadActiveAccount(ctx, uc.accountRepo, sid)
	if err != nil {
		return nil, err
	}
	return acct.Roles(), nil
}
