package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// UpdateProfileUseCase handles updating first and last name
type UpdateProfileUseCase struct {
	accountRepo account.Repository
	now         biztime.Clock
	logger      logger.Interface
}

func NewUpdateProfileUseCase(accountRepo account.Repository, logger logger.Interface) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{
		accountRepo: accountRepo,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

// Execute applies the fields present in the request and leaves the rest.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, sid string, req dto.UpdateProfileRequest) (*dto.AccountResponse, error) {
	acct, err := loadActiveAccount(ctx, uc.accountRepo, sid)
	if err != nil {
		return nil, err
	}

	first, last := acct.FirstName(), acct.LastName()
	if req.FirstName != nil {
		first = *req.FirstName
	}
	if req.LastName != nil {
		last = *req.LastName
	}
	if err := acct.UpdateProfile(first, last, uc.now()); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Update(ctx, acct); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to update profile", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	uc.logger.Infow("profile updated", "sid", sid)
	return dto.ToAccountResponse(acct), nil
}
