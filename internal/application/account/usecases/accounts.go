package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
)

// loadActiveAccount resolves the account behind an authenticated request.
// Deleted or deactivated accounts are refused even with a valid token.
func loadActiveAccount(ctx context.Context, repo account.Repository, sid string) (*account.Account, error) {
	acct, err := repo.GetBySID(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, errors.NewNotFoundError("account not found")
	}
	if acct.IsDeleted() || !acct.IsActive() {
		return nil, errors.NewAccountInactiveError()
	}
	return acct, nil
}
