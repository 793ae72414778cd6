package usecases

import (
	"context"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/query"
)

// ListAccountsUseCase backs the admin account listing
type ListAccountsUseCase struct {
	accountRepo account.Repository
	logger      logger.Interface
}

func NewListAccountsUseCase(accountRepo account.Repository, logger logger.Interface) *ListAccountsUseCase {
	return &ListAccountsUseCase{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (uc *ListAccountsUseCase) Execute(ctx context.Context, req dto.ListAccountsRequest) (*dto.ListAccountsResponse, error) {
	page := query.PageFilter{Page: req.Page, PageSize: req.PageSize}
	if page.Page <= 0 {
		page.Page = 1
	}

	accounts, total, err := uc.accountRepo.List(ctx, account.ListFilter{
		Page:     page.Page,
		PageSize: page.Limit(),
		Search:   req.Search,
		Active:   req.Active,
		OrderBy:  req.OrderBy,
		Order:    req.Order,
	})
	if err != nil {
		uc.logger.Errorw("failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	items := make([]*dto.AdminAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, dto.ToAdminAccountResponse(a))
	}

	return &dto.ListAccountsResponse{
		Accounts: items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.Limit(),
	}, nil
}
