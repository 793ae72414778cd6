package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/id"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

type listAccountsUseCase interface {
	Execute(ctx context.Context, req dto.ListAccountsRequest) (*dto.ListAccountsResponse, error)
}

type deleteAccountUseCase interface {
	ExecuteBySID(ctx context.Context, actorSID, sid string) error
}

// AccountHandler handles admin account management requests
type AccountHandler struct {
	listUseCase   listAccountsUseCase
	deleteUseCase deleteAccountUseCase
	logger        logger.Interface
}

// NewAccountHandler creates a new admin account handler
func NewAccountHandler(listUC listAccountsUseCase, deleteUC deleteAccountUseCase, logger logger.Interface) *AccountHandler {
	return &AccountHandler{
		listUseCase:   listUC,
		deleteUseCase: deleteUC,
		logger:        logger,
	}
}

// List handles GET /api/admin/accounts
//
//	@Summary	List accounts
//	@Tags		admin
//	@Produce	json
//	@Security	Bearer
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Param		active		query		bool	false	"Filter by active flag"
//	@Param		search		query		string	false	"Search email and names"
//	@Param		order_by	query		string	false	"Sort column"	Enums(email, date_joined, last_login)
//	@Param		order		query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success	200			{object}	utils.APIResponse{data=utils.ListResponse}
//	@Failure	403			{object}	utils.APIResponse
//	@Router		/api/admin/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var req dto.ListAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}
	pagination := utils.ParsePagination(c)
	req.Page = pagination.Page
	req.PageSize = pagination.PageSize

	resp, err := h.listUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to list accounts", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, resp.Accounts, resp.Total, resp.Page, resp.PageSize)
}

// Delete handles DELETE /api/admin/accounts/:sid
//
//	@Summary	Soft-delete an account
//	@Tags		admin
//	@Produce	json
//	@Security	Bearer
//	@Param		sid	path		string	true	"Account ID"
//	@Success	200	{object}	utils.APIResponse
//	@Failure	400	{object}	utils.APIResponse
//	@Failure	403	{object}	utils.APIResponse
//	@Failure	404	{object}	utils.APIResponse
//	@Router		/api/admin/accounts/{sid} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	sid, err := utils.ParseSIDParam(c, "sid", id.PrefixAccount, "account")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	actor := c.GetString(constants.ContextKeyAccountSID)

	if err := h.deleteUseCase.ExecuteBySID(c.Request.Context(), actor, sid); err != nil {
		h.logger.Errorw("failed to delete account", "sid", sid, "actor", actor, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "account deleted", nil)
}
