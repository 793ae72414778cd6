package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/usecases"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

// AccountHandler serves the authenticated account's own endpoints.
type AccountHandler struct {
	getAccountUseCase     getAccountUseCase
	updateProfileUseCase  updateProfileUseCase
	deleteAccountUseCase  deleteOwnAccountUseCase
	changePasswordUseCase changePasswordUseCase
	cookies               utils.CookiePolicy
	logger                logger.Interface
}

func NewAccountHandler(
	getAccountUC getAccountUseCase,
	updateProfileUC updateProfileUseCase,
	deleteAccountUC deleteOwnAccountUseCase,
	changePasswordUC changePasswordUseCase,
	cookies utils.CookiePolicy,
	logger logger.Interface,
) *AccountHandler {
	return &AccountHandler{
		getAccountUseCase:     getAccountUC,
		updateProfileUseCase:  updateProfileUC,
		deleteAccountUseCase:  deleteAccountUC,
		changePasswordUseCase: changePasswordUC,
		cookies:               cookies,
		logger:                logger,
	}
}

// GetCurrent handles GET /api/auth/user
//
//	@Summary	Current account
//	@Tags		account
//	@Produce	json
//	@Security	Bearer
//	@Success	200	{object}	utils.APIResponse{data=dto.AccountResponse}
//	@Failure	401	{object}	utils.APIResponse
//	@Router		/api/auth/user [get]
func (h *AccountHandler) GetCurrent(c *gin.Context) {
	sid, ok := currentAccountSID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	resp, err := h.getAccountUseCase.ExecuteBySID(c.Request.Context(), sid)
	if err != nil {
		h.logger.Errorw("failed to get current account", "account_sid", sid, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// UpdateCurrent handles PATCH /api/auth/user
//
//	@Summary	Update first and last name
//	@Tags		account
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		request	body		dto.UpdateProfileRequest	true	"Profile fields"
//	@Success	200		{object}	utils.APIResponse{data=dto.AccountResponse}
//	@Failure	400		{object}	utils.APIResponse
//	@Failure	401		{object}	utils.APIResponse
//	@Router		/api/auth/user [patch]
func (h *AccountHandler) UpdateCurrent(c *gin.Context) {
	sid, ok := currentAccountSID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update profile", "account_sid", sid, "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	resp, err := h.updateProfileUseCase.Execute(c.Request.Context(), sid, req)
	if err != nil {
		h.logger.Warnw("failed to update profile", "account_sid", sid, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "profile updated", resp)
}

// DeleteCurrent handles DELETE /api/auth/user. The account is soft-deleted,
// the presented tokens are revoked and the cookies cleared.
//
//	@Summary	Delete the current account
//	@Tags		account
//	@Produce	json
//	@Security	Bearer
//	@Success	200	{object}	utils.APIResponse
//	@Failure	401	{object}	utils.APIResponse
//	@Router		/api/auth/user [delete]
func (h *AccountHandler) DeleteCurrent(c *gin.Context) {
	sid, ok := currentAccountSID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	err := h.deleteAccountUseCase.ExecuteSelf(c.Request.Context(), usecases.DeleteOwnAccountCommand{
		AccountSID:   sid,
		AccessToken:  utils.GetAccessToken(c),
		RefreshToken: utils.GetTokenFromCookie(c, utils.RefreshTokenCookie),
	})
	if err != nil {
		h.logger.Errorw("failed to delete account", "account_sid", sid, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.cookies.ClearAuthCookies(c)
	utils.SuccessResponse(c, http.StatusOK, "account deleted", nil)
}

// ChangePassword handles POST /api/auth/password/change
//
//	@Summary	Change password
//	@Tags		account
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		request	body		dto.PasswordChangeRequest	true	"Passwords"
//	@Success	200		{object}	utils.APIResponse
//	@Failure	400		{object}	utils.APIResponse
//	@Failure	401		{object}	utils.APIResponse
//	@Router		/api/auth/password/change [post]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	sid, ok := currentAccountSID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dto.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	err := h.changePasswordUseCase.Execute(c.Request.Context(), usecases.ChangePasswordCommand{
		AccountSID:   sid,
		OldPassword:  req.OldPassword,
		NewPassword1: req.NewPassword1,
		NewPassword2: req.NewPassword2,
	})
	if err != nil {
		h.logger.Warnw("password change failed", "account_sid", sid, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "new password has been saved", nil)
}

func currentAccountSID(c *gin.Context) (string, bool) {
	sid := c.GetString(constants.ContextKeyAccountSID)
	return sid, sid != ""
}
