package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/usecases"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

// AuthHandler serves registration, login, token and social login endpoints.
type AuthHandler struct {
	registerUseCase      registerUseCase
	verifyEmailUseCase   verifyEmailUseCase
	resendUseCase        resendVerificationUseCase
	loginUseCase         loginUseCase
	refreshUseCase       refreshUseCase
	logoutUseCase        logoutUseCase
	requestResetUseCase  requestPasswordResetUseCase
	resetPasswordUseCase resetPasswordUseCase
	initiateOAuthUseCase initiateOAuthUseCase
	handleOAuthUseCase   handleOAuthCallbackUseCase
	cookies              utils.CookiePolicy
	oauthRedirects       config.OAuthConfig
	logger               logger.Interface
}

// AuthUseCases groups the use cases AuthHandler delegates to.
type AuthUseCases struct {
	Register           registerUseCase
	VerifyEmail        verifyEmailUseCase
	ResendVerification resendVerificationUseCase
	Login              loginUseCase
	Refresh            refreshUseCase
	Logout             logoutUseCase
	RequestReset       requestPasswordResetUseCase
	ResetPassword      resetPasswordUseCase
	InitiateOAuth      initiateOAuthUseCase
	HandleOAuth        handleOAuthCallbackUseCase
}

func NewAuthHandler(
	ucs AuthUseCases,
	cookies utils.CookiePolicy,
	oauthRedirects config.OAuthConfig,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		registerUseCase:      ucs.Register,
		verifyEmailUseCase:   ucs.VerifyEmail,
		resendUseCase:        ucs.ResendVerification,
		loginUseCase:         ucs.Login,
		refreshUseCase:       ucs.Refresh,
		logoutUseCase:        ucs.Logout,
		requestResetUseCase:  ucs.RequestReset,
		resetPasswordUseCase: ucs.ResetPassword,
		initiateOAuthUseCase: ucs.InitiateOAuth,
		handleOAuthUseCase:   ucs.HandleOAuth,
		cookies:              cookies,
		oauthRedirects:       oauthRedirects,
		logger:               logger,
	}
}

// Register handles POST /api/auth/registration
//
//	@Summary		Register an account
//	@Description	Creates an inactive account and mails a verification link
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequest	true	"Registration data"
//	@Success		201		{object}	utils.APIResponse{data=dto.AccountResponse}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		409		{object}	utils.APIResponse
//	@Router			/api/auth/registration [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	acct, err := h.registerUseCase.Execute(c.Request.Context(), usecases.RegisterCommand{
		Email:     req.Email,
		Password1: req.Password1,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.logger.Warnw("registration failed", "email", utils.MaskEmail(req.Email), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, dto.ToAccountResponse(acct), "verification e-mail sent")
}

// VerifyEmail handles POST /api/auth/registration/verify-email
//
//	@Summary	Confirm an email address
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.VerifyEmailRequest	true	"Verification key"
//	@Success	200		{object}	utils.APIResponse
//	@Failure	400		{object}	utils.APIResponse
//	@Router		/api/auth/registration/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	if _, err := h.verifyEmailUseCase.Execute(c.Request.Context(), usecases.VerifyEmailCommand{Key: req.Key}); err != nil {
		h.logger.Warnw("email verification failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "email verified", nil)
}

// ResendEmail handles POST /api/auth/registration/resend-email
//
//	@Summary	Resend the verification link
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.EmailRequest	true	"Email"
//	@Success	200		{object}	utils.APIResponse
//	@Failure	404		{object}	utils.APIResponse
//	@Failure	502		{object}	utils.APIResponse
//	@Router		/api/auth/registration/resend-email [post]
func (h *AuthHandler) ResendEmail(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	if err := h.resendUseCase.Execute(c.Request.Context(), usecases.ResendVerificationCommand{Email: req.Email}); err != nil {
		h.logger.Warnw("resend verification failed", "email", utils.MaskEmail(req.Email), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "verification e-mail sent", nil)
}

// Login handles POST /api/auth/login
//
//	@Summary		Log in with email and password
//	@Description	Sets the access_token and refresh_token cookies
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequest	true	"Credentials"
//	@Success		200		{object}	utils.APIResponse{data=dto.LoginResponse}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		401		{object}	utils.APIResponse
//	@Failure		403		{object}	utils.APIResponse
//	@Router			/api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), usecases.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Warnw("login failed", "email", utils.MaskEmail(req.Email), "ip", c.ClientIP(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.cookies.SetAuthCookies(c, result.Tokens.Access.Value, result.Tokens.Refresh.Value)
	utils.SuccessResponse(c, http.StatusOK, "login successful", dto.LoginResponse{
		User:   dto.ToAccountResponse(result.Account),
		Tokens: dto.ToTokenResponse(result.Tokens),
	})
}

// Refresh handles POST /api/auth/refresh
//
//	@Summary		Rotate the token pair
//	@Description	Reads the refresh_token cookie, falling back to the request body
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RefreshRequest	false	"Refresh token"
//	@Success		200		{object}	utils.APIResponse{data=dto.LoginResponse}
//	@Failure		401		{object}	utils.APIResponse
//	@Router			/api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh := utils.GetTokenFromCookie(c, utils.RefreshTokenCookie)
	if refresh == "" {
		var req dto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refresh = req.Refresh
		}
	}

	pair, err := h.refreshUseCase.Execute(c.Request.Context(), usecases.RefreshCommand{RefreshToken: refresh})
	if err != nil {
		h.logger.Warnw("token refresh failed", "ip", c.ClientIP(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.cookies.SetAuthCookies(c, pair.Access.Value, pair.Refresh.Value)
	utils.SuccessResponse(c, http.StatusOK, "token refreshed", dto.LoginResponse{
		Tokens: dto.ToTokenResponse(pair),
	})
}

// Logout handles POST /api/auth/logout. It always succeeds.
//
//	@Summary	Log out
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	utils.APIResponse
//	@Router		/api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh := utils.GetTokenFromCookie(c, utils.RefreshTokenCookie)
	if refresh == "" {
		var req dto.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refresh = req.Refresh
		}
	}

	h.logoutUseCase.Execute(c.Request.Context(), usecases.LogoutCommand{
		AccessToken:  utils.GetAccessToken(c),
		RefreshToken: refresh,
	})

	h.cookies.ClearAuthCookies(c)
	utils.SuccessResponse(c, http.StatusOK, "successfully logged out", nil)
}

// PasswordReset handles POST /api/auth/password/reset
//
//	@Summary	Request a password reset link
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.EmailRequest	true	"Email"
//	@Success	200		{object}	utils.APIResponse
//	@Failure	404		{object}	utils.APIResponse
//	@Failure	502		{object}	utils.APIResponse
//	@Router		/api/auth/password/reset [post]
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	if err := h.requestResetUseCase.Execute(c.Request.Context(), usecases.RequestPasswordResetCommand{Email: req.Email}); err != nil {
		h.logger.Warnw("password reset request failed", "email", utils.MaskEmail(req.Email), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "password reset e-mail has been sent", nil)
}

// PasswordResetConfirm handles POST /api/auth/password/reset/confirm
//
//	@Summary	Set a new password with a reset token
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.PasswordResetConfirmRequest	true	"Reset data"
//	@Success	200		{object}	utils.APIResponse
//	@Failure	400		{object}	utils.APIResponse
//	@Router		/api/auth/password/reset/confirm [post]
func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	err := h.resetPasswordUseCase.Execute(c.Request.Context(), usecases.ResetPasswordCommand{
		Token:        req.Token,
		NewPassword1: req.NewPassword1,
		NewPassword2: req.NewPassword2,
	})
	if err != nil {
		h.logger.Warnw("password reset failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "password has been reset with the new password", nil)
}

// SocialLogin handles GET /api/auth/social/:provider/login
//
//	@Summary	Start a provider login
//	@Tags		social
//	@Param		provider	path	string	true	"Provider name"	Enums(google, github)
//	@Param		redirect_to	query	string	false	"Frontend path to return to"
//	@Success	302
//	@Failure	400	{object}	utils.APIResponse
//	@Failure	404	{object}	utils.APIResponse
//	@Router		/api/auth/social/{provider}/login [get]
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	provider := c.Param("provider")

	authURL, err := h.initiateOAuthUseCase.Execute(c.Request.Context(), usecases.InitiateOAuthCommand{
		Provider:   provider,
		RedirectTo: c.Query("redirect_to"),
	})
	if err != nil {
		h.logger.Warnw("oauth initiation failed", "provider", provider, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// SocialCallback handles GET /api/auth/social/:provider/callback. The browser
// always ends on the frontend: the success page with cookies set, or the
// failure page with ?error=<reason>.
//
//	@Summary	Provider redirect target
//	@Tags		social
//	@Param		provider	path	string	true	"Provider name"
//	@Param		code		query	string	true	"Authorization code"
//	@Param		state		query	string	true	"State"
//	@Success	302
//	@Router		/api/auth/social/{provider}/callback [get]
func (h *AuthHandler) SocialCallback(c *gin.Context) {
	provider := c.Param("provider")

	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warnw("oauth provider returned error",
			"provider", provider,
			"error_code", errParam,
			"error_description", c.Query("error_description"),
		)
		h.redirectFailure(c, providerErrorCode(errParam), errors.NewProviderError(provider, errParam))
		return
	}

	result, err := h.handleOAuthUseCase.Execute(c.Request.Context(), usecases.OAuthCallbackCommand{
		Provider: provider,
		Code:     c.Query("code"),
		State:    c.Query("state"),
	})
	if err != nil {
		h.logger.Warnw("oauth callback failed", "provider", provider, "error", err)
		h.redirectFailure(c, failureCode(err), err)
		return
	}

	h.cookies.SetAuthCookies(c, result.Tokens.Access.Value, result.Tokens.Refresh.Value)

	target := successTarget(h.oauthRedirects.SuccessRedirectURL, result.RedirectTo)
	if target == "" {
		utils.SuccessResponse(c, http.StatusOK, "login successful", socialLoginResponse(result))
		return
	}
	c.Redirect(http.StatusFound, target)
}

// SocialComplete handles POST /api/auth/social/:provider/complete, the SPA
// variant of the callback where the frontend forwards code and state.
//
//	@Summary	Finish a provider login from a SPA
//	@Tags		social
//	@Accept		json
//	@Produce	json
//	@Param		provider	path		string						true	"Provider name"
//	@Param		request		body		dto.OAuthCompleteRequest	true	"Code and state"
//	@Success	200			{object}	utils.APIResponse{data=dto.LoginResponse}
//	@Failure	400			{object}	utils.APIResponse
//	@Failure	403			{object}	utils.APIResponse
//	@Failure	502			{object}	utils.APIResponse
//	@Router		/api/auth/social/{provider}/complete [post]
func (h *AuthHandler) SocialComplete(c *gin.Context) {
	provider := c.Param("provider")

	var req dto.OAuthCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.handleOAuthUseCase.Execute(c.Request.Context(), usecases.OAuthCallbackCommand{
		Provider: provider,
		Code:     req.Code,
		State:    req.State,
	})
	if err != nil {
		h.logger.Warnw("oauth completion failed", "provider", provider, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.cookies.SetAuthCookies(c, result.Tokens.Access.Value, result.Tokens.Refresh.Value)
	utils.SuccessResponse(c, http.StatusOK, "login successful", socialLoginResponse(result))
}

func (h *AuthHandler) redirectFailure(c *gin.Context, code string, err error) {
	base := h.oauthRedirects.FailureRedirectURL
	if base == "" {
		utils.ErrorResponseWithError(c, err)
		return
	}
	u, parseErr := url.Parse(base)
	if parseErr != nil {
		h.logger.Errorw("invalid oauth failure redirect url", "url", base, "error", parseErr)
		utils.ErrorResponseWithError(c, err)
		return
	}
	q := u.Query()
	q.Set("error", code)
	u.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, u.String())
}

func socialLoginResponse(result *usecases.OAuthCallbackResult) dto.LoginResponse {
	return dto.LoginResponse{
		User:   dto.ToAccountResponse(result.Account),
		Tokens: dto.ToTokenResponse(result.Tokens),
	}
}

// successTarget resolves the relative path saved at login start against the
// configured success URL.
func successTarget(base, redirectTo string) string {
	if base == "" || redirectTo == "" {
		return base
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return base
	}
	ref, err := url.Parse(redirectTo)
	if err != nil || ref.IsAbs() || ref.Host != "" {
		return base
	}
	return baseURL.ResolveReference(ref).String()
}

func failureCode(err error) string {
	if reason := errors.ReasonOf(err); reason != "" {
		return string(reason)
	}
	switch {
	case errors.IsNotFoundError(err):
		return "provider_not_available"
	case errors.IsValidationError(err):
		return "invalid_request"
	}
	return "server_error"
}

// providerErrorCode keeps the OAuth error codes a frontend can act on.
func providerErrorCode(code string) string {
	if strings.EqualFold(code, "access_denied") {
		return "access_denied"
	}
	return string(errors.ReasonProviderError)
}
