package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/dto"
	"github.com/Mordecai-Wambua/User-Auth/internal/application/account/usecases"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/interfaces/http/handlers/testutil"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockRegisterUC struct {
	result *account.Account
	err    error
	got    usecases.RegisterCommand
}

func (m *mockRegisterUC) Execute(ctx context.Context, cmd usecases.RegisterCommand) (*account.Account, error) {
	m.got = cmd
	return m.result, m.err
}

type mockVerifyEmailUC struct {
	err error
	got string
}

func (m *mockVerifyEmailUC) Execute(ctx context.Context, cmd usecases.VerifyEmailCommand) (*account.Account, error) {
	m.got = cmd.Key
	return nil, m.err
}

type mockResendUC struct {
	err error
}

func (m *mockResendUC) Execute(ctx context.Context, cmd usecases.ResendVerificationCommand) error {
	return m.err
}

type mockLoginUC struct {
	result *usecases.LoginResult
	err    error
}

func (m *mockLoginUC) Execute(ctx context.Context, cmd usecases.LoginCommand) (*usecases.LoginResult, error) {
	return m.result, m.err
}

type mockRefreshUC struct {
	result *token.Pair
	err    error
	got    string
}

func (m *mockRefreshUC) Execute(ctx context.Context, cmd usecases.RefreshCommand) (*token.Pair, error) {
	m.got = cmd.RefreshToken
	return m.result, m.err
}

type mockLogoutUC struct {
	got   usecases.LogoutCommand
	calls int
}

func (m *mockLogoutUC) Execute(ctx context.Context, cmd usecases.LogoutCommand) {
	m.got = cmd
	m.calls++
}

type mockRequestResetUC struct {
	err error
}

func (m *mockRequestResetUC) Execute(ctx context.Context, cmd usecases.RequestPasswordResetCommand) error {
	return m.err
}

type mockResetPasswordUC struct {
	err error
	got usecases.ResetPasswordCommand
}

func (m *mockResetPasswordUC) Execute(ctx context.Context, cmd usecases.ResetPasswordCommand) error {
	m.got = cmd
	return m.err
}

type mockInitiateOAuthUC struct {
	url string
	err error
	got usecases.InitiateOAuthCommand
}

func (m *mockInitiateOAuthUC) Execute(ctx context.Context, cmd usecases.InitiateOAuthCommand) (string, error) {
	m.got = cmd
	return m.url, m.err
}

type mockHandleOAuthUC struct {
	result *usecases.OAuthCallbackResult
	err    error
	calls  int
}

func (m *mockHandleOAuthUC) Execute(ctx context.Context, cmd usecases.OAuthCallbackCommand) (*usecases.OAuthCallbackResult, error) {
	m.calls++
	return m.result, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

func createTestAccount() *account.Account {
	now := time.Now().UTC()
	hash := "$2a$04$hash"
	a, _ := account.Reconstruct(account.Data{
		ID:            1,
		SID:           "acct_test123",
		Email:         "alice@example.com",
		FirstName:     "Alice",
		LastName:      "Liddell",
		PasswordHash:  &hash,
		IsActive:      true,
		EmailVerified: true,
		DateJoined:    now,
		UpdatedAt:     now,
		Version:       1,
	})
	return a
}

func createTestPair() *token.Pair {
	now := time.Now().UTC()
	return &token.Pair{
		Access:  &token.Issued{Value: "access-value", Type: token.TypeAccess, JTI: "a1", ExpiresAt: now.Add(30 * time.Minute)},
		Refresh: &token.Issued{Value: "refresh-value", Type: token.TypeRefresh, JTI: "r1", ExpiresAt: now.Add(7 * 24 * time.Hour)},
	}
}

var testOAuthRedirects = config.OAuthConfig{
	SuccessRedirectURL: "https://app.example.com/auth/success",
	FailureRedirectURL: "https://app.example.com/auth/failure",
}

func newTestAuthHandler(ucs AuthUseCases) *AuthHandler {
	cookies := utils.NewCookiePolicy(config.CookieConfig{}, false, 30*time.Minute, 7*24*time.Hour)
	return NewAuthHandler(ucs, cookies, testOAuthRedirects, testutil.NewMockLogger())
}

// =====================================================================
// Registration
// =====================================================================

func TestAuthHandler_Register_Success(t *testing.T) {
	acct := createTestAccount()
	mockUC := &mockRegisterUC{result: acct}
	handler := newTestAuthHandler(AuthUseCases{Register: mockUC})

	reqBody := dto.RegisterRequest{
		Email:     "alice@example.com",
		Password1: "Secret123",
		Password2: "Secret123",
		FirstName: "Alice",
	}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/registration", reqBody)

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Secret123", mockUC.got.Password2)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var data dto.AccountResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, acct.SID(), data.ID)
	assert.Equal(t, "alice@example.com", data.Email)
}

func TestAuthHandler_Register_InvalidRequest(t *testing.T) {
	handler := newTestAuthHandler(AuthUseCases{})

	reqBody := map[string]string{"email": "not-an-email"}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/registration", reqBody)

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(errors.ErrorTypeValidation), resp.Error.Type)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mockUC := &mockRegisterUC{err: errors.NewDuplicateEmailError()}
	handler := newTestAuthHandler(AuthUseCases{Register: mockUC})

	reqBody := dto.RegisterRequest{Email: "alice@example.com", Password1: "Secret123", Password2: "Secret123"}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/registration", reqBody)

	handler.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(errors.ReasonDuplicateEmail), resp.Error.Reason)
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockUC := &mockVerifyEmailUC{}
		handler := newTestAuthHandler(AuthUseCases{VerifyEmail: mockUC})
		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/registration/verify-email", dto.VerifyEmailRequest{Key: "k1"})

		handler.VerifyEmail(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "k1", mockUC.got)
	})

	t.Run("expired", func(t *testing.T) {
		mockUC := &mockVerifyEmailUC{err: errors.NewVerificationExpiredError()}
		handler := newTestAuthHandler(AuthUseCases{VerifyEmail: mockUC})
		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/registration/verify-email", dto.VerifyEmailRequest{Key: "k1"})

		handler.VerifyEmail(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.Equal(t, string(errors.ReasonVerificationExpired), resp.Error.Reason)
	})
}

func TestAuthHandler_ResendEmail_DeliveryError(t *testing.T) {
	handler := newTestAuthHandler(AuthUseCases{ResendVerification: &mockResendUC{err: errors.NewDeliveryError()}})
	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/registration/resend-email", dto.EmailRequest{Email: "alice@example.com"})

	handler.ResendEmail(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// =====================================================================
// Login, refresh, logout
// =====================================================================

func TestAuthHandler_Login_SetsCookies(t *testing.T) {
	acct := createTestAccount()
	pair := createTestPair()
	handler := newTestAuthHandler(AuthUseCases{Login: &mockLoginUC{result: &usecases.LoginResult{Account: acct, Tokens: pair}}})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "alice@example.com", Password: "Secret123"})

	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)

	cookies := testutil.ResponseCookies(w)
	require.Contains(t, cookies, utils.AccessTokenCookie)
	require.Contains(t, cookies, utils.RefreshTokenCookie)
	assert.Equal(t, "access-value", cookies[utils.AccessTokenCookie].Value)
	assert.True(t, cookies[utils.AccessTokenCookie].HttpOnly)
	assert.True(t, cookies[utils.RefreshTokenCookie].HttpOnly)
	assert.Equal(t, 1800, cookies[utils.AccessTokenCookie].MaxAge)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data dto.LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, acct.SID(), data.User.ID)
	assert.Equal(t, "refresh-value", data.Tokens.Refresh)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason errors.Reason
	}{
		{"invalid credentials", errors.NewInvalidCredentialsError(), http.StatusUnauthorized, errors.ReasonInvalidCredentials},
		{"unverified", errors.NewEmailNotVerifiedError(), http.StatusForbidden, errors.ReasonEmailNotVerified},
		{"inactive", errors.NewAccountInactiveError(), http.StatusForbidden, errors.ReasonAccountInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestAuthHandler(AuthUseCases{Login: &mockLoginUC{err: tt.err}})
			c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "alice@example.com", Password: "x"})

			handler.Login(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, testutil.ResponseCookies(w))

			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.Equal(t, string(tt.wantReason), resp.Error.Reason)
		})
	}
}

func TestAuthHandler_Refresh_PrefersCookie(t *testing.T) {
	mockUC := &mockRefreshUC{result: createTestPair()}
	handler := newTestAuthHandler(AuthUseCases{Refresh: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/refresh", dto.RefreshRequest{Refresh: "from-body"})
	testutil.AddCookie(c, utils.RefreshTokenCookie, "from-cookie")

	handler.Refresh(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-cookie", mockUC.got)
	assert.Equal(t, "refresh-value", testutil.ResponseCookies(w)[utils.RefreshTokenCookie].Value)
}

func TestAuthHandler_Refresh_BodyFallback(t *testing.T) {
	mockUC := &mockRefreshUC{result: createTestPair()}
	handler := newTestAuthHandler(AuthUseCases{Refresh: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/refresh", dto.RefreshRequest{Refresh: "from-body"})

	handler.Refresh(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-body", mockUC.got)
}

func TestAuthHandler_Refresh_Blacklisted(t *testing.T) {
	handler := newTestAuthHandler(AuthUseCases{Refresh: &mockRefreshUC{err: errors.NewTokenBlacklistedError()}})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/refresh", nil)
	testutil.AddCookie(c, utils.RefreshTokenCookie, "reused")

	handler.Refresh(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, string(errors.ReasonTokenBlacklisted), resp.Error.Reason)
}

func TestAuthHandler_Logout_AlwaysClearsCookies(t *testing.T) {
	mockUC := &mockLogoutUC{}
	handler := newTestAuthHandler(AuthUseCases{Logout: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/logout", nil)
	testutil.AddCookie(c, utils.AccessTokenCookie, "acc")
	testutil.AddCookie(c, utils.RefreshTokenCookie, "ref")

	handler.Logout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockUC.calls)
	assert.Equal(t, "acc", mockUC.got.AccessToken)
	assert.Equal(t, "ref", mockUC.got.RefreshToken)

	cookies := testutil.ResponseCookies(w)
	assert.Equal(t, "", cookies[utils.AccessTokenCookie].Value)
	assert.True(t, cookies[utils.AccessTokenCookie].MaxAge < 0)
	assert.True(t, cookies[utils.RefreshTokenCookie].MaxAge < 0)
}

func TestAuthHandler_Logout_WithoutTokens(t *testing.T) {
	mockUC := &mockLogoutUC{}
	handler := newTestAuthHandler(AuthUseCases{Logout: mockUC})
	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/logout", nil)

	handler.Logout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mockUC.got.AccessToken)
}

// =====================================================================
// Password reset
// =====================================================================

func TestAuthHandler_PasswordReset(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		handler := newTestAuthHandler(AuthUseCases{RequestReset: &mockRequestResetUC{}})
		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/password/reset", dto.EmailRequest{Email: "alice@example.com"})
		handler.PasswordReset(c)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown email outside production", func(t *testing.T) {
		handler := newTestAuthHandler(AuthUseCases{RequestReset: &mockRequestResetUC{err: errors.NewNotFoundError("no account with this email")}})
		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/password/reset", dto.EmailRequest{Email: "nobody@example.com"})
		handler.PasswordReset(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthHandler_PasswordResetConfirm(t *testing.T) {
	mockUC := &mockResetPasswordUC{}
	handler := newTestAuthHandler(AuthUseCases{ResetPassword: mockUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/password/reset/confirm", dto.PasswordResetConfirmRequest{
		Token:        "tok",
		NewPassword1: "NewSecret123",
		NewPassword2: "NewSecret123",
	})

	handler.PasswordResetConfirm(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", mockUC.got.Token)
}

func TestAuthHandler_PasswordResetConfirm_MissingFields(t *testing.T) {
	handler := newTestAuthHandler(AuthUseCases{ResetPassword: &mockResetPasswordUC{}})
	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/password/reset/confirm", map[string]string{"token": "tok"})

	handler.PasswordResetConfirm(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// Social login
// =====================================================================

func TestAuthHandler_SocialLogin_Redirects(t *testing.T) {
	mockUC := &mockInitiateOAuthUC{url: "https://accounts.example.test/auth?state=abc"}
	handler := newTestAuthHandler(AuthUseCases{InitiateOAuth: mockUC})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/social/google/login?redirect_to=/dashboard", nil)
	testutil.SetURLParam(c, "provider", "google")

	handler.SocialLogin(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://accounts.example.test/auth?state=abc", w.Header().Get("Location"))
	assert.Equal(t, "google", mockUC.got.Provider)
	assert.Equal(t, "/dashboard", mockUC.got.RedirectTo)
}

func TestAuthHandler_SocialLogin_UnknownProvider(t *testing.T) {
	handler := newTestAuthHandler(AuthUseCases{InitiateOAuth: &mockInitiateOAuthUC{err: errors.NewNotFoundError("oauth provider not available")}})
	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/social/myspace/login", nil)
	testutil.SetURLParam(c, "provider", "myspace")

	handler.SocialLogin(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_SocialCallback_Success(t *testing.T) {
	result := &usecases.OAuthCallbackResult{Account: createTestAccount(), Tokens: createTestPair(), RedirectTo: "/dashboard?tab=1"}
	handler := newTestAuthHandler(AuthUseCases{HandleOAuth: &mockHandleOAuthUC{result: result}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/social/google/callback?code=c&state=s", nil)
	testutil.SetURLParam(c, "provider", "google")

	handler.SocialCallback(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/dashboard?tab=1", w.Header().Get("Location"))
	assert.Equal(t, "access-value", testutil.ResponseCookies(w)[utils.AccessTokenCookie].Value)
}

func TestAuthHandler_SocialCallback_DefaultSuccessURL(t *testing.T) {
	result := &usecases.OAuthCallbackResult{Account: createTestAccount(), Tokens: createTestPair()}
	handler := newTestAuthHandler(AuthUseCases{HandleOAuth: &mockHandleOAuthUC{result: result}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/social/google/callback?code=c&state=s", nil)
	testutil.SetURLParam(c, "provider", "google")

	handler.SocialCallback(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testOAuthRedirects.SuccessRedirectURL, w.Header().Get("Location"))
}

func TestAuthHandler_SocialCallback_FailureRedirect(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid state", errors.NewInvalidStateError(), "invalid_state"},
		{"provider error", errors.NewProviderError("google"), "provider_error"},
		{"upstream unverified", errors.NewEmailNotVerifiedUpstreamError(), "email_not_verified_upstream"},
		{"deleted account", errors.NewAccountInactiveError(), "account_inactive"},
		{"unexpected", assert.AnError, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestAuthHandler(AuthUseCases{HandleOAuth: &mockHandleOAuthUC{err: tt.err}})
			c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/social/google/callback?code=c&state=s", nil)
			testutil.SetURLParam(c, "provider", "google")

			handler.SocialCallback(c)

			require.Equal(t, http.StatusFound, w.Code)
			loc, err := url.Parse(w.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "/auth/failure", loc.Path)
			assert.Equal(t, tt.want, loc.Query().Get("error"))
			assert.Empty(t, testutil.ResponseCookies(w))
		})
	}
}

func TestAuthHandler_SocialCallback_ProviderDenied(t *testing.T) {
	mockUC := &mockHandleOAuthUC{}
	handler := newTestAuthHandler(AuthUseCases{HandleOAuth: mockUC})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/social/google/callback?error=access_denied", nil)
	testutil.SetURLParam(c, "provider", "google")

	handler.SocialCallback(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=access_denied")
	assert.Equal(t, 0, mockUC.calls)
}

func TestAuthHandler_SocialComplete(t *testing.T) {
	result := &usecases.OAuthCallbackResult{Account: createTestAccount(), Tokens: createTestPair(), Created: true}
	handler := newTestAuthHandler(AuthUseCases{HandleOAuth: &mockHandleOAuthUC{result: result}})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/social/google/complete", dto.OAuthCompleteRequest{Code: "c", State: "s"})
	testutil.SetURLParam(c, "provider", "google")

	handler.SocialComplete(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data dto.LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "alice@example.com", data.User.Email)
	assert.Equal(t, "refresh-value", testutil.ResponseCookies(w)[utils.RefreshTokenCookie].Value)
}

func TestSuccessTarget(t *testing.T) {
	base := "https://app.example.com/auth/success"
	assert.Equal(t, base, successTarget(base, ""))
	assert.Equal(t, "https://app.example.com/settings", successTarget(base, "/settings"))
	assert.Equal(t, base, successTarget(base, "https://evil.example.com/"))
	assert.Equal(t, base, successTarget(base, "//evil.example.com/"))
	assert.Equal(t, "", successTarget("", "/settings"))
}
