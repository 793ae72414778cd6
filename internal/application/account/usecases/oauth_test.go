package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/retry"
)

func googleIdentity(email string, verified bool) *account.ExternalIdentity {
	return &account.ExternalIdentity{
		Provider:      "google",
		SubjectID:     "109876543210",
		Email:         email,
		EmailVerified: verified,
		FirstName:     "Alice",
		LastName:      "Liddell",
		Raw:           map[string]any{"locale": "en"},
	}
}

// beginLogin runs the initiate step and returns the issued state.
func (e *env) beginLogin(redirectTo string) string {
	e.t.Helper()
	uc := NewInitiateOAuthUseCase(e.providers(), e.states, e.log)
	authURL, err := uc.Execute(context.Background(), InitiateOAuthCommand{Provider: "Google", RedirectTo: redirectTo})
	require.NoError(e.t, err)
	return stateFromURL(e.t, authURL)
}

func TestInitiateOAuthUseCase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := NewInitiateOAuthUseCase(e.providers(), e.states, e.log)

	authURL, err := uc.Execute(ctx, InitiateOAuthCommand{Provider: "google"})
	require.NoError(t, err)
	state := stateFromURL(t, authURL)
	assert.Len(t, state, 43)

	saved, err := e.states.Consume(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "google", saved.Provider)
	assert.NotEmpty(t, saved.CodeVerifier)

	_, err = uc.Execute(ctx, InitiateOAuthCommand{Provider: "myspace"})
	assert.True(t, errors.IsNotFoundError(err))

	for _, redirect := range []string{"https://evil.example", "//evil.example", "dashboard"} {
		_, err = uc.Execute(ctx, InitiateOAuthCommand{Provider: "google", RedirectTo: redirect})
		assert.True(t, errors.IsValidationError(err), redirect)
	}
}

func TestOAuthCallback_CreatesAccountOnFirstLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	state := e.beginLogin("/welcome")

	e.provider.On("Exchange", "code-1", mock.Anything).Return("provider-token", nil).Once()
	e.provider.On("FetchIdentity", "provider-token").Return(googleIdentity("Alice@Gmail.com", true), nil).Once()

	res, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "code-1", State: state})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "/welcome", res.RedirectTo)
	assert.Equal(t, "alice@gmail.com", res.Account.Email().String())
	assert.True(t, res.Account.IsActive())
	assert.True(t, res.Account.IsEmailVerified())
	assert.False(t, res.Account.HasPassword())
	require.NotNil(t, res.Tokens)

	link, err := e.links.GetByProviderSubject(ctx, "google", "109876543210")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, res.Account.ID(), link.AccountID())
	e.provider.AssertExpectations(t)

	// The state was single-use.
	_, err = e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "code-1", State: state})
	assert.ErrorIs(t, err, errors.ErrInvalidState)
}

func TestOAuthCallback_ReusesLinkedAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.provider.On("Exchange", mock.Anything, mock.Anything).Return("provider-token", nil)
	e.provider.On("FetchIdentity", "provider-token").Return(googleIdentity("alice@gmail.com", true), nil)

	first, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	require.NoError(t, err)
	second, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Account.SID(), second.Account.SID())

	link, err := e.links.GetByProviderSubject(ctx, "google", "109876543210")
	require.NoError(t, err)
	assert.Equal(t, 2, link.LoginCount())
}

func TestOAuthCallback_LinksExistingAccountByVerifiedEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Registered but never verified locally.
	registered, err := e.register().Execute(ctx, RegisterCommand{Email: "alice@gmail.com", Password1: strongPassword, Password2: strongPassword})
	require.NoError(t, err)

	e.provider.On("Exchange", mock.Anything, mock.Anything).Return("provider-token", nil)
	e.provider.On("FetchIdentity", "provider-token").Return(googleIdentity("alice@gmail.com", true), nil)

	res, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, registered.SID(), res.Account.SID())
	assert.True(t, res.Account.IsEmailVerified())
	assert.True(t, res.Account.HasPassword())
}

func TestOAuthCallback_UnverifiedUpstreamEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeAccount("alice@gmail.com")

	e.provider.On("Exchange", mock.Anything, mock.Anything).Return("provider-token", nil)
	e.provider.On("FetchIdentity", "provider-token").Return(googleIdentity("alice@gmail.com", false), nil)

	_, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	assert.ErrorIs(t, err, errors.ErrEmailNotVerifiedUpstream)

	link, err := e.links.GetByProviderSubject(ctx, "google", "109876543210")
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestOAuthCallback_DeletedLinkedAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.provider.On("Exchange", mock.Anything, mock.Anything).Return("provider-token", nil)
	e.provider.On("FetchIdentity", "provider-token").Return(googleIdentity("alice@gmail.com", true), nil)

	res, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	require.NoError(t, err)
	require.NoError(t, NewDeleteAccountUseCase(e.accounts, e.tokens, e.log).ExecuteBySID(ctx, "admin", res.Account.SID()))

	_, err = e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	assert.ErrorIs(t, err, errors.ErrAccountInactive)
	assert.Equal(t, 403, errors.GetAppError(err).Code)
}

func TestOAuthCallback_ProviderFailureIsRetriedOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.provider.On("Exchange", mock.Anything, mock.Anything).Return("", fmt.Errorf("connection reset")).Twice()

	_, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	assert.ErrorIs(t, err, errors.ErrProviderError)
	assert.Equal(t, 502, errors.GetAppError(err).Code)
	e.provider.AssertNumberOfCalls(t, "Exchange", 2)
}

func TestOAuthCallback_PermanentProviderFailureIsNotRetried(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.provider.On("Exchange", mock.Anything, mock.Anything).Return("", retry.Permanent(fmt.Errorf("invalid_grant"))).Once()

	_, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: e.beginLogin("")})
	assert.ErrorIs(t, err, errors.ErrProviderError)
	e.provider.AssertNumberOfCalls(t, "Exchange", 1)
}

func TestOAuthCallback_StateChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: "never-issued"})
	assert.ErrorIs(t, err, errors.ErrInvalidState)

	_, err = e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "", State: e.beginLogin("")})
	assert.ErrorIs(t, err, errors.ErrInvalidState)

	// A state issued for one provider cannot finish another.
	state := "issued-for-github"
	require.NoError(t, e.states.Save(ctx, state, account.OAuthState{Provider: "github", CodeVerifier: "v"}))
	_, err = e.oauthCallback().Execute(ctx, OAuthCallbackCommand{Provider: "google", Code: "c", State: state})
	assert.ErrorIs(t, err, errors.ErrInvalidState)

	e.provider.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
}
