package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
)

func TestLoginUseCase_Success(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acct := e.activeAccount("alice@example.com")

	res, err := e.login().Execute(ctx, LoginCommand{Email: "ALICE@example.com", Password: strongPassword})
	require.NoError(t, err)

	assert.Equal(t, acct.SID(), res.Account.SID())
	require.NotNil(t, res.Account.LastLogin())
	assert.True(t, e.clock.Now().Add(30*time.Minute).Equal(res.Tokens.Access.ExpiresAt))
	assert.True(t, e.clock.Now().Add(7*24*time.Hour).Equal(res.Tokens.Refresh.ExpiresAt))

	claims, err := e.tokens.Verify(ctx, res.Tokens.Access.Value, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, acct.SID(), claims.Subject)
}

func TestLoginUseCase_Failures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeAccount("alice@example.com")
	_, err := e.register().Execute(ctx, RegisterCommand{Email: "bob@example.com", Password1: strongPassword, Password2: strongPassword})
	require.NoError(t, err)

	tests := []struct {
		name string
		cmd  LoginCommand
		want error
	}{
		{"wrong password", LoginCommand{Email: "alice@example.com", Password: "Secret124"}, errors.ErrInvalidCredentials},
		{"unknown email", LoginCommand{Email: "nobody@example.com", Password: strongPassword}, errors.ErrInvalidCredentials},
		{"unverified email", LoginCommand{Email: "bob@example.com", Password: strongPassword}, errors.ErrEmailNotVerified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.login().Execute(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoginUseCase_DeletedAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acct := e.activeAccount("alice@example.com")

	del := NewDeleteAccountUseCase(e.accounts, e.tokens, e.log)
	require.NoError(t, del.ExecuteBySID(ctx, "admin", acct.SID()))

	_, err := e.login().Execute(ctx, LoginCommand{Email: "alice@example.com", Password: strongPassword})
	assert.ErrorIs(t, err, errors.ErrAccountInactive)
	assert.Equal(t, 403, errors.GetAppError(err).Code)
}

func TestRefreshUseCase_RotatesOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeAccount("alice@example.com")

	res, err := e.login().Execute(ctx, LoginCommand{Email: "alice@example.com", Password: strongPassword})
	require.NoError(t, err)

	uc := NewRefreshUseCase(e.accounts, e.tokens, e.log)
	pair, err := uc.Execute(ctx, RefreshCommand{RefreshToken: res.Tokens.Refresh.Value})
	require.NoError(t, err)
	assert.NotEqual(t, res.Tokens.Refresh.JTI, pair.Refresh.JTI)

	_, err = uc.Execute(ctx, RefreshCommand{RefreshToken: res.Tokens.Refresh.Value})
	assert.ErrorIs(t, err, errors.ErrTokenBlacklisted)

	_, err = uc.Execute(ctx, RefreshCommand{RefreshToken: pair.Refresh.Value})
	assert.NoError(t, err)
}

func TestRefreshUseCase_Rejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acct := e.activeAccount("alice@example.com")

	res, err := e.login().Execute(ctx, LoginCommand{Email: "alice@example.com", Password: strongPassword})
	require.NoError(t, err)
	uc := NewRefreshUseCase(e.accounts, e.tokens, e.log)

	_, err = uc.Execute(ctx, RefreshCommand{})
	assert.ErrorIs(t, err, errors.ErrInvalidRefreshToken)

	_, err = uc.Execute(ctx, RefreshCommand{RefreshToken: res.Tokens.Access.Value})
	assert.ErrorIs(t, err, errors.ErrInvalidRefreshToken)

	_, err = uc.Execute(ctx, RefreshCommand{RefreshToken: "not.a.jwt"})
	assert.ErrorIs(t, err, errors.ErrInvalidRefreshToken)

	del := NewDeleteAccountUseCase(e.accounts, e.tokens, e.log)
	require.NoError(t, del.ExecuteBySID(ctx, "admin", acct.SID()))
	_, err = uc.Execute(ctx, RefreshCommand{RefreshToken: res.Tokens.Refresh.Value})
	assert.ErrorIs(t, err, errors.ErrAccountInactive)
}

func TestLogoutUseCase_RevokesBothTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeAccount("alice@example.com")

	res, err := e.login().Execute(ctx, LoginCommand{Email: "alice@example.com", Password: strongPassword})
	require.NoError(t, err)

	NewLogoutUseCase(e.tokens, e.log).Execute(ctx, LogoutCommand{
		AccessToken:  res.Tokens.Access.Value,
		RefreshToken: res.Tokens.Refresh.Value,
	})

	_, err = e.tokens.Verify(ctx, res.Tokens.Access.Value, token.TypeAccess)
	assert.ErrorIs(t, err, errors.ErrTokenBlacklisted)

	_, err = NewRefreshUseCase(e.accounts, e.tokens, e.log).Execute(ctx, RefreshCommand{RefreshToken: res.Tokens.Refresh.Value})
	assert.ErrorIs(t, err, errors.ErrTokenBlacklisted)

	// Logging out without tokens, or twice, is fine.
	NewLogoutUseCase(e.tokens, e.log).Execute(ctx, LogoutCommand{RefreshToken: res.Tokens.Refresh.Value})
	NewLogoutUseCase(e.tokens, e.log).Execute(ctx, LogoutCommand{})
}
