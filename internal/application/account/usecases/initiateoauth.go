package usecases

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/auth"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const oauthStateBytes = 32

type InitiateOAuthCommand struct {
	Provider string
	// RedirectTo is an optional frontend path to land on after login.
	RedirectTo string
}

type InitiateOAuthUseCase struct {
	providers  ProviderLookup
	stateStore account.OAuthStateStore
	now        biztime.Clock
	logger     logger.Interface
}

func NewInitiateOAuthUseCase(providers ProviderLookup, stateStore account.OAuthStateStore, logger logger.Interface) *InitiateOAuthUseCase {
	return &InitiateOAuthUseCase{
		providers:  providers,
		stateStore: stateStore,
		now:        biztime.NowUTC,
		logger:     logger,
	}
}

// Execute returns the provider consent URL. The state and PKCE verifier stay
// server-side until the callback consumes them.
func (uc *InitiateOAuthUseCase) Execute(ctx context.Context, cmd InitiateOAuthCommand) (string, error) {
	name := strings.ToLower(cmd.Provider)
	provider, err := lookupProvider(uc.providers, name)
	if err != nil {
		return "", err
	}
	if cmd.RedirectTo != "" && !isRelativePath(cmd.RedirectTo) {
		return "", errors.NewValidationError("redirect must be a relative path")
	}

	state, err := newOAuthState()
	if err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	err = uc.stateStore.Save(ctx, state, account.OAuthState{
		Provider:     name,
		CodeVerifier: verifier,
		RedirectTo:   cmd.RedirectTo,
		CreatedAt:    uc.now(),
	})
	if err != nil {
		uc.logger.Errorw("failed to store oauth state", "error", err, "provider", name)
		return "", errors.NewInternalError("failed to start oauth login")
	}

	return provider.AuthURL(state, verifier), nil
}

func lookupProvider(providers ProviderLookup, name string) (auth.Provider, error) {
	provider, err := providers.Get(name)
	if err != nil {
		if stderrors.Is(err, auth.ErrOAuthNotConfigured) {
			return nil, errors.NewNotFoundError("oauth provider not available", name)
		}
		return nil, err
	}
	return provider, nil
}

func newOAuthState() (string, error) {
	b := make([]byte, oauthStateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// isRelativePath rejects absolute and protocol-relative URLs so the callback
// cannot be turned into an open redirect.
func isRelativePath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
