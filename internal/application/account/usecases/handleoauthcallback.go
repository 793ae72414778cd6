package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/retry"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/utils"
)

type OAuthCallbackCommand struct {
	Provider string
	Code     string
	State    string
}

type OAuthCallbackResult struct {
	Account    *account.Account
	Tokens     *token.Pair
	RedirectTo string
	// Created is set when this login created the account.
	Created bool
}

// HandleOAuthCallbackUseCase finishes a provider login. The account is
// resolved through the existing link first, then a local account with the
// same verified email, and is created otherwise.
type HandleOAuthCallbackUseCase struct {
	providers   ProviderLookup
	stateStore  account.OAuthStateStore
	accountRepo account.Repository
	linkRepo    account.SocialLinkRepository
	tokens      TokenService
	txManager   TransactionRunner
	retry       retry.Policy
	now         biztime.Clock
	logger      logger.Interface
}

func NewHandleOAuthCallbackUseCase(
	providers ProviderLookup,
	stateStore account.OAuthStateStore,
	accountRepo account.Repository,
	linkRepo account.SocialLinkRepository,
	tokens TokenService,
	txManager TransactionRunner,
	retryPolicy retry.Policy,
	logger logger.Interface,
) *HandleOAuthCallbackUseCase {
	return &HandleOAuthCallbackUseCase{
		providers:   providers,
		stateStore:  stateStore,
		accountRepo: accountRepo,
		linkRepo:    linkRepo,
		tokens:      tokens,
		txManager:   txManager,
		retry:       retryPolicy,
		now:         biztime.NowUTC,
		logger:      logger,
	}
}

func (uc *HandleOAuthCallbackUseCase) Execute(ctx context.Context, cmd OAuthCallbackCommand) (*OAuthCallbackResult, error) {
	name := strings.ToLower(cmd.Provider)
	provider, err := lookupProvider(uc.providers, name)
	if err != nil {
		return nil, err
	}
	if cmd.Code == "" || cmd.State == "" {
		return nil, errors.NewInvalidStateError("code and state are required")
	}

	state, err := uc.stateStore.Consume(ctx, cmd.State)
	if err != nil {
		if stderrors.Is(err, account.ErrOAuthStateNotFound) {
			uc.logger.Warnw("oauth callback with unknown state", "provider", name)
			return nil, errors.NewInvalidStateError()
		}
		uc.logger.Errorw("failed to consume oauth state", "error", err, "provider", name)
		return nil, errors.NewInternalError("failed to complete oauth login")
	}
	if state.Provider != name {
		uc.logger.Warnw("oauth state issued for another provider", "provider", name, "state_provider", state.Provider)
		return nil, errors.NewInvalidStateError("state was issued for another provider")
	}

	var accessToken string
	err = uc.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		accessToken, err = provider.Exchange(ctx, cmd.Code, state.CodeVerifier)
		return err
	})
	if err != nil {
		uc.logger.Warnw("oauth code exchange failed", "error", err, "provider", name)
		return nil, errors.NewProviderError(name, err.Error())
	}

	var identity *account.ExternalIdentity
	err = uc.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		identity, err = provider.FetchIdentity(ctx, accessToken)
		return err
	})
	if err != nil {
		uc.logger.Warnw("oauth profile fetch failed", "error", err, "provider", name)
		return nil, errors.NewProviderError(name, err.Error())
	}

	result := &OAuthCallbackResult{RedirectTo: state.RedirectTo}
	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		acct, created, err := uc.resolveAccount(ctx, name, identity)
		if err != nil {
			return err
		}
		if err := acct.CanAuthenticate(); err != nil {
			return err
		}
		acct.RecordLogin(uc.now())
		if err := uc.accountRepo.Update(ctx, acct); err != nil {
			return err
		}
		result.Account, result.Created = acct, created
		return nil
	})
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to resolve oauth account", "error", err, "provider", name)
		return nil, fmt.Errorf("failed to complete oauth login: %w", err)
	}

	pair, err := uc.tokens.IssuePair(result.Account.SID())
	if err != nil {
		uc.logger.Errorw("failed to issue tokens", "error", err, "sid", result.Account.SID())
		return nil, errors.NewInternalError("failed to issue tokens")
	}
	result.Tokens = pair

	uc.logger.Infow("oauth login succeeded",
		"provider", name,
		"sid", result.Account.SID(),
		"created", result.Created,
	)
	return result, nil
}

func (uc *HandleOAuthCallbackUseCase) resolveAccount(ctx context.Context, provider string, identity *account.ExternalIdentity) (*account.Account, bool, error) {
	now := uc.now()

	link, err := uc.linkRepo.GetByProviderSubject(ctx, provider, identity.SubjectID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get social link: %w", err)
	}
	if link != nil {
		acct, err := uc.accountRepo.GetByID(ctx, link.AccountID())
		if err != nil {
			return nil, false, fmt.Errorf("failed to get linked account: %w", err)
		}
		if acct == nil {
			return nil, false, fmt.Errorf("social link %d points to a missing account", link.ID())
		}
		if acct.IsDeleted() || !acct.IsActive() {
			return nil, false, errors.NewAccountInactiveError()
		}
		link.RecordLogin(identity.Email, identity.Raw, now)
		if err := uc.linkRepo.Update(ctx, link); err != nil {
			return nil, false, fmt.Errorf("failed to update social link: %w", err)
		}
		return acct, false, nil
	}

	if identity.Email == "" || !identity.EmailVerified {
		return nil, false, errors.NewEmailNotVerifiedUpstreamError(provider)
	}
	email, err := vo.NewEmail(identity.Email)
	if err != nil {
		return nil, false, errors.NewProviderError(provider, "provider returned an invalid email")
	}

	created := false
	acct, err := uc.accountRepo.GetByEmail(ctx, email.String())
	if err != nil {
		return nil, false, fmt.Errorf("failed to get account by email: %w", err)
	}
	if acct != nil {
		if acct.IsDeleted() {
			return nil, false, errors.NewAccountInactiveError()
		}
		// The provider vouches for the address, which is what verification proves.
		if err := acct.MarkEmailVerified(now); err != nil {
			return nil, false, err
		}
		if err := uc.accountRepo.Update(ctx, acct); err != nil {
			return nil, false, err
		}
	} else {
		acct, err = account.NewSocialAccount(email, identity.FirstName, identity.LastName, now)
		if err != nil {
			return nil, false, err
		}
		if err := uc.accountRepo.Create(ctx, acct); err != nil {
			return nil, false, err
		}
		created = true
	}

	link, err = account.NewSocialLink(acct.ID(), provider, identity.SubjectID, email.String(), identity.Raw, now)
	if err != nil {
		return nil, false, err
	}
	link.RecordLogin(email.String(), identity.Raw, now)
	if err := uc.linkRepo.Create(ctx, link); err != nil {
		return nil, false, fmt.Errorf("failed to create social link: %w", err)
	}

	uc.logger.Infow("social account linked",
		"provider", provider,
		"sid", acct.SID(),
		"email", utils.MaskEmail(email.String()),
		"created", created,
	)
	return acct, created, nil
}
