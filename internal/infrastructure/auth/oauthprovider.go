package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/oauth2"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	sharedConfig "github.com/Mordecai-Wambua/User-Auth/internal/shared/config"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/retry"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxProfileBytes    = 1 << 20
)

// ErrOAuthNotConfigured is returned for a provider without credentials.
var ErrOAuthNotConfigured = errors.New("oauth provider not configured")

// ProviderOptions configures one OAuth provider client. Endpoint and the
// API base URL default to the provider's public endpoints.
type ProviderOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	APIBaseURL   string
	Timeout      time.Duration
}

// baseProvider holds what every authorization-code provider shares.
type baseProvider struct {
	name       string
	config     *oauth2.Config
	httpClient *http.Client
}

func newBaseProvider(name string, opts ProviderOptions, defaultEndpoint oauth2.Endpoint, scopes []string) baseProvider {
	endpoint := opts.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = defaultEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return baseProvider{
		name: name,
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *baseProvider) Name() string {
	return p.name
}

// AuthURL builds the consent URL with an S256 PKCE challenge for verifier.
func (p *baseProvider) AuthURL(state, verifier string) string {
	return p.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the authorization code for a provider access token.
func (p *baseProvider) Exchange(ctx context.Context, code, verifier string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		err = fmt.Errorf("failed to exchange code: %w", err)
		// A rejected code stays rejected; only transport and 5xx failures are retried.
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode < http.StatusInternalServerError {
			return "", retry.Permanent(err)
		}
		return "", err
	}
	return tok.AccessToken, nil
}

func (p *baseProvider) getJSON(ctx context.Context, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%s returned status %d: %s", p.name, resp.StatusCode, string(body))
		if resp.StatusCode < http.StatusInternalServerError {
			return retry.Permanent(err)
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", p.name, err)
	}
	return nil
}

// Provider is implemented by GoogleProvider and GitHubProvider.
type Provider interface {
	Name() string
	AuthURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (string, error)
	FetchIdentity(ctx context.Context, accessToken string) (*account.ExternalIdentity, error)
}

// ProviderRegistry resolves providers by name. Only providers with
// credentials are registered.
type ProviderRegistry struct {
	providers map[string]Provider
}

func NewProviderRegistry(providers ...Provider) *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// NewProviderRegistryFromConfig registers google and github when configured.
func NewProviderRegistryFromConfig(cfg sharedConfig.OAuthConfig, log logger.Interface) *ProviderRegistry {
	var providers []Provider
	if cfg.Google.Enabled() {
		providers = append(providers, NewGoogleProvider(ProviderOptions{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Timeout:      cfg.Timeout(),
		}))
		log.Infow("google oauth provider enabled", "redirect_url", cfg.Google.RedirectURL)
	}
	if cfg.GitHub.Enabled() {
		providers = append(providers, NewGitHubProvider(ProviderOptions{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  cfg.GitHub.RedirectURL,
			Timeout:      cfg.Timeout(),
		}))
		log.Infow("github oauth provider enabled", "redirect_url", cfg.GitHub.RedirectURL)
	}
	return NewProviderRegistry(providers...)
}

func (r *ProviderRegistry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOAuthNotConfigured, name)
	}
	return p, nil
}

func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
