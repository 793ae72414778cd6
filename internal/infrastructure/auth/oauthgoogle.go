package auth

import (
	"context"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
)

const googleAPIBaseURL = "https://www.googleapis.com"

type GoogleProvider struct {
	baseProvider
	apiBaseURL string
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

func NewGoogleProvider(opts ProviderOptions) *GoogleProvider {
	base := opts.APIBaseURL
	if base == "" {
		base = googleAPIBaseURL
	}
	return &GoogleProvider{
		baseProvider: newBaseProvider("google", opts, google.Endpoint, []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		}),
		apiBaseURL: strings.TrimRight(base, "/"),
	}
}

func (p *GoogleProvider) FetchIdentity(ctx context.Context, accessToken string) (*account.ExternalIdentity, error) {
	var info googleUserInfo
	if err := p.getJSON(ctx, p.apiBaseURL+"/oauth2/v2/userinfo", accessToken, &info); err != nil {
		return nil, err
	}

	return &account.ExternalIdentity{
		Provider:      p.name,
		SubjectID:     info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		FirstName:     info.GivenName,
		LastName:      info.FamilyName,
		Picture:       info.Picture,
		Raw: map[string]any{
			"name":    info.Name,
			"picture": info.Picture,
			"locale":  info.Locale,
		},
	}, nil
}
