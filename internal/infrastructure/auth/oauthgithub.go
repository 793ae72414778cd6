package auth

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/oauth2/github"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
)

const githubAPIBaseURL = "https://api.github.com"

type GitHubProvider struct {
	baseProvider
	apiBaseURL string
}

type githubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func NewGitHubProvider(opts ProviderOptions) *GitHubProvider {
	base := opts.APIBaseURL
	if base == "" {
		base = githubAPIBaseURL
	}
	return &GitHubProvider{
		baseProvider: newBaseProvider("github", opts, github.Endpoint, []string{"read:user", "user:email"}),
		apiBaseURL:   strings.TrimRight(base, "/"),
	}
}

// FetchIdentity reads /user and takes the email and its verified flag from
// /user/emails, since the public profile email carries no verification state.
func (p *GitHubProvider) FetchIdentity(ctx context.Context, accessToken string) (*account.ExternalIdentity, error) {
	var info githubUserInfo
	if err := p.getJSON(ctx, p.apiBaseURL+"/user", accessToken, &info); err != nil {
		return nil, err
	}

	var emails []githubEmail
	if err := p.getJSON(ctx, p.apiBaseURL+"/user/emails", accessToken, &emails); err != nil {
		return nil, err
	}
	email, verified := pickGitHubEmail(info.Email, emails)

	first, last := splitName(info.Name)
	return &account.ExternalIdentity{
		Provider:      p.name,
		SubjectID:     strconv.FormatInt(info.ID, 10),
		Email:         email,
		EmailVerified: verified,
		FirstName:     first,
		LastName:      last,
		Picture:       info.AvatarURL,
		Raw: map[string]any{
			"login":      info.Login,
			"name":       info.Name,
			"avatar_url": info.AvatarURL,
		},
	}, nil
}

// pickGitHubEmail prefers the public email when it is listed, then the primary
// address, then the first listed one.
func pickGitHubEmail(public string, emails []githubEmail) (string, bool) {
	if public != "" {
		for _, e := range emails {
			if strings.EqualFold(e.Email, public) {
				return e.Email, e.Verified
			}
		}
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email, e.Verified
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, emails[0].Verified
	}
	return public, false
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	first, last, _ := strings.Cut(full, " ")
	return first, strings.TrimSpace(last)
}
