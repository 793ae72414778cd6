package account

import (
	"context"
	"errors"
	"time"
)

// ExternalIdentity is the profile an OAuth provider returns for a login.
type ExternalIdentity struct {
	Provider      string
	SubjectID     string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	Picture       string
	// Raw keeps the provider's profile fields for the social link.
	Raw map[string]any
}

// ErrOAuthStateNotFound means the state was never issued, already used or expired.
var ErrOAuthStateNotFound = errors.New("oauth state not found or expired")

// OAuthState is what beginAuth keeps for completeAuth to pick up.
type OAuthState struct {
	Provider     string
	CodeVerifier string
	// RedirectTo is a frontend path to land on after login.
	RedirectTo string
	CreatedAt  time.Time
}

// OAuthStateStore holds pending OAuth states. Consume must hand a state to
// at most one caller.
type OAuthStateStore interface {
	Save(ctx context.Context, state string, s OAuthState) error
	Consume(ctx context.Context, state string) (*OAuthState, error)
}
