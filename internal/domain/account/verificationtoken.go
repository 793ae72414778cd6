package account

import (
	"fmt"
	"time"

	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
)

// TokenPurpose distinguishes what a VerificationToken unlocks.
type TokenPurpose string

const (
	PurposeEmailVerify   TokenPurpose = "email-verify"
	PurposePasswordReset TokenPurpose = "password-reset"
)

func (p TokenPurpose) Valid() bool {
	return p == PurposeEmailVerify || p == PurposePasswordReset
}

// VerificationToken is a single-use emailed secret. Only the hash of the
// secret is kept.
type VerificationToken struct {
	id         uint
	accountID  uint
	purpose    TokenPurpose
	tokenHash  string
	expiresAt  time.Time
	consumedAt *time.Time
	createdAt  time.Time
}

// VerificationTokenData is the persisted shape of a VerificationToken.
type VerificationTokenData struct {
	ID         uint
	AccountID  uint
	Purpose    TokenPurpose
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// IssueVerificationToken creates a token and returns it with the plaintext
// secret to embed in the email link.
func IssueVerificationToken(accountID uint, purpose TokenPurpose, ttl time.Duration, now time.Time) (*VerificationToken, string, error) {
	if accountID == 0 {
		return nil, "", fmt.Errorf("account id is required")
	}
	if !purpose.Valid() {
		return nil, "", fmt.Errorf("unknown token purpose %q", purpose)
	}
	secret, err := vo.NewToken()
	if err != nil {
		return nil, "", err
	}
	return &VerificationToken{
		accountID: accountID,
		purpose:   purpose,
		tokenHash: secret.Hash(),
		expiresAt: now.Add(ttl),
		createdAt: now,
	}, secret.Value(), nil
}

func ReconstructVerificationToken(d VerificationTokenData) *VerificationToken {
	return &VerificationToken{
		id:         d.ID,
		accountID:  d.AccountID,
		purpose:    d.Purpose,
		tokenHash:  d.TokenHash,
		expiresAt:  d.ExpiresAt,
		consumedAt: d.ConsumedAt,
		createdAt:  d.CreatedAt,
	}
}

func (t *VerificationToken) Data() VerificationTokenData {
	return VerificationTokenData{
		ID:         t.id,
		AccountID:  t.accountID,
		Purpose:    t.purpose,
		TokenHash:  t.tokenHash,
		ExpiresAt:  t.expiresAt,
		ConsumedAt: t.consumedAt,
		CreatedAt:  t.createdAt,
	}
}

func (t *VerificationToken) ID() uint              { return t.id }
func (t *VerificationToken) AccountID() uint       { return t.accountID }
func (t *VerificationToken) Purpose() TokenPurpose { return t.purpose }
func (t *VerificationToken) TokenHash() string     { return t.tokenHash }
func (t *VerificationToken) ExpiresAt() time.Time  { return t.expiresAt }
func (t *VerificationToken) IsConsumed() bool      { return t.consumedAt != nil }

func (t *VerificationToken) SetID(id uint) {
	t.id = id
}

func (t *VerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.expiresAt)
}
