package account

import (
	"fmt"
	"strings"
	"time"
)

// SocialLink ties an account to an identity at an OAuth provider. An account
// has at most one link per provider.
type SocialLink struct {
	id                uint
	accountID         uint
	provider          string
	providerSubjectID string
	providerEmail     string
	extraData         map[string]any
	lastLoginAt       *time.Time
	loginCount        int
	createdAt         time.Time
	updatedAt         time.Time
}

// SocialLinkData is the persisted shape of a SocialLink.
type SocialLinkData struct {
	ID                uint
	AccountID         uint
	Provider          string
	ProviderSubjectID string
	ProviderEmail     string
	ExtraData         map[string]any
	LastLoginAt       *time.Time
	LoginCount        int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewSocialLink(accountID uint, provider, subjectID, email string, extra map[string]any, now time.Time) (*SocialLink, error) {
	if accountID == 0 {
		return nil, fmt.Errorf("account id is required")
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if subjectID == "" {
		return nil, fmt.Errorf("provider subject id is required")
	}
	return &SocialLink{
		accountID:         accountID,
		provider:          provider,
		providerSubjectID: subjectID,
		providerEmail:     email,
		extraData:         extra,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func ReconstructSocialLink(d SocialLinkData) *SocialLink {
	return &SocialLink{
		id:                d.ID,
		accountID:         d.AccountID,
		provider:          d.Provider,
		providerSubjectID: d.ProviderSubjectID,
		providerEmail:     d.ProviderEmail,
		extraData:         d.ExtraData,
		lastLoginAt:       d.LastLoginAt,
		loginCount:        d.LoginCount,
		createdAt:         d.CreatedAt,
		updatedAt:         d.UpdatedAt,
	}
}

func (l *SocialLink) Data() SocialLinkData {
	return SocialLinkData{
		ID:                l.id,
		AccountID:         l.accountID,
		Provider:          l.provider,
		ProviderSubjectID: l.providerSubjectID,
		ProviderEmail:     l.providerEmail,
		ExtraData:         l.extraData,
		LastLoginAt:       l.lastLoginAt,
		LoginCount:        l.loginCount,
		CreatedAt:         l.createdAt,
		UpdatedAt:         l.updatedAt,
	}
}

func (l *SocialLink) ID() uint                  { return l.id }
func (l *SocialLink) AccountID() uint           { return l.accountID }
func (l *SocialLink) Provider() string          { return l.provider }
func (l *SocialLink) ProviderSubjectID() string { return l.providerSubjectID }
func (l *SocialLink) ProviderEmail() string     { return l.providerEmail }
func (l *SocialLink) LoginCount() int           { return l.loginCount }
func (l *SocialLink) LastLoginAt() *time.Time   { return l.lastLoginAt }

func (l *SocialLink) SetID(id uint) {
	l.id = id
}

// RecordLogin refreshes the provider profile data seen at this login.
func (l *SocialLink) RecordLogin(email string, extra map[string]any, now time.Time) {
	t := now
	l.lastLoginAt = &t
	l.loginCount++
	if email != "" {
		l.providerEmail = email
	}
	if extra != nil {
		l.extraData = extra
	}
	l.updatedAt = now
}
