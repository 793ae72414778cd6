package account

import (
	"context"
	"time"
)

// Repository is the Account Store. Lookups return (nil, nil) when nothing
// matches. Create fails with a DuplicateEmail error for a taken email.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uint) (*Account, error)
	GetBySID(ctx context.Context, sid string) (*Account, error)
	// GetByEmail finds active and inactive accounts alike.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, a *Account) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListActive(ctx context.Context) ([]*Account, error)
	ListAll(ctx context.Context) ([]*Account, error)
	List(ctx context.Context, filter ListFilter) ([]*Account, int64, error)
}

// ListFilter drives the admin listing.
type ListFilter struct {
	Page     int
	PageSize int
	// Search matches email, first name or last name.
	Search string
	// Active filters on is_active when set.
	Active  *bool
	OrderBy string
	Order   string
}

type SocialLinkRepository interface {
	Create(ctx context.Context, link *SocialLink) error
	GetByProviderSubject(ctx context.Context, provider, subjectID string) (*SocialLink, error)
	GetByAccountAndProvider(ctx context.Context, accountID uint, provider string) (*SocialLink, error)
	ListByAccount(ctx context.Context, accountID uint) ([]*SocialLink, error)
	Update(ctx context.Context, link *SocialLink) error
}

type VerificationTokenRepository interface {
	Create(ctx context.Context, token *VerificationToken) error
	GetByHash(ctx context.Context, purpose TokenPurpose, hash string) (*VerificationToken, error)
	// Consume marks the token used and reports whether this call did it.
	Consume(ctx context.Context, id uint, now time.Time) (bool, error)
	// ConsumeAllForAccount invalidates every outstanding token of purpose.
	ConsumeAllForAccount(ctx context.Context, accountID uint, purpose TokenPurpose, now time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
