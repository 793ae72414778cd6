package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
)

// SocialLinkModel stores one provider identity per row. The two unique
// indexes enforce one identity per provider subject and one link per
// provider per account.
type SocialLinkModel struct {
	ID                uint           `gorm:"primarykey"`
	AccountID         uint           `gorm:"not null;uniqueIndex:idx_social_links_account_provider,priority:1"`
	Provider          string         `gorm:"not null;size:32;uniqueIndex:idx_social_links_account_provider,priority:2;uniqueIndex:idx_social_links_provider_subject,priority:1"`
	ProviderSubjectID string         `gorm:"column:provider_subject_id;not null;size:191;uniqueIndex:idx_social_links_provider_subject,priority:2"`
	ProviderEmail     string         `gorm:"size:254"`
	ExtraData         datatypes.JSON `gorm:"type:json"`
	LastLoginAt       *time.Time
	LoginCount        int `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (SocialLinkModel) TableName() string {
	return constants.TableSocialLinks
}
