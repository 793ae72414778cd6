package models

import (
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
)

type VerificationTokenModel struct {
	ID         uint      `gorm:"primarykey"`
	AccountID  uint      `gorm:"not null;index:idx_verification_tokens_account_purpose,priority:1"`
	Purpose    string    `gorm:"not null;size:32;index:idx_verification_tokens_account_purpose,priority:2"`
	TokenHash  string    `gorm:"not null;size:64;uniqueIndex"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

func (VerificationTokenModel) TableName() string {
	return constants.TableVerificationTokens
}
