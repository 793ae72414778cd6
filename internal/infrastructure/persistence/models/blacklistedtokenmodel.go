package models

import (
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
)

// BlacklistedTokenModel holds revoked JWT ids. The unique jti index is what
// makes refresh rotation single-winner under concurrency.
type BlacklistedTokenModel struct {
	ID         uint      `gorm:"primarykey"`
	JTI        string    `gorm:"column:jti;not null;size:64;uniqueIndex"`
	TokenType  string    `gorm:"not null;size:16"`
	AccountSID string    `gorm:"column:account_sid;size:32;index"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

func (BlacklistedTokenModel) TableName() string {
	return constants.TableBlacklistedTokens
}
