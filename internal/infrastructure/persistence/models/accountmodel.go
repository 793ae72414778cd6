package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
)

// AccountModel is the persistence model for accounts.
// DeletedAt is a plain column rather than gorm.DeletedAt: soft-deleted rows
// must stay visible to ListAll and GetByEmail.
type AccountModel struct {
	ID            uint      `gorm:"primarykey"`
	SID           string    `gorm:"column:sid;uniqueIndex;not null;size:32"`
	Email         string    `gorm:"uniqueIndex;not null;size:254"`
	PasswordHash  *string   `gorm:"size:255"`
	FirstName     string    `gorm:"not null;default:'';size:150"`
	LastName      string    `gorm:"not null;default:'';size:150"`
	IsActive      bool      `gorm:"not null;default:false;index:idx_accounts_active"`
	IsStaff       bool      `gorm:"not null;default:false"`
	IsSuperuser   bool      `gorm:"not null;default:false"`
	EmailVerified bool      `gorm:"not null;default:false"`
	DateJoined    time.Time `gorm:"not null"`
	LastLogin     *time.Time
	DeletedAt     *time.Time `gorm:"index"`
	UpdatedAt     time.Time
	Version       int `gorm:"not null;default:1"`
}

func (AccountModel) TableName() string {
	return constants.TableAccounts
}

func (a *AccountModel) BeforeCreate(tx *gorm.DB) error {
	if a.Version == 0 {
		a.Version = 1
	}
	return nil
}
