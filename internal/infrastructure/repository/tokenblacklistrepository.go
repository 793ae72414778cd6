package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	apperrors "github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// TokenBlacklistRepository is the SQL token blacklist, selected with
// auth.blacklist.store=database.
type TokenBlacklistRepository struct {
	db     *gorm.DB
	logger logger.Interface
	now    biztime.Clock
}

func NewTokenBlacklistRepository(gdb *gorm.DB, logger logger.Interface) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{
		db:     gdb,
		logger: logger,
		now:    biztime.NowUTC,
	}
}

// Add inserts the jti. A unique-index violation means someone else got
// there first and is reported as (false, nil).
func (r *TokenBlacklistRepository) Add(ctx context.Context, entry token.BlacklistEntry) (bool, error) {
	if entry.JTI == "" {
		return false, fmt.Errorf("jti cannot be empty")
	}
	model := &models.BlacklistedTokenModel{
		JTI:        entry.JTI,
		TokenType:  string(entry.Type),
		AccountSID: entry.AccountSID,
		ExpiresAt:  entry.ExpiresAt,
		CreatedAt:  r.now(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return false, nil
		}
		r.logger.Errorw("failed to blacklist token", "jti", entry.JTI, "error", err)
		return false, fmt.Errorf("failed to blacklist token: %w", err)
	}
	return true, nil
}

func (r *TokenBlacklistRepository) Contains(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlacklistedTokenModel{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}

// PurgeExpired drops entries whose tokens could no longer verify anyway.
func (r *TokenBlacklistRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.BlacklistedTokenModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge token blacklist: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Infow("purged expired blacklist entries", "count", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
