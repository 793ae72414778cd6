package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/mappers"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/db"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type VerificationTokenRepository struct {
	db     *gorm.DB
	mapper mappers.VerificationTokenMapper
	logger logger.Interface
}

func NewVerificationTokenRepository(gdb *gorm.DB, logger logger.Interface) *VerificationTokenRepository {
	return &VerificationTokenRepository{
		db:     gdb,
		mapper: mappers.NewVerificationTokenMapper(),
		logger: logger,
	}
}

func (r *VerificationTokenRepository) Create(ctx context.Context, token *account.VerificationToken) error {
	model, err := r.mapper.ToModel(token)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to store verification token", "purpose", model.Purpose, "error", err)
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	token.SetID(model.ID)
	return nil
}

func (r *VerificationTokenRepository) GetByHash(ctx context.Context, purpose account.TokenPurpose, hash string) (*account.VerificationToken, error) {
	var model models.VerificationTokenModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("purpose = ? AND token_hash = ?", string(purpose), hash).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

// Consume is a conditional UPDATE: of two concurrent callers only the one
// that flips consumed_at from NULL gets true.
func (r *VerificationTokenRepository) Consume(ctx context.Context, id uint, now time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.VerificationTokenModel{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", now)
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume verification token: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *VerificationTokenRepository) ConsumeAllForAccount(ctx context.Context, accountID uint, purpose account.TokenPurpose, now time.Time) error {
	err := db.GetTxFromContext(ctx, r.db).Model(&models.VerificationTokenModel{}).
		Where("account_id = ? AND purpose = ? AND consumed_at IS NULL", accountID, string(purpose)).
		Update("consumed_at", now).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate verification tokens: %w", err)
	}
	return nil
}

func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("expires_at < ?", before).
		Delete(&models.VerificationTokenModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired verification tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
