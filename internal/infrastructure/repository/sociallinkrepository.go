package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/mappers"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/db"
	apperrors "github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type SocialLinkRepository struct {
	db     *gorm.DB
	mapper mappers.SocialLinkMapper
	logger logger.Interface
}

func NewSocialLinkRepository(gdb *gorm.DB, logger logger.Interface) *SocialLinkRepository {
	return &SocialLinkRepository{
		db:     gdb,
		mapper: mappers.NewSocialLinkMapper(),
		logger: logger,
	}
}

func (r *SocialLinkRepository) Create(ctx context.Context, link *account.SocialLink) error {
	model, err := r.mapper.ToModel(link)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("social account is already linked")
		}
		r.logger.Errorw("failed to create social link", "provider", model.Provider, "error", err)
		return fmt.Errorf("failed to create social link: %w", err)
	}
	link.SetID(model.ID)
	return nil
}

func (r *SocialLinkRepository) GetByProviderSubject(ctx context.Context, provider, subjectID string) (*account.SocialLink, error) {
	return r.first(ctx, "provider = ? AND provider_subject_id = ?", strings.ToLower(provider), subjectID)
}

func (r *SocialLinkRepository) GetByAccountAndProvider(ctx context.Context, accountID uint, provider string) (*account.SocialLink, error) {
	return r.first(ctx, "account_id = ? AND provider = ?", accountID, strings.ToLower(provider))
}

func (r *SocialLinkRepository) first(ctx context.Context, where string, args ...any) (*account.SocialLink, error) {
	var model models.SocialLinkModel
	if err := db.GetTxFromContext(ctx, r.db).Where(where, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get social link: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SocialLinkRepository) ListByAccount(ctx context.Context, accountID uint) ([]*account.SocialLink, error) {
	var rows []*models.SocialLinkModel
	if err := db.GetTxFromContext(ctx, r.db).Where("account_id = ?", accountID).Order("provider ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list social links: %w", err)
	}
	links := make([]*account.SocialLink, 0, len(rows))
	for _, row := range rows {
		link, err := r.mapper.ToEntity(row)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

func (r *SocialLinkRepository) Update(ctx context.Context, link *account.SocialLink) error {
	model, err := r.mapper.ToModel(link)
	if err != nil {
		return err
	}
	result := db.GetTxFromContext(ctx, r.db).Model(&models.SocialLinkModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"provider_email": model.ProviderEmail,
			"extra_data":     model.ExtraData,
			"last_login_at":  model.LastLoginAt,
			"login_count":    model.LoginCount,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update social link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("social link not found")
	}
	return nil
}
