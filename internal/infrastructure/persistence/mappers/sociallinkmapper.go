package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
)

type SocialLinkMapper interface {
	ToEntity(model *models.SocialLinkModel) (*account.SocialLink, error)
	ToModel(entity *account.SocialLink) (*models.SocialLinkModel, error)
}

type SocialLinkMapperImpl struct{}

func NewSocialLinkMapper() SocialLinkMapper {
	return &SocialLinkMapperImpl{}
}

func (m *SocialLinkMapperImpl) ToEntity(model *models.SocialLinkModel) (*account.SocialLink, error) {
	if model == nil {
		return nil, nil
	}

	var extra map[string]any
	if len(model.ExtraData) > 0 {
		if err := json.Unmarshal(model.ExtraData, &extra); err != nil {
			return nil, fmt.Errorf("failed to decode social link extra data: %w", err)
		}
	}

	return account.ReconstructSocialLink(account.SocialLinkData{
		ID:                model.ID,
		AccountID:         model.AccountID,
		Provider:          model.Provider,
		ProviderSubjectID: model.ProviderSubjectID,
		ProviderEmail:     model.ProviderEmail,
		ExtraData:         extra,
		LastLoginAt:       model.LastLoginAt,
		LoginCount:        model.LoginCount,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}), nil
}

func (m *SocialLinkMapperImpl) ToModel(entity *account.SocialLink) (*models.SocialLinkModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("social link entity is nil")
	}

	d := entity.Data()
	var extra datatypes.JSON
	if d.ExtraData != nil {
		raw, err := json.Marshal(d.ExtraData)
		if err != nil {
			return nil, fmt.Errorf("failed to encode social link extra data: %w", err)
		}
		extra = datatypes.JSON(raw)
	}

	return &models.SocialLinkModel{
		ID:                d.ID,
		AccountID:         d.AccountID,
		Provider:          d.Provider,
		ProviderSubjectID: d.ProviderSubjectID,
		ProviderEmail:     d.ProviderEmail,
		ExtraData:         extra,
		LastLoginAt:       d.LastLoginAt,
		LoginCount:        d.LoginCount,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}
