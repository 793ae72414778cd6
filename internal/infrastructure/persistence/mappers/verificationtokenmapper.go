package mappers

import (
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
)

type VerificationTokenMapper interface {
	ToEntity(model *models.VerificationTokenModel) (*account.VerificationToken, error)
	ToModel(entity *account.VerificationToken) (*models.VerificationTokenModel, error)
}

type VerificationTokenMapperImpl struct{}

func NewVerificationTokenMapper() VerificationTokenMapper {
	return &VerificationTokenMapperImpl{}
}

func (m *VerificationTokenMapperImpl) ToEntity(model *models.VerificationTokenModel) (*account.VerificationToken, error) {
	if model == nil {
		return nil, nil
	}
	purpose := account.TokenPurpose(model.Purpose)
	if !purpose.Valid() {
		return nil, fmt.Errorf("unknown verification token purpose %q", model.Purpose)
	}
	return account.ReconstructVerificationToken(account.VerificationTokenData{
		ID:         model.ID,
		AccountID:  model.AccountID,
		Purpose:    purpose,
		TokenHash:  model.TokenHash,
		ExpiresAt:  model.ExpiresAt,
		ConsumedAt: model.ConsumedAt,
		CreatedAt:  model.CreatedAt,
	}), nil
}

func (m *VerificationTokenMapperImpl) ToModel(entity *account.VerificationToken) (*models.VerificationTokenModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("verification token entity is nil")
	}
	d := entity.Data()
	return &models.VerificationTokenModel{
		ID:         d.ID,
		AccountID:  d.AccountID,
		Purpose:    string(d.Purpose),
		TokenHash:  d.TokenHash,
		ExpiresAt:  d.ExpiresAt,
		ConsumedAt: d.ConsumedAt,
		CreatedAt:  d.CreatedAt,
	}, nil
}
