package mappers

import (
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
)

// AccountMapper converts between the account aggregate and its row.
type AccountMapper interface {
	ToEntity(model *models.AccountModel) (*account.Account, error)
	ToModel(entity *account.Account) (*models.AccountModel, error)
	ToEntities(models []*models.AccountModel) ([]*account.Account, error)
}

type AccountMapperImpl struct{}

func NewAccountMapper() AccountMapper {
	return &AccountMapperImpl{}
}

func (m *AccountMapperImpl) ToEntity(model *models.AccountModel) (*account.Account, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := account.Reconstruct(account.Data{
		ID:            model.ID,
		SID:           model.SID,
		Email:         model.Email,
		FirstName:     model.FirstName,
		LastName:      model.LastName,
		PasswordHash:  model.PasswordHash,
		IsActive:      model.IsActive,
		IsStaff:       model.IsStaff,
		IsSuperuser:   model.IsSuperuser,
		EmailVerified: model.EmailVerified,
		DateJoined:    model.DateJoined,
		LastLogin:     model.LastLogin,
		DeletedAt:     model.DeletedAt,
		UpdatedAt:     model.UpdatedAt,
		Version:       model.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct account %d: %w", model.ID, err)
	}
	return entity, nil
}

func (m *AccountMapperImpl) ToModel(entity *account.Account) (*models.AccountModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("account entity is nil")
	}

	d := entity.Data()
	return &models.AccountModel{
		ID:            d.ID,
		SID:           d.SID,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		IsActive:      d.IsActive,
		IsStaff:       d.IsStaff,
		IsSuperuser:   d.IsSuperuser,
		EmailVerified: d.EmailVerified,
		DateJoined:    d.DateJoined,
		LastLogin:     d.LastLogin,
		DeletedAt:     d.DeletedAt,
		UpdatedAt:     d.UpdatedAt,
		Version:       d.Version,
	}, nil
}

func (m *AccountMapperImpl) ToEntities(rows []*models.AccountModel) ([]*account.Account, error) {
	entities := make([]*account.Account, 0, len(rows))
	for _, row := range rows {
		entity, err := m.ToEntity(row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
