package mappers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/infrastructure/persistence/models"
)

func TestAccountMapper_ToEntityRejectsUnsavedRow(t *testing.T) {
	_, err := NewAccountMapper().ToEntity(&models.AccountModel{Email: "a@example.com"})
	assert.Error(t, err)

	entity, err := NewAccountMapper().ToEntity(nil)
	assert.NoError(t, err)
	assert.Nil(t, entity)
}

func TestAccountMapper_KeepsNullPassword(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &models.AccountModel{
		ID:            7,
		SID:           "acct_abc",
		Email:         "bob@example.com",
		IsActive:      true,
		EmailVerified: true,
		DateJoined:    now,
		UpdatedAt:     now,
		Version:       3,
	}

	entity, err := NewAccountMapper().ToEntity(row)
	require.NoError(t, err)
	assert.False(t, entity.HasPassword())
	assert.Equal(t, "bob@example.com", entity.Email().String())

	back, err := NewAccountMapper().ToModel(entity)
	require.NoError(t, err)
	assert.Nil(t, back.PasswordHash)
	assert.Equal(t, 3, back.Version)
}

func TestSocialLinkMapper_ExtraDataAsJSON(t *testing.T) {
	now := time.Now().UTC()
	link, err := account.NewSocialLink(1, "GitHub", "42", "a@example.com", map[string]any{"login": "octo"}, now)
	require.NoError(t, err)

	row, err := NewSocialLinkMapper().ToModel(link)
	require.NoError(t, err)
	assert.Equal(t, "github", row.Provider)
	assert.JSONEq(t, `{"login":"octo"}`, string(row.ExtraData))

	back, err := NewSocialLinkMapper().ToEntity(row)
	require.NoError(t, err)
	assert.Equal(t, "octo", back.Data().ExtraData["login"])
}

func TestVerificationTokenMapper_RejectsUnknownPurpose(t *testing.T) {
	_, err := NewVerificationTokenMapper().ToEntity(&models.VerificationTokenModel{ID: 1, Purpose: "magic-link"})
	assert.Error(t, err)
}
