package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.NoError(t, h.Verify("Secret123", hash))
	assert.ErrorIs(t, h.Verify("Secret124", hash), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Verify("Secret123", "not-a-hash"), ErrPasswordMismatch)

	again, err := h.Hash("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewBcryptPasswordHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordHasher(99).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordHasher(0).cost)
	assert.Equal(t, 12, NewBcryptPasswordHasher(12).cost)
}

func TestBcryptPasswordHasher_UsesConfiguredCost(t *testing.T) {
	hash, err := NewBcryptPasswordHasher(5).Hash("Secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}
