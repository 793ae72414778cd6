package valueobjects

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrs(email, first, last string) []UserAttribute {
	return []UserAttribute{
		{Name: "email address", Value: email},
		{Name: "first name", Value: first},
		{Name: "last name", Value: last},
	}
}

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"acceptable", "Secret123", ""},
		{"long passphrase", "correct horse battery staple", ""},
		{"too short", "Ab1", "too short"},
		{"numeric only", "8675309123", "entirely numeric"},
		{"common", "Password123", "too common"},
		{"common ignores case", "LETMEIN", "too common"},
		{"similar to email", "johnsmith1", "too similar to the email address"},
		{"similar to first name", "Jonathon!", "too similar to the first name"},
		{"too long for bcrypt", strings.Repeat("x9", 40), "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.password, attrs("johnsmith@example.com", "Jonathon", "Smith")...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPasswordPolicy_CollectsEveryProblem(t *testing.T) {
	err := DefaultPasswordPolicy().Validate("123456")

	var violation *PolicyViolation
	require.True(t, errors.As(err, &violation))
	assert.Len(t, violation.Problems, 3)
}

func TestPasswordPolicy_CustomMinLength(t *testing.T) {
	policy := &PasswordPolicy{MinLength: 12, MaxSimilarity: 0.7}

	assert.Error(t, policy.Validate("Secret123"))
	assert.NoError(t, policy.Validate("Secret123-long"))
}

func TestQuickRatio(t *testing.T) {
	assert.InDelta(t, 1.0, quickRatio("abc", "cba"), 0.0001)
	assert.InDelta(t, 0.0, quickRatio("abc", "xyz"), 0.0001)
	assert.InDelta(t, 0.5, quickRatio("ab", "ac"), 0.0001)
}

func TestNewPasswordPolicy_KeepsDefaultsForZero(t *testing.T) {
	assert.Equal(t, DefaultPasswordPolicy(), NewPasswordPolicy(0, 0))
	assert.Equal(t, &PasswordPolicy{MinLength: 10, MaxSimilarity: 0.5}, NewPasswordPolicy(10, 0.5))
}
