package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	apperrors "github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestJWTService() (*JWTService, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewJWTService(testSecret, "user-auth", 30*time.Minute, 7*24*time.Hour).WithClock(clock.Now)
	return svc, clock
}

func TestJWTService_IssueAndParse(t *testing.T) {
	svc, clock := newTestJWTService()

	issued, err := svc.Issue("acct_123", token.TypeAccess)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.JTI)
	assert.True(t, clock.t.Add(30*time.Minute).Equal(issued.ExpiresAt))

	claims, err := svc.Parse(issued.Value)
	require.NoError(t, err)
	assert.Equal(t, "acct_123", claims.Subject)
	assert.Equal(t, token.TypeAccess, claims.Type)
	assert.Equal(t, issued.JTI, claims.JTI)
}

func TestJWTService_UniqueJTI(t *testing.T) {
	svc, _ := newTestJWTService()

	a, err := svc.Issue("acct_1", token.TypeRefresh)
	require.NoError(t, err)
	b, err := svc.Issue("acct_1", token.TypeRefresh)
	require.NoError(t, err)

	assert.NotEqual(t, a.JTI, b.JTI)
	assert.NotEqual(t, a.Value, b.Value)
}

func TestJWTService_ExpiresExactlyAtLifetime(t *testing.T) {
	svc, clock := newTestJWTService()

	issued, err := svc.Issue("acct_1", token.TypeAccess)
	require.NoError(t, err)

	clock.Advance(30*time.Minute - time.Second)
	_, err = svc.Parse(issued.Value)
	require.NoError(t, err, "token must stay valid before its lifetime elapses")

	clock.Advance(time.Second)
	_, err = svc.Parse(issued.Value)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWTService_SubSecondIssueKeepsFullLifetime(t *testing.T) {
	svc, clock := newTestJWTService()
	clock.Advance(900 * time.Millisecond)

	issued, err := svc.Issue("acct_1", token.TypeAccess)
	require.NoError(t, err)
	assert.False(t, issued.ExpiresAt.Before(clock.t.Add(30*time.Minute)))

	clock.Advance(30*time.Minute - 500*time.Millisecond)
	_, err = svc.Parse(issued.Value)
	require.NoError(t, err, "token must stay valid until its full lifetime elapses")

	clock.Advance(time.Second)
	_, err = svc.Parse(issued.Value)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWTService_RefreshLifetime(t *testing.T) {
	svc, clock := newTestJWTService()

	issued, err := svc.Issue("acct_1", token.TypeRefresh)
	require.NoError(t, err)

	clock.Advance(6 * 24 * time.Hour)
	_, err = svc.Parse(issued.Value)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	_, err = svc.Parse(issued.Value)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWTService_ParseFailures(t *testing.T) {
	svc, clock := newTestJWTService()
	issued, err := svc.Issue("acct_1", token.TypeAccess)
	require.NoError(t, err)

	other := NewJWTService("another-secret-0123456789abcdef0123", "user-auth", time.Minute, time.Hour).WithClock(clock.Now)
	foreign, err := other.Issue("acct_1", token.TypeAccess)
	require.NoError(t, err)

	parts := strings.Split(issued.Value, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{TokenType: token.TypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", apperrors.ErrTokenMalformed},
		{"garbage", "not.a.jwt", apperrors.ErrTokenMalformed},
		{"wrong secret", foreign.Value, apperrors.ErrTokenSignatureInvalid},
		{"tampered signature", tampered, apperrors.ErrTokenSignatureInvalid},
		{"alg none", unsigned, apperrors.ErrTokenSignatureInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Parse(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWTService_RejectsOtherIssuer(t *testing.T) {
	svc, clock := newTestJWTService()
	other := NewJWTService(testSecret, "someone-else", time.Minute, time.Hour).WithClock(clock.Now)

	issued, err := other.Issue("acct_1", token.TypeAccess)
	require.NoError(t, err)

	_, err = svc.Parse(issued.Value)
	assert.ErrorIs(t, err, apperrors.ErrTokenMalformed)
}

func TestJWTService_IssueValidation(t *testing.T) {
	svc, _ := newTestJWTService()

	_, err := svc.Issue("", token.TypeAccess)
	assert.Error(t, err)
	_, err = svc.Issue("acct_1", token.Type("id"))
	assert.Error(t, err)
}
