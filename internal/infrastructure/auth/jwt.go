package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	apperrors "github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
)

type Claims struct {
	TokenType token.Type `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 tokens. Each token carries a random jti so it can be
// blacklisted individually.
type JWTService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        biztime.Clock
}

func NewJWTService(secret, issuer string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        biztime.NowUTC,
	}
}

// WithClock replaces the time source used for issuing and validating.
func (s *JWTService) WithClock(clock biztime.Clock) *JWTService {
	s.now = clock.OrDefault()
	return s
}

func (s *JWTService) TTL(typ token.Type) time.Duration {
	if typ == token.TypeRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}

func (s *JWTService) Issue(subject string, typ token.Type) (*token.Issued, error) {
	if subject == "" {
		return nil, fmt.Errorf("token subject is required")
	}
	if typ != token.TypeAccess && typ != token.TypeRefresh {
		return nil, fmt.Errorf("unknown token type %q", typ)
	}

	now := s.now()
	exp := expiryAfter(now, s.TTL(typ))
	jti := uuid.NewString()

	claims := &Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s token: %w", typ, err)
	}

	return &token.Issued{
		Value:     signed,
		Type:      typ,
		JTI:       jti,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// expiryAfter rounds now+ttl up to the claim precision. NumericDate drops
// sub-second digits, which would otherwise cut the lifetime short.
func expiryAfter(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if t := exp.Truncate(jwt.TimePrecision); !t.Equal(exp) {
		return t.Add(jwt.TimePrecision)
	}
	return exp
}

// Parse validates signature, issuer and time claims. It does not consult
// the blacklist.
func (s *JWTService) Parse(raw string) (*token.Claims, error) {
	if raw == "" {
		return nil, apperrors.NewTokenMalformedError("empty token")
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, apperrors.NewTokenMalformedError("missing required claims")
	}
	if claims.TokenType != token.TypeAccess && claims.TokenType != token.TypeRefresh {
		return nil, apperrors.NewTokenMalformedError("unknown token type")
	}

	out := &token.Claims{
		Subject:   claims.Subject,
		Type:      claims.TokenType,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.NewTokenExpiredError()
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.NewTokenSignatureInvalidError()
	default:
		return apperrors.NewTokenMalformedError(err.Error())
	}
}
