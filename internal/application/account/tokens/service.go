// Package tokens issues, verifies, rotates and revokes the JWT pairs handed
// to clients.
package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	apperrors "github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

type Service struct {
	codec     token.Codec
	blacklist token.Blacklist
	logger    logger.Interface
}

func NewService(codec token.Codec, blacklist token.Blacklist, log logger.Interface) *Service {
	return &Service{
		codec:     codec,
		blacklist: blacklist,
		logger:    log,
	}
}

func (s *Service) IssueAccess(sid string) (*token.Issued, error) {
	return s.codec.Issue(sid, token.TypeAccess)
}

func (s *Service) IssueRefresh(sid string) (*token.Issued, error) {
	return s.codec.Issue(sid, token.TypeRefresh)
}

func (s *Service) IssuePair(sid string) (*token.Pair, error) {
	access, err := s.IssueAccess(sid)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.IssueRefresh(sid)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return &token.Pair{Access: access, Refresh: refresh}, nil
}

// Verify checks signature, expiry and type, then the blacklist. It fails
// with an Expired, Malformed, SignatureInvalid or Blacklisted auth error.
func (s *Service) Verify(ctx context.Context, raw string, expected token.Type) (*token.Claims, error) {
	claims, err := s.codec.Parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != expected {
		return nil, apperrors.NewTokenMalformedError(fmt.Sprintf("expected %s token", expected))
	}

	revoked, err := s.blacklist.Contains(ctx, claims.JTI)
	if err != nil {
		s.logger.Errorw("failed to check token blacklist", "jti", claims.JTI, "error", err)
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if revoked {
		return nil, apperrors.NewTokenBlacklistedError()
	}
	return claims, nil
}

// Rotate blacklists the refresh token and issues a new pair. The blacklist
// insert is the serialization point: of several concurrent rotations of the
// same token exactly one succeeds, the rest fail with Blacklisted.
func (s *Service) Rotate(ctx context.Context, raw string) (*token.Pair, *token.Claims, error) {
	claims, err := s.codec.Parse(raw)
	if err != nil {
		return nil, nil, apperrors.NewInvalidRefreshTokenError(string(apperrors.ReasonOf(err)))
	}
	if claims.Type != token.TypeRefresh {
		return nil, nil, apperrors.NewInvalidRefreshTokenError("not a refresh token")
	}

	added, err := s.blacklist.Add(ctx, entryFor(claims))
	if err != nil {
		s.logger.Errorw("failed to blacklist rotated refresh token", "jti", claims.JTI, "error", err)
		return nil, nil, fmt.Errorf("failed to blacklist refresh token: %w", err)
	}
	if !added {
		s.logger.Warnw("refresh token reuse detected", "sid", claims.Subject, "jti", claims.JTI)
		return nil, nil, apperrors.NewTokenBlacklistedError("refresh token was already used")
	}

	pair, err := s.IssuePair(claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

// Revoke blacklists a token until it expires. Tokens that no longer verify
// or are already revoked are ignored.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	claims, err := s.codec.Parse(raw)
	if err != nil {
		s.logger.Debugw("skipping revoke of unusable token", "reason", apperrors.ReasonOf(err))
		return nil
	}

	if _, err := s.blacklist.Add(ctx, entryFor(claims)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenError reports whether err is one of the token failures Verify
// produces, as opposed to a storage error.
func IsTokenError(err error) bool {
	for _, target := range []error{
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenMalformed,
		apperrors.ErrTokenSignatureInvalid,
		apperrors.ErrTokenBlacklisted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func entryFor(c *token.Claims) token.BlacklistEntry {
	return token.BlacklistEntry{
		JTI:        c.JTI,
		Type:       c.Type,
		AccountSID: c.Subject,
		ExpiresAt:  c.ExpiresAt,
	}
}
