package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	vo "github.com/Mordecai-Wambua/User-Auth/internal/domain/account/valueobjects"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/errors"
)

// lookupVerificationToken finds a live token for the emailed secret. It
// fails with TokenInvalid for unknown or used tokens and TokenExpired for
// stale ones.
func lookupVerificationToken(ctx context.Context, repo account.VerificationTokenRepository, purpose account.TokenPurpose, secret string, now time.Time) (*account.VerificationToken, error) {
	value, err := vo.NewTokenFromValue(secret)
	if err != nil {
		return nil, errors.NewVerificationInvalidError()
	}

	tok, err := repo.GetByHash(ctx, purpose, value.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if tok == nil || tok.IsConsumed() {
		return nil, errors.NewVerificationInvalidError()
	}
	if tok.IsExpired(now) {
		return nil, errors.NewVerificationExpiredError()
	}
	return tok, nil
}

// consumeVerificationToken marks tok used. Losing a race to another request
// counts as an invalid token.
func consumeVerificationToken(ctx context.Context, repo account.VerificationTokenRepository, tok *account.VerificationToken, now time.Time) error {
	ok, err := repo.Consume(ctx, tok.ID(), now)
	if err != nil {
		return fmt.Errorf("failed to consume token: %w", err)
	}
	if !ok {
		return errors.NewVerificationInvalidError()
	}
	return nil
}
