package usecases

import (
	"context"
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// ExpiredPurger is implemented by stores that keep entries past their
// expiry, such as the database token blacklist.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// PurgeExpiredUseCase deletes verification tokens and blacklist rows that can
// no longer match anything. It runs as a scheduled batch job.
type PurgeExpiredUseCase struct {
	tokenRepo account.VerificationTokenRepository
	// blacklist is nil when revoked tokens live in redis, which expires them itself.
	blacklist ExpiredPurger
	now       biztime.Clock
	logger    logger.Interface
}

func NewPurgeExpiredUseCase(tokenRepo account.VerificationTokenRepository, blacklist ExpiredPurger, logger logger.Interface) *PurgeExpiredUseCase {
	return &PurgeExpiredUseCase{
		tokenRepo: tokenRepo,
		blacklist: blacklist,
		now:       biztime.NowUTC,
		logger:    logger,
	}
}

// Execute returns the number of rows removed.
func (uc *PurgeExpiredUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.now()

	tokens, err := uc.tokenRepo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	total := tokens

	if uc.blacklist != nil {
		entries, err := uc.blacklist.PurgeExpired(ctx, now)
		if err != nil {
			return int(total), err
		}
		total += entries
	}

	if total > 0 {
		uc.logger.Infow("purged expired rows", "verification_tokens", tokens, "total", total)
	}
	return int(total), nil
}
