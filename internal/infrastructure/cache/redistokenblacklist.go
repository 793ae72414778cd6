package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/token"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
)

// minBlacklistTTL keeps entries for tokens at the edge of expiry long enough
// to cover clock skew between instances.
const minBlacklistTTL = time.Minute

// RedisTokenBlacklist stores one key per revoked jti, expiring together with
// the token it revokes.
type RedisTokenBlacklist struct {
	client *redis.Client
	keys   Keyspace
	now    biztime.Clock
}

func NewRedisTokenBlacklist(client *redis.Client, prefix string) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client: client,
		keys:   Keyspace(prefix),
		now:    biztime.NowUTC,
	}
}

// Add uses SET NX so exactly one concurrent caller sees true for a jti.
func (b *RedisTokenBlacklist) Add(ctx context.Context, entry token.BlacklistEntry) (bool, error) {
	if entry.JTI == "" {
		return false, fmt.Errorf("jti cannot be empty")
	}
	ttl := entry.ExpiresAt.Sub(b.now())
	if ttl < minBlacklistTTL {
		ttl = minBlacklistTTL
	}

	added, err := b.client.SetNX(ctx, b.key(entry.JTI), entry.AccountSID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to blacklist token: %w", err)
	}
	return added, nil
}

func (b *RedisTokenBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

func (b *RedisTokenBlacklist) key(jti string) string {
	return b.keys.Key("blacklist", jti)
}
