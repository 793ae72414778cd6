package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/biztime"
)

var ErrStateNotFound = account.ErrOAuthStateNotFound

type OAuthState = account.OAuthState

// stateRecord is the JSON stored under the state key.
type stateRecord struct {
	Provider     string    `json:"provider"`
	CodeVerifier string    `json:"code_verifier"`
	RedirectTo   string    `json:"redirect_to,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

var _ account.OAuthStateStore = (*RedisStateStore)(nil)

// RedisStateStore keeps OAuth state values with a TTL. Each state can be
// consumed once: GETDEL makes concurrent consumers race for a single winner.
type RedisStateStore struct {
	client *redis.Client
	keys   Keyspace
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{
		client: client,
		keys:   Keyspace(prefix),
		ttl:    ttl,
	}
}

func (s *RedisStateStore) Save(ctx context.Context, state string, info OAuthState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if info.CodeVerifier == "" {
		return errors.New("code verifier cannot be empty")
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = biztime.NowUTC()
	}

	data, err := json.Marshal(stateRecord{
		Provider:     info.Provider,
		CodeVerifier: info.CodeVerifier,
		RedirectTo:   info.RedirectTo,
		CreatedAt:    info.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal state info: %w", err)
	}

	// NX: a colliding state would otherwise overwrite another login's verifier.
	ok, err := s.client.SetNX(ctx, s.key(state), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store state in redis: %w", err)
	}
	if !ok {
		return errors.New("state already exists")
	}
	return nil
}

// Consume returns and deletes the state in one step.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (*OAuthState, error) {
	if state == "" {
		return nil, ErrStateNotFound
	}

	data, err := s.client.GetDel(ctx, s.key(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to retrieve state from redis: %w", err)
	}

	var rec stateRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state info: %w", err)
	}
	return &OAuthState{
		Provider:     rec.Provider,
		CodeVerifier: rec.CodeVerifier,
		RedirectTo:   rec.RedirectTo,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (s *RedisStateStore) key(state string) string {
	return s.keys.Key("oauth", "state", state)
}
