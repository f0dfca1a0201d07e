package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/narralabs/narramancer/pkg/state"
)

const sessionKeyPrefix = "session:"

// RedisStorage implements Storage using Redis. Sessions are stored as
// JSON with a sliding TTL refreshed on every save.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage accepts either a bare host:port or a redis:// URL.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	rdb := redis.NewClient(opts)

	return &RedisStorage{
		client: rdb,
		logger: logger,
		ttl:    ttl,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrStoreFailure, err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func (r *RedisStorage) SaveSession(ctx context.Context, s *state.Session) error {
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "session_id", s.ID, "error", err)
		return fmt.Errorf("%w: marshal session: %v", ErrStoreFailure, err)
	}

	key := sessionKeyPrefix + s.ID
	if err := r.client.Set(ctx, key, string(data), r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		return fmt.Errorf("%w: save session: %v", ErrStoreFailure, err)
	}

	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id string) (*state.Session, error) {
	key := sessionKeyPrefix + id
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // not found
		}
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("%w: load session: %v", ErrStoreFailure, err)
	}

	var s state.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		r.logger.Error("Failed to unmarshal session", "session_id", id, "error", err)
		return nil, fmt.Errorf("%w: unmarshal session: %v", ErrStoreFailure, err)
	}

	return &s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id string) error {
	key := sessionKeyPrefix + id
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("%w: delete session: %v", ErrStoreFailure, err)
	}
	return nil
}
