package etag

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps validators in Redis so several dashboard processes
// share them. Keys carry no TTL.
type RedisStore struct {
	redis     *redis.Client
	namespace string
}

// NewRedisStore creates a validator store backed by Redis.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:     redisClient,
		namespace: DefaultKeyPrefix,
	}
}

// WithNamespace returns a copy of the store writing under another key namespace.
func (s *RedisStore) WithNamespace(namespace string) *RedisStore {
	return &RedisStore{
		redis:     s.redis,
		namespace: namespace,
	}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, url string) (string, error) {
	validator, err := s.redis.Get(ctx, Key(s.namespace, url)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return validator, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, url, validator string) error {
	if err := s.redis.Set(ctx, Key(s.namespace, url), validator, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
