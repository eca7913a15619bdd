package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "fba:tracking:"

// RedisStore is an IdempotencyStore shared by every process using the same
// Redis database. Insertion uses SETNX so only the first writer wins.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
// A ttl of 0 keeps entries forever.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &RedisStore{
		client: redis.NewClient(opts),
		prefix: defaultRedisKeyPrefix,
		ttl:    ttl,
	}, nil
}

// GetOrCreate returns the tracking number stored for key or stores a new one.
func (s *RedisStore) GetOrCreate(ctx context.Context, key string, generate func() (string, error)) (string, error) {
	k := s.prefix + key

	existing, err := s.client.Get(ctx, k).Result()
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to get key %s: %w", k, err)
	}

	v, err := generate()
	if err != nil {
		return "", err
	}

	ok, err := s.client.SetNX(ctx, k, v, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to set key %s: %w", k, err)
	}
	if ok {
		return v, nil
	}

	// Lost the race; another writer stored its value first.
	existing, err = s.client.Get(ctx, k).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get key %s: %w", k, err)
	}
	return existing, nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ IdempotencyStore = (*RedisStore)(nil)
