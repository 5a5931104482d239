package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/adapter"
)

// Cache is a TTL key-value cache over redis. Values are JSON-encoded; a miss
// comes back as a nil raw message, never an error.
//
//go:generate mockgen -source=cache.go -destination=../mocks/cache.go -package=mocks -mock_names=Cache=MockCache
type Cache interface {
	// Get retrieves one value, nil on miss
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// GetMany retrieves values for all keys in order; missing keys yield nil entries
	GetMany(ctx context.Context, keys []string) ([]json.RawMessage, error)

	// Set stores one value with a TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetMany stores multiple values with one TTL in a single round trip
	SetMany(ctx context.Context, values map[string]interface{}, ttl time.Duration) error
}

type redisCache struct {
	client adapter.RedisClient
	prefix string
}

// NewRedisCache creates a redis-backed cache. All keys are namespaced under prefix.
func NewRedisCache(client adapter.RedisClient, prefix string) Cache {
	return &redisCache{client: client, prefix: prefix}
}

func (c *redisCache) key(key string) string {
	return c.prefix + key
}

// Get retrieves one value, nil on miss
func (c *redisCache) Get(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return data, nil
}

// GetMany retrieves values for all keys in order
func (c *redisCache) GetMany(ctx context.Context, keys []string) ([]json.RawMessage, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}

	values, err := c.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to mget cache keys: %w", err)
	}

	results := make([]json.RawMessage, len(keys))
	for i, v := range values {
		switch data := v.(type) {
		case string:
			results[i] = json.RawMessage(data)
		case []byte:
			results[i] = data
		case nil:
			results[i] = nil
		}
	}
	return results, nil
}

// Set stores one value with a TTL
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// SetMany stores multiple values with one TTL via a pipeline
func (c *redisCache) SetMany(ctx context.Context, values map[string]interface{}, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
		}
		pipe.Set(ctx, c.key(key), data, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set cache keys: %w", err)
	}
	return nil
}
