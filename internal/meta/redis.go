package meta

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores one hash per item under prefix+itemID; each meta key is a hash field.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, itemID, key string) (any, bool, error) {
	value, err := b.client.HGet(ctx, b.hashKey(itemID), key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("meta: redis hget %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Backend.
func (b *RedisBackend) Set(ctx context.Context, itemID, key, value string) error {
	if err := b.client.HSet(ctx, b.hashKey(itemID), key, value).Err(); err != nil {
		return fmt.Errorf("meta: redis hset %s: %w", key, err)
	}
	return nil
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, itemID, key string) error {
	if err := b.client.HDel(ctx, b.hashKey(itemID), key).Err(); err != nil {
		return fmt.Errorf("meta: redis hdel %s: %w", key, err)
	}
	return nil
}

// Ping verifies connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) hashKey(itemID string) string {
	return b.prefix + itemID
}
