package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisCache is the Redis-backed Cache. Values live under their own keys
// with a TTL; each tag is a set of member keys. Tag sets outlive their
// members slightly, which only makes invalidation delete already-expired
// keys.
//
// Backend failures on the read path degrade to a miss and failures on the
// write path are logged and swallowed: an unreachable cache must never take
// a search down with it. Only compute errors propagate to the caller.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewRedisCache creates a cache over an existing Redis client.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

// GetOrCompute implements Cache.
func (c *RedisCache) GetOrCompute(ctx context.Context, key string, tags []string, ttl time.Duration, fn ComputeFunc) ([]byte, error) {
	if val, ok := c.get(ctx, key); ok {
		return val, nil
	}

	computed, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check inside the flight: a concurrent caller may have stored
		// the value between our miss and the flight starting.
		if val, ok := c.get(ctx, key); ok {
			return val, nil
		}

		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.store(ctx, key, val, tags, ttl); err != nil {
			c.logger.WarnContext(ctx, "cache store failed", "key", key, "error", err)
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return computed.([]byte), nil
}

func (c *RedisCache) get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return val, true
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	return nil, false
}

func (c *RedisCache) store(ctx context.Context, key string, val []byte, tags []string, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, val, ttl)
	for _, tag := range tags {
		tagKey := tagSetKey(tag)
		pipe.SAdd(ctx, tagKey, key)
		pipe.Expire(ctx, tagKey, ttl+time.Minute)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache store %q: %w", key, err)
	}
	return nil
}

// Invalidate implements Cache.
func (c *RedisCache) Invalidate(ctx context.Context, tag string) error {
	tagKey := tagSetKey(tag)

	keys, err := c.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		return fmt.Errorf("cache invalidate %q: %w", tag, err)
	}

	keys = append(keys, tagKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate %q: %w", tag, err)
	}
	return nil
}

func tagSetKey(tag string) string {
	return "tag:" + tag
}
