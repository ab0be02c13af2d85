// Package cache is an optional Redis read-through cache for the
// expensive read endpoints (calendar, stats). A nil *Cache disables
// caching without branching at call sites.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dalebar/viaductecho-backend/internal/logger"
)

const keyPrefix = "viaduct:cache:"

// Cache wraps a Redis client with JSON (de)serialization.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// New pings Redis before returning so a misconfigured address fails at
// startup, not on first read.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration, log logger.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{client: client, ttl: ttl, log: log}, nil
}

func Key(parts ...string) string {
	key := keyPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// Get unmarshals a cached value into dest. Returns false on miss,
// on marshaling trouble, or when the cache is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", logger.String("key", key), logger.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn("cache entry corrupt", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

// Set stores a value under the configured TTL. Failures are logged and
// swallowed; the cache is best-effort.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache marshal failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
}

// Invalidate drops every key under the cache prefix.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}

// Close releases the underlying client. Safe on a nil cache.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
