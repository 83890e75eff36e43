// Package cache provides a best-effort JSON cache over Redis. Cache errors are
// logged and treated as misses so an unavailable Redis never blocks a request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values under namespaced keys. A nil client or
// Enabled=false makes every operation a no-op.
type Cache struct {
	enabled bool
	client  *redis.Client
}

func New(client *redis.Client, enabled bool) *Cache {
	return &Cache{enabled: enabled && client != nil, client: client}
}

func (c *Cache) Enabled() bool { return c.enabled }

// Get unmarshals the cached value into dest. Returns false on miss, decode
// failure or any Redis error.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.enabled {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// Set encodes and stores the value with the given TTL. Failures are logged.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.enabled {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Warn("cache set failed", "key", key, "error", err)
	}
}
