package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Keys of the cached category lists.
const (
	KeyMainCategories   = "categories:main"
	KeySubCategories    = "categories:sub"
	KeySubSubCategories = "categories:subsub"
)

// DefaultCategoryTTL is used when no TTL is configured.
const DefaultCategoryTTL = 5 * time.Minute

// CategoryCache stores category list responses as JSON in Redis.
// A nil client disables caching; every call becomes a miss or a no-op.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

func (c *CategoryCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the cached value under key into dest and reports a hit.
func (c *CategoryCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logger.Warn("Category cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn("Category cache entry is corrupt", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (c *CategoryCache) Set(ctx context.Context, key string, value interface{}) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode category cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("Category cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Invalidate drops every category list. Call it after any category mutation.
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}

	if err := c.client.Del(ctx, KeyMainCategories, KeySubCategories, KeySubSubCategories).Err(); err != nil {
		logger.Warn("Category cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
