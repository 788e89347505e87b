package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/catalog-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "product:views:"

func viewKey(productID uint) string {
	return fmt.Sprintf("%s%d", viewKeyPrefix, productID)
}

// ViewCounter buffers product view counts in Redis until they are drained
// into the database. A nil client disables counting.
type ViewCounter struct {
	client *redis.Client
}

func NewViewCounter(client *redis.Client) *ViewCounter {
	return &ViewCounter{client: client}
}

func (v *ViewCounter) Enabled() bool {
	return v != nil && v.client != nil
}

func (v *ViewCounter) Increment(ctx context.Context, productID uint) error {
	if !v.Enabled() {
		return nil
	}
	return v.client.Incr(ctx, viewKey(productID)).Err()
}

// Drain atomically takes every buffered count, keyed by product id.
func (v *ViewCounter) Drain(ctx context.Context) (map[uint]int64, error) {
	counts := make(map[uint]int64)
	if !v.Enabled() {
		return counts, nil
	}

	iter := v.client.Scan(ctx, 0, viewKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := strconv.ParseUint(strings.TrimPrefix(key, viewKeyPrefix), 10, 64)
		if err != nil {
			logger.Warn("Skipping malformed view counter key", map[string]interface{}{
				"key": key,
			})
			continue
		}

		n, err := v.client.GetDel(ctx, key).Int64()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return counts, fmt.Errorf("failed to drain %s: %w", key, err)
		}
		counts[uint(id)] += n
	}
	if err := iter.Err(); err != nil {
		return counts, fmt.Errorf("failed to scan view counters: %w", err)
	}

	return counts, nil
}

// Restore adds counts back, used when persisting a drained batch fails.
func (v *ViewCounter) Restore(ctx context.Context, counts map[uint]int64) error {
	if !v.Enabled() || len(counts) == 0 {
		return nil
	}

	pipe := v.client.Pipeline()
	for id, n := range counts {
		pipe.IncrBy(ctx, viewKey(id), n)
	}
	_, err := pipe.Exec(ctx)
	return err
}
