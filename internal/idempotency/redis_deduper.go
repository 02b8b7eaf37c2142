package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDeduper stores seen keys in Redis so duplicates are suppressed even
// across restarts.
type RedisDeduper struct {
	client *redis.Client
}

var _ Deduper = (*RedisDeduper)(nil)

// NewRedisDeduper returns a Redis-backed Deduper.
func NewRedisDeduper(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

// Seen records the key with SETNX semantics. A failed insert means the key
// is already present within its TTL.
func (d *RedisDeduper) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	inserted, err := d.client.SetNX(ctx, redisKey(key), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe check: %w", err)
	}
	return !inserted, nil
}

func redisKey(key string) string {
	return "dedupe:" + key
}
