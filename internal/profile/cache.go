package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// CachingFinder fronts a Finder with a Redis cache so repeated status
// checks do not hammer the profiles database. Only successful lookups are
// cached; a rejected credential pair is re-verified every time.
type CachingFinder struct {
	next   Finder
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewCachingFinder wraps next with a Redis-backed cache.
func NewCachingFinder(next Finder, client *redis.Client, ttl time.Duration, log *slog.Logger) *CachingFinder {
	if log == nil {
		log = slog.Default()
	}

	return &CachingFinder{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Find consults the cache first and falls through to the underlying
// Finder. Cache failures degrade to a plain lookup.
func (c *CachingFinder) Find(ctx context.Context, email, licenseKey string) (*Profile, error) {
	key := cacheKey(email, licenseKey)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached Profile
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			return &cached, nil
		}
		c.log.Warn("discarding undecodable cached profile", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("profile cache read failed", slog.Any("error", err))
	}

	p, err := c.next.Find(ctx, email, licenseKey)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(p); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.log.Warn("profile cache write failed", slog.Any("error", setErr))
		}
	}

	return p, nil
}

// cacheKey hashes the credentials so license keys never appear in Redis
// key listings.
func cacheKey(email, licenseKey string) string {
	sum := sha256.Sum256([]byte(email + "\x00" + licenseKey))
	return fmt.Sprintf("profile:cache:%s", hex.EncodeToString(sum[:]))
}
