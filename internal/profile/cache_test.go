package profile

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFinder struct {
	profile Profile
	err     error
	calls   int
}

func (f *countingFinder) Find(context.Context, string, string) (*Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &f.profile, nil
}

func setupCache(t *testing.T, next Finder, ttl time.Duration) (*CachingFinder, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCachingFinder(next, client, ttl, slog.New(slog.NewTextHandler(testWriter{t}, nil))), mr
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestCachingFinderCachesHits(t *testing.T) {
	next := &countingFinder{profile: Profile{
		Email:      "a@b.io",
		LicenseKey: "KEY-1",
		BalanceUSD: 12,
		ValidUntil: time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC),
	}}
	cache, _ := setupCache(t, next, time.Minute)
	ctx := context.Background()

	first, err := cache.Find(ctx, "a@b.io", "KEY-1")
	require.NoError(t, err)
	assert.Equal(t, 12, first.BalanceUSD)
	assert.Equal(t, 1, next.calls)

	second, err := cache.Find(ctx, "a@b.io", "KEY-1")
	require.NoError(t, err)
	assert.Equal(t, "KEY-1", second.LicenseKey)
	assert.True(t, second.ValidUntil.Equal(first.ValidUntil))
	assert.Equal(t, 1, next.calls, "second lookup should be served from cache")
}

func TestCachingFinderDoesNotCacheErrors(t *testing.T) {
	next := &countingFinder{err: ErrNotFound}
	cache, _ := setupCache(t, next, time.Minute)
	ctx := context.Background()

	_, err := cache.Find(ctx, "a@b.io", "KEY-1")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = cache.Find(ctx, "a@b.io", "KEY-1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, next.calls)
}

func TestCachingFinderExpiry(t *testing.T) {
	next := &countingFinder{profile: Profile{Email: "a@b.io", LicenseKey: "KEY-1"}}
	cache, mr := setupCache(t, next, 30*time.Second)
	ctx := context.Background()

	_, err := cache.Find(ctx, "a@b.io", "KEY-1")
	require.NoError(t, err)

	mr.FastForward(time.Minute)

	_, err = cache.Find(ctx, "a@b.io", "KEY-1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachingFinderKeySeparatesCredentials(t *testing.T) {
	assert.NotEqual(t, cacheKey("a@b.io", "KEY-1"), cacheKey("a@b.io", "KEY-2"))
	assert.NotEqual(t, cacheKey("a@b.io", "KEY-1"), cacheKey("a@b.ioKEY-1", ""))
}

func TestCachingFinderSurvivesRedisOutage(t *testing.T) {
	next := &countingFinder{profile: Profile{Email: "a@b.io"}}
	cache, mr := setupCache(t, next, time.Minute)
	mr.Close()

	p, err := cache.Find(context.Background(), "a@b.io", "KEY-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.io", p.Email)
	assert.False(t, errors.Is(err, redis.Nil))
}
