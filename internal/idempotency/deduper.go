// Package idempotency suppresses duplicate Telegram update deliveries.
// Long polling redelivers updates after timeouts or restarts; handling a
// payment proof or an operator verdict twice must not happen.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Deduper remembers recently seen keys. Seen returns true when the key was
// already recorded within its TTL.
type Deduper interface {
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Key builds a deterministic deduplication key from the given parts.
func Key(parts ...any) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%v:", part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryDeduper keeps seen keys in process memory. Entries expire lazily
// on lookup and wholesale during Cleanup.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryDeduper returns an in-memory Deduper.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen records the key and reports whether it was already present.
func (d *MemoryDeduper) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiry, ok := d.seen[key]; ok && expiry.After(now) {
		return true, nil
	}
	d.seen[key] = now.Add(ttl)
	return false, nil
}

// Cleanup drops expired entries.
func (d *MemoryDeduper) Cleanup() {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for key, expiry := range d.seen {
		if !expiry.After(now) {
			delete(d.seen, key)
		}
	}
}

// RunCleanup prunes expired entries on the interval until ctx is cancelled.
func (d *MemoryDeduper) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Cleanup()
		}
	}
}
