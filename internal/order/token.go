// Package order issues order tokens and tracks orders awaiting an operator
// decision.
package order

import (
	"fmt"
	"sync"
	"time"
)

// TokenSource produces unique, human-readable order tokens bound to the
// issuing user and the issuance time.
type TokenSource struct {
	mu       sync.Mutex
	lastUnix int64
	seq      int
	now      func() time.Time
}

// NewTokenSource returns a TokenSource backed by the wall clock.
func NewTokenSource() *TokenSource {
	return &TokenSource{now: time.Now}
}

// Next issues a token of the form ORD-<user>-<unix>. Tokens issued within the
// same second carry a sequence suffix so they remain distinguishable.
func (t *TokenSource) Next(userID int64) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	unix := t.now().Unix()
	if unix == t.lastUnix {
		t.seq++
	} else {
		t.lastUnix = unix
		t.seq = 0
	}

	if t.seq == 0 {
		return fmt.Sprintf("ORD-%d-%d", userID, unix)
	}
	return fmt.Sprintf("ORD-%d-%d-%d", userID, unix, t.seq)
}
