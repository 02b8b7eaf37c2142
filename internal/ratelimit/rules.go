package ratelimit

import "time"

// Rules holds the per-user throttle settings. The operator chat is always
// whitelisted so decision bursts are never dropped.
type Rules struct {
	limit     int
	window    time.Duration
	whitelist map[int64]struct{}
}

// NewRules constructs throttle rules. Non-positive limit or window disables
// throttling entirely.
func NewRules(limit int, window time.Duration, whitelist []int64) *Rules {
	ids := make(map[int64]struct{}, len(whitelist))
	for _, id := range whitelist {
		ids[id] = struct{}{}
	}

	return &Rules{
		limit:     limit,
		window:    window,
		whitelist: ids,
	}
}

// Enabled reports whether throttling is configured.
func (r *Rules) Enabled() bool {
	return r != nil && r.limit > 0 && r.window > 0
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	if r == nil {
		return false
	}
	_, ok := r.whitelist[userID]
	return ok
}

// PerUserLimit returns the limit and window applied to each user.
func (r *Rules) PerUserLimit() (int, time.Duration) {
	return r.limit, r.window
}
