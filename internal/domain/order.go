package domain

import "time"

// OrderKind distinguishes what a pending order pays for.
type OrderKind string

const (
	OrderSubscription OrderKind = "sub"
	OrderTopup        OrderKind = "topup"
)

// PendingOrder holds the minimal facts an operator decision needs to notify
// the right user of the right outcome. An entry exists only between "proof
// submitted" and "operator decision issued".
type PendingOrder struct {
	Token      string    `json:"token"`
	Kind       OrderKind `json:"kind"`
	UserID     int64     `json:"user_id"`
	TermMonths int       `json:"term_months,omitempty"`
	AmountUSD  int       `json:"amount_usd,omitempty"`
	Email      string    `json:"email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
