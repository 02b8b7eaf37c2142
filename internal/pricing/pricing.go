// Package pricing converts the fixed USD catalog into local-currency quotes.
package pricing

import "sort"

// Quote is a derived price pair. It is computed on demand and never stored.
type Quote struct {
	USD   int
	Local int
}

// Catalog holds the product tiers and the USD conversion rate. Values come
// from configuration; Default mirrors the shipped price list.
type Catalog struct {
	Rate          int         // local currency units per USD
	Subscriptions map[int]int // term in months -> USD
	TopupAmounts  []int       // USD
}

// Default returns the built-in price list.
func Default() *Catalog {
	return &Catalog{
		Rate:          77,
		Subscriptions: map[int]int{1: 19, 3: 54, 6: 96, 12: 144},
		TopupAmounts:  []int{5, 10, 20, 50, 100},
	}
}

// Local converts a USD amount into local currency rounded to the nearest 10
// units, ties to the even ten. The result is deterministic for a fixed rate.
func (c *Catalog) Local(usd int) int {
	units := usd * c.Rate
	tens := units / 10
	rem := units % 10
	if rem > 5 || (rem == 5 && tens%2 != 0) {
		tens++
	}
	return tens * 10
}

// SubscriptionQuote returns the price pair for a subscription term.
func (c *Catalog) SubscriptionQuote(termMonths int) (Quote, bool) {
	usd, ok := c.Subscriptions[termMonths]
	if !ok {
		return Quote{}, false
	}
	return Quote{USD: usd, Local: c.Local(usd)}, true
}

// TopupQuote returns the price pair for a top-up amount.
func (c *Catalog) TopupQuote(usd int) (Quote, bool) {
	for _, amount := range c.TopupAmounts {
		if amount == usd {
			return Quote{USD: usd, Local: c.Local(usd)}, true
		}
	}
	return Quote{}, false
}

// Terms returns the available subscription terms in ascending order.
func (c *Catalog) Terms() []int {
	terms := make([]int, 0, len(c.Subscriptions))
	for term := range c.Subscriptions {
		terms = append(terms, term)
	}
	sort.Ints(terms)
	return terms
}

// Topups returns the available top-up amounts in ascending order.
func (c *Catalog) Topups() []int {
	amounts := make([]int, len(c.TopupAmounts))
	copy(amounts, c.TopupAmounts)
	sort.Ints(amounts)
	return amounts
}
