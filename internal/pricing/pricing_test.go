package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExactValues(t *testing.T) {
	catalog := Default()

	testCases := []struct {
		name     string
		usd      int
		expected int
	}{
		{name: "one month", usd: 19, expected: 1460},
		{name: "three months", usd: 54, expected: 4160},
		{name: "six months", usd: 96, expected: 7390},
		{name: "twelve months", usd: 144, expected: 11090},
		{name: "smallest topup tie rounds to even", usd: 5, expected: 380},
		{name: "ten dollars", usd: 10, expected: 770},
		{name: "twenty dollars", usd: 20, expected: 1540},
		{name: "fifty dollars", usd: 50, expected: 3850},
		{name: "hundred dollars", usd: 100, expected: 7700},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, catalog.Local(tc.usd))
		})
	}
}

func TestLocalTiesRoundToEven(t *testing.T) {
	catalog := &Catalog{Rate: 5}

	// 7*5=35 sits between 30 and 40; the even ten wins.
	assert.Equal(t, 40, catalog.Local(7))
	// 9*5=45 sits between 40 and 50; again the even ten.
	assert.Equal(t, 40, catalog.Local(9))
}

func TestLocalProperties(t *testing.T) {
	catalog := Default()

	all := append(catalog.Topups(), 19, 54, 96, 144)
	for _, usd := range all {
		local := catalog.Local(usd)
		assert.GreaterOrEqual(t, local, 0, "usd=%d", usd)
		assert.Zero(t, local%10, "usd=%d must round to a multiple of 10", usd)
		assert.Equal(t, local, catalog.Local(usd), "usd=%d must be deterministic", usd)
	}
}

func TestSubscriptionQuote(t *testing.T) {
	catalog := Default()

	quote, ok := catalog.SubscriptionQuote(3)
	require.True(t, ok)
	assert.Equal(t, Quote{USD: 54, Local: 4160}, quote)

	_, ok = catalog.SubscriptionQuote(7)
	assert.False(t, ok)
}

func TestTopupQuote(t *testing.T) {
	catalog := Default()

	quote, ok := catalog.TopupQuote(20)
	require.True(t, ok)
	assert.Equal(t, Quote{USD: 20, Local: 1540}, quote)

	_, ok = catalog.TopupQuote(21)
	assert.False(t, ok)
}

func TestTermsSorted(t *testing.T) {
	catalog := Default()
	assert.Equal(t, []int{1, 3, 6, 12}, catalog.Terms())
	assert.Equal(t, []int{5, 10, 20, 50, 100}, catalog.Topups())
}
