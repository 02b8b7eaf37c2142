package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbell/shopbot/internal/domain"
)

func TestParseCallback(t *testing.T) {
	caller := UserRef{ID: 1}

	testCases := []struct {
		name    string
		data    string
		want    Event
		wantErr bool
	}{
		{
			name: "language selection",
			data: "lang:en",
			want: Event{Kind: EventSelectLanguage, Language: domain.LangEN},
		},
		{
			name: "menu action",
			data: "menu:buy_sub",
			want: Event{Kind: EventMenuAction, Action: ActionBuySubscription},
		},
		{
			name: "nav home",
			data: "nav:home",
			want: Event{Kind: EventHome},
		},
		{
			name: "nav cancel with surrounding whitespace",
			data: "  nav:cancel  ",
			want: Event{Kind: EventCancel},
		},
		{
			name: "subscription term",
			data: "sub:12",
			want: Event{Kind: EventSelectTerm, TermMonths: 12},
		},
		{
			name: "custom term",
			data: "sub:custom",
			want: Event{Kind: EventSelectTerm, CustomTerm: true},
		},
		{
			name: "topup amount",
			data: "topup:50",
			want: Event{Kind: EventSelectTopup, AmountUSD: 50},
		},
		{
			name: "bank rail",
			data: "pay:bank",
			want: Event{Kind: EventSelectPayMethod, PayMethod: domain.PayBankTransfer},
		},
		{
			name: "coin",
			data: "coin:USDT_TRC20",
			want: Event{Kind: EventSelectCoin, Coin: domain.CoinUSDTTRC20},
		},
		{
			name:    "unknown namespace",
			data:    "bogus:1",
			wantErr: true,
		},
		{
			name:    "negative term",
			data:    "sub:-3",
			wantErr: true,
		},
		{
			name:    "non-numeric topup",
			data:    "topup:abc",
			wantErr: true,
		},
		{
			name:    "unknown coin",
			data:    "coin:DOGE",
			wantErr: true,
		},
		{
			name:    "empty payload",
			data:    "",
			wantErr: true,
		},
		{
			name:    "namespace without action",
			data:    "menu:",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ev, err := ParseCallback(caller, tc.data)
			if tc.wantErr {
				var unknown *ErrUnknownCallback
				require.ErrorAs(t, err, &unknown)
				return
			}
			require.NoError(t, err)
			tc.want.User = caller
			assert.Equal(t, tc.want, ev)
		})
	}
}

func TestParseDecision(t *testing.T) {
	caller := UserRef{ID: 900}

	testCases := []struct {
		name        string
		data        string
		wantAdminNS bool
		wantErr     bool
		want        Decision
	}{
		{
			name:        "approve",
			data:        "adm:approve:ORD-5-1700000000",
			wantAdminNS: true,
			want:        Decision{Caller: caller, Token: "ORD-5-1700000000", Approve: true},
		},
		{
			name:        "reject",
			data:        "adm:reject:ORD-5-1700000000",
			wantAdminNS: true,
			want:        Decision{Caller: caller, Token: "ORD-5-1700000000", Approve: false},
		},
		{
			name: "non-admin namespace passes through",
			data: "menu:buy_sub",
		},
		{
			name:        "missing token",
			data:        "adm:approve",
			wantAdminNS: true,
			wantErr:     true,
		},
		{
			name:        "unknown verdict",
			data:        "adm:maybe:ORD-5-1",
			wantAdminNS: true,
			wantErr:     true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			dec, isAdmin, err := ParseDecision(caller, tc.data)
			assert.Equal(t, tc.wantAdminNS, isAdmin)
			if tc.wantErr {
				var unknown *ErrUnknownCallback
				require.ErrorAs(t, err, &unknown)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, dec)
		})
	}
}

func TestUserRefLabel(t *testing.T) {
	withUsername := UserRef{ID: 5, Username: "alice", FullName: "Alice A"}
	assert.Equal(t, "@alice | id=5 | Alice A", withUsername.Label())

	anonymous := UserRef{ID: 6, FullName: "Bob B"}
	assert.Equal(t, "(no username) | id=6 | Bob B", anonymous.Label())
}

func TestCallbackDataRoundTrip(t *testing.T) {
	data := CallbackData(nsSub, "3")
	ev, err := ParseCallback(UserRef{ID: 1}, data)
	require.NoError(t, err)
	assert.Equal(t, EventSelectTerm, ev.Kind)
	assert.Equal(t, 3, ev.TermMonths)
}
