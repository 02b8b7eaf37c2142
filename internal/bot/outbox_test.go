package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	telebot "gopkg.in/telebot.v3"
)

func TestIsTransientSend(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		transient bool
	}{
		{
			name: "flood control is retried",
			err: telebot.FloodError{
				RetryAfter: 2,
			},
			transient: true,
		},
		{
			name:      "network failure is retried",
			err:       errors.New("dial tcp: connection refused"),
			transient: true,
		},
		{
			name:      "api rejection is permanent",
			err:       telebot.ErrBlockedByUser,
			transient: false,
		},
		{
			name:      "bad request is permanent",
			err:       telebot.NewError(400, "Bad Request", "chat not found"),
			transient: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.transient, isTransientSend(tc.err))
		})
	}
}
