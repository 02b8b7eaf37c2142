package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandName(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{name: "plain", text: "/start", want: "/start"},
		{name: "with mention", text: "/start@shop_bot", want: "/start"},
		{name: "with args", text: "/admin secret", want: "/admin"},
		{name: "mention and args", text: "/admin@shop_bot secret", want: "/admin"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, commandName(tc.text))
		})
	}
}
