package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbell/shopbot/internal/flow"
)

func TestFromMenuNil(t *testing.T) {
	assert.Nil(t, FromMenu(nil))
	assert.Nil(t, FromMenu(&flow.Menu{}))
}

func TestFromMenuRowsAndButtons(t *testing.T) {
	menu := &flow.Menu{Rows: [][]flow.Button{
		{
			{Label: "1 месяц", Data: "sub:1"},
			{Label: "3 месяца", Data: "sub:3"},
		},
		{
			{Label: "Поддержка", URL: "https://t.me/support"},
		},
	}}

	markup := FromMenu(menu)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)

	assert.Equal(t, "1 месяц", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "sub:1", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "https://t.me/support", markup.InlineKeyboard[1][0].URL)
}

func TestBuilderSkipsEmptyRows(t *testing.T) {
	markup := NewBuilder().AddRow().Build()
	assert.Empty(t, markup.InlineKeyboard)
}
