// Package keyboard renders flow menus as Telegram inline markup.
package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/benbell/shopbot/internal/flow"
)

// Builder accumulates rows of inline buttons before rendering telebot markup.
type Builder struct {
	rows [][]telebot.InlineButton
}

// NewBuilder creates an empty inline keyboard builder.
func NewBuilder() *Builder {
	return &Builder{rows: make([][]telebot.InlineButton, 0)}
}

// AddRow appends a row of buttons.
func (b *Builder) AddRow(buttons ...telebot.InlineButton) *Builder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]telebot.InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build finalizes the inline markup.
func (b *Builder) Build() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{InlineKeyboard: b.rows}
}

// FromMenu converts a flow menu into telebot inline markup. A nil menu
// yields nil markup so callers can pass it straight to Send.
func FromMenu(menu *flow.Menu) *telebot.ReplyMarkup {
	if menu == nil || len(menu.Rows) == 0 {
		return nil
	}

	b := NewBuilder()
	for _, row := range menu.Rows {
		buttons := make([]telebot.InlineButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, telebot.InlineButton{
				Text: btn.Label,
				Data: btn.Data,
				URL:  btn.URL,
			})
		}
		b.AddRow(buttons...)
	}
	return b.Build()
}
