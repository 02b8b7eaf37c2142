package bot

import (
	telebot "gopkg.in/telebot.v3"
)

// Bot command constants.
const (
	CommandStart = "/start"
	CommandAdmin = "/admin"
)

// Handler processes one Telegram update.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler
