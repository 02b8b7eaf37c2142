package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/benbell/shopbot/internal/apperrors"
	"github.com/benbell/shopbot/internal/bot/keyboard"
	"github.com/benbell/shopbot/internal/flow"
)

// tbContextKey carries the telebot context of the update being handled so
// the outbox can edit or answer the originating message.
type tbContextKey struct{}

func withTelebotContext(ctx context.Context, c telebot.Context) context.Context {
	return context.WithValue(ctx, tbContextKey{}, c)
}

func telebotContext(ctx context.Context) telebot.Context {
	if c, ok := ctx.Value(tbContextKey{}).(telebot.Context); ok {
		return c
	}
	return nil
}

// telebotOutbox delivers flow output through the Telegram Bot API.
type telebotOutbox struct {
	tb  *telebot.Bot
	log *slog.Logger
}

func newTelebotOutbox(tb *telebot.Bot, log *slog.Logger) *telebotOutbox {
	return &telebotOutbox{tb: tb, log: log}
}

// Edit rewrites the menu message the current callback originated from.
// Editing with unchanged content is reported as success. Without an
// editable message in scope the text is sent as a new message.
func (o *telebotOutbox) Edit(ctx context.Context, userID int64, text string, menu *flow.Menu) error {
	c := telebotContext(ctx)
	if c == nil || c.Callback() == nil || c.Sender() == nil || c.Sender().ID != userID {
		return o.Send(ctx, userID, text, menu)
	}

	err := c.Edit(text, keyboard.FromMenu(menu))
	if err == nil || isNotModified(err) {
		return nil
	}
	return fmt.Errorf("edit message for %d: %w", userID, err)
}

func (o *telebotOutbox) Send(ctx context.Context, userID int64, text string, menu *flow.Menu) error {
	if err := o.deliver(ctx, userID, text, keyboard.FromMenu(menu)); err != nil {
		return fmt.Errorf("send message to %d: %w", userID, err)
	}
	return nil
}

func (o *telebotOutbox) SendAttachment(ctx context.Context, userID int64, att flow.Attachment, caption string, menu *flow.Menu) error {
	var media any
	switch att.Kind {
	case flow.AttachmentPhoto:
		media = &telebot.Photo{File: telebot.File{FileID: att.FileID}, Caption: caption}
	case flow.AttachmentDocument:
		media = &telebot.Document{File: telebot.File{FileID: att.FileID}, Caption: caption}
	default:
		return fmt.Errorf("unsupported attachment kind %q", att.Kind)
	}

	if err := o.deliver(ctx, userID, media, keyboard.FromMenu(menu)); err != nil {
		return fmt.Errorf("send attachment to %d: %w", userID, err)
	}
	return nil
}

// deliver pushes what to the chat, retrying transient failures with
// backoff. Telegram API rejections other than flood control are permanent
// and fail on the first attempt.
func (o *telebotOutbox) deliver(ctx context.Context, userID int64, what any, markup *telebot.ReplyMarkup) error {
	attempt := 0
	return apperrors.WithRetry(ctx, func() error {
		attempt++
		_, err := o.tb.Send(telebot.ChatID(userID), what, markup)
		if err == nil {
			return nil
		}
		if !isTransientSend(err) {
			return err
		}
		o.log.Warn("transient send failure",
			slog.Int64("user_id", userID),
			slog.Int("attempt", attempt),
			slog.Any("error", err))
		return apperrors.NewTransportError("send", err)
	})
}

// isTransientSend treats flood control and non-API failures (timeouts,
// connection resets) as retryable.
func isTransientSend(err error) bool {
	var flood telebot.FloodError
	if errors.As(err, &flood) {
		return true
	}

	var apiErr *telebot.Error
	return !errors.As(err, &apiErr)
}

// Notify answers the current callback with a transient toast. Outside a
// callback the text is delivered as a plain message.
func (o *telebotOutbox) Notify(ctx context.Context, userID int64, text string) error {
	c := telebotContext(ctx)
	if c != nil && c.Callback() != nil && c.Sender() != nil && c.Sender().ID == userID {
		if err := c.Respond(&telebot.CallbackResponse{Text: text}); err != nil {
			o.log.Warn("callback answer failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil
	}
	return o.Send(ctx, userID, text, nil)
}

func isNotModified(err error) bool {
	return errors.Is(err, telebot.ErrSameMessageContent) ||
		strings.Contains(err.Error(), "message is not modified")
}
