package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/benbell/shopbot/internal/flow"
)

// Router translates raw Telegram updates into flow events and dispatches
// them to the conversation machine or the operator desk.
type Router struct {
	mu          sync.RWMutex
	commands    map[string]Handler
	middlewares []Middleware

	machine *flow.Machine
	desk    *flow.Desk
	log     *slog.Logger
}

// NewRouter builds a Router over the machine and desk.
func NewRouter(machine *flow.Machine, desk *flow.Desk, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]Handler),
		middlewares: make([]Middleware, 0),
		machine:     machine,
		desk:        desk,
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command.
func (r *Router) RegisterCommand(cmd string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil || c.Sender() == nil {
		return nil
	}

	if callback := c.Callback(); callback != nil {
		return r.execute(r.handleCallback, c)
	}
	return r.execute(r.handleMessage, c)
}

func (r *Router) handleCallback(c telebot.Context) error {
	user := userRef(c)
	data := strings.TrimPrefix(c.Callback().Data, "\f")
	ctx := withTelebotContext(context.Background(), c)

	// Operator verdicts route to the desk, everything else to the machine.
	if dec, isDecision, err := flow.ParseDecision(user, data); isDecision {
		if err != nil {
			r.log.Warn("malformed decision payload", slog.Int64("user_id", user.ID), slog.String("data", data))
			return respond(c)
		}
		if err := r.desk.HandleDecision(ctx, dec); err != nil {
			return err
		}
		return respond(c)
	}

	ev, err := flow.ParseCallback(user, data)
	if err != nil {
		var unknown *flow.ErrUnknownCallback
		if errors.As(err, &unknown) {
			r.log.Warn("unknown callback payload", slog.Int64("user_id", user.ID), slog.String("data", data))
			return respond(c)
		}
		return err
	}

	if err := r.machine.HandleEvent(ctx, ev); err != nil {
		return err
	}
	return respond(c)
}

func (r *Router) handleMessage(c telebot.Context) error {
	user := userRef(c)
	ctx := withTelebotContext(context.Background(), c)

	msg := c.Message()
	if msg != nil {
		if msg.Photo != nil {
			ev := flow.Event{
				Kind:       flow.EventPhotoUpload,
				User:       user,
				Attachment: &flow.Attachment{Kind: flow.AttachmentPhoto, FileID: msg.Photo.FileID},
			}
			return r.machine.HandleEvent(ctx, ev)
		}
		if msg.Document != nil {
			ev := flow.Event{
				Kind:       flow.EventDocumentUpload,
				User:       user,
				Attachment: &flow.Attachment{Kind: flow.AttachmentDocument, FileID: msg.Document.FileID},
			}
			return r.machine.HandleEvent(ctx, ev)
		}
	}

	text := strings.TrimSpace(c.Text())
	if strings.HasPrefix(text, "/") {
		if handler := r.commandHandler(commandName(text)); handler != nil {
			return handler(c)
		}
	}

	return r.machine.HandleEvent(ctx, flow.Event{Kind: flow.EventFreeText, User: user, Text: text})
}

func (r *Router) execute(h Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	return wrapped(c)
}

func (r *Router) commandHandler(cmd string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[cmd]
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h Handler) Handler {
	r.mu.RLock()
	middlewares := make([]Middleware, len(r.middlewares))
	copy(middlewares, r.middlewares)
	r.mu.RUnlock()

	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

// commandName strips bot-mention suffixes, so "/start@shop_bot" matches
// the plain command.
func commandName(text string) string {
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

func userRef(c telebot.Context) flow.UserRef {
	sender := c.Sender()
	fullName := strings.TrimSpace(sender.FirstName + " " + sender.LastName)

	return flow.UserRef{
		ID:       sender.ID,
		Username: sender.Username,
		FullName: fullName,
	}
}

// respond clears the callback spinner. The machine may have answered the
// callback already, which Telegram reports as an error worth ignoring.
func respond(c telebot.Context) error {
	_ = c.Respond()
	return nil
}
