// Package bot wires the Telegram transport to the conversation machine.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/benbell/shopbot/internal/admin"
	"github.com/benbell/shopbot/internal/apperrors"
	"github.com/benbell/shopbot/internal/flow"
	"github.com/benbell/shopbot/internal/i18n"
	"github.com/benbell/shopbot/internal/idempotency"
	"github.com/benbell/shopbot/internal/order"
	"github.com/benbell/shopbot/internal/pricing"
	"github.com/benbell/shopbot/internal/profile"
	"github.com/benbell/shopbot/internal/ratelimit"
	"github.com/benbell/shopbot/internal/session"
)

// Config holds the transport settings.
type Config struct {
	Token       string
	PollTimeout time.Duration
}

// Deps bundles the collaborators the transport needs.
type Deps struct {
	Log          *slog.Logger
	Sessions     *session.Store
	Orders       *order.Table
	Tokens       *order.TokenSource
	Catalog      *pricing.Catalog
	Operator     *admin.Binding
	Profiles     profile.Finder
	Translations *i18n.Manager
	Payment      flow.PaymentInfo
	ErrHandler   *apperrors.Handler
	Limiter      ratelimit.Limiter
	Rules        *ratelimit.Rules
	Deduper      idempotency.Deduper
}

// Bot owns the telebot instance and the update routing.
type Bot struct {
	telebot *telebot.Bot
	router  *Router
	machine *flow.Machine
	desk    *flow.Desk
	log     *slog.Logger
}

// New builds the Telegram bot, the conversation machine, and the operator
// desk, and registers all update handlers.
func New(cfg Config, deps Deps) (*Bot, error) {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.PollTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	params := flow.Params{
		Sessions:     deps.Sessions,
		Orders:       deps.Orders,
		Tokens:       deps.Tokens,
		Catalog:      deps.Catalog,
		Operator:     deps.Operator,
		Profiles:     deps.Profiles,
		Translations: deps.Translations,
		Outbox:       newTelebotOutbox(tb, log),
		Payment:      deps.Payment,
		Log:          log,
	}

	machine := flow.NewMachine(params)
	desk := flow.NewDesk(params)
	router := NewRouter(machine, desk, log)

	b := &Bot{
		telebot: tb,
		router:  router,
		machine: machine,
		desk:    desk,
		log:     log,
	}

	b.setupRouter(deps)
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the long-polling event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	b.telebot.Start()
}

// Stop gracefully stops the event loop.
func (b *Bot) Stop() {
	b.log.Info("stopping telegram bot")
	b.telebot.Stop()
}

// Telebot exposes the underlying instance for integrations such as health
// checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(deps Deps) {
	b.router.Use(RecoveryMiddleware(b.log, deps.ErrHandler))
	b.router.Use(DedupeMiddleware(deps.Deduper, b.log))
	b.router.Use(ErrorHandlingMiddleware(deps.ErrHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(RateLimitMiddleware(deps.Limiter, deps.Rules, b.log))

	b.router.RegisterCommand(CommandStart, b.eventCommand(flow.EventStart))
	b.router.RegisterCommand(CommandAdmin, b.eventCommand(flow.EventAdminBind))
}

// eventCommand maps a slash command straight to a flow event.
func (b *Bot) eventCommand(kind flow.EventKind) Handler {
	return func(c telebot.Context) error {
		ctx := withTelebotContext(context.Background(), c)
		return b.machine.HandleEvent(ctx, flow.Event{Kind: kind, User: userRef(c)})
	}
}

func (b *Bot) registerTelebotHandlers() {
	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
	b.telebot.Handle(telebot.OnPhoto, b.router.Route)
	b.telebot.Handle(telebot.OnDocument, b.router.Route)
}
