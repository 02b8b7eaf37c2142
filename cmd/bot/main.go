package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benbell/shopbot/internal/admin"
	"github.com/benbell/shopbot/internal/apperrors"
	"github.com/benbell/shopbot/internal/bot"
	"github.com/benbell/shopbot/internal/database"
	"github.com/benbell/shopbot/internal/domain"
	"github.com/benbell/shopbot/internal/flow"
	"github.com/benbell/shopbot/internal/health"
	"github.com/benbell/shopbot/internal/i18n"
	"github.com/benbell/shopbot/internal/idempotency"
	"github.com/benbell/shopbot/internal/lifecycle"
	"github.com/benbell/shopbot/internal/order"
	"github.com/benbell/shopbot/internal/pricing"
	"github.com/benbell/shopbot/internal/profile"
	"github.com/benbell/shopbot/internal/ratelimit"
	"github.com/benbell/shopbot/internal/session"
	"github.com/benbell/shopbot/pkg/config"
	"github.com/benbell/shopbot/pkg/graceful"
	"github.com/benbell/shopbot/pkg/logger"
	"github.com/benbell/shopbot/pkg/metrics"
	pkgredis "github.com/benbell/shopbot/pkg/redis"

	_ "github.com/lib/pq"
)

const profileCacheTTL = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	sentryEnabled := cfg.Sentry.DSN != ""
	if sentryEnabled {
		env := cfg.Sentry.Environment
		if env == "" {
			env = cfg.AppEnv
		}
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      env,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("initialize sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(cfg.Logger, sentryEnabled)
	slog.SetDefault(log)

	log.Info("starting shop bot",
		slog.String("env", cfg.AppEnv),
		slog.String("storage", cfg.Storage.Backend),
		slog.String("http_port", cfg.HTTP.Port),
	)

	config.Watch(v, log, func(updated *config.Config) {
		// Token, storage backend and listeners need a restart; only the
		// logger-independent knobs apply live.
		log.Info("configuration file changed",
			slog.Int("rate_limit", updated.RateLimit.PerUserLimit))
	})

	shutdown := lifecycle.NewShutdown(log)

	var (
		rdb     *pkgredis.Client
		storage session.Storage
		limiter ratelimit.Limiter
		deduper idempotency.Deduper
	)

	switch cfg.Storage.Backend {
	case "redis":
		rdb, err = pkgredis.New(ctx, pkgredis.Config{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		shutdown.Register("redis", func(context.Context) error { return rdb.Close() })

		storage = session.NewRedisStorage(rdb.Client, log)
		limiter = ratelimit.NewRedisLimiter(rdb.Client, log)
		deduper = idempotency.NewRedisDeduper(rdb.Client)

	default:
		storage, err = session.NewFileStorage(cfg.Storage.File, log)
		if err != nil {
			return fmt.Errorf("open session file: %w", err)
		}

		memLimiter := ratelimit.NewMemoryLimiter()
		memDeduper := idempotency.NewMemoryDeduper()
		go memDeduper.RunCleanup(ctx, time.Minute)
		limiter = memLimiter
		deduper = memDeduper
	}

	sessions := session.NewStore(log, storage)
	sessions.LoadAll(ctx)

	orders := order.NewTable()
	tokens := order.NewTokenSource()
	operator := admin.NewBinding(cfg.Bot.AdminFile, cfg.Bot.AdminID, log)

	translations, err := i18n.Load("ru")
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	checker := health.NewChecker(log)

	var finder profile.Finder
	if cfg.Database.Enabled {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		shutdown.Register("postgres", func(context.Context) error { return db.Close() })

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		migrator := database.NewMigrator(db, log)
		if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		finder = profile.NewRepository(db, log)
		if rdb != nil {
			finder = profile.NewCachingFinder(finder, rdb.Client, profileCacheTTL, log)
		}
		checker.AddCheck("postgres", health.NewDBChecker(db))
	}

	if rdb != nil {
		checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	}

	b, err := bot.New(bot.Config{
		Token:       cfg.Bot.Token,
		PollTimeout: time.Duration(cfg.Bot.PollTimeoutSecs) * time.Second,
	}, bot.Deps{
		Log:          log,
		Sessions:     sessions,
		Orders:       orders,
		Tokens:       tokens,
		Catalog:      buildCatalog(cfg.Pricing),
		Operator:     operator,
		Profiles:     finder,
		Translations: translations,
		Payment:      buildPaymentInfo(cfg.Payment),
		ErrHandler:   apperrors.NewHandler(log, sentryEnabled),
		Limiter:      limiter,
		Rules: ratelimit.NewRules(
			cfg.RateLimit.PerUserLimit,
			time.Duration(cfg.RateLimit.WindowSecs)*time.Second,
			cfg.RateLimit.Whitelist,
		),
		Deduper: deduper,
	})
	if err != nil {
		return err
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	flow.RegisterTransitionRecorder(metrics.RecordStepTransition)
	flow.RegisterOrderRecorder(metrics.RecordOrderSubmitted)
	flow.RegisterDecisionRecorder(metrics.RecordOrderDecision)

	collector := metrics.NewGaugeCollector(sessions, orders)
	go collector.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/healthz", checker.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	httpSrv := graceful.NewServer(log, &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           logger.Middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}, 10*time.Second)

	httpErr := make(chan error, 1)
	go func() { httpErr <- httpSrv.ListenAndServe(ctx) }()

	shutdown.Register("telegram poller", func(context.Context) error {
		b.Stop()
		return nil
	})

	go b.Start()
	log.Info("shop bot is running")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-httpErr:
		if err != nil {
			log.Error("http server failed", slog.Any("error", err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// buildCatalog maps the pricing section onto the catalog, falling back to
// the shipped price list for any empty part.
func buildCatalog(cfg config.PricingConfig) *pricing.Catalog {
	catalog := pricing.Default()

	if cfg.RateRUBPerUSD > 0 {
		catalog.Rate = cfg.RateRUBPerUSD
	}
	if len(cfg.Terms) > 0 {
		catalog.Subscriptions = make(map[int]int, len(cfg.Terms))
		for _, term := range cfg.Terms {
			catalog.Subscriptions[term.Months] = term.USD
		}
	}
	if len(cfg.TopupAmounts) > 0 {
		catalog.TopupAmounts = cfg.TopupAmounts
	}

	return catalog
}

func buildPaymentInfo(cfg config.PaymentConfig) flow.PaymentInfo {
	coins := make(map[domain.Coin]string, len(cfg.CoinAddresses))
	for coin, addr := range cfg.CoinAddresses {
		coins[domain.Coin(coin)] = addr
	}

	return flow.PaymentInfo{
		BankName:         cfg.BankName,
		BankReceiver:     cfg.BankReceiver,
		BankAccount:      cfg.BankAccount,
		CoinAddresses:    coins,
		SupportContact:   cfg.SupportContact,
		SupportURL:       cfg.SupportURL,
		WorkdayStartHour: cfg.WorkdayStartHour,
		WorkdayEndHour:   cfg.WorkdayEndHour,
	}
}
