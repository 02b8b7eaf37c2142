package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/benbell/shopbot/internal/apperrors"
	"github.com/benbell/shopbot/internal/idempotency"
	"github.com/benbell/shopbot/internal/ratelimit"
	"github.com/benbell/shopbot/pkg/metrics"
)

const dedupeTTL = 10 * time.Minute

// RecoveryMiddleware catches panics, reports them through the centralized
// handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next Handler) Handler {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️ Something went wrong. Please try again later."
					if errHandler != nil {
						appErr := apperrors.NewTransportError("handler", fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(context.Background(), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging
// for handler failures.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) Middleware {
	return func(next Handler) Handler {
		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := "Произошла ошибка. Попробуйте позже"
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates and feeds
// the update counters.
func LoggingMiddleware(log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next Handler) Handler {
		return func(c telebot.Context) error {
			start := time.Now()
			userID := int64(0)
			if c.Sender() != nil {
				userID = c.Sender().ID
			}

			kind := "message"
			action := c.Text()
			if cb := c.Callback(); cb != nil {
				kind = "callback"
				action = cb.Data
			}

			err := next(c)

			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordUpdate(kind, status, time.Since(start))

			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("kind", kind),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// RateLimitMiddleware enforces per-user limits on incoming updates.
func RateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next Handler) Handler {
		return func(c telebot.Context) error {
			if limiter == nil || !rules.Enabled() || c.Sender() == nil {
				return next(c)
			}

			userID := c.Sender().ID
			if rules.IsWhitelisted(userID) {
				return next(c)
			}

			limit, window := rules.PerUserLimit()
			key := fmt.Sprintf("user:%d", userID)

			result, err := limiter.Check(context.Background(), key, limit, window)
			if err != nil {
				// the limiter failing open beats dropping updates
				log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
				return next(c)
			}

			if !result.Allowed {
				log.Warn("rate limit exceeded", slog.Int64("user_id", userID))
				if cb := c.Callback(); cb != nil {
					return c.Respond(&telebot.CallbackResponse{Text: "Слишком много запросов."})
				}
				return c.Send("Слишком много запросов. Подождите немного.")
			}

			return next(c)
		}
	}
}

// DedupeMiddleware drops updates that were already handled. Long polling
// redelivers updates after timeouts, and a redelivered payment proof must
// not produce a second pending order.
func DedupeMiddleware(deduper idempotency.Deduper, log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next Handler) Handler {
		return func(c telebot.Context) error {
			if deduper == nil || c.Update().ID == 0 {
				return next(c)
			}

			key := idempotency.Key("update", c.Update().ID)
			seen, err := deduper.Seen(context.Background(), key, dedupeTTL)
			if err != nil {
				log.Warn("dedupe check failed", slog.Any("error", err))
				return next(c)
			}

			if seen {
				log.Info("duplicate update dropped", slog.Int("update_id", c.Update().ID))
				if cb := c.Callback(); cb != nil {
					_ = c.Respond()
				}
				return nil
			}

			return next(c)
		}
	}
}
