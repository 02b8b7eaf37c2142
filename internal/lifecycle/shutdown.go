// Package lifecycle sequences shutdown of the bot's components.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultHookTimeout bounds how long a single shutdown step may take.
const DefaultHookTimeout = 10 * time.Second

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks in reverse registration order, so
// components stop before the stores and connections they depend on.
// The poller must go down before sessions are flushed, and sessions
// must be flushed before Redis or Postgres close.
type Shutdown struct {
	mu          sync.Mutex
	hooks       []hook
	hookTimeout time.Duration
	log         *slog.Logger
}

// NewShutdown constructs a coordinator with the default per-hook timeout.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{hookTimeout: DefaultHookTimeout, log: log}
}

// Register adds a named hook. Hooks registered later run earlier.
func (s *Shutdown) Register(name string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Execute runs all hooks sequentially, newest first. Every hook runs
// even when an earlier one fails; failures are collected and returned
// as a single error.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var failures []string
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]

		hookCtx, cancel := context.WithTimeout(ctx, s.hookTimeout)
		err := h.fn(hookCtx)
		cancel()

		if err != nil {
			s.log.Error("shutdown hook failed", slog.String("hook", h.name), slog.Any("error", err))
			failures = append(failures, fmt.Sprintf("%s: %v", h.name, err))
			continue
		}

		s.log.Info("shutdown hook completed", slog.String("hook", h.name))
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}

	return nil
}
