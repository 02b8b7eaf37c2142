package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	s := NewShutdown(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	var order []string
	s.Register("redis", func(context.Context) error {
		order = append(order, "redis")
		return nil
	})
	s.Register("sessions", func(context.Context) error {
		order = append(order, "sessions")
		return nil
	})
	s.Register("poller", func(context.Context) error {
		order = append(order, "poller")
		return nil
	})

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"poller", "sessions", "redis"}, order)
}

func TestShutdownCollectsFailuresAndKeepsGoing(t *testing.T) {
	s := NewShutdown(nil)

	var ran []string
	s.Register("db", func(context.Context) error {
		ran = append(ran, "db")
		return nil
	})
	s.Register("flush", func(context.Context) error {
		ran = append(ran, "flush")
		return errors.New("disk full")
	})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush: disk full")
	assert.Equal(t, []string{"flush", "db"}, ran)
}

func TestShutdownIgnoresNilHooks(t *testing.T) {
	s := NewShutdown(nil)
	s.Register("noop", nil)
	require.NoError(t, s.Execute(context.Background()))
}
