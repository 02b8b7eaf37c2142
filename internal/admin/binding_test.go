package admin

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBindFirstWriterWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.json")
	binding := NewBinding(path, 0, testLogger())

	assert.False(t, binding.Bound())
	assert.True(t, binding.Bind(100))
	assert.True(t, binding.IsOperator(100))

	assert.False(t, binding.Bind(200), "second writer must not steal the binding")
	assert.Equal(t, int64(100), binding.ID())

	assert.True(t, binding.Bind(100), "rebinding by the operator is a no-op success")
}

func TestBindingPersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "admin.json")

	first := NewBinding(path, 0, testLogger())
	require.True(t, first.Bind(77))

	second := NewBinding(path, 0, testLogger())
	assert.Equal(t, int64(77), second.ID())
}

func TestEnvironmentSeedTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.json")

	stale := NewBinding(path, 0, testLogger())
	require.True(t, stale.Bind(1))

	seeded := NewBinding(path, 99, testLogger())
	assert.Equal(t, int64(99), seeded.ID())
}

func TestMalformedFileLeavesUnbound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	binding := NewBinding(path, 0, testLogger())
	assert.False(t, binding.Bound())
}
