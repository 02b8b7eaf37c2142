package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbell/shopbot/internal/domain"
)

func TestFileStorageRoundtrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "sessions.json")

	storage, err := NewFileStorage(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, storage.Save(ctx, &domain.Session{
		UserID:   10,
		Language: domain.LangEN,
		Flow:     domain.FlowTopup,
		Step:     domain.StepAwaitTopupEmail,
		TopupUSD: 50,
	}))
	require.NoError(t, storage.Save(ctx, &domain.Session{
		UserID:   11,
		Language: domain.LangRU,
	}))

	reopened, err := NewFileStorage(path, testLogger())
	require.NoError(t, err)

	sessions, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 50, sessions[10].TopupUSD)
	assert.Equal(t, domain.LangRU, sessions[11].Language)
}

func TestFileStorageLoadMissingFile(t *testing.T) {
	storage, err := NewFileStorage(filepath.Join(t.TempDir(), "sessions.json"), testLogger())
	require.NoError(t, err)

	sessions, err := storage.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestFileStorageDiscardsMalformedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	document := `{
		"not-a-number": {"user_id": 0, "language": "ru"},
		"12": {"user_id": 12, "language": "en"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	storage, err := NewFileStorage(path, testLogger())
	require.NoError(t, err)

	sessions, err := storage.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.LangEN, sessions[12].Language)
}

func TestFileStorageOverwritesWholesale(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.json")

	storage, err := NewFileStorage(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, storage.Save(ctx, &domain.Session{UserID: 1, Language: domain.LangRU, TopupUSD: 5}))
	require.NoError(t, storage.Save(ctx, &domain.Session{UserID: 1, Language: domain.LangRU, TopupUSD: 100}))

	sessions, err := storage.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 100, sessions[1].TopupUSD)
}
