package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/benbell/shopbot/internal/domain"
)

// FileStorage keeps every session in a single JSON document that is
// overwritten wholesale on each save. Only one process writes the file, so
// no cross-process locking is needed.
type FileStorage struct {
	mu    sync.Mutex
	path  string
	log   *slog.Logger
	cache map[int64]*domain.Session
}

// NewFileStorage creates a file-backed Storage rooted at path. The parent
// directory is created on demand.
func NewFileStorage(path string, log *slog.Logger) (*FileStorage, error) {
	if log == nil {
		log = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	return &FileStorage{
		path:  path,
		log:   log,
		cache: make(map[int64]*domain.Session),
	}, nil
}

// Save merges the session into the cached document and rewrites the file.
func (f *FileStorage) Save(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *s
	f.cache[s.UserID] = &copied

	document := make(map[string]*domain.Session, len(f.cache))
	for userID, sess := range f.cache {
		document[strconv.FormatInt(userID, 10)] = sess
	}

	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write session snapshot: %w", err)
	}
	return nil
}

// LoadAll reads the snapshot document. A missing file yields an empty map.
// Records with malformed keys are discarded rather than aborting startup.
func (f *FileStorage) LoadAll(_ context.Context) (map[int64]*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]*domain.Session{}, nil
		}
		return nil, fmt.Errorf("read session snapshot: %w", err)
	}

	var document map[string]*domain.Session
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}

	sessions := make(map[int64]*domain.Session, len(document))
	for key, sess := range document {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			f.log.Warn("discarding session with malformed key", slog.String("key", key))
			continue
		}
		if sess == nil {
			continue
		}
		sessions[userID] = sess
		f.cache[userID] = sess
	}

	return sessions, nil
}
