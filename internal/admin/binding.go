// Package admin tracks the single operator identity authorized to resolve
// payment submissions.
package admin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type bindingDocument struct {
	AdminID int64 `json:"admin_id"`
}

// Binding holds the bound operator id. Zero means unbound: actions that
// need an operator are rejected until somebody binds.
type Binding struct {
	mu   sync.Mutex
	id   int64
	path string
	log  *slog.Logger
}

// NewBinding restores the operator id from the binding file. A non-zero
// seed (typically from the environment) takes precedence over the file.
// A missing or unreadable file leaves the binding empty.
func NewBinding(path string, seed int64, log *slog.Logger) *Binding {
	if log == nil {
		log = slog.Default()
	}

	b := &Binding{path: path, log: log}

	if seed != 0 {
		b.id = seed
		return b
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("operator binding file unreadable", slog.String("path", path), slog.Any("error", err))
		}
		return b
	}

	var doc bindingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("operator binding file malformed", slog.String("path", path), slog.Any("error", err))
		return b
	}

	b.id = doc.AdminID
	return b
}

// ID returns the bound operator id, or zero when unbound.
func (b *Binding) ID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id
}

// Bound reports whether an operator identity is set.
func (b *Binding) Bound() bool {
	return b.ID() != 0
}

// IsOperator reports whether userID matches the bound operator.
func (b *Binding) IsOperator(userID int64) bool {
	id := b.ID()
	return id != 0 && id == userID
}

// Bind claims the operator identity with first-writer semantics: the first
// caller wins, a later caller succeeds only if it is the operator already.
// The binding is persisted best-effort; write failures are logged and
// swallowed, the in-memory binding stays effective.
func (b *Binding) Bind(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.id != 0 && b.id != userID {
		return false
	}

	b.id = userID
	if err := b.persistLocked(); err != nil {
		b.log.Warn("operator binding write failed", slog.Any("error", err))
	}
	return true
}

func (b *Binding) persistLocked() error {
	if b.path == "" {
		return nil
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create binding dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(bindingDocument{AdminID: b.id}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode binding: %w", err)
	}

	if err := os.WriteFile(b.path, data, 0o600); err != nil {
		return fmt.Errorf("write binding: %w", err)
	}
	return nil
}
