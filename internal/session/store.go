// Package session manages per-user conversation sessions.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbell/shopbot/internal/domain"
)

// Storage persists session snapshots. Persistence is a best-effort cache,
// not a transactional ledger: callers swallow every error it returns.
type Storage interface {
	// Save persists the current snapshot of one session.
	Save(ctx context.Context, s *domain.Session) error
	// LoadAll returns every persisted session keyed by user id.
	LoadAll(ctx context.Context) (map[int64]*domain.Session, error)
}

// Store is the process-wide session registry. All mutation goes through
// Update so that writes to one session are serialized even when the
// transport dispatches updates on parallel goroutines.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
	storage  Storage
	log      *slog.Logger
	now      func() time.Time
}

// NewStore creates a Store with an optional durable storage backend.
func NewStore(log *slog.Logger, storage Storage) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		sessions: make(map[int64]*domain.Session),
		storage:  storage,
		log:      log,
		now:      time.Now,
	}
}

// LoadAll restores persisted sessions into memory. Failures are logged and
// swallowed: an empty store is an acceptable starting point.
func (s *Store) LoadAll(ctx context.Context) {
	if s.storage == nil {
		return
	}

	loaded, err := s.storage.LoadAll(ctx)
	if err != nil {
		s.log.Warn("session snapshot load failed, starting empty", slog.Any("error", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, sess := range loaded {
		if sess == nil {
			continue
		}
		if !sess.StepConsistent() {
			s.log.Warn("discarding inconsistent persisted session",
				slog.Int64("user_id", userID),
				slog.String("flow", string(sess.Flow)),
				slog.String("step", string(sess.Step)))
			continue
		}
		sess.UserID = userID
		s.sessions[userID] = sess
	}

	s.log.Info("session snapshot loaded", slog.Int("sessions", len(s.sessions)))
}

// GetOrCreate returns a copy of the user's session, creating a default one
// when the user is seen for the first time. It never reports absence.
func (s *Store) GetOrCreate(userID int64) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreateLocked(userID)
}

// Update applies fn to the user's session under the store lock, stamps the
// mutation time, persists the result best-effort, and returns a copy.
func (s *Store) Update(ctx context.Context, userID int64, fn func(*domain.Session)) domain.Session {
	s.mu.Lock()
	sess := s.getOrCreateLocked(userID)
	fn(sess)
	sess.UpdatedAt = s.now()
	snapshot := *sess
	s.mu.Unlock()

	s.persist(ctx, &snapshot)
	return snapshot
}

// Reset restores the session to its defaults. Language survives the reset.
func (s *Store) Reset(ctx context.Context, userID int64) domain.Session {
	return s.Update(ctx, userID, func(sess *domain.Session) {
		sess.ResetFlow()
	})
}

// Len reports how many sessions are held in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(userID int64) *domain.Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = domain.NewSession(userID)
		s.sessions[userID] = sess
	}
	return sess
}

func (s *Store) persist(ctx context.Context, sess *domain.Session) {
	if s.storage == nil {
		return
	}

	if err := s.storage.Save(ctx, sess); err != nil {
		s.log.Warn("session snapshot write failed",
			slog.Int64("user_id", sess.UserID),
			slog.Any("error", err))
	}
}
