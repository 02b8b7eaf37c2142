package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbell/shopbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingStorage struct {
	saves int
}

func (f *failingStorage) Save(context.Context, *domain.Session) error {
	f.saves++
	return errors.New("disk full")
}

func (f *failingStorage) LoadAll(context.Context) (map[int64]*domain.Session, error) {
	return nil, errors.New("disk full")
}

func TestGetOrCreateDefaults(t *testing.T) {
	store := NewStore(testLogger(), nil)

	sess := store.GetOrCreate(42)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, domain.DefaultLanguage, sess.Language)
	assert.Equal(t, domain.FlowNone, sess.Flow)
	assert.Equal(t, domain.StepNone, sess.Step)
	assert.Equal(t, 1, store.Len())

	// second lookup returns the same record, not a fresh one
	store.Update(context.Background(), 42, func(s *domain.Session) {
		s.Flow = domain.FlowTopup
	})
	assert.Equal(t, domain.FlowTopup, store.GetOrCreate(42).Flow)
	assert.Equal(t, 1, store.Len())
}

func TestResetPreservesLanguage(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testLogger(), nil)

	store.Update(ctx, 7, func(s *domain.Session) {
		s.Language = domain.LangEN
		s.Flow = domain.FlowTopup
		s.Step = domain.StepAwaitTopupEmail
		s.TopupUSD = 20
		s.PayMethod = domain.PayCrypto
		s.Coin = domain.CoinBTC
		s.OrderToken = "ORD-7-1"
		s.Email = "user@example.com"
	})

	sess := store.Reset(ctx, 7)
	assert.Equal(t, domain.LangEN, sess.Language, "language is sticky across resets")
	assert.Equal(t, domain.FlowNone, sess.Flow)
	assert.Equal(t, domain.StepNone, sess.Step)
	assert.Zero(t, sess.TopupUSD)
	assert.Zero(t, sess.TermMonths)
	assert.Equal(t, domain.PayNone, sess.PayMethod)
	assert.Empty(t, sess.Coin)
	assert.Empty(t, sess.OrderToken)
	assert.Empty(t, sess.Email)
}

func TestSessionsEvolveIndependently(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testLogger(), nil)

	store.Update(ctx, 1, func(s *domain.Session) {
		s.Flow = domain.FlowTopup
		s.Step = domain.StepAwaitTopupEmail
		s.TopupUSD = 20
	})
	store.Update(ctx, 2, func(s *domain.Session) {
		s.Flow = domain.FlowSubscription
		s.PayMethod = domain.PayCrypto
		s.Step = domain.StepChoosingCoin
		s.TermMonths = 3
	})

	first := store.GetOrCreate(1)
	second := store.GetOrCreate(2)

	assert.Equal(t, domain.StepAwaitTopupEmail, first.Step)
	assert.Empty(t, first.Coin)
	assert.Equal(t, domain.StepChoosingCoin, second.Step)
	assert.Zero(t, second.TopupUSD)
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{}
	store := NewStore(testLogger(), storage)

	sess := store.Update(ctx, 5, func(s *domain.Session) {
		s.Flow = domain.FlowSubscription
	})
	assert.Equal(t, domain.FlowSubscription, sess.Flow, "mutation applies even when the snapshot write fails")
	assert.Equal(t, 1, storage.saves)

	store.LoadAll(ctx)
	assert.Equal(t, 1, store.Len(), "failed load keeps the in-memory state")
}

func TestLoadAllDiscardsInconsistentSessions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	storage, err := NewFileStorage(dir+"/sessions.json", testLogger())
	require.NoError(t, err)

	require.NoError(t, storage.Save(ctx, &domain.Session{
		UserID:   1,
		Language: domain.LangRU,
		Flow:     domain.FlowSubscription,
		Step:     domain.StepAwaitStatusCreds, // only reachable in the status flow
	}))
	require.NoError(t, storage.Save(ctx, &domain.Session{
		UserID:   2,
		Language: domain.LangEN,
		Flow:     domain.FlowTopup,
		Step:     domain.StepAwaitTopupEmail,
	}))

	store := NewStore(testLogger(), storage)
	store.LoadAll(ctx)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, domain.LangEN, store.GetOrCreate(2).Language)
}

func TestConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testLogger(), nil)

	var wg sync.WaitGroup
	for userID := int64(1); userID <= 8; userID++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.Update(ctx, id, func(s *domain.Session) {
					s.TopupUSD = i
				})
			}
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, 8, store.Len())
	for userID := int64(1); userID <= 8; userID++ {
		assert.Equal(t, 99, store.GetOrCreate(userID).TopupUSD)
	}
}
