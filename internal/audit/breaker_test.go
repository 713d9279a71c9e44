package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.Allow())
	assert.False(t, cb.RecordFailure())
	assert.True(t, cb.RecordFailure(), "second failure opens")
	assert.False(t, cb.RecordFailure(), "already open")
	assert.True(t, cb.IsOpen())
	assert.False(t, cb.Allow())

	now = now.Add(time.Minute + time.Second)
	assert.True(t, cb.Allow(), "cooldown elapsed")
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	cb.RecordSuccess()
	assert.False(t, cb.RecordFailure(), "success resets the count")
}

type flakyStore struct {
	err   error
	calls int
}

func (s *flakyStore) Append(context.Context, Event) error {
	s.calls++
	return s.err
}

func TestBreakerStore(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("healthy primary receives events", func(t *testing.T) {
		primary := &flakyStore{}
		fallback := NewInMemoryStore()
		store := NewBreakerStore(primary, fallback, NewCircuitBreaker(1, time.Minute), logger)

		require.NoError(t, store.Append(ctx, Event{SessionID: "s1"}))
		assert.Equal(t, 1, primary.calls)
		events, _ := fallback.ListAll(ctx)
		assert.Empty(t, events)
	})

	t.Run("open circuit skips primary", func(t *testing.T) {
		primary := &flakyStore{err: errors.New("broker down")}
		fallback := NewInMemoryStore()
		store := NewBreakerStore(primary, fallback, NewCircuitBreaker(2, time.Minute), logger)

		for range 4 {
			require.NoError(t, store.Append(ctx, Event{SessionID: "s1"}))
		}
		assert.Equal(t, 2, primary.calls)
		events, _ := fallback.ListAll(ctx)
		assert.Len(t, events, 4)
	})
}
