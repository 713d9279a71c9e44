package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout/internal/checkout/models"
	"checkout/internal/checkout/store"
	dErrors "checkout/pkg/domain-errors"
)

func TestShardedSessionTx(t *testing.T) {
	t.Run("runs fn with the store", func(t *testing.T) {
		st := store.NewInMemoryStore()
		tx := newShardedSessionTx(st, 0)
		called := false
		err := tx.RunInTx(context.Background(), models.NewSessionID(), func(s Store) error {
			called = true
			assert.Same(t, st, s)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("gives up while the shard is held", func(t *testing.T) {
		tx := newShardedSessionTx(store.NewInMemoryStore(), 20*time.Millisecond)
		id := models.NewSessionID()
		lock := tx.shards[shardFor(id)]
		lock <- struct{}{}
		defer func() { <-lock }()

		start := time.Now()
		err := tx.RunInTx(context.Background(), id, func(Store) error {
			t.Fatal("fn must not run without the lock")
			return nil
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.Less(t, time.Since(start), time.Second, "waiter must not block on a stuck holder")
	})

	t.Run("releases the shard after fn", func(t *testing.T) {
		tx := newShardedSessionTx(store.NewInMemoryStore(), 0)
		id := models.NewSessionID()
		require.NoError(t, tx.RunInTx(context.Background(), id, func(Store) error { return nil }))
		require.NoError(t, tx.RunInTx(context.Background(), id, func(Store) error { return nil }))
		assert.Empty(t, tx.shards[shardFor(id)])
	})

	t.Run("shard is stable per session", func(t *testing.T) {
		id := models.NewSessionID()
		assert.Equal(t, shardFor(id), shardFor(id))
		assert.Less(t, shardFor(id), numSessionShards)
	})
}
