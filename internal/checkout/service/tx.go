package service

import (
	"context"
	"hash/fnv"
	"time"

	"checkout/internal/checkout/models"
	dErrors "checkout/pkg/domain-errors"
)

// SessionTx serializes mutations of one checkout session. Implementations
// may wrap a distributed lock or, in-process, a sharded mutex.
type SessionTx interface {
	RunInTx(ctx context.Context, id models.SessionID, fn func(store Store) error) error
}

// numSessionShards bounds lock memory; sessions hashing to the same shard
// share a lock.
const numSessionShards = 128

const defaultTxTimeout = 5 * time.Second

// Each shard is a one-slot channel so waiters can give up on ctx.
type shardedSessionTx struct {
	shards  [numSessionShards]chan struct{}
	store   Store
	timeout time.Duration
}

func newShardedSessionTx(store Store, timeout time.Duration) *shardedSessionTx {
	t := &shardedSessionTx{store: store, timeout: timeout}
	for i := range t.shards {
		t.shards[i] = make(chan struct{}, 1)
	}
	return t
}

func (t *shardedSessionTx) RunInTx(ctx context.Context, id models.SessionID, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lock := t.shards[shardFor(id)]
	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: session lock not acquired")
	}
	defer func() { <-lock }()

	// Both select cases may have been ready.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(t.store)
}

func shardFor(id models.SessionID) int {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return int(h.Sum32() % numSessionShards)
}
