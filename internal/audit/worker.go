package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrQueueFull is returned by Queue.Append when the buffer is saturated.
	ErrQueueFull = errors.New("audit queue full")
	// ErrQueueClosed is returned by Queue.Append after Close.
	ErrQueueClosed = errors.New("audit queue closed")
)

// Queue is a Store that buffers events for a Worker. Append never blocks.
type Queue struct {
	mu     sync.RWMutex
	closed bool
	ch     chan Event
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Event, size)}
}

func (q *Queue) Append(_ context.Context, event Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events. The Worker persists what is buffered and
// then returns. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Events exposes the buffered events to a Worker.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

// Worker consumes audit events from a channel and persists them. Sink
// failures are logged and the event dropped; audit never blocks checkout.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run persists events until the inbox is closed and empty. Cancelling ctx
// does not stop it: requests still draining during shutdown keep emitting,
// so the owner closes the Queue once they are done.
func (w *Worker) Run(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	for event := range w.inbox {
		w.append(ctx, event)
	}
	return nil
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err,
			"action", string(event.Action),
			"session_id", event.SessionID,
		)
	}
}
