package service

import (
	"context"
	"log/slog"
	"time"

	"checkout/internal/checkout/metrics"
)

// ExpiringStore is a store that does not expire sessions on its own.
type ExpiringStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Len() int
}

// Sweeper periodically drops expired sessions from an in-process store and
// reports how many remain.
type Sweeper struct {
	store    ExpiringStore
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewSweeper(store ExpiringStore, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, interval: interval, metrics: m, logger: logger, now: time.Now}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sweep expired sessions", "error", err)
		return
	}
	if removed > 0 {
		s.logger.DebugContext(ctx, "swept expired sessions", "removed", removed)
	}
	s.metrics.SetActiveSessions(s.store.Len())
}
