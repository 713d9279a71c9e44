package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CircuitBreaker opens after threshold consecutive failures and stays open
// for cooldown. After the cooldown it lets calls through again.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	openUntil time.Time
	open      bool
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Allow reports whether the protected call should be attempted.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.open && cb.now().After(cb.openUntil) {
		cb.open = false
		cb.failures = 0
	}
	return !cb.open
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.open = false
}

// RecordFailure counts a failure and reports whether the circuit just
// opened.
func (cb *CircuitBreaker) RecordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	if !cb.open && cb.failures >= cb.threshold {
		cb.open = true
		cb.openUntil = cb.now().Add(cb.cooldown)
		return true
	}
	return false
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.open
}

// BreakerStore sends events to primary while it is healthy and diverts them
// to fallback when primary fails or its circuit is open.
type BreakerStore struct {
	primary  Store
	fallback Store
	breaker  *CircuitBreaker
	logger   *slog.Logger
}

func NewBreakerStore(primary, fallback Store, breaker *CircuitBreaker, logger *slog.Logger) *BreakerStore {
	return &BreakerStore{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *BreakerStore) Append(ctx context.Context, event Event) error {
	if !s.breaker.Allow() {
		return s.fallback.Append(ctx, event)
	}
	if err := s.primary.Append(ctx, event); err != nil {
		if s.breaker.RecordFailure() {
			s.logger.WarnContext(ctx, "audit sink circuit opened", "error", err)
		}
		return s.fallback.Append(ctx, event)
	}
	s.breaker.RecordSuccess()
	return nil
}
