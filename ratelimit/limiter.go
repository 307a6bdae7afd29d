// Package ratelimit implements an in-process fixed-window request limiter
// for endpoints where per-node enforcement is sufficient and a Redis round
// trip per request is not worth it.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per key inside a fixed window. State is local to
// the process; a multi-node deployment multiplies the effective limit by
// the node count, which is acceptable for abuse throttling.
type Limiter struct {
	limit  int
	window time.Duration
	clock  clockwork.Clock

	mu      sync.Mutex
	buckets map[string]*bucket

	sweepOnce sync.Once
	stop      chan struct{}
	stopOnce  sync.Once
}

// New creates a Limiter allowing limit requests per window for each key.
func New(limit int, window time.Duration) *Limiter {
	return NewWithClock(limit, window, clockwork.NewRealClock())
}

// NewWithClock is New with an injected clock, for tests.
func NewWithClock(limit int, window time.Duration, clock clockwork.Clock) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		clock:   clock,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
}

// Allow reports whether the key has budget left in the current window and
// consumes one unit if so. The first request after a window lapses resets
// the bucket.
func (l *Limiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || !b.resetAt.After(now) {
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

// Start launches a background sweeper that drops lapsed buckets so the map
// does not grow with every IP ever seen. Calling Start more than once is a
// no-op.
func (l *Limiter) Start() {
	l.sweepOnce.Do(func() {
		go l.sweep()
	})
}

// Stop terminates the sweeper. Idempotent.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *Limiter) sweep() {
	ticker := l.clock.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.Chan():
			now := l.clock.Now()
			l.mu.Lock()
			for key, b := range l.buckets {
				if !b.resetAt.After(now) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
