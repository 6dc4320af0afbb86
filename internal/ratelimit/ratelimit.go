// Package ratelimit paces outbound provider calls: a global minimum
// interval between any two calls, plus a per-source minimum interval.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultGlobalDelay = 100 * time.Millisecond
	DefaultSourceDelay = 500 * time.Millisecond
)

// Limiter enforces both intervals. Safe for concurrent use; all state sits
// behind one mutex, per-source limiters are keyed by source identifier.
type Limiter struct {
	mu          sync.Mutex
	globalDelay time.Duration
	sourceDelay time.Duration
	global      *rate.Limiter
	perSource   map[string]*rate.Limiter
}

func New(globalDelay, sourceDelay time.Duration) *Limiter {
	if globalDelay <= 0 {
		globalDelay = DefaultGlobalDelay
	}
	if sourceDelay <= 0 {
		sourceDelay = DefaultSourceDelay
	}
	return &Limiter{
		globalDelay: globalDelay,
		sourceDelay: sourceDelay,
		global:      rate.NewLimiter(rate.Every(globalDelay), 1),
		perSource:   map[string]*rate.Limiter{},
	}
}

// Wait blocks until the global interval has elapsed since the last call and,
// when source is non-empty, the per-source interval since the last call for
// that source. Returns early with ctx.Err() on cancellation.
func (l *Limiter) Wait(ctx context.Context, source string) error {
	if err := l.globalLimiter().Wait(ctx); err != nil {
		return err
	}
	if source == "" {
		return nil
	}
	return l.sourceLimiter(source).Wait(ctx)
}

func (l *Limiter) globalLimiter() *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.global
}

func (l *Limiter) sourceLimiter(source string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.perSource[source]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.sourceDelay), 1)
		l.perSource[source] = lim
	}
	return lim
}

// Reset clears all recorded call times. Test isolation only.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.global = rate.NewLimiter(rate.Every(l.globalDelay), 1)
	l.perSource = map[string]*rate.Limiter{}
}
