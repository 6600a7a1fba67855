package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter allows at most limit attempts per key in each window. A key's
// window opens with its first attempt and a fresh one opens once it has
// fully elapsed.
type Limiter struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time

	// Now defaults to time.Now.
	Now func() time.Time
}

type bucket struct {
	lim   *rate.Limiter
	start time.Time
}

// NewLimiter creates a Limiter allowing limit attempts per window per key.
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		Now:     time.Now,
	}
}

// Allow reports whether key may make another attempt now.
func (l *Limiter) Allow(key string) bool {
	now := l.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.window {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.window {
		// One token per whole window never lands before the window closes,
		// so only the initial burst can be spent inside it.
		b = &bucket{lim: rate.NewLimiter(rate.Every(l.window), l.limit), start: now}
		l.buckets[key] = b
	}
	return b.lim.AllowN(now, 1)
}

// sweep drops keys whose window has closed.
func (l *Limiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.start) >= l.window {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
