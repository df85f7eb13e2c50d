// Package ratelimit provides a sliding-window admission gate used to
// throttle delivery of inbound data frames to consumers.
package ratelimit

import (
	"sync"
	"time"
)

// Defaults for NewLimiter when zero values are passed.
const (
	DefaultMaxMessages = 100
	DefaultWindow      = time.Second
)

// Limiter admits at most maxMessages events within any trailing window.
// Denied calls are not recorded and do not extend the window.
type Limiter struct {
	mu          sync.Mutex
	maxMessages int
	window      time.Duration
	timestamps  []time.Time
}

// NewLimiter creates a limiter. Zero arguments fall back to the
// defaults (100 messages per second).
func NewLimiter(maxMessages int, window time.Duration) *Limiter {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		maxMessages: maxMessages,
		window:      window,
		timestamps:  make([]time.Time, 0, maxMessages),
	}
}

// Check evicts timestamps older than the window and admits the call at
// now if capacity remains. Timestamps exactly at the window edge still
// count against capacity.
func (l *Limiter) Check(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(now)

	if len(l.timestamps) < l.maxMessages {
		l.timestamps = append(l.timestamps, now)
		return true
	}
	return false
}

// CurrentCount returns the number of admitted calls still inside the
// window as of the last Check.
func (l *Limiter) CurrentCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timestamps)
}

// AtCapacity reports whether the retained count has reached the limit.
func (l *Limiter) AtCapacity() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timestamps) >= l.maxMessages
}

// Reset discards all retained timestamps.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = l.timestamps[:0]
}

// evict drops timestamps strictly before now-window. Caller holds mu.
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if !ts.Before(cutoff) {
			keep = append(keep, ts)
		}
	}
	l.timestamps = keep
}
