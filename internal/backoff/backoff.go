// Package backoff computes reconnection delays. It is pure policy: the
// caller owns the waiting and the re-dialing.
package backoff

import (
	"math"
	"time"
)

// maxExponent caps the backoff exponent so large attempt counts cannot
// overflow the delay math regardless of multiplier.
const maxExponent = 20

// Policy holds reconnection settings. Immutable after construction.
type Policy struct {
	// Enabled gates all reconnection. When false, DelayForAttempt
	// returns zero and ShouldReconnect returns false.
	Enabled bool

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the computed delay.
	MaxDelay time.Duration

	// Multiplier is applied per attempt (exponential backoff).
	Multiplier float64

	// MaxAttempts limits retries. Zero means unlimited.
	MaxAttempts int
}

// DefaultPolicy returns the standard reconnection settings.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:      true,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// DelayForAttempt returns the wait before retry number attempt
// (0-based): InitialDelay * Multiplier^attempt, capped at MaxDelay.
func (p Policy) DelayForAttempt(attempt int) time.Duration {
	if !p.Enabled {
		return 0
	}

	exp := attempt
	if exp > maxExponent {
		exp = maxExponent
	}

	delay := time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(exp)))
	if delay > p.MaxDelay || delay < 0 {
		delay = p.MaxDelay
	}
	return delay
}

// ShouldReconnect reports whether retry number attempt (0-based) is
// still within policy.
func (p Policy) ShouldReconnect(attempt int) bool {
	if !p.Enabled {
		return false
	}
	if p.MaxAttempts == 0 {
		return true
	}
	return attempt < p.MaxAttempts
}
