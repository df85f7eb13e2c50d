// Package subscription tracks per-source subscriptions and their
// runtime state.
package subscription

import (
	"strconv"
	"time"

	"github.com/glassdash/livesync/internal/protocol"
)

// Subscription describes a single data-source subscription and its
// runtime state.
type Subscription struct {
	// ID uniquely keys the subscription. Derived from Source unless
	// supplied by the caller.
	ID string

	// Source is the data source path, e.g. "metrics/cpu".
	Source string

	// Transform is an optional server-side transform expression.
	Transform string

	// Interval is the requested refresh interval (zero = server
	// default).
	Interval time.Duration

	// Active is set once the server has acknowledged or delivered
	// data for the subscription.
	Active bool

	// LastSeq is the highest sequence number seen on a data frame.
	LastSeq uint64

	// ErrorCount counts protocol errors referencing this
	// subscription, reset on the next data frame.
	ErrorCount int
}

// New creates a subscription with an id derived from source, so
// subscribing to the same source twice yields the same id.
func New(source string) Subscription {
	return Subscription{
		ID:     DeriveID(source),
		Source: source,
	}
}

// WithID creates a subscription with an explicit id.
func WithID(id, source string) Subscription {
	return Subscription{ID: id, Source: source}
}

// WithInterval returns a copy with the refresh interval set.
func (s Subscription) WithInterval(interval time.Duration) Subscription {
	s.Interval = interval
	return s
}

// WithTransform returns a copy with the transform expression set.
func (s Subscription) WithTransform(transform string) Subscription {
	s.Transform = transform
	return s
}

// Message converts the subscription to its subscribe request.
func (s Subscription) Message() protocol.Message {
	msg := protocol.Subscribe(s.ID, s.Source)
	msg.Transform = s.Transform
	if s.Interval > 0 {
		msg.IntervalMS = uint64(s.Interval / time.Millisecond)
	}
	return msg
}

// DeriveID produces a stable id for a source path using a djb2 hash
// over the source bytes. Not cryptographic; same-source collisions are
// the point, cross-source collisions are vanishingly unlikely at
// dashboard scale.
func DeriveID(source string) string {
	var hash uint64 = 5381
	for i := 0; i < len(source); i++ {
		hash = hash*33 + uint64(source[i])
	}
	return "sub_" + strconv.FormatUint(hash, 10)
}
