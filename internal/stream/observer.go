package stream

import "encoding/json"

// Observer receives push notifications from a DataStream. Methods are
// called synchronously from the goroutine driving the stream and must
// not block; no DataStream lock is held during a callback.
type Observer interface {
	// OnData is called with the ordered payload for a subscription
	// once its contiguous sequence advances. Catch-up bursts collapse
	// to the latest frame.
	OnData(id string, payload json.RawMessage)

	// OnError is called for protocol errors referencing a
	// subscription (id may be empty for session-level errors).
	OnError(id, message string)

	// OnStateChange is called after every connection state
	// transition.
	OnStateChange(state ConnectionState)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) OnData(string, json.RawMessage) {}
func (NopObserver) OnError(string, string)         {}
func (NopObserver) OnStateChange(ConnectionState)  {}
