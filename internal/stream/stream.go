package stream

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/glassdash/livesync/internal/backoff"
	"github.com/glassdash/livesync/internal/protocol"
	"github.com/glassdash/livesync/internal/ratelimit"
	"github.com/glassdash/livesync/internal/sequence"
	"github.com/glassdash/livesync/internal/subscription"
)

// DataStream orchestrates one logical session of live subscriptions.
// Safe for concurrent use from a transport goroutine (inbound) and an
// application goroutine (subscribe/unsubscribe/reads). No method
// blocks on I/O.
type DataStream struct {
	policy   backoff.Policy
	logger   *slog.Logger
	observer Observer
	limiter  *ratelimit.Limiter

	registry *subscription.Registry
	ordering *sequence.Buffer

	mu       sync.Mutex
	state    ConnectionState
	outbox   []protocol.Message
	cache    map[string]json.RawMessage
	attempts int
}

// Option configures a DataStream.
type Option func(*DataStream)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DataStream) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver sets the notification target.
func WithObserver(o Observer) Option {
	return func(d *DataStream) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithRateLimit overrides the default delivery throttle (100 messages
// per second).
func WithRateLimit(maxMessages int, window time.Duration) Option {
	return func(d *DataStream) {
		d.limiter = ratelimit.NewLimiter(maxMessages, window)
	}
}

// New creates a DataStream in the Disconnected state.
func New(policy backoff.Policy, opts ...Option) *DataStream {
	d := &DataStream{
		policy:   policy,
		logger:   slog.Default(),
		observer: NopObserver{},
		limiter:  ratelimit.NewLimiter(0, 0),
		registry: subscription.NewRegistry(),
		ordering: sequence.NewBuffer(),
		cache:    make(map[string]json.RawMessage),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current connection state.
func (d *DataStream) State() ConnectionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SetState transitions the connection state. Entering Connected resets
// the reconnect attempt counter and, when arriving from a connecting
// state, re-enqueues a subscribe request for every registered
// subscription — the server holds no cross-connection state.
func (d *DataStream) SetState(state ConnectionState) {
	d.mu.Lock()
	prev := d.state
	if prev == state {
		d.mu.Unlock()
		return
	}
	d.state = state
	if state == Connected {
		d.attempts = 0
		if prev.IsConnecting() {
			d.resubscribeAllLocked()
		}
	}
	d.mu.Unlock()

	d.logger.Debug("stream state changed", "from", prev, "to", state)
	d.observer.OnStateChange(state)
}

// ConnectionLost records a transport-reported disconnect and moves to
// Reconnecting or, when the retry policy is exhausted or disabled, to
// Failed. Returns the resulting state.
func (d *DataStream) ConnectionLost() ConnectionState {
	d.mu.Lock()
	attempts := d.attempts
	d.mu.Unlock()

	if d.policy.ShouldReconnect(attempts) {
		d.SetState(Reconnecting)
	} else {
		d.SetState(Failed)
	}
	return d.State()
}

// Subscribe registers a subscription and enqueues its subscribe
// request. Returns the subscription id.
func (d *DataStream) Subscribe(sub subscription.Subscription) string {
	d.registry.Register(sub)

	d.mu.Lock()
	d.outbox = append(d.outbox, sub.Message())
	d.mu.Unlock()

	d.logger.Debug("subscribed", "id", sub.ID, "source", sub.Source)
	return sub.ID
}

// Unsubscribe removes a subscription, drops its cached value and
// ordering state, and enqueues an unsubscribe request. Idempotent;
// unknown ids still produce the request, which the server ignores.
func (d *DataStream) Unsubscribe(id string) {
	d.registry.Remove(id)
	d.ordering.Clear(id)

	d.mu.Lock()
	delete(d.cache, id)
	d.outbox = append(d.outbox, protocol.Unsubscribe(id))
	d.mu.Unlock()

	d.logger.Debug("unsubscribed", "id", id)
}

// HandleMessage is the single inbound entry point. It returns a reply
// message and true when one must be sent immediately (ping begets
// pong); all other messages yield false.
func (d *DataStream) HandleMessage(msg protocol.Message) (protocol.Message, bool) {
	switch msg.Type {
	case protocol.TypeData:
		d.handleData(msg)
	case protocol.TypeAck:
		d.registry.UpdateOnAck(msg.ID)
	case protocol.TypeError:
		if msg.ID != "" {
			d.registry.UpdateOnError(msg.ID)
		}
		d.logger.Warn("server error", "id", msg.ID, "message", msg.Message, "code", msg.Code)
		d.observer.OnError(msg.ID, msg.Message)
	case protocol.TypePing:
		return protocol.Pong(msg.Timestamp), true
	}
	// Pong and echoed subscribe/unsubscribe change nothing.
	return protocol.Message{}, false
}

// handleData applies a data frame: registry bookkeeping always runs;
// the consumer-visible side (cache write, ordered observer delivery)
// is gated by the rate limiter so bursts cannot overwhelm downstream.
func (d *DataStream) handleData(msg protocol.Message) {
	d.registry.UpdateOnData(msg.ID, msg.Seq)

	admitted := d.limiter.Check(time.Now())

	// Ordering state tracks the wire even for throttled frames; a
	// suppressed frame must not look like a gap later.
	ordered, advanced := msg.Payload, true
	if msg.Seq > 0 {
		ordered, advanced = d.ordering.Process(msg.ID, msg.Seq, msg.Payload)
	}

	if !admitted {
		d.logger.Debug("data frame throttled", "id", msg.ID, "seq", msg.Seq)
		return
	}

	d.mu.Lock()
	d.cache[msg.ID] = msg.Payload
	d.mu.Unlock()

	if advanced {
		d.observer.OnData(msg.ID, ordered)
	}
}

// Send queues an outbound message for the transport to drain.
func (d *DataStream) Send(msg protocol.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outbox = append(d.outbox, msg)
}

// TakeOutbox atomically drains and returns all pending outbound
// messages in enqueue order.
func (d *DataStream) TakeOutbox() []protocol.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.outbox
	d.outbox = nil
	return out
}

// GetData returns the last cached payload for a subscription. The
// cache is last-write-wins and independent of the ordering guarantee.
func (d *DataStream) GetData(id string) (json.RawMessage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	payload, ok := d.cache[id]
	return payload, ok
}

// GetSubscription returns subscription metadata by id.
func (d *DataStream) GetSubscription(id string) (subscription.Subscription, bool) {
	return d.registry.Get(id)
}

// Subscriptions returns all registered subscriptions.
func (d *DataStream) Subscriptions() []subscription.Subscription {
	return d.registry.List()
}

// SubscriptionCount returns the number of registered subscriptions.
func (d *DataStream) SubscriptionCount() int {
	return d.registry.Len()
}

// ReconnectDelay returns the backoff delay for the current attempt.
func (d *DataStream) ReconnectDelay() time.Duration {
	d.mu.Lock()
	attempts := d.attempts
	d.mu.Unlock()
	return d.policy.DelayForAttempt(attempts)
}

// ShouldReconnect reports whether another attempt is within policy.
func (d *DataStream) ShouldReconnect() bool {
	d.mu.Lock()
	attempts := d.attempts
	d.mu.Unlock()
	return d.policy.ShouldReconnect(attempts)
}

// IncrementReconnectAttempts records a failed attempt.
func (d *DataStream) IncrementReconnectAttempts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
}

// ResetReconnectAttempts zeroes the attempt counter.
func (d *DataStream) ResetReconnectAttempts() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts = 0
}

// Clear empties subscriptions, cache, ordering state and outbox. The
// connection state and attempt counter are untouched; a full reset is
// Clear plus SetState(Disconnected).
func (d *DataStream) Clear() {
	d.registry.Clear()
	d.ordering.ClearAll()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache = make(map[string]json.RawMessage)
	d.outbox = nil
}

// resubscribeAllLocked re-enqueues subscribe requests for every
// registered subscription. Caller holds d.mu.
func (d *DataStream) resubscribeAllLocked() {
	subs := d.registry.List()
	for _, sub := range subs {
		d.outbox = append(d.outbox, sub.Message())
	}
	if len(subs) > 0 {
		d.logger.Info("resubscribing after reconnect", "count", len(subs))
	}
}
