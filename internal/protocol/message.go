package protocol

import "encoding/json"

// Type identifies a message variant.
type Type string

const (
	TypeSubscribe   Type = "subscribe"
	TypeUnsubscribe Type = "unsubscribe"
	TypeData        Type = "data"
	TypeError       Type = "error"
	TypeAck         Type = "ack"
	TypePing        Type = "ping"
	TypePong        Type = "pong"
)

// Message is a single wire message. The Type field selects the variant;
// fields not used by a variant stay zero and are omitted on the wire.
type Message struct {
	Type Type `json:"type"`

	// Subscription id. Required for subscribe, unsubscribe, data and
	// ack; optional for error; absent for ping and pong.
	ID string `json:"id,omitempty"`

	// Subscribe fields.
	Source     string `json:"source,omitempty"`
	Transform  string `json:"transform,omitempty"`
	IntervalMS uint64 `json:"interval_ms,omitempty"`

	// Data fields. Payload is opaque; Seq defaults to 0 when absent.
	Payload json.RawMessage `json:"payload,omitempty"`
	Seq     uint64          `json:"seq,omitempty"`

	// Ping/pong heartbeat timestamp; also carried on data when the
	// server stamps frames.
	Timestamp uint64 `json:"timestamp,omitempty"`

	// Error fields.
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`

	// Ack status.
	Status string `json:"status,omitempty"`
}

// Subscribe builds a subscribe request.
func Subscribe(id, source string) Message {
	return Message{Type: TypeSubscribe, ID: id, Source: source}
}

// SubscribeWithTransform builds a subscribe request with a server-side
// transform expression.
func SubscribeWithTransform(id, source, transform string) Message {
	return Message{Type: TypeSubscribe, ID: id, Source: source, Transform: transform}
}

// Unsubscribe builds an unsubscribe request.
func Unsubscribe(id string) Message {
	return Message{Type: TypeUnsubscribe, ID: id}
}

// Data builds a data push.
func Data(id string, payload json.RawMessage, seq uint64) Message {
	return Message{Type: TypeData, ID: id, Payload: payload, Seq: seq}
}

// Error builds an error not tied to a subscription.
func Error(message string) Message {
	return Message{Type: TypeError, Message: message}
}

// ErrorFor builds an error tied to a subscription.
func ErrorFor(id, message string) Message {
	return Message{Type: TypeError, ID: id, Message: message}
}

// Ack builds an acknowledgment.
func Ack(id string) Message {
	return Message{Type: TypeAck, ID: id}
}

// Ping builds a heartbeat.
func Ping(timestamp uint64) Message {
	return Message{Type: TypePing, Timestamp: timestamp}
}

// Pong builds a heartbeat response.
func Pong(timestamp uint64) Message {
	return Message{Type: TypePong, Timestamp: timestamp}
}

// SubscriptionID returns the subscription id a message refers to.
// The second return is false for ping/pong and for errors that carry
// no id.
func (m Message) SubscriptionID() (string, bool) {
	switch m.Type {
	case TypeSubscribe, TypeUnsubscribe, TypeData, TypeAck:
		return m.ID, true
	case TypeError:
		return m.ID, m.ID != ""
	default:
		return "", false
	}
}
