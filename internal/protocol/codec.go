package protocol

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a message to its wire form.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", m.Type, err)
	}
	return data, nil
}

// Decode parses a wire message. Unknown or missing types are rejected
// so a bad frame never reaches stream state.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}

	switch m.Type {
	case TypeSubscribe, TypeUnsubscribe, TypeData, TypeError, TypeAck, TypePing, TypePong:
		return m, nil
	case "":
		return Message{}, fmt.Errorf("decode message: missing type field")
	default:
		return Message{}, fmt.Errorf("decode message: unknown type %q", m.Type)
	}
}
