package transport

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrStaleLink     = errors.New("connection stale (no traffic)")
	ErrAlreadyClosed = errors.New("already closed")
)

// Frame wraps raw inbound bytes with the local receive timestamp.
type Frame struct {
	Data       []byte
	ReceivedAt time.Time
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (ws:// or wss://)
	WriteTimeout time.Duration // Write deadline for sends
	StaleTimeout time.Duration // Max silence before the link counts as dead
	BufferSize   int           // Inbound frame channel capacity
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		WriteTimeout: 5 * time.Second,
		StaleTimeout: 90 * time.Second,
		BufferSize:   1024,
	}
}
