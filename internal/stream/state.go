package stream

// ConnectionState is the lifecycle stage of the logical session.
type ConnectionState int

const (
	// Disconnected is the initial state: no session, none wanted yet.
	Disconnected ConnectionState = iota
	// Connecting is the first dial in progress.
	Connecting
	// Connected means the session is live.
	Connected
	// Reconnecting means the session dropped and retries are in
	// progress.
	Reconnecting
	// Failed is terminal: the retry policy is exhausted or disabled.
	Failed
)

// String returns the lowercase state name.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsActive reports whether the session can send and receive.
func (s ConnectionState) IsActive() bool {
	return s == Connected
}

// IsConnecting reports whether a dial or redial is in progress.
func (s ConnectionState) IsConnecting() bool {
	return s == Connecting || s == Reconnecting
}
