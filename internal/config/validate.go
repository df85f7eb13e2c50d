package config

import (
	"errors"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Stream.URL == "" {
		return errors.New("stream.url is required")
	}
	if !strings.HasPrefix(c.Stream.URL, "ws://") && !strings.HasPrefix(c.Stream.URL, "wss://") {
		return errors.New("stream.url must be a ws:// or wss:// URL")
	}
	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}
	if c.Stream.HeartbeatInterval <= 0 {
		return errors.New("stream.heartbeat_interval must be positive")
	}
	if c.Stream.FlushInterval <= 0 {
		return errors.New("stream.flush_interval must be positive")
	}

	if c.Reconnect.InitialDelay <= 0 {
		return errors.New("reconnect.initial_delay must be positive")
	}
	if c.Reconnect.MaxDelay < c.Reconnect.InitialDelay {
		return errors.New("reconnect.max_delay must be >= reconnect.initial_delay")
	}
	if c.Reconnect.Multiplier < 1 {
		return errors.New("reconnect.backoff_multiplier must be >= 1")
	}
	if c.Reconnect.MaxAttempts < 0 {
		return errors.New("reconnect.max_attempts must be >= 0")
	}

	if c.RateLimit.MaxMessages < 1 {
		return errors.New("rate_limit.max_messages must be >= 1")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("rate_limit.window must be positive")
	}

	return nil
}
