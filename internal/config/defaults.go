package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultFlushInterval     = 100 * time.Millisecond
	DefaultWriteTimeout      = 5 * time.Second
	DefaultStaleTimeout      = 90 * time.Second
	DefaultBufferSize        = 1024
	DefaultInitialDelay      = 500 * time.Millisecond
	DefaultMaxDelay          = 30 * time.Second
	DefaultMultiplier        = 2.0
	DefaultRateLimitMessages = 100
	DefaultRateLimitWindow   = time.Second
)

func (c *Config) applyDefaults() {
	if c.Stream.HeartbeatInterval == 0 {
		c.Stream.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Stream.FlushInterval == 0 {
		c.Stream.FlushInterval = DefaultFlushInterval
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.StaleTimeout == 0 {
		c.Stream.StaleTimeout = DefaultStaleTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultBufferSize
	}

	if c.Reconnect.InitialDelay == 0 {
		c.Reconnect.InitialDelay = DefaultInitialDelay
	}
	if c.Reconnect.MaxDelay == 0 {
		c.Reconnect.MaxDelay = DefaultMaxDelay
	}
	if c.Reconnect.Multiplier == 0 {
		c.Reconnect.Multiplier = DefaultMultiplier
	}

	if c.RateLimit.MaxMessages == 0 {
		c.RateLimit.MaxMessages = DefaultRateLimitMessages
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = DefaultRateLimitWindow
	}
}
