// Package config loads and validates livesync configuration from YAML.
package config

import (
	"time"

	"github.com/glassdash/livesync/internal/backoff"
)

// Config is the top-level configuration.
type Config struct {
	Stream    StreamConfig    `yaml:"stream"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// StreamConfig configures the WebSocket session.
type StreamConfig struct {
	URL               string        `yaml:"url"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	FlushInterval     time.Duration `yaml:"flush_interval"` // outbox drain cadence
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	StaleTimeout      time.Duration `yaml:"stale_timeout"` // max silence before the link counts as dead
	BufferSize        int           `yaml:"buffer_size"`   // inbound frame channel capacity
}

// ReconnectConfig configures retry behavior. Reconnection is on unless
// explicitly disabled.
type ReconnectConfig struct {
	Disabled     bool          `yaml:"disabled"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"backoff_multiplier"`
	MaxAttempts  int           `yaml:"max_attempts"` // 0 = unlimited
}

// RateLimitConfig bounds consumer-visible data delivery.
type RateLimitConfig struct {
	MaxMessages int           `yaml:"max_messages"`
	Window      time.Duration `yaml:"window"`
}

// Policy converts the reconnect section to a backoff policy.
func (c ReconnectConfig) Policy() backoff.Policy {
	return backoff.Policy{
		Enabled:      !c.Disabled,
		InitialDelay: c.InitialDelay,
		MaxDelay:     c.MaxDelay,
		Multiplier:   c.Multiplier,
		MaxAttempts:  c.MaxAttempts,
	}
}
