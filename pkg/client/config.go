package client

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ag-ui/chat-client/pkg/core"
)

// Default configuration values.
const (
	DefaultReconnectDelay = 3 * time.Second
	DefaultDialTimeout    = 10 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	DefaultOutboxSize     = 16
)

// Config contains configuration options for the client.
type Config struct {
	// Endpoint is the ws:// or wss:// URL of the agent server.
	Endpoint string

	// ReconnectDelay is the fixed wait between a close and the next dial.
	ReconnectDelay time.Duration

	// DialTimeout bounds a single connection attempt.
	DialTimeout time.Duration

	// WriteTimeout bounds a single outbound frame write.
	WriteTimeout time.Duration

	// OutboxSize is the number of outbound frames that may be queued on an
	// open connection before Send reports core.ErrSendQueueFull.
	OutboxSize int
}

// DefaultConfig returns a configuration for endpoint with default timings.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:       endpoint,
		ReconnectDelay: DefaultReconnectDelay,
		DialTimeout:    DefaultDialTimeout,
		WriteTimeout:   DefaultWriteTimeout,
		OutboxSize:     DefaultOutboxSize,
	}
}

// Validate checks the configuration and returns a *core.ConfigError for the
// first invalid field.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return &core.ConfigError{
			Field: "Endpoint",
			Value: c.Endpoint,
			Err:   errors.New("endpoint cannot be empty"),
		}
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return &core.ConfigError{
			Field: "Endpoint",
			Value: c.Endpoint,
			Err:   fmt.Errorf("invalid endpoint: %w", err),
		}
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return &core.ConfigError{
			Field: "Endpoint",
			Value: c.Endpoint,
			Err:   fmt.Errorf("unsupported scheme %q: %w", u.Scheme, core.ErrInvalidConfig),
		}
	}
	if u.Host == "" {
		return &core.ConfigError{
			Field: "Endpoint",
			Value: c.Endpoint,
			Err:   fmt.Errorf("missing host: %w", core.ErrInvalidConfig),
		}
	}

	if c.ReconnectDelay <= 0 {
		return &core.ConfigError{
			Field: "ReconnectDelay",
			Value: c.ReconnectDelay,
			Err:   fmt.Errorf("must be positive: %w", core.ErrInvalidConfig),
		}
	}
	if c.DialTimeout < 0 {
		return &core.ConfigError{
			Field: "DialTimeout",
			Value: c.DialTimeout,
			Err:   fmt.Errorf("cannot be negative: %w", core.ErrInvalidConfig),
		}
	}
	if c.WriteTimeout < 0 {
		return &core.ConfigError{
			Field: "WriteTimeout",
			Value: c.WriteTimeout,
			Err:   fmt.Errorf("cannot be negative: %w", core.ErrInvalidConfig),
		}
	}
	if c.OutboxSize <= 0 {
		return &core.ConfigError{
			Field: "OutboxSize",
			Value: c.OutboxSize,
			Err:   fmt.Errorf("must be positive: %w", core.ErrInvalidConfig),
		}
	}

	return nil
}
