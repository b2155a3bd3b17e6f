package client

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ag-ui/chat-client/pkg/core"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "secure endpoint", modify: func(c *Config) { c.Endpoint = "wss://agent.example.com/ws" }},
		{name: "zero timeouts disable them", modify: func(c *Config) { c.DialTimeout, c.WriteTimeout = 0, 0 }},
		{name: "empty endpoint", modify: func(c *Config) { c.Endpoint = "" }, field: "Endpoint"},
		{name: "http endpoint", modify: func(c *Config) { c.Endpoint = "http://localhost:8000/ws" }, field: "Endpoint"},
		{name: "malformed endpoint", modify: func(c *Config) { c.Endpoint = "ws://[::1:80" }, field: "Endpoint"},
		{name: "missing host", modify: func(c *Config) { c.Endpoint = "ws:///ws" }, field: "Endpoint"},
		{name: "zero reconnect delay", modify: func(c *Config) { c.ReconnectDelay = 0 }, field: "ReconnectDelay"},
		{name: "negative dial timeout", modify: func(c *Config) { c.DialTimeout = -time.Second }, field: "DialTimeout"},
		{name: "negative write timeout", modify: func(c *Config) { c.WriteTimeout = -time.Second }, field: "WriteTimeout"},
		{name: "empty outbox", modify: func(c *Config) { c.OutboxSize = 0 }, field: "OutboxSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("ws://localhost:8000/ws")
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var configErr *core.ConfigError
			require.True(t, errors.As(err, &configErr), "expected *core.ConfigError, got %T", err)
			assert.Equal(t, tt.field, configErr.Field)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("ws://localhost:8000/ws")

	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, DefaultOutboxSize, cfg.OutboxSize)
	assert.NoError(t, cfg.Validate())
}
