package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ag-ui/chat-client/pkg/client"
)

// Config holds the CLI configuration loaded from environment variables.
// Command-line flags override it.
type Config struct {
	Endpoint       string
	ReconnectDelay time.Duration
	LogLevel       string // debug, info, warn, error
	LogFile        string
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() *Config {
	godotenv.Load() // Load .env file if present

	return &Config{
		Endpoint:       getEnvOrDefault("AGUI_ENDPOINT", "ws://localhost:8000/ws/chat"),
		ReconnectDelay: getEnvDurationOrDefault("AGUI_RECONNECT_DELAY", client.DefaultReconnectDelay),
		LogLevel:       getEnvOrDefault("AGUI_LOG_LEVEL", "info"),
		LogFile:        os.Getenv("AGUI_LOG_FILE"),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("AGUI_LOG_LEVEL: %w", err)
	}
	return c.ClientConfig().Validate()
}

// ClientConfig returns the client configuration for the endpoint.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.Endpoint)
	cfg.ReconnectDelay = c.ReconnectDelay
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
