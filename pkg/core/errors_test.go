package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "config",
			err:      &ConfigError{Field: "Endpoint", Value: "", Err: ErrInvalidConfig},
			sentinel: ErrInvalidConfig,
			message:  "config error in field Endpoint (value: ): invalid configuration",
		},
		{
			name:     "decode with type",
			err:      &DecodeError{EventType: "RUN_ERROR", Err: ErrEventValidation},
			sentinel: ErrEventValidation,
			message:  "decode error for event type RUN_ERROR: event validation failed",
		},
		{
			name:     "decode without type",
			err:      &DecodeError{Err: ErrMalformedFrame},
			sentinel: ErrMalformedFrame,
			message:  "decode error: malformed frame",
		},
		{
			name:     "transport",
			err:      &TransportError{Operation: "read", Endpoint: "ws://agent.test/ws", Err: ErrConnectionLost},
			sentinel: ErrConnectionLost,
			message:  "transport error in read (endpoint: ws://agent.test/ws): connection lost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("client: %w", tt.err)

			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, errors.Is(wrapped, tt.sentinel))
		})
	}
}

func TestErrorsAs(t *testing.T) {
	var err error = fmt.Errorf("dial: %w", &TransportError{Operation: "dial", Err: errors.New("refused")})

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "dial", transportErr.Operation)

	var decodeErr *DecodeError
	assert.False(t, errors.As(err, &decodeErr))
}
