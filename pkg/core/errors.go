package core

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrNotConnected    = errors.New("not connected")
	ErrEmptyInput      = errors.New("input is empty")
	ErrRunInProgress   = errors.New("a run is already in progress")
	ErrSendQueueFull   = errors.New("send queue is full")
	ErrClosed          = errors.New("client closed")
	ErrUnknownEvent    = errors.New("unknown event type")
	ErrConnectionLost  = errors.New("connection lost")
	ErrMalformedFrame  = errors.New("malformed frame")
	ErrEventValidation = errors.New("event validation failed")
)

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when an inbound frame cannot be turned into an event.
// The frame is dropped; it never affects conversation state.
type DecodeError struct {
	EventType string
	Frame     []byte
	Err       error
}

func (e *DecodeError) Error() string {
	if e.EventType == "" {
		return fmt.Sprintf("decode error: %v", e.Err)
	}
	return fmt.Sprintf("decode error for event type %s: %v", e.EventType, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError represents a failure of the underlying connection
type TransportError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error in %s (endpoint: %s): %v", e.Operation, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
