package client

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ag-ui/chat-client/pkg/transport"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	logger      logrus.FieldLogger
	dialer      transport.Dialer
	onSendError func(error)
	now         func() time.Time
	newID       func() string
}

// WithLogger sets the logger shared by the client, its connection manager
// and its reducer.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDialer replaces the WebSocket transport.
func WithDialer(dialer transport.Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithSendErrorHandler registers a callback for outbound frames that were
// accepted by Submit but could not be written. It runs on the connection's
// write goroutine.
func WithSendErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onSendError = fn
	}
}

// WithClock sets the clock used to timestamp locally created messages.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator sets the generator for locally assigned message ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}
