package transport

import (
	"context"
	"errors"
)

// ErrConnClosed is returned by operations on a Conn that has been closed locally.
var ErrConnClosed = errors.New("connection closed")

// Conn is a single established connection carrying whole frames.
//
// Read is called from one goroutine and Write from one other goroutine;
// Close may be called from any goroutine, any number of times, and must
// unblock a pending Read.
type Conn interface {
	// Read blocks until the next frame arrives or the connection fails.
	Read(ctx context.Context) ([]byte, error)

	// Write sends one frame.
	Write(ctx context.Context, frame []byte) error

	// Close closes the connection.
	Close() error
}

// Dialer establishes connections to an endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, endpoint string) (Conn, error)

// Dial calls f(ctx, endpoint).
func (f DialerFunc) Dial(ctx context.Context, endpoint string) (Conn, error) {
	return f(ctx, endpoint)
}
