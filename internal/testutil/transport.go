package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ag-ui/chat-client/pkg/transport"
)

// ErrRemoteClosed is the default error reported when the fake peer hangs up.
var ErrRemoteClosed = errors.New("remote closed the connection")

// Conn is an in-memory transport.Conn.
type Conn struct {
	Endpoint string

	inbound chan []byte

	mu       sync.Mutex
	writes   [][]byte
	writeErr error
	gate     chan struct{}
	waiting  atomic.Int32

	remoteOnce   sync.Once
	remoteClosed chan struct{}
	remoteErr    error

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConn creates a fake connection.
func NewConn(endpoint string) *Conn {
	return &Conn{
		Endpoint:     endpoint,
		inbound:      make(chan []byte, 256),
		remoteClosed: make(chan struct{}),
		closed:       make(chan struct{}),
	}
}

// Push queues an inbound frame.
func (c *Conn) Push(frame string) {
	c.inbound <- []byte(frame)
}

// Hangup simulates the peer closing the connection with err.
func (c *Conn) Hangup(err error) {
	if err == nil {
		err = ErrRemoteClosed
	}
	c.remoteOnce.Do(func() {
		c.remoteErr = err
		close(c.remoteClosed)
	})
}

// FailWrites makes every following Write return err.
func (c *Conn) FailWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// HoldWrites makes following writes block until the returned release
// function is called.
func (c *Conn) HoldWrites() (release func()) {
	gate := make(chan struct{})

	c.mu.Lock()
	c.gate = gate
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.gate = nil
			c.mu.Unlock()
			close(gate)
		})
	}
}

// Waiting returns the number of writes blocked by HoldWrites.
func (c *Conn) Waiting() int {
	return int(c.waiting.Load())
}

// Writes returns a copy of all frames written so far.
func (c *Conn) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.writes))
	for i, w := range c.writes {
		out[i] = string(w)
	}
	return out
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Read implements transport.Conn. Queued frames are always delivered before
// a hangup is reported.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.inbound:
		return frame, nil
	default:
	}

	select {
	case frame := <-c.inbound:
		return frame, nil
	case <-c.remoteClosed:
		return nil, c.remoteErr
	case <-c.closed:
		return nil, transport.ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements transport.Conn.
func (c *Conn) Write(ctx context.Context, frame []byte) error {
	if c.Closed() {
		return transport.ErrConnClosed
	}

	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		c.waiting.Add(1)
		select {
		case <-gate:
			c.waiting.Add(-1)
		case <-c.closed:
			c.waiting.Add(-1)
			return transport.ErrConnClosed
		case <-ctx.Done():
			c.waiting.Add(-1)
			return ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, append([]byte(nil), frame...))
	return nil
}

// Close implements transport.Conn.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return nil
}

// Dialer is an in-memory transport.Dialer that records every attempt.
type Dialer struct {
	mu       sync.Mutex
	attempts int
	failures []error
	conns    []*Conn
	dialed   chan *Conn
}

// NewDialer creates a fake dialer whose dials succeed unless FailNext was called.
func NewDialer() *Dialer {
	return &Dialer{dialed: make(chan *Conn, 64)}
}

// FailNext makes the next dial attempt fail with err. Calls queue up.
func (d *Dialer) FailNext(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures = append(d.failures, err)
}

// Attempts returns the number of dial attempts, successful or not.
func (d *Dialer) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

// Conns returns every connection handed out so far.
func (d *Dialer) Conns() []*Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Conn(nil), d.conns...)
}

// WaitConn waits for the next successful dial.
func (d *Dialer) WaitConn(timeout time.Duration) (*Conn, bool) {
	select {
	case c := <-d.dialed:
		return c, true
	case <-time.After(timeout):
		return nil, false
	}
}

// Dial implements transport.Dialer.
func (d *Dialer) Dial(ctx context.Context, endpoint string) (transport.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.attempts++
	if len(d.failures) > 0 {
		err := d.failures[0]
		d.failures = d.failures[1:]
		d.mu.Unlock()
		return nil, err
	}
	conn := NewConn(endpoint)
	d.conns = append(d.conns, conn)
	d.mu.Unlock()

	d.dialed <- conn
	return conn, nil
}
