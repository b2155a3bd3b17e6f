package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConfig contains configuration options for WebSocket connections.
type WebSocketConfig struct {
	// HandshakeTimeout bounds the opening handshake
	HandshakeTimeout time.Duration

	// WriteTimeout bounds a single frame write
	WriteTimeout time.Duration

	// ReadLimit is the maximum inbound frame size in bytes, 0 means unlimited
	ReadLimit int64

	// Header is sent with the opening handshake
	Header http.Header
}

// DefaultWebSocketConfig returns the default WebSocket configuration.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReadLimit:        4 << 20,
	}
}

// WebSocketDialer dials WebSocket connections.
type WebSocketDialer struct {
	config WebSocketConfig
	dialer *websocket.Dialer
}

// NewWebSocketDialer creates a new WebSocket dialer.
func NewWebSocketDialer(config WebSocketConfig) *WebSocketDialer {
	return &WebSocketDialer{
		config: config,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

// Dial opens a WebSocket connection to endpoint.
func (d *WebSocketDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	ws, resp, err := d.dialer.DialContext(ctx, endpoint, d.config.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	if d.config.ReadLimit > 0 {
		ws.SetReadLimit(d.config.ReadLimit)
	}

	return newWebSocketConn(ws, d.config.WriteTimeout), nil
}

// wsConn adapts a gorilla connection to Conn. gorilla allows one concurrent
// writer, so data frames are serialized through writeMu.
type wsConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

func newWebSocketConn(ws *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		ws:           ws,
		writeTimeout: writeTimeout,
		closed:       make(chan struct{}),
	}
}

// Read returns the payload of the next text or binary frame.
func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.Close()
	})
	defer stop()

	_, data, err := c.ws.ReadMessage()
	if err != nil {
		select {
		case <-c.closed:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, ErrConnClosed
		default:
		}
		return nil, err
	}

	return data, nil
}

// Write sends frame as a single text message.
func (c *wsConn) Write(ctx context.Context, frame []byte) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var deadline time.Time
	if c.writeTimeout > 0 {
		deadline = time.Now().Add(c.writeTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// Close sends a normal closure frame and closes the socket.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		// WriteControl may run concurrently with a data write.
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
