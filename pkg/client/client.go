package client

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ag-ui/chat-client/pkg/conversation"
	"github.com/ag-ui/chat-client/pkg/core"
	"github.com/ag-ui/chat-client/pkg/core/events"
)

// Client is a conversation with one agent endpoint.
//
// It owns the conversation state, applies inbound events to it in arrival
// order and publishes a snapshot to subscribers after every change. All
// methods are safe for concurrent use.
type Client struct {
	manager *Manager
	logger  logrus.FieldLogger
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	state   conversation.State
	reducer *conversation.Reducer
	subs    map[int]chan conversation.State
	nextSub int
	closed  bool
}

// New creates a new client for the configured endpoint. The client does not
// dial until Connect is called.
func New(cfg Config, opts ...Option) (*Client, error) {
	o := options{
		logger: logrus.StandardLogger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		logger: o.logger,
		now:    o.now,
		newID:  o.newID,
		reducer: conversation.NewReducer(
			conversation.WithLogger(o.logger),
			conversation.WithClock(o.now),
			conversation.WithIDGenerator(o.newID),
		),
		subs: make(map[int]chan conversation.State),
	}

	manager, err := NewManager(cfg, o.dialer, Handlers{
		OnEvent:     c.handleEvent,
		OnStatus:    c.handleStatus,
		OnSendError: o.onSendError,
	}, o.logger)
	if err != nil {
		return nil, err
	}
	c.manager = manager

	return c, nil
}

// Connect starts the connection manager. It returns immediately; progress is
// visible through Status and Subscribe.
func (c *Client) Connect() error {
	return c.manager.Connect()
}

// Snapshot returns a copy of the current conversation.
func (c *Client) Snapshot() conversation.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Status returns the current connection status.
func (c *Client) Status() conversation.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status
}

// Subscribe returns a channel that receives a snapshot after every change.
// Slow readers only see the latest snapshot. The channel is closed by the
// returned cancel function or by Close.
func (c *Client) Subscribe() (<-chan conversation.State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan conversation.State, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state.Clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Submit sends text to the agent and appends it to the conversation as a
// user message. It is rejected without any change or write when text is
// blank, when the client is not connected or while a run is in progress.
func (c *Client) Submit(text string) error {
	if strings.TrimSpace(text) == "" {
		return core.ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return core.ErrClosed
	}
	if !c.state.Status.Connected {
		return core.ErrNotConnected
	}
	if c.state.IsProcessing {
		return core.ErrRunInProgress
	}

	if err := c.manager.Send(text); err != nil {
		c.logger.WithError(err).Warn("submit rejected by connection")
		return err
	}

	c.state = c.state.Append(conversation.Message{
		ID:        c.newID(),
		Role:      conversation.RoleUser,
		Content:   text,
		Timestamp: c.now(),
	})
	c.publishLocked()
	return nil
}

// Reset clears the conversation history, the open run and the agent state.
// The connection status is kept.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = conversation.State{Status: c.state.Status}
	c.reducer.Reset()
	c.logger.Info("conversation reset")
	c.publishLocked()
}

// Close disconnects and releases all resources. Subscriber channels are
// closed. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.manager.Dispose()

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	return nil
}

func (c *Client) handleEvent(event events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = c.reducer.Apply(c.state, event)
	c.publishLocked()
}

func (c *Client) handleStatus(status conversation.ConnectionStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !status.Connected {
		c.state = c.reducer.Disconnected(c.state)
	}
	c.state.Status = status
	c.publishLocked()
}

// publishLocked hands the current state to every subscriber, replacing any
// snapshot the subscriber has not read yet.
func (c *Client) publishLocked() {
	if len(c.subs) == 0 {
		return
	}

	for _, ch := range c.subs {
		snapshot := c.state.Clone()
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
