package client

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ag-ui/chat-client/pkg/conversation"
	"github.com/ag-ui/chat-client/pkg/core"
	"github.com/ag-ui/chat-client/pkg/core/events"
	"github.com/ag-ui/chat-client/pkg/transport"
)

// ConnState is the lifecycle state of a Manager.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handlers receive the output of a Manager.
//
// OnEvent is called from the connection's read goroutine, one event at a
// time, in arrival order. OnStatus calls are serialized and never happen
// after Dispose returns. None of the handlers may call Dispose.
type Handlers struct {
	OnEvent     func(events.Event)
	OnStatus    func(conversation.ConnectionStatus)
	OnSendError func(error)
}

// Manager owns the single logical connection to the agent endpoint. It dials,
// decodes inbound frames, writes outbound frames and reconnects after a fixed
// delay whenever the connection is lost.
type Manager struct {
	cfg      Config
	dialer   transport.Dialer
	handlers Handlers
	logger   logrus.FieldLogger

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	// deliverMu serializes status delivery so Dispose can wait out a
	// delivery that is already in flight.
	deliverMu sync.Mutex

	mu       sync.Mutex
	state    ConnState
	gen      uint64
	attempts int
	outbox   chan []byte
	timer    *time.Timer
	disposed bool
}

// NewManager creates a manager in the Idle state. A nil dialer selects the
// WebSocket transport configured from cfg.
func NewManager(cfg Config, dialer transport.Dialer, handlers Handlers, logger logrus.FieldLogger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if dialer == nil {
		wsCfg := transport.DefaultWebSocketConfig()
		wsCfg.HandshakeTimeout = cfg.DialTimeout
		wsCfg.WriteTimeout = cfg.WriteTimeout
		dialer = transport.NewWebSocketDialer(wsCfg)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if handlers.OnEvent == nil {
		handlers.OnEvent = func(events.Event) {}
	}
	if handlers.OnStatus == nil {
		handlers.OnStatus = func(conversation.ConnectionStatus) {}
	}
	if handlers.OnSendError == nil {
		handlers.OnSendError = func(error) {}
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		dialer:   dialer,
		handlers: handlers,
		logger:   logger.WithField("endpoint", cfg.Endpoint),
		ctx:      ctx,
		stop:     stop,
	}, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect starts connecting in the background. It is a no-op while a
// connection is being established or is open. From the Closed state it dials
// immediately and cancels any pending reconnect.
func (m *Manager) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return core.ErrClosed
	}
	if m.state == StateConnecting || m.state == StateOpen {
		return nil
	}

	m.startLocked()
	return nil
}

// Send queues text as one outbound user-input frame. It fails with
// core.ErrNotConnected unless the connection is open, in which case the
// transport is never touched.
func (m *Manager) Send(text string) error {
	frame, err := events.NewUserInput(text).ToJSON()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return core.ErrClosed
	}
	if m.state != StateOpen {
		return core.ErrNotConnected
	}

	select {
	case m.outbox <- frame:
		return nil
	default:
		return core.ErrSendQueueFull
	}
}

// Dispose tears the manager down from any state: the reconnect timer is
// cancelled, the connection is closed and all goroutines are waited for.
// Calling it more than once is safe. It must not be called from a handler.
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.state = StateClosed
	m.outbox = nil
	m.stop()
	m.mu.Unlock()

	// Wait for a status delivery that passed its checks before disposed was set.
	m.deliverMu.Lock()
	m.deliverMu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	m.dialer = nil
	m.mu.Unlock()

	m.logger.Debug("connection manager disposed")
}

func (m *Manager) startLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	m.state = StateConnecting
	m.gen++
	m.attempts++

	gen, attempt, dialer := m.gen, m.attempts, m.dialer
	m.wg.Add(1)
	go m.run(gen, attempt, dialer)
}

// run drives one connection from dial to close.
func (m *Manager) run(gen uint64, attempt int, dialer transport.Dialer) {
	defer m.wg.Done()

	log := m.logger.WithField("attempt", attempt)
	log.Debug("dialing")

	dialCtx, cancel := m.ctx, context.CancelFunc(func() {})
	if m.cfg.DialTimeout > 0 {
		dialCtx, cancel = context.WithTimeout(m.ctx, m.cfg.DialTimeout)
	}
	conn, err := dialer.Dial(dialCtx, m.cfg.Endpoint)
	cancel()
	if err != nil {
		m.handleClose(gen, &core.TransportError{Operation: "dial", Endpoint: m.cfg.Endpoint, Err: err})
		return
	}

	outbox := make(chan []byte, m.cfg.OutboxSize)

	m.mu.Lock()
	if m.disposed || m.gen != gen {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.state = StateOpen
	m.outbox = outbox
	m.mu.Unlock()

	log.Info("connected")
	m.reportStatus(gen, conversation.ConnectionStatus{Connected: true})

	err = m.serve(conn, outbox)
	m.handleClose(gen, err)
}

// serve runs the read pump, the write pump and a closer for one connection.
// The first of them to fail stops the other two.
func (m *Manager) serve(conn transport.Conn, outbox <-chan []byte) error {
	g, ctx := errgroup.WithContext(m.ctx)

	g.Go(func() error {
		return m.readLoop(ctx, conn)
	})
	g.Go(func() error {
		return m.writeLoop(ctx, conn, outbox)
	})
	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})

	return g.Wait()
}

func (m *Manager) readLoop(ctx context.Context, conn transport.Conn) error {
	for {
		frame, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &core.TransportError{Operation: "read", Endpoint: m.cfg.Endpoint, Err: err}
		}

		event, err := events.Decode(frame)
		if err != nil {
			m.logger.WithError(err).WithField("frame_size", len(frame)).Warn("dropping inbound frame")
			continue
		}

		m.handlers.OnEvent(event)
	}
}

func (m *Manager) writeLoop(ctx context.Context, conn transport.Conn, outbox <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-outbox:
			if err := m.write(ctx, conn, frame); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				terr := &core.TransportError{Operation: "write", Endpoint: m.cfg.Endpoint, Err: err}
				m.logger.WithError(err).Error("failed to send frame")
				m.handlers.OnSendError(terr)
				return terr
			}
		}
	}
}

func (m *Manager) write(ctx context.Context, conn transport.Conn, frame []byte) error {
	if m.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.WriteTimeout)
		defer cancel()
	}
	return conn.Write(ctx, frame)
}

// handleClose moves a connection of generation gen to Closed, reports the
// loss and schedules exactly one reconnect.
func (m *Manager) handleClose(gen uint64, cause error) {
	m.mu.Lock()
	if m.disposed || m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.state = StateClosed
	m.outbox = nil
	m.mu.Unlock()

	if cause == nil {
		cause = &core.TransportError{Operation: "read", Endpoint: m.cfg.Endpoint, Err: core.ErrConnectionLost}
	}
	m.logger.WithError(cause).WithField("reconnect_in", m.cfg.ReconnectDelay).Warn("connection closed")
	m.reportStatus(gen, conversation.ConnectionStatus{LastError: cause.Error()})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed || m.gen != gen || m.state != StateClosed || m.timer != nil {
		return
	}
	m.timer = time.AfterFunc(m.cfg.ReconnectDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.disposed || m.gen != gen || m.state != StateClosed {
			return
		}
		m.timer = nil
		m.logger.Info("reconnecting")
		m.startLocked()
	})
}

func (m *Manager) reportStatus(gen uint64, status conversation.ConnectionStatus) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	current := !m.disposed && m.gen == gen
	m.mu.Unlock()

	if current {
		m.handlers.OnStatus(status)
	}
}
