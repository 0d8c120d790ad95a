package transport

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Session is one connection attempt and its lifetime. A Session connects at
// most once; reconnecting means creating a new Session.
type Session struct {
	id      string
	dialer  Dialer
	handler Handler
	log     *zap.Logger

	mu       sync.RWMutex
	state    State
	endpoint string
	conn     Conn
	ctx      context.Context
	cancel   context.CancelFunc

	writeMu sync.Mutex
	done    chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession creates an idle Session that will dial through dialer and
// report to handler.
func NewSession(dialer Dialer, handler Handler, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		dialer:  dialer,
		handler: handler,
		log:     zap.NewNop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session", s.id))
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Endpoint returns the address passed to Connect.
func (s *Session) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Done is closed when the session's goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Connect starts dialing endpoint and returns immediately. OnOpen and
// OnMessage are delivered asynchronously.
func (s *Session) Connect(endpoint string) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.state = StateConnecting
	s.endpoint = endpoint
	s.ctx, s.cancel = context.WithCancel(context.Background())
	ctx := s.ctx
	s.mu.Unlock()

	go s.run(ctx, endpoint)
	return nil
}

// Send writes payload verbatim. It fails immediately unless the connection
// is open; nothing is queued.
func (s *Session) Send(ctx context.Context, payload []byte) error {
	s.mu.RLock()
	state, conn := s.state, s.conn
	s.mu.RUnlock()

	if state != StateOpen || conn == nil {
		return ErrNotOpen
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.Write(ctx, payload)
}

// Close cancels a pending dial or closes the open connection. It does not
// wait for the read goroutine; use Done for that.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	wasIdle := s.state == StateIdle
	s.state = StateClosed
	conn := s.conn
	cancel := s.cancel
	s.mu.Unlock()

	if wasIdle {
		close(s.done)
		return nil
	}
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *Session) run(ctx context.Context, endpoint string) {
	defer close(s.done)

	conn, err := s.dialer.Dial(ctx, endpoint)
	if err != nil {
		s.log.Warn("dial failed", zap.String("endpoint", endpoint), zap.Error(err))
		s.finish(err)
		return
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		_ = conn.Close()
		s.notifyClose(nil)
		return
	}
	s.conn = conn
	s.state = StateOpen
	s.mu.Unlock()

	s.log.Info("connection open", zap.String("endpoint", endpoint), zap.String("remote", conn.RemoteAddr()))
	s.handler.OnOpen()

	for {
		frame, err := conn.Read(ctx)
		if err != nil {
			s.finish(err)
			return
		}
		s.handler.OnMessage(frame)
	}
}

// finish records the end of the connection and notifies the handler.
func (s *Session) finish(err error) {
	s.mu.Lock()
	closedLocally := s.state == StateClosed
	s.state = StateClosed
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if closedLocally {
		s.notifyClose(nil)
		return
	}
	s.log.Info("connection closed", zap.Error(err))
	s.notifyClose(err)
}

func (s *Session) notifyClose(err error) {
	if ch, ok := s.handler.(CloseHandler); ok {
		ch.OnClose(err)
	}
}
