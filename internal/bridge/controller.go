// Package bridge connects a UI to the chat transport and the identity store.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/omochice/chat-bridge/internal/transport"
	"github.com/omochice/chat-bridge/pkg/protocol"
	"go.uber.org/zap"
)

// IdentityResolver produces the local identity.
type IdentityResolver interface {
	Resolve(ctx context.Context) (protocol.Identity, error)
}

// State is the controller-level connection state.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateReady
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateConnecting:
		return "CONNECTING"
	case StateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// Controller owns the single transport session and routes intents and
// events between the UI, the identity store and the session.
type Controller struct {
	identity IdentityResolver
	dialer   transport.Dialer
	ui       UI
	log      *zap.Logger

	mu      sync.RWMutex
	session *transport.Session
	state   State
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New creates a Controller.
func New(identity IdentityResolver, dialer transport.Dialer, ui UI, opts ...Option) *Controller {
	c := &Controller{
		identity: identity,
		dialer:   dialer,
		ui:       ui,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LoadUserData resolves the identity and emits onUserData.
func (c *Controller) LoadUserData(ctx context.Context) error {
	id, err := c.identity.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("load user data: %w", err)
	}
	payload, err := id.Encode()
	if err != nil {
		return fmt.Errorf("load user data: %w", err)
	}
	c.ui.OnUserData(payload)
	return nil
}

// ConnectSocket opens a new session to endpoint. A previously held session
// is swapped out and closed; nothing it emits afterwards reaches the UI.
func (c *Controller) ConnectSocket(endpoint string) error {
	events := &sessionEvents{c: c}
	s := transport.NewSession(c.dialer, events, transport.WithLogger(c.log))
	events.session = s

	c.mu.Lock()
	old := c.session
	c.session = s
	c.state = StateConnecting
	c.mu.Unlock()

	if old != nil {
		c.log.Info("replacing session", zap.String("old", old.ID()), zap.String("new", s.ID()))
		if err := old.Close(); err != nil {
			c.log.Warn("failed to close replaced session", zap.String("session", old.ID()), zap.Error(err))
		}
	}

	return s.Connect(endpoint)
}

// SendMessage writes payload verbatim on the current session. It fails with
// transport.ErrNoConnection before any ConnectSocket and with
// transport.ErrNotOpen until that session is open.
func (c *Controller) SendMessage(ctx context.Context, payload string) error {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()

	if s == nil {
		return transport.ErrNoConnection
	}
	if err := s.Send(ctx, []byte(payload)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Close closes the current session, if any.
func (c *Controller) Close() error {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.state = StateUninitialized
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}

// current reports whether s is still the retained session.
func (c *Controller) current(s *transport.Session) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session == s
}

// sessionEvents routes one session's callbacks, dropping them once the
// session has been replaced.
type sessionEvents struct {
	c       *Controller
	session *transport.Session
}

func (e *sessionEvents) OnOpen() {
	e.c.mu.Lock()
	if e.c.session != e.session {
		e.c.mu.Unlock()
		return
	}
	e.c.state = StateReady
	e.c.mu.Unlock()

	e.c.ui.OnConnect(protocol.StatusOK)
}

func (e *sessionEvents) OnMessage(frame []byte) {
	if !e.c.current(e.session) {
		return
	}

	batch, err := protocol.DecodeFrame(frame)
	if err != nil {
		e.c.log.Warn("dropping inbound frame", zap.String("session", e.session.ID()), zap.Int("size", len(frame)), zap.Error(err))
		return
	}
	payload, err := batch.Encode()
	if err != nil {
		e.c.log.Warn("dropping inbound frame", zap.String("session", e.session.ID()), zap.Error(err))
		return
	}
	e.c.ui.OnMessages(payload)
}

func (e *sessionEvents) OnClose(err error) {
	if !e.c.current(e.session) {
		return
	}
	if err != nil {
		e.c.log.Warn("connection lost", zap.String("session", e.session.ID()), zap.String("endpoint", e.session.Endpoint()), zap.Error(err))
		return
	}
	e.c.log.Info("connection closed", zap.String("session", e.session.ID()))
}
