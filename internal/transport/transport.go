// Package transport owns the single WebSocket connection of a bridge.
package transport

import (
	"context"
	"errors"
)

var (
	// ErrNoConnection is returned when sending before any connect.
	ErrNoConnection = errors.New("no active connection")
	// ErrNotOpen is returned when sending while the connection is not open.
	ErrNotOpen = errors.New("connection is not open")
	// ErrAlreadyConnected is returned when Connect is called twice on a Session.
	ErrAlreadyConnected = errors.New("session already connected")
)

// Conn abstracts one established WebSocket connection.
type Conn interface {
	// Read reads a single text frame.
	// Returns an error once the connection is closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single text frame.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}

// Dialer opens connections to an endpoint.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, endpoint string) (Conn, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context, endpoint string) (Conn, error) {
	return f(ctx, endpoint)
}

// Handler observes a Session. Calls come from the session's read goroutine,
// one at a time, in wire order.
type Handler interface {
	// OnOpen is called once when the connection becomes ready.
	OnOpen()

	// OnMessage is called once per inbound frame.
	OnMessage(frame []byte)
}

// CloseHandler is implemented by handlers that want to observe dial failures
// and closed connections. err is nil after a local Close.
type CloseHandler interface {
	OnClose(err error)
}
