// Package ws provides the nhooyr.io/websocket transport driver.
package ws

import (
	"context"
	"fmt"

	"github.com/omochice/chat-bridge/internal/transport"
	"nhooyr.io/websocket"
)

// Conn adapts nhooyr.io/websocket to transport.Conn.
type Conn struct {
	conn       *websocket.Conn
	remoteAddr string
}

// NewConn wraps a websocket.Conn with empty remote address.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// NewConnWithAddr wraps a websocket.Conn with the specified remote address.
func NewConnWithAddr(conn *websocket.Conn, addr string) *Conn {
	return &Conn{conn: conn, remoteAddr: addr}
}

// Read implements transport.Conn.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

// Write implements transport.Conn.
// Frames go out as text messages.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Close implements transport.Conn.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// Dialer dials with nhooyr.io/websocket.
type Dialer struct {
	// ReadLimit caps inbound frame size in bytes; zero keeps the library default.
	ReadLimit int64
}

// Dial implements transport.Dialer.
func (d Dialer) Dial(ctx context.Context, endpoint string) (transport.Conn, error) {
	conn, resp, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	if d.ReadLimit > 0 {
		conn.SetReadLimit(d.ReadLimit)
	}

	addr := ""
	if resp != nil && resp.Request != nil && resp.Request.URL != nil {
		addr = resp.Request.URL.Host
	}
	return NewConnWithAddr(conn, addr), nil
}
