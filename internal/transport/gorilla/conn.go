// Package gorilla provides the gorilla/websocket transport driver.
package gorilla

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/omochice/chat-bridge/internal/transport"
)

// closeGrace bounds how long Close waits to write the close frame.
const closeGrace = time.Second

// Conn adapts gorilla/websocket to transport.Conn.
type Conn struct {
	conn *websocket.Conn
}

// NewConn wraps a gorilla connection.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Read implements transport.Conn. Cancelling ctx does not interrupt a
// blocked read; close the connection instead.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

// Write implements transport.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close implements transport.Conn.
func (c *Conn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	return c.conn.Close()
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Dialer dials with gorilla/websocket.
type Dialer struct {
	// ReadLimit caps inbound frame size in bytes; zero means no limit.
	ReadLimit int64
}

// Dial implements transport.Dialer.
func (d Dialer) Dial(ctx context.Context, endpoint string) (transport.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	if d.ReadLimit > 0 {
		conn.SetReadLimit(d.ReadLimit)
	}
	return NewConn(conn), nil
}
