// Package gobwas provides the gobwas/ws transport driver, working directly on
// the net.Conn returned by the handshake.
package gobwas

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/omochice/chat-bridge/internal/transport"
)

// Conn adapts a gobwas client connection to transport.Conn.
type Conn struct {
	conn   net.Conn
	reader *wsutil.Reader
	rmu    sync.Mutex
	wmu    sync.Mutex
}

// NewConn wraps conn. br holds bytes the server sent right after the
// handshake and may be nil.
func NewConn(conn net.Conn, br *bufio.Reader) *Conn {
	var src io.Reader = conn
	if br != nil {
		src = br
	}
	return &Conn{
		conn: conn,
		reader: &wsutil.Reader{
			Source:    src,
			State:     ws.StateClientSide,
			CheckUTF8: true,
		},
	}
}

// Read implements transport.Conn. Control frames are answered inline and
// the next data frame is returned.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := c.reader.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := c.handleControl(hdr); err != nil {
				return nil, err
			}
			continue
		}
		if hdr.OpCode&(ws.OpText|ws.OpBinary) == 0 {
			if err := c.reader.Discard(); err != nil {
				return nil, err
			}
			continue
		}
		return io.ReadAll(c.reader)
	}
}

// handleControl answers pings and close frames. The reply is buffered so it
// reaches the wire in one write, never interleaved with Write.
func (c *Conn) handleControl(hdr ws.Header) error {
	var reply bytes.Buffer
	herr := wsutil.ControlFrameHandler(&reply, ws.StateClientSide)(hdr, c.reader)
	if reply.Len() > 0 {
		c.wmu.Lock()
		_, werr := c.conn.Write(reply.Bytes())
		c.wmu.Unlock()
		if herr == nil {
			herr = werr
		}
	}
	return herr
}

// Write implements transport.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return wsutil.WriteClientText(c.conn, data)
}

// Close implements transport.Conn.
func (c *Conn) Close() error {
	c.wmu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = wsutil.WriteClientMessage(c.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
	c.wmu.Unlock()
	return c.conn.Close()
}

// RemoteAddr implements transport.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Dialer dials with gobwas/ws.
type Dialer struct{}

// Dial implements transport.Dialer.
func (Dialer) Dial(ctx context.Context, endpoint string) (transport.Conn, error) {
	conn, br, _, err := ws.Dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return NewConn(conn, br), nil
}
