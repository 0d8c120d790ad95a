package transport_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/omochice/chat-bridge/internal/transport"
)

// pipeConn is an in-memory Conn fed through its inbound channel.
type pipeConn struct {
	inbound  chan []byte
	mu       sync.Mutex
	written  [][]byte
	closed   chan struct{}
	closeOne sync.Once
}

func newPipeConn() *pipeConn {
	return &pipeConn{inbound: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *pipeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *pipeConn) Write(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, data)
	return nil
}

func (c *pipeConn) Close() error {
	c.closeOne.Do(func() { close(c.closed) })
	return nil
}

func (c *pipeConn) RemoteAddr() string { return "pipe" }

func (c *pipeConn) Written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

// recorder collects handler calls.
type recorder struct {
	opened chan struct{}
	frames chan []byte
	closed chan error
}

func newRecorder() *recorder {
	return &recorder{
		opened: make(chan struct{}, 4),
		frames: make(chan []byte, 16),
		closed: make(chan error, 4),
	}
}

func (r *recorder) OnOpen()                { r.opened <- struct{}{} }
func (r *recorder) OnMessage(frame []byte) { r.frames <- frame }
func (r *recorder) OnClose(err error)      { r.closed <- err }

func dialerFor(conn transport.Conn) transport.Dialer {
	return transport.DialerFunc(func(context.Context, string) (transport.Conn, error) {
		return conn, nil
	})
}

func waitOpen(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.opened:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for OnOpen")
	}
}

func TestSession_ConnectOpensOnce(t *testing.T) {
	conn := newPipeConn()
	rec := newRecorder()
	s := transport.NewSession(dialerFor(conn), rec)

	if s.State() != transport.StateIdle {
		t.Errorf("State() = %v, want IDLE", s.State())
	}
	if err := s.Connect("ws://example"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	waitOpen(t, rec)

	if s.State() != transport.StateOpen {
		t.Errorf("State() = %v, want OPEN", s.State())
	}
	if s.Endpoint() != "ws://example" {
		t.Errorf("Endpoint() = %q", s.Endpoint())
	}
	if err := s.Connect("ws://other"); !errors.Is(err, transport.ErrAlreadyConnected) {
		t.Errorf("second Connect() error = %v, want ErrAlreadyConnected", err)
	}

	select {
	case <-rec.opened:
		t.Error("OnOpen fired twice")
	case <-time.After(50 * time.Millisecond):
	}
	s.Close()
}

func TestSession_DeliversFramesInOrder(t *testing.T) {
	conn := newPipeConn()
	rec := newRecorder()
	s := transport.NewSession(dialerFor(conn), rec)
	defer s.Close()

	if err := s.Connect("ws://example"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	waitOpen(t, rec)

	want := []string{"F1", "F2", "F3"}
	for _, f := range want {
		conn.inbound <- []byte(f)
	}

	for i, w := range want {
		select {
		case got := <-rec.frames:
			if string(got) != w {
				t.Errorf("frame %d = %q, want %q", i, got, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for frame %d", i)
		}
	}
}

func TestSession_SendBeforeOpen(t *testing.T) {
	gate := make(chan struct{})
	conn := newPipeConn()
	dialer := transport.DialerFunc(func(ctx context.Context, _ string) (transport.Conn, error) {
		select {
		case <-gate:
			return conn, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	rec := newRecorder()
	s := transport.NewSession(dialer, rec)

	if err := s.Send(context.Background(), []byte("x")); !errors.Is(err, transport.ErrNotOpen) {
		t.Errorf("Send() on idle session error = %v, want ErrNotOpen", err)
	}

	if err := s.Connect("ws://example"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := s.Send(context.Background(), []byte("x")); !errors.Is(err, transport.ErrNotOpen) {
		t.Errorf("Send() while connecting error = %v, want ErrNotOpen", err)
	}

	close(gate)
	waitOpen(t, rec)

	if err := s.Send(context.Background(), []byte(`{"content":"hi"}`)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	written := conn.Written()
	if len(written) != 1 || string(written[0]) != `{"content":"hi"}` {
		t.Errorf("written = %q", written)
	}
	s.Close()
}

func TestSession_DialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	rec := newRecorder()
	s := transport.NewSession(transport.DialerFunc(func(context.Context, string) (transport.Conn, error) {
		return nil, dialErr
	}), rec)

	if err := s.Connect("ws://nowhere"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	select {
	case err := <-rec.closed:
		if !errors.Is(err, dialErr) {
			t.Errorf("OnClose() err = %v, want %v", err, dialErr)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for OnClose")
	}
	<-s.Done()

	if s.State() != transport.StateClosed {
		t.Errorf("State() = %v, want CLOSED", s.State())
	}
	select {
	case <-rec.opened:
		t.Error("OnOpen fired after dial failure")
	default:
	}
}

func TestSession_RemoteClose(t *testing.T) {
	conn := newPipeConn()
	rec := newRecorder()
	s := transport.NewSession(dialerFor(conn), rec)

	if err := s.Connect("ws://example"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	waitOpen(t, rec)

	conn.Close()

	select {
	case err := <-rec.closed:
		if err == nil {
			t.Error("OnClose() err = nil, want remote error")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for OnClose")
	}
	if err := s.Send(context.Background(), []byte("x")); !errors.Is(err, transport.ErrNotOpen) {
		t.Errorf("Send() after close error = %v, want ErrNotOpen", err)
	}
}

func TestSession_CloseWhileConnecting(t *testing.T) {
	dialer := transport.DialerFunc(func(ctx context.Context, _ string) (transport.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	rec := newRecorder()
	s := transport.NewSession(dialer, rec)

	if err := s.Connect("ws://slow"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for session to finish")
	}
	select {
	case err := <-rec.closed:
		if err != nil {
			t.Errorf("OnClose() err = %v, want nil after local close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for OnClose")
	}
}

func TestSession_CloseIdle(t *testing.T) {
	s := transport.NewSession(dialerFor(newPipeConn()), newRecorder())
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	<-s.Done()
	if err := s.Connect("ws://example"); !errors.Is(err, transport.ErrAlreadyConnected) {
		t.Errorf("Connect() after Close error = %v, want ErrAlreadyConnected", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state transport.State
		want  string
	}{
		{transport.StateIdle, "IDLE"},
		{transport.StateConnecting, "CONNECTING"},
		{transport.StateOpen, "OPEN"},
		{transport.StateClosed, "CLOSED"},
		{transport.State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
