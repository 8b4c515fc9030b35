package voevent

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// mockHandler implements ConnHandler for testing
type mockHandler struct {
	mu       sync.Mutex
	conns    []*net.TCPConn
	handleCh chan *net.TCPConn
}

func newMockHandler() *mockHandler {
	return &mockHandler{
		conns:    make([]*net.TCPConn, 0),
		handleCh: make(chan *net.TCPConn, 10),
	}
}

func (h *mockHandler) Handle(conn *net.TCPConn) {
	h.mu.Lock()
	h.conns = append(h.conns, conn)
	h.mu.Unlock()

	select {
	case h.handleCh <- conn:
	default:
	}
}

func (h *mockHandler) getConns() []*net.TCPConn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns
}

func localAddr() *net.TCPAddr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0}
}

func TestNewServer(t *testing.T) {
	server, err := NewServer(localAddr())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.listener == nil {
		t.Error("listener is nil")
	}
	if server.Addr().Port == 0 {
		t.Error("expected a bound port")
	}
}

func TestNewServer_AddrInUse(t *testing.T) {
	server1, err := NewServer(localAddr())
	if err != nil {
		t.Fatalf("first NewServer failed: %v", err)
	}
	defer server1.Close()

	// Try to listen on the same port - should fail
	if _, err = NewServer(server1.Addr()); err == nil {
		t.Error("expected error for occupied port")
	}
}

func TestServer_Close(t *testing.T) {
	server, err := NewServer(localAddr())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if err := server.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Verify listener is closed by trying to accept
	if _, err := server.listener.AcceptTCP(); err == nil {
		t.Error("expected error after close")
	}
}

func TestServer_Serve(t *testing.T) {
	server, err := NewServer(localAddr())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	handler := newMockHandler()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, handler)
	}()

	clientConn, err := net.DialTCP("tcp", nil, server.Addr())
	if err != nil {
		t.Fatalf("client dial failed: %v", err)
	}
	defer clientConn.Close()

	select {
	case conn := <-handler.handleCh:
		if conn == nil {
			t.Fatal("handler received nil connection")
		}
		conn.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for handler")
	}

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Serve to return")
	}
}

func TestServer_Serve_MultipleConnections(t *testing.T) {
	server, err := NewServer(localAddr())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	handler := newMockHandler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go server.Serve(ctx, handler)

	numClients := 5
	clients := make([]*net.TCPConn, numClients)
	for i := 0; i < numClients; i++ {
		clientConn, err := net.DialTCP("tcp", nil, server.Addr())
		if err != nil {
			t.Fatalf("client %d dial failed: %v", i, err)
		}
		clients[i] = clientConn
	}

	for i := 0; i < numClients; i++ {
		select {
		case conn := <-handler.handleCh:
			if conn == nil {
				t.Errorf("handler %d received nil connection", i)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for handler %d", i)
		}
	}

	for _, conn := range clients {
		conn.Close()
	}

	conns := handler.getConns()
	if len(conns) != numClients {
		t.Errorf("handler received %d connections, want %d", len(conns), numClients)
	}
	for _, conn := range conns {
		conn.Close()
	}
}

func TestServer_Serve_ContextCanceled(t *testing.T) {
	server, err := NewServer(localAddr(), ServerShutdownTimeoutOption(time.Minute))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, newMockHandler())
	}()

	cancel()
	// bypass the shutdown timeout
	if err := server.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Serve to return")
	}
}

func TestServer_Serve_MaxConnections(t *testing.T) {
	logger := &recordLogger{}
	server, err := NewServer(localAddr(), ServerMaxConnectionsOption(2), ServerLoggerOption(logger))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	addr := server.Addr()

	handler := newMockHandler()
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(context.Background(), handler)
	}()

	for i := 0; i < 2; i++ {
		conn, err := net.DialTCP("tcp", nil, addr)
		if err != nil {
			t.Fatalf("client %d dial failed: %v", i, err)
		}
		defer conn.Close()
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve at the connection limit returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return at the connection limit")
	}

	if _, err := net.DialTCP("tcp", nil, addr); err == nil {
		t.Error("dial after the limit should be refused")
	}

	for i := 0; i < 2; i++ {
		select {
		case conn := <-handler.handleCh:
			conn.Close()
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for handler %d", i)
		}
	}
	if n := logger.count("info", "connection limit reached"); n != 1 {
		t.Errorf("limit logged %d times, want 1", n)
	}
}

func TestPayloadHandler(t *testing.T) {
	feedConn, subConn := createTestTCPPair(t)
	defer subConn.Close()

	gbm := loadFixture(t, "gbm_flt_pos.xml")
	h := &PayloadHandler{Payloads: [][]byte{gbm, []byte("second")}, Pacing: time.Millisecond}
	go h.Handle(feedConn)

	frame, err := ReadFrame(subConn)
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if !bytes.Equal(frame.Body(), gbm) {
		t.Error("first frame differs from the payload")
	}

	frame, err = ReadFrame(subConn)
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if string(frame) != "second" {
		t.Errorf("second frame = %q, want %q", frame, "second")
	}

	if _, err := ReadFrame(subConn); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream after the last payload, got %v", err)
	}
}
