package voevent

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ConnHandler is the interface for handling incoming subscriber connections.
type ConnHandler interface {
	// Handle is called for each new connection.
	// The implementation is responsible for closing the connection.
	Handle(conn *net.TCPConn)
}

// ConnHandlerFunc adapts a function to ConnHandler.
type ConnHandlerFunc func(conn *net.TCPConn)

// Handle calls f(conn).
func (f ConnHandlerFunc) Handle(conn *net.TCPConn) {
	f(conn)
}

// Server is a minimal VTP broker: it accepts subscribers and hands each
// connection to a ConnHandler. It serves as the counterpart of Client in
// tests and for replaying recorded notices.
type Server struct {
	listener        *net.TCPListener
	logger          Logger
	shutdownTimeout time.Duration
	maxConns        int

	mu          sync.Mutex
	shutdown    bool
	accepted    int
	shutdownNow chan struct{} // signals immediate shutdown, bypassing timeout
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// ServerLoggerOption sets the logger for the server.
func ServerLoggerOption(logger Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// ServerShutdownTimeoutOption sets the graceful shutdown timeout.
// When the context is canceled, the server waits up to this duration
// before closing the listener. Default is 0 (immediate shutdown).
func ServerShutdownTimeoutOption(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = timeout
	}
}

// ServerMaxConnectionsOption makes the server stop listening after n
// accepted connections. Later dials are refused. Zero means unlimited.
func ServerMaxConnectionsOption(n int) ServerOption {
	return func(s *Server) {
		s.maxConns = n
	}
}

// NewServer creates a server bound to the specified address.
// Returns an error if the address cannot be bound.
func NewServer(addr *net.TCPAddr, opts ...ServerOption) (*Server, error) {
	listener, err := net.ListenTCP(addr.Network(), addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		listener:    listener,
		logger:      defaultLogger(),
		shutdownNow: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Serve accepts connections and dispatches them to the handler.
// It blocks until the context is canceled, the connection limit is reached
// or an unrecoverable error occurs. Reaching the limit returns nil.
func (s *Server) Serve(ctx context.Context, handler ConnHandler) error {
	s.logger.Info("feed server started", "addr", s.listener.Addr())

	go func() {
		<-ctx.Done()

		// Wait for shutdown timeout if configured, but allow early exit via Close()
		if s.shutdownTimeout > 0 {
			s.logger.Info("graceful shutdown initiated", "timeout", s.shutdownTimeout)
			select {
			case <-time.After(s.shutdownTimeout):
			case <-s.shutdownNow:
				s.logger.Debug("shutdown timeout bypassed via Close()")
			}
		}

		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		// Set a deadline to unblock Accept
		_ = s.listener.SetDeadline(time.Now())
	}()

	for {
		conn, err := s.listener.AcceptTCP()
		if err != nil {
			s.mu.Lock()
			isShutdown := s.shutdown
			s.mu.Unlock()

			if isShutdown {
				s.logger.Info("feed server stopped", "addr", s.listener.Addr())
				return ctx.Err()
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			s.logger.Error("accept error", "error", err)
			return err
		}

		s.logger.Debug("accepted subscriber", "remote_addr", conn.RemoteAddr())
		_ = conn.SetNoDelay(true)
		go handler.Handle(conn)

		if s.limitReached() {
			s.logger.Info("connection limit reached", "max_connections", s.maxConns)
			return s.Close()
		}
	}
}

func (s *Server) limitReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted++
	return s.maxConns > 0 && s.accepted >= s.maxConns
}

// Close stops the server by closing the underlying listener.
// If a shutdown timeout is configured, Close() bypasses the remaining timeout.
func (s *Server) Close() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	select {
	case s.shutdownNow <- struct{}{}:
	default:
	}

	return s.listener.Close()
}

// Addr returns the listener's network address.
func (s *Server) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

// PayloadHandler writes the same payloads, in order, to every subscriber
// and then closes the connection, the way a broker going down would.
type PayloadHandler struct {
	Payloads [][]byte
	// Pacing is slept before each payload.
	Pacing time.Duration
	Logger Logger
}

// Handle implements ConnHandler.
func (h *PayloadHandler) Handle(conn *net.TCPConn) {
	logger := h.Logger
	if logger == nil {
		logger = defaultLogger()
	}
	defer func() {
		_ = conn.CloseWrite()
		if err := conn.Close(); err != nil {
			logger.Warn("could not close subscriber connection", "error", err)
			return
		}
		logger.Debug("closed subscriber connection", "remote_addr", conn.RemoteAddr())
	}()

	for _, p := range h.Payloads {
		time.Sleep(h.Pacing)
		if err := WriteFrame(conn, p); err != nil {
			logger.Error("error communicating with subscriber", "remote_addr", conn.RemoteAddr(), "error", err)
			return
		}
	}
}
