// Package voevent is a resilient client for the VOEvent Transport Protocol,
// the length-prefixed XML stream used by GCN to distribute astronomical
// transient alerts. A Client keeps one connection to a broker open, decodes
// frames, routes each notice to the registered handlers and reconnects with
// bounded backoff whenever the connection is lost.
package voevent

import (
	"bufio"
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// ErrConnectionClosed is returned by Run when the connection was closed locally.
var ErrConnectionClosed = errors.New("connection closed")

// defaultReadBufferSize is the size of the buffered reader in front of the socket.
const defaultReadBufferSize = 64 * 1024

// Conn is one streaming connection to a feed. It decodes frames in arrival
// order and hands each one to the dispatcher before reading the next.
type Conn struct {
	rawConn    net.Conn
	reader     *bufio.Reader
	codec      Codec
	dispatcher *Dispatcher
	responder  *responder
	logger     Logger
	metrics    *Metrics

	readTimeout time.Duration
	frames      atomic.Int64
	closed      atomic.Bool
}

// newConn wraps an established connection. opts must have passed checkOptions.
func newConn(c net.Conn, d *Dispatcher, opts options) *Conn {
	conn := &Conn{
		rawConn:     c,
		reader:      bufio.NewReaderSize(c, defaultReadBufferSize),
		codec:       opts.codec,
		dispatcher:  d,
		logger:      opts.logger,
		metrics:     opts.metrics,
		readTimeout: opts.readTimeout,
	}
	if opts.ivorn != "" {
		conn.responder = &responder{
			ivorn:  opts.ivorn,
			codec:  opts.codec,
			logger: opts.logger,
			now:    time.Now,
		}
	}
	return conn
}

// Run reads frames until the stream ends, a transport error occurs or ctx
// is canceled. The returned error is ErrEndOfStream, a *TransportError,
// ErrConnectionClosed after Close, or the context error; it is never nil.
// The connection is closed on return.
func (c *Conn) Run(ctx context.Context) error {
	defer c.Close()

	// unblock a pending read when ctx ends
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if c.readTimeout > 0 {
			_ = c.rawConn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}

		frame, err := c.codec.Decode(c.reader)
		if err != nil {
			if c.closed.Load() {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrConnectionClosed
			}
			return err
		}

		c.frames.Add(1)
		c.metrics.frame(frame)
		c.logger.Debug("received frame", "addr", c.Addr(), "bytes", frame.Length())

		if c.responder != nil {
			if err := c.responder.respond(c.rawConn, frame.Body()); err != nil {
				return err
			}
		}

		c.dispatcher.Dispatch(frame.Body())
	}
}

// Frames returns the number of frames decoded so far.
func (c *Conn) Frames() int64 {
	return c.frames.Load()
}

// Close closes the underlying connection. Safe to call multiple times and
// from other goroutines; a blocked Run returns promptly.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.rawConn.Close()
}

// IsClosed returns true if the connection has been closed.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Addr returns the remote address of the connection.
func (c *Conn) Addr() net.Addr {
	return c.rawConn.RemoteAddr()
}
