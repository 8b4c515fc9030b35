package voevent

import (
	"context"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Errors returned by client construction and lifecycle.
var (
	// ErrNoHandler is returned when no handler is registered.
	ErrNoHandler = errors.New("no handler registered")
	// ErrNoHosts is returned when the host list is empty.
	ErrNoHosts = errors.New("no feed hosts")
	// ErrInvalidPort is returned for ports outside 1-65535.
	ErrInvalidPort = errors.New("invalid port")
	// ErrClientStopped is returned by Run on a client that was stopped.
	ErrClientStopped = errors.New("client stopped")
	// ErrClientRunning is returned by Run while another Run is in progress.
	ErrClientRunning = errors.New("client already running")
)

// Client is a listening session: it keeps one connection to a feed open,
// forwards every frame to the dispatcher and reconnects after any
// transport failure, indefinitely, until stopped.
type Client struct {
	opts       options
	dispatcher *Dispatcher
	logger     Logger
	metrics    *Metrics
	rng        *rand.Rand

	state    atomic.Int32
	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	mu   sync.Mutex
	conn *Conn
}

// NewClient validates opts and returns an idle client; call Run to start it.
func NewClient(opt ...Option) (*Client, error) {
	var opts options
	for _, o := range opt {
		o(&opts)
	}

	if err := checkOptions(&opts); err != nil {
		return nil, err
	}

	if opts.registerer != nil && opts.metrics == nil {
		m, err := NewMetrics(opts.registerer, opts.metricLabel)
		if err != nil {
			return nil, err
		}
		opts.metrics = m
	}

	c := &Client{
		opts:       opts,
		dispatcher: newDispatcher(opts.registrations, opts),
		logger:     opts.logger,
		metrics:    opts.metrics,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:     make(chan struct{}),
	}
	c.setState(Disconnected)
	return c, nil
}

// checkOptions validates and sets default values for client options.
func checkOptions(opts *options) error {
	if len(opts.registrations) == 0 {
		return ErrNoHandler
	}
	for i, r := range opts.registrations {
		if r.Handler == nil {
			return errors.Wrapf(ErrNoHandler, "registration %d has a nil handler", i)
		}
	}

	if opts.hosts == nil {
		opts.hosts = append([]string(nil), DefaultHosts...)
	}
	if len(opts.hosts) == 0 {
		return ErrNoHosts
	}

	if opts.port == 0 {
		opts.port = DefaultPort
	}
	if opts.port < 0 || opts.port > 65535 {
		return errors.Wrapf(ErrInvalidPort, "%d", opts.port)
	}

	opts.backoff = opts.backoff.withDefaults()

	if opts.codec == nil {
		opts.codec = LengthPrefixCodec{MaxFrameSize: opts.maxFrameSize}
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	return nil
}

// Listen creates a client from opt and runs it until ctx is canceled.
func Listen(ctx context.Context, opt ...Option) error {
	c, err := NewClient(opt...)
	if err != nil {
		return err
	}
	return c.Run(ctx)
}

// Run drives the connection state machine. It blocks until Stop is called,
// returning nil, or until ctx is canceled, returning ctx.Err(). Transport
// failures never make Run return. A client runs at most once.
func (c *Client) Run(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return ErrClientStopped
	default:
	}
	if !c.running.CompareAndSwap(false, true) {
		// a concurrent Stop may have claimed the flag
		select {
		case <-c.stopCh:
			return ErrClientStopped
		default:
			return ErrClientRunning
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	c.logger.Info("client started", "hosts", c.opts.hosts, "port", c.opts.port,
		"max_reconnect_timeout", c.opts.backoff.MaxDelay)

	failures, attempts := 0, 0
	for {
		delay := NextBackoffDelay(c.opts.backoff, failures, c.rng)
		c.metrics.backoff(delay.Seconds())
		if delay > 0 {
			c.logger.Info("reconnecting after backoff", "delay", delay, "failures", failures)
			if !sleepContext(runCtx, delay) {
				break
			}
		}
		if c.stopping(runCtx) {
			break
		}

		addr := c.address(attempts)
		attempts++
		c.setState(Connecting)
		c.metrics.connectAttempt()

		raw, err := c.dial(runCtx, addr)
		if err != nil {
			if c.stopping(runCtx) {
				break
			}
			failures++
			c.metrics.connectFailure()
			c.logger.Warn("failed to connect", "addr", addr, "failures", failures, "error", err)
			c.setState(Disconnected)
			continue
		}

		conn := newConn(raw, c.dispatcher, c.opts)
		c.setConn(conn)
		c.setState(Streaming)
		c.logger.Info("connected", "addr", conn.Addr())

		err = conn.Run(runCtx)
		c.setConn(nil)
		if c.stopping(runCtx) {
			c.metrics.disconnect(reasonStopped)
			break
		}

		// a session that delivered nothing counts as a failed attempt
		if conn.Frames() > 0 {
			failures = 0
		} else {
			failures++
		}
		c.metrics.disconnect(disconnectReason(err))
		c.logger.Warn("connection lost", "addr", addr, "frames", conn.Frames(),
			"failures", failures, "error", err)
		c.setState(Disconnected)
	}

	c.stopOnce.Do(func() { close(c.stopCh) })
	c.setState(Stopped)
	c.logger.Info("client stopped")

	return ctx.Err()
}

// Stop ends the session: the open connection, if any, is closed and Run
// returns without reconnecting. Stop is idempotent and the client cannot be
// restarted afterwards.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if c.running.CompareAndSwap(false, true) {
		// never started
		c.setState(Stopped)
		return
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// stopping reports whether Stop was called or ctx ended.
func (c *Client) stopping(ctx context.Context) bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return ctx.Err() != nil
	}
}

// Done is closed once the client is stopped.
func (c *Client) Done() <-chan struct{} {
	return c.stopCh
}

// address picks the host for the n-th connection attempt, cycling through
// the configured hosts.
func (c *Client) address(n int) string {
	host := c.opts.hosts[n%len(c.opts.hosts)]
	return net.JoinHostPort(host, strconv.Itoa(c.opts.port))
}

func (c *Client) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.opts.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return conn, nil
}

func (c *Client) setConn(conn *Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) setState(s ConnectionState) {
	prev := ConnectionState(c.state.Swap(int32(s)))
	c.metrics.setState(s)
	if prev != s {
		c.logger.Debug("state changed", "from", prev, "to", s)
	}
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func disconnectReason(err error) string {
	var te *TransportError
	switch {
	case errors.Is(err, ErrEndOfStream):
		return reasonEndOfStream
	case errors.As(err, &te) && te.Timeout():
		return reasonTimeout
	default:
		return reasonTransport
	}
}

// sleepContext waits for d, returning false if ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
