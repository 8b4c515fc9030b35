package voevent

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Defaults of the public GCN VOEvent broker.
const (
	DefaultPort = 8099
	// DefaultIVORN identifies anonymous clients in transport responses.
	DefaultIVORN = "ivo://go_voeventclient/anonymous"
)

// DefaultHosts are the public GCN VOEvent brokers, tried in turn.
var DefaultHosts = []string{"45.58.43.186", "68.169.57.253"}

// options holds the configuration for a client.
type options struct {
	codec  Codec
	logger Logger

	hosts []string
	port  int

	registrations  []Registration
	onException    ExceptionHandler
	onHandlerError HandlerErrorFunc

	backoff        BackoffConfig
	connectTimeout time.Duration // bound on a single dial, 0 means the OS default
	readTimeout    time.Duration // bound on a single frame read, 0 means none
	maxFrameSize   uint32        // 0 means no limit

	registerer  prometheus.Registerer
	metrics     *Metrics
	metricLabel prometheus.Labels

	ivorn string // non-empty enables transport responses
}

// Option is a function that configures client options.
type Option func(*options)

// HostsOption sets the feed hosts. Each connection attempt moves to the next
// host, wrapping around.
func HostsOption(hosts ...string) Option {
	return func(o *options) {
		o.hosts = append([]string{}, hosts...)
	}
}

// PortOption sets the feed port.
func PortOption(port int) Option {
	return func(o *options) {
		o.port = port
	}
}

// HandlerOption registers h for every notice type.
func HandlerOption(h Handler) Option {
	return func(o *options) {
		o.registrations = append(o.registrations, AllNotices(h))
	}
}

// RegistrationOption appends registrations, usually built with
// IncludeNoticeTypes or ExcludeNoticeTypes. Order is preserved across calls.
func RegistrationOption(regs ...Registration) Option {
	return func(o *options) {
		o.registrations = append(o.registrations, regs...)
	}
}

// ExceptionHandlerOption sets the callback for payloads that fail to parse.
// Without it, such payloads are logged and dropped.
func ExceptionHandlerOption(cb ExceptionHandler) Option {
	return func(o *options) {
		o.onException = cb
	}
}

// HandlerErrorOption sets the callback for handlers that return an error or panic.
func HandlerErrorOption(cb HandlerErrorFunc) Option {
	return func(o *options) {
		o.onHandlerError = cb
	}
}

// BackoffOption sets the full reconnect backoff policy.
func BackoffOption(cfg BackoffConfig) Option {
	return func(o *options) {
		o.backoff = cfg
	}
}

// MaxReconnectTimeoutOption caps the delay between reconnection attempts.
func MaxReconnectTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.backoff.MaxDelay = d
	}
}

// ConnectTimeoutOption bounds a single connection attempt.
func ConnectTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = d
	}
}

// ReadTimeoutOption bounds how long a frame read may block. Expiry is a
// transport failure and triggers a reconnect. The GCN brokers send an
// iamalive message every minute, so a few minutes is a sensible value.
func ReadTimeoutOption(d time.Duration) Option {
	return func(o *options) {
		o.readTimeout = d
	}
}

// MaxFrameSizeOption rejects frames declaring more than size payload bytes.
func MaxFrameSizeOption(size uint32) Option {
	return func(o *options) {
		o.maxFrameSize = size
	}
}

// CustomCodecOption replaces the length-prefix codec.
func CustomCodecOption(codec Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// LoggerOption sets the logger. The default discards everything.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// MetricsOption registers client metrics with reg. labels are attached to
// every series and must differ between clients sharing reg.
func MetricsOption(reg prometheus.Registerer, labels prometheus.Labels) Option {
	return func(o *options) {
		o.registerer = reg
		o.metricLabel = labels
	}
}

// ResponderOption makes the client answer the broker the way VTP
// subscribers do: an ack for each VOEvent and an iamalive for each
// iamalive, signed with ivorn.
func ResponderOption(ivorn string) Option {
	return func(o *options) {
		if ivorn == "" {
			ivorn = DefaultIVORN
		}
		o.ivorn = ivorn
	}
}
