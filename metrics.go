package voevent

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Disconnect reasons used as the "reason" label.
const (
	reasonEndOfStream = "end_of_stream"
	reasonTimeout     = "timeout"
	reasonTransport   = "transport_error"
	reasonStopped     = "stopped"
)

// Metrics holds the Prometheus collectors of one client. All methods are
// safe on a nil *Metrics so instrumentation stays optional.
type Metrics struct {
	connectAttempts  prometheus.Counter
	connectFailures  prometheus.Counter
	disconnects      *prometheus.CounterVec
	framesReceived   prometheus.Counter
	bytesReceived    prometheus.Counter
	noticesReceived  *prometheus.CounterVec
	handlerCalls     *prometheus.CounterVec
	parseFailures    prometheus.Counter
	handlerFailures  prometheus.Counter
	reconnectBackoff prometheus.Gauge
	state            prometheus.Gauge
}

// NewMetrics creates the client collectors and registers them with reg.
// constLabels distinguish several clients sharing one registry.
func NewMetrics(reg prometheus.Registerer, constLabels prometheus.Labels) (*Metrics, error) {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   "voevent",
			Subsystem:   "client",
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}
	}

	m := &Metrics{
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts(opts(
			"connect_attempts_total", "Total connection attempts to the feed"))),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts(opts(
			"connect_failures_total", "Total failed connection attempts"))),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts(opts(
			"disconnects_total", "Total streaming connections lost, by reason")), []string{"reason"}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts(opts(
			"frames_received_total", "Total frames decoded from the stream"))),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts(opts(
			"payload_bytes_received_total", "Total payload bytes decoded from the stream"))),
		noticesReceived: prometheus.NewCounterVec(prometheus.CounterOpts(opts(
			"notices_received_total", "Total notices parsed, by notice type")), []string{"notice_type"}),
		handlerCalls: prometheus.NewCounterVec(prometheus.CounterOpts(opts(
			"handler_calls_total", "Total handler invocations, by notice type")), []string{"notice_type"}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts(opts(
			"parse_failures_total", "Total payloads that could not be parsed into a notice"))),
		handlerFailures: prometheus.NewCounter(prometheus.CounterOpts(opts(
			"handler_failures_total", "Total handler invocations that returned an error or panicked"))),
		reconnectBackoff: prometheus.NewGauge(prometheus.GaugeOpts(opts(
			"reconnect_backoff_seconds", "Delay before the next connection attempt"))),
		state: prometheus.NewGauge(prometheus.GaugeOpts(opts(
			"connection_state", "Current connection state (0 disconnected, 1 connecting, 2 streaming, 3 stopped)"))),
	}

	collectors := []prometheus.Collector{
		m.connectAttempts, m.connectFailures, m.disconnects,
		m.framesReceived, m.bytesReceived, m.noticesReceived, m.handlerCalls,
		m.parseFailures, m.handlerFailures, m.reconnectBackoff, m.state,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register client metrics")
		}
	}
	return m, nil
}

func (m *Metrics) connectAttempt() {
	if m != nil {
		m.connectAttempts.Inc()
	}
}

func (m *Metrics) connectFailure() {
	if m != nil {
		m.connectFailures.Inc()
	}
}

func (m *Metrics) disconnect(reason string) {
	if m != nil {
		m.disconnects.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) frame(f Frame) {
	if m != nil {
		m.framesReceived.Inc()
		m.bytesReceived.Add(float64(f.Length()))
	}
}

func (m *Metrics) notice(t NoticeType) {
	if m != nil {
		m.noticesReceived.WithLabelValues(t.String()).Inc()
	}
}

func (m *Metrics) handlerCall(t NoticeType) {
	if m != nil {
		m.handlerCalls.WithLabelValues(t.String()).Inc()
	}
}

func (m *Metrics) parseFailure() {
	if m != nil {
		m.parseFailures.Inc()
	}
}

func (m *Metrics) handlerFailure() {
	if m != nil {
		m.handlerFailures.Inc()
	}
}

func (m *Metrics) backoff(seconds float64) {
	if m != nil {
		m.reconnectBackoff.Set(seconds)
	}
}

func (m *Metrics) setState(s ConnectionState) {
	if m != nil {
		m.state.Set(float64(s))
	}
}
