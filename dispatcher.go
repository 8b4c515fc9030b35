package voevent

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrHandlerPanic wraps the value recovered from a panicking handler.
var ErrHandlerPanic = errors.New("handler panic")

// HandlerErrorFunc is told about every failed handler invocation.
type HandlerErrorFunc func(payload []byte, notice *Notice, err error)

// Dispatcher routes payloads to the registrations whose predicate accepts
// the notice type. It keeps no state between payloads.
type Dispatcher struct {
	registrations  []Registration
	onException    ExceptionHandler
	onHandlerError HandlerErrorFunc
	logger         Logger
	metrics        *Metrics
}

// NewDispatcher creates a dispatcher over a copy of registrations.
// Registrations are invoked in the order given.
func NewDispatcher(registrations []Registration, opt ...Option) *Dispatcher {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	if opts.logger == nil {
		opts.logger = defaultLogger()
	}
	return newDispatcher(append(registrations[:0:0], registrations...), opts)
}

func newDispatcher(registrations []Registration, opts options) *Dispatcher {
	return &Dispatcher{
		registrations:  registrations,
		onException:    opts.onException,
		onHandlerError: opts.onHandlerError,
		logger:         opts.logger,
		metrics:        opts.metrics,
	}
}

// Dispatch parses payload and invokes every matching handler.
// A payload that cannot be parsed goes to the exception handler, if any,
// and is otherwise dropped. Dispatch never panics because of a handler or
// the exception handler.
func (d *Dispatcher) Dispatch(payload []byte) {
	notice, err := ParseNotice(payload)
	if err != nil {
		if errors.Is(err, ErrTransportMessage) {
			d.logger.Debug("received transport message", "detail", err)
			return
		}

		d.metrics.parseFailure()
		d.logger.Warn("failed to parse payload", "bytes", len(payload), "error", err)
		if d.onException != nil {
			d.reportException(payload, err)
		}
		return
	}

	d.metrics.notice(notice.Type)
	d.logger.Debug("received notice", "ivorn", notice.IVORN, "notice_type", notice.Type)

	for i, reg := range d.registrations {
		if !reg.matches(notice.Type) {
			continue
		}
		d.metrics.handlerCall(notice.Type)
		if err := d.invoke(reg.Handler, payload, notice); err != nil {
			d.metrics.handlerFailure()
			d.logger.Error("handler failed", "registration", i, "ivorn", notice.IVORN,
				"notice_type", notice.Type, "error", err)
			if d.onHandlerError != nil {
				d.onHandlerError(payload, notice, err)
			}
		}
	}
}

// invoke calls h, turning a panic into an error.
func (d *Dispatcher) invoke(h Handler, payload []byte, notice *Notice) (err error) {
	if h == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(ErrHandlerPanic, fmt.Sprint(r))
		}
	}()
	return h(payload, notice)
}

// reportException calls the exception handler, logging a panic instead of
// letting it reach the read loop.
func (d *Dispatcher) reportException(payload []byte, parseErr error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("exception handler panicked", "panic", fmt.Sprint(r), "error", parseErr)
		}
	}()
	d.onException(payload, parseErr)
}
