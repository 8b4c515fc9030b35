package voevent

import "github.com/rs/zerolog"

// Logger is the interface for structured logging.
// It is designed to be compatible with *slog.Logger from the standard library.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

// defaultLogger returns a logger that discards everything.
func defaultLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// zerologLogger adapts a zerolog.Logger to Logger.
type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger returns a Logger writing through l.
// Key-value args are attached as fields; an odd trailing key is logged under "!BADKEY".
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLogger{log: l}
}

func (z *zerologLogger) Debug(msg string, args ...any) { z.emit(z.log.Debug(), msg, args) }
func (z *zerologLogger) Info(msg string, args ...any)  { z.emit(z.log.Info(), msg, args) }
func (z *zerologLogger) Warn(msg string, args ...any)  { z.emit(z.log.Warn(), msg, args) }
func (z *zerologLogger) Error(msg string, args ...any) { z.emit(z.log.Error(), msg, args) }

func (z *zerologLogger) emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			e = e.Interface("!BADKEY", args[i])
			break
		}
		key, ok := args[i].(string)
		if !ok {
			e = e.Interface("!BADKEY", args[i])
			continue
		}
		if err, ok := args[i+1].(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}
