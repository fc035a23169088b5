package logging

import "context"

// Logger defines the leveled logging contract used across the pipeline. It
// mirrors the interface exposed by github.com/goliatone/go-logger so host
// applications can plug that package in without additional adapters.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// Provider exposes named loggers. Implementations can return the same
// instance for every name or scope loggers per component.
type Provider interface {
	GetLogger(name string) Logger
}

type noop struct{}

// NoOp returns a logger that discards every entry.
func NoOp() Logger {
	return noop{}
}

func (noop) Trace(string, ...any)                 {}
func (noop) Debug(string, ...any)                 {}
func (noop) Info(string, ...any)                  {}
func (noop) Warn(string, ...any)                  {}
func (noop) Error(string, ...any)                 {}
func (noop) Fatal(string, ...any)                 {}
func (n noop) WithContext(context.Context) Logger { return n }

// OrNoOp replaces a nil logger with the no-op implementation.
func OrNoOp(logger Logger) Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}
