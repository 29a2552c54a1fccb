package herald

import (
	"sync"

	"go.uber.org/zap"
)

var (
	defaultOptions []Option
	defaultOptMu   sync.Mutex
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// FailureHandler is called on the worker goroutine when a handler panics,
// after the dispatch loop has stopped accepting work.
type FailureHandler func(err *HandlerError)

// Configure sets options for the default Dispatcher.
// Must be called before any module-level functions (Default, Emit, Shutdown).
// Subsequent calls have no effect once the default instance is created.
func Configure(opts ...Option) {
	defaultOptMu.Lock()
	defaultOptions = opts
	defaultOptMu.Unlock()
}

// WithLogger sets the zap logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPolicy sets the shutdown policy. Default is PolicyDrain.
func WithPolicy(p Policy) Option {
	return func(d *Dispatcher) {
		d.policy = p
	}
}

// WithFailureHandler sets a callback invoked once when a handler panic
// terminates the dispatch loop.
func WithFailureHandler(fn FailureHandler) Option {
	return func(d *Dispatcher) {
		d.onFailure = fn
	}
}

// WithObserver attaches an observer at construction time, before any
// invocation can run.
func WithObserver(fn TraceCallback) Option {
	return func(d *Dispatcher) {
		d.observers = append(d.observers, &Observer{callback: fn, dispatcher: d, active: true})
	}
}
