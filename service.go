package herald

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	defaultDispatcher *Dispatcher
	defaultOnce       sync.Once
)

// Dispatcher owns the handler registry, the invocation queue and the single
// worker goroutine that drains it.
type Dispatcher struct {
	// mu guards registry, queue, observers, stopping and err.
	mu        sync.Mutex
	registry  map[Signal]*handler
	queue     *queue
	observers []*Observer
	stopping  bool
	err       *HandlerError

	state atomic.Value // State
	done  chan struct{}

	policy    Policy
	logger    *zap.Logger
	onFailure FailureHandler

	emitted   atomic.Uint64
	executed  atomic.Uint64
	abandoned atomic.Uint64
}

// New creates a Dispatcher and starts its worker.
// If no options are provided, the dispatcher drains on shutdown and logs nothing.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: make(map[Signal]*handler),
		done:     make(chan struct{}),
		policy:   PolicyDrain,
		logger:   zap.NewNop(),
	}
	d.queue = newQueue(&d.mu)
	d.state.Store(StateRunning)
	for _, opt := range opts {
		opt(d)
	}

	go d.run()

	return d
}

// Default returns the default Dispatcher, creating it if necessary.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultOptMu.Lock()
		opts := defaultOptions
		defaultOptMu.Unlock()
		defaultDispatcher = New(opts...)
	})
	return defaultDispatcher
}

// register stores h as the handler for signal, replacing any previous one.
// Registration after shutdown is accepted; the handler never runs.
func (d *Dispatcher) register(signal Signal, h *handler) {
	d.mu.Lock()
	_, replaced := d.registry[signal]
	d.registry[signal] = h
	d.mu.Unlock()

	d.logger.Debug("handler registered",
		zap.String("signal", string(signal)),
		zap.Int("arity", len(h.params)),
		zap.Bool("replaced", replaced))
}

// lookup returns the handler for signal. A miss never creates an entry.
// Must be called while holding d.mu.
func (d *Dispatcher) lookup(signal Signal) (*handler, bool) {
	h, ok := d.registry[signal]
	return h, ok
}

// Handlers returns the registered signals in sorted order.
func (d *Dispatcher) Handlers() []Signal {
	d.mu.Lock()
	signals := make([]Signal, 0, len(d.registry))
	for signal := range d.registry {
		signals = append(signals, signal)
	}
	d.mu.Unlock()

	slices.Sort(signals)
	return signals
}

// Emit binds args to the handler for signal and queues the invocation for
// the worker. It returns without waiting for the handler to run.
//
// Emit fails with ErrStopped after shutdown was requested, with
// ErrUnregisteredEvent when no handler is hooked, and with a *SignatureError
// when args do not match the handler's parameters. A failed Emit has no side
// effects.
func (d *Dispatcher) Emit(signal Signal, args ...any) error {
	inv := newInvocation(signal, nil)

	d.mu.Lock()
	if d.stopping {
		d.mu.Unlock()
		inv.release()
		return ErrStopped
	}

	h, ok := d.lookup(signal)
	if !ok {
		d.mu.Unlock()
		inv.release()
		return fmt.Errorf("%w: %q", ErrUnregisteredEvent, signal)
	}

	if !h.match(args) {
		d.mu.Unlock()
		inv.release()
		return &SignatureError{Signal: signal, Want: h.params, Got: typesOf(args)}
	}

	inv.thunk = h.bind(args)
	id := inv.id
	d.queue.push(inv)
	d.emitted.Add(1)
	d.mu.Unlock()

	d.logger.Debug("invocation queued",
		zap.String("signal", string(signal)),
		zap.String("invocation_id", id))

	return nil
}

// Emit dispatches a signal on the default instance.
func Emit(signal Signal, args ...any) error {
	return Default().Emit(signal, args...)
}

// State returns the worker's current lifecycle state.
func (d *Dispatcher) State() State {
	return d.state.Load().(State) //nolint:errcheck // always a State
}

// Stats returns runtime metrics for the Dispatcher.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Stats{
		State:      d.State(),
		QueueDepth: d.queue.len(),
		Handlers:   len(d.registry),
		Emitted:    d.emitted.Load(),
		Executed:   d.executed.Load(),
		Abandoned:  d.abandoned.Load(),
	}
}

// Shutdown stops the default instance and waits for its worker.
func Shutdown(ctx context.Context) error {
	return Default().Shutdown(ctx)
}
