package herald

import (
	"time"

	"go.uber.org/zap"
)

// Trace describes one executed invocation.
type Trace struct {
	// ID is the invocation's unique identifier.
	ID string

	// Signal is the emitted signal.
	Signal Signal

	// Enqueued is when Emit queued the invocation.
	Enqueued time.Time

	// Started is when the worker began running it.
	Started time.Time

	// Duration is how long the handler ran.
	Duration time.Duration

	// Err is a *HandlerError if the handler panicked, nil otherwise.
	Err error
}

// Wait returns the time the invocation spent queued.
func (t Trace) Wait() time.Duration {
	return t.Started.Sub(t.Enqueued)
}

// TraceCallback receives a Trace after every executed invocation.
// It runs on the worker goroutine, so slow callbacks delay the queue.
type TraceCallback func(Trace)

// Observer is a subscription to execution traces.
// Call Close() to stop receiving them.
type Observer struct {
	callback   TraceCallback
	dispatcher *Dispatcher
	active     bool // guarded by dispatcher.mu
}

// Observe registers a callback that sees every executed invocation,
// whatever its signal. Observers are not handlers: any number may be active
// and they cannot affect execution.
func (d *Dispatcher) Observe(fn TraceCallback) *Observer {
	d.mu.Lock()
	defer d.mu.Unlock()

	o := &Observer{callback: fn, dispatcher: d, active: true}

	// Copy on write so the worker can use its snapshot without the lock.
	observers := make([]*Observer, 0, len(d.observers)+1)
	observers = append(observers, d.observers...)
	d.observers = append(observers, o)

	return o
}

// Close removes the observer. Safe to call multiple times.
func (o *Observer) Close() {
	d := o.dispatcher
	d.mu.Lock()
	defer d.mu.Unlock()

	if !o.active {
		return
	}
	o.active = false

	observers := make([]*Observer, 0, len(d.observers))
	for _, obs := range d.observers {
		if obs != o {
			observers = append(observers, obs)
		}
	}
	d.observers = observers
}

// notify delivers a trace to a snapshot of observers.
// A panicking observer is logged and skipped.
func (d *Dispatcher) notify(observers []*Observer, trace Trace) {
	for _, o := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					d.logger.Warn("observer panicked",
						zap.String("signal", string(trace.Signal)),
						zap.Any("recovered", r))
				}
			}()
			o.callback(trace)
		}()
	}
}
