package herald

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// run is the worker goroutine. It executes invocations one at a time until
// shutdown (per the policy) or a handler failure stops it.
func (d *Dispatcher) run() {
	defer close(d.done)
	defer d.state.Store(StateStopped)

	d.logger.Info("dispatcher worker started", zap.Stringer("policy", d.policy))

	for {
		inv, observers := d.next()
		if inv == nil {
			break
		}
		if err := d.execute(inv, observers); err != nil {
			d.fail(err)
			break
		}
	}

	d.logger.Info("dispatcher worker stopped",
		zap.Uint64("executed", d.executed.Load()),
		zap.Uint64("abandoned", d.abandoned.Load()))
}

// next waits for work and pops the head of the queue together with a
// snapshot of the observers. It returns nil when the worker must stop.
func (d *Dispatcher) next() (*invocation, []*Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.queue.len() == 0 && !d.stopping {
		d.state.Store(StateAwaiting)
		d.queue.await(func() bool { return d.stopping })
		d.state.Store(StateRunning)
	}

	if d.stopping && (d.policy == PolicyAbandon || d.queue.len() == 0) {
		d.abandon()
		return nil, nil
	}

	return d.queue.pop(), d.observers
}

// execute runs one invocation to completion. A panic is recovered into the
// returned HandlerError.
func (d *Dispatcher) execute(inv *invocation, observers []*Observer) (failure *HandlerError) {
	d.state.Store(StateExecuting)

	trace := Trace{
		ID:       inv.id,
		Signal:   inv.signal,
		Enqueued: inv.enqueued,
		Started:  time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			failure = &HandlerError{
				Signal:    inv.signal,
				ID:        inv.id,
				Recovered: r,
				Stack:     debug.Stack(),
			}
			trace.Err = failure
		}
		trace.Duration = time.Since(trace.Started)
		d.executed.Add(1)
		d.state.Store(StateRunning)
		inv.release()
		d.notify(observers, trace)
	}()

	inv.thunk()
	return nil
}

// fail records a handler failure, abandons the queue and reports it.
func (d *Dispatcher) fail(err *HandlerError) {
	d.mu.Lock()
	d.err = err
	d.stopping = true
	d.abandon()
	d.mu.Unlock()

	d.logger.Error("handler panicked, dispatcher stopped",
		zap.String("signal", string(err.Signal)),
		zap.String("invocation_id", err.ID),
		zap.Any("recovered", err.Recovered),
		zap.ByteString("stack", err.Stack))

	if d.onFailure != nil {
		func() {
			defer func() {
				_ = recover() //nolint:errcheck // a failing failure handler must not crash the worker
			}()
			d.onFailure(err)
		}()
	}
}

// abandon discards every queued invocation. Must be called while holding d.mu.
func (d *Dispatcher) abandon() {
	rest := d.queue.drain()
	if len(rest) == 0 {
		return
	}
	for _, inv := range rest {
		inv.release()
	}
	d.abandoned.Add(uint64(len(rest)))
	d.logger.Warn("queued invocations abandoned", zap.Int("count", len(rest)))
}

// Stop requests shutdown and wakes the worker without waiting for it.
// New emissions are rejected with ErrStopped from this point on.
// Safe to call multiple times and from multiple goroutines.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopping {
		return
	}
	d.stopping = true
	d.queue.wake()

	d.logger.Info("dispatcher shutdown requested",
		zap.Stringer("policy", d.policy),
		zap.Int("queued", d.queue.len()))
}

// Wait blocks until the worker has stopped or ctx is done.
// It returns the handler failure that stopped the worker, if any.
// Calling Wait from inside a handler blocks until ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return d.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown requests shutdown and waits for the worker to stop.
// Pending invocations run or are discarded according to the policy.
// Safe to call multiple times; later calls return the same result.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.Stop()
	return d.Wait(ctx)
}

// Done returns a channel closed once the worker has stopped.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Err returns the *HandlerError that stopped the worker, or nil.
func (d *Dispatcher) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err == nil {
		return nil
	}
	return d.err
}
