// Package herald provides an in-process event dispatcher with a single
// background worker.
//
// At its core, herald offers three operations: Hook a callback to a named
// signal, Emit that signal with arguments, and Shutdown the dispatcher.
// Emission only queues work; a single worker goroutine executes queued
// invocations one at a time, in the order their emissions were enqueued.
//
// Each signal has at most one handler. Hooking a signal again replaces the
// previous handler. Callback argument types are recorded at registration and
// checked at every emission, so a mismatched Emit fails immediately instead
// of failing later on the worker.
//
// Quick example:
//
//	d := herald.New()
//
//	herald.Hook1(d, "greet", func(name string) {
//	    fmt.Println("hello,", name)
//	})
//
//	if err := d.Emit("greet", "world"); err != nil {
//	    // ErrUnregisteredEvent, ErrSignatureMismatch or ErrStopped
//	}
//
//	err := d.Shutdown(context.Background()) // drain pending invocations
//
// Typed tokens remove the runtime check entirely:
//
//	greet := herald.NewEvent[string]("greet")
//	greet.Hook(d, func(name string) { ... })
//	greet.Emit(d, "world")
package herald

import "fmt"

// Signal identifies an event. Signals are opaque keys into the registry.
type Signal string

// State is the lifecycle state of the dispatcher's worker.
type State string

const (
	StateRunning   State = "RUNNING"
	StateAwaiting  State = "AWAITING_WORK"
	StateExecuting State = "EXECUTING"
	StateStopped   State = "STOPPED"
)

// Policy decides what happens to queued invocations once shutdown is requested.
type Policy int

const (
	// PolicyDrain executes every invocation already queued, then stops.
	PolicyDrain Policy = iota

	// PolicyAbandon stops after the invocation in progress (if any) and
	// discards the rest of the queue.
	PolicyAbandon
)

// String returns the lowercase policy name.
func (p Policy) String() string {
	switch p {
	case PolicyDrain:
		return "drain"
	case PolicyAbandon:
		return "abandon"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts "drain" or "abandon" into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "drain", "":
		return PolicyDrain, nil
	case "abandon":
		return PolicyAbandon, nil
	}
	return PolicyDrain, fmt.Errorf("herald: unknown shutdown policy %q", s)
}

// Stats provides runtime metrics for a Dispatcher.
type Stats struct {
	// State is the worker's current lifecycle state.
	State State

	// QueueDepth is the number of invocations waiting to execute.
	QueueDepth int

	// Handlers is the number of registered signals.
	Handlers int

	// Emitted counts invocations accepted by Emit.
	Emitted uint64

	// Executed counts invocations the worker ran, including a failed one.
	Executed uint64

	// Abandoned counts queued invocations discarded without running.
	Abandoned uint64
}
