package herald

// Event is a typed registration token for a signal whose handler takes a
// single argument of type T. Hooking and emitting through the same token
// cannot produce a signature mismatch; Emit still reports one if another
// caller replaced the handler with a different signature.
//
// Use a struct for T when an event carries several values:
//
//	type Moved struct{ X, Y int }
//	moved := herald.NewEvent[Moved]("cursor.moved")
//	moved.Hook(d, func(m Moved) { ... })
//	moved.Emit(d, Moved{X: 1, Y: 2})
type Event[T any] struct {
	signal Signal
}

// NewEvent creates a typed token for the named signal.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{signal: Signal(name)}
}

// Signal returns the signal this token routes to.
func (e Event[T]) Signal() Signal { return e.signal }

// Hook registers fn as the handler for the token's signal on d.
func (e Event[T]) Hook(d *Dispatcher, fn func(T)) {
	Hook1(d, e.signal, fn)
}

// Emit queues v for the token's handler on d.
func (e Event[T]) Emit(d *Dispatcher, v T) error {
	return d.Emit(e.signal, v)
}
