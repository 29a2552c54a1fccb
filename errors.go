package herald

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for the herald package.
var (
	// ErrUnregisteredEvent is returned by Emit when no handler is hooked to the signal.
	ErrUnregisteredEvent = errors.New("herald: unregistered event")

	// ErrSignatureMismatch is returned by Emit when the arguments do not match
	// the handler's parameter list.
	ErrSignatureMismatch = errors.New("herald: signature mismatch")

	// ErrStopped is returned by Emit once shutdown was requested or the worker stopped.
	ErrStopped = errors.New("herald: dispatcher stopped")

	// ErrHandlerFailed is the root of every HandlerError.
	ErrHandlerFailed = errors.New("herald: handler failed")

	// ErrInvalidHandler is returned by HookFunc for values that are not
	// non-variadic functions without results.
	ErrInvalidHandler = errors.New("herald: invalid handler")
)

// SignatureError describes an emission whose arguments do not fit the handler.
type SignatureError struct {
	Signal Signal
	Want   []reflect.Type
	Got    []reflect.Type
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("herald: signature mismatch for %q: handler takes (%s), emitted (%s)",
		e.Signal, typeList(e.Want), typeList(e.Got))
}

// Unwrap returns ErrSignatureMismatch.
func (e *SignatureError) Unwrap() error { return ErrSignatureMismatch }

// HandlerError reports a handler that panicked on the worker.
// It terminates the dispatch loop.
type HandlerError struct {
	Signal    Signal
	ID        string
	Recovered any
	Stack     []byte
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("herald: handler for %q (invocation %s) panicked: %v", e.Signal, e.ID, e.Recovered)
}

// Unwrap returns ErrHandlerFailed and, when the handler panicked with an
// error value, that error as well.
func (e *HandlerError) Unwrap() []error {
	if err, ok := e.Recovered.(error); ok {
		return []error{ErrHandlerFailed, err}
	}
	return []error{ErrHandlerFailed}
}

func typeList(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			names[i] = "nil"
			continue
		}
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
