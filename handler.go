package herald

import (
	"fmt"
	"reflect"
)

// handler is a callback with its argument list erased.
// params is the type tag checked at every emission; bind is only called with
// arguments that already passed that check.
type handler struct {
	params []reflect.Type
	bind   func(args []any) func()
}

// match reports whether args fit the handler's parameter list.
func (h *handler) match(args []any) bool {
	if len(args) != len(h.params) {
		return false
	}
	for i, p := range h.params {
		if !assignable(args[i], p) {
			return false
		}
	}
	return true
}

// assignable applies type-assertion rules: identical dynamic type for a
// concrete parameter, implementation for an interface parameter, and untyped
// nil for any nilable parameter.
func assignable(arg any, p reflect.Type) bool {
	if arg == nil {
		return nilable(p)
	}
	t := reflect.TypeOf(arg)
	if p.Kind() == reflect.Interface {
		return t.Implements(p)
	}
	return t == p
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// typesOf returns the dynamic types of args; nil entries stay nil.
func typesOf(args []any) []reflect.Type {
	types := make([]reflect.Type, len(args))
	for i, a := range args {
		if a != nil {
			types[i] = reflect.TypeOf(a)
		}
	}
	return types
}

// as converts a matched argument; untyped nil becomes the zero value.
func as[T any](v any) T {
	t, _ := v.(T) //nolint:errcheck // matched before binding
	return t
}

// Hook0 registers a callback without arguments for the signal, replacing any
// previous handler.
func Hook0(d *Dispatcher, signal Signal, fn func()) {
	d.register(signal, &handler{
		bind: func(_ []any) func() { return fn },
	})
}

// Hook1 registers a one-argument callback for the signal, replacing any
// previous handler.
func Hook1[A any](d *Dispatcher, signal Signal, fn func(A)) {
	d.register(signal, &handler{
		params: []reflect.Type{reflect.TypeFor[A]()},
		bind: func(args []any) func() {
			a := as[A](args[0])
			return func() { fn(a) }
		},
	})
}

// Hook2 registers a two-argument callback for the signal, replacing any
// previous handler.
func Hook2[A, B any](d *Dispatcher, signal Signal, fn func(A, B)) {
	d.register(signal, &handler{
		params: []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()},
		bind: func(args []any) func() {
			a, b := as[A](args[0]), as[B](args[1])
			return func() { fn(a, b) }
		},
	})
}

// Hook3 registers a three-argument callback for the signal, replacing any
// previous handler.
func Hook3[A, B, C any](d *Dispatcher, signal Signal, fn func(A, B, C)) {
	d.register(signal, &handler{
		params: []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()},
		bind: func(args []any) func() {
			a, b, c := as[A](args[0]), as[B](args[1]), as[C](args[2])
			return func() { fn(a, b, c) }
		},
	})
}

// HookFunc registers fn, a function of any arity without results, for the
// signal. Variadic functions are rejected with ErrInvalidHandler.
//
// Example:
//
//	err := herald.HookFunc(d, "move", func(x, y, z, w float64) { ... })
func HookFunc(d *Dispatcher, signal Signal, fn any) error {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("%w: %T is not a function", ErrInvalidHandler, fn)
	}
	t := v.Type()
	if t.IsVariadic() || t.NumOut() != 0 {
		return fmt.Errorf("%w: %s must be non-variadic with no results", ErrInvalidHandler, t)
	}

	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}

	d.register(signal, &handler{
		params: params,
		bind: func(args []any) func() {
			in := make([]reflect.Value, len(args))
			for i, a := range args {
				if a == nil {
					in[i] = reflect.Zero(params[i])
				} else {
					in[i] = reflect.ValueOf(a)
				}
			}
			return func() { v.Call(in) }
		},
	})
	return nil
}
