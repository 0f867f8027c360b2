package flow

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var errorType = reflect.TypeFor[error]()

// callable adapts an arbitrary Go function so the engine can call it with
// untyped items. The function's signature is checked once, when the stage is
// built.
type callable struct {
	name string
	fn   reflect.Value
	typ  reflect.Type
	fast func(args []any) (any, bool, error)
}

func newCallable(fn any) (*callable, error) {
	if fn == nil {
		return nil, fmt.Errorf("function is nil")
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%T is not a function", fn)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("function is nil")
	}
	t := v.Type()
	switch t.NumOut() {
	case 0, 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("second result of %s must be error", t)
		}
	default:
		return nil, fmt.Errorf("%s returns too many results", t)
	}
	return &callable{name: funcName(v), fn: v, typ: t, fast: fastPath(fn)}, nil
}

// fastPath avoids reflection for the untyped signatures the package itself
// uses.
func fastPath(fn any) func([]any) (any, bool, error) {
	switch f := fn.(type) {
	case func(any) any:
		return func(args []any) (any, bool, error) {
			if len(args) != 1 {
				return nil, false, nil
			}
			return f(args[0]), true, nil
		}
	case func(any) (any, error):
		return func(args []any) (any, bool, error) {
			if len(args) != 1 {
				return nil, false, nil
			}
			out, err := f(args[0])
			return out, true, err
		}
	case func(any) bool:
		return func(args []any) (any, bool, error) {
			if len(args) != 1 {
				return nil, false, nil
			}
			return f(args[0]), true, nil
		}
	case func(any, any) any:
		return func(args []any) (any, bool, error) {
			if len(args) != 2 {
				return nil, false, nil
			}
			return f(args[0], args[1]), true, nil
		}
	}
	return nil
}

// call invokes the function with args. A nil argument is passed as the zero
// value of its parameter type. A trailing error result is returned as the
// call's error.
func (c *callable) call(args ...any) (any, error) {
	if c.fast != nil {
		if out, ok, err := c.fast(args); ok {
			return out, err
		}
	}
	in, err := c.prepare(args)
	if err != nil {
		return nil, err
	}
	return c.unpack(c.fn.Call(in))
}

func (c *callable) prepare(args []any) ([]reflect.Value, error) {
	n := c.typ.NumIn()
	if c.typ.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%s takes at least %d arguments, got %d", c.name, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", c.name, n, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if c.typ.IsVariadic() && i >= n-1 {
			pt = c.typ.In(n - 1).Elem()
		} else {
			pt = c.typ.In(i)
		}
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("%s: argument %d: cannot use %T as %s", c.name, i+1, a, pt)
		}
		in[i] = av
	}
	return in, nil
}

func (c *callable) unpack(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if c.typ.Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	}
	return out[0].Interface(), asError(out[1])
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

// callItem calls the function with one item. A Values item is spread
// across the parameters of a function taking more than one.
func (c *callable) callItem(item any) (any, error) {
	if vals, ok := item.(Values); ok && !c.typ.IsVariadic() && c.typ.NumIn() > 1 {
		return c.call(vals...)
	}
	return c.call(item)
}

// arity returns the number of fixed parameters.
func (c *callable) arity() int {
	if c.typ.IsVariadic() {
		return c.typ.NumIn() - 1
	}
	return c.typ.NumIn()
}

// predicate calls the function and requires a bool result.
func (c *callable) predicate(args []any) (bool, error) {
	out, err := c.invoke(args)
	if err != nil {
		return false, err
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%s returned %T, want bool", c.name, out)
	}
	return keep, nil
}

// invoke calls the function with prepared arguments: the spread Args
// fields, or a single item.
func (c *callable) invoke(args []any) (any, error) {
	if len(args) == 1 {
		return c.callItem(args[0])
	}
	return c.call(args...)
}

// funcName returns "pkg.Func" for named functions and "pkg.Outer.func1" for
// closures.
func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return v.Type().String()
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
