package flow

import (
	"context"
	"iter"
	"reflect"

	"github.com/kbukum/typedflow/errors"
)

// Iterable is an input that produces items on demand. A non-nil error ends
// the run with that error.
type Iterable interface {
	Items(ctx context.Context) iter.Seq2[any, error]
}

// isIterable reports whether each can walk v.
func isIterable(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case Iterable, []any, Values:
		return true
	}
	t := reflect.TypeOf(v)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	case reflect.Chan:
		return t.ChanDir()&reflect.RecvDir != 0
	case reflect.Func:
		return t.CanSeq() || t.CanSeq2()
	}
	return false
}

// each calls fn with every item of v, checking ctx between items. It stops at
// the first error.
func each(ctx context.Context, v any, fn func(any) error) error {
	visit := func(item any) error {
		if err := ctx.Err(); err != nil {
			return errors.RunCancelled(err)
		}
		return fn(item)
	}
	switch x := v.(type) {
	case Iterable:
		for item, err := range x.Items(ctx) {
			if err != nil {
				return err
			}
			if err := visit(item); err != nil {
				return err
			}
		}
		return nil
	case []any:
		return eachSlice(x, visit)
	case Values:
		return eachSlice(x, visit)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if err := visit(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Chan:
		return eachChan(ctx, rv, visit)
	case reflect.Func:
		t := rv.Type()
		if t.CanSeq() {
			for item := range rv.Seq() {
				if err := visit(item.Interface()); err != nil {
					return err
				}
			}
			return nil
		}
		if t.CanSeq2() {
			errSecond := t.In(0).In(1) == errorType
			for k, val := range rv.Seq2() {
				if errSecond {
					if err := asError(val); err != nil {
						return err
					}
					if err := visit(k.Interface()); err != nil {
						return err
					}
					continue
				}
				if err := visit(Values{k.Interface(), val.Interface()}); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return errors.InvalidBinding(VarIn, "value is not iterable")
}

func eachSlice(items []any, visit func(any) error) error {
	for _, item := range items {
		if err := visit(item); err != nil {
			return err
		}
	}
	return nil
}

func eachChan(ctx context.Context, ch reflect.Value, visit func(any) error) error {
	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: ch},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	}
	for {
		chosen, item, ok := reflect.Select(cases)
		if chosen == 1 {
			return errors.RunCancelled(ctx.Err())
		}
		if !ok {
			return nil
		}
		if err := visit(item.Interface()); err != nil {
			return err
		}
	}
}
