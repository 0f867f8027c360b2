package flow

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/typedflow/errors"
)

func square(n int) int         { return n * n }
func add(a, b int) int         { return a + b }
func odd(n int) bool           { return n%2 != 0 }
func even(n int) bool          { return n%2 == 0 }
func addN(n int) func(int) int { return func(x int) int { return x + n } }
func mulN(n int) func(int) int { return func(x int) int { return x * n } }

func symApply(f string) func(string) string {
	return func(x string) string { return fmt.Sprintf("%s(%s)", f, x) }
}

func symAdd(l, r string) string { return fmt.Sprintf("(%s + %s)", l, r) }

// appender returns a sink that records every item it receives.
func appender[T any](dst *[]T) *Sink {
	return NewSink(func(x T) { *dst = append(*dst, x) })
}

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func mustFlow(t *testing.T, components ...any) *Flow {
	t.Helper()
	f, err := New(components...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func mustRun(t *testing.T, f *Flow, bindings ...Binding) *Result {
	t.Helper()
	res, err := f.Run(context.Background(), bindings...)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func wantCode(t *testing.T, err error, code errors.ErrorCode) *errors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s: %v", code, appErr.Code, err)
	}
	return appErr
}

func diff(t *testing.T, want, got any) {
	t.Helper()
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}
