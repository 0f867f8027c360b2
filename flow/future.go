package flow

import "fmt"

// future is a write-once cell holding a fold's result for one run.
type future struct {
	value any
	done  bool
}

func (f *future) set(v any) error {
	if f.done {
		return fmt.Errorf("result already set")
	}
	f.value, f.done = v, true
	return nil
}

func (f *future) get() (any, bool) { return f.value, f.done }
