package flow

import (
	"fmt"
	"maps"
)

// Record is a named-field item. Put, Args, Pick and On operate on records.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	maps.Copy(out, r)
	return out
}

// Values is a positional tuple item, as produced by Pick with several names
// or spread by Put across several names.
type Values []any

func asRecord(item any) (Record, bool) {
	switch r := item.(type) {
	case Record:
		return r, true
	case map[string]any:
		return Record(r), true
	}
	return nil, false
}

func requireRecord(item any) (Record, error) {
	r, ok := asRecord(item)
	if !ok {
		return nil, fmt.Errorf("item %T is not a record", item)
	}
	return r, nil
}

// fields returns the named fields of r in order.
func (r Record) fields(names []string) ([]any, error) {
	out := make([]any, len(names))
	for i, name := range names {
		v, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("record has no field %q", name)
		}
		out[i] = v
	}
	return out, nil
}

// spread splits an item across n names.
func spread(item any, n int) ([]any, error) {
	if n == 1 {
		return []any{item}, nil
	}
	var vals []any
	switch x := item.(type) {
	case Values:
		vals = x
	case []any:
		vals = x
	default:
		return nil, fmt.Errorf("cannot spread %T across %d names", item, n)
	}
	if len(vals) != n {
		return nil, fmt.Errorf("cannot spread %d values across %d names", len(vals), n)
	}
	return vals, nil
}

// scope tracks the innermost record on the push path so Put can extend it.
// Pushes are depth first and synchronous, so one scope serves a whole run.
type scope struct {
	rec Record
}
