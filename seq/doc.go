// Package seq provides lazy pull iterators that can feed a flow.
//
// A Seq creates a fresh Iterator each time it is walked, so the same Seq can
// be bound to IN for many runs:
//
//	nums := seq.Take(seq.Count(1), 100)
//	res, err := f.Call(ctx, nums)
//
// Iterator errors end the run that is reading them.
package seq
