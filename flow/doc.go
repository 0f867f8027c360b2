// Package flow assembles data-processing pipelines out of small stages and
// runs them in a single synchronous pass.
//
// A pipeline is built from five stage kinds:
//
//   - Source: owns the input sequence
//   - Pipe: an immutable chain of map, filter, flat-map and branch operations
//   - Sink: a terminal that calls a function for its side effect
//   - Fold: a terminal that accumulates one result per run
//   - Branch: forwards every item to a secondary target as well as downstream
//
// Stages are combined with three operators whose legal operand pairs are
// fixed by a table: Chain extends a pipeline, Attach adds a filter predicate
// and Terminate closes it off with a sink. Plain Go functions, one-element
// Sets, []any sequences and Tuples are coerced into stages where a stage is
// expected.
//
// Placeholders (Get, Put, Args, Pick, On, Out and the implicit IN and OUT)
// are resolved from bindings each time a Flow runs, so one graph can be
// reused with different inputs and functions.
//
// # Usage
//
//	f, err := flow.New(
//	    flow.Map(square),
//	    flow.Set{isOdd},
//	    []any{flow.Out("total", flow.Sum[int]())},
//	    flow.NewSink(func(n int) { fmt.Println(n) }),
//	)
//	res, err := f.Call(ctx, []int{1, 2, 3, 4})
//	total, _ := res.Get("total")
//
// OpenPipe compiles a Pipe into a per-item function instead:
//
//	op, err := flow.Open(flow.Get("F"), flow.Set{isOdd})
//	fn, err := op.Fn(flow.Bind("F", square))
//	out, err := fn(3) // []any{9}
package flow
