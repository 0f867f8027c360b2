package flow

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/logger"
	"github.com/kbukum/typedflow/observability"
)

// OpenPipe turns a Pipe into a function from one input to the items that
// reach the end of the pipe.
type OpenPipe struct {
	pipe *Pipe
	vars []string
	opts options
}

// Open chains the components into a pipe. The result must be a Pipe: a
// leading Source or trailing Sink is rejected.
func Open(components ...any) (*OpenPipe, error) {
	stage, err := chainAll(components)
	if err != nil {
		return nil, err
	}
	p, ok := normalize(stage).(*Pipe)
	if !ok {
		return nil, errors.InvalidStage("open pipe", fmt.Sprintf("want a pipe, got %s", stage.Kind()))
	}
	if _, err := staticOutputs(p); err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	collectGets(p.ops, set)
	return &OpenPipe{pipe: p, vars: sortVariables(set), opts: defaultOptions()}, nil
}

// With returns a copy of o with the options applied.
func (o *OpenPipe) With(opts ...Option) *OpenPipe {
	cp := *o
	for _, opt := range opts {
		opt(&cp.opts)
	}
	return &cp
}

// Variables lists the Get slots that must be bound, sorted.
func (o *OpenPipe) Variables() []string { return slices.Clone(o.vars) }

// Fn binds the slots and returns the compiled function. A single argument is
// pushed as the item; several are pushed together as Values. Every call
// starts from fresh state, so calls do not affect one another. Folds inside
// branches are evaluated for their side effects and their results dropped.
func (o *OpenPipe) Fn(bindings ...Binding) (func(args ...any) ([]any, error), error) {
	r := newResolver(bindings)
	ops, err := r.ops(o.pipe.ops)
	if err != nil {
		return nil, err
	}
	if len(r.unbound) > 0 {
		return nil, errors.UnboundVariables(sortVariables(r.unbound))
	}
	main := &path{ops: ops, term: terminal{kind: termCollect}}
	if _, err := newCompiler(EmptyFoldAbsent, main).path(main, "main"); err != nil {
		return nil, err
	}
	log := o.opts.getLogger()
	for name := range r.binds {
		if !r.used[name] {
			log.Debug("ignoring binding that matches no slot", logger.Fields(logger.FieldVariable, name))
		}
	}

	return func(args ...any) (out []any, err error) {
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, errors.Internal(fmt.Errorf("panic: %v", r))
			}
		}()
		if len(args) == 0 {
			return nil, errors.Validation("open pipe needs at least one argument")
		}
		item := args[0]
		if len(args) > 1 {
			item = Values(slices.Clone(args))
		}
		ctx := context.Background()
		if o.opts.tracing {
			var span trace.Span
			ctx, span = observability.StartSpan(ctx, observability.SpanFlowCall)
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrFlowName, o.opts.name)
		}
		c := newCompiler(EmptyFoldAbsent, main)
		head, err := c.path(main, "main")
		if err != nil {
			return nil, err
		}
		if err := head.push(ctx, item); err != nil {
			return nil, err
		}
		if err := head.close(ctx); err != nil {
			return nil, err
		}
		return c.collect.items, nil
	}, nil
}

// Call compiles the pipe without bindings and applies it to args.
func (o *OpenPipe) Call(args ...any) ([]any, error) {
	fn, err := o.Fn()
	if err != nil {
		return nil, err
	}
	return fn(args...)
}
