package flow

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/logger"
	"github.com/kbukum/typedflow/observability"
)

// Flow is an assembled pipeline, possibly with open slots. A Flow never
// changes after New, so one Flow may run many times, concurrently, with
// different bindings.
type Flow struct {
	stage   Stage
	vars    []string
	outputs []string
	opts    options
}

// New chains the components left to right into a Flow. Each component is
// coerced with ToStage first, so plain functions act as map stages. Illegal
// combinations fail here, before anything runs.
func New(components ...any) (*Flow, error) {
	stage, err := chainAll(components)
	if err != nil {
		return nil, err
	}
	stage = normalize(stage)
	outputs, err := staticOutputs(stage)
	if err != nil {
		return nil, err
	}
	return &Flow{
		stage:   stage,
		vars:    variables(stage),
		outputs: outputs,
		opts:    defaultOptions(),
	}, nil
}

// With returns a copy of f with the options applied.
func (f *Flow) With(opts ...Option) *Flow {
	cp := *f
	for _, opt := range opts {
		opt(&cp.opts)
	}
	return &cp
}

// Kind returns the kind of the assembled graph: KindReady for a complete
// flow, otherwise the kind of the open graph.
func (f *Flow) Kind() Kind { return f.stage.Kind() }

// Stage returns the assembled graph.
func (f *Flow) Stage() Stage { return f.stage }

// Variables lists the slots that must be bound before the flow can run: IN,
// then OUT, then Get names in lexical order.
func (f *Flow) Variables() []string { return slices.Clone(f.vars) }

// Outputs lists the output names known before binding, sorted.
func (f *Flow) Outputs() []string { return slices.Clone(f.outputs) }

// Run binds the slots, compiles fresh consumers and pushes every input item
// through them. It returns the published fold results, or the first error.
// A failed run returns no partial result.
func (f *Flow) Run(ctx context.Context, bindings ...Binding) (res *Result, err error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRun(ctx, f.opts.name, runID)
	log := f.opts.getLogger().WithContext(ctx)

	rc := observability.NewRunContext(f.opts.name, runID, f.opts.metrics, f.opts.tracing)
	ctx, span := rc.Start(ctx, observability.SpanFlowRun)

	var items int64
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, errors.Internal(fmt.Errorf("panic: %v", r))
		}
		rc.End(ctx, span, items, err)
		if err != nil {
			log.Debug("flow run failed", logger.MergeWithDuration(logger.ErrorFields("run", err), rc.Duration()))
			return
		}
		observability.SetSpanAttribute(ctx, observability.AttrOutputs, res.Names())
		log.Debug("flow run completed", logger.MergeWithDuration(logger.Fields(
			logger.FieldItems, items,
			"outputs", res.Names(),
		), rc.Duration()))
	}()

	p, err := resolve(f.stage, bindings)
	if err != nil {
		return nil, err
	}
	if len(p.ignored) > 0 {
		log.Debug("ignoring bindings that match no slot", logger.Fields("bindings", p.ignored))
	}
	log.Debug("flow run started")

	c := newCompiler(f.opts.emptyFold, p.main)
	head, err := c.path(p.main, "main")
	if err != nil {
		return nil, err
	}
	err = each(ctx, p.input, func(item any) error {
		items++
		return head.push(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	if err := head.close(ctx); err != nil {
		return nil, err
	}
	return &Result{values: c.results()}, nil
}

// Call runs the flow with input bound to IN.
func (f *Flow) Call(ctx context.Context, input any, bindings ...Binding) (*Result, error) {
	return f.Run(ctx, append([]Binding{In(input)}, bindings...)...)
}

// Result holds the outputs of one run.
type Result struct {
	values map[string]any
}

// Get returns the named output.
func (r *Result) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the output names, sorted.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of outputs.
func (r *Result) Len() int { return len(r.values) }

// Value returns the only output. It fails when the run produced none or
// several.
func (r *Result) Value() (any, error) {
	if len(r.values) != 1 {
		return nil, errors.Validation(fmt.Sprintf("result has %d outputs, want exactly one", len(r.values))).
			WithDetail("outputs", r.Names())
	}
	for _, v := range r.values {
		return v, nil
	}
	return nil, nil
}

// Record returns the outputs as a record.
func (r *Result) Record() Record {
	return Record(r.values).Clone()
}

// Output reads a named output as T.
func Output[T any](r *Result, name string) (T, error) {
	var zero T
	v, ok := r.values[name]
	if !ok {
		return zero, errors.NotFound("output", name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Validation(fmt.Sprintf("output %q is %T, not %T", name, v, zero))
	}
	return t, nil
}
