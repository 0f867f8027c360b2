package flow

import (
	"context"
	"fmt"

	"github.com/kbukum/typedflow/errors"
)

// path is a slot-free chain of ops ending in a terminal.
type path struct {
	ops  []op
	term terminal
}

// consumer receives items pushed from upstream. close is called exactly once
// after the last item.
type consumer interface {
	push(ctx context.Context, item any) error
	close(ctx context.Context) error
}

// compiler turns paths into fresh consumers. A compiler is used for a single
// run and owns that run's fold results.
type compiler struct {
	policy  EmptyFoldPolicy
	scope   *scope
	track   bool
	outputs map[string]*future
	collect *collector
}

func newCompiler(policy EmptyFoldPolicy, main *path) *compiler {
	return &compiler{
		policy:  policy,
		scope:   &scope{},
		track:   hasPut(main),
		outputs: make(map[string]*future),
	}
}

func hasPut(p *path) bool {
	for _, o := range p.ops {
		if o.kind == opPut || (o.kind == opBranch && hasPut(o.sub)) {
			return true
		}
	}
	return false
}

// path compiles p from the terminal backwards.
func (c *compiler) path(p *path, fallback string) (consumer, error) {
	next, err := c.terminal(p.term, fallback)
	if err != nil {
		return nil, err
	}
	ops, err := fuseArgs(p.ops)
	if err != nil {
		return nil, err
	}
	for i := len(ops) - 1; i >= 0; i-- {
		if next, err = c.op(ops[i], next); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func (c *compiler) terminal(t terminal, fallback string) (consumer, error) {
	switch t.kind {
	case termSink:
		return &sinkConsumer{fn: t.fn, label: t.label()}, nil
	case termFold:
		name := t.outputName(fallback)
		if _, dup := c.outputs[name]; dup {
			return nil, errors.DuplicateOutput(name)
		}
		out := &future{}
		c.outputs[name] = out
		f := &foldConsumer{fn: t.fn, label: t.label(), name: name, out: out, policy: c.policy}
		if t.hasInitial {
			f.acc, f.seeded = t.initial, true
		}
		return f, nil
	case termCollect:
		c.collect = &collector{items: []any{}}
		return c.collect, nil
	}
	return discard{}, nil
}

func (c *compiler) op(o op, next consumer) (consumer, error) {
	var cons consumer
	switch o.kind {
	case opMap:
		cons = &mapConsumer{fn: o.fn, args: o.args, label: o.label(), next: next}
	case opFilter:
		cons = &filterConsumer{fn: o.fn, args: o.args, label: o.label(), next: next}
	case opFlatMap:
		cons = &flatMapConsumer{fn: o.fn, args: o.args, label: o.label(), next: next}
	case opPick:
		cons = &pickConsumer{names: o.names, label: o.label(), next: next}
	case opOn:
		cons = &onConsumer{fn: o.fn, name: o.names[0], label: o.label(), next: next}
	case opPut:
		return &putConsumer{names: o.names, label: o.label(), scope: c.scope, next: next}, nil
	case opBranch:
		target, err := c.path(o.sub, "branch")
		if err != nil {
			return nil, err
		}
		cons = &branchConsumer{target: target, next: next}
	default:
		return nil, errors.Internal(fmt.Errorf("unresolved %s", o.label()))
	}
	if c.track {
		cons = &tracker{inner: cons, scope: c.scope}
	}
	return cons, nil
}

// fuseArgs folds each Args into the transform that follows it.
func fuseArgs(ops []op) ([]op, error) {
	out := make([]op, 0, len(ops))
	for i := 0; i < len(ops); i++ {
		o := ops[i]
		if o.kind != opArgs {
			out = append(out, o)
			continue
		}
		if i+1 == len(ops) || !ops[i+1].transforms() {
			return nil, errors.InvalidStage(o.label(), "must be followed by a map, filter or flatmap")
		}
		next := ops[i+1]
		next.args = o.names
		out = append(out, next)
		i++
	}
	return out, nil
}

// results returns the resolved fold values by output name. Folds left
// unresolved under the absent policy are omitted.
func (c *compiler) results() map[string]any {
	values := make(map[string]any, len(c.outputs))
	for name, f := range c.outputs {
		if v, ok := f.get(); ok {
			values[name] = v
		}
	}
	return values
}

// fnArgs builds the arguments for a transform: the item itself, or the
// named record fields when an Args precedes it.
func fnArgs(item any, fields []string) ([]any, error) {
	if fields == nil {
		return []any{item}, nil
	}
	rec, err := requireRecord(item)
	if err != nil {
		return nil, err
	}
	return rec.fields(fields)
}

type mapConsumer struct {
	fn    *callable
	args  []string
	label string
	next  consumer
}

func (m *mapConsumer) push(ctx context.Context, item any) error {
	args, err := fnArgs(item, m.args)
	if err != nil {
		return errors.StageFailed(m.label, err)
	}
	out, err := m.fn.invoke(args)
	if err != nil {
		return errors.StageFailed(m.label, err)
	}
	return m.next.push(ctx, out)
}

func (m *mapConsumer) close(ctx context.Context) error { return m.next.close(ctx) }

type filterConsumer struct {
	fn    *callable
	args  []string
	label string
	next  consumer
}

func (f *filterConsumer) push(ctx context.Context, item any) error {
	args, err := fnArgs(item, f.args)
	if err != nil {
		return errors.StageFailed(f.label, err)
	}
	keep, err := f.fn.predicate(args)
	if err != nil {
		return errors.StageFailed(f.label, err)
	}
	if !keep {
		return nil
	}
	return f.next.push(ctx, item)
}

func (f *filterConsumer) close(ctx context.Context) error { return f.next.close(ctx) }

type flatMapConsumer struct {
	fn    *callable
	args  []string
	label string
	next  consumer
}

func (f *flatMapConsumer) push(ctx context.Context, item any) error {
	args, err := fnArgs(item, f.args)
	if err != nil {
		return errors.StageFailed(f.label, err)
	}
	out, err := f.fn.invoke(args)
	if err != nil {
		return errors.StageFailed(f.label, err)
	}
	if !isIterable(out) {
		return errors.StageFailed(f.label, fmt.Errorf("%T is not iterable", out))
	}
	return each(ctx, out, func(v any) error { return f.next.push(ctx, v) })
}

func (f *flatMapConsumer) close(ctx context.Context) error { return f.next.close(ctx) }

type pickConsumer struct {
	names []string
	label string
	next  consumer
}

func (p *pickConsumer) push(ctx context.Context, item any) error {
	rec, err := requireRecord(item)
	if err != nil {
		return errors.StageFailed(p.label, err)
	}
	vals, err := rec.fields(p.names)
	if err != nil {
		return errors.StageFailed(p.label, err)
	}
	if len(vals) == 1 {
		return p.next.push(ctx, vals[0])
	}
	return p.next.push(ctx, Values(vals))
}

func (p *pickConsumer) close(ctx context.Context) error { return p.next.close(ctx) }

type onConsumer struct {
	fn    *callable
	name  string
	label string
	next  consumer
}

func (o *onConsumer) push(ctx context.Context, item any) error {
	rec, err := requireRecord(item)
	if err != nil {
		return errors.StageFailed(o.label, err)
	}
	v, ok := rec[o.name]
	if !ok {
		return errors.StageFailed(o.label, fmt.Errorf("record has no field %q", o.name))
	}
	out, err := o.fn.call(v)
	if err != nil {
		return errors.StageFailed(o.label, err)
	}
	updated := rec.Clone()
	updated[o.name] = out
	return o.next.push(ctx, updated)
}

func (o *onConsumer) close(ctx context.Context) error { return o.next.close(ctx) }

type putConsumer struct {
	names []string
	label string
	scope *scope
	next  consumer
}

func (p *putConsumer) push(ctx context.Context, item any) error {
	if p.scope.rec == nil {
		return errors.StageFailed(p.label, fmt.Errorf("no upstream record"))
	}
	vals, err := spread(item, len(p.names))
	if err != nil {
		return errors.StageFailed(p.label, err)
	}
	rec := p.scope.rec.Clone()
	for i, name := range p.names {
		rec[name] = vals[i]
	}
	return p.next.push(ctx, rec)
}

func (p *putConsumer) close(ctx context.Context) error { return p.next.close(ctx) }

// branchConsumer sends each item to the branch target before the main path.
// Items are shared, not copied.
type branchConsumer struct {
	target consumer
	next   consumer
}

func (b *branchConsumer) push(ctx context.Context, item any) error {
	if err := b.target.push(ctx, item); err != nil {
		return err
	}
	return b.next.push(ctx, item)
}

func (b *branchConsumer) close(ctx context.Context) error {
	if err := b.target.close(ctx); err != nil {
		return err
	}
	return b.next.close(ctx)
}

// tracker records the innermost record on the push path for Put.
type tracker struct {
	inner consumer
	scope *scope
}

func (t *tracker) push(ctx context.Context, item any) error {
	rec, ok := asRecord(item)
	if !ok {
		return t.inner.push(ctx, item)
	}
	prev := t.scope.rec
	t.scope.rec = rec
	err := t.inner.push(ctx, item)
	t.scope.rec = prev
	return err
}

func (t *tracker) close(ctx context.Context) error { return t.inner.close(ctx) }

type sinkConsumer struct {
	fn    *callable
	label string
}

func (s *sinkConsumer) push(_ context.Context, item any) error {
	if _, err := s.fn.callItem(item); err != nil {
		return errors.StageFailed(s.label, err)
	}
	return nil
}

func (s *sinkConsumer) close(context.Context) error { return nil }

type foldConsumer struct {
	fn     *callable
	label  string
	name   string
	acc    any
	seeded bool
	out    *future
	policy EmptyFoldPolicy
}

func (f *foldConsumer) push(_ context.Context, item any) error {
	if !f.seeded {
		f.acc, f.seeded = item, true
		return nil
	}
	acc, err := f.fn.call(f.acc, item)
	if err != nil {
		return errors.StageFailed(f.label, err)
	}
	f.acc = acc
	return nil
}

func (f *foldConsumer) close(context.Context) error {
	if !f.seeded {
		if f.policy == EmptyFoldAbsent {
			return nil
		}
		return errors.EmptyStream(f.name)
	}
	if err := f.out.set(f.acc); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// collector gathers the items reaching the end of an open pipe.
type collector struct {
	items []any
}

func (c *collector) push(_ context.Context, item any) error {
	c.items = append(c.items, item)
	return nil
}

func (c *collector) close(context.Context) error { return nil }

type discard struct{}

func (discard) push(context.Context, any) error { return nil }
func (discard) close(context.Context) error     { return nil }
