package flow

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/kbukum/typedflow/errors"
)

// plan is a graph with every slot filled, ready to compile.
type plan struct {
	input any
	main  *path
	// ignored lists bindings that matched no slot.
	ignored []string
}

// shape splits a composed stage into its input, ops and terminal. Missing
// parts are nil.
func shape(s Stage) (input any, ops []op, term *terminal) {
	switch x := s.(type) {
	case *Source:
		return x.input, x.pipe.ops, nil
	case *Pipe:
		return nil, x.ops, nil
	case *Sink:
		t := x.term
		return nil, x.pipe.ops, &t
	case *Ready:
		t := x.sink.term
		return x.source.input, slices.Concat(x.source.pipe.ops, x.sink.pipe.ops), &t
	}
	return nil, nil, nil
}

// resolver fills Get slots from bindings.
type resolver struct {
	binds   map[string]any
	used    map[string]bool
	unbound map[string]bool
	stack   []string
}

func newResolver(bindings []Binding) *resolver {
	r := &resolver{
		binds:   make(map[string]any, len(bindings)),
		used:    make(map[string]bool),
		unbound: make(map[string]bool),
	}
	for _, b := range bindings {
		r.binds[b.Name] = b.Value
	}
	return r
}

func (r *resolver) ops(ops []op) ([]op, error) {
	out := make([]op, 0, len(ops))
	for _, o := range ops {
		switch o.kind {
		case opGet:
			inner, err := r.get(o.names[0])
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		case opBranch:
			sub, err := r.target(o.target)
			if err != nil {
				return nil, err
			}
			o.sub = sub
			out = append(out, o)
		default:
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *resolver) get(name string) ([]op, error) {
	v, ok := r.binds[name]
	if !ok {
		r.unbound[name] = true
		return nil, nil
	}
	r.used[name] = true
	if slices.Contains(r.stack, name) {
		cycle := append(slices.Clone(r.stack), name)
		return nil, errors.InvalidBinding(name, "refers to itself through "+strings.Join(cycle, " -> "))
	}
	p, err := bindPipe(name, v)
	if err != nil {
		return nil, err
	}
	r.stack = append(r.stack, name)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()
	return r.ops(p.ops)
}

func (r *resolver) target(s Stage) (*path, error) {
	switch t := s.(type) {
	case *Pipe:
		ops, err := r.ops(t.ops)
		if err != nil {
			return nil, err
		}
		return &path{ops: ops, term: terminal{kind: termDiscard}}, nil
	case *Sink:
		ops, err := r.ops(t.pipe.ops)
		if err != nil {
			return nil, err
		}
		return &path{ops: ops, term: t.term}, nil
	}
	return nil, errors.InvalidStage("branch", fmt.Sprintf("target must be a pipe or sink, got %s", s.Kind()))
}

// bindPipe coerces the value bound to a Get slot.
func bindPipe(name string, v any) (*Pipe, error) {
	s, err := ToStage(v)
	if err != nil {
		return nil, errors.InvalidBinding(name, "cannot be used as a pipe").WithCause(err)
	}
	p, ok := normalize(s).(*Pipe)
	if !ok {
		return nil, errors.InvalidBinding(name, fmt.Sprintf("want a pipe, got %s", s.Kind()))
	}
	return p, nil
}

// bindInput accepts an iterable or a *Source for IN.
func bindInput(v any) (any, []op, error) {
	if src, ok := v.(*Source); ok {
		if err := src.err(); err != nil {
			return nil, nil, errors.InvalidBinding(VarIn, "invalid source").WithCause(err)
		}
		return src.input, src.pipe.ops, nil
	}
	if !isIterable(v) {
		return nil, nil, errors.InvalidBinding(VarIn, fmt.Sprintf("%T is not iterable", v))
	}
	return v, nil, nil
}

// bindOutput accepts a Sink, a Fold or a function for OUT.
func bindOutput(v any) ([]op, terminal, error) {
	switch x := v.(type) {
	case *Sink:
		if err := x.err(); err != nil {
			return nil, terminal{}, errors.InvalidBinding(VarOut, "invalid sink").WithCause(err)
		}
		return x.pipe.ops, x.term, nil
	case *Fold:
		if err := x.err(); err != nil {
			return nil, terminal{}, errors.InvalidBinding(VarOut, "invalid fold").WithCause(err)
		}
		return nil, x.term, nil
	}
	if isFunc(v) {
		s := NewSink(v)
		if err := s.err(); err != nil {
			return nil, terminal{}, errors.InvalidBinding(VarOut, "invalid sink function").WithCause(err)
		}
		return nil, s.term, nil
	}
	return nil, terminal{}, errors.InvalidBinding(VarOut, fmt.Sprintf("%T is not a sink", v))
}

// resolve fills every slot of stage. Explicit bindings come first: a bound
// IN replaces the input of a leading source and a bound OUT replaces the
// terminal of a trailing sink, keeping the ops chained onto either. Without
// a binding, IN and OUT come from the graph itself. All unbound slots are
// reported together.
func resolve(stage Stage, bindings []Binding) (*plan, error) {
	r := newResolver(bindings)
	input, ops, term := shape(stage)

	var pre, post []op
	if v, ok := r.binds[VarIn]; ok {
		r.used[VarIn] = true
		in, head, err := bindInput(v)
		if err != nil {
			return nil, err
		}
		input, pre = in, head
	} else if input == nil {
		r.unbound[VarIn] = true
	}
	if v, ok := r.binds[VarOut]; ok {
		r.used[VarOut] = true
		tail, t, err := bindOutput(v)
		if err != nil {
			return nil, err
		}
		post, term = tail, &t
	} else if term == nil {
		r.unbound[VarOut] = true
	}

	resolved, err := r.ops(slices.Concat(pre, ops, post))
	if err != nil {
		return nil, err
	}
	if len(r.unbound) > 0 {
		return nil, errors.UnboundVariables(sortVariables(r.unbound))
	}

	p := &plan{input: input, main: &path{ops: resolved, term: *term}}
	for name := range r.binds {
		if !r.used[name] {
			p.ignored = append(p.ignored, name)
		}
	}
	sort.Strings(p.ignored)
	return p, nil
}

// sortVariables orders IN, then OUT, then the remaining names lexically.
func sortVariables(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	rank := func(name string) int {
		switch name {
		case VarIn:
			return 0
		case VarOut:
			return 1
		}
		return 2
	}
	slices.SortFunc(names, func(a, b string) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return names
}

// variables lists the slots a stage leaves open, in reporting order.
func variables(stage Stage) []string {
	set := make(map[string]bool)
	input, ops, term := shape(stage)
	if input == nil {
		set[VarIn] = true
	}
	if term == nil {
		set[VarOut] = true
	}
	collectGets(ops, set)
	return sortVariables(set)
}

func collectGets(ops []op, set map[string]bool) {
	for _, o := range ops {
		switch o.kind {
		case opGet:
			set[o.names[0]] = true
		case opBranch:
			switch t := o.target.(type) {
			case *Pipe:
				collectGets(t.ops, set)
			case *Sink:
				collectGets(t.pipe.ops, set)
			}
		}
	}
}

// staticOutputs checks the output names visible without bindings and
// returns them sorted. Outputs inside bound pipes are checked at run time.
func staticOutputs(stage Stage) ([]string, error) {
	seen := make(map[string]bool)
	var walk func(ops []op, term *terminal, fallback string) error
	walk = func(ops []op, term *terminal, fallback string) error {
		if term != nil && term.publishes() {
			name := term.outputName(fallback)
			if seen[name] {
				return errors.DuplicateOutput(name)
			}
			seen[name] = true
		}
		for _, o := range ops {
			if o.kind != opBranch {
				continue
			}
			var err error
			switch t := o.target.(type) {
			case *Pipe:
				err = walk(t.ops, nil, "branch")
			case *Sink:
				tt := t.term
				err = walk(t.pipe.ops, &tt, "branch")
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
	_, ops, term := shape(stage)
	if err := walk(ops, term, "main"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
