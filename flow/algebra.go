package flow

import (
	"fmt"

	"github.com/kbukum/typedflow/errors"
)

// Op is a composition operator.
type Op int

const (
	// OpChain extends a pipeline with a transform or a terminal.
	OpChain Op = iota + 1
	// OpFilter attaches a predicate.
	OpFilter
	// OpTerminate closes a pipeline with a sink.
	OpTerminate
)

// String returns the operator name used in composition errors.
func (o Op) String() string {
	switch o {
	case OpChain:
		return "chain"
	case OpFilter:
		return "filter"
	case OpTerminate:
		return "terminate"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

type rule struct {
	lhs Kind
	op  Op
	rhs Kind
}

// legality lists every operand pair an operator accepts and the kind it
// produces. Folds count as sinks and branches as pipes.
var legality = map[rule]Kind{
	{KindSource, OpChain, KindPipe}: KindSource,
	{KindSource, OpChain, KindFunc}: KindSource,
	{KindSource, OpChain, KindSink}: KindReady,
	{KindPipe, OpChain, KindPipe}:   KindPipe,
	{KindPipe, OpChain, KindFunc}:   KindPipe,
	{KindPipe, OpChain, KindSink}:   KindSink,
	{KindFunc, OpChain, KindPipe}:   KindPipe,
	{KindFunc, OpChain, KindSink}:   KindSink,

	{KindSource, OpFilter, KindPredicate}: KindSource,
	{KindSource, OpFilter, KindFunc}:      KindSource,
	{KindPipe, OpFilter, KindPredicate}:   KindPipe,
	{KindPipe, OpFilter, KindFunc}:        KindPipe,

	{KindSource, OpTerminate, KindSink}: KindReady,
	{KindSource, OpTerminate, KindFunc}: KindReady,
	{KindPipe, OpTerminate, KindFunc}:   KindSink,
	{KindFunc, OpTerminate, KindSink}:   KindSink,
}

// Legal reports the kind produced by applying op to operands of the given
// kinds. Fold and Branch operands are looked up as Sink and Pipe.
func Legal(op Op, lhs, rhs Kind) (Kind, bool) {
	k, ok := legality[rule{lhs: asOperandKind(lhs), op: op, rhs: asOperandKind(rhs)}]
	return k, ok
}

func asOperandKind(k Kind) Kind {
	switch k {
	case KindFold:
		return KindSink
	case KindBranch:
		return KindPipe
	}
	return k
}

// Compose applies op to two components. Illegal pairs fail with a
// COMPOSITION_TYPE error naming the operator and both operand kinds as
// given. Operands are never modified.
func Compose(op Op, lhs, rhs any) (Stage, error) {
	l, err := classify(lhs, op, false)
	if err != nil {
		return nil, err
	}
	r, err := classify(rhs, op, true)
	if err != nil {
		return nil, err
	}
	result, ok := legality[rule{lhs: l.kind, op: op, rhs: r.kind}]
	if !ok {
		return nil, errors.CompositionType(op.String(), l.given.String(), r.given.String())
	}
	return combine(op, l, r, result)
}

// Chain composes lhs followed by rhs.
func Chain(lhs, rhs any) (Stage, error) { return Compose(OpChain, lhs, rhs) }

// Attach adds a filter predicate, a function or a Set{pred}, to lhs.
func Attach(lhs, pred any) (Stage, error) { return Compose(OpFilter, lhs, pred) }

// Terminate closes lhs with a sink, or with a function used as one.
func Terminate(lhs, rhs any) (Stage, error) { return Compose(OpTerminate, lhs, rhs) }

// operand is a component classified for a legality lookup.
type operand struct {
	kind  Kind  // kind used in the table
	given Kind  // kind reported in errors
	stage Stage // normalized stage, nil for functions
	fn    any
}

func classify(v any, op Op, rhs bool) (operand, error) {
	switch x := v.(type) {
	case Set:
		if op == OpFilter && rhs {
			pred, err := x.predicate()
			if err != nil {
				return operand{}, err
			}
			return operand{kind: KindPredicate, given: KindPredicate, fn: pred}, nil
		}
	case Stage:
		if err := x.err(); err != nil {
			return operand{}, err
		}
		n := normalize(x)
		return operand{kind: n.Kind(), given: x.Kind(), stage: n}, nil
	}
	if isFunc(v) {
		return operand{kind: KindFunc, given: KindFunc, fn: v}, nil
	}
	s, err := ToStage(v)
	if err != nil {
		return operand{}, err
	}
	n := normalize(s)
	return operand{kind: n.Kind(), given: s.Kind(), stage: n}, nil
}

// pipe returns the operand as a pipe. Functions become a map, or a filter
// when attached with OpFilter.
func (o operand) pipe(op Op) (*Pipe, error) {
	var p *Pipe
	switch {
	case o.stage != nil:
		return o.stage.(*Pipe), nil
	case o.kind == KindPredicate || op == OpFilter:
		p = Filter(o.fn)
	default:
		p = Map(o.fn)
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// sink returns the operand as a sink. Functions become a plain sink.
func (o operand) sink() (*Sink, error) {
	if o.stage != nil {
		return o.stage.(*Sink), nil
	}
	s := NewSink(o.fn)
	if err := s.err(); err != nil {
		return nil, err
	}
	return s, nil
}

func combine(op Op, l, r operand, result Kind) (Stage, error) {
	switch result {
	case KindSource:
		src := l.stage.(*Source)
		tail, err := r.pipe(op)
		if err != nil {
			return nil, err
		}
		return &Source{input: src.input, pipe: src.pipe.then(tail)}, nil
	case KindPipe:
		head, err := l.pipe(OpChain)
		if err != nil {
			return nil, err
		}
		tail, err := r.pipe(op)
		if err != nil {
			return nil, err
		}
		return head.then(tail), nil
	case KindSink:
		head, err := l.pipe(OpChain)
		if err != nil {
			return nil, err
		}
		sink, err := r.sink()
		if err != nil {
			return nil, err
		}
		return &Sink{pipe: head.then(sink.pipe), term: sink.term}, nil
	case KindReady:
		sink, err := r.sink()
		if err != nil {
			return nil, err
		}
		return &Ready{source: l.stage.(*Source), sink: sink}, nil
	}
	return nil, errors.Internal(fmt.Errorf("no combination for %s", result))
}
