package flow

import (
	"fmt"
	"reflect"

	"github.com/kbukum/typedflow/errors"
)

// Set marks a predicate: Set{pred} used as a stage becomes a filter. It must
// hold exactly one function.
type Set []any

// Tuple groups components into one inline chain, so Tuple{Args("a", "b"), add}
// spreads record fields into add.
type Tuple []any

// ToStage coerces a component into a Stage. Functions become Map pipes, a
// one-element Set becomes a Filter pipe, a Tuple becomes the chain of its
// elements and a []any becomes a Branch whose target is the chain of its
// elements. Stages are returned unchanged once checked.
func ToStage(v any) (Stage, error) {
	switch x := v.(type) {
	case nil:
		return nil, errors.InvalidStage("nil", "not a stage")
	case Stage:
		if err := x.err(); err != nil {
			return nil, err
		}
		return x, nil
	case Set:
		p, err := x.pipe()
		if err != nil {
			return nil, err
		}
		return p, nil
	case Tuple:
		return chainAll([]any(x))
	case []any:
		b := NewBranch(x)
		if err := b.err(); err != nil {
			return nil, err
		}
		return b, nil
	}
	if isFunc(v) {
		p := Map(v)
		if err := p.err(); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, errors.InvalidStage(fmt.Sprintf("%T", v), "not a stage, function, Set, Tuple or []any")
}

func (s Set) predicate() (any, error) {
	if len(s) != 1 {
		return nil, errors.InvalidStage("set", fmt.Sprintf("a filter set holds exactly one predicate, got %d", len(s)))
	}
	if !isFunc(s[0]) {
		return nil, errors.InvalidStage("set", fmt.Sprintf("%T is not a predicate function", s[0]))
	}
	return s[0], nil
}

func (s Set) pipe() (*Pipe, error) {
	pred, err := s.predicate()
	if err != nil {
		return nil, err
	}
	p := Filter(pred)
	if err := p.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// chainAll folds Chain over the coerced components, left to right.
func chainAll(components []any) (Stage, error) {
	if len(components) == 0 {
		return nil, errors.InvalidStage("chain", "no components")
	}
	acc, err := ToStage(components[0])
	if err != nil {
		return nil, err
	}
	for _, c := range components[1:] {
		next, err := ToStage(c)
		if err != nil {
			return nil, err
		}
		if acc, err = Chain(acc, next); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
