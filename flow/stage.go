package flow

import (
	"fmt"

	"github.com/kbukum/typedflow/errors"
)

// Kind classifies a pipeline component for the composition algebra.
type Kind int

const (
	KindInvalid Kind = iota
	KindSource
	KindPipe
	KindSink
	KindFold
	KindBranch
	KindReady
	// KindFunc is a plain Go function used as an operand.
	KindFunc
	// KindPredicate is a one-element Set used as a filter operand.
	KindPredicate
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindSource:    "source",
	KindPipe:      "pipe",
	KindSink:      "sink",
	KindFold:      "fold",
	KindBranch:    "branch",
	KindReady:     "ready",
	KindFunc:      "func",
	KindPredicate: "predicate",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Stage is a composable pipeline component. The set of implementations is
// closed: *Source, *Pipe, *Sink, *Fold, *Branch and *Ready.
type Stage interface {
	Kind() Kind
	// err reports a problem found when the stage was constructed.
	err() error
}

// Source owns an input sequence plus the operations already chained onto it.
type Source struct {
	input any
	pipe  *Pipe
}

// NewSource wraps an iterable value: a slice, array, channel, iter.Seq,
// iter.Seq2[any, error] or Iterable.
func NewSource(input any) *Source {
	return &Source{input: input, pipe: &Pipe{}}
}

func (s *Source) Kind() Kind { return KindSource }

func (s *Source) err() error {
	if !isIterable(s.input) {
		return errors.InvalidStage("source", fmt.Sprintf("%T is not iterable", s.input))
	}
	return s.pipe.err()
}

// Pipe is an ordered, immutable chain of item-level operations.
type Pipe struct {
	ops []op
}

func (p *Pipe) Kind() Kind { return KindPipe }

// Len returns the number of operations in the pipe.
func (p *Pipe) Len() int { return len(p.ops) }

func (p *Pipe) err() error {
	for _, o := range p.ops {
		if o.bad != nil {
			return o.bad
		}
	}
	return nil
}

// then returns a new pipe running p followed by q. Neither operand changes.
func (p *Pipe) then(q *Pipe) *Pipe {
	ops := make([]op, 0, len(p.ops)+len(q.ops))
	ops = append(ops, p.ops...)
	ops = append(ops, q.ops...)
	return &Pipe{ops: ops}
}

// Sink is a terminal stage, optionally preceded by a pipe.
type Sink struct {
	pipe *Pipe
	term terminal
}

// NewSink creates a terminal that calls fn once per item and discards the
// result.
func NewSink(fn any) *Sink {
	c, err := newCallable(fn)
	t := terminal{kind: termSink, fn: c}
	if err != nil {
		t.bad = errors.InvalidStage("sink", err.Error())
	}
	return &Sink{pipe: &Pipe{}, term: t}
}

func (s *Sink) Kind() Kind { return KindSink }

func (s *Sink) err() error {
	if err := s.pipe.err(); err != nil {
		return err
	}
	return s.term.bad
}

// Fold is a terminal that reduces a stream to one value per run.
type Fold struct {
	term terminal
}

// NewFold creates a fold over fn(acc, item). With no initial value the first
// item seeds the accumulator. At most one initial value may be given.
// Every run starts from the same initial value, so fn must not mutate it.
func NewFold(fn any, initial ...any) *Fold {
	c, err := newCallable(fn)
	t := terminal{kind: termFold, fn: c}
	switch {
	case err != nil:
		t.bad = errors.InvalidStage("fold", err.Error())
	case !c.typ.IsVariadic() && c.arity() != 2:
		t.bad = errors.InvalidStage("fold", fmt.Sprintf("%s must take (accumulator, item)", c.name))
	case len(initial) > 1:
		t.bad = errors.InvalidStage("fold", "at most one initial value")
	case len(initial) == 1:
		t.initial, t.hasInitial = initial[0], true
	}
	return &Fold{term: t}
}

func (f *Fold) Kind() Kind { return KindFold }

func (f *Fold) err() error { return f.term.bad }

// Named returns a copy of the fold that publishes under name unless an
// enclosing Out overrides it.
func (f *Fold) Named(name string) *Fold {
	t := f.term
	t.defaultName = name
	return &Fold{term: t}
}

func (f *Fold) sink() *Sink { return &Sink{pipe: &Pipe{}, term: f.term} }

// Branch forwards every item to a secondary target before passing it on
// unchanged.
type Branch struct {
	target Stage
	bad    error
}

// NewBranch creates a branch. The target is coerced like any other stage, or
// chained when it is a []any, and must end up a pipe or a sink.
func NewBranch(target any) *Branch {
	var (
		s   Stage
		err error
	)
	if seq, ok := target.([]any); ok {
		s, err = chainAll(seq)
	} else {
		s, err = ToStage(target)
	}
	if err != nil {
		return &Branch{bad: err}
	}
	s = normalize(s)
	switch s.(type) {
	case *Pipe, *Sink:
		return &Branch{target: s}
	}
	return &Branch{bad: errors.InvalidStage("branch", fmt.Sprintf("target must be a pipe or sink, got %s", s.Kind()))}
}

func (b *Branch) Kind() Kind { return KindBranch }

func (b *Branch) err() error {
	if b.bad != nil {
		return b.bad
	}
	return b.target.err()
}

func (b *Branch) pipe() *Pipe {
	return &Pipe{ops: []op{{kind: opBranch, target: b.target, bad: b.bad}}}
}

// Ready is a complete pipeline: a source joined to a sink.
type Ready struct {
	source *Source
	sink   *Sink
}

func (r *Ready) Kind() Kind { return KindReady }

func (r *Ready) err() error {
	if err := r.source.err(); err != nil {
		return err
	}
	return r.sink.err()
}

// normalize maps Fold to Sink and Branch to Pipe. Other stages are returned
// as is.
func normalize(s Stage) Stage {
	switch x := s.(type) {
	case *Fold:
		return x.sink()
	case *Branch:
		return x.pipe()
	}
	return s
}
