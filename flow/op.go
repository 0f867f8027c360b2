package flow

import (
	"strings"

	"github.com/kbukum/typedflow/errors"
)

type opKind int

const (
	opMap opKind = iota + 1
	opFilter
	opFlatMap
	opBranch
	opGet
	opPut
	opArgs
	opPick
	opOn
)

// op is one step of a Pipe.
type op struct {
	kind   opKind
	fn     *callable
	names  []string
	target Stage // branch target, *Pipe or *Sink
	bad    error

	sub  *path    // resolved branch target
	args []string // fields spread into fn by a preceding Args
}

func (o op) label() string {
	switch o.kind {
	case opMap:
		return "map(" + o.fn.name + ")"
	case opFilter:
		return "filter(" + o.fn.name + ")"
	case opFlatMap:
		return "flatmap(" + o.fn.name + ")"
	case opBranch:
		return "branch"
	case opGet:
		return "get." + o.names[0]
	case opPut:
		return "put." + strings.Join(o.names, ".")
	case opArgs:
		return "args." + strings.Join(o.names, ".")
	case opPick:
		return "pick." + strings.Join(o.names, ".")
	case opOn:
		return "on." + o.names[0] + "(" + o.fn.name + ")"
	}
	return "op"
}

// transforms reports whether the op calls a user function with the item, so
// it can take the spread arguments of a preceding Args.
func (o op) transforms() bool {
	return o.kind == opMap || o.kind == opFilter || o.kind == opFlatMap
}

func fnOp(kind opKind, what string, fn any) *Pipe {
	c, err := newCallable(fn)
	o := op{kind: kind, fn: c}
	if err != nil {
		o.bad = errors.InvalidStage(what, err.Error())
	}
	return &Pipe{ops: []op{o}}
}

// Map creates a pipe that replaces each item with fn(item).
func Map(fn any) *Pipe { return fnOp(opMap, "map", fn) }

// Filter creates a pipe that keeps items for which pred returns true.
func Filter(pred any) *Pipe { return fnOp(opFilter, "filter", pred) }

// FlatMap creates a pipe that replaces each item with every element of the
// iterable fn(item) returns.
func FlatMap(fn any) *Pipe { return fnOp(opFlatMap, "flatmap", fn) }

type termKind int

const (
	termSink termKind = iota + 1
	termFold
	termDiscard
	termCollect
)

// terminal is the end of a compiled path.
type terminal struct {
	kind        termKind
	fn          *callable
	initial     any
	hasInitial  bool
	name        string // set by Out
	defaultName string
	bad         error
}

func (t terminal) label() string {
	switch t.kind {
	case termSink:
		return "sink(" + t.fn.name + ")"
	case termFold:
		return "fold(" + t.fn.name + ")"
	}
	return "terminal"
}

// publishes reports whether the terminal produces a named output.
func (t terminal) publishes() bool { return t.kind == termFold }

// outputName resolves the published name: an Out name first, then the
// fold's own default, then the positional fallback.
func (t terminal) outputName(fallback string) string {
	if t.name != "" {
		return t.name
	}
	if t.defaultName != "" {
		return t.defaultName
	}
	return fallback
}
