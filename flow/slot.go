package flow

import (
	"fmt"

	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/validation"
)

// Reserved slot names.
const (
	// VarIn names the input slot.
	VarIn = "IN"
	// VarOut names the output slot.
	VarOut = "OUT"
)

func checkNames(what string, names ...string) error {
	v := validation.New().MinCount("names", len(names), 1).Distinct("names", names)
	for _, name := range names {
		v.Identifier("name", name)
	}
	if verr := v.Validate(); verr != nil {
		return errors.InvalidStage(what, verr.Message)
	}
	return nil
}

func slotOp(kind opKind, what string, names []string) *Pipe {
	return &Pipe{ops: []op{{kind: kind, names: names, bad: checkNames(what, names...)}}}
}

// Get creates a placeholder pipe filled by the binding called name when the
// flow runs. The bound value may be anything that coerces to a pipe.
func Get(name string) *Pipe {
	p := slotOp(opGet, "get", []string{name})
	if name == VarIn || name == VarOut {
		p.ops[0].bad = errors.InvalidStage("get", fmt.Sprintf("%s is reserved", name))
	}
	return p
}

// Put records the current item as the named field of the nearest upstream
// record. With several names the item must be a Values or []any of the same
// length and is spread across them. The extended record replaces the item.
func Put(names ...string) *Pipe { return slotOp(opPut, "put", names) }

// Args spreads the named fields of a record item into the positional
// arguments of the transform that follows it.
func Args(names ...string) *Pipe { return slotOp(opArgs, "args", names) }

// Pick replaces a record item with the named field, or with Values holding
// the named fields in order.
func Pick(names ...string) *Pipe { return slotOp(opPick, "pick", names) }

// On replaces one field of a record item with fn(field) and passes the
// updated copy on.
func On(name string, fn any) *Pipe {
	c, err := newCallable(fn)
	o := op{kind: opOn, fn: c, names: []string{name}, bad: checkNames("on", name)}
	if o.bad == nil && err != nil {
		o.bad = errors.InvalidStage("on", err.Error())
	}
	return &Pipe{ops: []op{o}}
}

// Out names the output a fold publishes. The terminal must be a Fold, or a
// Sink ending in one.
func Out(name string, terminal any) *Sink {
	s := &Sink{pipe: &Pipe{}}
	if err := checkNames("out", name); err != nil {
		s.term.bad = err
		return s
	}
	switch x := terminal.(type) {
	case *Fold:
		s.term = x.term
	case *Sink:
		s.pipe, s.term = x.pipe, x.term
	default:
		s.term.bad = errors.InvalidStage("out."+name, fmt.Sprintf("%T is not a fold", terminal))
		return s
	}
	if s.term.bad == nil && s.term.kind != termFold {
		s.term.bad = errors.InvalidStage("out."+name, "only folds publish outputs")
	}
	s.term.name = name
	return s
}

// Binding fills a named slot when a flow runs.
type Binding struct {
	Name  string
	Value any
}

// Bind binds value to the slot called name.
func Bind(name string, value any) Binding { return Binding{Name: name, Value: value} }

// In binds the input sequence.
func In(input any) Binding { return Binding{Name: VarIn, Value: input} }

// Into binds the terminal: a Sink, a Fold or a function used as a sink.
func Into(sink any) Binding { return Binding{Name: VarOut, Value: sink} }
