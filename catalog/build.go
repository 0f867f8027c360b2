package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/flow"
)

// Build turns a definition into a Flow. Functions come from reg and includes
// from loader, which may be nil when the definition includes nothing. The
// flow is named after the definition; opts are applied after that.
func Build(def *Definition, reg *Registry, loader Loader, opts ...flow.Option) (*flow.Flow, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	b := &builder{reg: reg, loader: loader, stack: []string{def.Name}}
	components, err := b.stages(def.Stages, "stages")
	if err != nil {
		return nil, err
	}
	f, err := flow.New(components...)
	if err != nil {
		return nil, withDetail(err, "definition", def.Name)
	}
	return f.With(append([]flow.Option{flow.WithName(def.Name)}, opts...)...), nil
}

// BuildNamed loads the definition called name and builds it.
func BuildNamed(name string, reg *Registry, loader Loader, opts ...flow.Option) (*flow.Flow, error) {
	def, err := loader.Load(name)
	if err != nil {
		return nil, err
	}
	return Build(def, reg, loader, opts...)
}

type builder struct {
	reg    *Registry
	loader Loader
	// stack holds the definitions being built, outermost first.
	stack []string
}

func (b *builder) stages(defs []StageDef, path string) ([]any, error) {
	out := make([]any, 0, len(defs))
	for i, def := range defs {
		c, err := b.stage(def, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (b *builder) stage(def StageDef, at string) (any, error) {
	switch {
	case def.Map != "":
		return b.withFn(def.Map, at, func(fn any) any { return flow.Map(fn) })
	case def.Filter != "":
		return b.withFn(def.Filter, at, func(fn any) any { return flow.Filter(fn) })
	case def.FlatMap != "":
		return b.withFn(def.FlatMap, at, func(fn any) any { return flow.FlatMap(fn) })
	case def.Sink != "":
		return b.withFn(def.Sink, at, func(fn any) any { return flow.NewSink(fn) })
	case def.Get != "":
		return flow.Get(def.Get), nil
	case def.Put != nil:
		return flow.Put(def.Put...), nil
	case def.Args != nil:
		return flow.Args(def.Args...), nil
	case def.Pick != nil:
		return flow.Pick(def.Pick...), nil
	case def.On != nil:
		return b.withFn(def.On.Fn, at, func(fn any) any { return flow.On(def.On.Field, fn) })
	case def.Fold != nil:
		return b.withFn(def.Fold.Fn, at, func(fn any) any {
			var fold *flow.Fold
			if def.Fold.Initial != nil {
				fold = flow.NewFold(fn, def.Fold.Initial)
			} else {
				fold = flow.NewFold(fn)
			}
			if def.Fold.Out != "" {
				return flow.Out(def.Fold.Out, fold)
			}
			return fold
		})
	case def.Branch != nil:
		components, err := b.stages(def.Branch, at+".branch")
		if err != nil {
			return nil, err
		}
		return components, nil
	case def.Include != "":
		return b.include(def.Include, at)
	}
	return nil, errors.InvalidStage(at, "no stage key set")
}

func (b *builder) withFn(name, at string, build func(fn any) any) (any, error) {
	fn, err := b.reg.lookup(name)
	if err != nil {
		return nil, withDetail(err, "at", at)
	}
	return build(fn), nil
}

// include inlines another definition's stages as a Tuple.
func (b *builder) include(name, at string) (any, error) {
	if slices.Contains(b.stack, name) {
		cycle := append(slices.Clone(b.stack), name)
		return nil, errors.InvalidStage(at, "include cycle "+strings.Join(cycle, " -> "))
	}
	if b.loader == nil {
		return nil, errors.InvalidStage(at, fmt.Sprintf("cannot include %q without a loader", name))
	}
	def, err := b.loader.Load(name)
	if err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	b.stack = append(b.stack, name)
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()
	components, err := b.stages(def.Stages, name+".stages")
	if err != nil {
		return nil, err
	}
	return flow.Tuple(components), nil
}

func withDetail(err error, key string, value any) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail(key, value)
	}
	return err
}
