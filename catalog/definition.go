package catalog

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/validation"
)

// Definition is a named flow described in YAML.
type Definition struct {
	// Name identifies the definition for includes and is used as the flow
	// name in logs and spans.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	// Description is free text.
	Description string `yaml:"description,omitempty" mapstructure:"description"`
	// Stages are chained left to right.
	Stages []StageDef `yaml:"stages" mapstructure:"stages" validate:"min=1"`
}

// StageDef describes one stage. Exactly one key must be set.
type StageDef struct {
	Map     string     `yaml:"map,omitempty"`
	Filter  string     `yaml:"filter,omitempty"`
	FlatMap string     `yaml:"flatmap,omitempty"`
	Get     string     `yaml:"get,omitempty"`
	Put     Names      `yaml:"put,omitempty"`
	Args    Names      `yaml:"args,omitempty"`
	Pick    Names      `yaml:"pick,omitempty"`
	On      *OnDef     `yaml:"on,omitempty"`
	Branch  []StageDef `yaml:"branch,omitempty"`
	Include string     `yaml:"include,omitempty"`
	Sink    string     `yaml:"sink,omitempty"`
	Fold    *FoldDef   `yaml:"fold,omitempty"`
}

// OnDef applies a function to one record field.
type OnDef struct {
	Field string `yaml:"field"`
	Fn    string `yaml:"fn"`
}

// FoldDef describes a fold terminal. A missing initial value means the first
// item seeds the accumulator.
type FoldDef struct {
	Fn      string `yaml:"fn"`
	Initial any    `yaml:"initial,omitempty"`
	Out     string `yaml:"out,omitempty"`
}

// Names is a list of field names written either as a YAML sequence or as a
// single scalar.
type Names []string

// UnmarshalYAML accepts "put: c" as well as "put: [a, b]".
func (n *Names) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*n = Names{value.Value}
		return nil
	}
	var names []string
	if err := value.Decode(&names); err != nil {
		return err
	}
	*n = names
	return nil
}

// keys lists the stage keys that are set.
func (s StageDef) keys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(s.Map != "", "map")
	add(s.Filter != "", "filter")
	add(s.FlatMap != "", "flatmap")
	add(s.Get != "", "get")
	add(s.Put != nil, "put")
	add(s.Args != nil, "args")
	add(s.Pick != nil, "pick")
	add(s.On != nil, "on")
	add(s.Branch != nil, "branch")
	add(s.Include != "", "include")
	add(s.Sink != "", "sink")
	add(s.Fold != nil, "fold")
	return keys
}

// Validate checks the definition shape. Function names are checked when the
// definition is built against a registry.
func (d *Definition) Validate() error {
	if err := validation.Validate(d); err != nil {
		return err
	}
	v := validation.New()
	checkStages(v, "stages", d.Stages)
	if appErr := v.Validate(); appErr != nil {
		return appErr.WithDetail("definition", d.Name)
	}
	return nil
}

func checkStages(v *validation.Validator, path string, stages []StageDef) {
	for i, s := range stages {
		at := fmt.Sprintf("%s[%d]", path, i)
		keys := s.keys()
		v.Custom(len(keys) == 1, at, fmt.Sprintf("must set exactly one stage key, got %v", keys))
		if s.On != nil {
			v.Required(at+".on.field", s.On.Field).Required(at+".on.fn", s.On.Fn)
		}
		if s.Fold != nil {
			v.Required(at+".fold.fn", s.Fold.Fn)
		}
		if s.Branch != nil {
			v.MinCount(at+".branch", len(s.Branch), 1)
			checkStages(v, at+".branch", s.Branch)
		}
	}
}

// Parse decodes and validates a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Validation("cannot parse flow definition").WithCause(err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
