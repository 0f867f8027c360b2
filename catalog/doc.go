// Package catalog builds flows from YAML definitions.
//
// A definition lists stages by key. Function names are looked up in a
// Registry and includes are loaded through a Loader:
//
//	name: scores
//	stages:
//	  - args: [a, b]
//	  - map: add
//	  - put: c
//	  - branch:
//	      - pick: c
//	      - fold: {fn: add, initial: 0, out: total}
//	  - include: normalize
//	  - sink: print
//
// Build returns an ordinary *flow.Flow, so unbound get slots and IN/OUT are
// bound when the flow runs.
package catalog
