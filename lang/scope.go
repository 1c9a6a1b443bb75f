package lang

import (
	"maps"

	"github.com/ardnew/prestyle/lang/ast"
)

// Scope maps free identifier names to evaluated values supplied by the
// caller. A Scope is never modified once evaluation has been handed it.
// Module declarations and the intrinsics are resolved beneath it.
type Scope map[string]Value

// NewScope returns a copy of bindings.
func NewScope(bindings map[string]Value) Scope {
	return Scope(maps.Clone(bindings))
}

// Lookup returns the value bound to name.
func (s Scope) Lookup(name string) (Value, bool) {
	v, ok := s[name]

	return v, ok
}

// frame holds the bindings of one function invocation: its parameters and
// its block-scoped declarations, whose initializers are evaluated on demand
// in the invocation. An enum initializer gets a frame of its own holding
// the members declared so far.
type frame struct {
	locals map[string]ast.Node
	params Scope
	scope  Scope
	fn     *Function
	parent *frame
}
