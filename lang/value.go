package lang

import (
	"slices"
	"strconv"

	"github.com/ardnew/prestyle/lang/ast"
)

// Kind is the dynamic tag of a [Value].
type Kind int

// Value kinds.
const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindRecord
	KindFunction
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "Undefined"
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindRecord:
		return "Record"
	case KindFunction:
		return "Function"
	default:
		return "Unknown"
	}
}

// Value is a fully concrete evaluation result. The set of implementations
// is closed: [Undefined], [Null], [Bool], [Number], [String], [*Array],
// [*Record], [*Function] and [*Builtin].
type Value interface {
	Kind() Kind
	value()
}

type (
	// Undefined is the undefined value.
	Undefined struct{}

	// Null is the null value.
	Null struct{}

	// Bool is a boolean.
	Bool bool

	// Number is an IEEE 754 double.
	Number float64

	// String is a string. Length and indexing operate on UTF-16 code
	// units.
	String string
)

func (Undefined) Kind() Kind { return KindUndefined }
func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Number) Kind() Kind    { return KindNumber }
func (String) Kind() Kind    { return KindString }

func (Undefined) value() {}
func (Null) value()      {}
func (Bool) value()      {}
func (Number) value()    {}
func (String) value()    {}

// Array is an ordered sequence of values.
type Array struct {
	Elems []Value
}

// NewArray returns an array holding elems.
func NewArray(elems ...Value) *Array { return &Array{Elems: elems} }

// Kind implements [Value].
func (*Array) Kind() Kind { return KindArray }
func (*Array) value()     {}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elems) }

// Record is a string-keyed property map. Keys iterate the way object
// properties do: array-index keys first in ascending numeric order, then
// the remaining keys in insertion order.
type Record struct {
	keys  []string
	vals  map[string]Value
	index int // count of leading array-index keys
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]Value)}
}

// Kind implements [Value].
func (*Record) Kind() Kind { return KindRecord }
func (*Record) value()     {}

// Len returns the number of properties.
func (r *Record) Len() int { return len(r.keys) }

// Get returns the property named key.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]

	return v, ok
}

// Has reports whether key is a property of r.
func (r *Record) Has(key string) bool {
	_, ok := r.vals[key]

	return ok
}

// Set adds or replaces the property named key.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.vals[key]; ok {
		r.vals[key] = v

		return
	}

	r.vals[key] = v

	n, ok := arrayIndex(key)
	if !ok {
		r.keys = append(r.keys, key)

		return
	}

	at, _ := slices.BinarySearchFunc(r.keys[:r.index], n, func(k string, n uint32) int {
		m, _ := arrayIndex(k)

		switch {
		case m < n:
			return -1
		case m > n:
			return 1
		}

		return 0
	})

	r.keys = slices.Insert(r.keys, at, key)
	r.index++
}

// Keys returns the property names in iteration order.
func (r *Record) Keys() []string { return slices.Clone(r.keys) }

// Each calls fn for every property in iteration order until fn returns
// false.
func (r *Record) Each(fn func(key string, v Value) bool) {
	for _, k := range r.keys {
		if !fn(k, r.vals[k]) {
			return
		}
	}
}

// Merge copies every property of src into r.
func (r *Record) Merge(src *Record) {
	src.Each(func(k string, v Value) bool {
		r.Set(k, v)

		return true
	})
}

// arrayIndex reports whether key is a canonical array index, that is, the
// decimal form of an integer in [0, 2^32-2].
func arrayIndex(key string) (uint32, bool) {
	if key == "" || len(key) > 10 || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}

	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}

	return uint32(n), true
}

// Callable is a Value that can be invoked.
type Callable interface {
	Value
	callable()
}

// Param is one parameter of a [*Function].
type Param struct {
	Name string
	Rest bool

	// fallback is the eagerly evaluated default of the parameter.
	fallback Value
	sentinel *Sentinel
	hasDef   bool
}

// Function is a closure over a representable function literal.
type Function struct {
	Name   string
	Params []Param

	node   *ast.FuncLit
	body   ast.Expr // nil for a body without a return value
	scope  Scope
	frame  *frame
	mod    *Module
	file   *ast.File
	locals map[string]ast.Node
}

// Kind implements [Value].
func (*Function) Kind() Kind { return KindFunction }
func (*Function) value()     {}
func (*Function) callable()  {}

// Source returns the source text of the function literal.
func (f *Function) Source() string {
	if f.file == nil || f.node == nil {
		return ""
	}

	return f.file.Text(f.node)
}

// Builtin is a native function: an intrinsic or a primitive method.
// Props holds static members such as Array.isArray.
type Builtin struct {
	Name  string
	Fn    func(c *Call) (Value, *Sentinel)
	Props *Record
}

// Kind implements [Value].
func (*Builtin) Kind() Kind { return KindFunction }
func (*Builtin) value()     {}
func (*Builtin) callable()  {}

// TypeOf returns the typeof string of v.
func TypeOf(v Value) string {
	switch v.Kind() {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	default:
		return "object"
	}
}

// nameOf returns the name of a callable, or "anonymous".
func nameOf(c Callable) string {
	var name string

	switch c := c.(type) {
	case *Function:
		name = c.Name
	case *Builtin:
		name = c.Name
	}

	if name == "" {
		return "anonymous"
	}

	return name
}
