package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// ToNative converts v to plain Go values: nil, bool, float64, string,
// []any and map[string]any. Functions convert to their source text.
func ToNative(v Value) any {
	switch v := v.(type) {
	case Bool:
		return bool(v)
	case Number:
		return float64(v)
	case String:
		return string(v)
	case *Array:
		out := make([]any, len(v.Elems))
		for i, el := range v.Elems {
			out[i] = ToNative(el)
		}

		return out
	case *Record:
		out := make(map[string]any, v.Len())

		v.Each(func(k string, x Value) bool {
			out[k] = ToNative(x)

			return true
		})

		return out
	case *Function, *Builtin:
		return ToString(v)
	}

	return nil
}

// FromNative converts plain Go values back to a Value. Map keys are
// sorted since Go maps carry no order.
func FromNative(x any) Value {
	switch x := x.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(x)
	case int:
		return Number(x)
	case int64:
		return Number(x)
	case uint64:
		return Number(x)
	case string:
		return String(x)
	case []any:
		elems := make([]Value, len(x))
		for i, el := range x {
			elems[i] = FromNative(el)
		}

		return NewArray(elems...)
	case []string:
		elems := make([]Value, len(x))
		for i, el := range x {
			elems[i] = String(el)
		}

		return NewArray(elems...)
	case map[string]any:
		r := NewRecord()
		for _, k := range slices.Sorted(maps.Keys(x)) {
			r.Set(k, FromNative(x[k]))
		}

		return r
	}

	return String(fmt.Sprint(x))
}

// omitted reports whether a record property holding v is left out of
// serialized output.
func omitted(v Value) bool {
	switch v.(type) {
	case Undefined, *Function, *Builtin:
		return true
	}

	return false
}

// FormatJSON writes v as JSON. Record properties keep their order;
// undefined and function properties are omitted, and non-finite numbers
// are written as null.
func FormatJSON(_ context.Context, w io.Writer, v Value, indent int) error {
	if omitted(v) {
		v = Null{}
	}

	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// MarshalJSON implements [json.Marshaler].
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON implements [json.Marshaler]. JSON has no undefined.
func (Undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON implements [json.Marshaler]. NaN and the infinities have
// no JSON form and are written as null.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}

	return []byte(FormatNumber(f)), nil
}

// MarshalJSON implements [json.Marshaler]. Holes, undefined and
// functions are written as null.
func (a *Array) MarshalJSON() ([]byte, error) {
	elems := make([]Value, len(a.Elems))

	for i, el := range a.Elems {
		if omitted(el) {
			el = Null{}
		}

		elems[i] = el
	}

	return json.Marshal(elems)
}

// MarshalJSON implements [json.Marshaler]. Properties are written in
// order; undefined and function properties are omitted.
func (r *Record) MarshalJSON() ([]byte, error) {
	var (
		b   bytes.Buffer
		err error
	)

	b.WriteByte('{')

	r.Each(func(k string, v Value) bool {
		if omitted(v) {
			return true
		}

		if b.Len() > 1 {
			b.WriteByte(',')
		}

		var key, val []byte

		if key, err = json.Marshal(k); err != nil {
			return false
		}

		if val, err = json.Marshal(v); err != nil {
			return false
		}

		b.Write(key)
		b.WriteByte(':')
		b.Write(val)

		return true
	})

	if err != nil {
		return nil, err
	}

	b.WriteByte('}')

	return b.Bytes(), nil
}

// ToYAML converts v to a value the YAML encoder renders with record
// properties in order.
func ToYAML(v Value) any {
	switch v := v.(type) {
	case Bool:
		return bool(v)
	case Number:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}

		return f
	case String:
		return string(v)
	case *Array:
		out := make([]any, len(v.Elems))
		for i, el := range v.Elems {
			if omitted(el) {
				continue
			}

			out[i] = ToYAML(el)
		}

		return out
	case *Record:
		out := make(yaml.MapSlice, 0, v.Len())

		v.Each(func(k string, x Value) bool {
			if !omitted(x) {
				out = append(out, yaml.MapItem{Key: k, Value: ToYAML(x)})
			}

			return true
		})

		return out
	}

	return nil
}

// FormatYAML writes v as YAML. An indent of zero selects flow style.
func FormatYAML(ctx context.Context, w io.Writer, v Value, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ToYAML(v), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// FormatText writes v the way an interactive console prints it. A
// top-level string is written without quotes.
func FormatText(_ context.Context, w io.Writer, v Value, indent int) error {
	if s, ok := v.(String); ok {
		_, err := fmt.Fprintln(w, string(s))

		return err
	}

	_, err := fmt.Fprintln(w, inspect(v, indent, 0))

	return err
}

// Inspect returns a readable single-line rendering of v.
func Inspect(v Value) string { return inspect(v, 0, 0) }

// inspectWidth is the widest container rendered on one line when
// indenting.
const inspectWidth = 72

func inspect(v Value, indent, depth int) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case String:
		return quote(string(v))
	case *Function, *Builtin:
		name := nameOf(v.(Callable))
		if name == "anonymous" {
			return "[Function (anonymous)]"
		}

		return "[Function: " + name + "]"
	case *Array:
		if v.Len() == 0 {
			return "[]"
		}

		items := make([]string, len(v.Elems))
		for i, el := range v.Elems {
			items[i] = inspect(el, indent, depth+1)
		}

		return group("[", "]", items, indent, depth)
	case *Record:
		if v.Len() == 0 {
			return "{}"
		}

		items := make([]string, 0, v.Len())

		v.Each(func(k string, x Value) bool {
			items = append(items, inspectKey(k)+": "+inspect(x, indent, depth+1))

			return true
		})

		return group("{", "}", items, indent, depth)
	}

	return ToString(v)
}

// group joins container items on one line when they fit, otherwise one
// per line.
func group(lb, rb string, items []string, indent, depth int) string {
	line := lb + " " + strings.Join(items, ", ") + " " + rb
	if indent <= 0 || (len(line)+depth*indent <= inspectWidth && !strings.Contains(line, "\n")) {
		return line
	}

	pad := strings.Repeat(" ", (depth+1)*indent)

	return lb + "\n" + pad + strings.Join(items, ",\n"+pad) + "\n" +
		strings.Repeat(" ", depth*indent) + rb
}

func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`).Replace(s) + "'"
}

// inspectKey quotes k unless it is a valid identifier.
func inspectKey(k string) string {
	if k == "" {
		return "''"
	}

	for i, r := range k {
		ok := r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
			(i > 0 && '0' <= r && r <= '9')
		if !ok {
			return quote(k)
		}
	}

	return k
}
