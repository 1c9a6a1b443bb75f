package lang

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

var (
	intrinsicsOnce  sync.Once
	intrinsicsCache Scope
)

// globals returns the lazily built, process-wide table of global
// bindings. It is shared and must not be modified.
func globals() Scope {
	intrinsicsOnce.Do(func() {
		intrinsicsCache = Scope{
			"Array":      arrayIntrinsic(),
			"Object":     objectIntrinsic(),
			"String":     stringIntrinsic(),
			"Number":     numberIntrinsic(),
			"Boolean":    builtin("Boolean", func(c *Call) (Value, *Sentinel) { return Bool(Truthy(c.Arg(0))), nil }),
			"RegExp":     builtin("RegExp", regexpIntrinsic),
			"Math":       mathIntrinsic(),
			"NaN":        Number(math.NaN()),
			"Infinity":   Number(math.Inf(1)),
			"isNaN":      builtin("isNaN", globalIsNaN),
			"isFinite":   builtin("isFinite", globalIsFinite),
			"parseFloat": builtin("parseFloat", parseFloat),
			"parseInt":   builtin("parseInt", parseInt),
		}
	})

	return intrinsicsCache
}

// IntrinsicNames returns the global names visible beneath every module.
func IntrinsicNames() []string {
	return slices.Sorted(maps.Keys(globals()))
}

func builtin(name string, fn func(c *Call) (Value, *Sentinel)) *Builtin {
	return &Builtin{Name: name, Fn: fn}
}

// record builds a record of builtins in the given order.
func record(members ...*Builtin) *Record {
	r := NewRecord()

	for _, m := range members {
		r.Set(m.Name, m)
	}

	return r
}

func regexpIntrinsic(c *Call) (Value, *Sentinel) {
	return nil, c.Sentinel("Regular expression values are not supported")
}

func arrayIntrinsic() *Builtin {
	a := builtin("Array", func(c *Call) (Value, *Sentinel) {
		if n, ok := c.Arg(0).(Number); ok && len(c.Args) == 1 {
			if n < 0 || float64(n) != math.Trunc(float64(n)) || n > maxArrayLength {
				return nil, c.Sentinel("Invalid array length")
			}

			elems := make([]Value, int(n))
			for i := range elems {
				elems[i] = Undefined{}
			}

			return NewArray(elems...), nil
		}

		return NewArray(append([]Value(nil), c.Args...)...), nil
	})

	a.Props = record(
		builtin("isArray", func(c *Call) (Value, *Sentinel) {
			_, ok := c.Arg(0).(*Array)

			return Bool(ok), nil
		}),
		builtin("of", func(c *Call) (Value, *Sentinel) {
			return NewArray(append([]Value(nil), c.Args...)...), nil
		}),
		builtin("from", arrayFrom),
	)

	return a
}

// arrayFrom accepts arrays, strings and array-like records with a
// numeric length, and an optional map callback.
func arrayFrom(c *Call) (Value, *Sentinel) {
	var elems []Value

	switch src := c.Arg(0).(type) {
	case *Array:
		elems = append(elems, src.Elems...)
	case String:
		for _, r := range string(src) {
			elems = append(elems, String(string(r)))
		}
	case *Record:
		n, _ := src.Get("length")
		size := toInteger(ToNumber(orUndefined(n)))
		if size > maxArrayLength {
			return nil, c.Sentinel("Invalid array length")
		}

		for i := 0; i < int(size); i++ {
			v, ok := src.Get(strconv.Itoa(i))
			if !ok {
				v = Undefined{}
			}

			elems = append(elems, v)
		}
	case Undefined, Null:
		return nil, c.Sentinel("%s is not iterable", ToString(src))
	}

	fn := c.Arg(1)
	if _, ok := fn.(Undefined); ok {
		return NewArray(elems...), nil
	}

	out := make([]Value, len(elems))

	for i, el := range elems {
		v, s := c.Invoke(fn, el, Number(i))
		if s != nil {
			return nil, s
		}

		out[i] = v
	}

	return NewArray(out...), nil
}

func orUndefined(v Value) Value {
	if v == nil {
		return Undefined{}
	}

	return v
}

func objectIntrinsic() *Builtin {
	o := builtin("Object", func(c *Call) (Value, *Sentinel) {
		switch v := c.Arg(0).(type) {
		case Undefined, Null:
			return NewRecord(), nil
		default:
			return v, nil
		}
	})

	o.Props = record(
		builtin("keys", func(c *Call) (Value, *Sentinel) {
			var out []Value

			eachOwn(c.Arg(0), func(k string, _ Value) {
				out = append(out, String(k))
			})

			return NewArray(out...), nil
		}),
		builtin("values", func(c *Call) (Value, *Sentinel) {
			var out []Value

			eachOwn(c.Arg(0), func(_ string, v Value) {
				out = append(out, v)
			})

			return NewArray(out...), nil
		}),
		builtin("entries", func(c *Call) (Value, *Sentinel) {
			var out []Value

			eachOwn(c.Arg(0), func(k string, v Value) {
				out = append(out, NewArray(String(k), v))
			})

			return NewArray(out...), nil
		}),
		// assign returns a new record rather than modifying its target;
		// evaluated values are immutable.
		builtin("assign", func(c *Call) (Value, *Sentinel) {
			if nullish(c.Arg(0)) {
				return nil, c.Sentinel("Cannot convert undefined or null to object")
			}

			out := NewRecord()

			for _, src := range c.Args {
				eachOwn(src, func(k string, v Value) { out.Set(k, v) })
			}

			return out, nil
		}),
		builtin("fromEntries", func(c *Call) (Value, *Sentinel) {
			list, ok := c.Arg(0).(*Array)
			if !ok {
				return nil, c.Sentinel("%s is not iterable", ToString(c.Arg(0)))
			}

			out := NewRecord()

			for _, el := range list.Elems {
				pair, ok := el.(*Array)
				if !ok {
					return nil, c.Sentinel("Iterator value %s is not an entry object", ToString(el))
				}

				k, v := Value(Undefined{}), Value(Undefined{})
				if pair.Len() > 0 {
					k = pair.Elems[0]
				}

				if pair.Len() > 1 {
					v = pair.Elems[1]
				}

				out.Set(ToString(k), v)
			}

			return out, nil
		}),
		builtin("freeze", func(c *Call) (Value, *Sentinel) { return c.Arg(0), nil }),
	)

	return o
}

// eachOwn calls fn for the own enumerable properties of v.
func eachOwn(v Value, fn func(k string, v Value)) {
	switch v := v.(type) {
	case *Record:
		v.Each(func(k string, x Value) bool {
			fn(k, x)

			return true
		})
	case *Array:
		for i, x := range v.Elems {
			fn(strconv.Itoa(i), x)
		}
	case String:
		for i, u := range units(string(v)) {
			fn(strconv.Itoa(i), String(fromUnits([]uint16{u})))
		}
	}
}

func stringIntrinsic() *Builtin {
	s := builtin("String", func(c *Call) (Value, *Sentinel) {
		if len(c.Args) == 0 {
			return String(""), nil
		}

		return String(ToString(c.Args[0])), nil
	})

	s.Props = record(
		builtin("fromCharCode", func(c *Call) (Value, *Sentinel) {
			u := make([]uint16, len(c.Args))
			for i, a := range c.Args {
				u[i] = uint16(uint32(toInt32(ToNumber(a))))
			}

			return String(fromUnits(u)), nil
		}),
	)

	return s
}

func numberIntrinsic() *Builtin {
	n := builtin("Number", func(c *Call) (Value, *Sentinel) {
		if len(c.Args) == 0 {
			return Number(0), nil
		}

		return Number(ToNumber(c.Args[0])), nil
	})

	n.Props = record(
		builtin("isNaN", func(c *Call) (Value, *Sentinel) {
			return Bool(isNaN(c.Arg(0))), nil
		}),
		builtin("isFinite", func(c *Call) (Value, *Sentinel) {
			f, ok := c.Arg(0).(Number)

			return Bool(ok && !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)), nil
		}),
		builtin("isInteger", func(c *Call) (Value, *Sentinel) {
			f, ok := c.Arg(0).(Number)

			return Bool(ok && !math.IsInf(float64(f), 0) && float64(f) == math.Trunc(float64(f))), nil
		}),
		builtin("parseFloat", parseFloat),
		builtin("parseInt", parseInt),
	)

	n.Props.Set("MAX_SAFE_INTEGER", Number(1<<53-1))
	n.Props.Set("MIN_SAFE_INTEGER", Number(-(1<<53 - 1)))
	n.Props.Set("EPSILON", Number(math.Nextafter(1, 2)-1))
	n.Props.Set("MAX_VALUE", Number(math.MaxFloat64))
	n.Props.Set("MIN_VALUE", Number(math.SmallestNonzeroFloat64))
	n.Props.Set("POSITIVE_INFINITY", Number(math.Inf(1)))
	n.Props.Set("NEGATIVE_INFINITY", Number(math.Inf(-1)))
	n.Props.Set("NaN", Number(math.NaN()))

	return n
}

func globalIsNaN(c *Call) (Value, *Sentinel) {
	return Bool(math.IsNaN(ToNumber(c.Arg(0)))), nil
}

func globalIsFinite(c *Call) (Value, *Sentinel) {
	f := ToNumber(c.Arg(0))

	return Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
}

// parseFloat converts the longest decimal prefix of its argument.
func parseFloat(c *Call) (Value, *Sentinel) {
	s := strings.TrimLeftFunc(ToString(c.Arg(0)), unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	if strings.HasPrefix(s, "Infinity") {
		if sign == "-" {
			return Number(math.Inf(-1)), nil
		}

		return Number(math.Inf(1)), nil
	}

	end, digits := 0, 0

	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}

	if end < len(s) && s[end] == '.' {
		end++

		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}

	if digits == 0 {
		return Number(math.NaN()), nil
	}

	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}

		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}

			end = exp
		}
	}

	// the prefix is well formed; out of range values saturate
	f, _ := strconv.ParseFloat(sign+s[:end], 64)

	return Number(f), nil
}

// parseInt converts the longest prefix of digits in the given radix.
func parseInt(c *Call) (Value, *Sentinel) {
	s := strings.TrimLeftFunc(ToString(c.Arg(0)), unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg, s = s[0] == '-', s[1:]
	}

	radix := int(toInt32(ToNumber(c.Arg(1))))

	switch {
	case radix == 0:
		radix = 10

		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			radix, s = 16, s[2:]
		}
	case radix < 2 || radix > 36:
		return Number(math.NaN()), nil
	case radix == 16:
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
		}
	}

	var (
		f     float64
		valid bool
	)

	for i := 0; i < len(s); i++ {
		d := digitValue(s[i])
		if d >= radix {
			break
		}

		f = f*float64(radix) + float64(d)
		valid = true
	}

	if !valid {
		return Number(math.NaN()), nil
	}

	if neg {
		f = -f
	}

	return Number(f), nil
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// digitValue returns the value of b as a base-36 digit, or 36.
func digitValue(b byte) int {
	switch {
	case isDigit(b):
		return int(b - '0')
	case 'a' <= b && b <= 'z':
		return int(b-'a') + 10
	case 'A' <= b && b <= 'Z':
		return int(b-'A') + 10
	}

	return 36
}

func mathIntrinsic() *Record {
	unary := func(name string, fn func(float64) float64) *Builtin {
		return builtin(name, func(c *Call) (Value, *Sentinel) {
			return Number(fn(ToNumber(c.Arg(0)))), nil
		})
	}

	extreme := func(name string, init float64, pick func(a, b float64) bool) *Builtin {
		return builtin(name, func(c *Call) (Value, *Sentinel) {
			out := init

			for _, a := range c.Args {
				f := ToNumber(a)
				if math.IsNaN(f) {
					return Number(math.NaN()), nil
				}

				if pick(f, out) {
					out = f
				}
			}

			return Number(out), nil
		})
	}

	m := record(
		extreme("min", math.Inf(1), func(a, b float64) bool {
			return a < b || (a == 0 && b == 0 && math.Signbit(a))
		}),
		extreme("max", math.Inf(-1), func(a, b float64) bool {
			return a > b || (a == 0 && b == 0 && !math.Signbit(a))
		}),
		unary("round", func(f float64) float64 {
			if math.IsNaN(f) || math.IsInf(f, 0) || f == math.Trunc(f) {
				return f
			}

			r := math.Floor(f + 0.5)
			if r == 0 && f < 0 {
				return math.Copysign(0, -1)
			}

			return r
		}),
		unary("floor", math.Floor),
		unary("ceil", math.Ceil),
		unary("trunc", math.Trunc),
		unary("abs", math.Abs),
		unary("sqrt", math.Sqrt),
		unary("sign", func(f float64) float64 {
			switch {
			case f > 0:
				return 1
			case f < 0:
				return -1
			}

			return f
		}),
		builtin("pow", func(c *Call) (Value, *Sentinel) {
			x, y := ToNumber(c.Arg(0)), ToNumber(c.Arg(1))
			if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
				return Number(math.NaN()), nil
			}

			return Number(math.Pow(x, y)), nil
		}),
	)

	m.Set("PI", Number(math.Pi))
	m.Set("E", Number(math.E))

	return m
}
