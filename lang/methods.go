package lang

import (
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// maxStringUnits bounds the strings that padding and repetition build.
const maxStringUnits = 1 << 24

// maxArrayLength bounds the arrays that Array(n) and Array.from build.
const maxArrayLength = 1 << 24

var (
	methodsOnce  sync.Once
	methodTables map[Kind]map[string]*Builtin
)

// methods returns the primitive methods available on values of kind k.
// The tables are built on first use.
func methods(k Kind) map[string]*Builtin {
	methodsOnce.Do(func() {
		methodTables = map[Kind]map[string]*Builtin{
			KindString:   table(stringMethods()),
			KindNumber:   table(numberMethods()),
			KindBool:     table(boolMethods()),
			KindArray:    table(arrayMethods()),
			KindRecord:   table(recordMethods()),
			KindFunction: table(functionMethods()),
		}
	})

	return methodTables[k]
}

func table(list []*Builtin) map[string]*Builtin {
	m := make(map[string]*Builtin, len(list))
	for _, b := range list {
		m[b.Name] = b
	}

	return m
}

// relative resolves a possibly negative position argument against a
// length n, clamped to [0, n]; undefined yields def.
func relative(v Value, n, def int) int {
	if _, ok := v.(Undefined); ok {
		return def
	}

	f := toInteger(ToNumber(v))

	switch {
	case f < 0:
		return max(n+int(max(f, -float64(n))), 0)
	case f > float64(n):
		return n
	}

	return int(f)
}

// clamp resolves a non-negative position argument against a length n.
func clamp(v Value, n, def int) int {
	if _, ok := v.(Undefined); ok {
		return def
	}

	f := toInteger(ToNumber(v))

	switch {
	case f < 0:
		return 0
	case f > float64(n):
		return n
	}

	return int(f)
}

// indexUnits returns the first index at or after from where needle
// occurs in hay, or -1.
func indexUnits(hay, needle []uint16, from int) int {
	for i := from; i+len(needle) <= len(hay); i++ {
		if slices.Equal(hay[i:i+len(needle)], needle) {
			return i
		}
	}

	return -1
}

func thisString(c *Call) []uint16 { return units(ToString(c.This)) }

func stringMethods() []*Builtin {
	str := func(name string, fn func(s string) string) *Builtin {
		return builtin(name, func(c *Call) (Value, *Sentinel) {
			return String(fn(ToString(c.This))), nil
		})
	}

	pad := func(name string, start bool) *Builtin {
		return builtin(name, func(c *Call) (Value, *Sentinel) {
			s := thisString(c)

			w := toInteger(ToNumber(c.Arg(0)))
			if w > maxStringUnits {
				return nil, c.Sentinel("Invalid string length")
			}

			width := int(w)

			fill := units(" ")
			if _, ok := c.Arg(1).(Undefined); !ok {
				fill = units(ToString(c.Arg(1)))
			}

			if width <= len(s) || len(fill) == 0 {
				return String(fromUnits(s)), nil
			}

			n := width - len(s)
			p := make([]uint16, 0, n)

			for len(p) < n {
				p = append(p, fill[:min(len(fill), n-len(p))]...)
			}

			if start {
				return String(fromUnits(append(p, s...))), nil
			}

			return String(fromUnits(append(s, p...))), nil
		})
	}

	replace := func(name string, all bool) *Builtin {
		return builtin(name, func(c *Call) (Value, *Sentinel) {
			s := thisString(c)
			pat := units(ToString(c.Arg(0)))
			with := c.Arg(1)

			var out []uint16

			at := 0

			for {
				i := indexUnits(s, pat, at)
				if i < 0 {
					break
				}

				out = append(out, s[at:i]...)

				var repl string

				if _, ok := with.(Callable); ok {
					v, sent := c.Invoke(with, String(fromUnits(pat)), Number(i), String(fromUnits(s)))
					if sent != nil {
						return nil, sent
					}

					repl = ToString(v)
				} else {
					repl = strings.ReplaceAll(ToString(with), "$&", fromUnits(pat))
				}

				out = append(out, units(repl)...)
				at = i + len(pat)

				if !all {
					break
				}

				if len(pat) == 0 {
					if at < len(s) {
						out = append(out, s[at])
					}

					at++

					if at > len(s) {
						break
					}
				}
			}

			if at < len(s) {
				out = append(out, s[at:]...)
			}

			return String(fromUnits(out)), nil
		})
	}

	return []*Builtin{
		str("toUpperCase", strings.ToUpper),
		str("toLowerCase", strings.ToLower),
		str("trim", func(s string) string { return strings.TrimFunc(s, unicode.IsSpace) }),
		str("trimStart", func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }),
		str("trimEnd", func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }),
		str("toString", func(s string) string { return s }),
		str("valueOf", func(s string) string { return s }),
		builtin("startsWith", func(c *Call) (Value, *Sentinel) {
			s, pre := thisString(c), units(ToString(c.Arg(0)))
			at := clamp(c.Arg(1), len(s), 0)

			return Bool(at+len(pre) <= len(s) && slices.Equal(s[at:at+len(pre)], pre)), nil
		}),
		builtin("endsWith", func(c *Call) (Value, *Sentinel) {
			s, suf := thisString(c), units(ToString(c.Arg(0)))
			end := clamp(c.Arg(1), len(s), len(s))

			return Bool(end-len(suf) >= 0 && slices.Equal(s[end-len(suf):end], suf)), nil
		}),
		builtin("includes", func(c *Call) (Value, *Sentinel) {
			s := thisString(c)

			return Bool(indexUnits(s, units(ToString(c.Arg(0))), clamp(c.Arg(1), len(s), 0)) >= 0), nil
		}),
		builtin("indexOf", func(c *Call) (Value, *Sentinel) {
			s := thisString(c)

			return Number(indexUnits(s, units(ToString(c.Arg(0))), clamp(c.Arg(1), len(s), 0))), nil
		}),
		builtin("slice", func(c *Call) (Value, *Sentinel) {
			s := thisString(c)
			from, to := relative(c.Arg(0), len(s), 0), relative(c.Arg(1), len(s), len(s))

			if from >= to {
				return String(""), nil
			}

			return String(fromUnits(s[from:to])), nil
		}),
		builtin("substring", func(c *Call) (Value, *Sentinel) {
			s := thisString(c)
			from, to := clamp(c.Arg(0), len(s), 0), clamp(c.Arg(1), len(s), len(s))

			if from > to {
				from, to = to, from
			}

			return String(fromUnits(s[from:to])), nil
		}),
		builtin("split", func(c *Call) (Value, *Sentinel) {
			s := ToString(c.This)
			limit := math.MaxInt

			if _, ok := c.Arg(1).(Undefined); !ok {
				limit = int(uint32(toInt32(ToNumber(c.Arg(1)))))
			}

			var parts []string

			switch sep := c.Arg(0).(type) {
			case Undefined:
				parts = []string{s}
			default:
				sepStr := ToString(sep)
				if sepStr == "" {
					for _, u := range units(s) {
						parts = append(parts, fromUnits([]uint16{u}))
					}
				} else {
					parts = strings.Split(s, sepStr)
				}
			}

			out := make([]Value, 0, min(len(parts), limit))
			for _, p := range parts[:min(len(parts), limit)] {
				out = append(out, String(p))
			}

			return NewArray(out...), nil
		}),
		replace("replace", false),
		replace("replaceAll", true),
		builtin("repeat", func(c *Call) (Value, *Sentinel) {
			n := toInteger(ToNumber(c.Arg(0)))
			if n < 0 || math.IsInf(n, 0) {
				return nil, c.Sentinel("Invalid count value: %s", FormatNumber(n))
			}

			if n*float64(unitLen(ToString(c.This))) > maxStringUnits {
				return nil, c.Sentinel("Invalid string length")
			}

			return String(strings.Repeat(ToString(c.This), int(n))), nil
		}),
		pad("padStart", true),
		pad("padEnd", false),
		builtin("concat", func(c *Call) (Value, *Sentinel) {
			var b strings.Builder

			b.WriteString(ToString(c.This))

			for _, a := range c.Args {
				b.WriteString(ToString(a))
			}

			return String(b.String()), nil
		}),
		builtin("charAt", func(c *Call) (Value, *Sentinel) {
			s := thisString(c)
			i := toInteger(ToNumber(c.Arg(0)))

			if i < 0 || i >= float64(len(s)) {
				return String(""), nil
			}

			return String(fromUnits(s[int(i) : int(i)+1])), nil
		}),
		builtin("at", func(c *Call) (Value, *Sentinel) {
			s := thisString(c)
			i := int(toInteger(ToNumber(c.Arg(0))))

			if i < 0 {
				i += len(s)
			}

			if i < 0 || i >= len(s) {
				return Undefined{}, nil
			}

			return String(fromUnits(s[i : i+1])), nil
		}),
	}
}

func numberMethods() []*Builtin {
	return []*Builtin{
		builtin("toString", func(c *Call) (Value, *Sentinel) {
			f := ToNumber(c.This)

			radix := 10
			if _, ok := c.Arg(0).(Undefined); !ok {
				radix = int(toInteger(ToNumber(c.Arg(0))))
			}

			if radix < 2 || radix > 36 {
				return nil, c.Sentinel("toString() radix must be between 2 and 36")
			}

			if radix == 10 || math.IsNaN(f) || math.IsInf(f, 0) {
				return String(FormatNumber(f)), nil
			}

			if f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
				return nil, c.Sentinel("Fractional or unsafe numbers in radix %d are not supported", radix)
			}

			return String(strconv.FormatInt(int64(f), radix)), nil
		}),
		builtin("toFixed", func(c *Call) (Value, *Sentinel) {
			digits := toInteger(ToNumber(c.Arg(0)))
			if digits < 0 || digits > 100 {
				return nil, c.Sentinel("toFixed() digits argument must be between 0 and 100")
			}

			return String(toFixed(ToNumber(c.This), int(digits))), nil
		}),
		builtin("valueOf", func(c *Call) (Value, *Sentinel) {
			return Number(ToNumber(c.This)), nil
		}),
	}
}

// toFixed formats f with digits fraction digits, rounding exact ties away
// from zero.
func toFixed(f float64, digits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return FormatNumber(f)
	}

	neg := f < 0
	r := new(big.Rat).SetFloat64(math.Abs(f))
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	n, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	s := n.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}

		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}

	if neg {
		s = "-" + s
	}

	return s
}

func boolMethods() []*Builtin {
	return []*Builtin{
		builtin("toString", func(c *Call) (Value, *Sentinel) {
			return String(ToString(c.This)), nil
		}),
		builtin("valueOf", func(c *Call) (Value, *Sentinel) {
			return Bool(Truthy(c.This)), nil
		}),
	}
}

func recordMethods() []*Builtin {
	return []*Builtin{
		builtin("hasOwnProperty", func(c *Call) (Value, *Sentinel) {
			r, _ := c.This.(*Record)

			return Bool(r != nil && r.Has(ToString(c.Arg(0)))), nil
		}),
		builtin("toString", func(c *Call) (Value, *Sentinel) {
			return String("[object Object]"), nil
		}),
	}
}

func functionMethods() []*Builtin {
	return []*Builtin{
		builtin("toString", func(c *Call) (Value, *Sentinel) {
			return String(ToString(c.This)), nil
		}),
		builtin("call", func(c *Call) (Value, *Sentinel) {
			var args []Value
			if len(c.Args) > 1 {
				args = c.Args[1:]
			}

			return c.Invoke(c.This, args...)
		}),
		builtin("apply", func(c *Call) (Value, *Sentinel) {
			var args []Value

			switch a := c.Arg(1).(type) {
			case *Array:
				args = a.Elems
			case Undefined, Null:
			default:
				return nil, c.Sentinel("CreateListFromArrayLike called on non-object")
			}

			return c.Invoke(c.This, args...)
		}),
	}
}

func thisArray(c *Call) []Value {
	if a, ok := c.This.(*Array); ok {
		return a.Elems
	}

	return nil
}

// iterate invokes the callback argument for each element of the receiver
// until visit returns false.
func iterate(c *Call, visit func(i int, el, result Value) bool) *Sentinel {
	elems := thisArray(c)

	fn := c.Arg(0)
	if _, ok := fn.(Callable); !ok {
		return c.Sentinel("%s is not a function", ToString(fn))
	}

	for i, el := range elems {
		v, s := c.Invoke(fn, el, Number(i), c.This)
		if s != nil {
			return s
		}

		if !visit(i, el, v) {
			break
		}
	}

	return nil
}

// flatten appends the elements of list to out, descending into nested
// arrays up to depth levels.
func flatten(out, list []Value, depth float64) []Value {
	for _, el := range list {
		if a, ok := el.(*Array); ok && depth >= 1 {
			out = flatten(out, a.Elems, depth-1)

			continue
		}

		out = append(out, el)
	}

	return out
}

func arrayMethods() []*Builtin {
	return []*Builtin{
		builtin("map", func(c *Call) (Value, *Sentinel) {
			out := make([]Value, 0, len(thisArray(c)))

			s := iterate(c, func(_ int, _, v Value) bool {
				out = append(out, v)

				return true
			})
			if s != nil {
				return nil, s
			}

			return NewArray(out...), nil
		}),
		builtin("flatMap", func(c *Call) (Value, *Sentinel) {
			var out []Value

			s := iterate(c, func(_ int, _, v Value) bool {
				out = flatten(out, []Value{v}, 1)

				return true
			})
			if s != nil {
				return nil, s
			}

			return NewArray(out...), nil
		}),
		builtin("filter", func(c *Call) (Value, *Sentinel) {
			var out []Value

			s := iterate(c, func(_ int, el, v Value) bool {
				if Truthy(v) {
					out = append(out, el)
				}

				return true
			})
			if s != nil {
				return nil, s
			}

			return NewArray(out...), nil
		}),
		builtin("find", func(c *Call) (Value, *Sentinel) {
			var found Value = Undefined{}

			s := iterate(c, func(_ int, el, v Value) bool {
				if Truthy(v) {
					found = el

					return false
				}

				return true
			})

			return found, s
		}),
		builtin("findIndex", func(c *Call) (Value, *Sentinel) {
			found := -1

			s := iterate(c, func(i int, _, v Value) bool {
				if Truthy(v) {
					found = i

					return false
				}

				return true
			})

			return Number(found), s
		}),
		builtin("some", func(c *Call) (Value, *Sentinel) {
			hit := false

			s := iterate(c, func(_ int, _, v Value) bool {
				hit = Truthy(v)

				return !hit
			})

			return Bool(hit), s
		}),
		builtin("every", func(c *Call) (Value, *Sentinel) {
			all := true

			s := iterate(c, func(_ int, _, v Value) bool {
				all = Truthy(v)

				return all
			})

			return Bool(all), s
		}),
		builtin("forEach", func(c *Call) (Value, *Sentinel) {
			return Undefined{}, iterate(c, func(int, Value, Value) bool { return true })
		}),
		builtin("reduce", func(c *Call) (Value, *Sentinel) {
			elems := thisArray(c)
			fn := c.Arg(0)

			if _, ok := fn.(Callable); !ok {
				return nil, c.Sentinel("%s is not a function", ToString(fn))
			}

			var acc Value

			start := 0

			switch {
			case len(c.Args) > 1:
				acc = c.Args[1]
			case len(elems) == 0:
				return nil, c.Sentinel("Reduce of empty array with no initial value")
			default:
				acc, start = elems[0], 1
			}

			for i := start; i < len(elems); i++ {
				v, s := c.Invoke(fn, acc, elems[i], Number(i), c.This)
				if s != nil {
					return nil, s
				}

				acc = v
			}

			return acc, nil
		}),
		builtin("join", func(c *Call) (Value, *Sentinel) {
			sep := ","
			if _, ok := c.Arg(0).(Undefined); !ok {
				sep = ToString(c.Arg(0))
			}

			parts := make([]string, len(thisArray(c)))
			for i, el := range thisArray(c) {
				if !nullish(el) {
					parts[i] = ToString(el)
				}
			}

			return String(strings.Join(parts, sep)), nil
		}),
		builtin("toString", func(c *Call) (Value, *Sentinel) {
			return String(ToString(c.This)), nil
		}),
		builtin("concat", func(c *Call) (Value, *Sentinel) {
			out := slices.Clone(thisArray(c))

			for _, a := range c.Args {
				if arr, ok := a.(*Array); ok {
					out = append(out, arr.Elems...)
				} else {
					out = append(out, a)
				}
			}

			return NewArray(out...), nil
		}),
		builtin("slice", func(c *Call) (Value, *Sentinel) {
			elems := thisArray(c)
			from, to := relative(c.Arg(0), len(elems), 0), relative(c.Arg(1), len(elems), len(elems))

			if from >= to {
				return NewArray(), nil
			}

			return NewArray(slices.Clone(elems[from:to])...), nil
		}),
		builtin("includes", func(c *Call) (Value, *Sentinel) {
			elems := thisArray(c)
			for _, el := range elems[relative(c.Arg(1), len(elems), 0):] {
				if sameValueZero(el, c.Arg(0)) {
					return Bool(true), nil
				}
			}

			return Bool(false), nil
		}),
		builtin("indexOf", func(c *Call) (Value, *Sentinel) {
			elems := thisArray(c)
			for i := relative(c.Arg(1), len(elems), 0); i < len(elems); i++ {
				if StrictEqual(elems[i], c.Arg(0)) {
					return Number(i), nil
				}
			}

			return Number(-1), nil
		}),
		builtin("flat", func(c *Call) (Value, *Sentinel) {
			depth := 1.0
			if _, ok := c.Arg(0).(Undefined); !ok {
				depth = toInteger(ToNumber(c.Arg(0)))
			}

			return NewArray(flatten(nil, thisArray(c), depth)...), nil
		}),
		builtin("at", func(c *Call) (Value, *Sentinel) {
			elems := thisArray(c)
			i := int(toInteger(ToNumber(c.Arg(0))))

			if i < 0 {
				i += len(elems)
			}

			if i < 0 || i >= len(elems) {
				return Undefined{}, nil
			}

			return elems[i], nil
		}),
	}
}
