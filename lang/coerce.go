package lang

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Truthy reports whether v converts to true.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Undefined, Null:
		return false
	case Bool:
		return bool(v)
	case Number:
		return v != 0 && !math.IsNaN(float64(v))
	case String:
		return v != ""
	default:
		return true
	}
}

// nullish reports whether v is undefined or null.
func nullish(v Value) bool {
	switch v.(type) {
	case Undefined, Null:
		return true
	}

	return false
}

// ToPrimitive converts arrays, records and functions to their string
// form and returns primitives unchanged.
func ToPrimitive(v Value) Value {
	switch v.(type) {
	case *Array, *Record, *Function, *Builtin:
		return String(ToString(v))
	}

	return v
}

// ToNumber converts v to a number.
func ToNumber(v Value) float64 {
	switch v := v.(type) {
	case Undefined:
		return math.NaN()
	case Null:
		return 0
	case Bool:
		if v {
			return 1
		}

		return 0
	case Number:
		return float64(v)
	case String:
		return stringToNumber(string(v))
	default:
		return ToNumber(ToPrimitive(v))
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)

	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0

		switch s[1] | 0x20 {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}

		if base != 0 {
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return math.NaN()
			}

			f, _ := new(big.Float).SetInt(n).Float64()

			return f
		}
	}

	// strconv accepts spellings such as "inf", "0x1p3" and "1_0" that a
	// numeric string may not use.
	for i := range len(s) {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return math.NaN()
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}

	return f
}

// ToString converts v to a string.
func ToString(v Value) string {
	switch v := v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(v))
	case Number:
		return FormatNumber(float64(v))
	case String:
		return string(v)
	case *Array:
		var b strings.Builder

		for i, e := range v.Elems {
			if i > 0 {
				b.WriteByte(',')
			}

			if !nullish(e) {
				b.WriteString(ToString(e))
			}
		}

		return b.String()
	case *Record:
		return "[object Object]"
	case *Function:
		if src := v.Source(); src != "" {
			return src
		}

		return "function " + v.Name + "() { }"
	case *Builtin:
		return "function " + v.Name + "() { [native code] }"
	}

	return ""
}

// FormatNumber formats f the way a number converts to a string: integers
// without a fraction, decimal notation for magnitudes in [1e-7, 1e21) and
// exponent notation otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// Shortest round-trip digits and exponent, as d.ddde±x.
	e := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(e, "e")
	digits := strings.Replace(mant, ".", "", 1)
	k := len(digits)

	x, _ := strconv.Atoi(exp)
	n := x + 1

	var s string

	switch {
	case k <= n && n <= 21:
		s = digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		s = digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		s = "0." + strings.Repeat("0", -n) + digits
	default:
		es := "+"
		if n-1 < 0 {
			es = "-"
		}

		s = digits[:1]
		if k > 1 {
			s += "." + digits[1:]
		}

		s += "e" + es + strconv.Itoa(abs(n-1))
	}

	return sign + s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

// toInt32 applies the 32-bit integer conversion used by bitwise operators.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	f = math.Trunc(f)
	f = math.Mod(f, 1<<32)

	if f < 0 {
		f += 1 << 32
	}

	return int32(uint32(f))
}

// toInteger truncates f toward zero, mapping NaN to 0.
func toInteger(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}

	return math.Trunc(f)
}

// StrictEqual implements ===.
func StrictEqual(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case Undefined, Null:
		return true
	case Bool:
		return a == b.(Bool)
	case Number:
		return a == b.(Number)
	case String:
		return a == b.(String)
	}

	return a == b
}

// sameValueZero is StrictEqual except that NaN equals NaN.
func sameValueZero(a, b Value) bool {
	x, ok1 := a.(Number)
	y, ok2 := b.(Number)

	if ok1 && ok2 && math.IsNaN(float64(x)) && math.IsNaN(float64(y)) {
		return true
	}

	return StrictEqual(a, b)
}

// LooseEqual implements ==.
func LooseEqual(a, b Value) bool {
	if a.Kind() == b.Kind() {
		return StrictEqual(a, b)
	}

	if nullish(a) || nullish(b) {
		return nullish(a) && nullish(b)
	}

	switch a.(type) {
	case Bool:
		return LooseEqual(Number(ToNumber(a)), b)
	case *Array, *Record, *Function, *Builtin:
		return LooseEqual(ToPrimitive(a), b)
	}

	switch b.(type) {
	case Bool:
		return LooseEqual(a, Number(ToNumber(b)))
	case *Array, *Record, *Function, *Builtin:
		return LooseEqual(a, ToPrimitive(b))
	}

	// number and string
	return ToNumber(a) == ToNumber(b)
}

// compare orders two values for the relational operators. ok is false
// when the operands are unordered (either converts to NaN).
func compare(a, b Value) (cmp int, ok bool) {
	a, b = ToPrimitive(a), ToPrimitive(b)

	if x, isStr := a.(String); isStr {
		if y, isStr := b.(String); isStr {
			return compareUnits(units(string(x)), units(string(y))), true
		}
	}

	x, y := ToNumber(a), ToNumber(b)

	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return 0, false
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}

	return 0, true
}

func compareUnits(a, b []uint16) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}

			return 1
		}
	}

	return len(a) - len(b)
}

// units returns the UTF-16 code units of s.
func units(s string) []uint16 { return utf16.Encode([]rune(s)) }

// fromUnits decodes UTF-16 code units; unpaired surrogates become U+FFFD.
func fromUnits(u []uint16) string { return string(utf16.Decode(u)) }

// unitLen returns the length of s in UTF-16 code units.
func unitLen(s string) int {
	n := 0

	for _, r := range s {
		n += utf16.RuneLen(r)
	}

	return n
}
