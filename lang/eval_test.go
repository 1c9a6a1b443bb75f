package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

const mainSource = `
import { px, compose, transition } from 'prestyle';
import { c } from './a';
import d from './d';
import * as ns from './c';
import { missing } from './nowhere';

const base = 10;
declare const declared: number;
declare const theme: 'dark';
const one = 1, two = 2;

export const scale = (x = base * 2) => x;

export enum E { A, B = 5, C }

export function outer(a: number) {
  const b = a + 1;
  function inner() {
    return b * 2;
  }
  return inner();
}

const loop = (): number => loop();

export const button = {
  padding: px(4),
  color: theme,
};
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"main.ts": {Data: []byte(mainSource)},
		"a.ts":    {Data: []byte(`export { b as c } from './b';`)},
		"b.ts":    {Data: []byte(`export * from './c';`)},
		"c.ts":    {Data: []byte(`export const b = 'deep';`)},
		"d.ts":    {Data: []byte(`export default { x: 1 };`)},
		"x.ts":    {Data: []byte(`export * from './y';`)},
		"y.ts":    {Data: []byte(`export * from './x';`)},
		"cycle.ts": {Data: []byte(`
import { nope } from './x';
export const bad = nope;
`)},
	}
}

func loadTest(t *testing.T, opts ...Option) *Program {
	t.Helper()

	opts = append([]Option{WithFS(testFS())}, opts...)

	p, err := Load(t.Context(), []string{"main.ts"}, opts...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	return p
}

func TestEvaluateExpr_Values(t *testing.T) {
	p := loadTest(t)

	tests := []struct {
		expr string
		want string
	}{
		{`1 + 2`, `3`},
		{`'a' + 1`, `'a1'`},
		{"`${one}-${two}`", `'1-2'`},
		{`true && 'x'`, `'x'`},
		{`0 || 'y'`, `'y'`},
		{`null ?? 5`, `5`},
		{`false && nope`, `false`},
		{`1 || nope`, `1`},
		{`1 < 2 ? 'a' : nope`, `'a'`},
		{`typeof 'x'`, `'string'`},
		{`-'3'`, `-3`},
		{`~5`, `-6`},
		{`!0`, `true`},
		{`'1' == 1`, `true`},
		{`'1' === 1`, `false`},
		{`'a' in { a: 1 }`, `true`},
		{`2 in [1, 2]`, `true`},
		{`3 in null`, `false`},
		{`[1, , 3]`, `[ 1, undefined, 3 ]`},
		{`[...[1, 2], 3]`, `[ 1, 2, 3 ]`},
		{`({ a: 1, ...{ b: 2 } })`, `{ a: 1, b: 2 }`},
		{"({ [`k${1}`]: true })", `{ k1: true }`},
		{`({ one, two })`, `{ one: 1, two: 2 }`},
		{`({ b: 1, 2: 'x', a: 2, 1: 'y' })`, `{ '1': 'y', '2': 'x', b: 1, a: 2 }`},
		{`[1, 2, 3].map(x => x * 2)`, `[ 2, 4, 6 ]`},
		{`[1, 2, 3].reduce((a, b) => a + b, 0)`, `6`},
		{`[1, 2, 3].filter(x => x > 1).length`, `2`},
		{`[[1], [2, [3]]].flat()`, `[ 1, 2, [ 3 ] ]`},
		{`'abc'.toUpperCase()`, `'ABC'`},
		{`'a-b'.split('-')`, `[ 'a', 'b' ]`},
		{`'5'.padStart(3, '0')`, `'005'`},
		{`'😀'.length`, `2`},
		{`Math.max(1, 5, 3)`, `5`},
		{`Math.round(-2.5)`, `-2`},
		{`Object.keys({ b: 1, a: 2 })`, `[ 'b', 'a' ]`},
		{`Array.isArray([])`, `true`},
		{`Array(2)`, `[ undefined, undefined ]`},
		{`Array.from({ length: 2, 0: 'a' })`, `[ 'a', undefined ]`},
		{`Number.parseInt('0x1f')`, `31`},
		{`(0.1 + 0.2).toFixed(2)`, `'0.30'`},
		{`(2.5).toFixed(0)`, `'3'`},
		{`1e21`, `1e+21`},
		{`0.1 + 0.2`, `0.30000000000000004`},
		{`null?.a.b`, `undefined`},
		{`(x => x)?.(4)`, `4`},
		{`'x' as const`, `'x'`},
		{`((a, b = 2, ...rest) => [a, b, rest])(1, undefined, 3, 4)`, `[ 1, 2, [ 3, 4 ] ]`},
		{`(function () { const k = 3; return k * 2; })()`, `6`},
		{`(() => { })()`, `undefined`},
		{`(() => { const Math = 3; return Math; })()`, `3`},
		{`((x) => (() => { const x = 5; return x; })())(1)`, `5`},
		{`((x) => (() => x)())(1)`, `1`},
		{`((NaN) => NaN)(7)`, `7`},
		{`'isArray' in Array`, `true`},
		{`'keys' in Object`, `true`},
		{`'max' in Math`, `true`},
		{`'nope' in Object`, `false`},
		{`scale()`, `20`},
		{`scale(3)`, `3`},
		{`E.B`, `5`},
		{`E[6]`, `'C'`},
		{`outer(1)`, `4`},
		{`c`, `'deep'`},
		{`d.x`, `1`},
		{`ns.b`, `'deep'`},
		{`ns`, `{ b: 'deep' }`},
		{`theme`, `'dark'`},
		{`px(4)`, `'4px'`},
		{`compose({ a: 1 }, { b: 2 }, { a: 3 })`, `{ a: 3, b: 2 }`},
		{`transition('color', 200)`, `'color 200ms ease'`},
		{`button`, `{ padding: '4px', color: 'dark' }`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, s, err := p.EvaluateExpr(t.Context(), "main.ts", tt.expr, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s != nil {
				t.Fatalf("unexpected sentinel: %s", s)
			}

			if got := Inspect(v); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluateExpr_Sentinel(t *testing.T) {
	p := loadTest(t)

	tests := []struct {
		expr string
		want string
	}{
		{`nope`, `Unable to resolve identifier 'nope'`},
		{`declared`, `Unable to resolve identifier 'declared'`},
		{`missing`, `Unable to find the value declaration of imported symbol 'missing'`},
		{"tag`x`", `Tagged templates are not supported`},
		{`x++`, `-- or ++ expressions are not supported`},
		{`[...'ab']`, `Spread value could not be statically determined to be an array`},
		{`Math.max(...{})`, `Spread value could not be statically determined to be an array`},
		{`({ ...[1] })`, `Spread value could not be statically determined to be an object`},
		{`undefined.x`, `Cannot read property 'x' of undefined`},
		{`null.x`, `Cannot read property 'x' of null`},
		{`(5)()`, `Unable to evaluate (5) to a function`},
		{`(() => { for (const x of []) {} return 1; })()`, `functions with loops`},
		{`(() => { if (true) {} return 1; })()`, `functions with if statements`},
		{`(() => { return 1; return 2; })()`, `functions with multiple returns`},
		{`(() => { let a = 1; a = 2; return a; })()`, `functions with assignments`},
		{`(({ a }) => a)({ a: 1 })`, `destructured parameters`},
		{`new Date()`, `unsupported expression kind: NewExpression`},
		{`this`, `unsupported expression kind: ThisKeyword`},
		{`4 % 2`, `Unsupported binary operator`},
		{`void 0`, `Unsupported unary operator`},
		{`RegExp('a')`, `Regular expression values are not supported`},
		{`({ get a() { return 1; } })`, `Accessor properties are not supported`},
		{`[].reduce((a, b) => a)`, `Reduce of empty array with no initial value`},
		{`Array(4294967295).length`, `Invalid array length`},
		{`Array(-1)`, `Invalid array length`},
		{`Array.from({ length: 4294967295 })`, `Invalid array length`},
		{`((x = nope) => x)()`, `Unable to resolve identifier 'nope'`},
		{`loop()`, `Maximum evaluation depth`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, s, err := p.EvaluateExpr(t.Context(), "main.ts", tt.expr, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s == nil {
				t.Fatalf("expected sentinel, got %s", Inspect(v))
			}

			if !strings.Contains(s.Message, tt.want) {
				t.Errorf("got %q, want it to contain %q", s.Message, tt.want)
			}
		})
	}
}

func TestEvaluateExpr_UnusedDefaultSentinel(t *testing.T) {
	p := loadTest(t)

	v, s, err := p.EvaluateExpr(t.Context(), "main.ts", `((x = nope) => x)(7)`, nil)
	if err != nil || s != nil {
		t.Fatalf("unexpected failure: %v %v", err, s)
	}

	if got := Inspect(v); got != "7" {
		t.Errorf("got %s, want 7", got)
	}
}

func TestEvaluateExpr_Scope(t *testing.T) {
	p := loadTest(t)

	scope := Scope{"base": Number(99), "extra": String("e")}

	tests := []struct {
		expr string
		want string
	}{
		// defaults close over the defining scope, not the caller's
		{`scale()`, `20`},
		{`base`, `99`},
		{`extra + base`, `'e99'`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, s, err := p.EvaluateExpr(t.Context(), "main.ts", tt.expr, scope)
			if err != nil || s != nil {
				t.Fatalf("unexpected failure: %v %v", err, s)
			}

			if got := Inspect(v); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluateExport_ShadowsIntrinsic(t *testing.T) {
	fsys := fstest.MapFS{
		"shadow.ts": {Data: []byte(`
const Math = { max: (a, b) => 'mine' };
const isNaN = 'local';
export const v = Math.max(1, 2);
export const w = isNaN;
export const x = Number.isNaN(NaN);
`)},
	}

	p, err := Load(t.Context(), []string{"shadow.ts"}, WithFS(fsys))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"v", `'mine'`},
		{"w", `'local'`},
		{"x", `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, s, err := p.EvaluateExport(t.Context(), "shadow.ts", tt.name)
			if err != nil || s != nil {
				t.Fatalf("unexpected failure: %v %v", err, s)
			}

			if got := Inspect(v); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluateExport_Enum(t *testing.T) {
	p := loadTest(t)

	v, s, err := p.EvaluateExport(t.Context(), "main.ts", "E")
	if err != nil || s != nil {
		t.Fatalf("unexpected failure: %v %v", err, s)
	}

	want := `{ '0': 'A', '5': 'B', '6': 'C', A: 0, B: 5, C: 6 }`
	if got := Inspect(v); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEvaluateExport_NotFound(t *testing.T) {
	p := loadTest(t)

	_, _, err := p.EvaluateExport(t.Context(), "main.ts", "absent")
	if !errors.Is(err, ErrExportNotFound) {
		t.Errorf("got %v, want ErrExportNotFound", err)
	}

	_, _, err = p.EvaluateExport(t.Context(), "absent.ts", "x")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("got %v, want ErrModuleNotFound", err)
	}
}

func TestEvaluateExports(t *testing.T) {
	p := loadTest(t)

	bindings, err := p.EvaluateExports(t.Context(), "main.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, b := range bindings {
		names = append(names, b.Name)

		if (b.Value == nil) == (b.Sentinel == nil) {
			t.Errorf("%s: want exactly one of value and sentinel", b.Name)
		}
	}

	if got, want := strings.Join(names, ","), "scale,E,outer,button"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEvaluate_CyclicReexport(t *testing.T) {
	p := loadTest(t, WithMaxHops(4))

	v, s, err := p.EvaluateExport(t.Context(), "cycle.ts", "bad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s == nil {
		t.Fatalf("expected sentinel, got %s", Inspect(v))
	}

	if !strings.Contains(s.Message, "hop limit") {
		t.Errorf("got %q", s.Message)
	}
}

func TestEvaluate_EmbeddedModuleUnavailable(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"malformed", fstest.MapFS{"prestyle.ts": {Data: []byte(`export const = ;`)}}},
		{"missing entry", fstest.MapFS{"other.ts": {Data: []byte(`export const a = 1;`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := loadTest(t, WithHelpers(NewHelpers(tt.fsys, "prestyle.ts")))

			_, _, err := p.EvaluateExpr(t.Context(), "main.ts", `px(4)`, nil)
			if !errors.Is(err, ErrEmbeddedModule) {
				t.Errorf("got %v, want ErrEmbeddedModule", err)
			}

			// expressions that never touch the helpers are unaffected
			v, s, err := p.EvaluateExpr(t.Context(), "main.ts", `one + two`, nil)
			if err != nil || s != nil || Inspect(v) != "3" {
				t.Errorf("got %v %v %v", v, s, err)
			}
		})
	}
}

func TestEvaluate_Canceled(t *testing.T) {
	p := loadTest(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, _, err := p.EvaluateExpr(ctx, "main.ts", `loop()`, nil)
	if !errors.Is(err, ErrContextDone) {
		t.Errorf("got %v, want ErrContextDone", err)
	}
}

func TestSentinel_Diagnostic(t *testing.T) {
	p, err := Load(t.Context(), nil, WithFS(fstest.MapFS{}), WithSource("diag.ts", `
export const ok = 1;
export const bad = {
  size: runtimeValue,
};
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	_, s, err := p.EvaluateExport(t.Context(), "diag.ts", "bad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := s.Diagnostic()
	if d == nil {
		t.Fatal("expected diagnostic")
	}

	if d.Line != 3 || d.Source != "runtimeValue" || d.File != "diag.ts" {
		t.Errorf("got %+v", d)
	}
}

type fixedOracle map[string]string

func (o fixedOracle) StringLiteral(sym Symbol) (string, bool) {
	s, ok := o[sym.Name]

	return s, ok
}

func TestWithTypeOracle(t *testing.T) {
	p := loadTest(t, WithTypeOracle(fixedOracle{"declared": "light"}))

	v, s, err := p.EvaluateExpr(t.Context(), "main.ts", `declared`, nil)
	if err != nil || s != nil {
		t.Fatalf("unexpected failure: %v %v", err, s)
	}

	if got := Inspect(v); got != "'light'" {
		t.Errorf("got %s", got)
	}
}
