package parser_test

import (
	"slices"
	"testing"

	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/parser"
	"github.com/ardnew/prestyle/lang/token"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()

	f, err := parser.ParseFile(t.Context(), "test.ts", src)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	return f
}

func TestParseFile_Declarations(t *testing.T) {
	src := `
import { a, b as c, type T } from './x'
import d, * as ns from "./y";
import "./side-effect";
export const e = 1, f = 'two';
export default { g: 3 };
export function h(x: number = 2): number { return x }
export enum E { A, B = 5, C }
export * from './z';
export { e as ee } from './w';
type Alias = 'one' | 'two'
interface I { x: string }
declare const g: string;
`
	f := parse(t, src)

	if len(f.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", f.Err())
	}

	want := []string{
		"*ast.ImportDecl",
		"*ast.ImportDecl",
		"*ast.ImportDecl",
		"*ast.VarDecl",
		"*ast.ExportDefault",
		"*ast.FuncDecl",
		"*ast.EnumDecl",
		"*ast.ExportAll",
		"*ast.ExportNamed",
		"*ast.OpaqueStmt",
		"*ast.OpaqueStmt",
		"*ast.VarDecl",
	}

	if len(f.Stmts) != len(want) {
		t.Fatalf("got %d statements, want %d", len(f.Stmts), len(want))
	}

	for i, s := range f.Stmts {
		if got := typeName(s); got != want[i] {
			t.Errorf("stmt[%d] = %s, want %s", i, got, want[i])
		}
	}

	imp := f.Stmts[0].(*ast.ImportDecl)
	if len(imp.Specs) != 2 {
		t.Fatalf("import specs = %d, want 2 (type-only dropped)", len(imp.Specs))
	}

	if imp.Specs[1].Imported != "b" || imp.Specs[1].Local.Name != "c" {
		t.Errorf("spec = %s as %s, want b as c", imp.Specs[1].Imported, imp.Specs[1].Local.Name)
	}

	imp2 := f.Stmts[1].(*ast.ImportDecl)
	if imp2.Default == nil || imp2.Namespace == nil || imp2.Namespace.Local.Name != "ns" {
		t.Errorf("default/namespace import not recorded: %+v", imp2)
	}

	enum := f.Stmts[6].(*ast.EnumDecl)
	if len(enum.Members) != 3 || enum.Members[1].Init == nil {
		t.Errorf("enum members = %+v", enum.Members)
	}

	decl := f.Stmts[11].(*ast.VarDecl)
	if !decl.Declare || decl.List[0].Type == nil || decl.List[0].Type.Text != "string" {
		t.Errorf("declare const = %+v", decl.List[0])
	}
}

func typeName(n ast.Node) string {
	switch n.(type) {
	case *ast.ImportDecl:
		return "*ast.ImportDecl"
	case *ast.VarDecl:
		return "*ast.VarDecl"
	case *ast.ExportDefault:
		return "*ast.ExportDefault"
	case *ast.FuncDecl:
		return "*ast.FuncDecl"
	case *ast.EnumDecl:
		return "*ast.EnumDecl"
	case *ast.ExportAll:
		return "*ast.ExportAll"
	case *ast.ExportNamed:
		return "*ast.ExportNamed"
	case *ast.OpaqueStmt:
		return "*ast.OpaqueStmt"
	case *ast.BadStmt:
		return "*ast.BadStmt"
	}

	return "other"
}

func TestParseFile_TypeAnnotations(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		text    string
		literal string
	}{
		{"string literal", `const a: 'red' = x`, `'red'`, "red"},
		{"union", `const a: 'a' | 'b' = x`, `'a' | 'b'`, ""},
		{"generic", `const a: Map<string, Array<number>> = x`, `Map<string, Array<number>>`, ""},
		{"object", `const a: { x: number; y?: string } = x`, `{ x: number; y?: string }`, ""},
		{"function", `const a: (x: number) => string = x`, `(x: number) => string`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, tt.src)
			if len(f.Errors) != 0 {
				t.Fatalf("unexpected errors: %v", f.Err())
			}

			spec := f.Stmts[0].(*ast.VarDecl).List[0]
			if spec.Type == nil {
				t.Fatal("missing type annotation")
			}

			if spec.Type.Text != tt.text {
				t.Errorf("Text = %q, want %q", spec.Type.Text, tt.text)
			}

			switch {
			case tt.literal == "" && spec.Type.StringLit != nil:
				t.Errorf("StringLit = %q, want nil", *spec.Type.StringLit)
			case tt.literal != "" && (spec.Type.StringLit == nil || *spec.Type.StringLit != tt.literal):
				t.Errorf("StringLit mismatch, want %q", tt.literal)
			}

			if _, ok := spec.Init.(*ast.Ident); !ok {
				t.Errorf("Init = %T, want *ast.Ident", spec.Init)
			}
		})
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind string
	}{
		{"identifier", "a", "Identifier"},
		{"arithmetic", "1 + 2 * 3", "BinaryExpression"},
		{"conditional", "a ? b : c", "ConditionalExpression"},
		{"arrow single", "x => x + 1", "FunctionExpression"},
		{"arrow params", "(a, b = 2) => a", "FunctionExpression"},
		{"arrow typed", "(a: number): string => `${a}`", "FunctionExpression"},
		{"async arrow", "async (a) => a", "FunctionExpression"},
		{"call", "f(1, ...xs)", "CallExpression"},
		{"optional chain", "a?.b?.[c]?.(d)", "CallExpression"},
		{"member", "a.b.c", "PropertyAccessExpression"},
		{"index", "a['b']", "ElementAccessExpression"},
		{"template", "`a${b}c${d}`", "TemplateExpression"},
		{"tagged", "css`color: red`", "TaggedTemplateExpression"},
		{"object", "({ a, b: 1, [c]: 2, ...d, m() { return 1 } })", "ParenthesizedExpression"},
		{"array holes", "[1, , 3]", "ArrayLiteralExpression"},
		{"as const", "[1, 2] as const", "AsExpression"},
		{"satisfies", "x satisfies Foo", "AsExpression"},
		{"non-null", "a!", "NonNullExpression"},
		{"generic call", "f<string>(x)", "CallExpression"},
		{"typeof", "typeof x", "PrefixUnaryExpression"},
		{"new", "new Date()", "NewExpression"},
		{"regexp", "/ab+c/gi", "RegularExpressionLiteral"},
		{"coalesce", "a ?? b", "BinaryExpression"},
		{"assign", "a = 1", "AssignmentExpression"},
		{"sequence", "a, b", "CommaListExpression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, _, err := parser.ParseExpr(t.Context(), "expr.ts", tt.src)
			if err != nil {
				t.Fatalf("ParseExpr(%q) error = %v", tt.src, err)
			}

			if got := ast.KindName(x); got != tt.kind {
				t.Errorf("ParseExpr(%q) = %s, want %s", tt.src, got, tt.kind)
			}
		})
	}
}

func TestParseExpr_Precedence(t *testing.T) {
	x, _, err := parser.ParseExpr(t.Context(), "expr.ts", "a || b && c + d * e")
	if err != nil {
		t.Fatal(err)
	}

	or, ok := x.(*ast.BinaryExpr)
	if !ok || or.Op != token.OrOr {
		t.Fatalf("root = %T, want || expression", x)
	}

	and, ok := or.Y.(*ast.BinaryExpr)
	if !ok || and.Op != token.AndAnd {
		t.Fatalf("rhs = %T, want && expression", or.Y)
	}

	add, ok := and.Y.(*ast.BinaryExpr)
	if !ok || add.Op != token.Plus {
		t.Fatalf("&& rhs = %T, want + expression", and.Y)
	}

	if mul, ok := add.Y.(*ast.BinaryExpr); !ok || mul.Op != token.Star {
		t.Fatalf("+ rhs = %T, want * expression", add.Y)
	}
}

func TestParseExpr_Numbers(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"42", 42},
		{"1_000", 1000},
		{"0x1F", 31},
		{"0b101", 5},
		{"0o17", 15},
		{"1.5e3", 1500},
		{".5", 0.5},
		{"10n", 10},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			x, _, err := parser.ParseExpr(t.Context(), "n.ts", tt.src)
			if err != nil {
				t.Fatal(err)
			}

			lit, ok := x.(*ast.NumberLit)
			if !ok {
				t.Fatalf("got %T, want *ast.NumberLit", x)
			}

			if lit.Value != tt.want {
				t.Errorf("Value = %v, want %v", lit.Value, tt.want)
			}
		})
	}
}

func TestParseFile_Recovery(t *testing.T) {
	src := `
export const ok1 = 1;
export const broken = (1 + ;
export const ok2 = 2;
`
	f := parse(t, src)

	if len(f.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(f.Errors), f.Err())
	}

	var names []string

	for _, s := range f.Stmts {
		if d, ok := s.(*ast.VarDecl); ok {
			names = append(names, d.List[0].Name.Name)
		}
	}

	if len(names) != 2 || names[0] != "ok1" || names[1] != "ok2" {
		t.Errorf("recovered declarations = %v, want [ok1 ok2]", names)
	}

	perr, ok := f.Errors[0].(*parser.Error)
	if !ok {
		t.Fatalf("error type = %T, want *parser.Error", f.Errors[0])
	}

	if perr.Pos.Line != 3 {
		t.Errorf("error line = %d, want 3", perr.Pos.Line)
	}
}

func TestParseFile_LexicalRecovery(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  string
		names []string
	}{
		{
			"template",
			"export const a = 1;\nexport const u = `${x;\nexport const w = 2;\n",
			"unterminated template substitution",
			[]string{"a", "w"},
		},
		{
			"string",
			"export const u = 'open\nexport const w = 2;\n",
			"unterminated string literal",
			[]string{"w"},
		},
		{
			"character",
			"export const u = 1 ¤;\nexport const w = 2;\n",
			"unexpected character",
			[]string{"w"},
		},
		{
			"comment",
			"export const w = 2;\n/* open\n",
			"unterminated block comment",
			[]string{"w"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, tt.src)

			if len(f.Errors) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(f.Errors), f.Err())
			}

			if perr, ok := f.Errors[0].(*parser.Error); !ok || perr.Msg != tt.want {
				t.Errorf("error = %v, want %q", f.Errors[0], tt.want)
			}

			var names []string

			for _, s := range f.Stmts {
				if d, ok := s.(*ast.VarDecl); ok {
					names = append(names, d.List[0].Name.Name)
				}
			}

			if !slices.Equal(names, tt.names) {
				t.Errorf("recovered declarations = %v, want %v", names, tt.names)
			}
		})
	}
}

func TestParseFile_Statements(t *testing.T) {
	src := `
function f(x) {
  if (x) { return 1 } else return 2
  for (const k of xs) {}
  while (x) x--
  switch (x) { case 1: break; default: return 3 }
  try { g() } catch (e) { } finally { }
  label: for (;;) break label
  return
}
class C { m() { return 1 } }
abstract class D {}
namespace N { export const x = 1 }
`
	f := parse(t, src)
	if len(f.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", f.Err())
	}

	fn := f.Stmts[0].(*ast.FuncDecl)
	body := fn.Func.Body.(*ast.BlockStmt)

	var kinds []string

	ast.WalkStmts(body.List, func(s ast.Stmt) bool {
		switch s := s.(type) {
		case *ast.IfStmt:
			kinds = append(kinds, "if")
		case *ast.LoopStmt:
			kinds = append(kinds, s.Kind)
		case *ast.SwitchStmt:
			kinds = append(kinds, "switch")
		case *ast.TryStmt:
			kinds = append(kinds, "try")
		}

		return true
	})

	want := []string{"if", "for-of", "while", "switch", "try", "for"}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}

	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}

	for i, kw := range []string{"class", "class", "namespace"} {
		o, ok := f.Stmts[i+1].(*ast.OpaqueStmt)
		if !ok || o.Keyword != kw {
			t.Errorf("stmt[%d] = %T, want opaque %s", i+1, f.Stmts[i+1], kw)
		}
	}
}
