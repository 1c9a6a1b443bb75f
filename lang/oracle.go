package lang

import "github.com/ardnew/prestyle/lang/ast"

// TypeOracle answers static type questions the evaluator cannot settle
// from values alone.
type TypeOracle interface {
	// StringLiteral reports the value of sym when its type is provably a
	// single string literal.
	StringLiteral(sym Symbol) (string, bool)
}

// DeclaredTypes is the default [TypeOracle]. It trusts declarations only:
// a const (or ambient) variable whose annotation is one string literal
// type, or a const initialized by a plain string literal.
type DeclaredTypes struct{}

// StringLiteral implements [TypeOracle].
func (DeclaredTypes) StringLiteral(sym Symbol) (string, bool) {
	v, ok := sym.Decl.(*ast.VarSpec)
	if !ok || !(v.Const || v.Declare) {
		return "", false
	}

	if v.Type != nil && v.Type.StringLit != nil {
		return *v.Type.StringLit, true
	}

	if !v.Const {
		return "", false
	}

	switch x := v.Init.(type) {
	case *ast.StringLit:
		return x.Value, true
	case *ast.TemplateLit:
		if len(x.Exprs) == 0 {
			return x.Quasis[0], true
		}
	}

	return "", false
}
