// Package ast declares the syntax tree produced by the parser.
//
// Nodes are immutable once the parser returns them. Every node records
// the byte offsets of its first and one-past-last character so callers
// can recover the exact source text for diagnostics.
package ast

import (
	"errors"
	"sort"

	"github.com/ardnew/prestyle/lang/token"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() int
	End() int
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Span is the source extent of a node.
type Span struct {
	From int
	To   int
}

// Pos returns the offset of the first byte of the node.
func (s Span) Pos() int { return s.From }

// End returns the offset one past the last byte of the node.
func (s Span) End() int { return s.To }

// File is one parsed source unit.
type File struct {
	Name   string
	Source string
	Stmts  []Stmt
	Errors []error
	lines  []int
}

// NewFile returns a File for the given source with its line table built.
func NewFile(name, src string) *File {
	f := &File{Name: name, Source: src, lines: []int{0}}

	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}

	return f
}

// Line returns the zero-based line containing offset.
func (f *File) Line(offset int) int {
	return sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
}

// Text returns the source text spanned by n.
func (f *File) Text(n Node) string {
	from, to := n.Pos(), n.End()
	if from < 0 || to > len(f.Source) || from > to {
		return ""
	}

	return f.Source[from:to]
}

// ---------------------------------------------------------------------
// Expressions

type (
	// Ident is a name reference or binding.
	Ident struct {
		Span
		Name string
	}

	// NumberLit is a numeric literal; Value holds the parsed number.
	NumberLit struct {
		Span
		Raw   string
		Value float64
	}

	// StringLit is a string literal with escapes decoded.
	StringLit struct {
		Span
		Value string
	}

	// BoolLit is true or false.
	BoolLit struct {
		Span
		Value bool
	}

	// NullLit is null.
	NullLit struct{ Span }

	// TemplateLit is an untagged template; len(Quasis) == len(Exprs)+1.
	TemplateLit struct {
		Span
		Quasis []string
		Exprs  []Expr
	}

	// TaggedTemplate is a template literal preceded by a tag expression.
	TaggedTemplate struct {
		Span
		Tag   Expr
		Quasi *TemplateLit
	}

	// RegExpLit is a regular expression literal.
	RegExpLit struct {
		Span
		Raw string
	}

	// JSXElement is an element kept verbatim from a .tsx source.
	JSXElement struct {
		Span
		Raw string
	}

	// ArrayLit is an array literal; holes are [Omitted].
	ArrayLit struct {
		Span
		Elems []Expr
	}

	// Omitted is an elided array element.
	Omitted struct{ Span }

	// ObjectLit is an object literal.
	ObjectLit struct {
		Span
		Props []Node // *Property, *SpreadElement or *Accessor
	}

	// Property is a key/value member of an object literal. Key is one of
	// *Ident, *StringLit, *NumberLit or *ComputedKey.
	Property struct {
		Span
		Key       Node
		Value     Expr
		Shorthand bool
		Method    bool
	}

	// Accessor is a get or set member of an object literal.
	Accessor struct {
		Span
		Key    Node
		Setter bool
	}

	// ComputedKey is a bracketed property or member name.
	ComputedKey struct {
		Span
		X Expr
	}

	// FuncLit is a function expression, arrow function or the function
	// part of a declaration. Body is an Expr or a *BlockStmt.
	FuncLit struct {
		Span
		Name      *Ident
		Params    []*Param
		Body      Node
		Arrow     bool
		Async     bool
		Generator bool
	}

	// Param is a function parameter. Pattern is set instead of Name for
	// destructuring parameters.
	Param struct {
		Span
		Name    *Ident
		Pattern Node
		Default Expr
		Rest    bool
	}

	// UnaryExpr is a prefix operator expression, including typeof, void
	// and delete.
	UnaryExpr struct {
		Span
		X  Expr
		Op token.Kind
	}

	// UpdateExpr is ++ or -- in prefix or postfix position.
	UpdateExpr struct {
		Span
		X      Expr
		Op     token.Kind
		Prefix bool
	}

	// BinaryExpr is an infix operator expression, including logical
	// operators, in and instanceof.
	BinaryExpr struct {
		Span
		X  Expr
		Y  Expr
		Op token.Kind
	}

	// AssignExpr is a simple or compound assignment.
	AssignExpr struct {
		Span
		Target Expr
		Value  Expr
		Op     string
	}

	// CondExpr is cond ? then : else.
	CondExpr struct {
		Span
		Cond Expr
		Then Expr
		Else Expr
	}

	// ParenExpr is a parenthesized expression.
	ParenExpr struct {
		Span
		X Expr
	}

	// SpreadElement is ...X in array literals, object literals and
	// argument lists.
	SpreadElement struct {
		Span
		X Expr
	}

	// AsExpr is a type assertion (x as T) or satisfies check.
	AsExpr struct {
		Span
		X         Expr
		Type      string
		Satisfies bool
	}

	// NonNullExpr is the x! non-null assertion.
	NonNullExpr struct {
		Span
		X Expr
	}

	// MemberExpr is X.Name or X?.Name.
	MemberExpr struct {
		Span
		X        Expr
		Name     *Ident
		Optional bool
		Private  bool
	}

	// IndexExpr is X[Index] or X?.[Index].
	IndexExpr struct {
		Span
		X        Expr
		Index    Expr
		Optional bool
	}

	// CallExpr is Fun(Args) or Fun?.(Args).
	CallExpr struct {
		Span
		Fun      Expr
		Args     []Expr
		Optional bool
	}

	// NewExpr is new Fun(Args).
	NewExpr struct {
		Span
		Fun  Expr
		Args []Expr
	}

	// ThisExpr is this.
	ThisExpr struct{ Span }

	// ClassExpr is a class expression, kept opaque.
	ClassExpr struct{ Span }

	// SequenceExpr is a comma-separated expression list.
	SequenceExpr struct {
		Span
		List []Expr
	}

	// BadExpr stands in for an expression that failed to parse.
	BadExpr struct{ Span }
)

func (*Ident) exprNode()          {}
func (*NumberLit) exprNode()      {}
func (*StringLit) exprNode()      {}
func (*BoolLit) exprNode()        {}
func (*NullLit) exprNode()        {}
func (*TemplateLit) exprNode()    {}
func (*TaggedTemplate) exprNode() {}
func (*RegExpLit) exprNode()      {}
func (*JSXElement) exprNode()     {}
func (*ArrayLit) exprNode()       {}
func (*Omitted) exprNode()        {}
func (*ObjectLit) exprNode()      {}
func (*FuncLit) exprNode()        {}
func (*UnaryExpr) exprNode()      {}
func (*UpdateExpr) exprNode()     {}
func (*BinaryExpr) exprNode()     {}
func (*AssignExpr) exprNode()     {}
func (*CondExpr) exprNode()       {}
func (*ParenExpr) exprNode()      {}
func (*SpreadElement) exprNode()  {}
func (*AsExpr) exprNode()         {}
func (*NonNullExpr) exprNode()    {}
func (*MemberExpr) exprNode()     {}
func (*IndexExpr) exprNode()      {}
func (*CallExpr) exprNode()       {}
func (*NewExpr) exprNode()        {}
func (*ThisExpr) exprNode()       {}
func (*ClassExpr) exprNode()      {}
func (*SequenceExpr) exprNode()   {}
func (*BadExpr) exprNode()        {}

// ---------------------------------------------------------------------
// Statements and declarations

type (
	// ImportDecl is an import statement. Side-effect imports have no
	// bindings.
	ImportDecl struct {
		Span
		From      string
		Default   *ImportSpec
		Namespace *ImportSpec
		Specs     []*ImportSpec
		TypeOnly  bool
	}

	// ImportSpec binds one imported name. Imported is "default" for
	// default imports and "*" for namespace imports.
	ImportSpec struct {
		Span
		Local    *Ident
		Imported string
		From     string
	}

	// ExportNamed is export { a, b as c } with an optional from clause.
	ExportNamed struct {
		Span
		Specs    []*ExportSpec
		From     string
		TypeOnly bool
	}

	// ExportSpec is one entry of an export list. Local is the name in the
	// exporting (or re-exported) module, Exported the public name.
	ExportSpec struct {
		Span
		Local    string
		Exported string
		From     string
	}

	// ExportAll is export * from "m" or export * as ns from "m".
	ExportAll struct {
		Span
		From string
		As   string
	}

	// ExportDefault is export default <expression>.
	ExportDefault struct {
		Span
		X Expr
	}

	// VarDecl is a const, let or var statement.
	VarDecl struct {
		Span
		List     []*VarSpec
		Kind     token.Kind
		Exported bool
		Declare  bool
	}

	// VarSpec is one declarator. Pattern is set instead of Name for
	// destructuring declarators.
	VarSpec struct {
		Span
		Name    *Ident
		Pattern Node
		Type    *TypeAnnot
		Init    Expr
		Const   bool
		Declare bool
	}

	// TypeAnnot is a skipped type annotation. StringLit is non-nil when
	// the type is exactly one string literal type.
	TypeAnnot struct {
		Span
		StringLit *string
		Text      string
	}

	// FuncDecl is a function declaration.
	FuncDecl struct {
		Span
		Name     *Ident
		Func     *FuncLit
		Exported bool
		Default  bool
		Declare  bool
	}

	// EnumDecl is an enum declaration.
	EnumDecl struct {
		Span
		Name     *Ident
		Members  []*EnumMember
		Const    bool
		Declare  bool
		Exported bool
	}

	// EnumMember is one enum member. Key is *Ident, *StringLit,
	// *NumberLit or *ComputedKey.
	EnumMember struct {
		Span
		Key  Node
		Init Expr
	}

	// BlockStmt is a braced statement list.
	BlockStmt struct {
		Span
		List []Stmt
	}

	// ReturnStmt is return with an optional result.
	ReturnStmt struct {
		Span
		X Expr
	}

	// IfStmt is if/else.
	IfStmt struct {
		Span
		Cond Expr
		Then Stmt
		Else Stmt
	}

	// SwitchStmt is a switch; case bodies are flattened into Body.
	SwitchStmt struct {
		Span
		Tag  Expr
		Body []Stmt
	}

	// LoopStmt is any for, for-in, for-of, while or do-while loop.
	LoopStmt struct {
		Span
		Body Stmt
		Kind string
	}

	// TryStmt is try/catch/finally.
	TryStmt struct {
		Span
		Block   *BlockStmt
		Catch   *BlockStmt
		Finally *BlockStmt
	}

	// ThrowStmt is throw X.
	ThrowStmt struct {
		Span
		X Expr
	}

	// BranchStmt is break or continue.
	BranchStmt struct {
		Span
		Tok token.Kind
	}

	// ExprStmt is an expression used as a statement.
	ExprStmt struct {
		Span
		X Expr
	}

	// EmptyStmt is a lone semicolon.
	EmptyStmt struct{ Span }

	// OpaqueStmt is a construct the evaluator never looks inside, such as
	// type aliases, interfaces, classes and namespaces.
	OpaqueStmt struct {
		Span
		Keyword string
		Name    string
	}

	// BadStmt stands in for a statement that failed to parse.
	BadStmt struct {
		Span
		Err error
	}
)

func (*ImportDecl) stmtNode()    {}
func (*ExportNamed) stmtNode()   {}
func (*ExportAll) stmtNode()     {}
func (*ExportDefault) stmtNode() {}
func (*VarDecl) stmtNode()       {}
func (*FuncDecl) stmtNode()      {}
func (*EnumDecl) stmtNode()      {}
func (*BlockStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()    {}
func (*IfStmt) stmtNode()        {}
func (*SwitchStmt) stmtNode()    {}
func (*LoopStmt) stmtNode()      {}
func (*TryStmt) stmtNode()       {}
func (*ThrowStmt) stmtNode()     {}
func (*BranchStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()      {}
func (*EmptyStmt) stmtNode()     {}
func (*OpaqueStmt) stmtNode()    {}
func (*BadStmt) stmtNode()       {}

// Unparen strips any parentheses around x.
func Unparen(x Expr) Expr {
	for {
		p, ok := x.(*ParenExpr)
		if !ok {
			return x
		}

		x = p.X
	}
}

// Err joins the statement-level syntax errors recorded for f.
func (f *File) Err() error { return errors.Join(f.Errors...) }
