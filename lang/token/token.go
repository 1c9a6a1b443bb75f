// Package token defines the lexical tokens of the TypeScript subset
// understood by the evaluator.
package token

import "strconv"

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	Illegal Kind = iota
	EOF

	literalBegin
	Ident
	Number
	String
	Template
	RegExp
	JSX
	literalEnd

	operatorBegin
	LParen    // (
	RParen    // )
	LBrack    // [
	RBrack    // ]
	LBrace    // {
	RBrace    // }
	Semicolon // ;
	Comma     // ,
	Dot       // .
	Ellipsis  // ...
	Question  // ?
	QDot      // ?.
	QQ        // ??
	Colon     // :
	Arrow     // =>
	At        // @
	Hash      // #

	Assign     // =
	Eq         // ==
	StrictEq   // ===
	NotEq      // !=
	StrictNeq  // !==
	Lt         // <
	Gt         // >
	LtEq       // <=
	GtEq       // >=
	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	StarStar   // **
	Inc        // ++
	Dec        // --
	Shl        // <<
	Shr        // >>
	UShr       // >>>
	Amp        // &
	Pipe       // |
	Caret      // ^
	Not        // !
	Tilde      // ~
	AndAnd     // &&
	OrOr       // ||
	AssignOp   // +=, -=, ... (compound assignment, text carries operator)
	operatorEnd

	keywordBegin
	As
	Async
	Await
	Break
	Case
	Catch
	Class
	Const
	Continue
	Declare
	Default
	Delete
	Do
	Else
	Enum
	Export
	Extends
	False
	Finally
	For
	From
	Function
	If
	Import
	In
	Instanceof
	Interface
	Let
	Namespace
	New
	Null
	Of
	Return
	Satisfies
	Switch
	This
	Throw
	True
	Try
	Type
	Typeof
	Var
	Void
	While
	keywordEnd
)

var kindNames = [...]string{
	Illegal:  "ILLEGAL",
	EOF:      "EOF",
	Ident:    "IDENT",
	Number:   "NUMBER",
	String:   "STRING",
	Template: "TEMPLATE",
	RegExp:   "REGEXP",
	JSX:      "JSX",

	LParen:    "(",
	RParen:    ")",
	LBrack:    "[",
	RBrack:    "]",
	LBrace:    "{",
	RBrace:    "}",
	Semicolon: ";",
	Comma:     ",",
	Dot:       ".",
	Ellipsis:  "...",
	Question:  "?",
	QDot:      "?.",
	QQ:        "??",
	Colon:     ":",
	Arrow:     "=>",
	At:        "@",
	Hash:      "#",
	Assign:    "=",
	Eq:        "==",
	StrictEq:  "===",
	NotEq:     "!=",
	StrictNeq: "!==",
	Lt:        "<",
	Gt:        ">",
	LtEq:      "<=",
	GtEq:      ">=",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Percent:   "%",
	StarStar:  "**",
	Inc:       "++",
	Dec:       "--",
	Shl:       "<<",
	Shr:       ">>",
	UShr:      ">>>",
	Amp:       "&",
	Pipe:      "|",
	Caret:     "^",
	Not:       "!",
	Tilde:     "~",
	AndAnd:    "&&",
	OrOr:      "||",
	AssignOp:  "op=",

	As:         "as",
	Async:      "async",
	Await:      "await",
	Break:      "break",
	Case:       "case",
	Catch:      "catch",
	Class:      "class",
	Const:      "const",
	Continue:   "continue",
	Declare:    "declare",
	Default:    "default",
	Delete:     "delete",
	Do:         "do",
	Else:       "else",
	Enum:       "enum",
	Export:     "export",
	Extends:    "extends",
	False:      "false",
	Finally:    "finally",
	For:        "for",
	From:       "from",
	Function:   "function",
	If:         "if",
	Import:     "import",
	In:         "in",
	Instanceof: "instanceof",
	Interface:  "interface",
	Let:        "let",
	Namespace:  "namespace",
	New:        "new",
	Null:       "null",
	Of:         "of",
	Return:     "return",
	Satisfies:  "satisfies",
	Switch:     "switch",
	This:       "this",
	Throw:      "throw",
	True:       "true",
	Try:        "try",
	Type:       "type",
	Typeof:     "typeof",
	Var:        "var",
	Void:       "void",
	While:      "while",
}

// String returns the source spelling of operators and keywords and an
// upper-case class name for literals.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsLiteral reports whether k is an identifier or literal class.
func (k Kind) IsLiteral() bool { return literalBegin < k && k < literalEnd }

// IsOperator reports whether k is a punctuator.
func (k Kind) IsOperator() bool { return operatorBegin < k && k < operatorEnd }

// IsKeyword reports whether k is a reserved or contextual keyword.
func (k Kind) IsKeyword() bool { return keywordBegin < k && k < keywordEnd }

var keywords = func() map[string]Kind {
	m := make(map[string]Kind, keywordEnd-keywordBegin)
	for k := keywordBegin + 1; k < keywordEnd; k++ {
		m[kindNames[k]] = k
	}

	return m
}()

// Lookup maps an identifier spelling to its keyword kind, or [Ident].
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}

	return Ident
}

// Contextual reports whether a keyword kind may also be used as a plain
// identifier (property names, binding names and so on).
func (k Kind) Contextual() bool {
	switch k {
	case As, Async, Await, Declare, From, Namespace, Of, Satisfies, Type,
		Interface, Let:
		return true
	}

	return false
}

// Position is a location in a source file. Line and Col are one-based.
type Position struct {
	Offset int
	Line   int
	Col    int
}

// TemplateParts holds the cooked string chunks and the lexed
// substitutions of a template literal. len(Quasis) == len(Subs)+1.
type TemplateParts struct {
	Quasis []string
	Subs   [][]Token
}

// Token is one lexical unit.
type Token struct {
	Template      *TemplateParts
	Text          string // raw text, or cooked value for String
	Pos           Position
	End           int // byte offset one past the token
	Kind          Kind
	NewlineBefore bool
}

// Is reports whether t has kind k.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// IsName reports whether t may be used as a property or binding name:
// identifiers and every keyword.
func (t Token) IsName() bool { return t.Kind == Ident || t.Kind.IsKeyword() }
