// Package parser builds [ast] trees from TypeScript-subset source.
//
// The parser is a hand-written recursive-descent parser with Pratt-style
// operator precedence. It recovers from errors at statement granularity:
// a statement that fails to parse becomes an [ast.BadStmt] and the error
// is appended to [ast.File.Errors], so one malformed declaration never
// hides the rest of a module.
package parser

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/lexer"
	"github.com/ardnew/prestyle/lang/token"
	"github.com/ardnew/prestyle/log"
)

// Error is a syntax error at a source position.
type Error struct {
	File     string
	Msg      string
	Expected string
	Pos      token.Position
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := e.File + ":" + strconv.Itoa(e.Pos.Line) + ":" +
		strconv.Itoa(e.Pos.Col) + ": " + e.Msg
	if e.Expected != "" {
		s += " (expected " + e.Expected + ")"
	}

	return s
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("file", e.File),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Col),
		slog.String("message", e.Msg),
	}
	if e.Expected != "" {
		attrs = append(attrs, slog.String("expected", e.Expected))
	}

	return slog.GroupValue(attrs...)
}

// Option configures a parse.
type Option func(*parser)

// WithLogger sets the logger used for parse tracing.
func WithLogger(logger log.Logger) Option {
	return func(p *parser) { p.logger = logger }
}

type parser struct {
	file    *ast.File
	toks    []token.Token
	lexical map[int]error // by index of the ILLEGAL token
	i       int
	logger  log.Logger
}

// bailout carries a syntax error up to the nearest statement boundary.
type bailout struct{ err *Error }

// ParseFile parses a complete module. Lexical and syntax errors are
// collected in [ast.File.Errors], each spoiling only the statement it
// occurs in. The returned error is non-nil only when ctx is done.
func ParseFile(
	ctx context.Context,
	name, src string,
	opts ...Option,
) (*ast.File, error) {
	p := &parser{file: ast.NewFile(name, src)}
	for _, opt := range opts {
		opt(p)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse start",
		slog.String("file", name),
		slog.Int("source_length", len(src)),
	)

	toks, errs := lexer.Recover(name, src)
	p.toks = toks
	p.lexical = make(map[int]error, len(errs))

	for i, n := 0, 0; i < len(toks) && n < len(errs); i++ {
		if toks[i].Kind == token.Illegal {
			p.lexical[i] = errs[n]
			n++
		}
	}

	for !p.at(token.EOF) {
		p.file.Stmts = append(p.file.Stmts, p.safeStmt())
	}

	// malformed tokens skipped without being parsed still count
	for _, i := range slices.Sorted(maps.Keys(p.lexical)) {
		p.file.Errors = append(p.file.Errors, lexical(p.lexical[i]))
	}

	p.logger.TraceContext(ctx, "parse done",
		slog.String("file", name),
		slog.Int("statements", len(p.file.Stmts)),
		slog.Int("errors", len(p.file.Errors)),
	)

	return p.file, nil
}

// ParseExpr parses src as a single expression. The returned file holds
// the source for diagnostics.
func ParseExpr(
	ctx context.Context,
	name, src string,
	opts ...Option,
) (x ast.Expr, file *ast.File, err error) {
	p := &parser{file: ast.NewFile(name, src)}
	for _, opt := range opts {
		opt(p)
	}

	toks, err := lexer.Tokenize(name, src)
	if err != nil {
		return nil, nil, err
	}

	p.toks = toks

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}

			x, file, err = nil, nil, b.err
		}
	}()

	x = p.expression()
	p.eat(token.Semicolon)

	if !p.at(token.EOF) {
		p.fail("unexpected trailing input", "end of expression")
	}

	p.logger.TraceContext(ctx, "parse expression",
		slog.String("file", name),
		slog.String("kind", ast.KindName(x)),
	)

	return x, p.file, nil
}

// ---------------------------------------------------------------------
// token cursor

func (p *parser) cur() token.Token { return p.toks[p.i] }

func (p *parser) peek(n int) token.Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.i+n]
}

func (p *parser) at(k token.Kind) bool { return p.toks[p.i].Kind == k }

func (p *parser) next() token.Token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}

	return t
}

func (p *parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.next()

		return true
	}

	return false
}

func (p *parser) expect(k token.Kind) token.Token {
	if !p.at(k) {
		p.fail("unexpected "+describe(p.cur()), strconv.Quote(k.String()))
	}

	return p.next()
}

// start returns the offset of the current token.
func (p *parser) start() int { return p.cur().Pos.Offset }

// span returns a span from offset to the end of the last consumed token.
func (p *parser) span(from int) ast.Span {
	to := from
	if p.i > 0 {
		to = p.toks[p.i-1].End
	}

	if to < from {
		to = from
	}

	return ast.Span{From: from, To: to}
}

func (p *parser) fail(msg, expected string) {
	if err, ok := p.lexical[p.i]; ok {
		delete(p.lexical, p.i)
		panic(bailout{lexical(err)})
	}

	panic(bailout{&Error{
		File:     p.file.Name,
		Msg:      msg,
		Expected: expected,
		Pos:      p.cur().Pos,
	}})
}

// lexical converts an error from the lexer into a syntax error.
func lexical(err error) *Error {
	var le *lexer.Error
	if errors.As(err, &le) {
		return &Error{File: le.File, Msg: le.Msg, Pos: le.Pos}
	}

	return &Error{Msg: err.Error()}
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of input"
	case token.Ident:
		return "identifier " + strconv.Quote(t.Text)
	case token.String:
		return "string literal"
	case token.Number:
		return "number " + t.Text
	case token.Template:
		return "template literal"
	}

	return strconv.Quote(t.Text)
}

// name consumes an identifier-like token usable as a binding or
// property name.
func (p *parser) name() *ast.Ident {
	t := p.cur()
	if !t.IsName() {
		p.fail("unexpected "+describe(t), "identifier")
	}

	p.next()

	return &ast.Ident{Span: ast.Span{From: t.Pos.Offset, To: t.End}, Name: t.Text}
}

// binding consumes an identifier usable as a variable name. Reserved
// words are rejected but contextual keywords are accepted.
func (p *parser) binding() *ast.Ident {
	t := p.cur()
	if t.Kind != token.Ident && !t.Kind.Contextual() {
		p.fail("unexpected "+describe(t), "identifier")
	}

	return p.name()
}

// semi consumes a statement terminator, applying automatic semicolon
// insertion rules.
func (p *parser) semi() {
	if p.eat(token.Semicolon) {
		return
	}

	if p.at(token.RBrace) || p.at(token.EOF) || p.cur().NewlineBefore {
		return
	}

	p.fail("unexpected "+describe(p.cur()), `";"`)
}

// safeStmt parses one statement, converting a syntax error into a
// BadStmt and resynchronizing at the next statement boundary.
func (p *parser) safeStmt() (s ast.Stmt) {
	from := p.i

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}

			p.file.Errors = append(p.file.Errors, b.err)
			start := p.toks[from].Pos.Offset
			p.resync(from)
			s = &ast.BadStmt{Span: p.span(start), Err: b.err}
		}
	}()

	return p.stmt()
}

// resync advances past the failed statement that began at token index
// from. It stops after a top-level semicolon, before an unmatched closing
// brace, or before a token on a new line that can begin a declaration.
func (p *parser) resync(from int) {
	failed := p.i
	p.i = from
	depth := 0

	for !p.at(token.EOF) {
		t := p.cur()

		if p.i > from && p.i > failed && t.NewlineBefore {
			// import and export only appear at the top level, so they end
			// the failed statement even inside an unclosed group.
			if depth == 0 && startsStatement(t.Kind) ||
				t.Is(token.Import) || t.Is(token.Export) {
				return
			}
		}

		switch t.Kind {
		case token.LParen, token.LBrack, token.LBrace:
			depth++
		case token.RParen, token.RBrack, token.RBrace:
			if depth == 0 {
				if p.i == from {
					p.next()
				}

				return
			}

			depth--
		case token.Semicolon:
			if depth == 0 && p.i >= failed {
				p.next()

				return
			}
		}

		p.next()
	}
}

func startsStatement(k token.Kind) bool {
	switch k {
	case token.Import, token.Export, token.Const, token.Let, token.Var,
		token.Function, token.Enum, token.Type, token.Interface,
		token.Class, token.Declare, token.Return, token.If, token.For,
		token.While, token.Do, token.Switch, token.Try, token.Throw:
		return true
	}

	return false
}
