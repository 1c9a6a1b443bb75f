package parser

import (
	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/token"
)

// typeExprStop ends a type that follows as or satisfies inside an
// expression.
func typeExprStop(k token.Kind) bool {
	switch k {
	case token.RParen, token.RBrack, token.RBrace, token.Comma,
		token.Semicolon, token.Colon, token.Question, token.Assign,
		token.EOF, token.QQ, token.OrOr, token.AndAnd, token.Eq,
		token.NotEq, token.StrictEq, token.StrictNeq, token.Plus,
		token.Minus, token.Star, token.Slash, token.Gt, token.GtEq,
		token.LtEq, token.As, token.Satisfies, token.LParen:
		return true
	}

	return false
}

// typePrefix lists keywords after which another type is expected.
var typePrefix = map[string]bool{
	"keyof":    true,
	"typeof":   true,
	"readonly": true,
	"unique":   true,
	"infer":    true,
	"asserts":  true,
	"is":       true,
	"extends":  true,
	"new":      true,
}

// skipType consumes a type annotation. It stops before a token for which
// stop reports true when that token appears at nesting depth zero and
// cannot continue the type. A type made of exactly one string literal is
// recorded in the result.
func (p *parser) skipType(stop func(token.Kind) bool) *ast.TypeAnnot {
	first := p.i
	from := p.start()
	depth := 0
	expecting := true

loop:
	for !p.at(token.EOF) {
		t := p.cur()

		if depth == 0 && !expecting {
			if stop(t.Kind) {
				break
			}

			if t.NewlineBefore && !continuesType(t.Kind) {
				break
			}
		}

		switch t.Kind {
		case token.LParen, token.LBrack, token.LBrace, token.Lt:
			if depth == 0 && !expecting && t.Is(token.LBrace) {
				break loop
			}

			depth++
			expecting = true

		case token.RParen, token.RBrack, token.RBrace, token.Gt:
			if depth == 0 {
				break loop
			}

			depth--
			expecting = false

		case token.Shr:
			if depth < 2 {
				break loop
			}

			depth -= 2
			expecting = false

		case token.UShr:
			if depth < 3 {
				break loop
			}

			depth -= 3
			expecting = false

		case token.Pipe, token.Amp, token.Arrow, token.Comma, token.Colon,
			token.Question, token.Dot, token.Ellipsis, token.Assign,
			token.Extends, token.Typeof, token.New:
			expecting = true

		default:
			expecting = t.IsName() && typePrefix[t.Text]
		}

		p.next()
	}

	if p.i == first {
		p.fail("unexpected "+describe(p.cur()), "type")
	}

	a := &ast.TypeAnnot{Span: p.span(from)}
	a.Text = p.file.Text(a)

	if p.i == first+1 && p.toks[first].Is(token.String) {
		s := p.toks[first].Text
		a.StringLit = &s
	}

	return a
}

// continuesType reports whether a token at the start of a new line can
// extend the type that precedes it.
func continuesType(k token.Kind) bool {
	switch k {
	case token.Pipe, token.Amp, token.Dot, token.LBrack, token.Extends,
		token.Question:
		return true
	}

	return false
}

// typeParameters consumes a <...> type parameter list.
func (p *parser) typeParameters() {
	p.expect(token.Lt)
	p.skipType(func(k token.Kind) bool { return k == token.Gt })
	p.expect(token.Gt)
}

// matchAngle returns the index of the > closing the < at token index i,
// or -1 if the group does not look like a type list.
func (p *parser) matchAngle(i int) int {
	depth := 0

	for j := i; j < len(p.toks); j++ {
		switch p.toks[j].Kind {
		case token.Lt:
			depth++
		case token.Gt:
			depth--
			if depth == 0 {
				return j
			}
		case token.Shr:
			depth -= 2
			if depth == 0 {
				return j
			}

			if depth < 0 {
				return -1
			}
		case token.Semicolon, token.EOF, token.LBrace, token.RBrace,
			token.AndAnd, token.OrOr, token.Plus, token.Minus, token.Star,
			token.Slash, token.Assign, token.Arrow:
			return -1
		}
	}

	return -1
}

// typeArguments consumes f<T>(...) style type arguments when the tokens
// after < form a type list closed by > and followed by a call or a
// template. It reports whether anything was consumed.
func (p *parser) typeArguments() bool {
	end := p.matchAngle(p.i)
	if end < 0 {
		return false
	}

	if next := p.tokAt(end + 1); !next.Is(token.LParen) && !next.Is(token.Template) {
		return false
	}

	p.i = end + 1

	return true
}
