// Package lexer splits TypeScript-subset source text into tokens.
//
// The whole input is tokenized up front so the parser can look ahead
// arbitrarily, which arrow-function detection requires. Template literal
// substitutions are lexed recursively and attached to their template
// token. In .tsx sources a JSX element is kept as a single opaque token.
//
// [Tokenize] stops at the first lexical error. [Recover] instead replaces
// each malformed token with an ILLEGAL token running to the end of its
// line and carries on, so the parser can confine the damage to one
// statement.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/prestyle/lang/token"
)

// Error describes a lexical error at a source position.
type Error struct {
	File string
	Msg  string
	Pos  token.Position
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.File + ":" + strconv.Itoa(e.Pos.Line) + ":" +
		strconv.Itoa(e.Pos.Col) + ": " + e.Msg
}

// Lexer holds the scanning state for one source file.
type Lexer struct {
	name string
	src  string
	pos  int
	line int
	col  int
	jsx  bool
	nl   bool
	prev token.Kind

	recovering bool
	errs       []error
}

// New returns a lexer for src. JSX scanning is enabled when name ends
// in ".tsx" or ".jsx".
func New(name, src string) *Lexer {
	return &Lexer{
		name: name,
		src:  src,
		line: 1,
		col:  1,
		jsx:  strings.HasSuffix(name, ".tsx") || strings.HasSuffix(name, ".jsx"),
		prev: token.Illegal,
	}
}

// Tokenize lexes the complete input. The returned slice always ends with
// an EOF token when err is nil.
func Tokenize(name, src string) ([]token.Token, error) {
	return New(name, src).All()
}

// Recover lexes the complete input, replacing every malformed token with
// an ILLEGAL token. The returned slice always ends with an EOF token, and
// errs holds one error per ILLEGAL token, in order.
func Recover(name, src string) (toks []token.Token, errs []error) {
	l := New(name, src)
	l.recovering = true

	toks, _ = l.All()

	return toks, l.errs
}

// All lexes the remaining input.
func (l *Lexer) All() ([]token.Token, error) {
	toks, err := l.lex(false)
	if err != nil {
		return nil, err
	}

	return append(toks, token.Token{
		Kind:          token.EOF,
		Pos:           l.position(),
		End:           l.pos,
		NewlineBefore: l.nl,
	}), nil
}

func (l *Lexer) position() token.Position {
	return token.Position{Offset: l.pos, Line: l.line, Col: l.col}
}

func (l *Lexer) errorf(p token.Position, msg string) *Error {
	return &Error{File: l.name, Pos: p, Msg: msg}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return -1
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	return r
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}

	return l.src[l.pos+n]
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return -1
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *Lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

// lex scans tokens until EOF or, when inTemplate is set, until the
// closing brace of a template substitution (which it consumes).
func (l *Lexer) lex(inTemplate bool) ([]token.Token, error) {
	var (
		toks  []token.Token
		depth int
	)

	for {
		if err := l.skipTrivia(); err != nil {
			if !l.recovering || inTemplate {
				return nil, err
			}

			// an unterminated comment runs to the end of input
			l.errs = append(l.errs, err)

			return append(toks, token.Token{
				Kind:          token.Illegal,
				Pos:           l.position(),
				End:           l.pos,
				NewlineBefore: l.nl,
			}), nil
		}

		if l.pos >= len(l.src) {
			if inTemplate {
				return nil, l.errorf(l.position(), "unterminated template substitution")
			}

			return toks, nil
		}

		c := l.src[l.pos]

		if inTemplate {
			switch c {
			case '{':
				depth++
			case '}':
				if depth == 0 {
					l.advance()

					return toks, nil
				}

				depth--
			}
		}

		mark := *l

		tok, err := l.scan()
		if err != nil {
			if !l.recovering || inTemplate {
				return nil, err
			}

			*l = mark
			tok = l.illegal()
			l.errs = append(l.errs, err)
		}

		tok.NewlineBefore = l.nl
		l.nl = false
		l.prev = tok.Kind
		toks = append(toks, tok)
	}
}

// illegal consumes the rest of the current line as one ILLEGAL token.
func (l *Lexer) illegal() token.Token {
	start := l.position()

	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance()
	}

	return token.Token{Kind: token.Illegal, Text: l.src[start.Offset:l.pos], Pos: start, End: l.pos}
}

func (l *Lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == '\n':
			l.nl = true
			l.advance()

		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.advance()

		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}

		case c == '/' && l.peekAt(1) == '*':
			start := l.position()
			l.advanceN(2)

			for {
				if l.pos >= len(l.src) {
					return l.errorf(start, "unterminated block comment")
				}

				if l.src[l.pos] == '*' && l.peekAt(1) == '/' {
					l.advanceN(2)

					break
				}

				if l.src[l.pos] == '\n' {
					l.nl = true
				}

				l.advance()
			}

		default:
			r := l.peek()
			if r == 0xFEFF || r == 0x2028 || r == 0x2029 || unicode.IsSpace(r) {
				l.advance()

				continue
			}

			return nil
		}
	}

	return nil
}

// operandEnd reports whether the previous token ends an operand, in which
// case '/' is division and '<' is a comparison.
func (l *Lexer) operandEnd() bool {
	switch l.prev {
	case token.Ident, token.Number, token.String, token.Template,
		token.RegExp, token.JSX, token.RParen, token.RBrack, token.RBrace,
		token.This, token.True, token.False, token.Null, token.Inc, token.Dec:
		return true
	}

	return l.prev.Contextual()
}

func (l *Lexer) scan() (token.Token, error) {
	start := l.position()
	c := l.src[l.pos]

	mk := func(k token.Kind, n int) token.Token {
		l.advanceN(n)

		return token.Token{Kind: k, Text: l.src[start.Offset:l.pos], Pos: start, End: l.pos}
	}

	switch {
	case isIdentStart(l.peek()):
		return l.scanIdent(start), nil

	case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber(start)

	case c == '"' || c == '\'':
		return l.scanString(start)

	case c == '`':
		return l.scanTemplate(start)

	case c == '/' && !l.operandEnd():
		return l.scanRegExp(start)

	case c == '<' && l.jsx && !l.operandEnd() &&
		(isIdentStart(rune(l.peekAt(1))) || l.peekAt(1) == '>'):
		return l.scanJSX(start)
	}

	rest := l.src[l.pos:]

	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			// "?." followed by a digit is a conditional and a number.
			if op.kind == token.QDot && len(rest) > 2 && isDigit(rest[2]) {
				continue
			}

			return mk(op.kind, len(op.text)), nil
		}
	}

	return token.Token{}, l.errorf(start, "unexpected character "+strconv.QuoteRune(l.peek()))
}

type operator struct {
	text string
	kind token.Kind
}

// operators is ordered longest first so prefix matching is greedy.
var operators = []operator{
	{">>>=", token.AssignOp},
	{"...", token.Ellipsis},
	{"===", token.StrictEq},
	{"!==", token.StrictNeq},
	{"**=", token.AssignOp},
	{"<<=", token.AssignOp},
	{">>=", token.AssignOp},
	{">>>", token.UShr},
	{"&&=", token.AssignOp},
	{"||=", token.AssignOp},
	{"??=", token.AssignOp},
	{"=>", token.Arrow},
	{"==", token.Eq},
	{"!=", token.NotEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"??", token.QQ},
	{"?.", token.QDot},
	{"++", token.Inc},
	{"--", token.Dec},
	{"**", token.StarStar},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"+=", token.AssignOp},
	{"-=", token.AssignOp},
	{"*=", token.AssignOp},
	{"/=", token.AssignOp},
	{"%=", token.AssignOp},
	{"&=", token.AssignOp},
	{"|=", token.AssignOp},
	{"^=", token.AssignOp},
	{"(", token.LParen},
	{")", token.RParen},
	{"[", token.LBrack},
	{"]", token.RBrack},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{";", token.Semicolon},
	{",", token.Comma},
	{".", token.Dot},
	{"?", token.Question},
	{":", token.Colon},
	{"@", token.At},
	{"#", token.Hash},
	{"=", token.Assign},
	{"<", token.Lt},
	{">", token.Gt},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"&", token.Amp},
	{"|", token.Pipe},
	{"^", token.Caret},
	{"!", token.Not},
	{"~", token.Tilde},
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') || (r > utf8.RuneSelf && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') ||
		(r > utf8.RuneSelf && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)))
}

func (l *Lexer) scanIdent(start token.Position) token.Token {
	for l.pos < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}

	text := l.src[start.Offset:l.pos]

	return token.Token{Kind: token.Lookup(text), Text: text, Pos: start, End: l.pos}
}

func (l *Lexer) scanNumber(start token.Position) (token.Token, error) {
	digits := func(ok func(byte) bool) {
		for l.pos < len(l.src) && (ok(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.advance()
		}
	}

	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] | 0x20 {
		case 'x':
			l.advanceN(2)
			digits(isHex)

			return l.finishNumber(start)
		case 'o':
			l.advanceN(2)
			digits(func(c byte) bool { return c >= '0' && c <= '7' })

			return l.finishNumber(start)
		case 'b':
			l.advanceN(2)
			digits(func(c byte) bool { return c == '0' || c == '1' })

			return l.finishNumber(start)
		}
	}

	digits(isDigit)

	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.advance()
		digits(isDigit)
	}

	if l.pos < len(l.src) && l.src[l.pos]|0x20 == 'e' {
		save, line, col := l.pos, l.line, l.col

		l.advance()

		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.advance()
		}

		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			digits(isDigit)
		} else {
			l.pos, l.line, l.col = save, line, col
		}
	}

	return l.finishNumber(start)
}

func (l *Lexer) finishNumber(start token.Position) (token.Token, error) {
	// BigInt suffix is accepted and ignored.
	if l.pos < len(l.src) && l.src[l.pos] == 'n' {
		l.advance()
	}

	if l.pos < len(l.src) && isIdentStart(l.peek()) {
		return token.Token{}, l.errorf(start, "identifier starts immediately after numeric literal")
	}

	return token.Token{
		Kind: token.Number,
		Text: l.src[start.Offset:l.pos],
		Pos:  start,
		End:  l.pos,
	}, nil
}

func (l *Lexer) scanString(start token.Position) (token.Token, error) {
	quote := l.src[l.pos]
	l.advance()

	var b strings.Builder

	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return token.Token{}, l.errorf(start, "unterminated string literal")
		}

		c := l.src[l.pos]
		if c == quote {
			l.advance()

			break
		}

		if c == '\\' {
			if err := l.escape(&b); err != nil {
				return token.Token{}, err
			}

			continue
		}

		b.WriteRune(l.advance())
	}

	return token.Token{Kind: token.String, Text: b.String(), Pos: start, End: l.pos}, nil
}

// escape decodes one backslash escape sequence into b.
func (l *Lexer) escape(b *strings.Builder) error {
	at := l.position()
	l.advance() // backslash

	if l.pos >= len(l.src) {
		return l.errorf(at, "unterminated escape sequence")
	}

	c := l.advance()

	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			return l.errorf(at, "octal escape sequences are not allowed")
		}

		b.WriteByte(0)
	case '\r':
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.advance()
		}
	case '\n', 0x2028, 0x2029:
		// line continuation
	case 'x':
		if l.pos+2 > len(l.src) || !isHex(l.src[l.pos]) || !isHex(l.src[l.pos+1]) {
			return l.errorf(at, "invalid hexadecimal escape sequence")
		}

		v, _ := strconv.ParseUint(l.src[l.pos:l.pos+2], 16, 8)
		l.advanceN(2)
		b.WriteRune(rune(v))
	case 'u':
		r, err := l.unicodeEscape(at)
		if err != nil {
			return err
		}

		b.WriteRune(r)
	default:
		b.WriteRune(c)
	}

	return nil
}

func (l *Lexer) unicodeEscape(at token.Position) (rune, error) {
	if l.pos < len(l.src) && l.src[l.pos] == '{' {
		end := strings.IndexByte(l.src[l.pos:], '}')
		if end < 2 {
			return 0, l.errorf(at, "invalid unicode escape sequence")
		}

		v, err := strconv.ParseUint(l.src[l.pos+1:l.pos+end], 16, 32)
		if err != nil || v > unicode.MaxRune {
			return 0, l.errorf(at, "invalid unicode escape sequence")
		}

		l.advanceN(end + 1)

		return rune(v), nil
	}

	if l.pos+4 > len(l.src) {
		return 0, l.errorf(at, "invalid unicode escape sequence")
	}

	v, err := strconv.ParseUint(l.src[l.pos:l.pos+4], 16, 32)
	if err != nil {
		return 0, l.errorf(at, "invalid unicode escape sequence")
	}

	l.advanceN(4)

	// Combine a UTF-16 surrogate pair written as two escapes.
	if v >= 0xD800 && v < 0xDC00 && strings.HasPrefix(l.src[l.pos:], `\u`) &&
		l.pos+6 <= len(l.src) {
		lo, err := strconv.ParseUint(l.src[l.pos+2:l.pos+6], 16, 32)
		if err == nil && lo >= 0xDC00 && lo < 0xE000 {
			l.advanceN(6)

			return rune((v-0xD800)<<10 + (lo - 0xDC00) + 0x10000), nil
		}
	}

	return rune(v), nil
}

func (l *Lexer) scanTemplate(start token.Position) (token.Token, error) {
	l.advance() // backtick

	parts := &token.TemplateParts{}

	var b strings.Builder

	for {
		if l.pos >= len(l.src) {
			return token.Token{}, l.errorf(start, "unterminated template literal")
		}

		c := l.src[l.pos]

		switch {
		case c == '`':
			l.advance()

			parts.Quasis = append(parts.Quasis, b.String())

			return token.Token{
				Kind:     token.Template,
				Text:     l.src[start.Offset:l.pos],
				Pos:      start,
				End:      l.pos,
				Template: parts,
			}, nil

		case c == '\\':
			if err := l.escape(&b); err != nil {
				return token.Token{}, err
			}

		case c == '$' && l.peekAt(1) == '{':
			l.advanceN(2)

			parts.Quasis = append(parts.Quasis, b.String())
			b.Reset()

			prev, nl := l.prev, l.nl
			l.prev, l.nl = token.Illegal, false

			sub, err := l.lex(true)
			if err != nil {
				return token.Token{}, err
			}

			l.prev, l.nl = prev, nl
			parts.Subs = append(parts.Subs, sub)

		case c == '\r':
			// Template values normalize CRLF and CR to LF.
			l.advance()

			if l.pos < len(l.src) && l.src[l.pos] == '\n' {
				l.advance()
			}

			b.WriteByte('\n')

		default:
			b.WriteRune(l.advance())
		}
	}
}

func (l *Lexer) scanRegExp(start token.Position) (token.Token, error) {
	l.advance() // opening slash

	inClass := false

	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return token.Token{}, l.errorf(start, "unterminated regular expression literal")
		}

		c := l.src[l.pos]

		switch {
		case c == '\\':
			l.advanceN(2)

			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			l.advance()

			for l.pos < len(l.src) && isIdentPart(l.peek()) {
				l.advance()
			}

			return token.Token{
				Kind: token.RegExp,
				Text: l.src[start.Offset:l.pos],
				Pos:  start,
				End:  l.pos,
			}, nil
		}

		l.advance()
	}
}

func (l *Lexer) scanJSX(start token.Position) (token.Token, error) {
	if err := l.jsxElement(start); err != nil {
		return token.Token{}, err
	}

	return token.Token{
		Kind: token.JSX,
		Text: l.src[start.Offset:l.pos],
		Pos:  start,
		End:  l.pos,
	}, nil
}

// jsxElement consumes one element, including its children and closing tag.
func (l *Lexer) jsxElement(start token.Position) error {
	l.advance() // <

	for l.pos < len(l.src) && (isIdentPart(l.peek()) ||
		strings.IndexByte(".:-", l.src[l.pos]) >= 0) {
		l.advance()
	}

	// attributes
	for {
		if l.pos >= len(l.src) {
			return l.errorf(start, "unterminated JSX element")
		}

		switch c := l.src[l.pos]; {
		case c == '/' && l.peekAt(1) == '>':
			l.advanceN(2)

			return nil
		case c == '>':
			l.advance()

			return l.jsxChildren(start)
		case c == '{':
			if err := l.skipBalanced(start); err != nil {
				return err
			}
		case c == '"' || c == '\'':
			if _, err := l.scanString(l.position()); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}
}

func (l *Lexer) jsxChildren(start token.Position) error {
	for {
		if l.pos >= len(l.src) {
			return l.errorf(start, "unterminated JSX element")
		}

		switch c := l.src[l.pos]; {
		case c == '<' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '>' {
				l.advance()
			}

			if l.pos >= len(l.src) {
				return l.errorf(start, "unterminated JSX closing tag")
			}

			l.advance()

			return nil
		case c == '<':
			if err := l.jsxElement(l.position()); err != nil {
				return err
			}
		case c == '{':
			if err := l.skipBalanced(start); err != nil {
				return err
			}
		default:
			l.advance()
		}
	}
}

// skipBalanced consumes a brace-delimited JavaScript expression embedded
// in JSX, honoring nested braces and quoted strings.
func (l *Lexer) skipBalanced(start token.Position) error {
	depth := 0

	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				l.advance()

				return nil
			}
		case '"', '\'', '`':
			l.advance()

			for l.pos < len(l.src) && l.src[l.pos] != c {
				if l.src[l.pos] == '\\' {
					l.advance()
				}

				l.advance()
			}
		case '<':
			if isIdentStart(rune(l.peekAt(1))) {
				if err := l.jsxElement(l.position()); err != nil {
					return err
				}

				continue
			}
		}

		l.advance()
	}

	return l.errorf(start, "unbalanced braces in JSX expression")
}
