package parser

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/token"
)

// Binding powers, lowest first.
const (
	precLowest = iota
	precCoalesce
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
)

var precedence = map[token.Kind]int{
	token.QQ:         precCoalesce,
	token.OrOr:       precOr,
	token.AndAnd:     precAnd,
	token.Pipe:       precBitOr,
	token.Caret:      precBitXor,
	token.Amp:        precBitAnd,
	token.Eq:         precEquality,
	token.NotEq:      precEquality,
	token.StrictEq:   precEquality,
	token.StrictNeq:  precEquality,
	token.Lt:         precRelational,
	token.Gt:         precRelational,
	token.LtEq:       precRelational,
	token.GtEq:       precRelational,
	token.In:         precRelational,
	token.Instanceof: precRelational,
	token.As:         precRelational,
	token.Satisfies:  precRelational,
	token.Shl:        precShift,
	token.Shr:        precShift,
	token.UShr:       precShift,
	token.Plus:       precAdditive,
	token.Minus:      precAdditive,
	token.Star:       precMultiplicative,
	token.Slash:      precMultiplicative,
	token.Percent:    precMultiplicative,
	token.StarStar:   precExponent,
}

// expression parses a comma-separated expression sequence.
func (p *parser) expression() ast.Expr {
	from := p.start()
	x := p.assign()

	if !p.at(token.Comma) {
		return x
	}

	list := []ast.Expr{x}
	for p.eat(token.Comma) {
		list = append(list, p.assign())
	}

	return &ast.SequenceExpr{Span: p.span(from), List: list}
}

// assign parses an assignment expression, which includes arrow
// functions.
func (p *parser) assign() ast.Expr {
	if fn := p.tryArrow(); fn != nil {
		return fn
	}

	from := p.start()
	x := p.conditional()

	switch t := p.cur(); t.Kind {
	case token.Assign, token.AssignOp:
		p.next()

		value := p.assign()

		return &ast.AssignExpr{Span: p.span(from), Target: x, Value: value, Op: t.Text}
	}

	return x
}

func (p *parser) conditional() ast.Expr {
	from := p.start()
	cond := p.binary(precLowest)

	if !p.eat(token.Question) {
		return cond
	}

	then := p.assign()
	p.expect(token.Colon)
	els := p.assign()

	return &ast.CondExpr{Span: p.span(from), Cond: cond, Then: then, Else: els}
}

func (p *parser) binary(min int) ast.Expr {
	from := p.start()
	x := p.unary()

	for {
		t := p.cur()

		prec, ok := precedence[t.Kind]
		if !ok || prec <= min {
			return x
		}

		if t.Is(token.As) || t.Is(token.Satisfies) {
			if t.NewlineBefore {
				return x
			}

			p.next()

			var typ string
			if p.eat(token.Const) {
				typ = "const"
			} else {
				typ = p.skipType(typeExprStop).Text
			}

			x = &ast.AsExpr{
				Span:      p.span(from),
				X:         x,
				Type:      typ,
				Satisfies: t.Is(token.Satisfies),
			}

			continue
		}

		p.next()

		var y ast.Expr
		if t.Is(token.StarStar) {
			y = p.binary(prec - 1) // right associative
		} else {
			y = p.binary(prec)
		}

		x = &ast.BinaryExpr{Span: p.span(from), X: x, Y: y, Op: t.Kind}
	}
}

func (p *parser) unary() ast.Expr {
	from := p.start()

	switch t := p.cur(); t.Kind {
	case token.Not, token.Tilde, token.Plus, token.Minus, token.Typeof,
		token.Void, token.Delete, token.Await:
		p.next()

		x := p.unary()

		return &ast.UnaryExpr{Span: p.span(from), X: x, Op: t.Kind}

	case token.Inc, token.Dec:
		p.next()

		x := p.unary()

		return &ast.UpdateExpr{Span: p.span(from), X: x, Op: t.Kind, Prefix: true}

	case token.Lt:
		// <T>expr type assertion
		p.next()
		typ := p.skipType(func(k token.Kind) bool { return k == token.Gt })
		p.expect(token.Gt)

		x := p.unary()

		return &ast.AsExpr{Span: p.span(from), X: x, Type: typ.Text}
	}

	x := p.callMember()

	if t := p.cur(); (t.Is(token.Inc) || t.Is(token.Dec)) && !t.NewlineBefore {
		p.next()

		return &ast.UpdateExpr{Span: p.span(from), X: x, Op: t.Kind}
	}

	return x
}

// callMember parses a primary expression followed by any member access,
// call, tagged template and non-null suffixes.
func (p *parser) callMember() ast.Expr {
	from := p.start()

	var x ast.Expr
	if p.at(token.New) {
		x = p.newExpr()
	} else {
		x = p.primary()
	}

	return p.suffixes(from, x, true)
}

func (p *parser) suffixes(from int, x ast.Expr, calls bool) ast.Expr {
	for {
		switch t := p.cur(); t.Kind {
		case token.Dot:
			p.next()

			private := p.eat(token.Hash)
			name := p.name()
			x = &ast.MemberExpr{Span: p.span(from), X: x, Name: name, Private: private}

		case token.QDot:
			if !calls {
				return x
			}

			p.next()

			switch {
			case p.at(token.LParen):
				args := p.arguments()
				x = &ast.CallExpr{Span: p.span(from), Fun: x, Args: args, Optional: true}
			case p.eat(token.LBrack):
				idx := p.expression()
				p.expect(token.RBrack)
				x = &ast.IndexExpr{Span: p.span(from), X: x, Index: idx, Optional: true}
			default:
				name := p.name()
				x = &ast.MemberExpr{Span: p.span(from), X: x, Name: name, Optional: true}
			}

		case token.LBrack:
			p.next()

			idx := p.expression()
			p.expect(token.RBrack)
			x = &ast.IndexExpr{Span: p.span(from), X: x, Index: idx}

		case token.LParen:
			if !calls {
				return x
			}

			args := p.arguments()
			x = &ast.CallExpr{Span: p.span(from), Fun: x, Args: args}

		case token.Template:
			quasi := p.template()
			x = &ast.TaggedTemplate{Span: p.span(from), Tag: x, Quasi: quasi}

		case token.Not:
			if t.NewlineBefore {
				return x
			}

			p.next()
			x = &ast.NonNullExpr{Span: p.span(from), X: x}

		case token.Lt:
			if !calls || !p.typeArguments() {
				return x
			}

		default:
			return x
		}
	}
}

func (p *parser) newExpr() ast.Expr {
	from := p.start()
	p.expect(token.New)

	if p.eat(token.Dot) {
		p.name() // new.target
		return &ast.NewExpr{Span: p.span(from)}
	}

	var callee ast.Expr
	if p.at(token.New) {
		callee = p.newExpr()
	} else {
		callee = p.primary()
	}

	callee = p.suffixes(from, callee, false)

	if p.at(token.Lt) {
		p.typeArguments()
	}

	var args []ast.Expr
	if p.at(token.LParen) {
		args = p.arguments()
	}

	return &ast.NewExpr{Span: p.span(from), Fun: callee, Args: args}
}

func (p *parser) arguments() []ast.Expr {
	p.expect(token.LParen)

	var args []ast.Expr

	for !p.at(token.RParen) && !p.at(token.EOF) {
		if p.at(token.Ellipsis) {
			from := p.start()
			p.next()
			x := p.assign()
			args = append(args, &ast.SpreadElement{Span: p.span(from), X: x})
		} else {
			args = append(args, p.assign())
		}

		if !p.eat(token.Comma) {
			break
		}
	}

	p.expect(token.RParen)

	return args
}

func (p *parser) primary() ast.Expr {
	t := p.cur()
	from := t.Pos.Offset
	sp := ast.Span{From: from, To: t.End}

	switch t.Kind {
	case token.Number:
		p.next()

		return &ast.NumberLit{Span: sp, Raw: t.Text, Value: p.number(t)}

	case token.String:
		p.next()

		return &ast.StringLit{Span: sp, Value: t.Text}

	case token.Template:
		return p.template()

	case token.True, token.False:
		p.next()

		return &ast.BoolLit{Span: sp, Value: t.Is(token.True)}

	case token.Null:
		p.next()

		return &ast.NullLit{Span: sp}

	case token.This:
		p.next()

		return &ast.ThisExpr{Span: sp}

	case token.RegExp:
		p.next()

		return &ast.RegExpLit{Span: sp, Raw: t.Text}

	case token.JSX:
		p.next()

		return &ast.JSXElement{Span: sp, Raw: t.Text}

	case token.LParen:
		p.next()

		x := p.expression()
		p.expect(token.RParen)

		return &ast.ParenExpr{Span: p.span(from), X: x}

	case token.LBrack:
		return p.arrayLit()

	case token.LBrace:
		return p.objectLit()

	case token.Function:
		return p.funcExpr(from, false)

	case token.Async:
		if n := p.peek(1); n.Is(token.Function) && !n.NewlineBefore {
			p.next()

			return p.funcExpr(from, true)
		}

	case token.Class:
		p.next()

		for !p.at(token.LBrace) && !p.at(token.EOF) {
			p.next()
		}

		p.skipGroup()

		return &ast.ClassExpr{Span: p.span(from)}

	case token.Import:
		p.next()

		return &ast.Ident{Span: sp, Name: "import"}
	}

	if t.Is(token.Ident) || t.Kind.Contextual() {
		p.next()

		return &ast.Ident{Span: sp, Name: t.Text}
	}

	p.fail("unexpected "+describe(t), "expression")

	return nil
}

func (p *parser) number(t token.Token) float64 {
	text := strings.TrimSuffix(strings.ReplaceAll(t.Text, "_", ""), "n")

	if len(text) > 2 && text[0] == '0' {
		base := 0

		switch text[1] | 0x20 {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}

		if base != 0 {
			if v, ok := new(big.Int).SetString(text[2:], base); ok {
				f, _ := new(big.Float).SetInt(v).Float64()

				return f
			}

			p.fail("malformed numeric literal "+strconv.Quote(t.Text), "number")
		}
	}

	// Out of range literals parse to ±Inf, which is what we want.
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.fail("malformed numeric literal "+strconv.Quote(t.Text), "number")
	}

	return f
}

// template parses the current template token, parsing each substitution
// with a sub-parser over its own token slice.
func (p *parser) template() *ast.TemplateLit {
	t := p.expect(token.Template)
	lit := &ast.TemplateLit{
		Span:   ast.Span{From: t.Pos.Offset, To: t.End},
		Quasis: t.Template.Quasis,
	}

	for _, sub := range t.Template.Subs {
		end := t.End
		if len(sub) > 0 {
			end = sub[len(sub)-1].End
		}

		toks := append(sub[:len(sub):len(sub)], token.Token{
			Kind: token.EOF,
			Pos:  token.Position{Offset: end},
			End:  end,
		})

		sp := &parser{file: p.file, toks: toks, logger: p.logger}
		if sp.at(token.EOF) {
			p.fail("empty template substitution", "expression")
		}

		x := sp.expression()
		if !sp.at(token.EOF) {
			sp.fail("unexpected "+describe(sp.cur()), `"}"`)
		}

		lit.Exprs = append(lit.Exprs, x)
	}

	return lit
}

func (p *parser) arrayLit() ast.Expr {
	from := p.start()
	p.expect(token.LBrack)

	var elems []ast.Expr

	for !p.at(token.RBrack) && !p.at(token.EOF) {
		switch {
		case p.at(token.Comma):
			t := p.cur()
			elems = append(elems, &ast.Omitted{Span: ast.Span{From: t.Pos.Offset, To: t.Pos.Offset}})
		case p.at(token.Ellipsis):
			efrom := p.start()
			p.next()
			x := p.assign()
			elems = append(elems, &ast.SpreadElement{Span: p.span(efrom), X: x})
		default:
			elems = append(elems, p.assign())
		}

		if !p.eat(token.Comma) {
			break
		}
	}

	p.expect(token.RBrack)

	return &ast.ArrayLit{Span: p.span(from), Elems: elems}
}

// propertyKey parses an object member or enum member name.
func (p *parser) propertyKey() ast.Node {
	t := p.cur()
	sp := ast.Span{From: t.Pos.Offset, To: t.End}

	switch {
	case t.Is(token.String):
		p.next()

		return &ast.StringLit{Span: sp, Value: t.Text}

	case t.Is(token.Number):
		p.next()

		return &ast.NumberLit{Span: sp, Raw: t.Text, Value: p.number(t)}

	case t.Is(token.LBrack):
		p.next()

		x := p.assign()
		p.expect(token.RBrack)

		return &ast.ComputedKey{Span: p.span(t.Pos.Offset), X: x}

	case t.Is(token.Hash):
		p.next()

		return p.name()

	case t.IsName():
		return p.name()
	}

	p.fail("unexpected "+describe(t), "property name")

	return nil
}

func (p *parser) objectLit() ast.Expr {
	from := p.start()
	p.expect(token.LBrace)

	var props []ast.Node

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		props = append(props, p.objectMember())

		if !p.eat(token.Comma) {
			break
		}
	}

	p.expect(token.RBrace)

	return &ast.ObjectLit{Span: p.span(from), Props: props}
}

// isKeyStart reports whether t can begin a property name.
func isKeyStart(t token.Token) bool {
	return t.IsName() || t.Is(token.String) || t.Is(token.Number) ||
		t.Is(token.LBrack) || t.Is(token.Hash)
}

func (p *parser) objectMember() ast.Node {
	from := p.start()

	if p.eat(token.Ellipsis) {
		x := p.assign()

		return &ast.SpreadElement{Span: p.span(from), X: x}
	}

	t := p.cur()

	// get/set accessors
	if t.Is(token.Ident) && (t.Text == "get" || t.Text == "set") && isKeyStart(p.peek(1)) {
		p.next()

		key := p.propertyKey()
		p.functionRest(p.start(), nil, false, false, false)

		return &ast.Accessor{Span: p.span(from), Key: key, Setter: t.Text == "set"}
	}

	async := false
	if t.Is(token.Async) && isKeyStart(p.peek(1)) && !p.peek(1).NewlineBefore {
		p.next()

		async = true
	}

	gen := p.eat(token.Star)
	key := p.propertyKey()

	p.eat(token.Question) // optional member marker in typed literals

	switch {
	case p.at(token.LParen) || p.at(token.Lt):
		var name *ast.Ident
		if id, ok := key.(*ast.Ident); ok {
			name = id
		}

		fn := p.functionRest(from, name, async, gen, false)

		return &ast.Property{Span: p.span(from), Key: key, Value: fn, Method: true}

	case p.eat(token.Colon):
		value := p.assign()

		return &ast.Property{Span: p.span(from), Key: key, Value: value}
	}

	id, ok := key.(*ast.Ident)
	if !ok {
		p.fail("unexpected "+describe(p.cur()), `":"`)
	}

	if p.at(token.Assign) {
		p.fail("shorthand property initializers are only valid in patterns", `":"`)
	}

	return &ast.Property{
		Span:      p.span(from),
		Key:       key,
		Value:     &ast.Ident{Span: id.Span, Name: id.Name},
		Shorthand: true,
	}
}

func (p *parser) funcExpr(from int, async bool) ast.Expr {
	p.expect(token.Function)
	gen := p.eat(token.Star)

	var name *ast.Ident
	if !p.at(token.LParen) && !p.at(token.Lt) {
		name = p.binding()
	}

	return p.functionRest(from, name, async, gen, false)
}

// functionRest parses type parameters, the parameter list, an optional
// return type and the body. Declarations may omit the body (overload
// signatures and ambient functions).
func (p *parser) functionRest(
	from int,
	name *ast.Ident,
	async, gen, decl bool,
) *ast.FuncLit {
	if p.at(token.Lt) {
		p.typeParameters()
	}

	params := p.parameters()

	if p.eat(token.Colon) {
		p.skipType(func(k token.Kind) bool {
			return k == token.LBrace || k == token.Semicolon || k == token.Comma ||
				k == token.RBrace
		})
	}

	fn := &ast.FuncLit{Name: name, Params: params, Async: async, Generator: gen}

	switch {
	case p.at(token.LBrace):
		fn.Body = p.block()
	case decl:
		p.semi()
	default:
		p.fail("unexpected "+describe(p.cur()), `"{"`)
	}

	fn.Span = p.span(from)

	return fn
}

func (p *parser) parameters() []*ast.Param {
	p.expect(token.LParen)

	var params []*ast.Param

	for !p.at(token.RParen) && !p.at(token.EOF) {
		params = append(params, p.parameter())

		if !p.eat(token.Comma) {
			break
		}
	}

	p.expect(token.RParen)

	return params
}

func (p *parser) parameter() *ast.Param {
	p.decorators()

	from := p.start()
	prm := &ast.Param{}

	// constructor parameter properties
	for p.at(token.Ident) && isModifier(p.cur().Text) && p.peek(1).IsName() {
		p.next()
	}

	prm.Rest = p.eat(token.Ellipsis)

	switch {
	case p.at(token.LBrace) || p.at(token.LBrack):
		pfrom := p.start()
		p.skipGroup()
		prm.Pattern = &ast.BadExpr{Span: p.span(pfrom)}
	case p.at(token.This):
		t := p.next()
		prm.Name = &ast.Ident{Span: ast.Span{From: t.Pos.Offset, To: t.End}, Name: "this"}
	default:
		prm.Name = p.binding()
	}

	p.eat(token.Question)

	if p.eat(token.Colon) {
		p.skipType(func(k token.Kind) bool {
			return k == token.Comma || k == token.RParen || k == token.Assign
		})
	}

	if p.eat(token.Assign) {
		prm.Default = p.assign()
	}

	prm.Span = p.span(from)

	return prm
}

func isModifier(s string) bool {
	switch s {
	case "public", "private", "protected", "readonly", "override":
		return true
	}

	return false
}

// tryArrow parses an arrow function when one starts at the current
// token, otherwise it consumes nothing and returns nil.
func (p *parser) tryArrow() ast.Expr {
	from := p.start()
	t := p.cur()
	async := false
	i := p.i

	if t.Is(token.Async) && !p.peek(1).NewlineBefore &&
		(p.peek(1).Is(token.LParen) || p.peek(1).Is(token.Ident) || p.peek(1).Is(token.Lt)) {
		async = true
		i++
	}

	switch k := p.toks[i]; {
	case (k.Is(token.Ident) || k.Kind.Contextual()) && p.tokAt(i+1).Is(token.Arrow) && !p.tokAt(i+1).NewlineBefore:
		if async {
			p.next()
		}

		name := p.binding()
		p.expect(token.Arrow)

		fn := &ast.FuncLit{
			Params: []*ast.Param{{Span: name.Span, Name: name}},
			Arrow:  true,
			Async:  async,
		}
		fn.Body = p.arrowBody()
		fn.Span = p.span(from)

		return fn

	case k.Is(token.LParen) && p.arrowParen(i):
		if async {
			p.next()
		}

	case k.Is(token.Lt):
		end := p.matchAngle(i)
		if end < 0 || !p.tokAt(end+1).Is(token.LParen) || !p.arrowParen(end+1) {
			return nil
		}

		if async {
			p.next()
		}

		p.typeParameters()

	default:
		return nil
	}

	params := p.parameters()

	if p.eat(token.Colon) {
		p.skipType(func(k token.Kind) bool { return k == token.Arrow })
	}

	if p.cur().NewlineBefore {
		p.fail("line terminator before arrow", `"=>"`)
	}

	p.expect(token.Arrow)

	fn := &ast.FuncLit{Params: params, Arrow: true, Async: async}
	fn.Body = p.arrowBody()
	fn.Span = p.span(from)

	return fn
}

func (p *parser) arrowBody() ast.Node {
	if p.at(token.LBrace) {
		return p.block()
	}

	return p.assign()
}

func (p *parser) tokAt(i int) token.Token {
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[i]
}

// arrowParen reports whether the parenthesized group starting at token
// index i is an arrow function parameter list.
func (p *parser) arrowParen(i int) bool {
	depth := 0
	j := i

	for ; j < len(p.toks); j++ {
		switch p.toks[j].Kind {
		case token.LParen, token.LBrack, token.LBrace:
			depth++
		case token.RParen, token.RBrack, token.RBrace:
			depth--
		case token.EOF:
			return false
		}

		if depth == 0 {
			break
		}
	}

	next := p.tokAt(j + 1)

	if next.Is(token.Arrow) {
		return !next.NewlineBefore
	}

	if !next.Is(token.Colon) {
		return false
	}

	// A return type annotation must be followed by => at depth zero.
	depth = 0

	for k := j + 2; k < len(p.toks); k++ {
		switch p.toks[k].Kind {
		case token.LParen, token.LBrack, token.LBrace, token.Lt:
			depth++
		case token.RParen, token.RBrack, token.RBrace, token.Gt:
			if depth == 0 {
				return false
			}

			depth--
		case token.Arrow:
			if depth == 0 {
				return true
			}
		case token.Semicolon, token.Assign, token.Comma, token.EOF:
			if depth == 0 {
				return false
			}
		}
	}

	return false
}
