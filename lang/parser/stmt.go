package parser

import (
	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/token"
)

func (p *parser) stmt() ast.Stmt {
	t := p.cur()

	switch t.Kind {
	case token.LBrace:
		return p.block()

	case token.Semicolon:
		p.next()

		return &ast.EmptyStmt{Span: ast.Span{From: t.Pos.Offset, To: t.End}}

	case token.At:
		p.decorators()

		return p.stmt()

	case token.Import:
		if k := p.peek(1).Kind; k == token.LParen || k == token.Dot {
			return p.exprStmt()
		}

		return p.importDecl()

	case token.Export:
		return p.exportDecl()

	case token.Const:
		if p.peek(1).Is(token.Enum) {
			return p.enumDecl(t.Pos.Offset, false)
		}

		return p.varDecl(t.Pos.Offset, false)

	case token.Var:
		return p.varDecl(t.Pos.Offset, false)

	case token.Let:
		if k := p.peek(1); k.IsName() || k.Is(token.LBrace) || k.Is(token.LBrack) {
			return p.varDecl(t.Pos.Offset, false)
		}

	case token.Function:
		return p.funcDecl(t.Pos.Offset, false)

	case token.Async:
		if n := p.peek(1); n.Is(token.Function) && !n.NewlineBefore {
			return p.funcDecl(t.Pos.Offset, false)
		}

	case token.Enum:
		return p.enumDecl(t.Pos.Offset, false)

	case token.Declare:
		if !p.peek(1).NewlineBefore && p.peek(1).IsName() {
			return p.declared(t.Pos.Offset, false)
		}

	case token.Type:
		if n := p.peek(1); n.IsName() && !n.NewlineBefore {
			return p.opaque(t.Pos.Offset, false)
		}

	case token.Interface, token.Namespace:
		if n := p.peek(1); n.IsName() && !n.NewlineBefore {
			return p.opaque(t.Pos.Offset, true)
		}

	case token.Class:
		return p.opaque(t.Pos.Offset, true)

	case token.Ident:
		n := p.peek(1)

		switch {
		case t.Text == "abstract" && n.Is(token.Class),
			t.Text == "module" && !n.NewlineBefore && (n.IsName() || n.Is(token.String)),
			t.Text == "global" && n.Is(token.LBrace):
			return p.opaque(t.Pos.Offset, true)

		case p.peek(1).Is(token.Colon):
			// labeled statement; the label is irrelevant here
			p.next()
			p.next()

			return p.stmt()
		}

	case token.Return:
		p.next()

		var x ast.Expr
		if !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) &&
			!p.cur().NewlineBefore {
			x = p.expression()
		}

		p.semi()

		return &ast.ReturnStmt{Span: p.span(t.Pos.Offset), X: x}

	case token.If:
		p.next()
		p.expect(token.LParen)
		cond := p.expression()
		p.expect(token.RParen)

		then := p.stmt()

		var els ast.Stmt
		if p.eat(token.Else) {
			els = p.stmt()
		}

		return &ast.IfStmt{Span: p.span(t.Pos.Offset), Cond: cond, Then: then, Else: els}

	case token.For:
		p.next()
		p.eat(token.Await)

		kind := p.loopHeader()
		body := p.stmt()

		return &ast.LoopStmt{Span: p.span(t.Pos.Offset), Kind: kind, Body: body}

	case token.While:
		p.next()
		p.expect(token.LParen)
		p.expression()
		p.expect(token.RParen)

		body := p.stmt()

		return &ast.LoopStmt{Span: p.span(t.Pos.Offset), Kind: "while", Body: body}

	case token.Do:
		p.next()

		body := p.stmt()

		p.expect(token.While)
		p.expect(token.LParen)
		p.expression()
		p.expect(token.RParen)
		p.eat(token.Semicolon)

		return &ast.LoopStmt{Span: p.span(t.Pos.Offset), Kind: "do", Body: body}

	case token.Switch:
		return p.switchStmt()

	case token.Try:
		return p.tryStmt()

	case token.Throw:
		p.next()

		x := p.expression()
		p.semi()

		return &ast.ThrowStmt{Span: p.span(t.Pos.Offset), X: x}

	case token.Break, token.Continue:
		p.next()

		if p.at(token.Ident) && !p.cur().NewlineBefore {
			p.next()
		}

		p.semi()

		return &ast.BranchStmt{Span: p.span(t.Pos.Offset), Tok: t.Kind}
	}

	return p.exprStmt()
}

func (p *parser) exprStmt() ast.Stmt {
	from := p.start()
	x := p.expression()
	p.semi()

	return &ast.ExprStmt{Span: p.span(from), X: x}
}

func (p *parser) block() *ast.BlockStmt {
	from := p.start()
	p.expect(token.LBrace)

	var list []ast.Stmt
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		list = append(list, p.safeStmt())
	}

	p.expect(token.RBrace)

	return &ast.BlockStmt{Span: p.span(from), List: list}
}

func (p *parser) decorators() {
	for p.eat(token.At) {
		p.callMember()
	}
}

// loopHeader consumes a parenthesized for header and reports which loop
// form it describes.
func (p *parser) loopHeader() string {
	p.expect(token.LParen)

	kind := "for"
	depth := 0

	for !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.LParen, token.LBrack, token.LBrace:
			depth++
		case token.RParen, token.RBrack, token.RBrace:
			if depth == 0 {
				p.expect(token.RParen)

				return kind
			}

			depth--
		case token.In:
			if depth == 0 && kind == "for" {
				kind = "for-in"
			}
		case token.Of:
			if depth == 0 && kind == "for" {
				kind = "for-of"
			}
		}

		p.next()
	}

	p.fail("unterminated for header", `")"`)

	return kind
}

func (p *parser) switchStmt() ast.Stmt {
	from := p.start()
	p.expect(token.Switch)
	p.expect(token.LParen)
	tag := p.expression()
	p.expect(token.RParen)
	p.expect(token.LBrace)

	var body []ast.Stmt

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch {
		case p.eat(token.Case):
			p.expression()
			p.expect(token.Colon)
		case p.eat(token.Default):
			p.expect(token.Colon)
		default:
			body = append(body, p.safeStmt())
		}
	}

	p.expect(token.RBrace)

	return &ast.SwitchStmt{Span: p.span(from), Tag: tag, Body: body}
}

func (p *parser) tryStmt() ast.Stmt {
	from := p.start()
	p.expect(token.Try)

	s := &ast.TryStmt{Block: p.block()}

	if p.eat(token.Catch) {
		if p.eat(token.LParen) {
			p.skipBalanced(token.LParen, token.RParen, 1)
		}

		s.Catch = p.block()
	}

	if p.eat(token.Finally) {
		s.Finally = p.block()
	}

	s.Span = p.span(from)

	return s
}

// skipBalanced consumes tokens until the open/close nesting that started
// with depth unmatched openers returns to zero.
func (p *parser) skipBalanced(open, close token.Kind, depth int) {
	for depth > 0 {
		switch {
		case p.at(token.EOF):
			p.fail("unbalanced "+open.String(), quoteKind(close))
		case p.at(open):
			depth++
		case p.at(close):
			depth--
		}

		p.next()
	}
}

func quoteKind(k token.Kind) string { return `"` + k.String() + `"` }

// skipGroup consumes one balanced (), [] or {} group starting at the
// current token.
func (p *parser) skipGroup() {
	open := p.cur().Kind

	var closer token.Kind

	switch open {
	case token.LParen:
		closer = token.RParen
	case token.LBrack:
		closer = token.RBrack
	case token.LBrace:
		closer = token.RBrace
	default:
		p.next()

		return
	}

	p.next()
	p.skipBalanced(open, closer, 1)
}

// opaque consumes a statement the evaluator treats as a black box. With
// body set, the statement ends at its first top-level braced block
// (class, interface, namespace); otherwise it ends like a type alias.
func (p *parser) opaque(from int, body bool) ast.Stmt {
	kw := p.next()
	if kw.Text == "abstract" {
		kw = p.next()
	}

	var name string
	if p.cur().IsName() {
		name = p.cur().Text
	} else if p.at(token.String) {
		name = p.cur().Text
	}

	if body {
		for !p.at(token.LBrace) && !p.at(token.EOF) {
			if p.at(token.LParen) || p.at(token.LBrack) {
				p.skipGroup()

				continue
			}

			p.next()
		}

		if p.at(token.LBrace) {
			p.skipGroup()
		} else {
			p.fail("unexpected end of input", `"{"`)
		}

		p.eat(token.Semicolon)
	} else {
		p.next() // name
		p.skipType(func(k token.Kind) bool { return k == token.Semicolon })
		p.eat(token.Semicolon)
	}

	return &ast.OpaqueStmt{Span: p.span(from), Keyword: kw.Text, Name: name}
}

// declared parses a statement that follows the declare keyword.
func (p *parser) declared(from int, exported bool) ast.Stmt {
	p.expect(token.Declare)

	switch t := p.cur(); t.Kind {
	case token.Const, token.Let, token.Var:
		if t.Is(token.Const) && p.peek(1).Is(token.Enum) {
			s := p.enumDecl(from, exported)
			s.(*ast.EnumDecl).Declare = true

			return s
		}

		s := p.varDecl(from, exported)

		d, _ := s.(*ast.VarDecl)
		d.Declare = true

		for _, v := range d.List {
			v.Declare = true
		}

		return d

	case token.Function, token.Async:
		s := p.funcDecl(from, exported)
		s.(*ast.FuncDecl).Declare = true

		return s

	case token.Enum:
		s := p.enumDecl(from, exported)
		s.(*ast.EnumDecl).Declare = true

		return s

	case token.Type:
		return p.opaque(from, false)
	}

	return p.opaque(from, true)
}

func (p *parser) varDecl(from int, exported bool) ast.Stmt {
	kind := p.next().Kind
	d := &ast.VarDecl{Kind: kind, Exported: exported}

	for {
		d.List = append(d.List, p.varSpec(kind == token.Const))

		if !p.eat(token.Comma) {
			break
		}
	}

	p.semi()
	d.Span = p.span(from)

	return d
}

func (p *parser) varSpec(isConst bool) *ast.VarSpec {
	from := p.start()
	v := &ast.VarSpec{Const: isConst}

	if p.at(token.LBrace) || p.at(token.LBrack) {
		pfrom := p.start()
		p.skipGroup()
		v.Pattern = &ast.BadExpr{Span: p.span(pfrom)}
	} else {
		v.Name = p.binding()
	}

	p.eat(token.Not) // definite assignment assertion

	if p.eat(token.Colon) {
		v.Type = p.skipType(func(k token.Kind) bool {
			return k == token.Assign || k == token.Semicolon || k == token.Comma ||
				k == token.RParen || k == token.In || k == token.Of
		})
	}

	if p.eat(token.Assign) {
		v.Init = p.assign()
	}

	v.Span = p.span(from)

	return v
}

func (p *parser) funcDecl(from int, exported bool) ast.Stmt {
	async := p.eat(token.Async)
	p.expect(token.Function)
	gen := p.eat(token.Star)

	var name *ast.Ident
	if !p.at(token.LParen) && !p.at(token.Lt) {
		name = p.binding()
	}

	fn := p.functionRest(from, name, async, gen, true)

	return &ast.FuncDecl{
		Span:     p.span(from),
		Name:     name,
		Func:     fn,
		Exported: exported,
		Declare:  fn.Body == nil,
	}
}

func (p *parser) enumDecl(from int, exported bool) ast.Stmt {
	isConst := p.eat(token.Const)
	p.expect(token.Enum)

	d := &ast.EnumDecl{Name: p.binding(), Const: isConst, Exported: exported}

	p.expect(token.LBrace)

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		mfrom := p.start()
		m := &ast.EnumMember{Key: p.propertyKey()}

		if p.eat(token.Assign) {
			m.Init = p.assign()
		}

		m.Span = p.span(mfrom)
		d.Members = append(d.Members, m)

		if !p.eat(token.Comma) {
			break
		}
	}

	p.expect(token.RBrace)
	d.Span = p.span(from)

	return d
}

// moduleSpecifier consumes a quoted module name.
func (p *parser) moduleSpecifier() string {
	return p.expect(token.String).Text
}

// importAttributes skips an optional assert/with clause.
func (p *parser) importAttributes() {
	if (p.at(token.Ident) && p.cur().Text == "assert") || p.at(token.Ident) &&
		p.cur().Text == "with" && !p.cur().NewlineBefore {
		p.next()
		p.skipGroup()
	}
}

func (p *parser) importDecl() ast.Stmt {
	from := p.start()
	p.expect(token.Import)

	d := &ast.ImportDecl{}

	// import type X from, import type { X } from
	if p.at(token.Type) {
		if n := p.peek(1); n.Is(token.LBrace) || n.Is(token.Star) ||
			(n.IsName() && !n.Is(token.From)) {
			d.TypeOnly = true

			for !p.at(token.String) && !p.at(token.EOF) {
				p.next()
			}

			d.From = p.moduleSpecifier()
			p.importAttributes()
			p.semi()
			d.Span = p.span(from)

			return d
		}
	}

	if p.at(token.String) {
		d.From = p.moduleSpecifier()
		p.importAttributes()
		p.semi()
		d.Span = p.span(from)

		return d
	}

	// import x = require("m")
	if p.cur().IsName() && p.peek(1).Is(token.Assign) {
		p.next()

		for !p.at(token.Semicolon) && !p.at(token.EOF) && !p.cur().NewlineBefore {
			p.next()
		}

		p.semi()

		return &ast.OpaqueStmt{Span: p.span(from), Keyword: "import"}
	}

	if p.cur().IsName() {
		local := p.binding()
		d.Default = &ast.ImportSpec{Span: local.Span, Local: local, Imported: "default"}

		if p.eat(token.Comma) {
			p.importBindings(d)
		}
	} else {
		p.importBindings(d)
	}

	p.expect(token.From)
	d.From = p.moduleSpecifier()
	p.importAttributes()
	p.semi()

	for _, s := range d.Specs {
		s.From = d.From
	}

	if d.Default != nil {
		d.Default.From = d.From
	}

	if d.Namespace != nil {
		d.Namespace.From = d.From
	}

	d.Span = p.span(from)

	return d
}

// importBindings parses a namespace import or a braced specifier list.
func (p *parser) importBindings(d *ast.ImportDecl) {
	if p.at(token.Star) {
		from := p.start()
		p.next()
		p.expect(token.As)
		local := p.binding()
		d.Namespace = &ast.ImportSpec{Span: p.span(from), Local: local, Imported: "*"}

		return
	}

	p.expect(token.LBrace)

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		from := p.start()
		typeOnly := false

		if p.at(token.Type) && p.peek(1).IsName() && !p.peek(1).Is(token.As) {
			typeOnly = true
			p.next()
		}

		var imported string
		if p.at(token.String) {
			imported = p.next().Text
		} else {
			imported = p.name().Name
		}

		local := &ast.Ident{Span: p.span(from), Name: imported}
		if p.eat(token.As) {
			local = p.binding()
		}

		if !typeOnly {
			d.Specs = append(d.Specs, &ast.ImportSpec{
				Span:     p.span(from),
				Local:    local,
				Imported: imported,
			})
		}

		if !p.eat(token.Comma) {
			break
		}
	}

	p.expect(token.RBrace)
}

func (p *parser) exportDecl() ast.Stmt {
	from := p.start()
	p.expect(token.Export)

	switch t := p.cur(); t.Kind {
	case token.Default:
		p.next()

		switch {
		case p.at(token.Function) || p.at(token.Async) && p.peek(1).Is(token.Function):
			s := p.funcDecl(from, true).(*ast.FuncDecl)
			s.Default = true

			return s

		case p.at(token.Class) || p.at(token.Interface) ||
			p.at(token.Ident) && p.cur().Text == "abstract":
			return p.opaque(from, true)
		}

		x := p.assign()
		p.semi()

		return &ast.ExportDefault{Span: p.span(from), X: x}

	case token.Const:
		if p.peek(1).Is(token.Enum) {
			return p.enumDecl(from, true)
		}

		return p.varDecl(from, true)

	case token.Let, token.Var:
		return p.varDecl(from, true)

	case token.Function, token.Async:
		return p.funcDecl(from, true)

	case token.Enum:
		return p.enumDecl(from, true)

	case token.Declare:
		return p.declared(from, true)

	case token.Type:
		if p.peek(1).Is(token.LBrace) || p.peek(1).Is(token.Star) {
			p.next()

			s := p.exportList(from)
			if n, ok := s.(*ast.ExportNamed); ok {
				n.TypeOnly = true
			}

			return s
		}

		return p.opaque(from, false)

	case token.Interface, token.Class, token.Namespace:
		return p.opaque(from, true)

	case token.Ident:
		if t.Text == "abstract" || t.Text == "module" {
			return p.opaque(from, true)
		}

	case token.As, token.Assign:
		// export as namespace X; export = X;
		p.next()

		for !p.at(token.Semicolon) && !p.at(token.EOF) && !p.cur().NewlineBefore {
			p.next()
		}

		p.eat(token.Semicolon)

		return &ast.OpaqueStmt{Span: p.span(from), Keyword: "export"}

	case token.LBrace, token.Star:
		return p.exportList(from)

	case token.At:
		p.decorators()

		return p.opaque(from, true)
	}

	p.fail("unexpected "+describe(p.cur()), "declaration")

	return nil
}

// exportList parses export { ... } [from "m"] and export * [as ns] from "m".
func (p *parser) exportList(from int) ast.Stmt {
	if p.eat(token.Star) {
		s := &ast.ExportAll{}

		if p.eat(token.As) {
			if p.at(token.String) {
				s.As = p.next().Text
			} else {
				s.As = p.name().Name
			}
		}

		p.expect(token.From)
		s.From = p.moduleSpecifier()
		p.importAttributes()
		p.semi()
		s.Span = p.span(from)

		return s
	}

	p.expect(token.LBrace)

	s := &ast.ExportNamed{}

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		sfrom := p.start()

		if p.at(token.Type) && p.peek(1).IsName() && !p.peek(1).Is(token.As) {
			p.next()
			p.name()

			if p.eat(token.As) {
				p.name()
			}

			if !p.eat(token.Comma) {
				break
			}

			continue
		}

		var local string
		if p.at(token.String) {
			local = p.next().Text
		} else {
			local = p.name().Name
		}

		exported := local

		if p.eat(token.As) {
			if p.at(token.String) {
				exported = p.next().Text
			} else {
				exported = p.name().Name
			}
		}

		s.Specs = append(s.Specs, &ast.ExportSpec{
			Span:     p.span(sfrom),
			Local:    local,
			Exported: exported,
		})

		if !p.eat(token.Comma) {
			break
		}
	}

	p.expect(token.RBrace)

	if p.eat(token.From) {
		s.From = p.moduleSpecifier()
		p.importAttributes()

		for _, spec := range s.Specs {
			spec.From = s.From
		}
	}

	p.semi()
	s.Span = p.span(from)

	return s
}
