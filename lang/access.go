package lang

import (
	"errors"

	"github.com/ardnew/prestyle/lang/ast"
)

func (e *evaluator) ident(en *env, x *ast.Ident) (Value, *Sentinel) {
	for f := en.frame; f != nil; f = f.parent {
		if d, ok := f.locals[x.Name]; ok {
			return e.local(f, x, d)
		}

		if v, ok := f.params.Lookup(x.Name); ok {
			return v, nil
		}
	}

	if v, ok := en.scope.Lookup(x.Name); ok {
		return v, nil
	}

	if sym, ok := en.mod.Local(x.Name); ok {
		return e.resolved(en, x, sym)
	}

	if v, ok := globals().Lookup(x.Name); ok {
		return v, nil
	}

	if x.Name == "undefined" {
		return Undefined{}, nil
	}

	return nil, e.fail(en, x, "Unable to resolve identifier '%s'", x.Name)
}

// shadowed reports whether name is bound by the scope or by an enclosing
// invocation, hiding any module-level symbol of the same name.
func (e *evaluator) shadowed(en *env, name string) bool {
	for f := en.frame; f != nil; f = f.parent {
		if _, ok := f.locals[name]; ok {
			return true
		}

		if _, ok := f.params.Lookup(name); ok {
			return true
		}
	}

	_, ok := en.scope.Lookup(name)

	return ok
}

// resolved follows sym to its declaration and evaluates it. ref is the
// referencing node, used for diagnostics.
func (e *evaluator) resolved(en *env, ref ast.Node, sym Symbol) (Value, *Sentinel) {
	if !sym.Concrete() {
		r, err := e.prog.Resolve(e.ctx, sym)
		if err != nil {
			return nil, e.hopFailure(en, ref, err)
		}

		if !r.Concrete() {
			return nil, e.fail(en, ref,
				"Unable to find the value declaration of imported symbol '%s'", sym.Name)
		}

		sym = r
	}

	return e.symbol(en, ref, sym)
}

// hopFailure turns an error from symbol resolution into a sentinel. A
// cyclic or overlong chain only makes the expression unrepresentable;
// anything else aborts the evaluation.
func (e *evaluator) hopFailure(en *env, ref ast.Node, err error) *Sentinel {
	if errors.Is(err, ErrCyclicExport) {
		return e.fail(en, ref, "%s", err.Error())
	}

	return e.abort(err)
}

// symbol evaluates the concrete declaration of sym in the top-level scope
// of its own module.
func (e *evaluator) symbol(en *env, ref ast.Node, sym Symbol) (Value, *Sentinel) {
	if sym.Namespace {
		return e.namespace(en, ref, sym.Module)
	}

	if lit, ok := e.prog.oracle.StringLiteral(sym); ok {
		return String(lit), nil
	}

	top := &env{mod: sym.Module, file: sym.Module.File}

	switch d := sym.Decl.(type) {
	case *ast.VarSpec:
		return e.declared(top, en, ref, sym.Name, d)

	case *ast.FuncDecl:
		return e.function(top, d.Func, d.Name.Name)

	case *ast.EnumDecl:
		return e.enum(top, d)

	case *ast.ExportDefault:
		if lit, ok := d.X.(*ast.FuncLit); ok {
			return e.function(top, lit, "default")
		}

		return e.eval(top, d.X)
	}

	kind := ast.KindName(sym.Decl)
	if o, ok := sym.Decl.(*ast.OpaqueStmt); ok {
		kind = o.Keyword
	}

	return nil, e.fail(en, ref, "Not implemented: %s, %s", sym.Name, kind)
}

// declared evaluates the initializer of a variable declarator in dst. A
// declarator without one is reported against ref in the referencing env.
func (e *evaluator) declared(
	dst, en *env,
	ref ast.Node,
	name string,
	d *ast.VarSpec,
) (Value, *Sentinel) {
	if d.Init == nil {
		return nil, e.fail(en, ref, "Unable to resolve identifier '%s'", name)
	}

	if lit, ok := d.Init.(*ast.FuncLit); ok {
		return e.function(dst, lit, name)
	}

	return e.eval(dst, d.Init)
}

// local evaluates a block-scoped declaration of the invocation f.
func (e *evaluator) local(f *frame, x *ast.Ident, d ast.Node) (Value, *Sentinel) {
	en := &env{mod: f.fn.mod, file: f.fn.file, scope: f.scope, frame: f}

	switch d := d.(type) {
	case *ast.VarSpec:
		return e.declared(en, en, x, x.Name, d)
	case *ast.FuncDecl:
		return e.function(en, d.Func, d.Name.Name)
	case *ast.EnumDecl:
		return e.enum(en, d)
	}

	return nil, e.fail(en, x, "Unable to resolve identifier '%s'", x.Name)
}

// namespace builds the record of every export of m.
func (e *evaluator) namespace(en *env, ref ast.Node, m *Module) (Value, *Sentinel) {
	names, err := e.prog.ExportNames(e.ctx, m)
	if err != nil {
		return nil, e.hopFailure(en, ref, err)
	}

	rec := NewRecord()

	for _, name := range names {
		v, s := e.export(en, ref, m, name)
		if s != nil {
			return nil, s
		}

		rec.Set(name, v)
	}

	return rec, nil
}

// export evaluates the binding m exports under name, or undefined when
// there is none.
func (e *evaluator) export(en *env, ref ast.Node, m *Module, name string) (Value, *Sentinel) {
	sym, ok, err := e.prog.Export(e.ctx, m, name)
	if err != nil {
		return nil, e.hopFailure(en, ref, err)
	}

	if !ok {
		return Undefined{}, nil
	}

	return e.resolved(en, ref, sym)
}

// namespaceMember evaluates ns.name where ns is a namespace import,
// resolving only the one export instead of the whole namespace. ok is
// false when x is not such an access.
func (e *evaluator) namespaceMember(en *env, x *ast.MemberExpr) (v Value, s *Sentinel, ok bool) {
	id, isIdent := x.X.(*ast.Ident)
	if !isIdent || e.shadowed(en, id.Name) {
		return nil, nil, false
	}

	sym, found := en.mod.Local(id.Name)
	if !found {
		return nil, nil, false
	}

	if spec, isImport := sym.Decl.(*ast.ImportSpec); !isImport || spec.Imported != "*" {
		return nil, nil, false
	}

	r, err := e.prog.Resolve(e.ctx, sym)
	if err != nil {
		return nil, e.hopFailure(en, x, err), true
	}

	if !r.Namespace {
		return nil, e.fail(en, x,
			"Unable to find the value declaration of imported symbol '%s'", id.Name), true
	}

	v, s = e.export(en, x, r.Module, x.Name.Name)

	return v, s, true
}

// chain evaluates a member, index or call expression. short reports that
// an optional link met a falsy target, which makes the whole chain
// undefined. Parentheses end a chain.
func (e *evaluator) chain(en *env, x ast.Expr) (v Value, short bool, s *Sentinel) {
	if c, ok := x.(*ast.CallExpr); ok {
		return e.call(en, c)
	}

	_, v, short, s = e.access(en, x)

	return v, short, s
}

// link evaluates the target of a chain link.
func (e *evaluator) link(en *env, x ast.Expr) (Value, bool, *Sentinel) {
	switch x.(type) {
	case *ast.MemberExpr, *ast.IndexExpr, *ast.CallExpr:
		return e.chain(en, x)
	}

	v, s := e.eval(en, x)

	return v, false, s
}

// access evaluates a member or index expression, returning the target
// object along with the property value.
func (e *evaluator) access(en *env, x ast.Expr) (obj, v Value, short bool, s *Sentinel) {
	switch x := x.(type) {
	case *ast.MemberExpr:
		if v, s, ok := e.namespaceMember(en, x); ok {
			return Undefined{}, v, false, s
		}

		obj, short, s = e.link(en, x.X)
		if short || s != nil {
			return nil, nil, short, s
		}

		if x.Optional && !Truthy(obj) {
			return nil, nil, true, nil
		}

		if x.Private {
			return nil, nil, false, e.fail(en, x, "Private names are not supported")
		}

		v, s = e.property(en, x, obj, x.Name.Name)

		return obj, v, false, s

	case *ast.IndexExpr:
		obj, short, s = e.link(en, x.X)
		if short || s != nil {
			return nil, nil, short, s
		}

		if x.Optional && !Truthy(obj) {
			return nil, nil, true, nil
		}

		k, s := e.eval(en, x.Index)
		if s != nil {
			return nil, nil, false, s
		}

		v, s = e.property(en, x, obj, ToString(k))

		return obj, v, false, s
	}

	v, s = e.eval(en, x)

	return Undefined{}, v, false, s
}

func (e *evaluator) call(en *env, x *ast.CallExpr) (Value, bool, *Sentinel) {
	var (
		this, fn Value = Undefined{}, nil
		short    bool
		s        *Sentinel
	)

	switch callee := x.Fun.(type) {
	case *ast.MemberExpr, *ast.IndexExpr:
		this, fn, short, s = e.access(en, callee)
	default:
		fn, short, s = e.link(en, callee)
	}

	if short || s != nil {
		return nil, short, s
	}

	if x.Optional && !Truthy(fn) {
		return nil, true, nil
	}

	f, ok := fn.(Callable)
	if !ok {
		return nil, false, e.fail(en, x.Fun,
			"Unable to evaluate %s to a function", en.file.Text(x.Fun))
	}

	args, s := e.arguments(en, x.Args)
	if s != nil {
		return nil, false, s
	}

	v, s := e.invoke(en, x, f, this, args)

	return v, false, s
}

// property returns the named property of obj. Missing properties are
// undefined; reading any property of undefined or null is not.
func (e *evaluator) property(en *env, node ast.Node, obj Value, key string) (Value, *Sentinel) {
	switch o := obj.(type) {
	case Undefined, Null:
		return nil, e.fail(en, node, "Cannot read property '%s' of %s", key, ToString(obj))

	case *Record:
		if v, ok := o.Get(key); ok {
			return v, nil
		}

	case *Array:
		if key == "length" {
			return Number(o.Len()), nil
		}

		if i, ok := arrayIndex(key); ok {
			if int(i) < o.Len() {
				return o.Elems[i], nil
			}

			return Undefined{}, nil
		}

	case String:
		if key == "length" {
			return Number(unitLen(string(o))), nil
		}

		if i, ok := arrayIndex(key); ok {
			u := units(string(o))
			if int(i) < len(u) {
				return String(fromUnits(u[i : i+1])), nil
			}

			return Undefined{}, nil
		}

	case *Function:
		switch key {
		case "name":
			return String(o.Name), nil
		case "length":
			return Number(arity(o)), nil
		}

	case *Builtin:
		if o.Props != nil {
			if v, ok := o.Props.Get(key); ok {
				return v, nil
			}
		}

		if key == "name" {
			return String(o.Name), nil
		}
	}

	if m, ok := methods(obj.Kind())[key]; ok {
		return m, nil
	}

	return Undefined{}, nil
}

// arity counts the parameters before the first one with a default or
// rest marker.
func arity(f *Function) int {
	for i, p := range f.Params {
		if p.Rest || p.hasDef {
			return i
		}
	}

	return len(f.Params)
}
