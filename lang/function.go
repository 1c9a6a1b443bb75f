package lang

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/token"
)

// Call is the invocation of a [Builtin]. This is the receiver when the
// builtin was reached as a method.
type Call struct {
	This Value
	Args []Value

	e    *evaluator
	en   *env
	node ast.Node
}

// Arg returns the i'th argument, or undefined.
func (c *Call) Arg(i int) Value {
	if i < len(c.Args) {
		return c.Args[i]
	}

	return Undefined{}
}

// Invoke calls fn, which must be callable, with args.
func (c *Call) Invoke(fn Value, args ...Value) (Value, *Sentinel) {
	f, ok := fn.(Callable)
	if !ok {
		return nil, c.Sentinel("%s is not a function", ToString(fn))
	}

	return c.e.invoke(c.en, c.node, f, Undefined{}, args)
}

// Sentinel reports that the call has no static result.
func (c *Call) Sentinel(format string, args ...any) *Sentinel {
	return c.e.fail(c.en, c.node, format, args...)
}

func (e *evaluator) invoke(
	en *env,
	node ast.Node,
	fn Callable,
	this Value,
	args []Value,
) (Value, *Sentinel) {
	switch f := fn.(type) {
	case *Function:
		return e.apply(f, args)
	case *Builtin:
		return f.Fn(&Call{This: this, Args: args, e: e, en: en, node: node})
	}

	return nil, e.fail(en, node, "Unable to call %s", TypeOf(fn))
}

func (e *evaluator) arguments(en *env, list []ast.Expr) ([]Value, *Sentinel) {
	args := make([]Value, 0, len(list))

	for _, a := range list {
		sp, ok := a.(*ast.SpreadElement)
		if !ok {
			v, s := e.eval(en, a)
			if s != nil {
				return nil, s
			}

			args = append(args, v)

			continue
		}

		v, s := e.eval(en, sp.X)
		if s != nil {
			return nil, s
		}

		arr, ok := v.(*Array)
		if !ok {
			return nil, e.fail(en, sp,
				"Spread value could not be statically determined to be an array")
		}

		args = append(args, arr.Elems...)
	}

	return args, nil
}

// function closes lit over the current scope. Parameter defaults are
// evaluated here, in the defining scope.
func (e *evaluator) function(en *env, lit *ast.FuncLit, name string) (Value, *Sentinel) {
	if name == "" && lit.Name != nil {
		name = lit.Name.Name
	}

	fn := &Function{
		Name:  name,
		node:  lit,
		scope: en.scope,
		frame: en.frame,
		mod:   en.mod,
		file:  en.file,
	}

	switch body := lit.Body.(type) {
	case nil:
		return nil, e.fail(en, lit, "Unable to evaluate function '%s' without a body", name)

	case *ast.BlockStmt:
		ret, locals, s := e.block(en, body)
		if s != nil {
			return nil, s
		}

		fn.body, fn.locals = ret, locals

	case ast.Expr:
		fn.body = body
	}

	if lit.Async || lit.Generator {
		return nil, e.fail(en, lit, "Static evaluation does not support async or generator functions")
	}

	for _, prm := range lit.Params {
		if prm.Pattern != nil {
			return nil, e.fail(en, prm, "Static evaluation does not support destructured parameters")
		}

		if prm.Name.Name == "this" {
			continue
		}

		p := Param{Name: prm.Name.Name, Rest: prm.Rest}

		if prm.Default != nil {
			p.hasDef = true
			p.fallback, p.sentinel = e.eval(en, prm.Default)
		}

		fn.Params = append(fn.Params, p)
	}

	return fn, nil
}

// block checks that a function body reduces to at most one return and
// collects its block-scoped declarations.
func (e *evaluator) block(en *env, body *ast.BlockStmt) (ast.Expr, map[string]ast.Node, *Sentinel) {
	var (
		returns []*ast.ReturnStmt
		reason  string
		at      ast.Node
		locals  = make(map[string]ast.Node)
	)

	refuse := func(n ast.Node, what string) {
		if reason == "" {
			reason, at = what, n
		}
	}

	ast.WalkStmts(body.List, func(s ast.Stmt) bool {
		switch s := s.(type) {
		case *ast.ReturnStmt:
			returns = append(returns, s)
		case *ast.IfStmt, *ast.SwitchStmt:
			refuse(s, "if statements")
		case *ast.LoopStmt:
			refuse(s, "loops")
		case *ast.TryStmt, *ast.ThrowStmt:
			refuse(s, "exceptions")
		case *ast.BadStmt:
			refuse(s, "malformed statements")
		case *ast.ExprStmt:
			if mutates(s.X) {
				refuse(s, "assignments")
			}
		case *ast.VarDecl:
			for _, spec := range s.List {
				if spec.Pattern != nil {
					refuse(spec, "destructuring")

					continue
				}

				locals[spec.Name.Name] = spec
			}
		case *ast.FuncDecl:
			locals[s.Name.Name] = s
		case *ast.EnumDecl:
			locals[s.Name.Name] = s
		}

		return true
	})

	if len(returns) > 1 {
		return nil, nil, e.fail(en, returns[1],
			"Static evaluation does not support functions with multiple returns")
	}

	if reason != "" {
		return nil, nil, e.fail(en, at,
			"Static evaluation does not support functions with %s", reason)
	}

	if len(returns) == 0 || returns[0].X == nil {
		return nil, locals, nil
	}

	return returns[0].X, locals, nil
}

// mutates reports whether evaluating x as a statement would change a
// binding.
func mutates(x ast.Expr) bool {
	switch x := ast.Unparen(x).(type) {
	case *ast.AssignExpr, *ast.UpdateExpr:
		return true
	case *ast.UnaryExpr:
		return x.Op == token.Delete
	case *ast.SequenceExpr:
		return slices.ContainsFunc(x.List, mutates)
	}

	return false
}

// apply binds args to the parameters of fn and evaluates its body in a
// new frame whose parent is the frame fn captured.
func (e *evaluator) apply(fn *Function, args []Value) (Value, *Sentinel) {
	bind := make(map[string]Value, len(fn.Params))

	for i, p := range fn.Params {
		switch {
		case p.Rest:
			var rest []Value
			if i < len(args) {
				rest = slices.Clone(args[i:])
			}

			bind[p.Name] = NewArray(rest...)

		case i < len(args) && args[i].Kind() != KindUndefined:
			bind[p.Name] = args[i]

		case p.sentinel != nil:
			return nil, p.sentinel

		case p.hasDef:
			bind[p.Name] = p.fallback

		default:
			bind[p.Name] = Undefined{}
		}
	}

	if fn.body == nil {
		return Undefined{}, nil
	}

	f := &frame{locals: fn.locals, params: bind, scope: fn.scope, fn: fn, parent: fn.frame}

	return e.eval(&env{mod: fn.mod, file: fn.file, scope: fn.scope, frame: f}, fn.body)
}

// enum evaluates an enum declaration to a record holding a forward entry
// per member and a reverse entry per numeric value. Members without an
// initializer take the next ordinal after the previous numeric value.
func (e *evaluator) enum(en *env, d *ast.EnumDecl) (Value, *Sentinel) {
	if d.Declare {
		return nil, e.fail(en, d, "Unable to evaluate ambient enum '%s'", d.Name.Name)
	}

	rec := NewRecord()
	members := make(map[string]Value, len(d.Members))
	next := 0.0

	for _, m := range d.Members {
		name, s := e.key(en, m.Key)
		if s != nil {
			return nil, s
		}

		var v Value = Number(next)

		if m.Init != nil {
			f := &frame{params: maps.Clone(members), scope: en.scope, parent: en.frame}
			inner := &env{mod: en.mod, file: en.file, scope: en.scope, frame: f}

			v, s = e.eval(inner, m.Init)
			if s != nil {
				return nil, s
			}
		}

		members[name] = v
		rec.Set(name, v)

		if n, ok := v.(Number); ok {
			next = float64(n) + 1
			rec.Set(FormatNumber(float64(n)), String(name))
		} else {
			next++
		}
	}

	return rec, nil
}

// String implements [fmt.Stringer] for diagnostics and the REPL.
func (f *Function) String() string {
	return fmt.Sprintf("[Function: %s]", nameOf(f))
}
