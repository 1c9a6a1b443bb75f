package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/lang/parser"
	"github.com/ardnew/prestyle/lang/token"
)

// Binding is the evaluated result of one exported name. Exactly one of
// Value and Sentinel is non-nil.
type Binding struct {
	Name     string
	Value    Value
	Sentinel *Sentinel
}

// evaluator carries the per-call state of one evaluation. The first
// configuration failure is stored in err; from then on every step
// returns a sentinel so the recursion unwinds quickly.
type evaluator struct {
	ctx   context.Context
	prog  *Program
	depth int
	steps int
	err   error
}

// env is the lexical context of an expression.
type env struct {
	mod   *Module
	file  *ast.File
	scope Scope
	frame *frame
}

func (p *Program) evaluator(ctx context.Context) *evaluator {
	return &evaluator{ctx: ctx, prog: p}
}

func (e *evaluator) result(v Value, s *Sentinel) (Value, *Sentinel, error) {
	if e.err != nil {
		return nil, nil, e.err
	}

	if s != nil {
		e.prog.logger.DebugContext(e.ctx, "requires runtime", slog.Any("sentinel", s))

		return nil, s, nil
	}

	return v, nil, nil
}

// Evaluate reduces node, an expression or a function or enum declaration
// of mod, to a concrete value. Names not bound in scope are resolved
// through the declarations of mod and the modules it imports, and the
// intrinsics beneath both.
//
// The error is non-nil only for configuration failures and cancellation.
// An expression that cannot be reduced statically yields a sentinel.
func (p *Program) Evaluate(
	ctx context.Context,
	mod *Module,
	node ast.Node,
	scope Scope,
) (Value, *Sentinel, error) {
	e := p.evaluator(ctx)
	v, s := e.eval(&env{mod: mod, file: mod.File, scope: NewScope(scope)}, node)

	return e.result(v, s)
}

// EvaluateExport evaluates the binding that the module at path exports
// under name.
func (p *Program) EvaluateExport(
	ctx context.Context,
	path, name string,
) (Value, *Sentinel, error) {
	m, err := p.Module(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	sym, ok, err := p.Export(ctx, m, name)
	if err != nil && !errors.Is(err, ErrCyclicExport) {
		return nil, nil, err
	}

	if !ok && err == nil {
		return nil, nil, ErrExportNotFound.With(
			slog.String("name", name),
			slog.String("module", m.Path),
		)
	}

	e := p.evaluator(ctx)
	en := &env{mod: m, file: m.File}

	if err != nil {
		return e.result(nil, &Sentinel{Message: err.Error()})
	}

	p.logger.TraceContext(ctx, "evaluate export",
		slog.String("name", name),
		slog.String("module", m.Path),
	)

	return e.result(e.resolved(en, nil, sym))
}

// EvaluateExports evaluates every name the module at path exports.
func (p *Program) EvaluateExports(ctx context.Context, path string) ([]Binding, error) {
	m, err := p.Module(ctx, path)
	if err != nil {
		return nil, err
	}

	names, err := p.ExportNames(ctx, m)
	if err != nil {
		return nil, err
	}

	out := make([]Binding, 0, len(names))

	for _, name := range names {
		v, s, err := p.EvaluateExport(ctx, path, name)
		if err != nil {
			return nil, err
		}

		out = append(out, Binding{Name: name, Value: v, Sentinel: s})
	}

	return out, nil
}

// EvaluateExpr parses src as an expression and evaluates it as if it
// appeared in the module at path.
func (p *Program) EvaluateExpr(
	ctx context.Context,
	path, src string,
	scope Scope,
) (Value, *Sentinel, error) {
	m, err := p.Module(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	x, f, err := parser.ParseExpr(ctx, "<expr>", src, parser.WithLogger(p.logger))
	if err != nil {
		return nil, nil, ErrParse.Wrap(err)
	}

	e := p.evaluator(ctx)
	v, s := e.eval(&env{mod: m, file: f, scope: NewScope(scope)}, x)

	return e.result(v, s)
}

// fail returns a sentinel for node in the current source unit.
func (e *evaluator) fail(en *env, node ast.Node, format string, args ...any) *Sentinel {
	s := &Sentinel{Message: fmt.Sprintf(format, args...), Node: node, File: en.file}

	e.prog.logger.TraceContext(e.ctx, "sentinel", slog.Any("sentinel", s))

	return s
}

// abort records a configuration failure and returns the sentinel that
// unwinds the evaluation.
func (e *evaluator) abort(err error) *Sentinel {
	if e.err == nil {
		e.err = err
	}

	return &Sentinel{Message: e.err.Error()}
}

func (e *evaluator) eval(en *env, x ast.Node) (Value, *Sentinel) {
	if e.err != nil {
		return nil, &Sentinel{Message: e.err.Error()}
	}

	e.depth++
	defer func() { e.depth-- }()

	if e.depth > e.prog.maxDepth {
		return nil, e.fail(en, x, "Maximum evaluation depth of %d exceeded", e.prog.maxDepth)
	}

	if e.steps++; e.steps%256 == 0 {
		if err := e.ctx.Err(); err != nil {
			return nil, e.abort(ErrContextDone.Wrap(err))
		}
	}

	switch x := x.(type) {
	case *ast.NumberLit:
		return Number(x.Value), nil

	case *ast.StringLit:
		return String(x.Value), nil

	case *ast.BoolLit:
		return Bool(x.Value), nil

	case *ast.NullLit:
		return Null{}, nil

	case *ast.Ident:
		return e.ident(en, x)

	case *ast.ParenExpr:
		return e.eval(en, x.X)

	case *ast.AsExpr:
		return e.eval(en, x.X)

	case *ast.NonNullExpr:
		return e.eval(en, x.X)

	case *ast.SpreadElement:
		return e.eval(en, x.X)

	case *ast.TemplateLit:
		return e.template(en, x)

	case *ast.TaggedTemplate:
		return nil, e.fail(en, x, "Tagged templates are not supported")

	case *ast.BinaryExpr:
		return e.binary(en, x)

	case *ast.UnaryExpr:
		return e.unary(en, x)

	case *ast.UpdateExpr:
		return nil, e.fail(en, x, "-- or ++ expressions are not supported")

	case *ast.CondExpr:
		cond, s := e.eval(en, x.Cond)
		if s != nil {
			return nil, s
		}

		if Truthy(cond) {
			return e.eval(en, x.Then)
		}

		return e.eval(en, x.Else)

	case *ast.MemberExpr, *ast.IndexExpr, *ast.CallExpr:
		v, short, s := e.chain(en, x.(ast.Expr))
		if short {
			return Undefined{}, nil
		}

		return v, s

	case *ast.ObjectLit:
		return e.object(en, x)

	case *ast.ArrayLit:
		return e.array(en, x)

	case *ast.FuncLit:
		return e.function(en, x, "")

	case *ast.FuncDecl:
		return e.function(en, x.Func, x.Name.Name)

	case *ast.EnumDecl:
		return e.enum(en, x)

	case *ast.RegExpLit:
		return nil, e.fail(en, x, "Regular expression values are not supported")
	}

	return nil, e.fail(en, x,
		"Unable to evaluate expression, unsupported expression kind: %s", ast.KindName(x))
}

func (e *evaluator) template(en *env, x *ast.TemplateLit) (Value, *Sentinel) {
	var b strings.Builder

	b.WriteString(x.Quasis[0])

	for i, sub := range x.Exprs {
		v, s := e.eval(en, sub)
		if s != nil {
			return nil, s
		}

		b.WriteString(ToString(v))
		b.WriteString(x.Quasis[i+1])
	}

	return String(b.String()), nil
}

func (e *evaluator) binary(en *env, x *ast.BinaryExpr) (Value, *Sentinel) {
	l, s := e.eval(en, x.X)
	if s != nil {
		return nil, s
	}

	switch x.Op {
	case token.AndAnd:
		if !Truthy(l) {
			return l, nil
		}

		return e.eval(en, x.Y)

	case token.OrOr:
		if Truthy(l) {
			return l, nil
		}

		return e.eval(en, x.Y)

	case token.QQ:
		if !nullish(l) {
			return l, nil
		}

		return e.eval(en, x.Y)
	}

	r, s := e.eval(en, x.Y)
	if s != nil {
		return nil, s
	}

	switch x.Op {
	case token.Plus:
		lp, rp := ToPrimitive(l), ToPrimitive(r)

		_, ls := lp.(String)
		_, rs := rp.(String)

		if ls || rs {
			return String(ToString(lp) + ToString(rp)), nil
		}

		return Number(ToNumber(lp) + ToNumber(rp)), nil

	case token.Minus:
		return Number(ToNumber(l) - ToNumber(r)), nil

	case token.Star:
		return Number(ToNumber(l) * ToNumber(r)), nil

	case token.Slash:
		return Number(ToNumber(l) / ToNumber(r)), nil

	case token.StrictEq:
		return Bool(StrictEqual(l, r)), nil

	case token.StrictNeq:
		return Bool(!StrictEqual(l, r)), nil

	case token.Eq:
		return Bool(LooseEqual(l, r)), nil

	case token.NotEq:
		return Bool(!LooseEqual(l, r)), nil

	case token.Lt, token.Gt, token.LtEq, token.GtEq:
		c, ok := compare(l, r)
		if !ok {
			return Bool(false), nil
		}

		switch x.Op {
		case token.Lt:
			return Bool(c < 0), nil
		case token.Gt:
			return Bool(c > 0), nil
		case token.LtEq:
			return Bool(c <= 0), nil
		}

		return Bool(c >= 0), nil

	case token.In:
		return Bool(contains(r, l)), nil
	}

	return nil, e.fail(en, x, "Unsupported binary operator %s", x.Op)
}

// contains implements the in operator: membership for arrays, key
// presence for records and false for anything else.
func contains(container, v Value) bool {
	switch c := container.(type) {
	case *Array:
		for _, el := range c.Elems {
			if StrictEqual(el, v) {
				return true
			}
		}
	case *Record:
		return c.Has(ToString(v))
	case *Builtin:
		key := ToString(v)
		if key == "name" || key == "length" {
			return true
		}

		return c.Props != nil && c.Props.Has(key)
	case *Function:
		switch ToString(v) {
		case "name", "length":
			return true
		}
	}

	return false
}

func (e *evaluator) unary(en *env, x *ast.UnaryExpr) (Value, *Sentinel) {
	switch x.Op {
	case token.Plus, token.Minus, token.Tilde, token.Not, token.Typeof:
	default:
		return nil, e.fail(en, x, "Unsupported unary operator %s", x.Op)
	}

	v, s := e.eval(en, x.X)
	if s != nil {
		return nil, s
	}

	switch x.Op {
	case token.Plus:
		return Number(ToNumber(v)), nil
	case token.Minus:
		return Number(-ToNumber(v)), nil
	case token.Tilde:
		return Number(float64(^toInt32(ToNumber(v)))), nil
	case token.Not:
		return Bool(!Truthy(v)), nil
	}

	return String(TypeOf(v)), nil
}

func (e *evaluator) object(en *env, x *ast.ObjectLit) (Value, *Sentinel) {
	rec := NewRecord()

	for _, prop := range x.Props {
		switch prop := prop.(type) {
		case *ast.SpreadElement:
			v, s := e.eval(en, prop.X)
			if s != nil {
				return nil, s
			}

			src, ok := v.(*Record)
			if !ok {
				return nil, e.fail(en, prop,
					"Spread value could not be statically determined to be an object")
			}

			rec.Merge(src)

		case *ast.Property:
			key, s := e.key(en, prop.Key)
			if s != nil {
				return nil, s
			}

			var v Value

			if lit, ok := prop.Value.(*ast.FuncLit); ok {
				v, s = e.function(en, lit, key)
			} else {
				v, s = e.eval(en, prop.Value)
			}

			if s != nil {
				return nil, s
			}

			rec.Set(key, v)

		default:
			return nil, e.fail(en, prop, "Accessor properties are not supported")
		}
	}

	return rec, nil
}

// key evaluates a property or enum member name.
func (e *evaluator) key(en *env, k ast.Node) (string, *Sentinel) {
	switch k := k.(type) {
	case *ast.Ident:
		return k.Name, nil
	case *ast.StringLit:
		return k.Value, nil
	case *ast.NumberLit:
		return FormatNumber(k.Value), nil
	case *ast.ComputedKey:
		v, s := e.eval(en, k.X)
		if s != nil {
			return "", s
		}

		return ToString(v), nil
	}

	return "", e.fail(en, k, "Unsupported property name")
}

func (e *evaluator) array(en *env, x *ast.ArrayLit) (Value, *Sentinel) {
	elems := make([]Value, 0, len(x.Elems))

	for _, el := range x.Elems {
		switch el := el.(type) {
		case *ast.Omitted:
			elems = append(elems, Undefined{})

		case *ast.SpreadElement:
			v, s := e.eval(en, el.X)
			if s != nil {
				return nil, s
			}

			src, ok := v.(*Array)
			if !ok {
				return nil, e.fail(en, el,
					"Spread value could not be statically determined to be an array")
			}

			elems = append(elems, src.Elems...)

		default:
			v, s := e.eval(en, el)
			if s != nil {
				return nil, s
			}

			elems = append(elems, v)
		}
	}

	return NewArray(elems...), nil
}

// isNaN reports whether v is the number NaN.
func isNaN(v Value) bool {
	n, ok := v.(Number)

	return ok && math.IsNaN(float64(n))
}
