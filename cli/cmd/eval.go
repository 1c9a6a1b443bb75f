package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/prestyle/lang"
)

// Eval evaluates exports of a module, or an expression in its context.
type Eval struct {
	File   string   `arg:"" help:"Module to evaluate, or '-' for stdin"`
	Names  []string `arg:"" help:"Exports to evaluate (default: all)"   optional:""`
	Expr   string   `       help:"Evaluate an expression in the module instead of its exports" short:"e"`
	Output Output   `       help:"Output format"                                               short:"o" default:"json" enum:"json,yaml,text"`
	Indent int      `       help:"Indentation of JSON and YAML output, 0 for compact"                    default:"2"`
	Query  string   `       help:"expr-lang expression over 'result' and 'diagnostics'"        short:"q"`
}

// Run executes the eval command.
//
// Exports that require runtime evaluation are left out of the result and
// their diagnostics are written to stderr. When nothing could be
// evaluated statically the command fails with [ErrRuntimeRequired].
func (e *Eval) Run(ctx context.Context) error {
	s := settingsFrom(ctx)

	p, mod, err := s.load(ctx, e.File)
	if err != nil {
		return err
	}

	var (
		result lang.Value
		diags  []*lang.Diagnostic
		names  []string
	)

	switch {
	case e.Expr != "":
		v, sent, err := p.EvaluateExpr(ctx, mod, e.Expr, nil)
		if err != nil {
			return ErrEvaluate.With(slog.String("expr", e.Expr)).Wrap(err)
		}

		result = v

		if sent != nil {
			diags, names = append(diags, sentinelDiagnostic(sent)), append(names, "")
		}

	case len(e.Names) == 1:
		v, sent, err := p.EvaluateExport(ctx, mod, e.Names[0])
		if err != nil {
			return ErrEvaluate.With(slog.String("export", e.Names[0])).Wrap(err)
		}

		result = v

		if sent != nil {
			diags, names = append(diags, sentinelDiagnostic(sent)), append(names, e.Names[0])
		}

	default:
		bindings, err := e.bindings(ctx, p, mod)
		if err != nil {
			return err
		}

		rec := lang.NewRecord()

		for _, b := range bindings {
			if b.Sentinel != nil {
				diags, names = append(diags, sentinelDiagnostic(b.Sentinel)), append(names, b.Name)

				continue
			}

			rec.Set(b.Name, b.Value)
		}

		result = rec

		if len(bindings) > 0 && rec.Len() == 0 {
			result = nil
		}
	}

	s.Logger.DebugContext(ctx, "evaluated",
		slog.String("module", mod),
		slog.Int("runtime", len(diags)))

	for i, d := range diags {
		if err := writeDiagnostic(s.Stderr, names[i], d); err != nil {
			return err
		}
	}

	if e.Query != "" && (result != nil || len(diags) > 0) {
		if result == nil {
			result = lang.Undefined{}
		}

		if result, err = query(ctx, e.Query, result, diags); err != nil {
			return err
		}
	}

	if result == nil {
		return ErrRuntimeRequired.With(slog.String("module", mod))
	}

	return e.Output.write(ctx, s.Stdout, result, e.Indent)
}

func (e *Eval) bindings(ctx context.Context, p *lang.Program, mod string) ([]lang.Binding, error) {
	if len(e.Names) == 0 {
		b, err := p.EvaluateExports(ctx, mod)
		if err != nil {
			return nil, ErrEvaluate.With(slog.String("module", mod)).Wrap(err)
		}

		return b, nil
	}

	out := make([]lang.Binding, 0, len(e.Names))

	for _, name := range e.Names {
		v, sent, err := p.EvaluateExport(ctx, mod, name)
		if err != nil {
			return nil, ErrEvaluate.With(slog.String("export", name)).Wrap(err)
		}

		out = append(out, lang.Binding{Name: name, Value: v, Sentinel: sent})
	}

	return out, nil
}
