package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr"

	"github.com/ardnew/prestyle/lang"
)

// Output selects how values are written.
type Output string

const (
	OutputJSON Output = "json"
	OutputYAML Output = "yaml"
	OutputText Output = "text"
)

// defaultIndent is the indentation of JSON and YAML output.
const defaultIndent = 2

func (o Output) write(ctx context.Context, w io.Writer, v lang.Value, indent int) error {
	switch o {
	case OutputJSON:
		if err := lang.FormatJSON(ctx, w, v, indent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}
	case OutputYAML:
		if err := lang.FormatYAML(ctx, w, v, indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}
	default:
		return lang.FormatText(ctx, w, v, indent)
	}

	return nil
}

// diagnosticValue converts d for output and queries.
func diagnosticValue(d *lang.Diagnostic) lang.Value {
	r := lang.NewRecord()
	r.Set("message", lang.String(d.Message))
	r.Set("file", lang.String(d.File))
	r.Set("line", lang.Number(d.Line+1))
	r.Set("source", lang.String(d.Source))

	return r
}

// sentinelDiagnostic returns the diagnostic of s, or one carrying only
// its message when s has no source location.
func sentinelDiagnostic(s *lang.Sentinel) *lang.Diagnostic {
	if d := s.Diagnostic(); d != nil {
		return d
	}

	return &lang.Diagnostic{Message: s.Message}
}

// query runs the expr-lang expression src against the native forms of
// result and diags, exposed as "result" and "diagnostics".
func query(ctx context.Context, src string, result lang.Value, diags []*lang.Diagnostic) (lang.Value, error) {
	nd := make([]any, len(diags))
	for i, d := range diags {
		nd[i] = lang.ToNative(diagnosticValue(d))
	}

	env := map[string]any{
		"result":      lang.ToNative(result),
		"diagnostics": nd,
	}

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, ErrQuery.With(slog.String("query", src)).Wrap(err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrQuery.With(slog.String("query", src)).Wrap(err)
	}

	settingsFrom(ctx).Logger.TraceContext(ctx, "query",
		slog.String("query", src),
		slog.String("type", fmt.Sprintf("%T", out)))

	return lang.FromNative(out), nil
}

// diagnosticStyle renders diagnostics for people.
type diagnosticStyle struct {
	loc, msg, src lipgloss.Style
}

func newDiagnosticStyle(w io.Writer) diagnosticStyle {
	r := lipgloss.NewRenderer(w)

	return diagnosticStyle{
		loc: r.NewStyle().Bold(true),
		msg: r.NewStyle().Foreground(lipgloss.Color("3")),
		src: r.NewStyle().Faint(true),
	}
}

// writeDiagnostic writes d as "file:line: name: message" followed by the
// offending source, indented.
func writeDiagnostic(w io.Writer, name string, d *lang.Diagnostic) error {
	st := newDiagnosticStyle(w)

	loc := d.File
	if loc != "" {
		loc = fmt.Sprintf("%s:%d: ", d.File, d.Line+1)
	}

	if name != "" {
		loc += name + ": "
	}

	if _, err := fmt.Fprintln(w, st.loc.Render(loc)+st.msg.Render(d.Message)); err != nil {
		return err
	}

	if d.Source == "" {
		return nil
	}

	_, err := fmt.Fprintln(w, "    "+st.src.Render(d.Source))

	return err
}
