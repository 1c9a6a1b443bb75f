package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/prestyle/lang"
)

// Check reports, for every export of each module, whether its value can
// be substituted statically or must be left for runtime.
type Check struct {
	Files  []string `arg:"" help:"Modules to check, or '-' for stdin"`
	Strict bool     `       help:"Fail when any export requires runtime evaluation"`
	Output Output   `       help:"Report format" short:"o" default:"text" enum:"json,yaml,text"`
}

// finding is the verdict on one export.
type finding struct {
	module string
	lang.Binding
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	s := settingsFrom(ctx)

	var findings []finding

	for _, file := range uniqueFiles(c.Files) {
		p, mod, err := s.load(ctx, file)
		if err != nil {
			return err
		}

		bindings, err := p.EvaluateExports(ctx, mod)
		if err != nil {
			return ErrEvaluate.With(slog.String("module", mod)).Wrap(err)
		}

		for _, b := range bindings {
			findings = append(findings, finding{module: mod, Binding: b})
		}
	}

	runtime := 0

	for _, f := range findings {
		if f.Sentinel != nil {
			runtime++
		}
	}

	s.Logger.DebugContext(ctx, "checked",
		slog.Int("exports", len(findings)),
		slog.Int("runtime", runtime))

	var err error
	if c.Output == OutputText {
		err = c.writeText(s, findings)
	} else {
		err = c.Output.write(ctx, s.Stdout, report(findings), defaultIndent)
	}

	if err != nil {
		return err
	}

	if c.Strict && runtime > 0 {
		return ErrRuntimeRequired.With(slog.Int("count", runtime))
	}

	return nil
}

// report converts findings to an array of records.
func report(findings []finding) *lang.Array {
	out := lang.NewArray()

	for _, f := range findings {
		r := lang.NewRecord()
		r.Set("module", lang.String(f.module))
		r.Set("name", lang.String(f.Name))
		r.Set("static", lang.Bool(f.Sentinel == nil))

		if f.Sentinel != nil {
			r.Set("diagnostic", diagnosticValue(sentinelDiagnostic(f.Sentinel)))
		}

		out.Elems = append(out.Elems, r)
	}

	return out
}

func (c *Check) writeText(s Settings, findings []finding) error {
	cell := lipgloss.NewStyle().PaddingRight(2)
	tab := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return cell }).
		Headers("STATUS", "MODULE", "EXPORT")

	for _, f := range findings {
		verdict := "static"
		if f.Sentinel != nil {
			verdict = "runtime"
		}

		tab.Row(verdict, f.module, f.Name)
	}

	if len(findings) > 0 {
		if _, err := fmt.Fprintln(s.Stdout, tab.Render()); err != nil {
			return err
		}
	}

	for _, f := range findings {
		if f.Sentinel == nil {
			continue
		}

		if err := writeDiagnostic(s.Stderr, f.Name, sentinelDiagnostic(f.Sentinel)); err != nil {
			return err
		}
	}

	return nil
}
