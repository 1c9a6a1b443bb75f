package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/prestyle/lang"
	"github.com/ardnew/prestyle/style"
)

// CSS renders an exported style record as CSS.
type CSS struct {
	File     string `arg:"" help:"Module declaring the style, or '-' for stdin"`
	Name     string `arg:"" help:"Export holding the style record"`
	Selector string `       help:"Render rules for selector, nested records included, instead of a bare declaration block" short:"s"`
}

// Run executes the css command.
func (c *CSS) Run(ctx context.Context) error {
	s := settingsFrom(ctx)

	p, mod, err := s.load(ctx, c.File)
	if err != nil {
		return err
	}

	v, sent, err := p.EvaluateExport(ctx, mod, c.Name)
	if err != nil {
		return ErrEvaluate.With(slog.String("export", c.Name)).Wrap(err)
	}

	if sent != nil {
		if err := writeDiagnostic(s.Stderr, c.Name, sentinelDiagnostic(sent)); err != nil {
			return err
		}

		return ErrRuntimeRequired.With(slog.String("export", c.Name))
	}

	rec, ok := v.(*lang.Record)
	if !ok {
		return ErrEvaluate.With(
			slog.String("export", c.Name),
			slog.String("type", lang.TypeOf(v)),
		).Wrap(lang.ErrNotRecord)
	}

	opt := style.WithLogger(s.Logger)

	var out string
	if c.Selector == "" {
		out = style.DeclarationBlock(ctx, rec, opt)
	} else {
		out = strings.Join(style.Stylesheet(ctx, c.Selector, rec, opt), "\n")
	}

	_, err = fmt.Fprintln(s.Stdout, out)

	return err
}
