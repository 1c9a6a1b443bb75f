package cmd

import (
	"context"

	"github.com/ardnew/prestyle/cli/cmd/repl"
	"github.com/ardnew/prestyle/lang"
)

// Repl starts the interactive shell.
type Repl struct {
	File string `arg:"" help:"Module to load at start" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	s := settingsFrom(ctx)

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, repl.Config{
		File: r.File,
		Load: func(ctx context.Context, file string) (*lang.Program, string, error) {
			return s.load(ctx, file)
		},
		CacheDir: cacheDir,
		Logger:   s.Logger,
	})
}
