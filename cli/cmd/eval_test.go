package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/prestyle/lang"
)

func TestEval(t *testing.T) {
	tests := []struct {
		name    string
		eval    Eval
		want    string
		stderr  string
		wantErr error
	}{
		{
			name:   "all exports",
			eval:   Eval{File: "theme.ts", Output: OutputJSON},
			want:   `{"colors":{"primary":"steelblue","accent":"tomato"},"gap":8}`,
			stderr: "width: Unable to resolve identifier 'window'",
		},
		{
			name: "named export",
			eval: Eval{File: "theme.ts", Names: []string{"gap"}, Output: OutputJSON},
			want: `8`,
		},
		{
			name: "named exports",
			eval: Eval{File: "theme.ts", Names: []string{"gap", "colors"}, Output: OutputJSON},
			want: `{"gap":8,"colors":{"primary":"steelblue","accent":"tomato"}}`,
		},
		{
			name: "expression as text",
			eval: Eval{File: "theme.ts", Expr: "colors.accent.toUpperCase()", Output: OutputText},
			want: `TOMATO`,
		},
		{
			name: "query",
			eval: Eval{File: "theme.ts", Output: OutputJSON, Query: "result.gap * 2 + len(diagnostics)"},
			want: `17`,
		},
		{
			name: "yaml",
			eval: Eval{File: "theme.ts", Names: []string{"colors"}, Output: OutputYAML, Indent: 2},
			want: "primary: steelblue\naccent: tomato",
		},
		{
			name: "stdin",
			eval: Eval{File: "-", Output: OutputJSON},
			want: `{"a":2}`,
		},
		{
			name:    "runtime only",
			eval:    Eval{File: "theme.ts", Names: []string{"width"}, Output: OutputJSON},
			stderr:  "theme.ts:5: width:",
			wantErr: ErrRuntimeRequired,
		},
		{
			name:    "missing export",
			eval:    Eval{File: "theme.ts", Names: []string{"nope"}},
			wantErr: lang.ErrExportNotFound,
		},
		{
			name:    "missing module",
			eval:    Eval{File: "nope.ts"},
			wantErr: ErrLoad,
		},
		{
			name:    "bad query",
			eval:    Eval{File: "theme.ts", Query: "result.("},
			wantErr: ErrQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, root, stdout, stderr := testEnv(t)

			if tt.eval.File != "-" {
				tt.eval.File = filepath.Join(root, tt.eval.File)
			}

			err := tt.eval.Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Run() unexpected error: %v", err)
			}

			if got := strings.TrimSpace(stdout.String()); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}

			if !strings.Contains(stderr.String(), tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.stderr)
			}
		})
	}
}
