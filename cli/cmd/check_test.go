package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheck_Text(t *testing.T) {
	ctx, root, stdout, stderr := testEnv(t)

	c := Check{
		Files:  []string{filepath.Join(root, "theme.ts"), filepath.Join(root, "button.ts")},
		Output: OutputText,
	}

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), stdout.String())
	}

	for i, want := range [][]string{
		{"STATUS", "MODULE", "EXPORT"},
		{"static", "theme.ts", "colors"},
		{"static", "theme.ts", "gap"},
		{"runtime", "theme.ts", "width"},
		{"static", "button.ts", "button"},
		{"static", "button.ts", "label"},
	} {
		if got := strings.Fields(lines[i]); strings.Join(got, " ") != strings.Join(want, " ") {
			t.Errorf("line %d = %q, want %v", i, lines[i], want)
		}
	}

	if !strings.Contains(stderr.String(), "Unable to resolve identifier 'window'") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestCheck_Strict(t *testing.T) {
	ctx, root, _, _ := testEnv(t)

	c := Check{Files: []string{filepath.Join(root, "theme.ts")}, Strict: true, Output: OutputText}
	if err := c.Run(ctx); !errors.Is(err, ErrRuntimeRequired) {
		t.Errorf("Run() error = %v, want %v", err, ErrRuntimeRequired)
	}

	c.Files = []string{filepath.Join(root, "button.ts")}
	if err := c.Run(ctx); err != nil {
		t.Errorf("Run() on static module: %v", err)
	}
}

func TestCheck_JSON(t *testing.T) {
	ctx, root, stdout, _ := testEnv(t)

	c := Check{Files: []string{filepath.Join(root, "theme.ts")}, Output: OutputJSON}
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	var got []struct {
		Module     string `json:"module"`
		Name       string `json:"name"`
		Static     bool   `json:"static"`
		Diagnostic *struct {
			Line   int    `json:"line"`
			Source string `json:"source"`
		} `json:"diagnostic"`
	}

	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout.String(), err)
	}

	if len(got) != 3 || got[2].Name != "width" || got[2].Static || got[2].Diagnostic == nil {
		t.Fatalf("unexpected report %+v", got)
	}

	if got[2].Diagnostic.Line != 5 || got[2].Diagnostic.Source != "window" {
		t.Errorf("diagnostic = %+v", *got[2].Diagnostic)
	}
}
