package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/prestyle/log"
)

var testModules = map[string]string{
	"theme.ts": `
import { scale } from './scale';
export const colors = { primary: 'steelblue', accent: 'tomato' };
export const gap = scale(2);
export const width = window.innerWidth;
`,
	"scale.ts": `export const scale = (n: number) => n * 4;`,
	"button.ts": `
export const button = {
  backgroundColor: 'red',
  padding: [4, '4px'],
  ':hover': { color: 'blue' },
};
export const label = 'Go';
`,
}

// testEnv writes the test modules to a temporary root and returns a
// context carrying settings that capture output.
func testEnv(t *testing.T) (ctx context.Context, root string, stdout, stderr *bytes.Buffer) {
	t.Helper()

	root = t.TempDir()

	for name, src := range testModules {
		if err := os.WriteFile(filepath.Join(root, name), []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}

	ctx = WithSettings(t.Context(), Settings{
		Root:   root,
		Logger: log.Make(io.Discard),
		Stdin:  strings.NewReader("export const a = 1 + 1;"),
		Stdout: stdout,
		Stderr: stderr,
	})

	return ctx, root, stdout, stderr
}

func TestSettings_Relative(t *testing.T) {
	root := t.TempDir()
	s := Settings{Root: root}

	rel, err := s.relative(filepath.Join(root, "a", "b.ts"))
	if err != nil || rel != "a/b.ts" {
		t.Errorf("relative = %q, %v; want a/b.ts", rel, err)
	}

	if _, err := s.relative(filepath.Dir(root)); err == nil {
		t.Error("path outside root should fail")
	}
}

func TestUniqueFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ts")
	b := filepath.Join(dir, "b.ts")

	for _, f := range []string{a, b} {
		if err := os.WriteFile(f, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	got := uniqueFiles([]string{"-", a, b, filepath.Join(dir, ".", "a.ts"), "-", "missing.ts"})
	want := []string{a, b, "missing.ts", "-"}

	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("uniqueFiles = %v, want %v", got, want)
	}
}
