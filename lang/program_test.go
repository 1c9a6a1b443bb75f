package lang

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ardnew/prestyle/log"
)

func resolveFS() fstest.MapFS {
	return fstest.MapFS{
		"src/app.ts":         {Data: []byte(`export const app = 1;`)},
		"src/util.ts":        {Data: []byte(`export const util = 2;`)},
		"src/theme/index.ts": {Data: []byte(`export const theme = 3;`)},
		"src/view.tsx":       {Data: []byte(`export const view = 4;`)},

		"node_modules/tokens/package.json":   {Data: []byte(`{"main": "dist/main.js", "types": "dist/main.d.ts"}`)},
		"node_modules/tokens/dist/main.d.ts": {Data: []byte(`export declare const size: number;`)},
		"src/node_modules/local.ts":          {Data: []byte(`export const local = 5;`)},

		"vendor/shared/index.ts":     {Data: []byte(`export const shared = 6;`)},
		"vendor/broken/package.json": {Data: []byte(`{not json`)},
	}
}

func TestProgram_Locate(t *testing.T) {
	p, err := Load(t.Context(), nil, WithFS(resolveFS()), WithSearchPath("vendor/"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		importer, spec string
		want           string
	}{
		{"src/app.ts", "./util", "src/util.ts"},
		{"src/app.ts", "./util.ts", "src/util.ts"},
		{"src/app.ts", "./util.js", "src/util.ts"},
		{"src/app.ts", "./view", "src/view.tsx"},
		{"src/app.ts", "./theme", "src/theme/index.ts"},
		{"src/theme/index.ts", "..", ""},
		{"src/theme/index.ts", "../app", "src/app.ts"},
		{"src/theme/index.ts", "/src/util", "src/util.ts"},
		{"src/app.ts", "tokens", "node_modules/tokens/dist/main.d.ts"},
		{"src/theme/index.ts", "local", "src/node_modules/local.ts"},
		{"src/app.ts", "shared", "vendor/shared/index.ts"},
		{"src/app.ts", "broken", ""},
		{"src/app.ts", "./absent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.importer+" "+tt.spec, func(t *testing.T) {
			got, ok := p.locate(tt.importer, tt.spec)
			if ok != (tt.want != "") || got != tt.want {
				t.Errorf("locate = %q, %v; want %q", got, ok, tt.want)
			}
		})
	}
}

func TestProgram_Overlay(t *testing.T) {
	fsys := fstest.MapFS{
		"theme.ts": {Data: []byte(`export const gap = 1;`)},
	}

	p, err := Load(t.Context(), []string{"./theme.ts", "scratch.ts"},
		WithFS(fsys),
		WithSource("theme.ts", `export const gap = 2;`),
		WithSource("scratch.ts", `import { gap } from './theme'; export const twice = gap * 2;`),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	v, s, err := p.EvaluateExport(t.Context(), "scratch.ts", "twice")
	if err != nil || s != nil {
		t.Fatalf("unexpected failure: %v %v", err, s)
	}

	if got := Inspect(v); got != "4" {
		t.Errorf("twice = %s, want 4", got)
	}

	var paths []string
	for _, m := range p.Modules() {
		paths = append(paths, m.Path)
	}

	if got := strings.Join(paths, ","); got != "theme.ts,scratch.ts" {
		t.Errorf("modules = %s", got)
	}

	a, _ := p.Module(t.Context(), "theme.ts")
	b, _ := p.Module(t.Context(), "./theme.ts")

	if a != b {
		t.Error("module loaded twice")
	}
}

func TestLoad_Errors(t *testing.T) {
	fsys := fstest.MapFS{}

	tests := []struct {
		entry string
		want  error
	}{
		{"missing.ts", ErrModuleNotFound},
		{"../outside.ts", ErrModuleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			_, err := Load(t.Context(), []string{tt.entry}, WithFS(fsys))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_LexicalErrorConfined(t *testing.T) {
	p, err := Load(t.Context(), []string{"unterminated.ts"}, WithSource("unterminated.ts", `
export const v = 1;
export const u = `+"`${v;"+`
export const w = 2;
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	m, err := p.Module(t.Context(), "unterminated.ts")
	if err != nil {
		t.Fatalf("Module failed: %v", err)
	}

	if errs := m.Errors(); len(errs) != 1 || !strings.Contains(errs[0].Error(), "unterminated template substitution") {
		t.Errorf("Errors() = %v", errs)
	}

	for name, want := range map[string]string{"v": "1", "w": "2"} {
		v, s, err := p.EvaluateExport(t.Context(), "unterminated.ts", name)
		if err != nil || s != nil {
			t.Fatalf("%s: unexpected failure: %v %v", name, err, s)
		}

		if got := Inspect(v); got != want {
			t.Errorf("%s = %s, want %s", name, got, want)
		}
	}
}

func TestProgram_EmbeddedImport(t *testing.T) {
	p, err := Load(t.Context(), []string{"main.ts"}, WithSource("main.ts", `
import { px, hover, compose } from 'prestyle';
export const button = compose({ padding: px(4) }, hover({ color: 'red' }));
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	v, s, err := p.EvaluateExport(t.Context(), "main.ts", "button")
	if err != nil || s != nil {
		t.Fatalf("unexpected failure: %v %v", err, s)
	}

	want := `{ padding: '4px', ':hover': { color: 'red' } }`
	if got := Inspect(v); got != want {
		t.Errorf("button = %s, want %s", got, want)
	}

	m, err := p.Embedded(t.Context())
	if err != nil || !m.Embedded {
		t.Fatalf("Embedded = %v, %v", m, err)
	}
}

func TestParseSource_Cache(t *testing.T) {
	ClearCache()

	const src = `export const a = 1;`

	f1, err := ParseSource(t.Context(), log.Logger{}, "a.ts", src)
	if err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}

	f2, _ := ParseSource(t.Context(), log.Logger{}, "a.ts", src)
	f3, _ := ParseSource(t.Context(), log.Logger{}, "b.ts", src)

	if f1 != f2 {
		t.Error("identical name and source parsed twice")
	}

	if f1 == f3 {
		t.Error("different names share a tree")
	}

	ClearCache()

	if f4, _ := ParseSource(t.Context(), log.Logger{}, "a.ts", src); f4 == f1 {
		t.Error("ClearCache kept the tree")
	}
}

func TestReadSource(t *testing.T) {
	src := strings.Repeat("export const x = 1;\n", 4096)

	got, err := ReadSource(strings.NewReader(src))
	if err != nil || got != src {
		t.Errorf("ReadSource = %d bytes, %v; want %d bytes", len(got), err, len(src))
	}
}
