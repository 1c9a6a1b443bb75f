package repl

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/prestyle/lang"
	"github.com/ardnew/prestyle/log"
)

var testLogger = log.Make(io.Discard)

var testFS = fstest.MapFS{
	"theme.ts": {Data: []byte(`
export const colors = { primary: '#336699', accent: 'tomato' };
export const spacing = (n: number) => n * 4;
export const dynamic = window.innerWidth;
`)},
	"other.ts": {Data: []byte(`export const answer = 42;`)},
	"broken.ts": {Data: []byte(`export const ok = 1;
export const bad = (1 + ;
export const also = 2;
`)},
}

func testLoader(ctx context.Context, file string) (*lang.Program, string, error) {
	p, err := lang.Load(ctx, []string{file}, lang.WithFS(testFS))

	return p, file, err
}

func testSession(t *testing.T) *session {
	t.Helper()

	s, err := newSession(t.Context(), testLoader, "theme.ts", testLogger)
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}

	return s
}

func TestSession_Run(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		line string
		want string
		act  action
	}{
		{"spacing(2)", "8", actionPrint},
		{"colors.primary", "'#336699'", actionPrint},
		{"dynamic", "requires runtime", actionPrint},
		{"1 +", "syntax error", actionPrint},
		{":let x = spacing(3)", "x = 12", actionPrint},
		{"x + 1", "13", actionPrint},
		{":let bad", "usage", actionPrint},
		{":let y = window", "requires runtime", actionPrint},
		{":exports", "dynamic: requires runtime", actionPrint},
		{":help", ":let NAME = EXPR", actionPrint},
		{":hep", "did you mean :help", actionPrint},
		{":clear", "", actionClear},
		{":q", "", actionQuit},
		{":load other.ts", "loaded other.ts", actionPrint},
		{"answer", "42", actionPrint},
		{"x", "12", actionPrint},
	}

	for _, tt := range tests {
		out, act := s.run(t.Context(), tt.line)

		if act != tt.act {
			t.Errorf("run(%q) action = %v, want %v", tt.line, act, tt.act)
		}

		if !strings.Contains(out, tt.want) {
			t.Errorf("run(%q) = %q, want it to contain %q", tt.line, out, tt.want)
		}
	}
}

func TestSession_LoadSyntaxErrors(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		line string
		want string
	}{
		{":load broken.ts", "1 syntax error(s)"},
		{":load broken.ts", "broken.ts:2:"},
		{"ok + also", "3"},
	}

	for _, tt := range tests {
		if out, _ := s.run(t.Context(), tt.line); !strings.Contains(out, tt.want) {
			t.Errorf("run(%q) = %q, want it to contain %q", tt.line, out, tt.want)
		}
	}
}

func TestSession_LoadMissing(t *testing.T) {
	s := testSession(t)

	out, _ := s.run(t.Context(), ":load missing.ts")
	if !strings.Contains(out, "module not found") {
		t.Errorf("got %q", out)
	}

	if s.mod != "theme.ts" {
		t.Errorf("failed load replaced the module: %q", s.mod)
	}

	if _, err := newSession(t.Context(), testLoader, "missing.ts", testLogger); !errors.Is(err, lang.ErrModuleNotFound) {
		t.Errorf("newSession error = %v, want %v", err, lang.ErrModuleNotFound)
	}
}

func TestSession_Complete(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		input string
		want  string // best match; empty for none
	}{
		{"spac", "spacing"},
		{"colors.pri", "primary"},
		{"1 + colors.acc", "accent"},
		{"Math.flo", "floor"},
		{":he", "help"},
		{":exp", "exports"},
		{"", ""},
		{"nothingmatcheszzz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := s.complete(t.Context(), tt.input, len(tt.input))

			if tt.want == "" {
				if len(c.matches) != 0 {
					t.Errorf("matches = %v, want none", c.matches)
				}

				return
			}

			if len(c.matches) == 0 || c.matches[0].Str != tt.want {
				t.Fatalf("matches = %v, want %q first", c.matches, tt.want)
			}
		})
	}

	c := s.complete(t.Context(), "colors.", len("colors."))
	if len(c.matches) != 2 {
		t.Errorf("members after dot = %v, want primary and accent", c.matches)
	}
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		input      string
		cursor     int
		word       string
		start, end int
	}{
		{"abc", 3, "abc", 0, 3},
		{"a + bc", 5, "bc", 4, 6},
		{"foo.bar", 5, "bar", 4, 7},
		{"f(x, y)", 4, "", 4, 4},
		{"abc", 10, "abc", 0, 3},
	}

	for _, tt := range tests {
		word, start, end := wordBounds(tt.input, tt.cursor)
		if word != tt.word || start != tt.start || end != tt.end {
			t.Errorf("wordBounds(%q, %d) = %q, %d, %d; want %q, %d, %d",
				tt.input, tt.cursor, word, start, end, tt.word, tt.start, tt.end)
		}
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"theme.colors.pr", "theme.colors"},
		{"x + theme.pr", "theme"},
		{"pr", ""},
		{"a?.b", ""},
	}

	for _, tt := range tests {
		_, start, _ := wordBounds(tt.input, len(tt.input))
		if got := parentPath(tt.input, start); got != tt.want {
			t.Errorf("parentPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	if err := h.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}

	for _, line := range []string{"a", "b", "  ", "b", "a"} {
		if err := h.Add(line); err != nil {
			t.Fatalf("Add(%q): %v", line, err)
		}
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	for _, hist := range []*History{h, reloaded} {
		if hist.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", hist.Len())
		}

		first, _ := hist.Line(0)
		last, _ := hist.Line(1)

		if first != "b" || last != "a" {
			t.Errorf("entries = %q, %q; want b, a", first, last)
		}
	}

	if _, err := h.Line(2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Line(2) error = %v", err)
	}
}

func update(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()

	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}

	return m
}

func TestModel_TabAndEnter(t *testing.T) {
	m := newModel(t.Context(), testSession(t), NewHistory(""))

	m = update(t, m,
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("spac")},
		tea.KeyMsg{Type: tea.KeyTab},
	)

	if got := m.input.Value(); got != "spacing" {
		t.Fatalf("after Tab input = %q, want spacing", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.input.Value() != "" || m.history.Len() != 1 {
		t.Fatalf("after Enter input = %q, history = %d", m.input.Value(), m.history.Len())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})

	if got := m.input.Value(); got != "spacing" {
		t.Errorf("after Up input = %q, want spacing", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	if got := m.input.Value(); got != "" {
		t.Errorf("after Down input = %q, want empty", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})

	if !m.quit || m.View() != "" {
		t.Error("Ctrl+D should quit")
	}
}
