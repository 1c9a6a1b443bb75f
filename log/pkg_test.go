package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func swapDefault(t *testing.T, l Logger) {
	t.Helper()

	original := defaultLog
	defaultLog = l

	t.Cleanup(func() { defaultLog = original })
}

func TestPackage_LogFunctions(t *testing.T) {
	var buf bytes.Buffer
	swapDefault(t, plain(&buf, WithLevel(LevelTrace)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			for _, want := range []string{`"level":"` + tt.level + `"`, `"msg":"message"`, `"key":"value"`} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %s", out, want)
				}
			}
		})
	}
}

func TestPackage_ContextFunctions(t *testing.T) {
	var buf bytes.Buffer
	swapDefault(t, plain(&buf, WithLevel(LevelTrace), WithFormat(FormatText)))

	ctx := t.Context()
	TraceContext(ctx, "a")
	DebugContext(ctx, "b")
	InfoContext(ctx, "c")
	WarnContext(ctx, "d")
	ErrorContext(ctx, "e")

	if n := strings.Count(buf.String(), "\n"); n != 5 {
		t.Errorf("got %d lines, want 5", n)
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer
	swapDefault(t, plain(&buf))

	l := Config(WithLevel(LevelDebug), WithFormat(FormatText), WithCaller(true))
	if Default().Level() != LevelDebug || l.Format() != FormatText {
		t.Fatalf("Config not applied: level=%v format=%v", Default().Level(), l.Format())
	}

	Debug("here")

	if !strings.Contains(buf.String(), "pkg_test.go") {
		t.Errorf("caller should be the test, got %q", buf.String())
	}

	With(slog.Bool("on", true)).Info("with")

	if !strings.Contains(buf.String(), "on=true") {
		t.Errorf("With attrs missing: %q", buf.String())
	}
}
