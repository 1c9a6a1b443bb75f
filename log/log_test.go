package log

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func plain(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithPretty(false), WithTimeLayout("none")}, opts...)...)
}

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(nil)

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}

	if logger.caller != DefaultCaller || logger.pretty != DefaultPretty {
		t.Errorf("caller=%v pretty=%v, want defaults", logger.caller, logger.pretty)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  []string
		skip  []string
	}{
		{"trace", LevelTrace, []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, nil},
		{"info", LevelInfo, []string{"INFO", "WARN", "ERROR"}, []string{"TRACE", "DEBUG"}},
		{"error", LevelError, []string{"ERROR"}, []string{"WARN", "INFO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := plain(&buf, WithLevel(tt.level), WithFormat(FormatText))

			logger.Trace("m")
			logger.Debug("m")
			logger.Info("m")
			logger.Warn("m")
			logger.Error("m")

			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, "level="+s) {
					t.Errorf("missing level %s in %q", s, out)
				}
			}

			for _, s := range tt.skip {
				if strings.Contains(out, "level="+s) {
					t.Errorf("unexpected level %s in %q", s, out)
				}
			}
		})
	}
}

func TestLogger_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{"json", FormatJSON, `{"level":"INFO","msg":"hello","user":"alice"}` + "\n"},
		{"text", FormatText, "level=INFO msg=hello user=alice\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			plain(&buf, WithFormat(tt.format)).Info("hello", slog.String("user", "alice"))

			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_WithCaller(t *testing.T) {
	var buf bytes.Buffer
	plain(&buf, WithCaller(true)).Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("caller not recorded: %q", buf.String())
	}

	buf.Reset()
	plain(&buf).Info("where")

	if strings.Contains(buf.String(), "source") {
		t.Errorf("caller recorded when disabled: %q", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer
	base := plain(&buf, WithFormat(FormatText))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelInfo || wrapped.Level() != LevelDebug {
		t.Fatalf("levels = %v, %v", base.Level(), wrapped.Level())
	}

	base.Debug("hidden")
	wrapped.Debug("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := plain(&buf, WithFormat(FormatText)).With(slog.String("module", "main.ts"))
	logger.Info("loaded")

	if want := "level=INFO msg=loaded module=main.ts\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Info("nothing")
	logger.ErrorContext(t.Context(), "nothing")

	if logger.With(slog.Int("n", 1)).Logger != nil {
		t.Error("With on zero Logger should stay zero")
	}

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("zero Logger should report defaults")
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := plain(&buf, WithLevel(LevelTrace), WithFormat(FormatText))
	ctx := t.Context()

	logger.TraceContext(ctx, "a")
	logger.DebugContext(ctx, "b")
	logger.InfoContext(ctx, "c")
	logger.WarnContext(ctx, "d")
	logger.ErrorContext(ctx, "e")

	if n := strings.Count(buf.String(), "\n"); n != 5 {
		t.Errorf("got %d lines, want 5: %q", n, buf.String())
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func TestLogger_Concurrent(t *testing.T) {
	var out syncBuffer
	logger := Make(&out, WithPretty(false), WithFormat(FormatText))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for range 50 {
				logger.With(slog.Int("worker", i)).Info("tick")
			}
		})
	}
	wg.Wait()

	if n := strings.Count(out.buf.String(), "\n"); n != 400 {
		t.Errorf("got %d lines, want 400", n)
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := Make(&buf, WithPretty(false))

	for b.Loop() {
		buf.Reset()
		logger.Info("bench", slog.Int("n", 1))
	}
}
