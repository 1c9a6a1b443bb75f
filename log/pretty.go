package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of one output. Colors are dropped
// automatically when the output is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, ts, null lipgloss.Style
	trace, debug, info, warn, err         lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		ts:    fg("4"),
		null:  fg("8"),
		trace: fg("8").Bold(true),
		debug: fg("4").Bold(true),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	}

	return p.trace
}

func (p palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return p.num.Render(v.String())
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())
	case slog.KindTime:
		return p.ts.Render(v.Time().Format(time.RFC3339))
	}

	switch x := v.Any().(type) {
	case nil:
		return p.null.Render("null")
	case error:
		return p.no.Render(x.Error())
	default:
		return p.str.Render(fmt.Sprint(x))
	}
}

// field is one rendered key/value pair.
type field struct{ key, val string }

// prettyHandler renders records for people rather than machines: as
// key=value pairs on one line, or as an indented JSON-like object.
// Group members are flattened to dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    palette
	json   bool
	prefix string
	attrs  []field
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, pal: newPalette(w)}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	h := newPrettyTextHandler(w, opts)
	h.json = true

	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

// replace applies the configured attribute rewriting to a built-in attr.
func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr != nil {
		return h.opts.ReplaceAttr(nil, a)
	}

	return a
}

// flatten appends a and, for groups, its members to out.
func (h *prettyHandler) flatten(out []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, m := range a.Value.Group() {
			out = h.flatten(out, prefix, m)
		}

		return out
	}

	if a.Key == "" {
		return out
	}

	return append(out, field{key: prefix + a.Key, val: h.pal.value(a.Value)})
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []field

	if !r.Time.IsZero() {
		if a := h.replace(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			fields = append(fields, field{a.Key, h.pal.ts.Render(a.Value.Resolve().String())})
		}
	}

	if a := h.replace(slog.Any(slog.LevelKey, r.Level)); a.Key != "" {
		fields = append(fields, field{a.Key, h.pal.level(r.Level).Render(a.Value.Resolve().String())})
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields, field{slog.SourceKey, h.pal.str.Render(fmt.Sprintf("%s:%d", src.File, src.Line))})
		}
	}

	fields = append(fields, field{slog.MessageKey, h.pal.str.Render(r.Message)})
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.flatten(fields, h.prefix, a)

		return true
	})

	var buf bytes.Buffer

	if h.json {
		buf.WriteString("{\n")

		for i, f := range fields {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  " + h.pal.key.Render(f.key) + ": " + f.val)
		}

		buf.WriteString("\n}\n")
	} else {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = h.pal.key.Render(f.key) + "=" + f.val
		}

		buf.WriteString(strings.Join(parts, " ") + "\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) clone() *prettyHandler {
	c := *h
	c.attrs = append([]field(nil), h.attrs...)

	return &c
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		c.attrs = c.flatten(c.attrs, c.prefix, a)
	}

	return c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := h.clone()
	c.prefix += name + "."

	return c
}
