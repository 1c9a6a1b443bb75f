package repl

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/prestyle/lang"
	"github.com/ardnew/prestyle/log"
)

// Loader loads file as the entry module of a new program and returns
// the module path it was loaded as.
type Loader func(ctx context.Context, file string) (*lang.Program, string, error)

// session is the evaluation state of a REPL, independent of the
// terminal: the loaded module and the names bound with :let.
type session struct {
	load   Loader
	logger log.Logger
	file   string
	prog   *lang.Program
	mod    string
	lets   map[string]lang.Value
}

func newSession(ctx context.Context, load Loader, file string, logger log.Logger) (*session, error) {
	s := &session{load: load, logger: logger, lets: make(map[string]lang.Value)}

	if err := s.open(ctx, file); err != nil {
		return nil, err
	}

	return s, nil
}

// open replaces the loaded module. Bindings made with :let survive.
func (s *session) open(ctx context.Context, file string) error {
	prog, mod, err := s.load(ctx, file)
	if err != nil {
		return err
	}

	s.file, s.prog, s.mod = file, prog, mod

	s.logger.DebugContext(ctx, "repl module loaded",
		slog.String("file", file),
		slog.String("module", mod))

	return nil
}

func (s *session) scope() lang.Scope {
	return lang.Scope(maps.Clone(s.lets))
}

// eval evaluates src in the loaded module and renders the result.
func (s *session) eval(ctx context.Context, src string) (string, error) {
	v, sent, err := s.prog.EvaluateExpr(ctx, s.mod, src, s.scope())
	if err != nil {
		return "", err
	}

	if sent != nil {
		return renderSentinel(sent), nil
	}

	return lang.Inspect(v), nil
}

// value evaluates src quietly, reporting false for anything but a
// concrete value.
func (s *session) value(ctx context.Context, src string) (lang.Value, bool) {
	v, sent, err := s.prog.EvaluateExpr(ctx, s.mod, src, s.scope())

	return v, err == nil && sent == nil
}

func renderSentinel(sent *lang.Sentinel) string {
	d := sent.Diagnostic()
	if d == nil {
		return sentinelStyle.Render("requires runtime: " + sent.Message)
	}

	return sentinelStyle.Render("requires runtime: "+d.Message) + "\n" +
		hintStyle.Render(fmt.Sprintf("  %s:%d: %s", d.File, d.Line+1, d.Source))
}

// commandHelp describes the control commands, in display order.
var commandHelp = []struct{ name, usage, help string }{
	{"clear", ":clear", "clear the screen"},
	{"exports", ":exports", "evaluate every export of the current module"},
	{"help", ":help", "print this help"},
	{"let", ":let NAME = EXPR", "bind NAME to the value of EXPR"},
	{"load", ":load FILE", "load FILE as the current module"},
	{"quit", ":quit", "exit (also Ctrl+D)"},
}

// handlers implements the control commands that produce output; clear
// and quit act on the terminal instead.
var handlers = map[string]func(*session, context.Context, string) (string, error){
	"exports": (*session).exports,
	"help":    (*session).help,
	"let":     (*session).let,
	"load":    (*session).loadCommand,
}

// commandNames returns the control command names, sorted.
func commandNames() []string {
	names := make([]string, len(commandHelp))
	for i, c := range commandHelp {
		names[i] = c.name
	}

	return names
}

func usage(name string) error {
	for _, c := range commandHelp {
		if c.name == name {
			return fmt.Errorf("%w: %s", ErrUsage, c.usage)
		}
	}

	return ErrUsage
}

func (s *session) help(context.Context, string) (string, error) {
	var b strings.Builder

	b.WriteString("Type an expression to evaluate it in the current module.\n\n")

	for _, c := range commandHelp {
		fmt.Fprintf(&b, "  %-18s %s\n", c.usage, c.help)
	}

	b.WriteString("\nTab and Shift+Tab cycle completions; Up and Down walk the history.")

	return b.String(), nil
}

func (s *session) loadCommand(ctx context.Context, arg string) (string, error) {
	if arg == "" {
		return "", usage("load")
	}

	if err := s.open(ctx, arg); err != nil {
		return "", err
	}

	m, err := s.prog.Module(ctx, s.mod)
	if err != nil {
		return "", err
	}

	errs := m.Errors()
	if len(errs) == 0 {
		return "loaded " + s.mod, nil
	}

	var b strings.Builder

	fmt.Fprintf(&b, "loaded %s with %d syntax error(s); those declarations are skipped", s.mod, len(errs))

	for _, err := range errs {
		b.WriteString("\n  " + err.Error())
	}

	return b.String(), nil
}

func (s *session) let(ctx context.Context, arg string) (string, error) {
	name, src, ok := strings.Cut(arg, "=")
	name, src = strings.TrimSpace(name), strings.TrimSpace(src)

	if !ok || name == "" || src == "" || strings.ContainsAny(name, " \t.") {
		return "", usage("let")
	}

	v, sent, err := s.prog.EvaluateExpr(ctx, s.mod, src, s.scope())
	if err != nil {
		return "", err
	}

	if sent != nil {
		return renderSentinel(sent), nil
	}

	s.lets[name] = v

	return name + " = " + lang.Inspect(v), nil
}

func (s *session) exports(ctx context.Context, _ string) (string, error) {
	bindings, err := s.prog.EvaluateExports(ctx, s.mod)
	if err != nil {
		return "", err
	}

	if len(bindings) == 0 {
		return hintStyle.Render("no exports"), nil
	}

	lines := make([]string, len(bindings))

	for i, b := range bindings {
		if b.Sentinel != nil {
			lines[i] = b.Name + ": " + renderSentinel(b.Sentinel)
		} else {
			lines[i] = b.Name + " = " + lang.Inspect(b.Value)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// names returns every name an expression may refer to at the top level.
func (s *session) names(ctx context.Context) []string {
	set := make(map[string]bool)

	for _, n := range lang.IntrinsicNames() {
		set[n] = true
	}

	for n := range s.lets {
		set[n] = true
	}

	if m, err := s.prog.Module(ctx, s.mod); err == nil {
		for _, n := range m.Locals() {
			set[n] = true
		}

		if exports, err := s.prog.ExportNames(ctx, m); err == nil {
			for _, n := range exports {
				set[n] = true
			}
		}
	}

	return slices.Sorted(maps.Keys(set))
}

// members returns the property names of the value of parent, when it
// evaluates to a record or an intrinsic with static members.
func (s *session) members(ctx context.Context, parent string) []string {
	v, ok := s.value(ctx, parent)
	if !ok {
		return nil
	}

	switch v := v.(type) {
	case *lang.Record:
		return v.Keys()
	case *lang.Builtin:
		if v.Props != nil {
			return v.Props.Keys()
		}
	}

	return nil
}
