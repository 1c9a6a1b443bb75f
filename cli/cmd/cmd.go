package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/prestyle/lang"
	"github.com/ardnew/prestyle/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Settings are the global options every command loads modules with.
type Settings struct {
	Root     string   // modules are read relative to Root
	Path     []string // search directories for package-style imports
	MaxDepth int
	MaxHops  int
	Logger   log.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type settingsKey struct{}

// WithSettings returns a new context.Context carrying s.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// settingsFrom returns the settings stored in ctx with unset fields
// filled in from the process.
func settingsFrom(ctx context.Context) Settings {
	s, _ := ctx.Value(settingsKey{}).(Settings)

	if s.Root == "" {
		s.Root = "."
	}

	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}

	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}

	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}

	return s
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinModule names the module read from stdin, and scratchModule the
// empty module loaded when no file is given. Their relative imports
// resolve against Root.
const (
	stdinModule   = "<stdin>.ts"
	scratchModule = "<repl>.ts"
)

// options returns the loader options for s.
func (s Settings) options(ctx context.Context) []lang.Option {
	opts := []lang.Option{
		lang.WithLogger(s.Logger),
		lang.WithFS(os.DirFS(s.Root)),
		lang.WithMaxDepth(s.MaxDepth),
		lang.WithMaxHops(s.MaxHops),
	}

	for _, dir := range s.Path {
		rel, err := s.relative(dir)
		if err != nil {
			s.Logger.WarnContext(ctx, "ignoring search path",
				slog.String("dir", dir),
				slog.Any("error", err))

			continue
		}

		opts = append(opts, lang.WithSearchPath(rel))
	}

	return opts
}

// relative converts a file system path to the slash-separated form the
// loader reads, relative to Root.
func (s Settings) relative(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrLoad.With(
			slog.String("file", file),
			slog.String("root", s.Root),
		).Wrap(lang.ErrModuleNotFound)
	}

	return filepath.ToSlash(rel), nil
}

// load creates a Program with file as its entry module and returns the
// module path file was loaded as.
func (s Settings) load(ctx context.Context, file string) (*lang.Program, string, error) {
	opts := s.options(ctx)

	var name string

	switch file {
	case "":
		name = scratchModule
		opts = append(opts, lang.WithSource(name, ""))
	case stdinSource:
		src, err := lang.ReadSource(s.Stdin)
		if err != nil {
			return nil, "", ErrLoad.With(slog.String("file", file)).Wrap(err)
		}

		name = stdinModule
		opts = append(opts, lang.WithSource(name, src))
	default:
		rel, err := s.relative(file)
		if err != nil {
			return nil, "", err
		}

		name = rel
	}

	p, err := lang.Load(ctx, []string{name}, opts...)
	if err != nil {
		return nil, "", ErrLoad.With(slog.String("file", file)).Wrap(err)
	}

	return p, name, nil
}

// uniqueFiles drops repeated files, comparing them by identity so that
// relative paths and symlinks to one file collapse. Stdin is kept once,
// last. Files that cannot be stat'ed are kept so loading reports them.
func uniqueFiles(files []string) []string {
	var (
		out   []string
		seen  []os.FileInfo
		stdin bool
	)

	for _, f := range files {
		if f == stdinSource {
			stdin = true

			continue
		}

		info, err := os.Stat(f)
		if err != nil {
			out = append(out, f)

			continue
		}

		dup := false

		for _, s := range seen {
			if os.SameFile(s, info) {
				dup = true

				break
			}
		}

		if !dup {
			seen = append(seen, info)
			out = append(out, f)
		}
	}

	if stdin {
		out = append(out, stdinSource)
	}

	return out
}
