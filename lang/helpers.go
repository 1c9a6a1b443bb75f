package lang

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
)

// EmbeddedName is the module specifier under which user code imports the
// helper module.
const EmbeddedName = "prestyle"

//go:embed helper/*.ts
var helperFS embed.FS

// Helpers is the built-in helper module set. It is parsed at most once,
// on first use, and never invalidated; concurrent first use is safe.
type Helpers struct {
	fsys  fs.FS
	entry string

	once    sync.Once
	modules map[string]*Module
	err     error
}

// NewHelpers returns a helper set read from the *.ts files at the root of
// fsys. entry names the file that stands for [EmbeddedName].
func NewHelpers(fsys fs.FS, entry string) *Helpers {
	return &Helpers{fsys: fsys, entry: entry}
}

var defaultHelpers = sync.OnceValue(func() *Helpers {
	sub, err := fs.Sub(helperFS, "helper")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}

	return NewHelpers(sub, EmbeddedName+".ts")
})

// DefaultHelpers returns the process-wide helper set compiled into the
// binary.
func DefaultHelpers() *Helpers { return defaultHelpers() }

func (h *Helpers) load(ctx context.Context) {
	h.once.Do(func() {
		names, err := fs.Glob(h.fsys, "*.ts")
		if err != nil {
			h.err = ErrEmbeddedModule.Wrap(err)

			return
		}

		h.modules = make(map[string]*Module, len(names))

		for _, name := range names {
			data, err := fs.ReadFile(h.fsys, name)
			if err != nil {
				h.err = ErrEmbeddedModule.Wrap(err).With(slog.String("file", name))

				return
			}

			// Embedded trees bypass the shared cache; they are already
			// memoized here for the life of the process.
			f, err := parseUncached(ctx, EmbeddedName+":"+name, string(data))
			if err == nil {
				err = f.Err()
			}

			if err != nil {
				h.err = ErrEmbeddedModule.Wrap(err).With(slog.String("file", name))

				return
			}

			h.modules[name] = &Module{Path: f.Name, File: f, Embedded: true}
		}

		if _, ok := h.modules[h.entry]; !ok {
			h.err = ErrEmbeddedModule.Wrap(errors.New("missing " + h.entry))
		}
	})
}

// Entry returns the module that user imports of [EmbeddedName] resolve to.
func (h *Helpers) Entry(ctx context.Context) (*Module, error) {
	h.load(ctx)

	if h.err != nil {
		return nil, h.err
	}

	return h.modules[h.entry], nil
}

// Module returns the helper module that spec names. Relative specifiers
// resolve against the flat helper table.
func (h *Helpers) Module(ctx context.Context, spec string) (*Module, error) {
	if spec == EmbeddedName {
		return h.Entry(ctx)
	}

	h.load(ctx)

	if h.err != nil {
		return nil, h.err
	}

	name := path.Clean(strings.TrimPrefix(spec, "./"))
	base := strings.TrimSuffix(name, path.Ext(name))

	for _, candidate := range []string{name, base + ".ts", base + ".tsx"} {
		if m, ok := h.modules[candidate]; ok {
			return m, nil
		}
	}

	return nil, ErrEmbeddedModule.With(slog.String("specifier", spec))
}
