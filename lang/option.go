package lang

import (
	"io/fs"
	"path"

	"github.com/ardnew/prestyle/log"
)

// DefaultMaxDepth bounds the evaluation recursion depth. Exceeding it
// yields a sentinel instead of exhausting the goroutine stack.
var DefaultMaxDepth = 1024

// DefaultMaxHops bounds the number of module boundaries a single import
// or re-export chain may cross.
var DefaultMaxHops = 64

// Option configures a [Program].
type Option func(*Program)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(p *Program) { p.logger = logger }
}

// WithMaxDepth sets the maximum evaluation depth.
func WithMaxDepth(depth int) Option {
	return func(p *Program) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithMaxHops sets the maximum length of an import/re-export chain.
func WithMaxHops(hops int) Option {
	return func(p *Program) {
		if hops > 0 {
			p.maxHops = hops
		}
	}
}

// WithFS sets the file system modules are read from. Paths are slash
// separated and relative to its root.
func WithFS(fsys fs.FS) Option {
	return func(p *Program) { p.fsys = fsys }
}

// WithSource adds an in-memory module that shadows any file of the same
// name.
func WithSource(name, src string) Option {
	return func(p *Program) { p.overlay[path.Clean(name)] = src }
}

// WithSearchPath appends directories searched for package-style
// specifiers after node_modules.
func WithSearchPath(dirs ...string) Option {
	return func(p *Program) {
		for _, d := range dirs {
			p.search = append(p.search, path.Clean(d))
		}
	}
}

// WithTypeOracle replaces the oracle consulted for constant string types.
func WithTypeOracle(o TypeOracle) Option {
	return func(p *Program) { p.oracle = o }
}

// WithHelpers replaces the embedded helper module set.
func WithHelpers(h *Helpers) Option {
	return func(p *Program) { p.helpers = h }
}

func applyDefaults(p *Program) {
	p.maxDepth = DefaultMaxDepth
	p.maxHops = DefaultMaxHops
	p.oracle = DeclaredTypes{}
	p.overlay = make(map[string]string)
	p.modules = make(map[string]*Module)
}

func applyOptions(p *Program, opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}
