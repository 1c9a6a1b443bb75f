package lang

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/ardnew/prestyle/lang/ast"
	"github.com/ardnew/prestyle/log"
)

// Program is a compilation view over a set of modules plus the embedded
// helper modules. Modules are loaded on demand as imports are resolved
// and stay loaded for the life of the Program.
type Program struct {
	fsys     fs.FS
	overlay  map[string]string
	search   []string
	helpers  *Helpers
	oracle   TypeOracle
	logger   log.Logger
	maxDepth int
	maxHops  int

	mu      sync.Mutex
	modules map[string]*Module
	order   []*Module
}

// Load creates a Program and loads each of the entry modules.
func Load(ctx context.Context, entries []string, opts ...Option) (*Program, error) {
	p := &Program{}

	applyDefaults(p)
	applyOptions(p, opts...)

	if p.fsys == nil {
		p.fsys = os.DirFS(".")
	}

	if p.helpers == nil {
		p.helpers = DefaultHelpers()
	}

	p.logger.TraceContext(ctx, "load program",
		slog.Any("entries", entries),
		slog.Int("overlay", len(p.overlay)),
		slog.Any("search_path", p.search),
	)

	for _, e := range entries {
		if _, err := p.Module(ctx, e); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Module returns the module at path, loading and parsing it if needed.
func (p *Program) Module(ctx context.Context, name string) (*Module, error) {
	name = path.Clean(name)

	p.mu.Lock()
	m, ok := p.modules[name]
	p.mu.Unlock()

	if ok {
		return m, nil
	}

	src, err := p.read(name)
	if err != nil {
		return nil, err
	}

	f, err := ParseSource(ctx, p.logger, name, src)
	if err != nil {
		return nil, err
	}

	for _, perr := range f.Errors {
		p.logger.WarnContext(ctx, "skipping malformed statement", slog.Any("error", perr))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.modules[name]; ok {
		return m, nil
	}

	m = &Module{Path: name, File: f}
	p.modules[name] = m
	p.order = append(p.order, m)

	return m, nil
}

// Modules returns the loaded modules in load order.
func (p *Program) Modules() []*Module {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*Module(nil), p.order...)
}

// Embedded returns the entry module of the embedded helper set.
func (p *Program) Embedded(ctx context.Context) (*Module, error) {
	return p.helpers.Entry(ctx)
}

func (p *Program) read(name string) (string, error) {
	if src, ok := p.overlay[name]; ok {
		return src, nil
	}

	if !fs.ValidPath(name) {
		return "", ErrModuleNotFound.With(slog.String("path", name))
	}

	f, err := p.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrModuleNotFound.Wrap(err).With(slog.String("path", name))
		}

		return "", ErrReadInput.Wrap(err).With(slog.String("path", name))
	}
	defer f.Close()

	src, err := ReadSource(f)
	if err != nil {
		return "", WrapError(err).With(slog.String("path", name))
	}

	return src, nil
}

func (p *Program) isFile(name string) bool {
	if _, ok := p.overlay[name]; ok {
		return true
	}

	if !fs.ValidPath(name) {
		return false
	}

	fi, err := fs.Stat(p.fsys, name)

	return err == nil && fi.Mode().IsRegular()
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// importModule returns the module that spec, imported by from, refers to.
// The embedded helper table is consulted before any path resolution.
func (p *Program) importModule(ctx context.Context, from *Module, spec string) (*Module, error) {
	if spec == EmbeddedName || (from.Embedded && isRelative(spec)) {
		return p.helpers.Module(ctx, spec)
	}

	name, ok := p.locate(from.Path, spec)
	if !ok {
		return nil, ErrModuleNotFound.With(
			slog.String("specifier", spec),
			slog.String("importer", from.Path),
		)
	}

	p.logger.TraceContext(ctx, "resolve module",
		slog.String("specifier", spec),
		slog.String("importer", from.Path),
		slog.String("path", name),
	)

	return p.Module(ctx, name)
}

// locate maps a module specifier to a file: relative and rooted
// specifiers against the importer, package specifiers through
// node_modules directories from the importer upward and then the search
// path.
func (p *Program) locate(importer, spec string) (string, bool) {
	dir := path.Dir(importer)

	switch {
	case isRelative(spec):
		return p.file(path.Join(dir, spec))
	case strings.HasPrefix(spec, "/"):
		return p.file(strings.TrimPrefix(path.Clean(spec), "/"))
	}

	for d := dir; ; d = path.Dir(d) {
		if name, ok := p.pkg(path.Join(d, "node_modules", spec)); ok {
			return name, true
		}

		if d == "." || d == "/" {
			break
		}
	}

	for _, sp := range p.search {
		if name, ok := p.pkg(path.Join(sp, spec)); ok {
			return name, true
		}
	}

	return "", false
}

var (
	sourceExts = []string{".ts", ".tsx", ".d.ts"}
	scriptExts = []string{".js", ".jsx", ".mjs", ".cjs"}
)

// file tries base as a file, with each source extension, with a script
// extension swapped for a source one, and as a directory index.
func (p *Program) file(base string) (string, bool) {
	candidates := []string{base}

	for _, ext := range scriptExts {
		if strings.HasSuffix(base, ext) {
			stem := strings.TrimSuffix(base, ext)
			for _, src := range sourceExts {
				candidates = append(candidates, stem+src)
			}
		}
	}

	for _, ext := range sourceExts {
		candidates = append(candidates, base+ext)
	}

	for _, ext := range sourceExts {
		candidates = append(candidates, path.Join(base, "index"+ext))
	}

	for _, c := range candidates {
		if p.isFile(c) {
			return c, true
		}
	}

	return "", false
}

// pkg resolves a package directory through its manifest entry points.
func (p *Program) pkg(dir string) (string, bool) {
	if name, ok := p.file(dir); ok {
		return name, true
	}

	manifest := path.Join(dir, "package.json")
	if !p.isFile(manifest) {
		return "", false
	}

	src, err := p.read(manifest)
	if err != nil {
		return "", false
	}

	var pj struct {
		Types   string `json:"types"`
		Typings string `json:"typings"`
		Module  string `json:"module"`
		Main    string `json:"main"`
	}

	if err := json.Unmarshal([]byte(src), &pj); err != nil {
		return "", false
	}

	for _, entry := range []string{pj.Types, pj.Typings, pj.Module, pj.Main} {
		if entry == "" {
			continue
		}

		if name, ok := p.file(path.Join(dir, entry)); ok {
			return name, true
		}
	}

	return "", false
}

// lookupExport finds name among the exports of m, searching export *
// clauses depth first.
func (p *Program) lookupExport(
	ctx context.Context,
	m *Module,
	name string,
	hops int,
) (Symbol, bool, error) {
	if hops > p.maxHops {
		return Symbol{}, false, ErrCyclicExport.With(
			slog.String("name", name),
			slog.String("module", m.Path),
		)
	}

	if s, ok := m.ownExport(name); ok {
		return s, true, nil
	}

	if name == "default" {
		return Symbol{}, false, nil
	}

	for _, star := range m.stars {
		t, err := p.importModule(ctx, m, star.From)
		if err != nil {
			if errors.Is(err, ErrEmbeddedModule) {
				return Symbol{}, false, err
			}

			p.logger.DebugContext(ctx, "skipping unresolved export *", slog.Any("error", err))

			continue
		}

		s, ok, err := p.lookupExport(ctx, t, name, hops+1)
		if err != nil || ok {
			return s, ok, err
		}
	}

	return Symbol{}, false, nil
}

// Export returns the symbol m exports under name, without resolving it.
func (p *Program) Export(ctx context.Context, m *Module, name string) (Symbol, bool, error) {
	return p.lookupExport(ctx, m, name, 0)
}

// ExportNames returns every name m exports, its own exports first in
// declaration order followed by names re-exported through export *.
func (p *Program) ExportNames(ctx context.Context, m *Module) ([]string, error) {
	seen := make(map[string]bool)

	var names []string

	err := p.exportNames(ctx, m, 0, seen, &names)

	return names, err
}

func (p *Program) exportNames(
	ctx context.Context,
	m *Module,
	hops int,
	seen map[string]bool,
	names *[]string,
) error {
	if hops > p.maxHops {
		return ErrCyclicExport.With(slog.String("module", m.Path))
	}

	for _, name := range m.OwnExports() {
		if !seen[name] {
			seen[name] = true
			*names = append(*names, name)
		}
	}

	for _, star := range m.stars {
		t, err := p.importModule(ctx, m, star.From)
		if err != nil {
			if errors.Is(err, ErrEmbeddedModule) {
				return err
			}

			continue
		}

		// default is never re-exported by export *
		had := seen["default"]
		seen["default"] = true

		if err := p.exportNames(ctx, t, hops+1, seen, names); err != nil {
			return err
		}

		seen["default"] = had
	}

	return nil
}

// Resolve follows import and re-export chains from sym to its declaring
// node. It returns sym unchanged when the chain leads nowhere, for
// example an import of a module that cannot be found. The error is
// non-nil only for configuration failures: an unusable embedded module or
// a chain longer than the hop limit.
func (p *Program) Resolve(ctx context.Context, sym Symbol) (Symbol, error) {
	orig := sym

	for hops := 0; !sym.Concrete(); hops++ {
		if hops > p.maxHops {
			return orig, ErrCyclicExport.With(
				slog.String("name", orig.Name),
				slog.String("module", orig.Module.Path),
			)
		}

		if err := ctx.Err(); err != nil {
			return orig, ErrContextDone.Wrap(err)
		}

		var from, imported string

		switch d := sym.Decl.(type) {
		case *ast.ImportSpec:
			from, imported = d.From, d.Imported
		case *ast.ExportSpec:
			from, imported = d.From, d.Local
		case *ast.ExportAll:
			from, imported = d.From, "*"
		default:
			return orig, nil
		}

		target, err := p.importModule(ctx, sym.Module, from)
		if err != nil {
			if errors.Is(err, ErrEmbeddedModule) {
				return orig, err
			}

			p.logger.DebugContext(ctx, "unresolved import", slog.Any("error", err))

			return orig, nil
		}

		if imported == "*" {
			return Symbol{Name: sym.Name, Module: target, Namespace: true}, nil
		}

		next, ok, err := p.lookupExport(ctx, target, imported, hops)
		if err != nil {
			return orig, err
		}

		if !ok {
			p.logger.DebugContext(ctx, "missing export",
				slog.String("name", imported),
				slog.String("module", target.Path),
			)

			return orig, nil
		}

		p.logger.TraceContext(ctx, "resolve hop",
			slog.String("name", imported),
			slog.String("module", target.Path),
			slog.Int("hop", hops),
		)

		sym = next
	}

	return sym, nil
}
