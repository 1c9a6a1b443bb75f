package lang

import (
	"sync"

	"github.com/ardnew/prestyle/lang/ast"
)

// Module is one parsed source unit of a [Program] together with its
// lazily built symbol tables.
type Module struct {
	Path     string
	File     *ast.File
	Embedded bool

	once    sync.Once
	locals  map[string]ast.Node
	exports map[string]ast.Node
	order   []string
	stars   []*ast.ExportAll
}

// Symbol is a name bound in a module. Decl is the declaring node: a
// *ast.VarSpec, *ast.FuncDecl, *ast.EnumDecl or *ast.ExportDefault when
// the symbol is concrete, or an *ast.ImportSpec, *ast.ExportSpec or
// *ast.ExportAll while it still refers to another module. A namespace
// symbol stands for the whole export table of Module.
type Symbol struct {
	Name      string
	Decl      ast.Node
	Module    *Module
	Namespace bool
}

// Concrete reports whether s names a declaration rather than an import
// or re-export.
func (s Symbol) Concrete() bool {
	if s.Namespace {
		return true
	}

	switch s.Decl.(type) {
	case *ast.ImportSpec, *ast.ExportSpec, *ast.ExportAll, nil:
		return false
	}

	return true
}

func (m *Module) index() {
	m.once.Do(func() {
		m.locals = make(map[string]ast.Node)
		m.exports = make(map[string]ast.Node)

		for _, s := range m.File.Stmts {
			m.declare(s)
		}
	})
}

func (m *Module) export(name string, decl ast.Node) {
	if _, ok := m.exports[name]; !ok {
		m.order = append(m.order, name)
	}

	m.exports[name] = decl
}

func (m *Module) declare(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ImportDecl:
		if s.TypeOnly {
			return
		}

		if s.Default != nil {
			m.locals[s.Default.Local.Name] = s.Default
		}

		if s.Namespace != nil {
			m.locals[s.Namespace.Local.Name] = s.Namespace
		}

		for _, spec := range s.Specs {
			m.locals[spec.Local.Name] = spec
		}

	case *ast.VarDecl:
		for _, v := range s.List {
			if v.Name == nil {
				continue
			}

			m.locals[v.Name.Name] = v

			if s.Exported {
				m.export(v.Name.Name, v)
			}
		}

	case *ast.FuncDecl:
		// Overload signatures precede the implementation.
		if s.Name != nil {
			if prev, ok := m.locals[s.Name.Name].(*ast.FuncDecl); !ok ||
				prev.Func.Body == nil {
				m.locals[s.Name.Name] = s
			}
		}

		switch {
		case s.Exported && s.Default:
			m.export("default", s)
		case s.Exported && s.Name != nil:
			if prev, ok := m.exports[s.Name.Name].(*ast.FuncDecl); !ok ||
				prev.Func.Body == nil {
				m.export(s.Name.Name, s)
			}
		}

	case *ast.EnumDecl:
		m.locals[s.Name.Name] = s

		if s.Exported {
			m.export(s.Name.Name, s)
		}

	case *ast.ExportDefault:
		m.export("default", s)

	case *ast.ExportNamed:
		if s.TypeOnly {
			return
		}

		for _, spec := range s.Specs {
			m.export(spec.Exported, spec)
		}

	case *ast.ExportAll:
		if s.As != "" {
			m.export(s.As, s)
		} else {
			m.stars = append(m.stars, s)
		}

	case *ast.OpaqueStmt:
		if s.Name != "" {
			if _, ok := m.locals[s.Name]; !ok {
				m.locals[s.Name] = s
			}
		}
	}
}

// Local returns the module-level symbol bound to name.
func (m *Module) Local(name string) (Symbol, bool) {
	m.index()

	d, ok := m.locals[name]
	if !ok {
		return Symbol{}, false
	}

	return Symbol{Name: name, Decl: d, Module: m}, true
}

// Locals returns the names declared or imported at the top level of m.
func (m *Module) Locals() []string {
	m.index()

	names := make([]string, 0, len(m.locals))
	for name := range m.locals {
		names = append(names, name)
	}

	return names
}

// ownExport looks name up in the export declarations of m itself, not
// following export * clauses. A local alias (export { a as b }) resolves
// to the aliased local binding.
func (m *Module) ownExport(name string) (Symbol, bool) {
	m.index()

	d, ok := m.exports[name]
	if !ok {
		return Symbol{}, false
	}

	if spec, ok := d.(*ast.ExportSpec); ok && spec.From == "" {
		return m.Local(spec.Local)
	}

	return Symbol{Name: name, Decl: d, Module: m}, true
}

// OwnExports returns the names m exports directly, in declaration order.
func (m *Module) OwnExports() []string {
	m.index()

	return append([]string(nil), m.order...)
}

// Errors returns the syntax errors recorded while parsing m.
func (m *Module) Errors() []error { return m.File.Errors }
