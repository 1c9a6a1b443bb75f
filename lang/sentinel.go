package lang

import (
	"log/slog"

	"github.com/ardnew/prestyle/lang/ast"
)

// Sentinel marks an expression whose value cannot be determined without
// running the program. Once produced it propagates unchanged to the
// enclosing declaration; callers inspect it to decide whether to keep the
// original expression for runtime evaluation.
type Sentinel struct {
	Message string
	Node    ast.Node
	File    *ast.File
}

// String returns the sentinel message. A Sentinel is not an error.
func (s *Sentinel) String() string { return s.Message }

// Diagnostic locates a sentinel in source.
type Diagnostic struct {
	Message string `json:"message" yaml:"message"`
	Source  string `json:"source"  yaml:"source"`
	File    string `json:"file"    yaml:"file"`
	Line    int    `json:"line"    yaml:"line"` // zero-based
}

// Diagnostic renders s against its source unit. It returns nil when the
// sentinel has no originating node.
func (s *Sentinel) Diagnostic() *Diagnostic {
	if s == nil || s.Node == nil || s.File == nil {
		return nil
	}

	return &Diagnostic{
		Message: s.Message,
		Source:  s.File.Text(s.Node),
		File:    s.File.Name,
		Line:    s.File.Line(s.Node.Pos()),
	}
}

// LogValue implements slog.LogValuer.
func (s *Sentinel) LogValue() slog.Value {
	d := s.Diagnostic()
	if d == nil {
		return slog.GroupValue(slog.String("message", s.Message))
	}

	return slog.GroupValue(
		slog.String("message", d.Message),
		slog.String("file", d.File),
		slog.Int("line", d.Line),
		slog.String("source", d.Source),
	)
}
