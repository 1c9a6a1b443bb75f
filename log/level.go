package log

import (
	"log/slog"
	"strings"
)

// String returns the lower-case name of l. Levels between the defined
// ones are named relative to the level below them, such as "info+2".
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}

	if l < LevelTrace {
		return "trace" + strings.TrimPrefix(slog.Level(l-LevelTrace+Level(slog.LevelDebug)).String(), "DEBUG")
	}

	return strings.ToLower(slog.Level(l).String())
}

// String returns the name of f.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	}

	return "unknown"
}
