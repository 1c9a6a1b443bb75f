// Package log is a small structured logging layer over [log/slog].
//
// A [Logger] is configured once, with functional options, and never
// changes afterwards; [Logger.Wrap] derives a reconfigured copy.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//	logger.Info("loaded", slog.String("module", path))
//
// Besides the slog levels there is [LevelTrace], used for the most
// detailed diagnostics.
//
// Output is JSON or key=value text. With [WithPretty] enabled, values are
// colorized when the output is a terminal and JSON is indented.
//
// The package-level functions log through a default logger writing to
// standard error, reconfigured with [Config].
package log
