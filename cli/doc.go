// Package cli contains the command line interface for prestyle.
//
// # Usage
//
//	prestyle [flags] <command> [args]
//
// The eval command is the default, so these are equivalent:
//
//	prestyle theme.ts colors
//	prestyle eval theme.ts colors
//
// Modules are read relative to --root (default: working directory).
// Package imports that are not relative are looked up in each --path
// directory, followed by the directories listed in PRESTYLE_PATH.
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the user
// configuration directory; command line flags override them. YAML keys
// may be nested, so "log: {level: debug}" sets --log-level. The init
// command writes the current flag values to one of these files.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o prestyle .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/prestyle/pprof)
package cli
