// Package cmd implements the prestyle subcommands: eval, css, check, init
// and repl.
//
// Commands receive their shared settings through the [context.Context]
// passed to Run; see [WithSettings].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file, without extension.
	ConfigIdentifier = "config"
)
