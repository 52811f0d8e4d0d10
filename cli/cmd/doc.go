// Package cmd implements the mustache subcommands: render, check, tree,
// serve, repl, and init.
//
// Commands read the global template options from their context (see
// [WithOptions]) and write to the kong context's standard output.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file written by [Init].
	ConfigIdentifier = "config"
)
