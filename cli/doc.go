// Package cli contains the command line interface for mustache.
//
// # Usage
//
// The default command renders a template named on the command line, or read
// from stdin, against data merged from YAML or JSON files:
//
//	mustache -d site.yaml -I templates page
//	echo 'Hi {{name}}' | mustache --set 'name="World"'
//
// Templates and partials are found in the --partials directories, then the
// directories listed in $MUSTACHE_PATH, then the --db SQLite database.
//
// # Commands
//
//   - render: render a template (default)
//   - check: compile templates and report errors with their position
//   - tree: print the tag tree as an outline, JSON, or YAML
//   - serve: render templates over HTTP
//   - repl: render templates interactively
//   - init: write the current flag values to the configuration file
//
// # Configuration
//
// Flag values are read from config.yaml in the user configuration
// directory. Keys are flag names, and nested mappings are joined with
// hyphens:
//
//	log:
//	  level: debug
//	partials: [~/templates]
//	delims: "<% %>"
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o mustache .
//
// --pprof-mode selects the profile (allocs, block, clock, cpu, goroutine,
// heap, mem, mutex, thread, trace) and --pprof-dir the output directory.
package cli
