// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("template compiled", slog.String("name", "page"))
//
// The zero [Logger] discards everything, so libraries can hold one without
// forcing callers to configure logging.
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with additional options applied, and
// [Config] does the same for the package-level logger.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level are
// discarded.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON] are supported. With [WithPretty]
// enabled, both are written in color by handlers that honor
// [github.com/fatih/color.NoColor].
package log
