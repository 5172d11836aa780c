// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are configured at creation time using functional options and are
// immutable afterward. Deriving a logger with [Logger.Wrap] or [Logger.With]
// never affects the original.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("parsed", slog.String("input", text))
//	logger.Error("parse failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// Levels and formats implement [encoding.TextUnmarshaler], so they can be
// bound directly to command-line flags and configuration files.
//
// # Pretty Output
//
// With [WithPretty] enabled (the default), records are styled for a
// terminal: keys and values are colored by kind, and JSON records are
// indented one attribute per line. Colors are omitted when the output is
// not a terminal. Group attributes are flattened into dotted keys, and
// [slog.LogValuer] values are resolved before rendering.
//
// # Trace Level
//
// [LevelTrace] sits below [LevelDebug] and is used for per-token and
// per-reduction detail that is too verbose for debugging sessions.
// Trace records are rendered with the level name "TRACE".
//
// # Package-Level Logger
//
// The package-level functions such as [Info] and [Debug] write to the logger
// returned by [Default], which writes to standard error until replaced with
// [SetDefault] or reconfigured with [Config].
package log
