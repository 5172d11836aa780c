// Package cli contains the command line interface for yard.
//
// # Usage
//
// Each subcommand works with one of the bundled expression languages:
//
//	yard "2 * (3 + 4)"                   # eval is the default command
//	yard eval -D r=2 "3.14159 * r ^ 2"
//	yard ast -l filter -o yaml 'age >= 30 AND NOT email EXISTS'
//	yard tokens "max(1, √4)"
//	yard filter -f people.yaml 'role IN ["admin", "owner"]'
//	yard repl
//
// Parse errors are reported with the offending input marked; see [Report].
//
// # Configuration
//
// Global flags may also be set in a YAML file in the user configuration
// directory (for example ~/.config/yard/config.yaml). Nested mappings are
// flattened with hyphens, so "log: {level: debug}" sets --log-level.
// Command-line flags override the file. The init command writes the current
// flag values to the file.
//
// # Logging Options
//
//	--log-level        minimum log level (trace, debug, info, warn, error)
//	--log-format       log output format (json, text)
//	--log-time-layout  timestamp format (RFC3339, kitchen, none, etc.)
//	--log-caller       include caller information in log output
//	--log-pretty       colorize log output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o yard .
//
// It then accepts:
//
//	--pprof-mode  profile kind (allocs, block, clock, cpu, goroutine, heap,
//	              mem, mutex, thread, trace)
//	--pprof-dir   profile output directory (default ~/.cache/yard/pprof)
package cli
