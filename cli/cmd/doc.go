// Package cmd implements the subcommands of the yard command line.
//
// Each command is a kong command struct whose Run method receives a
// [context.Context] carrying the parsed [kong.Context] ([WithContext]) and the
// writer for command output ([WithOutput]).
package cmd

var (
	// CacheIdentifier is the kong variable holding the path of the runtime
	// cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the path of the
	// configuration file.
	ConfigIdentifier = "config"
)
