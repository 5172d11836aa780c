package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/yard/cli/cmd"
	"github.com/ardnew/yard/pkg"
)

// CLI is the top-level command-line interface for yard.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Init   cmd.Init   `cmd:"" help:"Write current flag values to the configuration file."`
	Eval   cmd.Eval   `cmd:"" help:"Evaluate an arithmetic expression." default:"withargs"`
	AST    cmd.AST    `cmd:"" help:"Print the syntax tree of an expression." name:"ast"`
	Tokens cmd.Tokens `cmd:"" help:"Print the tokens of an expression."`
	Filter cmd.Filter `cmd:"" help:"Print the YAML records matching a filter query."`
	Repl   cmd.Repl   `cmd:"" help:"Evaluate arithmetic expressions interactively."`
}

// Run executes the yard CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logging flags take effect before parsing so that messages emitted by
	// the parser and configuration loader already use them.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOutput(ctx, ktx.Stdout)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}
