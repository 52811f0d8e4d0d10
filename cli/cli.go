package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mustache/cli/cmd"
	"github.com/ardnew/mustache/pkg"
)

// CLI is the top-level command-line interface for mustache.
type CLI struct {
	Log     logConfig   `embed:"" group:"log"      prefix:"log-"`
	Pprof   pprofConfig `embed:"" group:"pprof"    prefix:"pprof-"`
	Options cmd.Options `embed:"" group:"template"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render a template (default)"`
	Check  cmd.Check  `cmd:""                    help:"Compile templates and report errors"`
	Tree   cmd.Tree   `cmd:""                    help:"Print the tag tree of a template"`
	Serve  cmd.Serve  `cmd:""                    help:"Render repository templates over HTTP"`
	Repl   cmd.Repl   `cmd:""                    help:"Render templates interactively"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the mustache CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, args, kong.Exit(exit))
}

func run(ctx context.Context, args []string, options ...kong.Option) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Options.Vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that they take effect
	// regardless of their position on the command line.
	cli.Log.scan(args)

	groups := []kong.Group{cli.Log.group(), cli.Options.Group()}
	if g := cli.Pprof.group(); g.Key != "" {
		groups = append(groups, g)
	}

	parser, err := kong.New(&cli, append([]kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.ExplicitGroups(groups),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	}, options...)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, &cli.Options)

	// Flags without a TextUnmarshaler, such as --log-time-layout, are only
	// known after parsing.
	cli.Log.start(ctx)

	// No-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	ktx.BindTo(ctx, (*context.Context)(nil))

	return ktx.Run()
}
