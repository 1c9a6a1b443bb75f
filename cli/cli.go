package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/prestyle/cli/cmd"
	"github.com/ardnew/prestyle/log"
	"github.com/ardnew/prestyle/pkg"
)

// CLI is the top-level command-line interface for prestyle.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Root     string   `default:"."  help:"Directory modules are read from"                          short:"C" type:"existingdir"`
	Path     []string `              help:"Search directory for package imports (also ${pathEnv})" short:"I" type:"path"`
	MaxDepth int      `default:"0"  help:"Limit evaluation depth, 0 for the default"`
	MaxHops  int      `default:"0"  help:"Limit import and re-export hops, 0 for the default"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Eval  cmd.Eval  `cmd:"" default:"withargs" help:"Evaluate exports of a module"`
	CSS   cmd.CSS   `cmd:"" name:"css"         help:"Render an exported style record as CSS"`
	Check cmd.Check `cmd:""                    help:"Report which exports are static"`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file"`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive shell"`
}

// Run executes the prestyle CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	base := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		"pathEnv":            pathEnv,
		cmd.ConfigIdentifier: base,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before kong reports parse errors.
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
		kong.Configuration(kong.JSON, base+".json"),
		kong.Configuration(resolveYAML, base+".yaml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSettings(ctx, cmd.Settings{
		Root:     cli.Root,
		Path:     searchPath(cli.Path, os.Getenv(pathEnv)),
		MaxDepth: cli.MaxDepth,
		MaxHops:  cli.MaxHops,
		Logger:   log.Default(),
	})

	log.DebugContext(ctx, "run",
		slog.String("command", ktx.Command()),
		slog.String("root", cli.Root))

	return ktx.Run(&cli)
}
