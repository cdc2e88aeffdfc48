// Package commands implements the CLI commands for the ecow build tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/ecow/internal/app"
	"go.trai.ch/ecow/internal/build"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for ecow.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, target string, opts app.BuildOptions) error
	Clean(ctx context.Context, target string, opts app.Options) error
	List(ctx context.Context, target string, opts app.Options, w io.Writer) error
	SetLogFormat(format string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "ecow",
		Short:         "An incremental builder for trees of tools and boxes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("file", "f", "", "Project file (default: ecow.yaml discovered from the working directory)")
	flags.String("cache-dir", "", "Cache directory, overriding the project file")
	flags.IntP("concurrency", "j", 0, "Number of units built in parallel (<= 0 uses all CPUs)")
	flags.Bool("fail-fast", false, "Start no new units after the first failure")
	flags.String("log-format", "pretty", "Log format: pretty or json")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("log-format")
		return a.SetLogFormat(format)
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return zerr.Wrap(domain.ErrUsage, err.Error())
	})

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// usageArgs reports argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return zerr.Wrap(domain.ErrUsage, err.Error())
		}
		return nil
	}
}

// options collects the project overrides from the persistent flags.
// Only flags given on the command line override the project file.
func options(cmd *cobra.Command) app.Options {
	flags := cmd.Flags()
	opts := app.Options{}
	opts.File, _ = flags.GetString("file")
	opts.CacheDir, _ = flags.GetString("cache-dir")

	if flags.Changed("concurrency") {
		n, _ := flags.GetInt("concurrency")
		opts.Concurrency = &n
	}
	if flags.Changed("fail-fast") {
		failFast, _ := flags.GetBool("fail-fast")
		opts.FailFast = &failFast
	}
	return opts
}

// target returns the optional target argument; empty names the root unit.
func target(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
