package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/goliatone/go-annotate/internal/bootstrap"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// Execute runs the root command and exits with the resulting status.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(newCLI()),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(exitCode(err))
	}
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *bootstrap.ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	return 1
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate models and routes with schema information",
		Long: titleStyle.Render("annotate") + subtitleStyle.Render(" - schema and route annotations") + `

Options come from caller defaults in .annotate.toml, dotenv files, the
environment and command line overrides, strongest last.

` + subtitleStyle.Render("Examples:") + `
  annotate models                 Annotate model files
  annotate routes                 Annotate the routes file
  annotate run remove_annotation  Run a task by name
  annotate options explain position`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "settings file (default is .annotate.{toml,yaml,json} in the root)")
	flags.StringVar(&c.root, "root", ".", "project root")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	c.overrides.register(flags)

	root.AddCommand(
		newModelsCmd(c),
		newRoutesCmd(c),
		newRemoveCmd(c),
		newRunCmd(c),
		newTasksCmd(c),
		newMigrateHookCmd(c),
		newOptionsCmd(c),
	)
	return root
}
