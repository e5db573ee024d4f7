package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	annotate "github.com/goliatone/go-annotate"
	"github.com/goliatone/go-annotate/internal/bootstrap"
	"github.com/goliatone/go-annotate/internal/config"
	"github.com/goliatone/go-annotate/internal/loader"
	"github.com/goliatone/go-annotate/internal/logging"
	"github.com/goliatone/go-annotate/internal/tasks"
	"github.com/goliatone/go-annotate/pkg/activity"
	"github.com/goliatone/go-annotate/pkg/envstore"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// cli holds flag values and the collaborators commands run against.
type cli struct {
	configFile string
	root       string
	verbose    bool
	logLevel   string
	overrides  overrideFlags

	fs        afero.Fs
	store     envstore.Store
	annotator func(w io.Writer, logger annotate.Logger) annotate.Annotator
}

func newCLI() *cli {
	return &cli{
		fs:    afero.NewOsFs(),
		store: envstore.OS(),
		annotator: func(w io.Writer, logger annotate.Logger) annotate.Annotator {
			return newReportAnnotator(w, logger)
		},
	}
}

// session is one bootstrapped run.
type session struct {
	settings  *config.Settings
	logger    *log.Logger
	runtime   *annotate.Runtime
	runner    *tasks.Runner
	bootstrap *bootstrap.Bootstrapper
}

// open loads settings, bootstraps the runner and applies command line
// overrides.
func (c *cli) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	root, err := filepath.Abs(c.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	settings, used, err := config.Load(ctx, c.fs, config.LoadOptions{File: c.configFile, Dir: root})
	if err != nil {
		return nil, err
	}

	level := settings.Log.Level
	if c.logLevel != "" {
		level = c.logLevel
	}
	if c.verbose {
		level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, err
	}
	if used != "" {
		logger.Debug("settings loaded", "file", used)
	}

	dotenv, err := envstore.Dotenv(c.fs, settings.DotenvPaths(root)...)
	if err != nil {
		return nil, err
	}

	runtime := annotate.NewRuntime(
		annotate.WithStore(c.store),
		annotate.WithLogger(logger),
		annotate.WithDotenv(dotenv),
		annotate.WithActivityHooks(activity.Hooks{activityLogHook(logger)}),
	)

	definitionDirs := settings.DefinitionDirs(root)
	host := settings.HostFor(root, nil)
	l := loader.New(
		loader.WithFs(c.fs),
		loader.WithRoot(root),
		loader.WithHost(host),
		loader.WithLogger(logger),
		loader.WithEmitter(runtime.Emitter()),
	)

	b := bootstrap.New(
		bootstrap.WithFs(c.fs),
		bootstrap.WithRoot(root),
		bootstrap.WithTaskFile(settings.TaskFile),
		bootstrap.WithStderr(cmd.ErrOrStderr()),
		bootstrap.WithLogger(logger),
		bootstrap.WithRuntime(runtime),
		bootstrap.WithHost(host),
		bootstrap.WithDefinitionLayer(tasks.DefinitionLayer(c.fs, definitionDirs...)),
		bootstrap.WithDefinitionDirs(definitionDirs...),
		bootstrap.WithGuardOptions(
			annotate.WithEngine(settings.Guard.Engine),
			annotate.WithProgramCache(annotate.NewLRUProgramCache(settings.Guard.CacheSize)),
			annotate.WithEvaluatorLogger(logging.EvaluatorLogger(logger)),
		),
		bootstrap.WithActions(bootstrap.DefaultActions(bootstrap.Deps{
			Runtime:   runtime,
			Loader:    l,
			Annotator: c.annotator(cmd.OutOrStdout(), logger),
			Defaults:  settings.RawOptions(),
			Logger:    logger,
		})),
	)
	if err := b.Bootstrap(ctx); err != nil {
		return nil, err
	}

	raw, err := c.overrides.raw()
	if err != nil {
		return nil, err
	}
	if err := runtime.Override(ctx, raw); err != nil {
		logger.Warn("apply overrides", "err", err)
	}

	return &session{
		settings:  settings,
		logger:    logger,
		runtime:   runtime,
		runner:    b.Runner(),
		bootstrap: b,
	}, nil
}

// invoke opens a session and runs the named tasks in order.
func (c *cli) invoke(cmd *cobra.Command, names ...string) error {
	s, err := c.open(cmd)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.runner.Invoke(cmd.Context(), name); err != nil {
			return err
		}
	}
	return nil
}

func activityLogHook(logger *log.Logger) activity.ActivityHook {
	return activity.HookFunc(func(_ context.Context, event activity.Event) error {
		logger.Debug("activity", "verb", event.Verb, "object", event.ObjectType, "id", event.ObjectID, "run", event.RunID)
		return nil
	})
}
