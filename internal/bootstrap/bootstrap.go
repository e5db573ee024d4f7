// Package bootstrap prepares the task runner and the annotation options
// before any annotation task runs.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	annotate "github.com/goliatone/go-annotate"
	"github.com/goliatone/go-annotate/internal/support"
	"github.com/goliatone/go-annotate/internal/tasks"
	"github.com/spf13/afero"
)

// Task names the bootstrapper relies on.
const (
	EnvironmentTask = "environment"
	OptionsTask     = "set_annotation_options"
	// DefaultTaskFile is the local task file loaded when present.
	DefaultTaskFile = "Taskfile.toml"
)

// DefinitionLayer loads the task runner's definition layer. A failure
// aborts the bootstrap with an ExitError.
type DefinitionLayer func(ctx context.Context) error

// Bootstrapper runs the bootstrap sequence. It is not safe for concurrent
// use; build a fresh one per run.
type Bootstrapper struct {
	fs          afero.Fs
	root        string
	taskFile    string
	stderr      io.Writer
	logger      annotate.Logger
	runtime     *annotate.Runtime
	host        annotate.Host
	runner      *tasks.Runner
	definitions DefinitionLayer
	defDirs     []string
	functions   *annotate.FunctionRegistry
	guardOpts   []annotate.GuardOption
	actions     map[string]tasks.Action

	outcome       HostTaskOutcome
	state         TaskState
	supportLoaded bool
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithFs sets the filesystem the local task file is read from.
func WithFs(fs afero.Fs) Option {
	return func(b *Bootstrapper) {
		if fs != nil {
			b.fs = fs
		}
	}
}

// WithRoot sets the project root.
func WithRoot(root string) Option {
	return func(b *Bootstrapper) {
		b.root = root
	}
}

// WithTaskFile sets the local task file name, relative to the root.
func WithTaskFile(name string) Option {
	return func(b *Bootstrapper) {
		if name != "" {
			b.taskFile = name
		}
	}
}

// WithStderr sets where definition layer failures are printed.
func WithStderr(w io.Writer) Option {
	return func(b *Bootstrapper) {
		if w != nil {
			b.stderr = w
		}
	}
}

// WithLogger sets the bootstrap logger.
func WithLogger(logger annotate.Logger) Option {
	return func(b *Bootstrapper) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRuntime sets the option runtime.
func WithRuntime(runtime *annotate.Runtime) Option {
	return func(b *Bootstrapper) {
		if runtime != nil {
			b.runtime = runtime
		}
	}
}

// WithHost sets the host capability.
func WithHost(host annotate.Host) Option {
	return func(b *Bootstrapper) {
		if host != nil {
			b.host = host
		}
	}
}

// WithRunner injects the runner core instead of building one.
func WithRunner(runner *tasks.Runner) Option {
	return func(b *Bootstrapper) {
		b.runner = runner
	}
}

// WithDefinitionDirs adds directories of task definition files loaded
// after the built-in tasks. Relative paths resolve against the root.
func WithDefinitionDirs(dirs ...string) Option {
	return func(b *Bootstrapper) {
		b.defDirs = append(b.defDirs, dirs...)
	}
}

// WithDefinitionLayer sets the definition layer loaded first.
func WithDefinitionLayer(layer DefinitionLayer) Option {
	return func(b *Bootstrapper) {
		b.definitions = layer
	}
}

// WithFunctionRegistry sets the registry guards and the support layer
// share.
func WithFunctionRegistry(registry *annotate.FunctionRegistry) Option {
	return func(b *Bootstrapper) {
		if registry != nil {
			b.functions = registry
		}
	}
}

// WithGuardOptions configures the guard built for task `when` expressions.
func WithGuardOptions(opts ...annotate.GuardOption) Option {
	return func(b *Bootstrapper) {
		b.guardOpts = append(b.guardOpts, opts...)
	}
}

// WithActions registers task actions on the runner.
func WithActions(actions map[string]tasks.Action) Option {
	return func(b *Bootstrapper) {
		for name, action := range actions {
			b.actions[name] = action
		}
	}
}

// New builds a bootstrapper over the OS filesystem with no host.
func New(opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		fs:        afero.NewOsFs(),
		root:      ".",
		taskFile:  DefaultTaskFile,
		stderr:    os.Stderr,
		logger:    annotate.NopLogger{},
		host:      annotate.NoHost{},
		functions: annotate.DefaultFunctionRegistry(),
		actions:   map[string]tasks.Action{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.runtime == nil {
		b.runtime = annotate.NewRuntime(annotate.WithLogger(b.logger))
	}
	return b
}

// Runtime returns the option runtime.
func (b *Bootstrapper) Runtime() *annotate.Runtime { return b.runtime }

// Runner returns the runner core, nil before Bootstrap.
func (b *Bootstrapper) Runner() *tasks.Runner { return b.runner }

// HostTaskOutcome reports the environment task outcome.
func (b *Bootstrapper) HostTaskOutcome() HostTaskOutcome { return b.outcome }

// TaskState reports whether the built-in tasks are loaded.
func (b *Bootstrapper) TaskState() TaskState { return b.state }

// SupportLoaded reports whether the support layer was registered.
func (b *Bootstrapper) SupportLoaded() bool { return b.supportLoaded }

// Bootstrap loads the definition layer, the runner core and the local task
// file, gives the host a chance to boot, loads the support layer when no
// host is present, loads the built-in tasks and materializes the options.
func (b *Bootstrapper) Bootstrap(ctx context.Context) error {
	if b.definitions != nil {
		if err := b.definitions(ctx); err != nil {
			fmt.Fprintln(b.stderr, err.Error())
			return &ExitError{Code: statusOf(err), Err: err}
		}
	}

	if err := b.loadRunner(); err != nil {
		return err
	}

	if err := b.loadLocalTaskFile(); err != nil {
		return err
	}

	b.outcome = b.invokeEnvironment(ctx)

	if !b.host.Present() {
		if err := b.loadSupport(); err != nil {
			return err
		}
	}
	if err := b.configureGuard(); err != nil {
		return err
	}

	if err := b.LoadTasks(ctx); err != nil {
		return err
	}
	return b.runner.Invoke(ctx, OptionsTask)
}

// LoadTasks loads the built-in task definitions once. Later calls do
// nothing.
func (b *Bootstrapper) LoadTasks(ctx context.Context) error {
	if b.state == TasksLoaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.loadRunner(); err != nil {
		return err
	}
	if err := b.runner.LoadBuiltins(); err != nil {
		return err
	}
	for _, dir := range b.defDirs {
		if err := b.runner.LoadDir(b.fs, b.path(dir)); err != nil {
			return err
		}
	}
	b.state = TasksLoaded
	b.logger.Debug("built-in tasks loaded", "tasks", len(b.runner.Tasks()))
	return nil
}

func (b *Bootstrapper) loadRunner() error {
	if b.runner == nil {
		b.runner = tasks.NewRunner(
			tasks.WithLogger(b.logger),
			tasks.WithEmitter(b.runtime.Emitter()),
			tasks.WithOptions(b.runtime.SetupOptions),
		)
	}
	for name, action := range b.actions {
		if err := b.runner.RegisterAction(name, action); err != nil {
			return err
		}
		delete(b.actions, name)
	}
	return nil
}

func (b *Bootstrapper) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(b.root, name)
}

func (b *Bootstrapper) loadLocalTaskFile() error {
	path := b.path(b.taskFile)
	ok, err := afero.Exists(b.fs, path)
	if err != nil {
		return fmt.Errorf("bootstrap: stat %s: %w", path, err)
	}
	if !ok {
		b.logger.Debug("no local task file", "path", path)
		return nil
	}
	return b.runner.LoadFile(b.fs, path)
}

func (b *Bootstrapper) invokeEnvironment(ctx context.Context) HostTaskOutcome {
	if _, ok := b.runner.Lookup(EnvironmentTask); !ok {
		b.logger.Debug("host environment task absent")
		return HostTaskAbsent
	}
	if err := b.runner.Invoke(ctx, EnvironmentTask); err != nil {
		b.logger.Debug("host environment task failed", "err", err)
		return HostTaskFailed
	}
	return HostTaskInvoked
}

func (b *Bootstrapper) loadSupport() error {
	if b.supportLoaded {
		return nil
	}
	if err := support.Register(b.functions); err != nil {
		return err
	}
	b.supportLoaded = true
	b.logger.Debug("support layer loaded")
	return nil
}

func (b *Bootstrapper) configureGuard() error {
	opts := append([]annotate.GuardOption{annotate.WithFunctionRegistry(b.functions)}, b.guardOpts...)
	guard, err := annotate.NewGuard(opts...)
	if err != nil {
		return fmt.Errorf("bootstrap: guard: %w", err)
	}
	b.runner.UseGuard(guard)
	return nil
}

// IsExitError reports whether err asks for a specific exit code.
func IsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}
