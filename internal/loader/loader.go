// Package loader brings host application sources into memory before
// annotation runs, using the discovery strategy the host calls for.
package loader

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	annotate "github.com/goliatone/go-annotate"
	"github.com/goliatone/go-annotate/pkg/activity"
	"github.com/spf13/afero"
)

// SourceExt is the extension of application source files.
const SourceExt = ".rb"

// RequireFunc observes every newly resident file. An error aborts the load.
type RequireFunc func(ctx context.Context, source Source) error

// PatchFunc applies the compatibility patch. It runs on every EagerLoad.
type PatchFunc func(ctx context.Context, residency *Residency) error

// Loader eagerly loads application sources. Loaders are not safe for
// concurrent use.
type Loader struct {
	fs        afero.Fs
	root      string
	host      annotate.Host
	logger    annotate.Logger
	emitter   *activity.Emitter
	patch     PatchFunc
	onRequire RequireFunc

	residency *Residency
}

// Option configures a Loader.
type Option func(*Loader)

// WithFs sets the filesystem sources are read from.
func WithFs(fs afero.Fs) Option {
	return func(l *Loader) {
		if fs != nil {
			l.fs = fs
		}
	}
}

// WithRoot sets the directory relative paths are resolved against.
func WithRoot(root string) Option {
	return func(l *Loader) {
		l.root = root
	}
}

// WithHost sets the host capability that selects the strategy.
func WithHost(host annotate.Host) Option {
	return func(l *Loader) {
		if host != nil {
			l.host = host
		}
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger annotate.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithEmitter reports sources.loaded events through emitter.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(l *Loader) {
		l.emitter = emitter
	}
}

// WithPatch replaces the compatibility patch.
func WithPatch(patch PatchFunc) Option {
	return func(l *Loader) {
		if patch != nil {
			l.patch = patch
		}
	}
}

// WithRequireHook observes every newly resident file.
func WithRequireHook(fn RequireFunc) Option {
	return func(l *Loader) {
		l.onRequire = fn
	}
}

// New builds a loader over the OS filesystem with no host.
func New(opts ...Option) *Loader {
	l := &Loader{
		fs:        afero.NewOsFs(),
		root:      ".",
		host:      annotate.NoHost{},
		logger:    annotate.NopLogger{},
		patch:     markPatched,
		residency: newResidency(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if !filepath.IsAbs(l.root) {
		if abs, err := filepath.Abs(l.root); err == nil {
			l.root = abs
		}
	}
	return l
}

func markPatched(_ context.Context, residency *Residency) error {
	residency.Patched = true
	return nil
}

// Residency returns a copy of everything loaded so far.
func (l *Loader) Residency() *Residency {
	return l.residency.clone()
}

// EagerLoad loads the require extensions, applies the compatibility patch
// and runs exactly one discovery strategy. Files already resident are not
// loaded again. The first failure aborts the load.
func (l *Loader) EagerLoad(ctx context.Context, opts annotate.ResolvedOptions) (*Residency, error) {
	before := len(l.residency.Sources)
	extBefore := len(l.residency.Extensions)

	for _, path := range opts.Requires() {
		if err := l.requireExtension(ctx, path); err != nil {
			return nil, err
		}
	}

	if err := l.patch(ctx, l.residency); err != nil {
		return nil, &LoadError{Phase: PhasePatch, Err: err}
	}

	strategy := SelectStrategy(l.host)
	l.residency.Strategy = strategy
	l.logger.Debug("eager load", "strategy", strategy)

	var err error
	switch strategy {
	case StrategyLegacy:
		err = l.loadLegacy(ctx)
	case StrategyModern:
		if hostErr := l.host.EagerLoad(ctx); hostErr != nil {
			err = &LoadError{Phase: PhaseHost, Err: hostErr}
		}
	default:
		err = l.loadBare(ctx, opts.ModelDirs())
	}
	if err != nil {
		return nil, err
	}

	loaded := len(l.residency.Sources) - before
	extensions := len(l.residency.Extensions) - extBefore
	l.logger.Info("sources loaded", "strategy", strategy, "files", loaded, "extensions", extensions)
	if err := l.emitter.Emit(ctx, activity.BuildSourcesLoadedEvent(activity.SourcesEventInput{
		Strategy:   strategy.String(),
		Files:      loaded,
		Extensions: extensions,
	})); err != nil {
		l.logger.Warn("activity hook failed", "err", err)
	}
	return l.residency.clone(), nil
}

func (l *Loader) requireExtension(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return &LoadError{Phase: PhaseExtension, Path: path, Err: err}
	}
	resolved, ok := l.locate(path)
	if !ok {
		return &LoadError{Phase: PhaseExtension, Path: path, Err: ErrNotFound}
	}
	source, fresh, err := l.load(ctx, resolved, resolved)
	if err != nil {
		return &LoadError{Phase: PhaseExtension, Path: path, Err: err}
	}
	if fresh {
		l.residency.Extensions = append(l.residency.Extensions, source)
	}
	return nil
}

// locate resolves path against root, trying the source extension when the
// path names no existing file.
func (l *Loader) locate(path string) (string, bool) {
	candidate := l.abs(path)
	candidates := []string{candidate}
	if filepath.Ext(candidate) != SourceExt {
		candidates = append(candidates, candidate+SourceExt)
	}
	for _, c := range candidates {
		info, err := l.fs.Stat(c)
		if err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

func (l *Loader) loadLegacy(ctx context.Context) error {
	for _, dir := range l.host.EagerLoadPaths() {
		base := l.abs(dir)
		files, err := l.collect(base)
		if err != nil {
			return err
		}
		for _, file := range files {
			rel, err := filepath.Rel(base, file)
			if err != nil {
				return &LoadError{Phase: PhaseSource, Path: file, Err: err}
			}
			name := filepath.ToSlash(strings.TrimSuffix(rel, SourceExt))
			if _, _, err := l.loadSource(ctx, name, file); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) loadBare(ctx context.Context, dirs []string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		files, err := l.collect(l.abs(dir))
		if err != nil {
			return err
		}
		for _, file := range files {
			if _, _, err := l.loadSource(ctx, file, file); err != nil {
				return err
			}
		}
	}
	return nil
}

// collect lists every source file beneath dir in lexical order. A missing
// directory yields nothing.
func (l *Loader) collect(dir string) ([]string, error) {
	if ok, _ := afero.DirExists(l.fs, dir); !ok {
		l.logger.Debug("skipping missing directory", "dir", dir)
		return nil, nil
	}
	var files []string
	err := afero.Walk(l.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Phase: PhaseSource, Path: dir, Err: err}
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) loadSource(ctx context.Context, name, path string) (Source, bool, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, false, &LoadError{Phase: PhaseSource, Path: path, Err: err}
	}
	source, fresh, err := l.load(ctx, name, path)
	if err != nil {
		return Source{}, false, &LoadError{Phase: PhaseSource, Path: path, Err: err}
	}
	if fresh {
		l.residency.Sources = append(l.residency.Sources, source)
	}
	return source, fresh, nil
}

func (l *Loader) load(ctx context.Context, name, path string) (Source, bool, error) {
	if l.residency.Has(name) {
		return Source{}, false, nil
	}
	content, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return Source{}, false, err
	}
	source := Source{Name: name, Path: path, Content: content}
	if l.onRequire != nil {
		if err := l.onRequire(ctx, source); err != nil {
			return Source{}, false, err
		}
	}
	l.residency.claim(name)
	return source, true, nil
}

func (l *Loader) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.root, path)
}
