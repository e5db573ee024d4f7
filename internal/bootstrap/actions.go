package bootstrap

import (
	"context"
	"errors"

	annotate "github.com/goliatone/go-annotate"
	"github.com/goliatone/go-annotate/internal/loader"
	"github.com/goliatone/go-annotate/internal/tasks"
)

// Action names bound by the built-in task definitions.
const (
	ActionSetOptions      = "set_annotation_options"
	ActionAnnotateModels  = "annotate_models"
	ActionRemoveModels    = "remove_model_annotations"
	ActionAnnotateRoutes  = "annotate_routes"
	ActionRemoveRoutes    = "remove_route_annotations"
	ActionAfterMigrate    = "annotate_after_migrate"
	modelsAfterMigrateRun = "annotate_models_after_migrate"
	routesAfterMigrateRun = "annotate_routes_after_migrate"
)

// ErrNoAnnotator reports an annotation task run without an Annotator.
var ErrNoAnnotator = errors.New("bootstrap: annotator not configured")

// Deps are the collaborators the built-in actions drive.
type Deps struct {
	Runtime   *annotate.Runtime
	Loader    *loader.Loader
	Annotator annotate.Annotator
	// Defaults are the caller defaults materialized by set_annotation_options.
	Defaults annotate.RawOptions
	Logger   annotate.Logger
}

// DefaultActions binds the built-in task actions to deps.
func DefaultActions(deps Deps) map[string]tasks.Action {
	if deps.Logger == nil {
		deps.Logger = annotate.NopLogger{}
	}
	if deps.Runtime == nil {
		deps.Runtime = annotate.NewRuntime(annotate.WithLogger(deps.Logger))
	}
	if deps.Loader == nil {
		deps.Loader = loader.New(loader.WithLogger(deps.Logger), loader.WithEmitter(deps.Runtime.Emitter()))
	}
	a := &actions{Deps: deps}
	return map[string]tasks.Action{
		ActionSetOptions:     a.setOptions,
		ActionAnnotateModels: a.annotateModels,
		ActionRemoveModels:   a.removeModels,
		ActionAnnotateRoutes: a.annotateRoutes,
		ActionRemoveRoutes:   a.removeRoutes,
		ActionAfterMigrate:   a.afterMigrate,
	}
}

type actions struct {
	Deps
}

func (a *actions) setOptions(ctx context.Context, _ tasks.Invocation) error {
	if !a.Runtime.SetDefaults(ctx, a.Defaults) {
		a.Logger.Debug("annotation options already set")
	}
	return nil
}

func (a *actions) annotateModels(ctx context.Context, _ tasks.Invocation) error {
	annotator, err := a.annotator()
	if err != nil {
		return err
	}
	resolved := a.Runtime.SetupOptions()
	if _, err := a.Loader.EagerLoad(ctx, resolved); err != nil {
		return err
	}
	return annotator.AnnotateModels(ctx, resolved)
}

func (a *actions) removeModels(ctx context.Context, _ tasks.Invocation) error {
	annotator, err := a.annotator()
	if err != nil {
		return err
	}
	resolved := a.Runtime.SetupOptions()
	if _, err := a.Loader.EagerLoad(ctx, resolved); err != nil {
		return err
	}
	return annotator.RemoveModelAnnotations(ctx, resolved)
}

func (a *actions) annotateRoutes(ctx context.Context, _ tasks.Invocation) error {
	annotator, err := a.annotator()
	if err != nil {
		return err
	}
	return annotator.AnnotateRoutes(ctx, a.Runtime.SetupOptions())
}

func (a *actions) removeRoutes(ctx context.Context, _ tasks.Invocation) error {
	annotator, err := a.annotator()
	if err != nil {
		return err
	}
	return annotator.RemoveRouteAnnotations(ctx, a.Runtime.SetupOptions())
}

// afterMigrate refreshes annotations unless the skip switch is on. The
// model and route steps carry their own guards.
func (a *actions) afterMigrate(ctx context.Context, inv tasks.Invocation) error {
	if a.Runtime.SkipOnMigration() {
		a.Logger.Info("skipping annotation after migration")
		return nil
	}
	for _, name := range []string{modelsAfterMigrateRun, routesAfterMigrateRun} {
		if err := inv.Runner.Invoke(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (a *actions) annotator() (annotate.Annotator, error) {
	if a.Annotator == nil {
		return nil, ErrNoAnnotator
	}
	return a.Annotator, nil
}
