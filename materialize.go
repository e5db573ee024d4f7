package annotate

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-annotate/pkg/activity"
)

// SetDefaults folds caller defaults, dotenv values and the store's current
// values, then writes the result back to the store for every recognized
// key: a winner is written as a string and a key without one, including a
// blank store value, is cleared. Non-blank store values always win over raw.
//
// The body runs once per Runtime; later calls return false without side
// effects. Store failures are logged and never surfaced.
func (r *Runtime) SetDefaults(ctx context.Context, raw RawOptions) bool {
	if r.state == StateInitialized {
		r.logger.Debug("defaults already materialized")
		return false
	}
	r.state = StateInitialized

	stack, err := NewConfigBuilder().
		Defaults(raw).
		Dotenv(r.dotenv).
		Environment(r.store).
		Build()
	if err != nil {
		r.logger.Error("build option layers", "err", err)
		return true
	}
	r.stack = stack

	merged := stack.Merge()
	touched := make([]string, 0, len(merged))
	for _, key := range AllOptions() {
		if value, ok := merged[key]; ok {
			err = r.store.Set(string(key), value)
		} else {
			if _, present := r.store.Lookup(string(key)); !present {
				continue
			}
			err = r.store.Unset(string(key))
		}
		if err != nil {
			r.logger.Warn("materialize option", "key", key, "err", err)
			continue
		}
		touched = append(touched, string(key))
	}

	r.logger.Debug("defaults materialized", "keys", len(touched))
	r.emit(ctx, activity.BuildOptionsMaterializedEvent(activity.OptionsEventInput{
		Keys:   touched,
		Layers: layerContexts(stack),
	}))
	return true
}

// Override writes raw into the store above every other layer. Unlike
// SetDefaults it may be called any number of times. Blank and nil values
// are ignored.
func (r *Runtime) Override(ctx context.Context, raw RawOptions) error {
	snapshot := SnapshotFromRaw(raw)
	if len(snapshot) == 0 {
		return nil
	}

	base := r.Stack().Layers()
	var errs []error
	keys := make([]string, 0, len(snapshot))
	for _, key := range AllOptions() {
		value, ok := snapshot[key]
		if !ok {
			continue
		}
		if err := r.store.Set(string(key), value); err != nil {
			errs = append(errs, fmt.Errorf("annotate: override %s: %w", key, err))
			continue
		}
		keys = append(keys, string(key))
	}

	builder := NewConfigBuilder()
	for _, layer := range base {
		if layer.Scope.Name == ScopeOverrides {
			for key, value := range layer.Snapshot {
				if _, ok := snapshot[key]; !ok {
					snapshot[key] = value
				}
			}
			continue
		}
		builder = builder.Layer(layer)
	}
	stack, err := builder.Layer(NewLayer(
		NewScope(ScopeOverrides, ScopePriorityOverrides, WithScopeLabel("Overrides")),
		snapshot,
	)).Build()
	if err != nil {
		errs = append(errs, err)
	} else {
		r.stack = stack
	}

	r.logger.Debug("options overridden", "keys", keys)
	r.emit(ctx, activity.BuildOptionsOverriddenEvent(activity.OptionsEventInput{
		Keys:   keys,
		Layers: layerContexts(r.stack),
	}))
	return errors.Join(errs...)
}

// ResetOptions clears every recognized key from the store. The
// materialization state is left untouched, so a later SetDefaults on the
// same Runtime stays a no-op.
func (r *Runtime) ResetOptions(ctx context.Context) {
	keys := make([]string, 0, len(keyGroups))
	for _, key := range AllOptions() {
		if err := r.store.Unset(string(key)); err != nil {
			r.logger.Warn("reset option", "key", key, "err", err)
			continue
		}
		keys = append(keys, string(key))
	}
	r.stack = nil

	r.logger.Debug("options reset", "keys", len(keys))
	r.emit(ctx, activity.BuildOptionsResetEvent(activity.OptionsEventInput{Keys: keys}))
}

func (r *Runtime) emit(ctx context.Context, event activity.Event) {
	if err := r.emitter.Emit(ctx, event); err != nil {
		r.logger.Warn("activity hook failed", "verb", event.Verb, "err", err)
	}
}

func layerContexts(stack *Stack) []activity.LayerContext {
	layers := stack.Layers()
	if len(layers) == 0 {
		return nil
	}
	out := make([]activity.LayerContext, 0, len(layers))
	for _, layer := range layers {
		out = append(out, activity.LayerContext{
			Name:       layer.Scope.Name,
			Priority:   layer.Scope.Priority,
			SnapshotID: layer.SnapshotID,
		})
	}
	return out
}
