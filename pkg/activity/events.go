package activity

import (
	"sort"
	"strings"
	"time"
)

// Verbs emitted over the lifecycle of a run.
const (
	VerbOptionsMaterialized = "options.materialized"
	VerbOptionsReset        = "options.reset"
	VerbOptionsOverridden   = "options.overridden"
	VerbSourcesLoaded       = "sources.loaded"
	VerbTaskInvoked         = "task.invoked"
)

// Object types attached to events.
const (
	ObjectOptions = "options"
	ObjectSources = "sources"
	ObjectTask    = "task"
)

// LayerContext captures a configuration layer involved in an event.
type LayerContext struct {
	Name       string
	Priority   int
	SnapshotID string
}

// OptionsEventInput describes an options lifecycle change.
type OptionsEventInput struct {
	Keys       []string
	Layers     []LayerContext
	Metadata   map[string]any
	OccurredAt time.Time
}

// SourcesEventInput describes a completed eager load.
type SourcesEventInput struct {
	Strategy   string
	Files      int
	Extensions int
	Metadata   map[string]any
	OccurredAt time.Time
}

// TaskEventInput describes a task invocation.
type TaskEventInput struct {
	Task       string
	Skipped    bool
	Duration   time.Duration
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildOptionsMaterializedEvent reports defaults written to the store.
func BuildOptionsMaterializedEvent(input OptionsEventInput) Event {
	return buildOptionsEvent(VerbOptionsMaterialized, input)
}

// BuildOptionsResetEvent reports options cleared from the store.
func BuildOptionsResetEvent(input OptionsEventInput) Event {
	return buildOptionsEvent(VerbOptionsReset, input)
}

// BuildOptionsOverriddenEvent reports explicit overrides written to the store.
func BuildOptionsOverriddenEvent(input OptionsEventInput) Event {
	return buildOptionsEvent(VerbOptionsOverridden, input)
}

// BuildSourcesLoadedEvent reports a finished eager load.
func BuildSourcesLoadedEvent(input SourcesEventInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["files"] = input.Files
	metadata["extensions"] = input.Extensions
	objectID := strings.TrimSpace(input.Strategy)
	if objectID == "" {
		objectID = ObjectSources
	}
	metadata["strategy"] = objectID
	return Event{
		Verb:       VerbSourcesLoaded,
		ObjectType: ObjectSources,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildTaskInvokedEvent reports a task run or skip.
func BuildTaskInvokedEvent(input TaskEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Skipped {
		metadata = ensureMetadata(metadata)
		metadata["skipped"] = true
	}
	if input.Duration > 0 {
		metadata = ensureMetadata(metadata)
		metadata["duration_ms"] = input.Duration.Milliseconds()
	}
	return Event{
		Verb:       VerbTaskInvoked,
		ObjectType: ObjectTask,
		ObjectID:   strings.TrimSpace(input.Task),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func buildOptionsEvent(verb string, input OptionsEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if len(input.Keys) > 0 {
		keys := append([]string{}, input.Keys...)
		sort.Strings(keys)
		metadata = ensureMetadata(metadata)
		metadata["keys"] = keys
	}
	objectID := ObjectOptions
	if len(input.Layers) > 0 {
		layers := make([]map[string]any, 0, len(input.Layers))
		for _, layer := range input.Layers {
			layers = append(layers, map[string]any{
				"name":        layer.Name,
				"priority":    layer.Priority,
				"snapshot_id": layer.SnapshotID,
			})
		}
		metadata = ensureMetadata(metadata)
		metadata["layers"] = layers
		if id := strings.TrimSpace(input.Layers[0].SnapshotID); id != "" {
			objectID = id
		}
	}
	return Event{
		Verb:       verb,
		ObjectType: ObjectOptions,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
