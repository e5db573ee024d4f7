package annotate

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-annotate/pkg/envstore"
)

// RawOptions is a caller-supplied options mapping. Values may be scalars or
// lists; keys outside the registry are ignored. RawOptions is never mutated.
type RawOptions map[string]any

// SnapshotFromRaw coerces recognized raw values into their string form:
// lists are comma joined, scalars are stringified, nil and blank values are
// dropped.
func SnapshotFromRaw(raw RawOptions) Snapshot {
	out := make(Snapshot, len(raw))
	for name, value := range raw {
		key := Key(name)
		if _, ok := GroupOf(key); !ok {
			continue
		}
		encoded, ok := encodeValue(value)
		if !ok || blank(encoded) {
			continue
		}
		out[key] = encoded
	}
	return out
}

// SnapshotFromStrings keeps the recognized, non-blank entries of values.
func SnapshotFromStrings(values map[string]string) Snapshot {
	out := make(Snapshot, len(values))
	for name, value := range values {
		key := Key(name)
		if _, ok := GroupOf(key); !ok || blank(value) {
			continue
		}
		out[key] = value
	}
	return out
}

// SnapshotFromStore captures the recognized, non-blank keys held by store.
func SnapshotFromStore(store envstore.Store) Snapshot {
	out := Snapshot{}
	if store == nil {
		return out
	}
	for _, key := range AllOptions() {
		if value, ok := envstore.LookupNonBlank(store, string(key)); ok {
			out[key] = value
		}
	}
	return out
}

func encodeValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []string:
		return strings.Join(v, ","), true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(v), true
	}
}

// ConfigBuilder assembles a layer stack. Every method returns a new
// builder, so partially built configurations can be shared freely.
type ConfigBuilder struct {
	layers []Layer
}

// NewConfigBuilder returns an empty builder.
func NewConfigBuilder() ConfigBuilder {
	return ConfigBuilder{}
}

// Layer appends an arbitrary layer.
func (b ConfigBuilder) Layer(layer Layer) ConfigBuilder {
	layers := make([]Layer, len(b.layers), len(b.layers)+1)
	copy(layers, b.layers)
	return ConfigBuilder{layers: append(layers, layer)}
}

// Defaults adds the caller defaults layer.
func (b ConfigBuilder) Defaults(raw RawOptions) ConfigBuilder {
	return b.Layer(NewLayer(NewScope(ScopeDefaults, ScopePriorityDefaults, WithScopeLabel("Caller defaults")), SnapshotFromRaw(raw)))
}

// Dotenv adds a layer read from dotenv files.
func (b ConfigBuilder) Dotenv(values map[string]string) ConfigBuilder {
	return b.Layer(NewLayer(NewScope(ScopeDotenv, ScopePriorityDotenv, WithScopeLabel("Dotenv files")), SnapshotFromStrings(values)))
}

// Environment adds a layer captured from store.
func (b ConfigBuilder) Environment(store envstore.Store) ConfigBuilder {
	return b.Layer(NewLayer(NewScope(ScopeEnvironment, ScopePriorityEnvironment, WithScopeLabel("Environment")), SnapshotFromStore(store)))
}

// Overrides adds the explicit overrides layer.
func (b ConfigBuilder) Overrides(raw RawOptions) ConfigBuilder {
	return b.Layer(NewLayer(NewScope(ScopeOverrides, ScopePriorityOverrides, WithScopeLabel("Overrides")), SnapshotFromRaw(raw)))
}

// Build validates the collected layers and returns the stack.
func (b ConfigBuilder) Build() (*Stack, error) {
	return NewStack(b.layers...)
}
