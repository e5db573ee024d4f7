package annotate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-annotate/layering"
	"github.com/google/uuid"
)

// Recommended priorities for the standard configuration layers. Higher
// numbers win.
const (
	ScopePriorityDefaults    = 100
	ScopePriorityDotenv      = 200
	ScopePriorityEnvironment = 300
	ScopePriorityOverrides   = 400
)

// Standard scope names.
const (
	ScopeDefaults    = "defaults"
	ScopeDotenv      = "dotenv"
	ScopeEnvironment = "environment"
	ScopeOverrides   = "overrides"
)

// Snapshot holds the string form of option values supplied by one source.
// Blank values never appear in a snapshot built by this package.
type Snapshot map[Key]string

// Scope models a named precedence bucket (defaults, environment, ...).
// Higher priority values represent stronger layers.
type Scope struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: copyMetadata(cfg.metadata),
	}
}

func (s Scope) clone() Scope {
	return Scope{
		Name:     s.Name,
		Label:    s.Label,
		Priority: s.Priority,
		Metadata: copyMetadata(s.Metadata),
	}
}

// Layer pairs a scope with the snapshot captured for it.
type Layer struct {
	Scope      Scope
	Snapshot   Snapshot
	SnapshotID string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithSnapshotID overrides the generated snapshot identifier.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer constructs a Layer holding detached copies of scope and
// snapshot. Blank values and unrecognized keys are dropped. Every layer
// gets a random snapshot ID unless one is supplied.
func NewLayer(scope Scope, snapshot Snapshot, opts ...LayerOption) Layer {
	layer := Layer{
		Scope:    scope.clone(),
		Snapshot: sanitizeSnapshot(snapshot),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&layer)
	}
	if layer.SnapshotID == "" {
		layer.SnapshotID = uuid.NewString()
	}
	return layer
}

var (
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("scope: name must be provided")
	// ErrDuplicateScopeName indicates two layers share a scope name.
	ErrDuplicateScopeName = errors.New("scope: names must be unique")
	// ErrPriorityOrder indicates duplicate priorities.
	ErrPriorityOrder = errors.New("scope: priorities must be strictly ordered")
)

// Stack is an immutable set of layers ordered from strongest to weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts layers so the strongest scope comes first.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		layer := cloneLayer(layer)
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = layer
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})

	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns detached copies of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge folds the stack into the effective snapshot.
func (s *Stack) Merge() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot(layering.MergeLayers(s.snapshots()...))
}

// Resolve folds the stack and decodes the result.
func (s *Stack) Resolve() ResolvedOptions {
	return Resolve(s.Merge())
}

func (s *Stack) snapshots() []map[Key]string {
	out := make([]map[Key]string, len(s.layers))
	for i := range s.layers {
		out[i] = s.layers[i].Snapshot
	}
	return out
}

func cloneLayer(layer Layer) Layer {
	return Layer{
		Scope:      layer.Scope.clone(),
		Snapshot:   Snapshot(layering.Clone(layer.Snapshot)),
		SnapshotID: layer.SnapshotID,
	}
}

func sanitizeSnapshot(snapshot Snapshot) Snapshot {
	if snapshot == nil {
		return nil
	}
	out := make(Snapshot, len(snapshot))
	for key, value := range snapshot {
		if _, ok := GroupOf(key); !ok || blank(value) {
			continue
		}
		out[key] = value
	}
	return out
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
