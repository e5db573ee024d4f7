package annotate

import (
	"context"
)

// Host is the surrounding application framework. Its presence and major
// version select the eager-load strategy.
type Host interface {
	// Present reports whether a host application was detected.
	Present() bool
	// MajorVersion is meaningful only when Present is true.
	MajorVersion() int
	// EagerLoadPaths lists the host's configured eager-load directories.
	EagerLoadPaths() []string
	// EagerLoad triggers the host's own eager-load facility.
	EagerLoad(ctx context.Context) error
}

// NoHost is the Host used when no framework is detected.
type NoHost struct{}

func (NoHost) Present() bool                   { return false }
func (NoHost) MajorVersion() int               { return 0 }
func (NoHost) EagerLoadPaths() []string        { return nil }
func (NoHost) EagerLoad(context.Context) error { return nil }

// StaticHost describes a host from configuration. EagerLoadFunc backs
// EagerLoad when set.
type StaticHost struct {
	Version       int
	Paths         []string
	EagerLoadFunc func(ctx context.Context) error
}

func (h StaticHost) Present() bool     { return true }
func (h StaticHost) MajorVersion() int { return h.Version }

func (h StaticHost) EagerLoadPaths() []string {
	return append([]string{}, h.Paths...)
}

func (h StaticHost) EagerLoad(ctx context.Context) error {
	if h.EagerLoadFunc == nil {
		return nil
	}
	return h.EagerLoadFunc(ctx)
}

// Annotator generates and removes schema and route annotations. Both entry
// points consume the same ResolvedOptions the loader used.
type Annotator interface {
	AnnotateModels(ctx context.Context, opts ResolvedOptions) error
	RemoveModelAnnotations(ctx context.Context, opts ResolvedOptions) error
	AnnotateRoutes(ctx context.Context, opts ResolvedOptions) error
	RemoveRouteAnnotations(ctx context.Context, opts ResolvedOptions) error
}
