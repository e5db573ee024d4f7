package loader

import (
	"errors"
	"fmt"
)

// Phase identifies the eager-load step that failed.
type Phase string

const (
	PhaseExtension Phase = "extension"
	PhasePatch     Phase = "patch"
	PhaseSource    Phase = "source"
	PhaseHost      Phase = "host"
)

// ErrNotFound reports a required path that could not be located.
var ErrNotFound = errors.New("loader: file not found")

// LoadError wraps a fatal eager-load failure.
type LoadError struct {
	Phase Phase
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("loader: %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("loader: %s %s: %v", e.Phase, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
