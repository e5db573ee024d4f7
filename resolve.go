package annotate

import (
	"regexp"
	"strings"
)

const (
	defaultPosition = "before"
	defaultModelDir = "app/models"
)

var trueRE = regexp.MustCompile(`(?i)^(true|t|yes|y|1)$`)

// legacyExclusions are recomputed with a "true" fallback after the flag pass.
var legacyExclusions = []Key{ExcludeScaffolds, ExcludeControllers, ExcludeHelpers}

// Truthy reports whether value spells a true boolean.
func Truthy(value string) bool {
	return trueRE.MatchString(value)
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// ResolvedOptions is the typed view over a resolved snapshot. It is built
// fresh by Resolve and never shares memory with its source.
type ResolvedOptions struct {
	positions map[Key]string
	flags     map[Key]bool
	paths     map[Key][]string
	others    map[Key]string
}

// Resolve decodes snapshot into typed options. Missing or malformed values
// degrade to their defaults; Resolve never fails.
func Resolve(snapshot Snapshot) ResolvedOptions {
	lookup := func(key Key) (string, bool) {
		value, ok := snapshot[key]
		if !ok || blank(value) {
			return "", false
		}
		return value, true
	}

	resolved := ResolvedOptions{
		positions: make(map[Key]string, len(positionOptions)),
		flags:     make(map[Key]bool, len(flagOptions)),
		paths:     make(map[Key][]string, len(pathOptions)),
		others:    make(map[Key]string, len(otherOptions)),
	}

	for _, key := range positionOptions {
		value, ok := lookup(key)
		if !ok {
			value, ok = lookup(Position)
		}
		if !ok {
			value = defaultPosition
		}
		resolved.positions[key] = value
	}

	for _, key := range flagOptions {
		value, _ := lookup(key)
		resolved.flags[key] = Truthy(value)
	}

	for _, key := range otherOptions {
		if value, ok := lookup(key); ok {
			resolved.others[key] = value
		}
	}

	for _, key := range pathOptions {
		value, ok := lookup(key)
		if !ok {
			resolved.paths[key] = []string{}
			continue
		}
		resolved.paths[key] = splitPaths(value)
	}

	if len(resolved.paths[ModelDir]) == 0 {
		resolved.paths[ModelDir] = []string{defaultModelDir}
	}

	for _, key := range []Key{WrapperOpen, WrapperClose} {
		if _, ok := resolved.others[key]; ok {
			continue
		}
		if wrapper, ok := resolved.others[Wrapper]; ok {
			resolved.others[key] = wrapper
		}
	}

	for _, key := range legacyExclusions {
		value, ok := lookup(key)
		if !ok {
			value = "true"
		}
		resolved.flags[key] = Truthy(value)
	}

	return resolved
}

// Position returns the placement hint for a position key. Keys outside the
// position group report the "before" default.
func (r ResolvedOptions) Position(key Key) string {
	if value, ok := r.positions[key]; ok {
		return value
	}
	return defaultPosition
}

// Flag returns the boolean value for a flag key.
func (r ResolvedOptions) Flag(key Key) bool {
	return r.flags[key]
}

// Paths returns a copy of the list for a path key, never nil.
func (r ResolvedOptions) Paths(key Key) []string {
	values := r.paths[key]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Other returns the raw string for a free-form key and whether it was set.
func (r ResolvedOptions) Other(key Key) (string, bool) {
	value, ok := r.others[key]
	return value, ok
}

// Value returns the decoded value of key in its group's shape: string for
// position keys, bool for flags, []string for paths, and string or nil for
// other keys. additional_file_patterns resolves to an empty list when unset.
func (r ResolvedOptions) Value(key Key) any {
	group, ok := GroupOf(key)
	if !ok {
		return nil
	}
	switch group {
	case GroupPosition:
		return r.Position(key)
	case GroupFlag:
		return r.Flag(key)
	case GroupPath:
		return r.Paths(key)
	default:
		if value, ok := r.Other(key); ok {
			return value
		}
		if key == AdditionalFilePatterns {
			return []string{}
		}
		return nil
	}
}

// Map returns every recognized key with its decoded value.
func (r ResolvedOptions) Map() map[string]any {
	out := make(map[string]any, len(keyGroups))
	for _, key := range AllOptions() {
		out[string(key)] = r.Value(key)
	}
	return out
}

// ModelDirs returns the directories holding model sources.
func (r ResolvedOptions) ModelDirs() []string { return r.Paths(ModelDir) }

// Requires returns the extension paths loaded before eager loading.
func (r ResolvedOptions) Requires() []string { return r.Paths(Require) }

// RootDirs returns the configured root directories.
func (r ResolvedOptions) RootDirs() []string { return r.Paths(RootDir) }

// AdditionalFilePatterns splits additional_file_patterns on commas.
func (r ResolvedOptions) AdditionalFilePatterns() []string {
	value, ok := r.Other(AdditionalFilePatterns)
	if !ok {
		return []string{}
	}
	return splitPaths(value)
}

// Snapshot renders the resolved view back into string form.
func (r ResolvedOptions) Snapshot() Snapshot {
	out := make(Snapshot, len(keyGroups))
	for key, value := range r.positions {
		out[key] = value
	}
	for key, value := range r.flags {
		if value {
			out[key] = "true"
		} else {
			out[key] = "false"
		}
	}
	for key, values := range r.paths {
		if len(values) > 0 {
			out[key] = strings.Join(values, ",")
		}
	}
	for key, value := range r.others {
		out[key] = value
	}
	return out
}

// splitPaths splits a comma separated list and drops trailing empty
// segments, so "a,b," is [a b] and "," is empty. Inner empty segments stay.
func splitPaths(value string) []string {
	parts := strings.Split(value, ",")
	end := len(parts)
	for end > 0 && parts[end-1] == "" {
		end--
	}
	return parts[:end]
}
