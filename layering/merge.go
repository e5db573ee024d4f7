// Package layering folds key/value snapshots ordered from strongest to
// weakest into a single effective snapshot.
package layering

// MergeLayers composes snapshots ordered from strongest to weakest,
// returning a new map that keeps every key set by a stronger layer and
// fills the remaining keys from weaker ones. Inputs are never mutated.
func MergeLayers[K comparable, V any](layers ...map[K]V) map[K]V {
	merged := map[K]V{}
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = value
		}
	}
	return merged
}

// Locate returns the index of the strongest layer defining key, or -1.
func Locate[K comparable, V any](key K, layers ...map[K]V) int {
	for i, layer := range layers {
		if _, ok := layer[key]; ok {
			return i
		}
	}
	return -1
}

// Clone returns a detached copy of snapshot. A nil snapshot stays nil so
// callers can still tell "no layer data" apart from "empty layer".
func Clone[K comparable, V any](snapshot map[K]V) map[K]V {
	if snapshot == nil {
		return nil
	}
	out := make(map[K]V, len(snapshot))
	for key, value := range snapshot {
		out[key] = value
	}
	return out
}
