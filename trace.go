package annotate

import (
	"encoding/json"
)

// Trace captures provenance for a single option across the layers that
// produced the effective value. Layers are ordered strongest first.
type Trace struct {
	Key    Key          `json:"key"`
	Value  string       `json:"value,omitempty"`
	Found  bool         `json:"found"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a specific scope contributed to a traced key.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      string `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Winner returns the scope that supplied the effective value.
func (t Trace) Winner() (Scope, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer.Scope, true
		}
	}
	return Scope{}, false
}

// Trace reports every layer's contribution to key.
func (s *Stack) Trace(key Key) Trace {
	trace := Trace{Key: key}
	if s == nil {
		return trace
	}
	trace.Layers = make([]Provenance, 0, len(s.layers))
	for _, layer := range s.layers {
		value, ok := layer.Snapshot[key]
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Value:      value,
			Found:      ok,
		})
		if ok && !trace.Found {
			trace.Found = true
			trace.Value = value
		}
	}
	return trace
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously generated via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
