package loader

// Source is a file brought into memory.
type Source struct {
	// Name is the key the file was required by: a logical name for the
	// legacy strategy, an absolute path otherwise.
	Name    string
	Path    string
	Content []byte
}

// Residency records every file loaded by a Loader. A name is loaded at
// most once for the Loader's lifetime.
type Residency struct {
	Strategy   Strategy
	Patched    bool
	Extensions []Source
	Sources    []Source

	names map[string]struct{}
}

func newResidency() *Residency {
	return &Residency{names: map[string]struct{}{}}
}

// Has reports whether name is resident.
func (r *Residency) Has(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Len returns the number of resident files, extensions included.
func (r *Residency) Len() int {
	return len(r.names)
}

// Names lists resident sources in load order, extensions excluded.
func (r *Residency) Names() []string {
	out := make([]string, len(r.Sources))
	for i, source := range r.Sources {
		out[i] = source.Name
	}
	return out
}

func (r *Residency) claim(name string) bool {
	if _, ok := r.names[name]; ok {
		return false
	}
	r.names[name] = struct{}{}
	return true
}

func (r *Residency) clone() *Residency {
	out := &Residency{
		Strategy:   r.Strategy,
		Patched:    r.Patched,
		Extensions: append([]Source(nil), r.Extensions...),
		Sources:    append([]Source(nil), r.Sources...),
		names:      make(map[string]struct{}, len(r.names)),
	}
	for name := range r.names {
		out.names[name] = struct{}{}
	}
	return out
}
