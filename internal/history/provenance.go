package history

// Provenance describes where a single live value came from.
type Provenance struct {
	// Source is the file the value was loaded from, or "" for values
	// that were never loaded.
	Source string `json:"source,omitempty"`
	// Depth is the include nesting level of Source.
	Depth int `json:"depth"`
	// Edited is set once the value is changed after loading.
	Edited bool `json:"edited,omitempty"`
}

// Loaded returns the provenance of a value read from source at depth.
func Loaded(source string, depth int) Provenance {
	return Provenance{Source: source, Depth: depth}
}

// TopLevel reports whether the value belongs to the top-level document.
// Values that were never loaded count as top-level.
func (p Provenance) TopLevel() bool {
	return p.Depth == 0
}

// Writable reports whether re-serialization of the top-level document
// should emit the value.
func (p Provenance) Writable() bool {
	return p.Edited || p.TopLevel()
}

// Edit returns a copy of p marked as edited.
func (p Provenance) Edit() Provenance {
	p.Edited = true
	return p
}
