package history

import (
	"crypto/rand"
	"fmt"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"yproj/internal/common"
)

// EntryKind identifies the variant of a history Entry.
type EntryKind int

const (
	EntryUnknown EntryKind = iota
	EntryField
	EntryExtra
	EntryInclude

	// EntryTotal is the number of entry kinds defined.
	EntryTotal = int(iota)
)

// String returns the lower-case name of the kind.
func (k EntryKind) String() string {
	switch k {
	case EntryField:
		return "field"
	case EntryExtra:
		return "extra"
	case EntryInclude:
		return "include"
	default:
		return common.UnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Entry is one recorded event of a load pass.
type Entry struct {
	// Kind selects which of the remaining fields are meaningful.
	Kind EntryKind `json:"kind"`
	// Name is the field or extra key. Empty for includes.
	Name string `json:"name,omitempty"`
	// Value is the captured value of an extra entry.
	Value any `json:"value,omitempty"`
	// Target is the include path exactly as written in the document.
	Target string `json:"target,omitempty"`
	// Source is the absolute path of the file the entry was read from.
	Source string `json:"source"`
	// Depth is the include nesting level of Source; 0 is the top-level file.
	Depth int `json:"depth"`
	// Tagged records that an include used the tagged "!ext include: !file" form.
	Tagged bool `json:"tagged,omitempty"`
}

// TopLevel reports whether the entry was read from the top-level document.
func (e Entry) TopLevel() bool {
	return e.Depth == 0
}

// String returns a one-line description of the entry.
func (e Entry) String() string {
	switch e.Kind {
	case EntryInclude:
		return fmt.Sprintf("include %s (from %s, depth %d)", e.Target, e.Source, e.Depth)
	case EntryExtra:
		return fmt.Sprintf("extra %s (from %s, depth %d)", e.Name, e.Source, e.Depth)
	default:
		return fmt.Sprintf("%s %s (from %s, depth %d)", e.Kind, e.Name, e.Source, e.Depth)
	}
}

// History is an ordered log of configuration entries for one load.
// It is not safe for concurrent use.
type History struct {
	id      string
	top     string
	entries []Entry
}

// New returns an empty history.
func New() *History {
	return &History{}
}

// Reset clears all entries and starts a new load of the top-level file top.
// Each reset assigns a fresh load identifier.
func (h *History) Reset(top string) {
	h.id = ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	h.top = top
	h.entries = nil
}

// ID returns the identifier assigned by the last Reset, or "" if none.
func (h *History) ID() string {
	return h.id
}

// Top returns the top-level source of the current load.
func (h *History) Top() string {
	return h.top
}

// Field records that field name was applied from source.
func (h *History) Field(name, source string, depth int) {
	h.entries = append(h.entries, Entry{Kind: EntryField, Name: name, Source: source, Depth: depth})
}

// Extra records that the unrecognised key name was captured with value.
func (h *History) Extra(name string, value any, source string, depth int) {
	h.entries = append(h.entries, Entry{Kind: EntryExtra, Name: name, Value: value, Source: source, Depth: depth})
}

// Include records an include directive for target found in source.
func (h *History) Include(target, source string, depth int, tagged bool) {
	h.entries = append(h.entries, Entry{
		Kind:   EntryInclude,
		Target: target,
		Source: source,
		Depth:  depth,
		Tagged: tagged,
	})
}

// Entries returns a copy of all entries in document order.
func (h *History) Entries() []Entry {
	return slices.Clone(h.entries)
}

// TopLevel returns the entries read from the top-level document, in order.
func (h *History) TopLevel() []Entry {
	var out []Entry

	for _, e := range h.entries {
		if e.TopLevel() {
			out = append(out, e)
		}
	}

	return out
}

// Sources returns every distinct source file in first-seen order.
func (h *History) Sources() []string {
	var out []string

	if h.top != "" {
		out = append(out, h.top)
	}

	for _, e := range h.entries {
		out = common.AppendUnique(out, e.Source)
	}

	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Empty reports whether nothing has been recorded.
func (h *History) Empty() bool {
	return len(h.entries) == 0
}
