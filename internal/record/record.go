// Package record provides named value slots that can be bound or unbound,
// the storage behind instance-variable style field bridges.
package record

import (
	"slices"

	"yproj/internal/history"
)

// Slot is one bound value with its provenance.
type Slot struct {
	Value  any
	Origin history.Provenance
}

// Record is an ordered set of named slots. A slot that was never set, or was
// unset, is undefined, which is different from a slot holding nil.
// A Record is not safe for concurrent use.
type Record struct {
	slots map[string]*Slot
	order []string
}

// Holder is implemented by types that keep their fields in a Record.
type Holder interface {
	Record() *Record
}

// New returns an empty record.
func New() *Record {
	return &Record{slots: make(map[string]*Slot)}
}

// Record returns r itself, so a bare *Record satisfies Holder.
func (r *Record) Record() *Record {
	return r
}

// Defined reports whether name is bound.
func (r *Record) Defined(name string) bool {
	_, ok := r.slots[name]
	return ok
}

// Get returns the value bound to name and whether it is bound.
func (r *Record) Get(name string) (any, bool) {
	s, ok := r.slots[name]
	if !ok {
		return nil, false
	}

	return s.Value, true
}

// Set binds value to name and marks the slot as edited.
func (r *Record) Set(name string, value any) {
	s := r.slot(name)
	s.Value = value
	s.Origin = s.Origin.Edit()
}

// Load binds value to name with the given provenance.
func (r *Record) Load(name string, value any, origin history.Provenance) {
	s := r.slot(name)
	s.Value = value
	s.Origin = origin
}

// Stamp replaces the provenance of a bound slot. It is a no-op for
// undefined names.
func (r *Record) Stamp(name string, origin history.Provenance) {
	if s, ok := r.slots[name]; ok {
		s.Origin = origin
	}
}

// Origin returns the provenance of a bound slot.
func (r *Record) Origin(name string) (history.Provenance, bool) {
	s, ok := r.slots[name]
	if !ok {
		return history.Provenance{}, false
	}

	return s.Origin, true
}

// Unset removes the binding for name.
func (r *Record) Unset(name string) {
	if _, ok := r.slots[name]; !ok {
		return
	}

	delete(r.slots, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
}

// Names returns the bound names in first-bound order.
func (r *Record) Names() []string {
	return slices.Clone(r.order)
}

// Len returns the number of bound slots.
func (r *Record) Len() int {
	return len(r.slots)
}

func (r *Record) slot(name string) *Slot {
	if r.slots == nil {
		r.slots = make(map[string]*Slot)
	}

	s, ok := r.slots[name]
	if !ok {
		s = &Slot{}
		r.slots[name] = s
		r.order = append(r.order, name)
	}

	return s
}
