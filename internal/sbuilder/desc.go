package sbuilder

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultTagPrefix marks a mapping as a record. A leading "!" on the tag is
// ignored, so both "!record:Foo" and "record:Foo" name the type Foo.
const DefaultTagPrefix = "record:"

// NameFromTag returns the record type name carried by tag. ok is false when
// tag does not use prefix; an empty name with ok true is an anonymous record.
func NameFromTag(tag, prefix string) (name string, ok bool) {
	if prefix == "" {
		return "", false
	}

	t := strings.TrimLeft(tag, "!")
	p := strings.TrimLeft(prefix, "!")

	if p == "" || !strings.HasPrefix(t, p) {
		return "", false
	}

	return t[len(p):], true
}

// StructDesc describes a record type discovered while parsing.
type StructDesc struct {
	typeName  string
	label     string
	fields    []string
	fieldSet  map[string]struct{}
	finalized bool
	open      int
}

// NewStructDesc returns an empty, unfinalized descriptor.
func NewStructDesc(typeName string) *StructDesc {
	return &StructDesc{
		typeName: typeName,
		label:    typeName,
		fieldSet: make(map[string]struct{}),
	}
}

// TypeName returns the record type name, or "" for an anonymous record.
func (d *StructDesc) TypeName() string {
	return d.typeName
}

// Anonymous reports whether the record tag carried no type name.
func (d *StructDesc) Anonymous() bool {
	return d.typeName == ""
}

// Label returns the type name, or a generated name for anonymous records.
func (d *StructDesc) Label() string {
	return d.label
}

// Fields returns the field names in first-seen order.
func (d *StructDesc) Fields() []string {
	return slices.Clone(d.fields)
}

// Has reports whether name is a field of the record type.
func (d *StructDesc) Has(name string) bool {
	_, ok := d.fieldSet[name]
	return ok
}

// Finalized reports whether the field set is locked.
func (d *StructDesc) Finalized() bool {
	return d.finalized
}

// AddField adds name to the field set. Adding a known field is a no-op;
// adding a new field to a finalized descriptor fails with ErrFinalized.
func (d *StructDesc) AddField(name string) error {
	if d.Has(name) {
		return nil
	}

	if d.finalized {
		return fmt.Errorf("%w: cannot add field %q to %s", ErrFinalized, name, d.label)
	}

	if d.fieldSet == nil {
		d.fieldSet = make(map[string]struct{})
	}

	d.fieldSet[name] = struct{}{}
	d.fields = append(d.fields, name)

	return nil
}

// Finalize locks the field set.
func (d *StructDesc) Finalize() {
	d.finalized = true
}

// String implements fmt.Stringer.
func (d *StructDesc) String() string {
	state := "open"
	if d.finalized {
		state = "final"
	}

	return fmt.Sprintf("%s{%s} (%s)", d.label, strings.Join(d.fields, ", "), state)
}
