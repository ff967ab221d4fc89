// Package sbuilder rebuilds typed records from a linear stream of YAML
// parse events.
//
// A generic YAML decoder cannot materialize record types it does not know.
// The Builder instead consumes start/end/scalar events and, whenever a
// mapping carries a record tag such as "!record:Project", describes the
// record type incrementally as a StructDesc: its name and the set of field
// names seen so far. The descriptor is finalized when the mapping closes
// and is reused for later mappings with the same tag in the same stream.
//
// Every open mapping frame tracks on its own whether the next scalar is a
// key or a value, so nested records parse independently of their parents.
//
// Walk turns a gopkg.in/yaml.v3 node tree into events, and Parse runs the
// whole pipeline for a byte slice.
//
//	res, err := sbuilder.Parse([]byte("--- !record:Foo\nfield1: value1\n"))
//	// res.Structs[0].TypeName() == "Foo"
//	// res.Documents[0].(*sbuilder.Instance).Fields.Get("field1") == "value1"
package sbuilder
