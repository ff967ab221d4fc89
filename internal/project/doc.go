// Package project loads, edits and re-serializes YAML project files.
//
// A project file is a mapping whose keys are either schema fields, include
// directives or free-form extra data:
//
//	name: demo
//	version: 1.2.0
//	include: common.yml
//	!ext include: !file authors.yml
//	authors: [ann]
//	x-build: {cache: true}
//
// # Schema
//
// A Schema lists the fields of the project type and their kinds. The
// default schema knows the usual package fields (name, version, authors,
// dependencies, ...). Define adds custom fields at run time; each change
// bumps the schema generation so the field broker is rebuilt on next use.
//
// # Loading
//
// The Loader reads the document through the sbuilder event pipeline and
// dispatches keys in document order. Recognised fields are imported
// immediately through the schema broker: scalars overwrite, sequences
// append and mappings merge. Include directives are resolved against the
// directory of the including file and loaded recursively; a missing target
// aborts the load with ErrUnresolvedInclude. Unrecognised keys, and the
// entries of an extra_data mapping, are kept as extras.
//
// Every step is recorded in the project History, and every loaded value
// carries its provenance (source file and include depth).
//
// # Re-serialization
//
// Encode walks the history and writes only what belongs to the top-level
// file: its own fields with their current values, its include directives
// as written, and its extras. Values that came from included files are
// written to the top-level output only after being edited; included files
// themselves are never written.
//
// A sequence field set in both the top-level file and an include is written
// with its full live value, so reloading imports the included elements
// twice. Unique sequences absorb that; a sequence declared with
// interop.Sequence gains the duplicates on every round trip.
package project
