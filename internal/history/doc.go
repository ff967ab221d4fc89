// Package history records where each configuration value came from during a
// project load, and in which order.
//
// A History is reset at the start of every top-level load and accumulates
// entries for the top-level document and every file it transitively
// includes. Three kinds of entry exist:
//
//   - EntryField: a recognised field was applied from a source file
//   - EntryExtra: an unrecognised key was captured as extra data
//   - EntryInclude: an include directive pointed at another file
//
// Entries are kept in document order. Re-serialization walks them in that
// order and re-emits only what belongs to the top-level document (Depth 0);
// included files are never written back.
//
// Provenance is the per-value counterpart of an entry. It is stored next to
// every loaded value so that later consumers can tell loaded values from
// values edited after the load.
package history
