// Package interop moves field values between an internal record and an
// external representation of the same data.
//
// # Concepts
//
//   - Descriptor: one named field of an owner type, with a Kind
//     (scalar, sequence or mapping).
//   - Accessor: how to read and write a field on one side. Accessors are
//     built once, when a bridge is registered: Func wraps method-style
//     closures, Key addresses a string-keyed map, Slot addresses a
//     record.Record slot, Field addresses an exported struct field.
//   - Bridge: a Descriptor bound to an internal and an external Accessor.
//   - Broker: every Bridge of one owner type, in registration order.
//   - Registry: a cache of Brokers keyed by owner name and generation.
//
// # Import and export
//
// Bridge.Import reads the external value and writes it to the internal
// instance. Scalars are overwritten. Sequences are appended to and mappings
// are merged into whatever the internal instance already holds, so repeated
// imports accumulate.
//
// Bridge.Export is the mirror operation. When the internal accessor reports
// no bound value (an unset slot), nothing is exported and Export returns
// false: absent data is never forced into the external form as a zero value.
//
// # Failures
//
// Errors are *FieldError values wrapping one of ErrUnboundField,
// ErrUnknownField, ErrDuplicateField or ErrKindMismatch. Callers that
// prefer a default over a failure can pass an UnboundFunc to a Bridge or a
// FallbackFunc to Broker.Find.
package interop
