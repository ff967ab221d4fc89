package interop

import (
	"fmt"
	"slices"
	"sort"
)

// DuplicatePolicy decides what Register does with a name already registered.
type DuplicatePolicy int

const (
	// DuplicateReplace replaces the earlier bridge, keeping its position.
	DuplicateReplace DuplicatePolicy = iota
	// DuplicateReject fails with ErrDuplicateField.
	DuplicateReject
)

// FallbackFunc is called by Find when no bridge matches name. Its result is
// returned to the caller of Find in place of an error.
type FallbackFunc func(b *Broker, name string) (*Bridge, error)

// Option configures a Broker.
type Option func(*Broker)

// WithDuplicatePolicy sets the re-registration policy.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(b *Broker) {
		b.policy = p
	}
}

// WithKindValidation makes every bridge of the broker check value kinds on
// import.
func WithKindValidation() Option {
	return func(b *Broker) {
		b.validate = true
	}
}

// Broker holds the bridges of one owner type.
// A Broker is not safe for concurrent registration; share it read-only.
type Broker struct {
	owner    string
	policy   DuplicatePolicy
	validate bool

	order    []string
	bridges  map[string]*Bridge
	external map[string]*Bridge
}

// NewBroker returns an empty broker for owner.
func NewBroker(owner string, opts ...Option) *Broker {
	b := &Broker{
		owner:    owner,
		bridges:  make(map[string]*Bridge),
		external: make(map[string]*Bridge),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Owner returns the owner type name.
func (b *Broker) Owner() string {
	return b.owner
}

// Validating reports whether imports check value kinds.
func (b *Broker) Validating() bool {
	return b.validate
}

// String implements fmt.Stringer.
func (b *Broker) String() string {
	return "broker(" + b.owner + ")"
}

// Register creates a bridge for desc and stores it under desc.Name.
func (b *Broker) Register(desc Descriptor, internal, external Accessor, opts ...BridgeOption) (*Bridge, error) {
	switch desc.Owner {
	case "":
		desc.Owner = b.owner
	case b.owner:
	default:
		return nil, fieldError(fmt.Errorf("%w: %s", ErrOwnerMismatch, desc.Owner), desc.Name, b)
	}

	bridge, err := NewBridge(desc, internal, external, opts...)
	if err != nil {
		return nil, fmt.Errorf("register in %s: %w", b, err)
	}

	bridge.validate = b.validate

	if old, ok := b.bridges[desc.Name]; ok {
		if b.policy == DuplicateReject {
			return nil, fieldError(ErrDuplicateField, desc.Name, b)
		}

		delete(b.external, old.externalName)
	} else {
		b.order = append(b.order, desc.Name)
	}

	b.bridges[desc.Name] = bridge
	b.external[bridge.externalName] = bridge

	return bridge, nil
}

// Find returns the bridge registered for name. When there is none, fallback
// is called if given, otherwise an ErrUnknownField error is returned.
func (b *Broker) Find(name string, fallback FallbackFunc) (*Bridge, error) {
	if bridge, ok := b.bridges[name]; ok {
		return bridge, nil
	}

	if fallback != nil {
		return fallback(b, name)
	}

	return nil, fieldError(ErrUnknownField, name, b)
}

// FindExternal is Find by external field name.
func (b *Broker) FindExternal(name string, fallback FallbackFunc) (*Bridge, error) {
	if bridge, ok := b.external[name]; ok {
		return bridge, nil
	}

	if fallback != nil {
		return fallback(b, name)
	}

	return nil, fieldError(ErrUnknownField, name, b)
}

// Has reports whether a bridge is registered for name.
func (b *Broker) Has(name string) bool {
	_, ok := b.bridges[name]
	return ok
}

// Names returns the registered field names in registration order.
func (b *Broker) Names() []string {
	return slices.Clone(b.order)
}

// Bridges returns the registered bridges in registration order.
func (b *Broker) Bridges() []*Bridge {
	out := make([]*Bridge, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.bridges[name])
	}

	return out
}

// Len returns the number of registered bridges.
func (b *Broker) Len() int {
	return len(b.order)
}

// Import imports a single field.
func (b *Broker) Import(name string, ext, in any) error {
	bridge, err := b.Find(name, nil)
	if err != nil {
		return err
	}

	return bridge.Import(ext, in)
}

// Export exports a single field.
func (b *Broker) Export(name string, in, ext any) (bool, error) {
	bridge, err := b.Find(name, nil)
	if err != nil {
		return false, err
	}

	return bridge.Export(in, ext)
}

// ImportMapped imports every registered field, in registration order.
func (b *Broker) ImportMapped(ext, in any) error {
	for _, bridge := range b.Bridges() {
		if err := bridge.Import(ext, in); err != nil {
			return fmt.Errorf("import %s: %w", bridge.Name(), err)
		}
	}

	return nil
}

// ExportMapped exports every registered field, in registration order, and
// returns the number of fields that had a value to export.
func (b *Broker) ExportMapped(in, ext any) (int, error) {
	n := 0

	for _, bridge := range b.Bridges() {
		ok, err := bridge.Export(in, ext)
		if err != nil {
			return n, fmt.Errorf("export %s: %w", bridge.Name(), err)
		}

		if ok {
			n++
		}
	}

	return n, nil
}

// ImportMap imports every key of h onto in, matching keys by external name
// in sorted key order. Keys without a bridge are passed to extra; with a
// nil extra they fail with ErrUnknownField.
func (b *Broker) ImportMap(h map[string]any, in any, extra func(key string, value any) error) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		bridge, ok := b.external[k]
		if !ok {
			if extra == nil {
				return fieldError(ErrUnknownField, k, b)
			}

			if err := extra(k, h[k]); err != nil {
				return err
			}

			continue
		}

		if err := bridge.ImportValue(in, h[k]); err != nil {
			return fmt.Errorf("import %s: %w", k, err)
		}
	}

	return nil
}
