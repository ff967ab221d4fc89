package interop

import (
	"errors"
	"fmt"
	"slices"
)

// UnboundFunc supplies a value in place of an unbound read, or handles an
// unbound write. It receives the instance and the field name.
type UnboundFunc func(inst any, field string) (any, error)

// Bridge binds a Descriptor to an internal and an external Accessor.
type Bridge struct {
	desc         Descriptor
	externalName string
	internal     Accessor
	external     Accessor
	unbound      UnboundFunc
	validate     bool
}

// BridgeOption configures a Bridge at registration.
type BridgeOption func(*Bridge)

// WithExternalName sets the name the field has on the external side.
// It defaults to the descriptor name.
func WithExternalName(name string) BridgeOption {
	return func(b *Bridge) {
		b.externalName = name
	}
}

// WithUnbound installs a fallback for unbound accessors.
func WithUnbound(fn UnboundFunc) BridgeOption {
	return func(b *Bridge) {
		b.unbound = fn
	}
}

// NewBridge creates a bridge. A nil accessor is allowed and behaves as
// unbound in both directions.
func NewBridge(desc Descriptor, internal, external Accessor, opts ...BridgeOption) (*Bridge, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	b := &Bridge{
		desc:         desc,
		externalName: desc.Name,
		internal:     internal,
		external:     external,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.externalName == "" {
		b.externalName = desc.Name
	}

	return b, nil
}

// Name returns the internal field name.
func (b *Bridge) Name() string {
	return b.desc.Name
}

// ExternalName returns the field name on the external side.
func (b *Bridge) ExternalName() string {
	return b.externalName
}

// Descriptor returns the field descriptor.
func (b *Bridge) Descriptor() Descriptor {
	return b.desc
}

// Kind returns the field kind.
func (b *Bridge) Kind() Kind {
	return b.desc.Kind
}

// String returns a short description for error messages.
func (b *Bridge) String() string {
	return fmt.Sprintf("%s.%s (%s)", b.desc.Owner, b.desc.Name, b.desc.Kind)
}

// Import copies the field value from ext onto in. An absent external value
// imports nothing.
func (b *Bridge) Import(ext, in any) error {
	v, ok, err := b.read(b.external, ext)
	if err != nil || !ok {
		return err
	}

	return b.ImportValue(in, v)
}

// ImportValue writes v onto in. Scalars overwrite; sequences append and
// mappings merge into the current internal value.
func (b *Bridge) ImportValue(in, v any) error {
	if b.validate {
		if err := b.CheckKind(v); err != nil {
			return err
		}
	}

	switch b.desc.Kind {
	case KindSequence:
		items, ok := toSlice(v)
		if !ok {
			// a lone element is appended as-is
			items = []any{v}
		}

		cur, err := b.currentSlice(b.internal, in, true)
		if err != nil {
			return err
		}

		return b.write(b.internal, in, appendItems(cur, items, b.desc.Unique))
	case KindMapping:
		add, ok := toMap(v)
		if !ok {
			return b.write(b.internal, in, v)
		}

		cur, err := b.currentMap(b.internal, in, true)
		if err != nil {
			return err
		}

		return b.write(b.internal, in, mergeMaps(cur, add))
	default:
		return b.write(b.internal, in, v)
	}
}

// Export copies the field value from in onto ext. It returns false, and
// writes nothing, when in has no bound value for the field.
func (b *Bridge) Export(in, ext any) (bool, error) {
	v, ok, err := b.read(b.internal, in)
	if err != nil || !ok {
		return false, err
	}

	switch b.desc.Kind {
	case KindSequence:
		items, ok := toSlice(v)
		if !ok {
			return true, b.write(b.external, ext, v)
		}

		cur, err := b.currentSlice(b.external, ext, false)
		if err != nil {
			return false, err
		}

		return true, b.write(b.external, ext, appendItems(cur, items, b.desc.Unique))
	case KindMapping:
		add, ok := toMap(v)
		if !ok {
			return true, b.write(b.external, ext, v)
		}

		cur, err := b.currentMap(b.external, ext, false)
		if err != nil {
			return false, err
		}

		return true, b.write(b.external, ext, mergeMaps(cur, add))
	default:
		return true, b.write(b.external, ext, v)
	}
}

// Value returns the internal value of the field on in.
func (b *Bridge) Value(in any) (any, bool, error) {
	return b.read(b.internal, in)
}

// CheckKind returns a FieldError wrapping ErrKindMismatch when v does not
// have the declared kind. nil always passes.
func (b *Bridge) CheckKind(v any) error {
	if v == nil {
		return nil
	}

	if got := KindOf(v); got != b.desc.Kind {
		return &FieldError{
			Field:   b.desc.Name,
			Context: b.desc.Owner,
			Err:     fmt.Errorf("%w: want %s, got %s (%T)", ErrKindMismatch, b.desc.Kind, got, v),
		}
	}

	return nil
}

func (b *Bridge) read(acc Accessor, inst any) (any, bool, error) {
	if acc == nil {
		return b.readUnbound(inst)
	}

	v, ok, err := acc.Get(inst)
	if errors.Is(err, ErrUnboundField) {
		return b.readUnbound(inst)
	}

	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", b.desc.Name, err)
	}

	return v, ok, nil
}

func (b *Bridge) readUnbound(inst any) (any, bool, error) {
	if b.unbound == nil {
		return nil, false, fieldError(ErrUnboundField, b.desc.Name, inst)
	}

	v, err := b.unbound(inst, b.desc.Name)
	if err != nil {
		return nil, false, err
	}

	return v, true, nil
}

func (b *Bridge) write(acc Accessor, inst, v any) error {
	var err error
	if acc == nil {
		err = ErrUnboundField
	} else {
		err = acc.Set(inst, v)
	}

	if errors.Is(err, ErrUnboundField) {
		if b.unbound == nil {
			return fieldError(ErrUnboundField, b.desc.Name, inst)
		}

		_, err = b.unbound(inst, b.desc.Name)

		return err
	}

	if err != nil {
		return fmt.Errorf("write %s: %w", b.desc.Name, err)
	}

	return nil
}

// currentSlice returns a copy of the collection currently held on one side.
// On the external side an unreadable collection counts as empty.
func (b *Bridge) currentSlice(acc Accessor, inst any, internal bool) ([]any, error) {
	v, ok, err := b.current(acc, inst, internal)
	if err != nil || !ok || v == nil {
		return nil, err
	}

	s, isSlice := toSlice(v)
	if !isSlice {
		return []any{v}, nil
	}

	return slices.Clone(s), nil
}

func (b *Bridge) currentMap(acc Accessor, inst any, internal bool) (map[string]any, error) {
	v, ok, err := b.current(acc, inst, internal)
	if err != nil || !ok || v == nil {
		return map[string]any{}, err
	}

	m, isMap := toMap(v)
	if !isMap {
		return map[string]any{}, nil
	}

	return m, nil
}

func (b *Bridge) current(acc Accessor, inst any, internal bool) (any, bool, error) {
	if internal {
		return b.read(acc, inst)
	}

	if acc == nil {
		return nil, false, nil
	}

	v, ok, err := acc.Get(inst)
	if errors.Is(err, ErrUnboundField) {
		return nil, false, nil
	}

	return v, ok, err
}
