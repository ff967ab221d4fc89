package interop

import (
	"fmt"
	"reflect"

	"yproj/internal/record"
)

// Accessor reads and writes one field on one representation.
//
// Get reports ok == false when the field has no bound value on inst. An
// accessor that cannot address the field at all returns an error wrapping
// ErrUnboundField.
type Accessor interface {
	Get(inst any) (value any, ok bool, err error)
	Set(inst any, value any) error
}

// Func returns a method-style accessor built from closures. Either closure
// may be nil, in which case that direction is unbound. A Func getter always
// reports a bound value.
func Func(get func(inst any) (any, error), set func(inst, value any) error) Accessor {
	return funcAccessor{get: get, set: set}
}

type funcAccessor struct {
	get func(inst any) (any, error)
	set func(inst, value any) error
}

func (a funcAccessor) Get(inst any) (any, bool, error) {
	if a.get == nil {
		return nil, false, ErrUnboundField
	}

	v, err := a.get(inst)
	if err != nil {
		return nil, false, err
	}

	return v, true, nil
}

func (a funcAccessor) Set(inst, value any) error {
	if a.set == nil {
		return ErrUnboundField
	}

	return a.set(inst, value)
}

// Key returns an accessor for key in a map[string]any.
func Key(key string) Accessor {
	return keyAccessor(key)
}

type keyAccessor string

func (a keyAccessor) Get(inst any) (any, bool, error) {
	m, ok := inst.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("%w: key %q on %T", ErrUnboundField, string(a), inst)
	}

	v, ok := m[string(a)]

	return v, ok, nil
}

func (a keyAccessor) Set(inst, value any) error {
	m, ok := inst.(map[string]any)
	if !ok || m == nil {
		return fmt.Errorf("%w: key %q on %T", ErrUnboundField, string(a), inst)
	}

	m[string(a)] = value

	return nil
}

// Slot returns an accessor for a named slot of a record.Holder.
// An undefined slot reads as unbound-value (ok == false), not as an error.
func Slot(name string) Accessor {
	return slotAccessor(name)
}

type slotAccessor string

func (a slotAccessor) Get(inst any) (any, bool, error) {
	r, err := holderRecord(inst)
	if err != nil {
		return nil, false, fmt.Errorf("slot %q: %w", string(a), err)
	}

	v, ok := r.Get(string(a))

	return v, ok, nil
}

func (a slotAccessor) Set(inst, value any) error {
	r, err := holderRecord(inst)
	if err != nil {
		return fmt.Errorf("slot %q: %w", string(a), err)
	}

	r.Set(string(a), value)

	return nil
}

func holderRecord(inst any) (*record.Record, error) {
	h, ok := inst.(record.Holder)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no record", ErrUnboundField, inst)
	}

	r := h.Record()
	if r == nil {
		return nil, fmt.Errorf("%w: %T has a nil record", ErrUnboundField, inst)
	}

	return r, nil
}

// Field returns an accessor for the exported struct field goName. Reads
// accept a struct or a pointer to one; writes need a pointer. A zero field
// value reads as unbound-value, so empty external fields are not imported.
// Writes convert []any and map[string]any values to the field's type.
func Field(goName string) Accessor {
	return fieldAccessor(goName)
}

type fieldAccessor string

func (a fieldAccessor) Get(inst any) (any, bool, error) {
	f, err := a.field(inst, false)
	if err != nil {
		return nil, false, err
	}

	if f.IsZero() {
		return nil, false, nil
	}

	return f.Interface(), true, nil
}

func (a fieldAccessor) Set(inst, value any) error {
	f, err := a.field(inst, true)
	if err != nil {
		return err
	}

	v, err := coerce(value, f.Type())
	if err != nil {
		return fmt.Errorf("field %s: %w", string(a), err)
	}

	f.Set(v)

	return nil
}

func (a fieldAccessor) field(inst any, settable bool) (reflect.Value, error) {
	rv := reflect.ValueOf(inst)
	if settable && rv.Kind() != reflect.Pointer {
		return reflect.Value{}, fmt.Errorf("%w: field %s needs a pointer, got %T", ErrUnboundField, string(a), inst)
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: field %s on nil %T", ErrUnboundField, string(a), inst)
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: field %s on non-struct %T", ErrUnboundField, string(a), inst)
	}

	f := rv.FieldByName(string(a))
	if !f.IsValid() || (settable && !f.CanSet()) {
		return reflect.Value{}, fmt.Errorf("%w: no exported field %s in %T", ErrUnboundField, string(a), inst)
	}

	return f, nil
}
