package interop

import (
	"errors"
	"fmt"
)

var (
	// ErrUnboundField is returned when an accessor cannot read or write a
	// field on an instance.
	ErrUnboundField = errors.New("unbound field")
	// ErrUnknownField is returned when no bridge is registered for a name.
	ErrUnknownField = errors.New("unknown field mapping")
	// ErrDuplicateField is returned by a rejecting broker on re-registration.
	ErrDuplicateField = errors.New("duplicate field registration")
	// ErrKindMismatch is returned by a validating broker when a value does
	// not have the declared kind.
	ErrKindMismatch = errors.New("field kind mismatch")
	// ErrOwnerMismatch is returned when a descriptor is registered on a
	// broker for another owner type.
	ErrOwnerMismatch = errors.New("descriptor owner mismatch")
)

// FieldError reports a failure for one field.
type FieldError struct {
	// Field is the field name involved.
	Field string
	// Context names the broker or instance involved.
	Context string
	// Err is one of the package sentinels.
	Err error
}

func (e *FieldError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Field)
	}

	return fmt.Sprintf("%v: %s in %s", e.Err, e.Field, e.Context)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(err error, field string, context any) *FieldError {
	var ctx string

	switch c := context.(type) {
	case nil:
	case string:
		ctx = c
	case fmt.Stringer:
		ctx = c.String()
	default:
		ctx = fmt.Sprintf("%T", c)
	}

	return &FieldError{Field: field, Context: ctx, Err: err}
}
