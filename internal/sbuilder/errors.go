package sbuilder

import (
	"errors"
	"fmt"
)

var (
	// ErrStructure is wrapped by every ParseError.
	ErrStructure = errors.New("structural parse error")
	// ErrFinalized is returned when a field is added to a finalized record type.
	ErrFinalized = errors.New("record type is finalized")
)

// ParseError reports an event that does not fit the builder's frame stack.
// The partial result of the parse must be discarded.
type ParseError struct {
	// Event is the offending event; its Kind is EventUnknown for
	// end-of-stream errors.
	Event Event
	// Depth is the number of open frames when the error was detected.
	Depth int
	// Msg describes the problem.
	Msg string
	// Err is an optional underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	where := "end of stream"
	if e.Event.Kind != EventUnknown {
		where = "unexpected " + e.Event.String()
	}

	msg := fmt.Sprintf("%v: %s (depth %d): %s", ErrStructure, where, e.Depth, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns both ErrStructure and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrStructure, e.Err}
	}

	return []error{ErrStructure}
}
