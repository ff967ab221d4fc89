package sbuilder

import (
	"fmt"

	"yproj/internal/common"
)

// EventKind identifies a parse event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStartMapping
	EventEndMapping
	EventStartSequence
	EventEndSequence
	EventScalar

	// EventTotal is the number of event kinds defined.
	EventTotal = int(iota)
)

// String returns the snake_case event name.
func (k EventKind) String() string {
	switch k {
	case EventStartMapping:
		return "start_mapping"
	case EventEndMapping:
		return "end_mapping"
	case EventStartSequence:
		return "start_sequence"
	case EventEndSequence:
		return "end_sequence"
	case EventScalar:
		return "scalar"
	default:
		return common.UnknownStr
	}
}

// Event is one structural parse event.
type Event struct {
	Kind EventKind
	// Tag is the node tag, e.g. "!record:Foo", "!!str" or "!file".
	Tag string
	// Anchor is the node anchor, if any.
	Anchor string
	// Value is the scalar text.
	Value string
	// Line and Column locate the node in the source, 1-based; 0 if unknown.
	Line   int
	Column int
}

// String returns a compact description used in error messages.
func (e Event) String() string {
	var s string

	switch e.Kind {
	case EventScalar:
		s = fmt.Sprintf("scalar(%q)", e.Value)
	case EventStartMapping, EventStartSequence:
		if e.Tag != "" {
			s = fmt.Sprintf("%s(tag=%q)", e.Kind, e.Tag)
		} else {
			s = e.Kind.String()
		}
	default:
		s = e.Kind.String()
	}

	if e.Line > 0 {
		s += fmt.Sprintf(" at line %d, column %d", e.Line, e.Column)
	}

	return s
}

// StartMapping returns a start_mapping event.
func StartMapping(tag string) Event {
	return Event{Kind: EventStartMapping, Tag: tag}
}

// EndMapping returns an end_mapping event.
func EndMapping() Event {
	return Event{Kind: EventEndMapping}
}

// StartSequence returns a start_sequence event.
func StartSequence(tag string) Event {
	return Event{Kind: EventStartSequence, Tag: tag}
}

// EndSequence returns an end_sequence event.
func EndSequence() Event {
	return Event{Kind: EventEndSequence}
}

// Scalar returns a plain string scalar event.
func Scalar(value string) Event {
	return Event{Kind: EventScalar, Value: value}
}

// TaggedScalar returns a scalar event with an explicit tag.
func TaggedScalar(value, tag string) Event {
	return Event{Kind: EventScalar, Value: value, Tag: tag}
}

// Handler consumes parse events.
type Handler interface {
	Handle(ev Event) error
}
