package sbuilder

import (
	"math"
	"strconv"
	"strings"
)

// Pair is one key/value entry of a Map.
type Pair struct {
	Key string
	// KeyTag is the explicit tag of the key scalar, e.g. "!ext".
	KeyTag string
	Value  any
	// ValueTag is the tag of the value node.
	ValueTag string
}

// Map is a mapping that keeps its keys in document order. Repeated keys
// are all kept; Get returns the last one.
type Map struct {
	// Tag is the mapping tag, if any.
	Tag   string
	pairs []Pair
}

// NewMap returns an empty map with the given tag.
func NewMap(tag string) *Map {
	return &Map{Tag: tag}
}

// Append adds a pair.
func (m *Map) Append(p Pair) {
	m.pairs = append(m.pairs, p)
}

// Set appends key with value and no tags.
func (m *Map) Set(key string, value any) {
	m.Append(Pair{Key: key, Value: value})
}

// Get returns the last value stored under key.
func (m *Map) Get(key string) (any, bool) {
	for i := len(m.pairs) - 1; i >= 0; i-- {
		if m.pairs[i].Key == key {
			return m.pairs[i].Value, true
		}
	}

	return nil, false
}

// Pairs returns the entries in document order.
func (m *Map) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)

	return out
}

// Keys returns the keys in document order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.pairs))
	for i, p := range m.pairs {
		out[i] = p.Key
	}

	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.pairs)
}

// Instance is one record value: its type descriptor and field values.
type Instance struct {
	Desc   *StructDesc
	Fields *Map
}

// Plain converts a builder value into plain Go values: *Map and *Instance
// become map[string]any, sequences become []any with converted elements.
func Plain(v any) any {
	switch t := v.(type) {
	case *Map:
		out := make(map[string]any, t.Len())
		for _, p := range t.pairs {
			out[p.Key] = Plain(p.Value)
		}

		return out
	case *Instance:
		return Plain(t.Fields)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}

		return out
	default:
		return v
	}
}

// resolveScalar converts scalar text to a Go value according to its core
// schema tag. Unknown and custom tags keep the text.
func resolveScalar(value, tag string) any {
	switch tag {
	case "!!null":
		return nil
	case "!!bool":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(value, 0, 64); err == nil {
			if i >= math.MinInt && i <= math.MaxInt {
				return int(i)
			}

			return i
		}

		if u, err := strconv.ParseUint(value, 0, 64); err == nil {
			return u
		}
	case "!!float":
		switch strings.ToLower(value) {
		case ".inf", "+.inf":
			return math.Inf(1)
		case "-.inf":
			return math.Inf(-1)
		case ".nan":
			return math.NaN()
		}

		if f, err := strconv.ParseFloat(strings.ReplaceAll(value, "_", ""), 64); err == nil {
			return f
		}
	}

	return value
}
