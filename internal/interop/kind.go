package interop

import (
	"fmt"
	"reflect"
	"strings"

	"yproj/internal/common"
)

// Kind is the shape of a field value.
type Kind int

const (
	_ Kind = iota // zero value is invalid

	KindScalar
	KindSequence
	KindMapping

	// KindTotal is the number of kinds defined.
	KindTotal = int(iota)
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return common.UnknownStr
	}
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

// IsCollection reports whether values of kind k accumulate on import.
func (k Kind) IsCollection() bool {
	return k == KindSequence || k == KindMapping
}

// ParseKind parses a kind name. Short forms "seq" and "map" are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar":
		return KindScalar, nil
	case "sequence", "seq":
		return KindSequence, nil
	case "mapping", "map":
		return KindMapping, nil
	default:
		return 0, fmt.Errorf("unknown field kind %q", s)
	}
}

// KindOf returns the kind matching the dynamic shape of v.
// nil is a scalar.
func KindOf(v any) Kind {
	if v == nil {
		return KindScalar
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		if _, ok := v.([]byte); ok {
			return KindScalar
		}

		return KindSequence
	case reflect.Map:
		return KindMapping
	default:
		return KindScalar
	}
}
