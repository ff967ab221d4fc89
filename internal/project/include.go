package project

import (
	"errors"
	"fmt"

	"yproj/internal/sbuilder"
)

const (
	// IncludeKey is the key of an include directive.
	IncludeKey = "include"
	// ExtraDataKey holds a mapping of extra values.
	ExtraDataKey = "extra_data"
	// ExtKeyTag marks a key handled by the loader rather than the schema.
	ExtKeyTag = "!ext"
	// FileTag marks an include target as a file path.
	FileTag = "!file"
)

var (
	// ErrUnresolvedInclude is returned when an include target cannot be read.
	ErrUnresolvedInclude = errors.New("unresolved include")
	// ErrIncludeCycle is returned when a file includes itself, directly or not.
	ErrIncludeCycle = errors.New("include cycle")
	// ErrIncludeDepth is returned when includes nest too deeply.
	ErrIncludeDepth = errors.New("include nesting too deep")
	// ErrUnexpectedRoot is returned for documents that are not a project mapping.
	ErrUnexpectedRoot = errors.New("unexpected document root")
)

// IncludeError reports a failed include directive.
type IncludeError struct {
	// Target is the path as written in the document.
	Target string
	// Resolved is the absolute path the target resolved to.
	Resolved string
	// Source is the including file.
	Source string
	Err    error
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("include %q from %s (resolved to %s): %v", e.Target, e.Source, e.Resolved, e.Err)
}

func (e *IncludeError) Unwrap() error {
	return e.Err
}

// isInclude reports whether p is an include directive and whether it was
// written in the tagged "!ext include: !file path" form.
func isInclude(p sbuilder.Pair) (include, tagged bool) {
	if p.Key != IncludeKey {
		return false, false
	}

	switch p.KeyTag {
	case "":
		return true, p.ValueTag == FileTag
	case ExtKeyTag:
		return true, true
	default:
		return false, false
	}
}

// includeTargets accepts a single path or a list of paths.
func includeTargets(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, nil
		}

		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))

		for _, e := range t {
			s, ok := e.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("include list entries must be paths, got %v", e)
			}

			out = append(out, s)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("include expects a path or a list of paths, got %T", v)
	}
}
