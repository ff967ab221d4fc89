package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"yproj/internal/common"
)

// Diagnostic codes.
const (
	CodeMissingField = "missing_field"
	CodeKindMismatch = "kind_mismatch"
	CodeUnknownField = "unknown_field"
	CodeInclude      = "include"
)

// Diagnostics holds all findings of one check.
type Diagnostics struct {
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
	Infos    []Diagnostic `json:"infos"`
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	// Code identifies the kind of finding.
	Code    string `json:"code"`
	Message string `json:"message"`
	// Source is the file the finding relates to (if any).
	Source string `json:"source,omitempty"`
	// Field is the key the finding relates to (if any).
	Field string `json:"field,omitempty"`
	// Suggestions are likely intended names or fixes.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Severity of a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AddError records an error.
func (d *Diagnostics) AddError(code, message, source, field string, suggestions ...string) {
	d.Errors = append(d.Errors, newDiagnostic(SeverityError, code, message, source, field, suggestions))
}

// AddWarning records a warning.
func (d *Diagnostics) AddWarning(code, message, source, field string, suggestions ...string) {
	d.Warnings = append(d.Warnings, newDiagnostic(SeverityWarning, code, message, source, field, suggestions))
}

// AddInfo records an informational finding.
func (d *Diagnostics) AddInfo(code, message, source, field string) {
	d.Infos = append(d.Infos, newDiagnostic(SeverityInfo, code, message, source, field, nil))
}

func newDiagnostic(sev Severity, code, message, source, field string, suggestions []string) Diagnostic {
	return Diagnostic{
		Severity:    sev,
		Code:        code,
		Message:     message,
		Source:      source,
		Field:       field,
		Suggestions: suggestions,
	}
}

// HasErrors returns true if there are any errors.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// Len returns the number of findings of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All returns every finding, errors first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, d.Len())
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Infos...)
}

// ByCode returns the findings with the given code, errors first.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, diag := range d.All() {
		if diag.Code == code {
			out = append(out, diag)
		}
	}

	return out
}

// Merge appends the findings of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Error returns all errors joined into one, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		parts[i] = e.String()
	}

	return errors.New(strings.Join(parts, "; "))
}

// String formats the finding as "source field: [code] message (did you
// mean a, b?)".
func (d Diagnostic) String() string {
	var prefix []string
	if d.Source != "" {
		prefix = append(prefix, d.Source)
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(d.Suggestions, ", "))
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
