package project

import (
	"fmt"

	"yproj/internal/diagnostic"
	"yproj/internal/history"
	"yproj/internal/interop"
	"yproj/internal/match"
)

// RequiredFields must be set for a project to be valid.
var RequiredFields = []string{FieldName, FieldVersion}

// maxSuggestions bounds the "did you mean" list of unknown keys.
const maxSuggestions = 3

// Validate checks p against its schema. Missing required fields and values
// of the wrong kind are errors; extras are warnings with suggestions of
// similar field names; include directives are reported as infos.
func Validate(p *Project) *diagnostic.Diagnostics {
	d := &diagnostic.Diagnostics{}
	top := p.history.Top()

	for _, name := range RequiredFields {
		if !p.schema.Has(name) {
			continue
		}

		if v, ok := p.fields.Get(name); !ok || v == nil || v == "" {
			d.AddError(diagnostic.CodeMissingField, name+" is not set", top, name)
		}
	}

	for _, desc := range p.schema.Fields() {
		v, ok := p.fields.Get(desc.Name)
		if !ok || v == nil {
			continue
		}

		if got := interop.KindOf(v); got != desc.Kind {
			d.AddError(diagnostic.CodeKindMismatch,
				fmt.Sprintf("want %s, got %s (%T)", desc.Kind, got, v), sourceOf(p, desc.Name), desc.Name)
		}
	}

	fields := p.schema.Fields()

	for _, name := range p.extras.Names() {
		v, _ := p.extras.Get(name)
		origin, _ := p.extras.Origin(name)

		d.AddWarning(diagnostic.CodeUnknownField, "not a field of "+p.schema.Name(), origin.Source, name,
			match.Suggest(name, v, fields, maxSuggestions)...)
	}

	for _, e := range p.history.Entries() {
		if e.Kind == history.EntryInclude {
			d.AddInfo(diagnostic.CodeInclude, fmt.Sprintf("includes %s (depth %d)", e.Target, e.Depth+1), e.Source, IncludeKey)
		}
	}

	return d
}

func sourceOf(p *Project, field string) string {
	if origin, ok := p.fields.Origin(field); ok && origin.Source != "" {
		return origin.Source
	}

	return p.history.Top()
}
