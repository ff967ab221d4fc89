package project

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"yproj/internal/common"
	"yproj/internal/history"
	"yproj/internal/interop"
	"yproj/internal/record"
)

// ErrAmbiguous is returned by single-value accessors of fields that hold
// more than one value.
var ErrAmbiguous = errors.New("ambiguous value")

// Project is a loaded or programmatically built project file.
// A Project is not safe for concurrent use.
type Project struct {
	schema  *Schema
	fields  *record.Record
	extras  *record.Record
	history *history.History
	path    string
}

// New returns an empty project of the default schema.
func New() *Project {
	return NewWithSchema(nil)
}

// NewWithSchema returns an empty project of schema s. A nil schema means
// the default one.
func NewWithSchema(s *Schema) *Project {
	if s == nil {
		s = DefaultSchema()
	}

	return &Project{
		schema:  s,
		fields:  record.New(),
		extras:  record.New(),
		history: history.New(),
	}
}

// Record exposes the field slots to the schema broker.
func (p *Project) Record() *record.Record {
	return p.fields
}

// Schema returns the project schema.
func (p *Project) Schema() *Schema {
	return p.schema
}

// History returns the log of the last load.
func (p *Project) History() *history.History {
	return p.history
}

// Path returns the file the project was loaded from, or "".
func (p *Project) Path() string {
	return p.path
}

// SetPath changes the file Save writes to.
func (p *Project) SetPath(path string) {
	p.path = path
}

// EncodeTag returns the tag that marks a document as this project type.
func (p *Project) EncodeTag() string {
	return p.schema.Tag()
}

// Defined reports whether the field has a value.
func (p *Project) Defined(name string) bool {
	return p.fields.Defined(name)
}

// Get returns the value of a schema field. ok is false for unset fields.
func (p *Project) Get(name string) (any, bool, error) {
	bridge, err := p.bridge(name)
	if err != nil {
		return nil, false, err
	}

	return bridge.Value(p)
}

// Set replaces the value of a schema field and marks it edited.
func (p *Project) Set(name string, value any) error {
	desc, ok := p.schema.Lookup(name)
	if !ok {
		return &interop.FieldError{Field: name, Context: p.schema.Name(), Err: interop.ErrUnknownField}
	}

	if value != nil && interop.KindOf(value) != desc.Kind {
		return &interop.FieldError{
			Field:   name,
			Context: p.schema.Name(),
			Err:     fmt.Errorf("%w: want %s, got %T", interop.ErrKindMismatch, desc.Kind, value),
		}
	}

	p.fields.Set(name, value)

	return nil
}

// Unset removes the value of a field.
func (p *Project) Unset(name string) {
	p.fields.Unset(name)
}

// Origin returns the provenance of a field value.
func (p *Project) Origin(name string) (history.Provenance, bool) {
	return p.fields.Origin(name)
}

// Extra returns a captured extra value.
func (p *Project) Extra(name string) (any, bool) {
	return p.extras.Get(name)
}

// SetExtra stores an extra value and marks it edited.
func (p *Project) SetExtra(name string, value any) {
	p.extras.Set(name, value)
}

// DeleteExtra drops an extra value.
func (p *Project) DeleteExtra(name string) {
	p.extras.Unset(name)
}

// ExtraNames returns the extra keys in first-seen order.
func (p *Project) ExtraNames() []string {
	return p.extras.Names()
}

// ExtraOrigin returns the provenance of an extra value.
func (p *Project) ExtraOrigin(name string) (history.Provenance, bool) {
	return p.extras.Origin(name)
}

// Name returns the project name.
func (p *Project) Name() string { return p.str(FieldName) }

// SetName sets the project name.
func (p *Project) SetName(v string) { p.fields.Set(FieldName, v) }

// Version returns the project version.
func (p *Project) Version() string { return p.str(FieldVersion) }

// SetVersion sets the project version.
func (p *Project) SetVersion(v string) { p.fields.Set(FieldVersion, v) }

// Homepage returns the homepage URL.
func (p *Project) Homepage() string { return p.str(FieldHomepage) }

// SetHomepage sets the homepage URL.
func (p *Project) SetHomepage(v string) { p.fields.Set(FieldHomepage, v) }

// Summary returns the one-line summary.
func (p *Project) Summary() string { return p.str(FieldSummary) }

// SetSummary sets the one-line summary.
func (p *Project) SetSummary(v string) { p.fields.Set(FieldSummary, v) }

// Description returns the long description.
func (p *Project) Description() string { return p.str(FieldDescription) }

// SetDescription sets the long description.
func (p *Project) SetDescription(v string) { p.fields.Set(FieldDescription, v) }

// License returns the license identifier.
func (p *Project) License() string { return p.str(FieldLicense) }

// SetLicense sets the license identifier.
func (p *Project) SetLicense(v string) { p.fields.Set(FieldLicense, v) }

// Authors returns the author list.
func (p *Project) Authors() []string {
	return p.strs(FieldAuthors)
}

// Author returns the only author. It fails with ErrAmbiguous when there
// are several and returns "" when there are none.
func (p *Project) Author() (string, error) {
	authors := p.Authors()
	if common.IsMultiple(authors) {
		return "", fmt.Errorf("%w: %d authors", ErrAmbiguous, len(authors))
	}

	a, _ := common.First(authors)

	return a, nil
}

// SetAuthor replaces the author list with a single author.
func (p *Project) SetAuthor(a string) {
	p.setStrs(FieldAuthors, []string{a})
}

// AddAuthor appends authors that are not yet listed.
func (p *Project) AddAuthor(authors ...string) {
	p.setStrs(FieldAuthors, common.AppendUnique(p.Authors(), authors...))
}

// RemoveAuthor removes an author and reports whether it was listed.
func (p *Project) RemoveAuthor(a string) bool {
	authors, ok := common.Remove(p.Authors(), a)
	if ok {
		p.setStrs(FieldAuthors, authors)
	}

	return ok
}

// RequirePaths returns the load paths.
func (p *Project) RequirePaths() []string { return p.strs(FieldRequirePaths) }

// SetRequirePaths replaces the load paths.
func (p *Project) SetRequirePaths(paths ...string) { p.setStrs(FieldRequirePaths, paths) }

// LibFiles returns the library files.
func (p *Project) LibFiles() []string { return p.strs(FieldLibFiles) }

// AddLibFile appends library files that are not yet listed.
func (p *Project) AddLibFile(files ...string) {
	p.setStrs(FieldLibFiles, common.AppendUnique(p.LibFiles(), files...))
}

// TestFiles returns the test files.
func (p *Project) TestFiles() []string { return p.strs(FieldTestFiles) }

// AddTestFile appends test files that are not yet listed.
func (p *Project) AddTestFile(files ...string) {
	p.setStrs(FieldTestFiles, common.AppendUnique(p.TestFiles(), files...))
}

// DocFiles returns the documentation files.
func (p *Project) DocFiles() []string { return p.strs(FieldDocFiles) }

// AddDocFile appends documentation files that are not yet listed.
func (p *Project) AddDocFile(files ...string) {
	p.setStrs(FieldDocFiles, common.AppendUnique(p.DocFiles(), files...))
}

// Files returns library, test and doc files together, without duplicates.
func (p *Project) Files() []string {
	return common.AppendUnique(common.AppendUnique(p.LibFiles(), p.TestFiles()...), p.DocFiles()...)
}

// Metadata returns a copy of the metadata mapping.
func (p *Project) Metadata() map[string]any { return p.mapping(FieldMetadata) }

// SetMetadata sets one metadata key.
func (p *Project) SetMetadata(key string, value any) { p.setKey(FieldMetadata, key, value) }

// Dependencies returns runtime dependencies as name → requirement.
func (p *Project) Dependencies() map[string]any { return p.mapping(FieldDependencies) }

// AddDependency adds or replaces a runtime dependency.
func (p *Project) AddDependency(name, requirement string) {
	p.setKey(FieldDependencies, name, requirement)
}

// DevDependencies returns development dependencies.
func (p *Project) DevDependencies() map[string]any { return p.mapping(FieldDevDependencies) }

// AddDevDependency adds or replaces a development dependency.
func (p *Project) AddDevDependency(name, requirement string) {
	p.setKey(FieldDevDependencies, name, requirement)
}

func (p *Project) bridge(name string) (*interop.Bridge, error) {
	b, err := p.schema.Broker()
	if err != nil {
		return nil, err
	}

	return b.Find(name, nil)
}

func (p *Project) str(name string) string {
	v, ok := p.fields.Get(name)
	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

func (p *Project) strs(name string) []string {
	v, _ := p.fields.Get(name)

	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return slices.Clone(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(e))
			}
		}

		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

func (p *Project) setStrs(name string, values []string) {
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = v
	}

	p.fields.Set(name, items)
}

func (p *Project) mapping(name string) map[string]any {
	v, _ := p.fields.Get(name)
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m)
	}

	return map[string]any{}
}

func (p *Project) setKey(name, key string, value any) {
	m := p.mapping(name)
	m[key] = value
	p.fields.Set(name, m)
}
