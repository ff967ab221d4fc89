package pkgspec

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"yproj/internal/common"
	"yproj/internal/project"
)

// Keys read from a project besides its schema fields. They are usually
// extras; a custom schema may define them as fields.
const (
	GemsKey          = "gems"
	DependsKey       = "depends"
	BuildDependsKey  = "build_depends"
	DevoDependsKey   = "devo_depends"
	HomepageURIKey   = "homepage_uri"
	SourceCodeURIKey = "source_code_uri"
	ChangelogURIKey  = "changelog_uri"
)

// ErrUnknownGem is returned by ForGem for a name missing from the gems
// mapping.
var ErrUnknownGem = errors.New("unknown gem")

// dependsKeys are read in this order; the first declaration of a name wins.
var dependsKeys = []string{BuildDependsKey, DependsKey, DevoDependsKey}

// scope resolves a key in gem scope first, then in project scope.
type scope struct {
	gem map[string]any
	p   *project.Project
}

func (sc scope) lookup(key string) (any, bool) {
	if v, ok := sc.gem[key]; ok {
		return v, true
	}

	return projectValue(sc.p, key)
}

func (sc scope) str(key string) string {
	v, ok := sc.lookup(key)
	if !ok || v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

func projectValue(p *project.Project, key string) (any, bool) {
	if p.Schema().Has(key) {
		v, ok, err := p.Get(key)
		if err != nil {
			return nil, false
		}

		return v, ok
	}

	return p.Extra(key)
}

// Gems returns the names under the gems mapping of p, sorted.
func Gems(p *project.Project) []string {
	m, _ := gemTable(p)

	return slices.Sorted(maps.Keys(m))
}

func gemTable(p *project.Project) (map[string]any, bool) {
	v, ok := projectValue(p, GemsKey)
	if !ok {
		return nil, false
	}

	m, ok := v.(map[string]any)

	return m, ok
}

// ForGem builds the spec of one gem of p. A field set under gems.<gem>
// overrides the project field of the same name; file lists and
// dependencies are the union of both scopes.
func ForGem(p *project.Project, gem string) (*Spec, error) {
	table, _ := gemTable(p)

	data, ok := table[gem]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGem, gem)
	}

	gemData, _ := data.(map[string]any)

	s, err := exportFields(p)
	if err != nil {
		return nil, err
	}

	s.Name = gem
	overlay(s, gemData)
	finish(s, scope{gem: gemData, p: p})

	return s, nil
}

// Specs builds a spec for every gem of p. A project without a gems
// mapping yields a single spec under the project name.
func Specs(p *project.Project) (map[string]*Spec, error) {
	names := Gems(p)
	if common.IsEmpty(names) {
		s, err := FromProject(p)
		if err != nil {
			return nil, err
		}

		return map[string]*Spec{s.Name: s}, nil
	}

	out := make(map[string]*Spec, len(names))

	for _, name := range names {
		s, err := ForGem(p, name)
		if err != nil {
			return nil, err
		}

		out[name] = s
	}

	return out, nil
}

func overlay(s *Spec, gem map[string]any) {
	scalars := map[string]*string{
		project.FieldVersion:     &s.Version,
		project.FieldSummary:     &s.Summary,
		project.FieldDescription: &s.Description,
		project.FieldHomepage:    &s.Homepage,
	}

	for key, dst := range scalars {
		if v, ok := gem[key]; ok && v != nil {
			*dst = fmt.Sprint(v)
		}
	}

	if v, ok := gem[project.FieldLicense]; ok && v != nil {
		s.Licenses = []string{fmt.Sprint(v)}
	}

	if v, ok := gem[project.FieldAuthors]; ok {
		s.Authors = stringsOf(v)
	}

	if v, ok := gem[project.FieldRequirePaths]; ok {
		s.RequirePaths = stringsOf(v)
	}

	for _, key := range []string{project.FieldLibFiles, project.FieldTestFiles, project.FieldDocFiles} {
		s.Files = common.AppendUnique(s.Files, stringsOf(gem[key])...)
	}

	if m, ok := gem[project.FieldMetadata].(map[string]any); ok {
		for k, v := range m {
			setMetadata(s, k, fmt.Sprint(v))
		}
	}

	for key, dev := range map[string]bool{project.FieldDependencies: false, project.FieldDevDependencies: true} {
		if m, ok := gem[key].(map[string]any); ok {
			for _, name := range slices.Sorted(maps.Keys(m)) {
				s.AddDependency(name, requirement(m[name]), dev)
			}
		}
	}
}

// finish applies the depends lists and the homepage, source and changelog
// URIs. Each URI falls back to the previous one.
func finish(s *Spec, sc scope) {
	applyDepends(s, sc)

	homepage := s.Homepage
	if homepage == "" {
		if uri := sc.str(HomepageURIKey); uri != "" {
			s.Homepage = uri
			homepage = uri
		}
	}

	if homepage != "" {
		setMetadata(s, HomepageURIKey, homepage)
	}

	source := sc.str(SourceCodeURIKey)
	if source == "" {
		source = homepage
	}

	if source != "" {
		setMetadata(s, SourceCodeURIKey, source)
	}

	changes := sc.str(ChangelogURIKey)
	if changes == "" {
		changes = source
	}

	if changes != "" {
		setMetadata(s, ChangelogURIKey, changes)
	}
}

// applyDepends reads the depends, build_depends and devo_depends lists.
// An entry is a name or a list of a name and version bounds. Gem scope is
// read before project scope. Build dependencies are runtime dependencies
// and are also listed under the build_depends metadata key.
func applyDepends(s *Spec, sc scope) {
	seen := make(map[string]bool)

	var build []string

	for _, key := range dependsKeys {
		var entries []any
		entries = append(entries, listOf(sc.gem[key])...)

		if v, ok := projectValue(sc.p, key); ok {
			entries = append(entries, listOf(v)...)
		}

		for _, entry := range entries {
			name, req := dependsEntry(entry)
			if name == "" || seen[name] {
				continue
			}

			seen[name] = true
			s.AddDependency(name, req, key == DevoDependsKey)

			if key == BuildDependsKey {
				build = append(build, name+" ("+requirement(req)+")")
			}
		}
	}

	if len(build) > 0 {
		setMetadata(s, BuildDependsKey, strings.Join(build, ", "))
	}
}

func dependsEntry(v any) (name, req string) {
	switch t := v.(type) {
	case nil:
		return "", ""
	case []any:
		if len(t) == 0 {
			return "", ""
		}

		if len(t) == 1 {
			return fmt.Sprint(t[0]), ""
		}

		return fmt.Sprint(t[0]), requirement(t[1:])
	default:
		return fmt.Sprint(t), ""
	}
}

func listOf(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func setMetadata(s *Spec, key, value string) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]string)
	}

	s.Metadata[key] = value
}
