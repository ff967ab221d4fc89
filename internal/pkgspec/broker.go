package pkgspec

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"yproj/internal/common"
	"yproj/internal/interop"
	"yproj/internal/project"
)

// specFunc is an external accessor on *Spec. A getter returning nil
// reports no value, so empty spec fields are not imported.
type specFunc struct {
	get func(s *Spec) any
	set func(s *Spec, v any) error
}

func (a specFunc) Get(inst any) (any, bool, error) {
	s, err := asSpec(inst)
	if err != nil {
		return nil, false, err
	}

	if a.get == nil {
		return nil, false, nil
	}

	v := a.get(s)

	return v, v != nil, nil
}

func (a specFunc) Set(inst, v any) error {
	s, err := asSpec(inst)
	if err != nil {
		return err
	}

	if a.set == nil {
		return fmt.Errorf("%w: read-only spec field", interop.ErrUnboundField)
	}

	return a.set(s, v)
}

func asSpec(inst any) (*Spec, error) {
	s, ok := inst.(*Spec)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: want *pkgspec.Spec, got %T", interop.ErrUnboundField, inst)
	}

	return s, nil
}

var files = specFunc{
	get: func(s *Spec) any {
		if len(s.Files) == 0 {
			return nil
		}

		return s.Files
	},
	set: func(s *Spec, v any) error {
		s.Files = stringsOf(v)
		return nil
	},
}

func dependencies(development bool) specFunc {
	return specFunc{
		get: func(s *Spec) any {
			deps := s.deps(development)
			if len(deps) == 0 {
				return nil
			}

			m := make(map[string]any, len(deps))
			for _, d := range deps {
				m[d.Name] = d.Requirement
			}

			return m
		},
		set: func(s *Spec, v any) error {
			m, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("dependencies must be a mapping, got %T", v)
			}

			names := make([]string, 0, len(m))
			for name := range m {
				names = append(names, name)
			}

			sort.Strings(names)

			for _, name := range names {
				s.AddDependency(name, requirement(m[name]), development)
			}

			return nil
		},
	}
}

var license = specFunc{
	get: func(s *Spec) any {
		if l, ok := common.First(s.Licenses); ok {
			return l
		}

		return nil
	},
	set: func(s *Spec, v any) error {
		if v != nil {
			s.Licenses = common.AppendUnique(s.Licenses, fmt.Sprint(v))
		}

		return nil
	},
}

// exportOnly names the fields Apply does not import: Files is applied to
// lib_files alone.
var exportOnly = []string{project.FieldTestFiles, project.FieldDocFiles}

var specBroker = sync.OnceValues(func() (*interop.Broker, error) {
	b := interop.NewBroker(project.DefaultSchemaName, interop.WithDuplicatePolicy(interop.DuplicateReject))

	external := map[string]interop.Accessor{
		project.FieldName:            interop.Field("Name"),
		project.FieldVersion:         interop.Field("Version"),
		project.FieldSummary:         interop.Field("Summary"),
		project.FieldDescription:     interop.Field("Description"),
		project.FieldHomepage:        interop.Field("Homepage"),
		project.FieldLicense:         license,
		project.FieldAuthors:         interop.Field("Authors"),
		project.FieldRequirePaths:    interop.Field("RequirePaths"),
		project.FieldLibFiles:        files,
		project.FieldTestFiles:       files,
		project.FieldDocFiles:        files,
		project.FieldMetadata:        interop.Field("Metadata"),
		project.FieldDependencies:    dependencies(false),
		project.FieldDevDependencies: dependencies(true),
	}

	for _, d := range project.DefaultFields() {
		acc, ok := external[d.Name]
		if !ok {
			continue
		}

		if _, err := b.Register(d, interop.Slot(d.Name), acc); err != nil {
			return nil, err
		}
	}

	return b, nil
})

// Broker returns the project to spec field broker.
func Broker() (*interop.Broker, error) {
	return specBroker()
}

// FromProject builds a spec from the project scope of p: its fields, the
// depends lists and the URI keys. The gems mapping is ignored; see ForGem.
func FromProject(p *project.Project) (*Spec, error) {
	s, err := exportFields(p)
	if err != nil {
		return nil, err
	}

	finish(s, scope{p: p})

	return s, nil
}

func exportFields(p *project.Project) (*Spec, error) {
	b, err := Broker()
	if err != nil {
		return nil, err
	}

	s := &Spec{}
	if _, err := b.ExportMapped(p, s); err != nil {
		return nil, fmt.Errorf("build spec for %s: %w", p.Name(), err)
	}

	return s, nil
}

// Apply imports the fields of s into p. Collections accumulate onto the
// values already in p; set fields are marked edited.
func Apply(s *Spec, p *project.Project) error {
	b, err := Broker()
	if err != nil {
		return err
	}

	for _, name := range b.Names() {
		if slices.Contains(exportOnly, name) {
			continue
		}

		if err := b.Import(name, s, p); err != nil {
			return fmt.Errorf("apply spec %s: %w", s.Name, err)
		}
	}

	return nil
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = fmt.Sprint(e)
		}

		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
