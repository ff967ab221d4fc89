package pkgspec

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DefaultRequirement is used for dependencies declared without a version
// constraint.
const DefaultRequirement = ">= 0"

// Spec is a package specification.
type Spec struct {
	Name         string            `json:"name" yaml:"name"`
	Version      string            `json:"version" yaml:"version"`
	Summary      string            `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Homepage     string            `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Licenses     []string          `json:"licenses,omitempty" yaml:"licenses,omitempty"`
	Authors      []string          `json:"authors,omitempty" yaml:"authors,omitempty"`
	Files        []string          `json:"files,omitempty" yaml:"files,omitempty"`
	RequirePaths []string          `json:"require_paths,omitempty" yaml:"require_paths,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Dependencies []Dependency      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Dependency is one runtime or development dependency.
type Dependency struct {
	Name        string `json:"name" yaml:"name"`
	Requirement string `json:"requirement" yaml:"requirement"`
	Development bool   `json:"development,omitempty" yaml:"development,omitempty"`
}

func (d Dependency) String() string {
	kind := "runtime"
	if d.Development {
		kind = "development"
	}

	return fmt.Sprintf("%s (%s, %s)", d.Name, d.Requirement, kind)
}

// Validate reports missing required fields.
func (s *Spec) Validate() error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, errors.New("spec has no name"))
	}

	if s.Version == "" {
		errs = append(errs, errors.New("spec has no version"))
	}

	return errors.Join(errs...)
}

// RuntimeDependencies returns the dependencies without the development flag.
func (s *Spec) RuntimeDependencies() []Dependency {
	return s.deps(false)
}

// DevelopmentDependencies returns the development dependencies.
func (s *Spec) DevelopmentDependencies() []Dependency {
	return s.deps(true)
}

// AddDependency adds or replaces a dependency of the given flavour.
func (s *Spec) AddDependency(name, requirement string, development bool) {
	if requirement == "" {
		requirement = DefaultRequirement
	}

	s.Dependencies = slices.DeleteFunc(s.Dependencies, func(d Dependency) bool {
		return d.Name == name && d.Development == development
	})
	s.Dependencies = append(s.Dependencies, Dependency{Name: name, Requirement: requirement, Development: development})
}

func (s *Spec) deps(development bool) []Dependency {
	var out []Dependency

	for _, d := range s.Dependencies {
		if d.Development == development {
			out = append(out, d)
		}
	}

	return out
}

// requirement renders a dependency value from a project mapping: a single
// constraint, a list of constraints, or nothing.
func requirement(v any) string {
	switch t := v.(type) {
	case nil:
		return DefaultRequirement
	case string:
		if t == "" {
			return DefaultRequirement
		}

		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fmt.Sprint(e))
		}

		if len(parts) == 0 {
			return DefaultRequirement
		}

		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
