package project

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"yproj/internal/interop"
)

// DefaultSchemaName is the type name of the default project schema.
const DefaultSchemaName = "Project"

var (
	brokers  = interop.MustRegistry(interop.DefaultRegistrySize)
	schemaID atomic.Uint64
)

// DefaultFields returns the field descriptors of the default schema.
func DefaultFields() []interop.Descriptor {
	return []interop.Descriptor{
		interop.Scalar(FieldName),
		interop.Scalar(FieldVersion),
		interop.Scalar(FieldHomepage),
		interop.Scalar(FieldSummary),
		interop.Scalar(FieldDescription),
		interop.Scalar(FieldLicense),
		interop.UniqueSequence(FieldAuthors),
		interop.UniqueSequence(FieldRequirePaths),
		interop.UniqueSequence(FieldLibFiles),
		interop.UniqueSequence(FieldTestFiles),
		interop.UniqueSequence(FieldDocFiles),
		interop.Mapping(FieldMetadata),
		interop.Mapping(FieldDependencies),
		interop.Mapping(FieldDevDependencies),
	}
}

// Field names of the default schema.
const (
	FieldName            = "name"
	FieldVersion         = "version"
	FieldHomepage        = "homepage"
	FieldSummary         = "summary"
	FieldDescription     = "description"
	FieldLicense         = "license"
	FieldAuthors         = "authors"
	FieldRequirePaths    = "require_paths"
	FieldLibFiles        = "lib_files"
	FieldTestFiles       = "test_files"
	FieldDocFiles        = "doc_files"
	FieldMetadata        = "metadata"
	FieldDependencies    = "dependencies"
	FieldDevDependencies = "dev_dependencies"
)

// Schema is the field table of a project type. It is safe for concurrent
// use; Define may be called while projects of the schema are in use.
type Schema struct {
	mu         sync.RWMutex
	id         uint64
	name       string
	tag        string
	fields     []interop.Descriptor
	generation uint64
}

// NewSchema returns a schema named name with the given fields. Fields
// without an owner are owned by the schema.
func NewSchema(name string, fields ...interop.Descriptor) (*Schema, error) {
	s := &Schema{
		id:   schemaID.Add(1),
		name: name,
		tag:  "!" + strings.ToLower(name),
	}

	for _, d := range fields {
		if err := s.put(d); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewDefaultSchema returns a fresh copy of the default schema.
func NewDefaultSchema() *Schema {
	s, err := NewSchema(DefaultSchemaName, DefaultFields()...)
	if err != nil {
		panic(err)
	}

	return s
}

var defaultSchema = NewDefaultSchema()

// DefaultSchema returns the schema shared by projects created with New.
func DefaultSchema() *Schema {
	return defaultSchema
}

// Name returns the type name.
func (s *Schema) Name() string {
	return s.name
}

// Tag returns the YAML tag that marks a document root as this type.
func (s *Schema) Tag() string {
	return s.tag
}

// Generation returns the number of changes made by Define.
func (s *Schema) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generation
}

// Fields returns the field descriptors in definition order.
func (s *Schema) Fields() []interop.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.fields)
}

// Names returns the field names in definition order.
func (s *Schema) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.fields))
	for i, d := range s.fields {
		out[i] = d.Name
	}

	return out
}

// Lookup returns the descriptor of the named field.
func (s *Schema) Lookup(name string) (interop.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(name)
	if i < 0 {
		return interop.Descriptor{}, false
	}

	return s.fields[i], true
}

// Has reports whether name is a field of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Define adds a field, or changes the kind of an existing one, and bumps
// the generation. Sequences defined this way skip duplicate elements on
// import, like the default sequence fields; pass an interop.Sequence
// descriptor to NewSchema for a sequence that keeps them.
func (s *Schema) Define(name string, kind interop.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := interop.Descriptor{Name: name, Kind: kind, Unique: kind == interop.KindSequence}
	if err := s.put(d); err != nil {
		return err
	}

	s.generation++

	return nil
}

// Ref returns the broker cache key of the current generation.
func (s *Schema) Ref() interop.TypeRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ref("")
}

// Broker returns the permissive field broker of the current generation.
func (s *Schema) Broker() (*interop.Broker, error) {
	return s.broker("")
}

// StrictBroker returns a broker that rejects values of the wrong kind.
func (s *Schema) StrictBroker() (*interop.Broker, error) {
	return s.broker("strict", interop.WithKindValidation())
}

// String implements fmt.Stringer.
func (s *Schema) String() string {
	return s.Ref().String()
}

func (s *Schema) broker(variant string, opts ...interop.Option) (*interop.Broker, error) {
	s.mu.RLock()
	ref := s.ref(variant)
	fields := slices.Clone(s.fields)
	s.mu.RUnlock()

	return brokers.Broker(ref, func() (*interop.Broker, error) {
		b := interop.NewBroker(s.name, opts...)

		for _, d := range fields {
			if _, err := b.Register(d, interop.Slot(d.Name), interop.Key(d.Name)); err != nil {
				return nil, err
			}
		}

		return b, nil
	})
}

// ref must be called with s.mu held.
func (s *Schema) ref(variant string) interop.TypeRef {
	name := fmt.Sprintf("%s#%d", s.name, s.id)
	if variant != "" {
		name += "/" + variant
	}

	return interop.TypeRef{Name: name, Generation: s.generation}
}

// put must be called with s.mu held or before s is shared.
func (s *Schema) put(d interop.Descriptor) error {
	switch d.Owner {
	case "":
		d.Owner = s.name
	case s.name:
	default:
		return fmt.Errorf("%w: field %s is owned by %s, not %s", interop.ErrOwnerMismatch, d.Name, d.Owner, s.name)
	}

	if err := d.Validate(); err != nil {
		return err
	}

	if i := s.index(d.Name); i >= 0 {
		s.fields[i] = d
		return nil
	}

	s.fields = append(s.fields, d)

	return nil
}

func (s *Schema) index(name string) int {
	return slices.IndexFunc(s.fields, func(d interop.Descriptor) bool { return d.Name == name })
}
