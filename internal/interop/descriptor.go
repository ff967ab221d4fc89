package interop

import "errors"

// Descriptor describes one named field of an owner type.
type Descriptor struct {
	// Name is unique among the descriptors of one owner.
	Name string
	// Kind is the shape of the field value.
	Kind Kind
	// Owner names the record type the field belongs to.
	Owner string
	// Unique makes sequence imports skip elements already present.
	Unique bool
}

// Scalar returns a scalar descriptor.
func Scalar(name string) Descriptor {
	return Descriptor{Name: name, Kind: KindScalar}
}

// Sequence returns a sequence descriptor.
func Sequence(name string) Descriptor {
	return Descriptor{Name: name, Kind: KindSequence}
}

// UniqueSequence returns a sequence descriptor whose imports skip duplicates.
func UniqueSequence(name string) Descriptor {
	return Descriptor{Name: name, Kind: KindSequence, Unique: true}
}

// Mapping returns a mapping descriptor.
func Mapping(name string) Descriptor {
	return Descriptor{Name: name, Kind: KindMapping}
}

// Validate checks the descriptor is usable.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return errors.New("descriptor has no name")
	}

	if !d.Kind.IsValid() {
		return errors.New("descriptor " + d.Name + " has no valid kind")
	}

	return nil
}
