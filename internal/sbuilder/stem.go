package sbuilder

import "strconv"

// newStem creates a name generator producing base1, base2, ... while
// skipping names already present in namespace. A nil namespace is free.
func newStem(base string, namespace map[string]struct{}) *stem {
	return &stem{
		taken: namespace,
		base:  base,
	}
}

type stem struct {
	taken map[string]struct{}
	base  string
	last  int
}

func (s *stem) Next() string {
	if s.taken == nil {
		s.taken = make(map[string]struct{})
	}

	for {
		s.last++
		name := s.base + strconv.Itoa(s.last)

		if _, ok := s.taken[name]; !ok {
			s.taken[name] = struct{}{}
			return name
		}
	}
}

// Reserve marks name as taken.
func (s *stem) Reserve(name string) {
	if s.taken == nil {
		s.taken = make(map[string]struct{})
	}

	s.taken[name] = struct{}{}
}
