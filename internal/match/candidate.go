package match

import (
	"sort"

	"yproj/internal/interop"
)

// DefaultThreshold is the minimum score Suggest reports.
const DefaultThreshold = 0.6

// kindBonus is added to the score of candidates whose kind matches the
// shape of the misspelled value.
const kindBonus = 0.1

// Candidate is one schema field scored against a key.
type Candidate struct {
	Field interop.Descriptor
	// NameScore is the key similarity in [0, 1].
	NameScore float64
	// KindMatch is set when the value shape fits the field kind.
	KindMatch bool
	// Score ranks candidates; higher is better.
	Score float64
}

// CandidateList is sorted by Score, best first.
type CandidateList []Candidate

func (c CandidateList) Len() int      { return len(c) }
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Field.Name < c[j].Field.Name
}

// Names returns the field names in rank order.
func (c CandidateList) Names() []string {
	if len(c) == 0 {
		return nil
	}

	out := make([]string, len(c))
	for i, cand := range c {
		out[i] = cand.Field.Name
	}

	return out
}

// Above returns the candidates whose name score reaches threshold.
func (c CandidateList) Above(threshold float64) CandidateList {
	var out CandidateList

	for _, cand := range c {
		if cand.NameScore >= threshold {
			out = append(out, cand)
		}
	}

	return out
}

// Rank scores every field against key. value is the value found under
// key; pass nil to rank by name only.
func Rank(key string, value any, fields []interop.Descriptor) CandidateList {
	norm := NormalizeIdent(key)
	kind := interop.KindOf(value)

	out := make(CandidateList, 0, len(fields))

	for _, f := range fields {
		c := Candidate{
			Field:     f,
			NameScore: Similarity(norm, NormalizeIdent(f.Name)),
			KindMatch: value != nil && kind == f.Kind,
		}

		c.Score = c.NameScore
		if c.KindMatch {
			c.Score += kindBonus
		}

		out = append(out, c)
	}

	sort.Sort(out)

	return out
}

// Suggest returns up to limit field names similar to key, best first.
// A limit of zero or less means no limit.
func Suggest(key string, value any, fields []interop.Descriptor, limit int) []string {
	names := Rank(key, value, fields).Above(DefaultThreshold).Names()
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	return names
}
