package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"", "abc", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Hello", "hello", 1},
		{"versoin", "version", 2},
		{"autors", "authors", 1},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "symmetry")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("name", "name"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 6.0/7.0, Similarity("autors", "authors"), 1e-9)
}

func TestKeySimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, KeySimilarity("requirePaths", "require_paths"), 1e-9)
	assert.InDelta(t, 1.0, KeySimilarity("Dev-Dependencies", "dev_dependencies"), 1e-9)
	assert.Less(t, KeySimilarity("homepage", "license"), 0.5)
}
