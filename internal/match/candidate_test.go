package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yproj/internal/interop"
)

var fields = []interop.Descriptor{
	interop.Scalar("name"),
	interop.Scalar("version"),
	interop.UniqueSequence("authors"),
	interop.Mapping("dependencies"),
	interop.Mapping("dev_dependencies"),
}

func TestRankOrdersByScore(t *testing.T) {
	ranked := Rank("versoin", "1.0", fields)
	require.Len(t, ranked, len(fields))
	assert.Equal(t, "version", ranked[0].Field.Name)
	assert.True(t, ranked[0].KindMatch)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankKindBreaksTies(t *testing.T) {
	// both names are equally far from the key; the mapping value picks
	// the mapping field
	ranked := Rank("deps_x", map[string]any{"x": "1"}, []interop.Descriptor{
		interop.Scalar("deps_a"),
		interop.Mapping("deps_b"),
	})
	assert.Equal(t, "deps_b", ranked[0].Field.Name)
	assert.InDelta(t, ranked[0].NameScore, ranked[1].NameScore, 1e-9)
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		key   string
		value any
		limit int
		want  []string
	}{
		{"autors", []any{"ann"}, 0, []string{"authors"}},
		{"devDependencies", nil, 1, []string{"dev_dependencies"}},
		{"nme", "x", 0, []string{"name"}},
		{"completely_unrelated", nil, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.key, tt.value, fields, tt.limit))
		})
	}
}
