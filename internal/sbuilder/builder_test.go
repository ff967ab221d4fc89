package sbuilder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, b *Builder, events ...Event) error {
	t.Helper()

	for _, ev := range events {
		if err := b.Handle(ev); err != nil {
			return err
		}
	}

	return nil
}

func TestBuilderRecord(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartMapping("!record:Foo"),
		Scalar("field1"),
		Scalar("v"),
		EndMapping(),
	)
	require.NoError(t, err)

	docs, err := b.Finish()
	require.NoError(t, err)
	require.Len(t, docs, 1)

	inst, ok := docs[0].(*Instance)
	require.True(t, ok)
	assert.Equal(t, "Foo", inst.Desc.TypeName())
	assert.Equal(t, []string{"field1"}, inst.Desc.Fields())
	assert.True(t, inst.Desc.Finalized())

	v, ok := inst.Fields.Get("field1")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	desc, ok := b.Lookup("Foo")
	require.True(t, ok)
	assert.Same(t, inst.Desc, desc)
}

func TestBuilderEndWithoutFrame(t *testing.T) {
	b := NewBuilder()

	err := b.Handle(EndMapping())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, EventEndMapping, pe.Event.Kind)
	assert.Equal(t, 0, pe.Depth)
}

func TestBuilderStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		msg    string
	}{
		{
			name:   "scalar at root",
			events: []Event{Scalar("x")},
			msg:    "scalar outside",
		},
		{
			name:   "end sequence closes mapping",
			events: []Event{StartMapping(""), EndSequence()},
			msg:    "no open sequence",
		},
		{
			name:   "end mapping closes sequence",
			events: []Event{StartSequence(""), EndMapping()},
			msg:    "no open mapping",
		},
		{
			name:   "dangling key",
			events: []Event{StartMapping(""), Scalar("k"), EndMapping()},
			msg:    `key "k" has no value`,
		},
		{
			name:   "mapping as key",
			events: []Event{StartMapping(""), StartMapping("")},
			msg:    "mapping keys must be scalars",
		},
		{
			name:   "sequence as key",
			events: []Event{StartMapping(""), StartSequence("")},
			msg:    "mapping keys must be scalars",
		},
		{
			name:   "unknown event",
			events: []Event{{Kind: EventKind(42)}},
			msg:    "unknown event kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := feed(t, NewBuilder(), tt.events...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStructure))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestBuilderFinishUnbalanced(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, feed(t, b, StartMapping(""), Scalar("a"), StartSequence("")))

	_, err := b.Finish()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.Contains(t, err.Error(), "2 unclosed frame(s)")
}

// A nested record in value position must not disturb the key/value
// alternation of the enclosing mapping.
func TestBuilderNestedRecordKeepsAlternation(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartMapping(""),
		Scalar("inner"),
		StartMapping("!record:Inner"),
		Scalar("x"),
		Scalar("1"),
		EndMapping(),
		Scalar("after"),
		Scalar("2"),
		EndMapping(),
	)
	require.NoError(t, err)

	docs, err := b.Finish()
	require.NoError(t, err)
	require.Len(t, docs, 1)

	m, ok := docs[0].(*Map)
	require.True(t, ok)
	assert.Equal(t, []string{"inner", "after"}, m.Keys())

	after, ok := m.Get("after")
	require.True(t, ok)
	assert.Equal(t, "2", after)

	inner, ok := m.Get("inner")
	require.True(t, ok)
	inst, ok := inner.(*Instance)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, inst.Desc.Fields())
}

func TestBuilderRecordInRecord(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartMapping("!record:Outer"),
		Scalar("child"),
		StartMapping("!record:Inner"),
		Scalar("x"),
		Scalar("1"),
		EndMapping(),
		Scalar("name"),
		Scalar("o"),
		EndMapping(),
	)
	require.NoError(t, err)

	outer, ok := b.Lookup("Outer")
	require.True(t, ok)
	assert.Equal(t, []string{"child", "name"}, outer.Fields())
	assert.True(t, outer.Finalized())

	inner, ok := b.Lookup("Inner")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, inner.Fields())

	names := make([]string, 0)
	for _, d := range b.Structs() {
		names = append(names, d.Label())
	}

	assert.Equal(t, []string{"Outer", "Inner"}, names)
}

func TestBuilderTypeReuse(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartSequence(""),
		StartMapping("!record:Foo"), Scalar("a"), Scalar("1"), EndMapping(),
		StartMapping("!record:Foo"), Scalar("a"), Scalar("2"), EndMapping(),
		EndSequence(),
	)
	require.NoError(t, err)

	docs, err := b.Finish()
	require.NoError(t, err)

	seq, ok := docs[0].([]any)
	require.True(t, ok)
	require.Len(t, seq, 2)
	assert.Same(t, seq[0].(*Instance).Desc, seq[1].(*Instance).Desc)
	assert.Len(t, b.Structs(), 1)
}

func TestBuilderFinalizedRejectsNewField(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartSequence(""),
		StartMapping("!record:Foo"), Scalar("a"), Scalar("1"), EndMapping(),
		StartMapping("!record:Foo"), Scalar("b"),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructure))
	assert.True(t, errors.Is(err, ErrFinalized))
}

func TestBuilderOpenRecordAcceptsNewFields(t *testing.T) {
	b := NewBuilder()

	// The outer Foo is still open when the inner one closes, so the
	// type is not finalized until the outer frame ends.
	err := feed(t, b,
		StartMapping("!record:Foo"),
		Scalar("child"),
		StartMapping("!record:Foo"), Scalar("a"), Scalar("1"), EndMapping(),
		Scalar("b"), Scalar("2"),
		EndMapping(),
	)
	require.NoError(t, err)

	foo, ok := b.Lookup("Foo")
	require.True(t, ok)
	assert.Equal(t, []string{"child", "a", "b"}, foo.Fields())
	assert.True(t, foo.Finalized())
}

func TestBuilderAnonymousRecords(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartSequence(""),
		StartMapping("!record:"), Scalar("a"), Scalar("1"), EndMapping(),
		StartMapping("!record:"), Scalar("b"), Scalar("2"), EndMapping(),
		EndSequence(),
	)
	require.NoError(t, err)

	structs := b.Structs()
	require.Len(t, structs, 2)
	assert.True(t, structs[0].Anonymous())
	assert.Equal(t, "anon1", structs[0].Label())
	assert.Equal(t, "anon2", structs[1].Label())
}

func TestBuilderTagPrefix(t *testing.T) {
	b := NewBuilder(WithTagPrefix("obj/"))

	err := feed(t, b,
		StartSequence(""),
		StartMapping("!obj/Point"), Scalar("x"), Scalar("1"), EndMapping(),
		StartMapping("!record:Foo"), Scalar("y"), Scalar("2"), EndMapping(),
		EndSequence(),
	)
	require.NoError(t, err)

	docs, err := b.Finish()
	require.NoError(t, err)

	seq := docs[0].([]any)
	_, isRecord := seq[0].(*Instance)
	assert.True(t, isRecord)

	m, isMap := seq[1].(*Map)
	require.True(t, isMap)
	assert.Equal(t, "!record:Foo", m.Tag)
}

func TestBuilderKeyTags(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartMapping(""),
		TaggedScalar("include", "!ext"),
		TaggedScalar("sub.yml", "!file"),
		TaggedScalar("name", "!!str"),
		Scalar("x"),
		EndMapping(),
	)
	require.NoError(t, err)

	docs, err := b.Finish()
	require.NoError(t, err)

	pairs := docs[0].(*Map).Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{Key: "include", KeyTag: "!ext", Value: "sub.yml", ValueTag: "!file"}, pairs[0])
	assert.Equal(t, "", pairs[1].KeyTag)
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, feed(t, b, StartMapping("!record:Foo"), Scalar("a")))

	b.Reset()
	assert.Equal(t, 0, b.Depth())
	assert.Empty(t, b.Structs())

	_, ok := b.Lookup("Foo")
	assert.False(t, ok)
}

func TestBuilderNamedTypeTakesAnonymousLabel(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartSequence(""),
		StartMapping("!record:"), Scalar("a"), Scalar("1"), EndMapping(),
		StartMapping("!record:anon1"), Scalar("b"), Scalar("2"), EndMapping(),
		StartMapping("!record:"), Scalar("c"), Scalar("3"), EndMapping(),
		EndSequence(),
	)
	require.NoError(t, err)

	labels := make([]string, 0, 3)
	for _, d := range b.Structs() {
		labels = append(labels, d.Label())
	}

	assert.Equal(t, []string{"anon2", "anon1", "anon3"}, labels)

	named, ok := b.Lookup("anon1")
	require.True(t, ok)
	assert.False(t, named.Anonymous())
}

func TestBuilderMergeKey(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   map[string]any
	}{
		{
			name: "mapping",
			events: []Event{
				StartMapping(""),
				TaggedScalar("<<", mergeTag),
				StartMapping(""), Scalar("a"), Scalar("base"), Scalar("b"), Scalar("base"), EndMapping(),
				Scalar("b"), Scalar("own"),
				EndMapping(),
			},
			want: map[string]any{"a": "base", "b": "own"},
		},
		{
			name: "explicit key before merge wins",
			events: []Event{
				StartMapping(""),
				Scalar("a"), Scalar("own"),
				TaggedScalar("<<", mergeTag),
				StartMapping(""), Scalar("a"), Scalar("base"), EndMapping(),
				EndMapping(),
			},
			want: map[string]any{"a": "own"},
		},
		{
			name: "sequence of mappings, earlier wins",
			events: []Event{
				StartMapping(""),
				TaggedScalar("<<", mergeTag),
				StartSequence(""),
				StartMapping(""), Scalar("a"), Scalar("first"), EndMapping(),
				StartMapping(""), Scalar("a"), Scalar("second"), Scalar("c"), Scalar("x"), EndMapping(),
				EndSequence(),
				EndMapping(),
			},
			want: map[string]any{"a": "first", "c": "x"},
		},
		{
			name: "quoted key is literal",
			events: []Event{
				StartMapping(""),
				TaggedScalar("<<", "!!str"), Scalar("v"),
				EndMapping(),
			},
			want: map[string]any{"<<": "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			require.NoError(t, feed(t, b, tt.events...))

			docs, err := b.Finish()
			require.NoError(t, err)
			require.Len(t, docs, 1)

			m, ok := docs[0].(*Map)
			require.True(t, ok)
			assert.Equal(t, tt.want, Plain(m))
			assert.Len(t, m.Keys(), len(tt.want))
		})
	}
}

func TestBuilderMergeIntoRecord(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartMapping("!record:Point"),
		TaggedScalar("<<", mergeTag),
		StartMapping(""), Scalar("x"), Scalar("1"), EndMapping(),
		Scalar("y"), Scalar("2"),
		EndMapping(),
	)
	require.NoError(t, err)

	desc, ok := b.Lookup("Point")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "x"}, desc.Fields())
	assert.True(t, desc.Finalized())
}

func TestBuilderMergeRejectsScalar(t *testing.T) {
	b := NewBuilder()

	err := feed(t, b,
		StartMapping(""),
		TaggedScalar("<<", mergeTag),
		Scalar("nope"),
	)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "merge value")
}
