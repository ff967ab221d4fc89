package interop

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yproj/internal/record"
)

func newProjectBroker(t *testing.T, opts ...Option) *Broker {
	t.Helper()

	b := NewBroker("Project", opts...)

	for _, d := range []Descriptor{
		Scalar("name"),
		Scalar("version"),
		UniqueSequence("authors"),
		Mapping("metadata"),
	} {
		_, err := b.Register(d, Slot(d.Name), Key(d.Name))
		require.NoError(t, err)
	}

	return b
}

func TestBrokerFindUnknown(t *testing.T) {
	b := newProjectBroker(t)

	_, err := b.Find("nope", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Contains(t, err.Error(), "nope")
	assert.Contains(t, err.Error(), "broker(Project)")
}

func TestBrokerFindFallback(t *testing.T) {
	b := newProjectBroker(t)

	var gotBroker *Broker

	var gotName string

	bridge, err := b.Find("nope", func(fb *Broker, name string) (*Bridge, error) {
		gotBroker, gotName = fb, name
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, bridge)
	assert.Same(t, b, gotBroker)
	assert.Equal(t, "nope", gotName)

	bridge, err = b.Find("name", nil)
	require.NoError(t, err)
	assert.Equal(t, "name", bridge.Name())
	assert.Equal(t, "Project", bridge.Descriptor().Owner)
}

func TestBrokerDuplicateReplaceKeepsPosition(t *testing.T) {
	b := newProjectBroker(t)

	_, err := b.Register(Sequence("name"), Slot("name"), Key("title"), WithExternalName("title"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "version", "authors", "metadata"}, b.Names())

	bridge, err := b.Find("name", nil)
	require.NoError(t, err)
	assert.Equal(t, KindSequence, bridge.Kind())

	_, err = b.FindExternal("name", nil)
	assert.ErrorIs(t, err, ErrUnknownField)

	ext, err := b.FindExternal("title", nil)
	require.NoError(t, err)
	assert.Same(t, bridge, ext)
}

func TestBrokerDuplicateReject(t *testing.T) {
	b := newProjectBroker(t, WithDuplicatePolicy(DuplicateReject))

	_, err := b.Register(Scalar("name"), Slot("name"), Key("name"))
	assert.ErrorIs(t, err, ErrDuplicateField)
	assert.Equal(t, 4, b.Len())
}

func TestBrokerOwnerMismatch(t *testing.T) {
	b := NewBroker("Project")

	d := Scalar("name")
	d.Owner = "Other"

	_, err := b.Register(d, Slot("name"), Key("name"))
	assert.ErrorIs(t, err, ErrOwnerMismatch)

	_, err = b.Register(Descriptor{Name: "bad"}, nil, nil)
	assert.Error(t, err)
}

func TestBrokerMappedRoundTrip(t *testing.T) {
	b := newProjectBroker(t)

	src := map[string]any{
		"name":     "yproj",
		"version":  "0.4.4",
		"authors":  []any{"ann"},
		"metadata": map[string]any{"home": "x"},
	}

	in := record.New()
	require.NoError(t, b.ImportMapped(src, in))
	assert.Equal(t, []string{"name", "version", "authors", "metadata"}, in.Names())

	out := map[string]any{}
	n, err := b.ExportMapped(in, out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, src, out)

	in.Unset("version")

	out = map[string]any{}
	n, err = b.ExportMapped(in, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NotContains(t, out, "version")
}

func TestBrokerSingleFieldImportExport(t *testing.T) {
	b := newProjectBroker(t)
	in := record.New()

	require.NoError(t, b.Import("name", map[string]any{"name": "x"}, in))

	out := map[string]any{}
	ok, err := b.Export("name", in, out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", out["name"])

	assert.ErrorIs(t, b.Import("nope", out, in), ErrUnknownField)
}

func TestBrokerImportMapExtra(t *testing.T) {
	b := newProjectBroker(t)
	in := record.New()

	extras := map[string]any{}
	err := b.ImportMap(map[string]any{"name": "x", "custom": 1, "other": "y"}, in,
		func(k string, v any) error {
			extras[k] = v
			return nil
		})
	require.NoError(t, err)

	assert.True(t, in.Defined("name"))
	assert.Equal(t, map[string]any{"custom": 1, "other": "y"}, extras)

	err = b.ImportMap(map[string]any{"custom": 1}, in, nil)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestBrokerKindValidation(t *testing.T) {
	permissive := newProjectBroker(t)
	in := record.New()

	require.NoError(t, permissive.ImportMapped(map[string]any{"metadata": "oops"}, in))
	v, _ := in.Get("metadata")
	assert.Equal(t, "oops", v)

	strict := newProjectBroker(t, WithKindValidation())
	assert.True(t, strict.Validating())

	err := strict.ImportMapped(map[string]any{"metadata": "oops"}, record.New())
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestRegistryCachesPerGeneration(t *testing.T) {
	r, err := NewRegistry(0)
	require.NoError(t, err)

	var builds atomic.Int32

	build := func() (*Broker, error) {
		builds.Add(1)
		return NewBroker("Project"), nil
	}

	ref := TypeRef{Name: "Project", Generation: 1}

	var wg sync.WaitGroup

	brokers := make([]*Broker, 16)
	for i := range brokers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			b, err := r.Broker(ref, build)
			assert.NoError(t, err)

			brokers[i] = b
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())

	for _, b := range brokers {
		assert.Same(t, brokers[0], b)
	}

	next := TypeRef{Name: "Project", Generation: 2}
	b2, err := r.Broker(next, build)
	require.NoError(t, err)
	assert.NotSame(t, brokers[0], b2)
	assert.Equal(t, int32(2), builds.Load())

	_, ok := r.Lookup(ref)
	assert.False(t, ok, "older generation is evicted")
	assert.Equal(t, 1, r.Len())

	r.Purge()
	assert.Equal(t, 0, r.Len())
}

func TestRegistryBuildError(t *testing.T) {
	r := MustRegistry(4)

	_, err := r.Broker(TypeRef{Name: "X"}, func() (*Broker, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "X@0")
	assert.Equal(t, 0, r.Len())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"scalar":   KindScalar,
		"seq":      KindSequence,
		"Sequence": KindSequence,
		"map":      KindMapping,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("tree")
	assert.Error(t, err)
	assert.False(t, Kind(0).IsValid())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, KindSequence, KindOf([]int{1}))
	assert.Equal(t, KindScalar, KindOf([]byte("x")))
	assert.Equal(t, KindMapping, KindOf(map[int]int{}))
}
