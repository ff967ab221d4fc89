package project

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yproj/internal/history"
	"yproj/internal/interop"
	"yproj/internal/sbuilder"
)

// writeFiles creates files under a fresh temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	return dir
}

func TestLoadFields(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.yml": `
name: demo
version: 1.2.0
authors: [ann, bob]
metadata: {stage: beta}
x-build: {cache: true}
`,
	})

	p, err := LoadFile(filepath.Join(dir, "top.yml"))
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Name())
	assert.Equal(t, "1.2.0", p.Version())
	assert.Equal(t, []string{"ann", "bob"}, p.Authors())
	assert.Equal(t, map[string]any{"stage": "beta"}, p.Metadata())
	assert.Equal(t, filepath.Join(dir, "top.yml"), p.Path())

	extra, ok := p.Extra("x-build")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"cache": true}, extra)

	var kinds []history.EntryKind
	for _, e := range p.History().Entries() {
		kinds = append(kinds, e.Kind)
	}

	assert.Equal(t, []history.EntryKind{
		history.EntryField, history.EntryField, history.EntryField, history.EntryField, history.EntryExtra,
	}, kinds)
	assert.NotEmpty(t, p.History().ID())

	origin, ok := p.Origin(FieldName)
	require.True(t, ok)
	assert.Equal(t, history.Loaded(filepath.Join(dir, "top.yml"), 0), origin)
}

func TestIncludeResolvesRelativeToIncludingFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a/b/top.yml":           "include: sub.yml\nversion: 2.0.0\n",
		"a/b/sub.yml":           "name: from-sub\ninclude: deeper/more.yml\n",
		"a/b/deeper/more.yml":   "summary: from-more\n",
		"sub.yml":               "name: wrong-dir\n",
		"a/sub.yml":             "name: wrong-dir\n",
		"a/b/deeper/unused.yml": "name: unused\n",
	})

	top := filepath.Join(dir, "a", "b", "top.yml")

	p, err := LoadFile(top)
	require.NoError(t, err)

	assert.Equal(t, "from-sub", p.Name())
	assert.Equal(t, "from-more", p.Summary())
	assert.Equal(t, "2.0.0", p.Version())

	origin, ok := p.Origin(FieldName)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "a", "b", "sub.yml"), origin.Source)
	assert.Equal(t, 1, origin.Depth)

	origin, ok = p.Origin(FieldSummary)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "a", "b", "deeper", "more.yml"), origin.Source)
	assert.Equal(t, 2, origin.Depth)

	assert.Equal(t, []string{
		top,
		filepath.Join(dir, "a", "b", "sub.yml"),
		filepath.Join(dir, "a", "b", "deeper", "more.yml"),
	}, p.History().Sources())
}

func TestUnresolvedInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.yml": "name: demo\ninclude: missing.yml\n",
	})

	l := NewLoader()

	p, err := l.LoadFile(filepath.Join(dir, "top.yml"))
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrUnresolvedInclude))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var ie *IncludeError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "missing.yml", ie.Target)
	assert.Equal(t, filepath.Join(dir, "missing.yml"), ie.Resolved)
	assert.Equal(t, filepath.Join(dir, "top.yml"), ie.Source)

	assert.Equal(t, StateIdle, l.State())
}

func TestIncludeCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.yml": "include: b.yml\n",
		"b.yml": "include: a.yml\n",
	})

	_, err := LoadFile(filepath.Join(dir, "a.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncludeCycle))
}

func TestIncludeDepthLimit(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.yml": "include: b.yml\n",
		"b.yml": "include: c.yml\n",
		"c.yml": "name: deep\n",
	})

	_, err := LoadFile(filepath.Join(dir, "a.yml"), WithMaxIncludeDepth(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncludeDepth))

	p, err := LoadFile(filepath.Join(dir, "a.yml"), WithMaxIncludeDepth(2))
	require.NoError(t, err)
	assert.Equal(t, "deep", p.Name())
}

func TestIncludeForms(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.yml": "!ext include: !file b.yml\ninclude: [c.yml, d.yml]\n",
		"b.yml":   "name: b\n",
		"c.yml":   "authors: [c]\n",
		"d.yml":   "authors: [d]\n",
	})

	p, err := LoadFile(filepath.Join(dir, "top.yml"))
	require.NoError(t, err)

	assert.Equal(t, "b", p.Name())
	assert.Equal(t, []string{"c", "d"}, p.Authors())

	var includes []history.Entry
	for _, e := range p.History().Entries() {
		if e.Kind == history.EntryInclude {
			includes = append(includes, e)
		}
	}

	require.Len(t, includes, 3)
	assert.True(t, includes[0].Tagged)
	assert.Equal(t, "b.yml", includes[0].Target)
	assert.False(t, includes[1].Tagged)
	assert.Equal(t, "d.yml", includes[2].Target)
}

func TestSequencesAccumulateAcrossIncludes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.yml": "include: b.yml\nauthors: [ann, bob]\nmetadata: {a: 1}\n",
		"b.yml":   "authors: [bob, cy]\nmetadata: {b: 2}\nname: b\n",
	})

	p, err := LoadFile(filepath.Join(dir, "top.yml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"bob", "cy", "ann"}, p.Authors())
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, p.Metadata())
}

func TestStrictKinds(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.yml": "authors: ann\n",
	})

	path := filepath.Join(dir, "top.yml")

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, p.Authors())

	_, err = LoadFile(path, WithStrictKinds())
	require.Error(t, err)
	assert.True(t, errors.Is(err, interop.ErrKindMismatch))
}

func TestExtraData(t *testing.T) {
	p, err := NewLoader().Load(strings.NewReader("name: x\nextra_data:\n  color: red\n  size: 3\n"))
	require.NoError(t, err)

	color, ok := p.Extra("color")
	require.True(t, ok)
	assert.Equal(t, "red", color)

	size, ok := p.Extra("size")
	require.True(t, ok)
	assert.Equal(t, 3, size)

	assert.Equal(t, []string{"color", "size"}, p.ExtraNames())
	assert.Equal(t, StreamSource, p.History().Top())
	assert.Empty(t, p.Path())
}

func TestMergeKeys(t *testing.T) {
	doc := `
x-base: &b {name: merged, authors: [ann]}
<<: *b
version: 1.0.0
`
	p, err := NewLoader().Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "merged", p.Name())
	assert.Equal(t, []string{"ann"}, p.Authors())
	assert.Equal(t, []string{"x-base"}, p.ExtraNames())

	_, ok := p.Extra("<<")
	assert.False(t, ok)

	out, err := Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<<")
	assert.Contains(t, string(out), "name: merged\n")
}

func TestLoadStreamWithBaseDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"conf/common.yml": "license: MIT\n",
	})

	p, err := NewLoader(WithBaseDir(filepath.Join(dir, "conf"))).Load(strings.NewReader("include: common.yml\n"))
	require.NoError(t, err)
	assert.Equal(t, "MIT", p.License())
}

func TestDocumentRoots(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"plain mapping", "name: x\n", nil},
		{"schema tag", "!project {name: x}\n", nil},
		{"record tag", "!record:Project {name: x}\n", nil},
		{"empty", "", nil},
		{"other record", "!record:Other {name: x}\n", ErrUnexpectedRoot},
		{"other tag", "!thing {name: x}\n", ErrUnexpectedRoot},
		{"sequence", "- name\n", ErrUnexpectedRoot},
		{"two documents", "name: x\n---\nname: y\n", ErrUnexpectedRoot},
		{"scalar", "just text\n", sbuilder.ErrStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLoader().Load(strings.NewReader(tt.doc))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), err.Error())

				return
			}

			require.NoError(t, err)

			if tt.doc != "" {
				assert.Equal(t, "x", p.Name())
			}
		})
	}
}

func TestLoaderStates(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.yml": "include: b.yml\n",
		"b.yml":   "name: b\n",
	})

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewLoader(WithLogger(logger))
	assert.Equal(t, StateIdle, l.State())

	_, err := l.LoadFile(filepath.Join(dir, "top.yml"))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, l.State())

	out := buf.String()
	assert.Contains(t, out, "key=include")
	assert.Contains(t, out, "state=loading\n")
	assert.Contains(t, out, "state=loading_include")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "loading_include", StateLoadingInclude.String())
	assert.Equal(t, "unknown", State(StateTotal).String())
}

func TestCustomSchema(t *testing.T) {
	s := NewDefaultSchema()

	before, err := s.Broker()
	require.NoError(t, err)
	assert.False(t, before.Has("channels"))

	require.NoError(t, s.Define("channels", interop.KindSequence))
	assert.Equal(t, uint64(1), s.Generation())

	after, err := s.Broker()
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.True(t, after.Has("channels"))

	again, err := s.Broker()
	require.NoError(t, err)
	assert.Same(t, after, again)

	p, err := NewLoader(WithSchema(s)).Load(strings.NewReader("channels: [stable]\n"))
	require.NoError(t, err)

	v, ok, err := p.Get("channels")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{"stable"}, v)
	assert.Empty(t, p.ExtraNames())

	// the default schema is not affected
	p, err = NewLoader().Load(strings.NewReader("channels: [stable]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"channels"}, p.ExtraNames())
}

func TestDefinedSequenceRoundTrip(t *testing.T) {
	s := NewDefaultSchema()
	require.NoError(t, s.Define("channels", interop.KindSequence))

	desc, ok := s.Lookup("channels")
	require.True(t, ok)
	assert.True(t, desc.Unique)

	dir := writeFiles(t, map[string]string{
		"top.yml": "include: sub.yml\nchannels: [x, y]\n",
		"sub.yml": "channels: [y]\n",
	})
	top := filepath.Join(dir, "top.yml")

	for range 2 {
		p, err := LoadFile(top, WithSchema(s))
		require.NoError(t, err)

		v, _, err := p.Get("channels")
		require.NoError(t, err)
		assert.Equal(t, []any{"y", "x"}, v)

		require.NoError(t, WriteFile(p, top))
	}
}

func TestSchemaErrors(t *testing.T) {
	_, err := NewSchema("Thing", interop.Descriptor{Name: "x", Kind: interop.KindScalar, Owner: "Other"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interop.ErrOwnerMismatch))

	s, err := NewSchema("Thing")
	require.NoError(t, err)
	assert.Error(t, s.Define("", interop.KindScalar))
	assert.Error(t, s.Define("x", interop.Kind(0)))
	assert.Equal(t, "!thing", s.Tag())
	assert.Equal(t, uint64(0), s.Generation())
}
