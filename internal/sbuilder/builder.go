package sbuilder

import (
	"fmt"
	"slices"
	"strings"
)

type frameKind int

const (
	frameMapping frameKind = iota
	frameRecord
	frameSequence
)

// frame is one open mapping, record or sequence. Mapping and record frames
// keep their own key/value alternation state.
type frame struct {
	kind frameKind
	tag  string
	m    *Map
	inst *Instance
	seq  []any

	haveKey bool
	key     string
	keyTag  string
	merging bool
	merges  []merge
}

// merge holds the pairs of a "<<" key, spliced in at position at.
type merge struct {
	at    int
	pairs []Pair
}

func (f *frame) value() any {
	switch f.kind {
	case frameRecord:
		return f.inst
	case frameSequence:
		if f.seq == nil {
			return []any{}
		}

		return f.seq
	default:
		return f.m
	}
}

// Option configures a Builder.
type Option func(*Builder)

// WithTagPrefix sets the tag prefix that marks record mappings.
// An empty prefix disables record detection.
func WithTagPrefix(prefix string) Option {
	return func(b *Builder) {
		b.prefix = prefix
	}
}

// Builder reconstructs values and record types from parse events.
// A Builder is not safe for concurrent use; Reset it between streams.
type Builder struct {
	prefix  string
	frames  []*frame
	structs []*StructDesc
	byName  map[string]*StructDesc
	byLabel map[string]*StructDesc
	anon    *stem
	docs    []any
}

// NewBuilder returns a builder using DefaultTagPrefix unless overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{prefix: DefaultTagPrefix}

	for _, opt := range opts {
		opt(b)
	}

	b.Reset()

	return b
}

// Reset discards all state, including discovered record types.
func (b *Builder) Reset() {
	b.frames = nil
	b.structs = nil
	b.byName = make(map[string]*StructDesc)
	b.byLabel = make(map[string]*StructDesc)
	b.anon = newStem("anon", nil)
	b.docs = nil
}

// Depth returns the number of open frames.
func (b *Builder) Depth() int {
	return len(b.frames)
}

// Structs returns the record types discovered so far, in discovery order.
func (b *Builder) Structs() []*StructDesc {
	return slices.Clone(b.structs)
}

// Lookup returns the named record type.
func (b *Builder) Lookup(typeName string) (*StructDesc, bool) {
	d, ok := b.byName[typeName]
	return d, ok
}

// Documents returns the completed top-level values.
func (b *Builder) Documents() []any {
	return slices.Clone(b.docs)
}

// Finish checks that every frame was closed and returns the top-level values.
func (b *Builder) Finish() ([]any, error) {
	if len(b.frames) > 0 {
		return nil, b.fail(Event{}, "%d unclosed frame(s)", len(b.frames))
	}

	return b.Documents(), nil
}

// Handle consumes one event.
func (b *Builder) Handle(ev Event) error {
	switch ev.Kind {
	case EventStartMapping:
		if err := b.checkValueSlot(ev); err != nil {
			return err
		}

		f := &frame{kind: frameMapping, tag: ev.Tag, m: NewMap(ev.Tag)}

		if name, ok := NameFromTag(ev.Tag, b.prefix); ok {
			desc := b.describe(name)
			desc.open++

			f.kind = frameRecord
			f.inst = &Instance{Desc: desc, Fields: f.m}
		}

		b.frames = append(b.frames, f)

		return nil
	case EventStartSequence:
		if err := b.checkValueSlot(ev); err != nil {
			return err
		}

		b.frames = append(b.frames, &frame{kind: frameSequence, tag: ev.Tag})

		return nil
	case EventScalar:
		return b.scalar(ev)
	case EventEndMapping:
		top := b.top()
		if top == nil || top.kind == frameSequence {
			return b.fail(ev, "no open mapping")
		}

		if top.haveKey {
			return b.fail(ev, "key %q has no value", top.key)
		}

		b.pop()

		if err := b.applyMerges(top, ev); err != nil {
			return err
		}

		if top.kind == frameRecord {
			desc := top.inst.Desc

			desc.open--
			if desc.open == 0 {
				desc.Finalize()
			}
		}

		return b.emit(top.value(), top.tag, ev)
	case EventEndSequence:
		top := b.top()
		if top == nil || top.kind != frameSequence {
			return b.fail(ev, "no open sequence")
		}

		b.pop()

		return b.emit(top.value(), top.tag, ev)
	default:
		return b.fail(ev, "unknown event kind %d", int(ev.Kind))
	}
}

func (b *Builder) scalar(ev Event) error {
	top := b.top()
	if top == nil {
		return b.fail(ev, "scalar outside any mapping or sequence")
	}

	if top.kind == frameSequence {
		top.seq = append(top.seq, resolveScalar(ev.Value, ev.Tag))
		return nil
	}

	if !top.haveKey {
		if ev.Tag == mergeTag {
			top.key, top.keyTag, top.haveKey, top.merging = ev.Value, "", true, true
			return nil
		}

		if top.kind == frameRecord {
			if err := top.inst.Desc.AddField(ev.Value); err != nil {
				pe := b.fail(ev, "invalid record field")
				pe.Err = err

				return pe
			}
		}

		top.key, top.keyTag, top.haveKey = ev.Value, explicitTag(ev.Tag), true

		return nil
	}

	return b.deliver(top, resolveScalar(ev.Value, ev.Tag), ev.Tag, ev)
}

// checkValueSlot rejects collections in mapping key position.
func (b *Builder) checkValueSlot(ev Event) error {
	top := b.top()
	if top != nil && top.kind != frameSequence && !top.haveKey {
		return b.fail(ev, "mapping keys must be scalars")
	}

	return nil
}

func (b *Builder) emit(v any, tag string, ev Event) error {
	parent := b.top()

	switch {
	case parent == nil:
		b.docs = append(b.docs, v)
	case parent.kind == frameSequence:
		parent.seq = append(parent.seq, v)
	default:
		return b.deliver(parent, v, tag, ev)
	}

	return nil
}

func (b *Builder) deliver(f *frame, v any, tag string, ev Event) error {
	defer func() {
		f.key, f.keyTag, f.haveKey, f.merging = "", "", false, false
	}()

	if f.merging {
		pairs, ok := mergePairs(v)
		if !ok {
			return b.fail(ev, "merge value must be a mapping or a sequence of mappings")
		}

		f.merges = append(f.merges, merge{at: f.m.Len(), pairs: pairs})

		return nil
	}

	f.m.Append(Pair{Key: f.key, KeyTag: f.keyTag, Value: v, ValueTag: tag})

	return nil
}

// mergePairs returns the pairs a "<<" value contributes. In a sequence,
// earlier mappings win over later ones.
func mergePairs(v any) ([]Pair, bool) {
	switch t := v.(type) {
	case *Map:
		return t.Pairs(), true
	case *Instance:
		return t.Fields.Pairs(), true
	case []any:
		var out []Pair

		for _, e := range t {
			if _, nested := e.([]any); nested {
				return nil, false
			}

			pairs, ok := mergePairs(e)
			if !ok {
				return nil, false
			}

			out = append(out, pairs...)
		}

		return out, true
	default:
		return nil, false
	}
}

// applyMerges splices merged pairs into a closed mapping frame. Keys set
// explicitly in the mapping, or by an earlier merge, are not overridden.
func (b *Builder) applyMerges(f *frame, ev Event) error {
	if len(f.merges) == 0 {
		return nil
	}

	own := f.m.pairs
	taken := make(map[string]bool, len(own))

	for _, p := range own {
		taken[p.Key] = true
	}

	out := make([]Pair, 0, len(own))
	next := 0

	spliceUpTo := func(i int) error {
		for ; next < len(f.merges) && f.merges[next].at <= i; next++ {
			for _, p := range f.merges[next].pairs {
				if taken[p.Key] {
					continue
				}

				taken[p.Key] = true

				if f.kind == frameRecord {
					if err := f.inst.Desc.AddField(p.Key); err != nil {
						pe := b.fail(ev, "invalid record field")
						pe.Err = err

						return pe
					}
				}

				out = append(out, p)
			}
		}

		return nil
	}

	for i, p := range own {
		if err := spliceUpTo(i); err != nil {
			return err
		}

		out = append(out, p)
	}

	if err := spliceUpTo(len(own)); err != nil {
		return err
	}

	f.m.pairs = out
	f.merges = nil

	return nil
}

func (b *Builder) describe(name string) *StructDesc {
	if name == "" {
		d := NewStructDesc("")
		d.label = b.anon.Next()
		b.byLabel[d.label] = d
		b.structs = append(b.structs, d)

		return d
	}

	if d, ok := b.byName[name]; ok {
		return d
	}

	d := NewStructDesc(name)
	b.anon.Reserve(name)

	// A named type takes its name from an anonymous record labelled the
	// same way earlier in the stream.
	if a, ok := b.byLabel[name]; ok {
		delete(b.byLabel, name)
		a.label = b.anon.Next()
		b.byLabel[a.label] = a
	}

	b.byName[name] = d
	b.structs = append(b.structs, d)

	return d
}

func (b *Builder) top() *frame {
	if len(b.frames) == 0 {
		return nil
	}

	return b.frames[len(b.frames)-1]
}

func (b *Builder) pop() {
	b.frames = b.frames[:len(b.frames)-1]
}

func (b *Builder) fail(ev Event, format string, args ...any) *ParseError {
	return &ParseError{Event: ev, Depth: len(b.frames), Msg: fmt.Sprintf(format, args...)}
}

const mergeTag = "!!merge"

// explicitTag drops core schema tags, keeping only application tags.
func explicitTag(tag string) string {
	if strings.HasPrefix(tag, "!!") {
		return ""
	}

	return tag
}
