package project

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"yproj/internal/common"
	"yproj/internal/history"
	"yproj/internal/interop"
	"yproj/internal/sbuilder"
)

// DefaultMaxIncludeDepth bounds include nesting unless overridden.
const DefaultMaxIncludeDepth = 16

// StreamSource names the source of documents loaded with Load.
const StreamSource = "<stream>"

// State is the observable phase of a Loader.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoadingInclude

	// StateTotal is the number of states defined.
	StateTotal = int(iota)
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoadingInclude:
		return "loading_include"
	default:
		return common.UnknownStr
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithSchema loads documents into projects of schema s.
func WithSchema(s *Schema) Option {
	return func(l *Loader) {
		l.schema = s
	}
}

// WithStrictKinds rejects field values whose shape does not match the
// field kind.
func WithStrictKinds() Option {
	return func(l *Loader) {
		l.strict = true
	}
}

// WithLogger sets the logger used for per-key debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBaseDir sets the directory includes of stream loads resolve against.
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithMaxIncludeDepth bounds include nesting.
func WithMaxIncludeDepth(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxDepth = n
		}
	}
}

// WithTagPrefix sets the record tag prefix passed to the tree builder.
func WithTagPrefix(prefix string) Option {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

// Loader reads project documents. A Loader runs one load at a time and is
// not safe for concurrent use; it can be reused after a load returns.
type Loader struct {
	schema   *Schema
	strict   bool
	logger   *slog.Logger
	baseDir  string
	maxDepth int
	prefix   string

	state  State
	broker *interop.Broker
	stack  []string
	proj   *Project
}

// NewLoader returns a loader for the default schema.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		schema:   DefaultSchema(),
		logger:   slog.New(slog.DiscardHandler),
		maxDepth: DefaultMaxIncludeDepth,
		prefix:   sbuilder.DefaultTagPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// State returns the current phase.
func (l *Loader) State() State {
	return l.state
}

// LoadFile loads the project at path.
func LoadFile(path string, opts ...Option) (*Project, error) {
	return NewLoader(opts...).LoadFile(path)
}

// LoadFile loads the project at path. On error the partially built
// project is discarded.
func (l *Loader) LoadFile(path string) (*Project, error) {
	abs, err := common.ResolvePath("", path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file %s: %w", path, err)
	}

	p, err := l.run(abs, func() error {
		return l.loadDocument(data, abs, filepath.Dir(abs), 0)
	})
	if err != nil {
		return nil, err
	}

	p.path = abs

	return p, nil
}

// Load reads a project document from r. Includes resolve against the
// WithBaseDir directory, or the working directory.
func (l *Loader) Load(r io.Reader) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	dir, err := common.ResolvePath("", l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}

	return l.run(StreamSource, func() error {
		return l.loadDocument(data, StreamSource, dir, 0)
	})
}

func (l *Loader) run(top string, load func() error) (*Project, error) {
	var err error
	if l.strict {
		l.broker, err = l.schema.StrictBroker()
	} else {
		l.broker, err = l.schema.Broker()
	}

	if err != nil {
		return nil, err
	}

	l.proj = NewWithSchema(l.schema)
	l.proj.history.Reset(top)
	l.state = StateLoading

	defer func() {
		l.state = StateIdle
		l.stack = nil
		l.broker = nil
		l.proj = nil
	}()

	l.logger.Debug("load started", "load", l.proj.history.ID(), "source", top, "schema", l.schema.String())

	if err := load(); err != nil {
		return nil, err
	}

	return l.proj, nil
}

func (l *Loader) loadDocument(data []byte, source, dir string, depth int) error {
	res, err := sbuilder.Parse(data, sbuilder.WithTagPrefix(l.prefix))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", source, err)
	}

	root, err := l.root(res.Documents, source)
	if err != nil || root == nil {
		return err
	}

	l.stack = append(l.stack, source)
	defer func() { l.stack = l.stack[:len(l.stack)-1] }()

	for _, pair := range root.Pairs() {
		if err := l.dispatch(pair, source, dir, depth); err != nil {
			return err
		}
	}

	return nil
}

// root returns the top-level mapping of a document. An empty document has
// no root and loads nothing.
func (l *Loader) root(docs []any, source string) (*sbuilder.Map, error) {
	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w in %s: %d documents, want one", ErrUnexpectedRoot, source, len(docs))
	}

	switch t := docs[0].(type) {
	case *sbuilder.Map:
		if t.Tag == "" || t.Tag == "!!map" || t.Tag == l.schema.Tag() {
			return t, nil
		}

		return nil, fmt.Errorf("%w in %s: mapping tagged %s", ErrUnexpectedRoot, source, t.Tag)
	case *sbuilder.Instance:
		if t.Desc.TypeName() == l.schema.Name() {
			return t.Fields, nil
		}

		return nil, fmt.Errorf("%w in %s: record %s, want %s", ErrUnexpectedRoot, source, t.Desc.Label(), l.schema.Name())
	default:
		return nil, fmt.Errorf("%w in %s: %T", ErrUnexpectedRoot, source, t)
	}
}

func (l *Loader) dispatch(pair sbuilder.Pair, source, dir string, depth int) error {
	h := l.proj.history

	l.logger.Debug("dispatch key",
		"load", h.ID(), "key", pair.Key, "source", source, "depth", depth, "state", l.state.String())

	if include, tagged := isInclude(pair); include {
		targets, err := includeTargets(pair.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}

		for _, target := range targets {
			h.Include(target, source, depth, tagged)

			if err := l.include(target, source, dir, depth); err != nil {
				return err
			}
		}

		return nil
	}

	if pair.Key == ExtraDataKey {
		if m, ok := pair.Value.(*sbuilder.Map); ok {
			for _, e := range m.Pairs() {
				l.extra(e.Key, e.Value, source, depth)
			}

			return nil
		}
	}

	bridge, err := l.broker.Find(pair.Key, func(*interop.Broker, string) (*interop.Bridge, error) {
		return nil, nil
	})
	if err != nil {
		return err
	}

	if bridge == nil {
		l.extra(pair.Key, pair.Value, source, depth)
		return nil
	}

	h.Field(pair.Key, source, depth)

	if err := bridge.ImportValue(l.proj, sbuilder.Plain(pair.Value)); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	l.proj.fields.Stamp(pair.Key, history.Loaded(source, depth))

	return nil
}

func (l *Loader) extra(key string, value any, source string, depth int) {
	v := sbuilder.Plain(value)
	l.proj.history.Extra(key, v, source, depth)
	l.proj.extras.Load(key, v, history.Loaded(source, depth))
}

func (l *Loader) include(target, source, dir string, depth int) error {
	resolved, err := common.ResolvePath(dir, target)
	if err != nil {
		return &IncludeError{Target: target, Source: source, Err: fmt.Errorf("%w: %w", ErrUnresolvedInclude, err)}
	}

	fail := func(err error) error {
		return &IncludeError{Target: target, Resolved: resolved, Source: source, Err: err}
	}

	if depth+1 > l.maxDepth {
		return fail(fmt.Errorf("%w: limit %d", ErrIncludeDepth, l.maxDepth))
	}

	if slices.Contains(l.stack, resolved) {
		return fail(ErrIncludeCycle)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrUnresolvedInclude, err))
	}

	prev := l.state
	l.state = StateLoadingInclude

	defer func() { l.state = prev }()

	return l.loadDocument(data, resolved, filepath.Dir(resolved), depth+1)
}
