package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"yproj/internal/history"
)

// ErrNoPath is returned by Save for projects that were never loaded from or
// assigned a file.
var ErrNoPath = errors.New("project has no path")

// EncodeOption configures Encode.
type EncodeOption func(*encoder)

// WithRootTag tags the document root mapping.
func WithRootTag(tag string) EncodeOption {
	return func(e *encoder) {
		e.tag = tag
	}
}

type encoder struct {
	p    *Project
	tag  string
	root *yaml.Node

	fieldsDone map[string]bool
	extrasDone map[string]bool
	// includes collects adjacent include entries into one directive.
	includes []history.Entry
}

// Encode builds the document node of the top-level file of p.
func Encode(p *Project, opts ...EncodeOption) (*yaml.Node, error) {
	e := &encoder{
		p:          p,
		root:       &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"},
		fieldsDone: make(map[string]bool),
		extrasDone: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.tag != "" {
		e.root.Tag = e.tag
		e.root.Style = yaml.TaggedStyle
	}

	if err := e.encode(); err != nil {
		return nil, err
	}

	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{e.root}}, nil
}

func (e *encoder) encode() error {
	inHistory := make(map[string]bool)

	for _, entry := range e.p.history.Entries() {
		// a top-level key ends the current include directive
		if entry.Kind != history.EntryInclude && entry.TopLevel() {
			if err := e.flushIncludes(); err != nil {
				return err
			}
		}

		switch entry.Kind {
		case history.EntryInclude:
			if !entry.TopLevel() {
				continue
			}

			if n := len(e.includes); n > 0 && e.includes[n-1].Tagged != entry.Tagged {
				if err := e.flushIncludes(); err != nil {
					return err
				}
			}

			e.includes = append(e.includes, entry)
		case history.EntryField:
			inHistory["f:"+entry.Name] = true

			if err := e.field(entry); err != nil {
				return err
			}
		case history.EntryExtra:
			inHistory["x:"+entry.Name] = true

			if err := e.extra(entry.Name, entry.TopLevel()); err != nil {
				return err
			}
		}
	}

	if err := e.flushIncludes(); err != nil {
		return err
	}

	for _, name := range e.p.schema.Names() {
		if inHistory["f:"+name] || !e.p.fields.Defined(name) {
			continue
		}

		if err := e.field(history.Entry{Kind: history.EntryField, Name: name}); err != nil {
			return err
		}
	}

	for _, name := range e.p.extras.Names() {
		if inHistory["x:"+name] {
			continue
		}

		if err := e.extra(name, true); err != nil {
			return err
		}
	}

	return nil
}

// field writes the live value of a field once, if it belongs to the
// top-level file or was edited after loading.
func (e *encoder) field(entry history.Entry) error {
	if e.fieldsDone[entry.Name] {
		return nil
	}

	origin, defined := e.p.fields.Origin(entry.Name)
	if !defined || !(entry.TopLevel() || origin.Edited) {
		return nil
	}

	b, err := e.p.schema.Broker()
	if err != nil {
		return err
	}

	out := make(map[string]any, 1)

	ok, err := b.Export(entry.Name, e.p, out)
	if err != nil || !ok {
		return err
	}

	e.fieldsDone[entry.Name] = true

	return e.pair(entry.Name, out[entry.Name])
}

func (e *encoder) extra(name string, topLevel bool) error {
	if e.extrasDone[name] {
		return nil
	}

	v, ok := e.p.extras.Get(name)
	if !ok {
		return nil
	}

	origin, _ := e.p.extras.Origin(name)
	if !topLevel && !origin.Edited {
		return nil
	}

	e.extrasDone[name] = true

	return e.pair(name, v)
}

func (e *encoder) flushIncludes() error {
	if len(e.includes) == 0 {
		return nil
	}

	tagged := e.includes[0].Tagged
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: IncludeKey}

	if tagged {
		key.Tag, key.Style = ExtKeyTag, yaml.TaggedStyle
	}

	targets := make([]*yaml.Node, len(e.includes))
	for i, inc := range e.includes {
		targets[i] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: inc.Target}
		if tagged {
			targets[i].Tag, targets[i].Style = FileTag, yaml.TaggedStyle
		}
	}

	value := targets[0]
	if len(targets) > 1 {
		value = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: targets}
	}

	e.root.Content = append(e.root.Content, key, value)
	e.includes = nil

	return nil
}

func (e *encoder) pair(key string, v any) error {
	if err := e.flushIncludes(); err != nil {
		return err
	}

	var value yaml.Node
	if err := value.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	e.root.Content = append(e.root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&value,
	)

	return nil
}

// Marshal renders the top-level file of p as YAML.
func Marshal(p *Project, opts ...EncodeOption) ([]byte, error) {
	doc, err := Encode(p, opts...)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile writes the top-level file of p to path.
func WriteFile(p *Project, path string, opts ...EncodeOption) error {
	data, err := Marshal(p, opts...)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file %s: %w", path, err)
	}

	return nil
}

// Save writes p back to the file it was loaded from.
func Save(p *Project, opts ...EncodeOption) error {
	if p.path == "" {
		return ErrNoPath
	}

	return WriteFile(p, p.path, opts...)
}
