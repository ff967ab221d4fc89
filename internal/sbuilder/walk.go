package sbuilder

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Walk emits the events of a yaml.v3 node tree to h. Aliases are followed;
// an alias that refers to one of its own ancestors is an error.
func Walk(n *yaml.Node, h Handler) error {
	return walk(n, h, make(map[*yaml.Node]bool))
}

func walk(n *yaml.Node, h Handler, active map[*yaml.Node]bool) error {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if isEmptyDocument(n) {
			return nil
		}

		for _, c := range n.Content {
			if err := walk(c, h, active); err != nil {
				return err
			}
		}

		return nil
	case yaml.MappingNode, yaml.SequenceNode:
		start, end := EventStartMapping, EventEndMapping
		if n.Kind == yaml.SequenceNode {
			start, end = EventStartSequence, EventEndSequence
		}

		err := h.Handle(Event{Kind: start, Tag: n.Tag, Anchor: n.Anchor, Line: n.Line, Column: n.Column})
		if err != nil {
			return err
		}

		for _, c := range n.Content {
			if err := walk(c, h, active); err != nil {
				return err
			}
		}

		return h.Handle(Event{Kind: end, Line: n.Line, Column: n.Column})
	case yaml.ScalarNode:
		return h.Handle(Event{
			Kind:   EventScalar,
			Tag:    n.ShortTag(),
			Anchor: n.Anchor,
			Value:  n.Value,
			Line:   n.Line,
			Column: n.Column,
		})
	case yaml.AliasNode:
		if n.Alias == nil {
			return fmt.Errorf("alias *%s at line %d has no target", n.Value, n.Line)
		}

		if active[n.Alias] {
			return fmt.Errorf("recursive alias *%s at line %d", n.Value, n.Line)
		}

		active[n.Alias] = true
		defer delete(active, n.Alias)

		return walk(n.Alias, h, active)
	default:
		return fmt.Errorf("unsupported yaml node kind %d at line %d", n.Kind, n.Line)
	}
}

// isEmptyDocument reports a document holding nothing but an implicit null.
func isEmptyDocument(n *yaml.Node) bool {
	if len(n.Content) == 0 {
		return true
	}

	if len(n.Content) != 1 {
		return false
	}

	c := n.Content[0]

	return c.Kind == yaml.ScalarNode && c.ShortTag() == "!!null" && c.Value == ""
}

// Result is the outcome of Parse.
type Result struct {
	// Documents holds one value per non-empty document in the stream.
	Documents []any
	// Structs lists the record types discovered, in discovery order.
	Structs []*StructDesc
}

// Parse decodes every document in data and rebuilds its values.
func Parse(data []byte, opts ...Option) (*Result, error) {
	b := NewBuilder(opts...)
	dec := yaml.NewDecoder(bytes.NewReader(data))

	for {
		var n yaml.Node

		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}

		if err := Walk(&n, b); err != nil {
			return nil, err
		}
	}

	docs, err := b.Finish()
	if err != nil {
		return nil, err
	}

	return &Result{Documents: docs, Structs: b.Structs()}, nil
}
