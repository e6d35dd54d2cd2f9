package markup

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// OneOrMany holds the children stored under a repeated element name.
// Generic markup parsers collapse a single repeated child into a bare value
// and only produce a collection for two or more, so every repeated group is
// one of three shapes: absent, a single value, or many values.
type OneOrMany[T any] struct {
	one   T
	many  []T
	shape shape
}

type shape int

const (
	shapeAbsent shape = iota
	shapeSingle
	shapeMany
)

func Single[T any](v T) OneOrMany[T] {
	return OneOrMany[T]{one: v, shape: shapeSingle}
}

func Many[T any](values ...T) OneOrMany[T] {
	many := make([]T, len(values))
	copy(many, values)
	return OneOrMany[T]{many: many, shape: shapeMany}
}

func (o OneOrMany[T]) IsAbsent() bool {
	return o.shape == shapeAbsent
}

func (o OneOrMany[T]) IsSingle() bool {
	return o.shape == shapeSingle
}

func (o OneOrMany[T]) Len() int {
	switch o.shape {
	case shapeSingle:
		return 1
	case shapeMany:
		return len(o.many)
	default:
		return 0
	}
}

// Items returns the group as a slice in document order. An absent group
// yields nil.
func (o OneOrMany[T]) Items() []T {
	switch o.shape {
	case shapeSingle:
		return []T{o.one}
	case shapeMany:
		return o.many
	default:
		return nil
	}
}

// First returns the first value of the group, if any.
func (o OneOrMany[T]) First() (T, bool) {
	switch {
	case o.shape == shapeSingle:
		return o.one, true
	case o.shape == shapeMany && len(o.many) > 0:
		return o.many[0], true
	default:
		var zero T
		return zero, false
	}
}

// Append returns the group with v added, promoting a single value to many.
func (o OneOrMany[T]) Append(v T) OneOrMany[T] {
	switch o.shape {
	case shapeAbsent:
		return Single(v)
	case shapeSingle:
		return Many(o.one, v)
	default:
		return OneOrMany[T]{many: append(o.many, v), shape: shapeMany}
	}
}

// Node is one element of a parsed document.
type Node struct {
	Name     string
	Text     string // trimmed character data, CDATA included
	Inner    string // inner markup; parsed nodes fill it on the first Value call
	Attrs    map[string]string
	Children map[string]OneOrMany[*Node]

	source *xmlquery.Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Attrs:    make(map[string]string),
		Children: make(map[string]OneOrMany[*Node]),
	}
}

// Add appends child under its element name.
func (n *Node) Add(child *Node) *Node {
	if n.Children == nil {
		n.Children = make(map[string]OneOrMany[*Node])
	}
	n.Children[child.Name] = n.Children[child.Name].Append(child)
	return n
}

// Group returns every child stored under name.
func (n *Node) Group(name string) OneOrMany[*Node] {
	if n == nil {
		return OneOrMany[*Node]{}
	}
	return n.Children[name]
}

// Child returns the first child named name.
func (n *Node) Child(name string) (*Node, bool) {
	return n.Group(name).First()
}

func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Value returns the scalar content of the element: its inner markup when it
// holds child elements, its text otherwise.
func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	if n.Inner == "" && n.source != nil && n.HasChildren() {
		n.Inner = strings.TrimSpace(n.source.OutputXML(false))
	}
	if n.Inner != "" {
		return n.Inner
	}
	return n.Text
}

// Field looks up a scalar by name, first among child elements, then among
// attributes.
func (n *Node) Field(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	if child, ok := n.Child(name); ok {
		return child.Value(), true
	}
	if v, ok := n.Attrs[name]; ok {
		return v, true
	}
	return "", false
}
