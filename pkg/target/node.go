// Package target defines the GPU-oriented output graph. Its nodes carry explicit
// pipeline bindings, descriptor-set bindings and pre-baked vertex/index data.
//
// Nodes reachable from more than one parent are the same pointer; plain tree
// edges are exclusive.
package target

import "github.com/Faultbox/scenebake/pkg/math"

// Node is a target graph node.
type Node interface {
	targetNode()
}

// Values carries string metadata attached to a node.
type Values map[string]string

// Object holds the metadata shared by all nodes.
type Object struct {
	Values Values
}

// SetValue stores a metadata entry.
func (o *Object) SetValue(key, value string) {
	if o.Values == nil {
		o.Values = make(Values)
	}
	o.Values[key] = value
}

// Value returns a metadata entry.
func (o *Object) Value(key string) (string, bool) {
	v, ok := o.Values[key]
	return v, ok
}

// ValueHolder is implemented by every node type.
type ValueHolder interface {
	SetValue(key, value string)
	Value(key string) (string, bool)
}

// Group is an ordered list of children.
type Group struct {
	Object
	Children []Node
}

// AddChild appends a child.
func (g *Group) AddChild(n Node) {
	g.Children = append(g.Children, n)
}

// MatrixTransform applies a double precision matrix to its children.
type MatrixTransform struct {
	Object
	Matrix   math.DMat4
	Children []Node
}

// AddChild appends a child.
func (t *MatrixTransform) AddChild(n Node) {
	t.Children = append(t.Children, n)
}

// StateGroup binds its state commands, in order, before traversing its children.
type StateGroup struct {
	Object
	StateCommands []StateCommand
	Children      []Node
}

// Add appends a state command.
func (s *StateGroup) Add(c StateCommand) {
	s.StateCommands = append(s.StateCommands, c)
}

// AddChild appends a child.
func (s *StateGroup) AddChild(n Node) {
	s.Children = append(s.Children, n)
}

// LODChild is one level of a LOD, selected when the projected bound height exceeds
// MinimumScreenHeightRatio.
type LODChild struct {
	MinimumScreenHeightRatio float64
	Node                     Node
}

// LOD holds children ordered from highest to lowest detail.
type LOD struct {
	Object
	Bound    math.Sphere
	Children []LODChild
}

// AddChild appends a level.
func (l *LOD) AddChild(c LODChild) {
	l.Children = append(l.Children, c)
}

// PagedLODChild is a LOD level that may be loaded from Filename on demand.
type PagedLODChild struct {
	MinimumScreenHeightRatio float64
	Filename                 string
	Node                     Node
}

// PagedLOD holds paged levels ordered from highest to lowest detail. Level
// filenames are relative to DatabasePath, itself relative to the file
// holding the node.
type PagedLOD struct {
	Object
	Bound        math.Sphere
	DatabasePath string
	Children     []PagedLODChild
}

// AddChild appends a level.
func (p *PagedLOD) AddChild(c PagedLODChild) {
	p.Children = append(p.Children, c)
}

func (*Group) targetNode()           {}
func (*MatrixTransform) targetNode() {}
func (*StateGroup) targetNode()      {}
func (*LOD) targetNode()             {}
func (*PagedLOD) targetNode()        {}
func (*VertexIndexDraw) targetNode() {}
func (*Geometry) targetNode()        {}
func (*Commands) targetNode()        {}

// Children returns the direct node children of n.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Group:
		return n.Children
	case *MatrixTransform:
		return n.Children
	case *StateGroup:
		return n.Children
	case *LOD:
		out := make([]Node, 0, len(n.Children))
		for _, c := range n.Children {
			out = append(out, c.Node)
		}
		return out
	case *PagedLOD:
		out := make([]Node, 0, len(n.Children))
		for _, c := range n.Children {
			if c.Node != nil {
				out = append(out, c.Node)
			}
		}
		return out
	default:
		return nil
	}
}
