// Package scene defines the source scene graph: a retained-mode hierarchy of
// groups, transforms, drawables, level-of-detail nodes, billboards and paged content.
//
// The node set is closed. Every node type implements Node through an unexported
// marker method, so converters can switch over the concrete types exhaustively.
package scene

import "github.com/Faultbox/scenebake/pkg/math"

// Node is a source graph node. Nodes are compared by identity (pointer).
type Node interface {
	sceneNode()
	// StateSet returns the state attached to this node, or nil.
	StateSet() *StateSet
}

// Base holds the fields common to all nodes.
type Base struct {
	Name  string
	State *StateSet
}

// StateSet returns the attached state set, or nil.
func (b *Base) StateSet() *StateSet {
	if b == nil {
		return nil
	}
	return b.State
}

// Group is a node with an ordered list of children.
type Group struct {
	Base
	Children []Node
}

// AddChild appends a child and returns the group for chaining.
func (g *Group) AddChild(n Node) *Group {
	g.Children = append(g.Children, n)
	return g
}

// Transform applies a matrix to its children.
type Transform struct {
	Base
	Matrix   math.DMat4
	Children []Node
}

// CoordinateSystem is a group that anchors its subgraph in a geodetic frame.
type CoordinateSystem struct {
	Group
	Format           string
	CoordinateSystem string
}

// TerrainTile is an opaque terrain container; only its children are converted.
type TerrainTile struct {
	Base
	Level, X, Y int
	Children    []Node
}

// RangeMode selects how LOD ranges are interpreted.
type RangeMode int

const (
	// DistanceFromEyePoint ranges are eye distances in world units.
	DistanceFromEyePoint RangeMode = iota
	// PixelSizeOnScreen ranges are projected pixel sizes.
	PixelSizeOnScreen
)

// CenterMode selects where the LOD center comes from.
type CenterMode int

const (
	// UseBoundingSphereCenter takes the center of the computed bound.
	UseBoundingSphereCenter CenterMode = iota
	// UserDefinedCenter takes LOD.Center.
	UserDefinedCenter
)

// Range is the visible interval of one LOD child.
type Range struct {
	Min, Max float32
}

// LOD selects among children by range.
type LOD struct {
	Base
	Children   []Node
	Ranges     []Range
	RangeMode  RangeMode
	CenterMode CenterMode
	Center     math.DVec3
	// Radius overrides the bounding radius when positive.
	Radius float64
}

// PagedLOD is a LOD whose children may live in external files.
type PagedLOD struct {
	LOD
	// FileNames holds one external reference per range; empty means inline only.
	FileNames    []string
	DatabasePath string
}

// BillboardMode is the billboard rotation constraint.
type BillboardMode int

const (
	// PointRotEye rotates each drawable to face the eye.
	PointRotEye BillboardMode = iota
	// PointRotWorld rotates around the eye with world up.
	PointRotWorld
	// AxialRot rotates around Axis only.
	AxialRot
)

// Billboard places drawables at positions, each oriented toward the viewer.
// Drawables[i] is drawn at Positions[i]; a drawable may repeat.
type Billboard struct {
	Base
	Mode      BillboardMode
	Axis      math.Vec3
	Drawables []*Geometry
	Positions []math.Vec3
}

// PositionAt returns the position of instance i, or the origin when missing.
func (b *Billboard) PositionAt(i int) math.Vec3 {
	if i < len(b.Positions) {
		return b.Positions[i]
	}
	return math.Vec3{}
}

func (*Group) sceneNode()            {}
func (*Transform) sceneNode()        {}
func (*Geometry) sceneNode()         {}
func (*Billboard) sceneNode()        {}
func (*LOD) sceneNode()              {}
func (*PagedLOD) sceneNode()         {}
func (*CoordinateSystem) sceneNode() {}
func (*TerrainTile) sceneNode()      {}

// Children returns the direct children of n. Billboard drawables are reported as children.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Group:
		return n.Children
	case *CoordinateSystem:
		return n.Children
	case *Transform:
		return n.Children
	case *LOD:
		return n.Children
	case *PagedLOD:
		return n.Children
	case *TerrainTile:
		return n.Children
	case *Billboard:
		out := make([]Node, 0, len(n.Drawables))
		for _, d := range n.Drawables {
			if d != nil {
				out = append(out, d)
			}
		}
		return out
	default:
		return nil
	}
}

// Walk visits n and its descendants depth first, visiting shared nodes once.
// Returning false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	seen := make(map[Node]bool)
	var walk func(Node)
	walk = func(n Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		if !fn(n) {
			return
		}
		for _, c := range Children(n) {
			walk(c)
		}
	}
	walk(n)
}
