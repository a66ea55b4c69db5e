package scene

import "github.com/Faultbox/scenebake/pkg/math"

// Vertex attribute slots with a fixed meaning.
const (
	TangentAttribSlot   = 6
	TranslateAttribSlot = 7
)

// PrimitiveMode is the topology of a primitive set.
type PrimitiveMode int

const (
	Points PrimitiveMode = iota
	Lines
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

// PrimitiveSet draws a range of vertices, or the listed indices when Indices is set.
type PrimitiveSet struct {
	Mode    PrimitiveMode
	First   int
	Count   int
	Indices []uint32
}

// Indexed reports whether the set draws through an index list.
func (p PrimitiveSet) Indexed() bool {
	return p.Indices != nil
}

// Valid reports whether the vertex range is non-negative.
func (p PrimitiveSet) Valid() bool {
	return p.First >= 0 && p.Count >= 0
}

// Geometry is a drawable with vertex arrays and primitive sets.
type Geometry struct {
	Base
	Vertices  Array
	Normals   Array
	Colors    Array
	TexCoords []Array
	// VertexAttribs holds generic attribute arrays by slot.
	VertexAttribs map[int]Array
	Primitives    []PrimitiveSet
	// ComputeBound, when set, replaces the vertex-derived bounding box.
	ComputeBound func(*Geometry) math.Box
}

// TexCoord returns the texture coordinate array for unit, or nil.
func (g *Geometry) TexCoord(unit int) Array {
	if unit < 0 || unit >= len(g.TexCoords) {
		return nil
	}
	return g.TexCoords[unit]
}

// VertexAttrib returns the generic attribute array in slot, or nil.
func (g *Geometry) VertexAttrib(slot int) Array {
	if g.VertexAttribs == nil {
		return nil
	}
	return g.VertexAttribs[slot]
}

// SetVertexAttrib stores arr in slot. A nil arr clears the slot.
func (g *Geometry) SetVertexAttrib(slot int, arr Array) {
	if arr == nil {
		delete(g.VertexAttribs, slot)
		return
	}
	if g.VertexAttribs == nil {
		g.VertexAttribs = make(map[int]Array)
	}
	g.VertexAttribs[slot] = arr
}

// Bound returns the bounding box of the geometry, honouring ComputeBound.
func (g *Geometry) Bound() math.Box {
	if g.ComputeBound != nil {
		return g.ComputeBound(g)
	}
	return g.VertexBound()
}

// VertexBound returns the box around the vertex array alone.
func (g *Geometry) VertexBound() math.Box {
	b := math.EmptyBox()
	switch v := g.Vertices.(type) {
	case *TypedArray[math.Vec3]:
		for _, p := range v.Elements {
			b.ExpandBy(p)
		}
	case *TypedArray[math.DVec3]:
		for _, p := range v.Elements {
			b.ExpandBy(math.Vec3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)})
		}
	}
	return b
}
