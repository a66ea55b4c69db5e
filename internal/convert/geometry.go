package convert

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

// GeometryTarget selects the node form drawables are converted into.
type GeometryTarget int

const (
	// VertexIndexDrawTarget emits a single VertexIndexDraw node.
	VertexIndexDrawTarget GeometryTarget = iota
	// GeometryNodeTarget emits a Geometry node with its own draw commands.
	GeometryNodeTarget
	// CommandsTarget emits a raw Commands list.
	CommandsTarget
)

var geometryTargetNames = map[GeometryTarget]string{
	VertexIndexDrawTarget: "vertex_index_draw",
	GeometryNodeTarget:    "geometry",
	CommandsTarget:        "commands",
}

func (t GeometryTarget) String() string {
	if name, ok := geometryTargetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("GeometryTarget(%d)", int(t))
}

// ParseGeometryTarget parses a target name as produced by String.
func ParseGeometryTarget(name string) (GeometryTarget, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range geometryTargetNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown geometry target %q", name)
}

// DefaultGeometryConverter converts drawables with CopyArray. Attributes the
// mask asks for but the drawable lacks are filled with neutral values.
type DefaultGeometryConverter struct{}

// ConvertGeometry converts g. It returns nil when g has no usable vertices or
// no primitives.
func (DefaultGeometryConverter) ConvertGeometry(g *scene.Geometry, attrs Attributes, form GeometryTarget) target.Node {
	if g == nil {
		return nil
	}
	vertices := CopyArray(g.Vertices)
	if vertices == nil || vertices.Len() == 0 {
		return nil
	}

	sets := validPrimitives(g.Primitives)
	topology, indices, ok := buildIndices(sets)
	if !ok {
		return nil
	}

	vertexCount := vertices.Len()
	arrays := []target.Data{vertices}
	arrays = appendAttribute(arrays, g.Normals, attrs, Normal, NormalOverall, vertexCount, math.Vec3{Z: 1})
	arrays = appendAttribute(arrays, g.VertexAttrib(scene.TangentAttribSlot), attrs, Tangent, TangentOverall, vertexCount, math.Vec4{X: 1, W: 1})
	arrays = appendAttribute(arrays, g.Colors, attrs, Color, ColorOverall, vertexCount, math.Vec4{X: 1, Y: 1, Z: 1, W: 1})
	for unit, bit := range []Attributes{TexCoord0, TexCoord1, TexCoord2} {
		arrays = appendAttribute(arrays, g.TexCoord(unit), attrs, bit, 0, vertexCount, math.Vec2{})
	}

	instanceCount := uint32(1)
	if attrs&(Translate|TranslateOverall) != 0 {
		translate := CopyArray(g.VertexAttrib(scene.TranslateAttribSlot))
		if translate == nil || translate.Len() == 0 {
			translate = fill(math.Vec3{}, 1)
		}
		if a, ok := translate.(*target.Array[math.Vec3]); ok && attrs&TranslateOverall != 0 {
			a.PerInstance = true
			instanceCount = uint32(a.Len())
		}
		arrays = append(arrays, translate)
	}

	bound := g.Bound()

	var draw target.Command
	if indices != nil {
		draw = &target.DrawIndexed{
			Topology:      topology,
			IndexCount:    uint32(indices.Len()),
			InstanceCount: instanceCount,
		}
	} else {
		first, count := drawRange(sets, vertexCount)
		draw = &target.Draw{
			Topology:      topology,
			VertexCount:   count,
			InstanceCount: instanceCount,
			FirstVertex:   first,
		}
	}

	switch form {
	case GeometryNodeTarget:
		return &target.Geometry{
			Arrays:   arrays,
			Indices:  indices,
			Commands: []target.Command{draw},
			Bound:    bound,
		}

	case CommandsTarget:
		cmds := &target.Commands{Bound: bound}
		cmds.Children = append(cmds.Children, &target.BindVertexBuffers{Arrays: arrays})
		if indices != nil {
			cmds.Children = append(cmds.Children, &target.BindIndexBuffer{Indices: indices})
		}
		cmds.Children = append(cmds.Children, draw)
		return cmds

	default:
		vid := &target.VertexIndexDraw{
			Arrays:        arrays,
			Indices:       indices,
			Topology:      topology,
			InstanceCount: instanceCount,
			Bound:         bound,
		}
		switch d := draw.(type) {
		case *target.DrawIndexed:
			vid.IndexCount = d.IndexCount
		case *target.Draw:
			vid.VertexCount = d.VertexCount
			vid.FirstVertex = d.FirstVertex
		}
		return vid
	}
}

// appendAttribute appends the copy of src when attrs enables perVertex or
// overall. A missing or uncopyable src is replaced by a constant array.
func appendAttribute[T any](arrays []target.Data, src scene.Array, attrs, perVertex, overall Attributes, vertexCount int, value T) []target.Data {
	if attrs&(perVertex|overall) == 0 {
		return arrays
	}
	if data := CopyArray(src); data != nil && data.Len() > 0 {
		return append(arrays, data)
	}
	n := vertexCount
	if attrs&overall != 0 {
		n = 1
	}
	return append(arrays, fill(value, n))
}

func fill[T any](value T, n int) target.Data {
	values := make([]T, n)
	for i := range values {
		values[i] = value
	}
	return CopyArray(scene.NewArray(arrayTypeOf(value), values))
}

func arrayTypeOf(v any) scene.ArrayType {
	switch v.(type) {
	case math.Vec2:
		return scene.Vec2ArrayType
	case math.Vec4:
		return scene.Vec4ArrayType
	default:
		return scene.Vec3ArrayType
	}
}

// validPrimitives drops sets with a negative first or count.
func validPrimitives(sets []scene.PrimitiveSet) []scene.PrimitiveSet {
	out := make([]scene.PrimitiveSet, 0, len(sets))
	for _, set := range sets {
		if set.Valid() {
			out = append(out, set)
		}
	}
	return out
}

// drawRange returns the vertex range of the first primitive set, or every
// vertex when there is none.
func drawRange(sets []scene.PrimitiveSet, vertexCount int) (first, count uint32) {
	if len(sets) == 0 || !sets[0].Valid() || sets[0].Count == 0 {
		return 0, uint32(vertexCount)
	}
	return uint32(sets[0].First), uint32(sets[0].Count)
}

// buildIndices flattens the primitive sets into one index buffer. A single
// non-indexed set with a native topology draws without indices. Multiple sets
// are converted to list topologies; sets of a different kind than the first are
// skipped.
func buildIndices(sets []scene.PrimitiveSet) (gputypes.PrimitiveTopology, target.Data, bool) {
	if len(sets) == 0 {
		return gputypes.PrimitiveTopologyTriangleList, nil, false
	}

	if len(sets) == 1 && !sets[0].Indexed() && sets[0].Mode != scene.TriangleFan {
		return nativeTopology(sets[0].Mode), nil, true
	}

	if len(sets) == 1 && sets[0].Mode != scene.TriangleFan {
		return nativeTopology(sets[0].Mode), indexData(sets[0].Indices), true
	}

	kind := listTopology(sets[0].Mode)
	var indices []uint32
	for _, set := range sets {
		if !set.Valid() || listTopology(set.Mode) != kind {
			continue
		}
		indices = append(indices, listIndices(set)...)
	}
	if len(indices) == 0 {
		return kind, nil, false
	}
	return kind, indexData(indices), true
}

func nativeTopology(mode scene.PrimitiveMode) gputypes.PrimitiveTopology {
	switch mode {
	case scene.Points:
		return gputypes.PrimitiveTopologyPointList
	case scene.Lines:
		return gputypes.PrimitiveTopologyLineList
	case scene.LineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case scene.TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func listTopology(mode scene.PrimitiveMode) gputypes.PrimitiveTopology {
	switch mode {
	case scene.Points:
		return gputypes.PrimitiveTopologyPointList
	case scene.Lines, scene.LineStrip:
		return gputypes.PrimitiveTopologyLineList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

// listIndices expands set into list-topology indices.
func listIndices(set scene.PrimitiveSet) []uint32 {
	if !set.Valid() {
		return nil
	}
	src := set.Indices
	if !set.Indexed() {
		src = make([]uint32, set.Count)
		for i := range src {
			src[i] = uint32(set.First + i)
		}
	}

	switch set.Mode {
	case scene.LineStrip:
		var out []uint32
		for i := 0; i+1 < len(src); i++ {
			out = append(out, src[i], src[i+1])
		}
		return out
	case scene.TriangleStrip:
		var out []uint32
		for i := 0; i+2 < len(src); i++ {
			if i%2 == 0 {
				out = append(out, src[i], src[i+1], src[i+2])
			} else {
				out = append(out, src[i+1], src[i], src[i+2])
			}
		}
		return out
	case scene.TriangleFan:
		var out []uint32
		for i := 1; i+1 < len(src); i++ {
			out = append(out, src[0], src[i], src[i+1])
		}
		return out
	default:
		return src
	}
}

// indexData picks 16-bit indices when every index fits.
func indexData(indices []uint32) target.Data {
	var maxIndex uint32
	for _, i := range indices {
		if i > maxIndex {
			maxIndex = i
		}
	}
	if maxIndex <= 0xFFFF {
		short := make([]uint16, len(indices))
		for i, v := range indices {
			short[i] = uint16(v)
		}
		return &target.Array[uint16]{Values: short, Stride: 2}
	}
	values := make([]uint32, len(indices))
	copy(values, indices)
	return &target.Array[uint32]{Values: values, Stride: 4}
}
