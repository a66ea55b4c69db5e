package convert

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

func triangle(name string) *scene.Geometry {
	g := &scene.Geometry{
		Vertices: scene.NewVec3Array([]math.Vec3{{X: 0}, {X: 1}, {Y: 1}}),
		Normals:  scene.NewVec3Array([]math.Vec3{{Z: 1}, {Z: 1}, {Z: 1}}),
		Primitives: []scene.PrimitiveSet{
			{Mode: scene.Triangles, Indices: []uint32{0, 1, 2}},
		},
	}
	g.Name = name
	return g
}

func materialState(r float32) *scene.StateSet {
	s := scene.NewStateSet()
	s.Material = &scene.Material{Diffuse: math.Vec4{X: r, W: 1}}
	return s
}

// recordingBuilder builds a pipeline with one descriptor-set layout and records
// every mask pair it was asked for.
type recordingBuilder struct {
	calls []MaskPair
	err   error
}

func (b *recordingBuilder) BuildPipeline(masks MaskPair, _, _ string) (*target.BindGraphicsPipeline, error) {
	b.calls = append(b.calls, masks)
	if b.err != nil {
		return nil, b.err
	}
	return &target.BindGraphicsPipeline{Pipeline: &target.GraphicsPipeline{
		Label:  masks.String(),
		Layout: &target.PipelineLayout{DescriptorSetLayouts: []*target.DescriptorSetLayout{{}}},
	}}, nil
}

// materialStates returns a descriptor set for states with a material only.
type materialStates struct {
	calls int
}

func (m *materialStates) BuildDescriptorSet(layouts []*target.DescriptorSetLayout, state *scene.StateSet, _ ShadingModes) *target.DescriptorSet {
	m.calls++
	if state == nil || state.Material == nil || len(layouts) == 0 {
		return nil
	}
	return &target.DescriptorSet{Layout: layouts[0]}
}

type countingGeometries struct {
	DefaultGeometryConverter
	calls int
}

func (c *countingGeometries) ConvertGeometry(g *scene.Geometry, attrs Attributes, form GeometryTarget) target.Node {
	c.calls++
	return c.DefaultGeometryConverter.ConvertGeometry(g, attrs, form)
}

func newTestConverter(t *testing.T, mutate func(*Options)) (*Converter, *recordingBuilder, *materialStates) {
	t.Helper()

	builder := &recordingBuilder{}
	states := &materialStates{}
	opts := DefaultOptions()
	opts.Pipelines = builder
	opts.States = states
	opts.Logger = zaptest.NewLogger(t)
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts), builder, states
}

func asStateGroup(t *testing.T, n target.Node) *target.StateGroup {
	t.Helper()
	sg, ok := n.(*target.StateGroup)
	require.True(t, ok, "expected *target.StateGroup, got %T", n)
	return sg
}

func asGroup(t *testing.T, n target.Node) *target.Group {
	t.Helper()
	g, ok := n.(*target.Group)
	require.True(t, ok, "expected *target.Group, got %T", n)
	return g
}

func TestConvertIsIdempotent(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)
	g := triangle("tri")

	first := c.Convert(g)
	second := c.Convert(g)

	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Stats().NodeCacheHits)
}

func TestConvertRemembersDroppedNodes(t *testing.T) {
	geoms := &countingGeometries{}
	c, _, _ := newTestConverter(t, func(o *Options) { o.Geometries = geoms })

	empty := &scene.Geometry{}
	assert.Nil(t, c.Convert(empty))
	assert.Nil(t, c.Convert(empty))
	assert.Equal(t, 1, geoms.calls)
	assert.Equal(t, 1, c.Stats().NodesDropped)
}

func TestSharedPipelineDistinctDescriptorSets(t *testing.T) {
	c, builder, _ := newTestConverter(t, nil)

	a := &scene.Group{Children: []scene.Node{triangle("a")}}
	a.State = materialState(1)
	b := &scene.Group{Children: []scene.Node{triangle("b")}}
	b.State = materialState(0.5)
	root := &scene.Group{Children: []scene.Node{a, b}}

	out := asGroup(t, c.Convert(root))
	require.Len(t, out.Children, 2)

	sgA := asStateGroup(t, asGroup(t, out.Children[0]).Children[0])
	sgB := asStateGroup(t, asGroup(t, out.Children[1]).Children[0])
	require.Len(t, sgA.StateCommands, 2)
	require.Len(t, sgB.StateCommands, 2)

	assert.Same(t, sgA.StateCommands[0], sgB.StateCommands[0], "same masks share one pipeline")
	assert.NotSame(t, sgA.StateCommands[1], sgB.StateCommands[1], "different materials need distinct sets")
	assert.Len(t, builder.calls, 1)

	_, ok := sgA.StateCommands[0].(*target.BindGraphicsPipeline)
	assert.True(t, ok, "pipeline binding comes first")
	_, ok = sgA.StateCommands[1].(*target.BindDescriptorSet)
	assert.True(t, ok, "descriptor binding comes second")
}

func TestStatelessGeometryHasNoDescriptorSet(t *testing.T) {
	c, _, states := newTestConverter(t, nil)

	sg := asStateGroup(t, c.Convert(triangle("bare")))
	require.Len(t, sg.StateCommands, 1)
	assert.Equal(t, 0, states.calls)
	require.Len(t, sg.Children, 1)
	assert.IsType(t, &target.VertexIndexDraw{}, sg.Children[0])
}

func TestDescriptorSetRequiresPipeline(t *testing.T) {
	states := &materialStates{}
	pipelines := NewPipelineCache(&recordingBuilder{}, "", "", zaptest.NewLogger(t), nil)
	descriptors := NewDescriptorSetCache(pipelines, states, zaptest.NewLogger(t), nil)

	masks := MaskPair{Shading: Material, Geometry: Vertex}
	assert.Nil(t, descriptors.GetOrCreate(masks, materialState(1)))
	assert.Equal(t, 0, states.calls, "no state conversion without a pipeline")
	assert.Equal(t, 0, pipelines.Len(), "descriptor lookup must not create pipelines")

	require.NotNil(t, pipelines.GetOrCreate(masks))
	assert.NotNil(t, descriptors.GetOrCreate(masks, materialState(1)))
}

func TestEmptyDescriptorSetIsRetried(t *testing.T) {
	states := &materialStates{}
	pipelines := NewPipelineCache(&recordingBuilder{}, "", "", nil, nil)
	descriptors := NewDescriptorSetCache(pipelines, states, nil, nil)

	masks := MaskPair{Shading: Lighting, Geometry: Vertex}
	pipelines.GetOrCreate(masks)

	stateless := scene.NewStateSet().SetMode(scene.ModeLighting, scene.On)
	assert.Nil(t, descriptors.GetOrCreate(masks, stateless))
	assert.Nil(t, descriptors.GetOrCreate(masks, stateless))
	assert.Equal(t, 2, states.calls)
	assert.Equal(t, 0, descriptors.Len())
}

func TestFailedPipelineIsCachedAndGeometryKept(t *testing.T) {
	c, builder, _ := newTestConverter(t, nil)
	builder.err = errors.New("no shader permutation")

	root := &scene.Group{Children: []scene.Node{triangle("a"), triangle("b")}}
	out := asGroup(t, c.Convert(root))

	require.Len(t, out.Children, 2)
	for _, child := range out.Children {
		sg := asStateGroup(t, child)
		assert.Empty(t, sg.StateCommands)
		assert.Len(t, sg.Children, 1)
	}
	assert.Len(t, builder.calls, 1)

	stats := c.Stats()
	assert.Equal(t, 1, stats.PipelinesFailed)
	assert.Equal(t, 1, stats.PipelineCacheHits)

	_, ok := c.Pipelines().Lookup(MaskPair{Shading: NoShadingModes, Geometry: Vertex | Normal})
	assert.False(t, ok)
}

func TestSharingPreserved(t *testing.T) {
	geoms := &countingGeometries{}
	c, _, _ := newTestConverter(t, func(o *Options) { o.Geometries = geoms })

	shared := triangle("shared")
	root := &scene.Group{Children: []scene.Node{
		&scene.Group{Children: []scene.Node{shared}},
		&scene.Group{Children: []scene.Node{shared}},
	}}

	out := asGroup(t, c.Convert(root))
	require.Len(t, out.Children, 2)

	left := asGroup(t, out.Children[0]).Children[0]
	right := asGroup(t, out.Children[1]).Children[0]
	assert.Same(t, left, right)
	assert.Equal(t, 1, geoms.calls)
}

func TestTransformKeepsMatrixAndOrder(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)

	a, b := triangle("a"), triangle("b")
	xf := &scene.Transform{Matrix: math.Translate(1, 2, 3), Children: []scene.Node{a, nil, b}}

	out, ok := c.Convert(xf).(*target.MatrixTransform)
	require.True(t, ok)
	assert.Equal(t, xf.Matrix, out.Matrix)
	require.Len(t, out.Children, 2)
	assert.Same(t, c.Convert(a), out.Children[0])
	assert.Same(t, c.Convert(b), out.Children[1])
}

func TestLODOrdering(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)

	near, mid, far := triangle("near"), triangle("mid"), triangle("far")
	lod := &scene.LOD{
		// Children deliberately out of range order
		Children:   []scene.Node{far, near, mid},
		Ranges:     []scene.Range{{Max: 200}, {Max: 50}, {Max: 100}},
		RangeMode:  scene.DistanceFromEyePoint,
		CenterMode: scene.UserDefinedCenter,
		Center:     math.DVec3{X: 5},
		Radius:     10,
	}

	out, ok := c.Convert(lod).(*target.LOD)
	require.True(t, ok)
	require.Len(t, out.Children, 3)

	assert.Same(t, c.Convert(near), out.Children[0].Node)
	assert.Same(t, c.Convert(mid), out.Children[1].Node)
	assert.Same(t, c.Convert(far), out.Children[2].Node)
	assert.Greater(t, out.Children[0].MinimumScreenHeightRatio, out.Children[1].MinimumScreenHeightRatio)
	assert.Greater(t, out.Children[1].MinimumScreenHeightRatio, out.Children[2].MinimumScreenHeightRatio)

	// radius 10 seen at the near range of 50 against a 30 degree half field of view
	assert.InDelta(t, gomath.Atan2(10, 50)/(gomath.Pi/6), out.Children[0].MinimumScreenHeightRatio, 1e-12)
	assert.InDelta(t, gomath.Atan2(10, 200)/(gomath.Pi/6), out.Children[2].MinimumScreenHeightRatio, 1e-12)

	assert.Equal(t, math.DVec3{X: 5}, out.Bound.Center)
	assert.Equal(t, 10.0, out.Bound.Radius)
}

func TestLODDuplicateRatiosCollapse(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)

	first, second, extra := triangle("first"), triangle("second"), triangle("extra")
	lod := &scene.LOD{
		Children:  []scene.Node{first, second, extra},
		Ranges:    []scene.Range{{Min: 100}, {Min: 100}},
		RangeMode: scene.PixelSizeOnScreen,
	}

	out, ok := c.Convert(lod).(*target.LOD)
	require.True(t, ok)
	require.Len(t, out.Children, 1)
	assert.Same(t, c.Convert(second), out.Children[0].Node, "later child wins")
	assert.InDelta(t, 100.0/1080.0, out.Children[0].MinimumScreenHeightRatio, 1e-12)
}

func TestPagedLOD(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)

	inline := triangle("inline")
	plod := &scene.PagedLOD{
		LOD: scene.LOD{
			Children:   []scene.Node{inline},
			Ranges:     []scene.Range{{Min: 0, Max: 100}, {Min: 100, Max: 1000}, {Min: 100, Max: 1000}},
			RangeMode:  scene.PixelSizeOnScreen,
			CenterMode: scene.UserDefinedCenter,
			Radius:     50,
		},
		FileNames:    []string{"", "tiles/a.osgb", "tiles/b.osgb"},
		DatabasePath: "db",
	}

	out, ok := c.Convert(plod).(*target.PagedLOD)
	require.True(t, ok)
	require.Len(t, out.Children, 3, "paged children are never deduplicated")
	assert.Equal(t, "db", out.DatabasePath)

	// Ties keep range order
	assert.Equal(t, "tiles/a.vsgt", out.Children[0].Filename)
	assert.Nil(t, out.Children[0].Node)
	assert.Equal(t, "tiles/b.vsgt", out.Children[1].Filename)

	assert.Equal(t, "", out.Children[2].Filename)
	assert.Same(t, c.Convert(inline), out.Children[2].Node)
	assert.Equal(t, 0.0, out.Children[2].MinimumScreenHeightRatio)

	assert.Equal(t, 2, c.Stats().FilenamesRemapped)
}

func TestCoordinateSystemTagged(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)

	cs := &scene.CoordinateSystem{Format: "WKT", Group: scene.Group{Children: []scene.Node{triangle("t")}}}
	out := asGroup(t, c.Convert(cs))

	class, ok := out.Value("class")
	require.True(t, ok)
	assert.Equal(t, "CoordinateSystemNode", class)
	format, _ := out.Value("format")
	assert.Equal(t, "WKT", format)
	assert.Len(t, out.Children, 1)
}

func TestTerrainTileDropsThrough(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)

	a, b := triangle("a"), triangle("b")
	tile := &scene.TerrainTile{Children: []scene.Node{a, b, &scene.Geometry{}}}

	out := c.Convert(tile)
	assert.Same(t, c.Convert(b), out)
	assert.Nil(t, c.Convert(&scene.TerrainTile{}))
}

func TestBillboardSingleInstanceCollapses(t *testing.T) {
	for _, transform := range []bool{false, true} {
		c, _, _ := newTestConverter(t, func(o *Options) { o.BillboardTransform = transform })

		g := triangle("tree")
		bb := &scene.Billboard{Drawables: []*scene.Geometry{g}, Positions: []math.Vec3{{X: 3}}}

		out := c.Convert(bb)
		require.NotNil(t, out)
		_, isGroup := out.(*target.Group)
		assert.False(t, isGroup, "transform=%v: single child must not be wrapped", transform)

		if transform {
			xf, ok := out.(*target.MatrixTransform)
			require.True(t, ok)
			assert.Equal(t, math.Translate(3, 0, 0), xf.Matrix)
		} else {
			asStateGroup(t, out)
		}
	}
}

func TestBillboardWithoutInstancesIsDropped(t *testing.T) {
	c, _, _ := newTestConverter(t, nil)
	assert.Nil(t, c.Convert(&scene.Billboard{}))
}

func TestBillboardInstancesShareOneDrawable(t *testing.T) {
	c, builder, _ := newTestConverter(t, nil)

	tree, rock := triangle("tree"), triangle("rock")
	bb := &scene.Billboard{
		Drawables: []*scene.Geometry{tree, rock, tree},
		Positions: []math.Vec3{{X: -10}, {Y: 4}, {X: 10}},
	}

	out := asGroup(t, c.Convert(bb))
	require.Len(t, out.Children, 2)

	treeDraw, ok := asStateGroup(t, out.Children[0]).Children[0].(*target.VertexIndexDraw)
	require.True(t, ok)
	assert.Equal(t, uint32(2), treeDraw.InstanceCount)
	assert.InDelta(t, -10, treeDraw.Bound.Min.X, 1e-6)
	assert.InDelta(t, 11, treeDraw.Bound.Max.X, 1e-6)

	require.NotEmpty(t, builder.calls)
	masks := builder.calls[0]
	assert.Equal(t, Billboard|ShaderTranslate, masks.Shading&(Billboard|ShaderTranslate))
	assert.NotZero(t, masks.Geometry&TranslateOverall)

	// Drawables are handed back unchanged
	assert.Nil(t, tree.ComputeBound)
	assert.Nil(t, tree.VertexAttrib(scene.TranslateAttribSlot))
}

func TestBillboardTransformsShareConvertedDrawable(t *testing.T) {
	c, builder, _ := newTestConverter(t, func(o *Options) { o.BillboardTransform = true })

	tree := triangle("tree")
	bb := &scene.Billboard{
		Drawables: []*scene.Geometry{tree, tree},
		Positions: []math.Vec3{{X: -1}, {X: 1}},
	}

	out := asGroup(t, c.Convert(bb))
	require.Len(t, out.Children, 2)

	left := out.Children[0].(*target.MatrixTransform)
	right := out.Children[1].(*target.MatrixTransform)
	assert.Same(t, left.Children[0], right.Children[0])

	require.Len(t, builder.calls, 1)
	assert.Equal(t, Billboard, builder.calls[0].Shading&(Billboard|ShaderTranslate))
}

func TestOverrideAndSupportedMasks(t *testing.T) {
	c, builder, _ := newTestConverter(t, func(o *Options) {
		o.OverrideShading = Lighting
		o.SupportedAttributes = Vertex
	})

	c.Convert(triangle("t"))
	require.Len(t, builder.calls, 1)
	assert.Equal(t, MaskPair{Shading: Lighting, Geometry: Vertex}, builder.calls[0])
}
