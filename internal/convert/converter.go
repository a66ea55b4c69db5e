// Package convert turns a scene graph into a target graph with explicit pipeline
// and descriptor-set bindings.
//
// A Converter owns every cache of one run and is not safe for concurrent use.
// Convert files in parallel by giving each its own Converter.
package convert

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

// Screen-height ratio scales used for LOD levels.
const (
	// pixelRatio converts a pixel-size range to a ratio of a 1080 line screen.
	pixelRatio = 1.0 / 1080.0
	// referenceHalfFOV is half of the 60 degree reference field of view.
	referenceHalfFOV = 30.0 * gomath.Pi / 180.0
)

// Options configures a Converter.
type Options struct {
	// BillboardTransform wraps each billboard instance in a translation
	// transform instead of translating instances in the vertex shader.
	BillboardTransform bool
	GeometryTarget     GeometryTarget

	SupportedShading    ShadingModes
	SupportedAttributes Attributes
	OverrideShading     ShadingModes
	OverrideAttributes  Attributes

	VertexShaderPath   string
	FragmentShaderPath string

	// Extension replaces the extension of paged file references.
	Extension string

	Pipelines  PipelineBuilder
	States     StateConverter
	Geometries GeometryConverter

	Logger *zap.Logger
}

// DefaultOptions returns options supporting every mask bit with the default
// geometry converter. Pipelines and States are left unset.
func DefaultOptions() Options {
	return Options{
		GeometryTarget:      VertexIndexDrawTarget,
		SupportedShading:    AllShadingModes,
		SupportedAttributes: AllAttributes,
		Extension:           DefaultExtension,
		Geometries:          DefaultGeometryConverter{},
	}
}

// Converter converts scene nodes into target nodes.
type Converter struct {
	opts  Options
	log   *zap.Logger
	run   string
	stats *Stats

	pipelines   *PipelineCache
	descriptors *DescriptorSetCache
	filenames   *FilenameMap
	states      *stateStack
	nodes       map[scene.Node]target.Node
}

// New creates a Converter.
func New(opts Options) *Converter {
	if opts.Geometries == nil {
		opts.Geometries = DefaultGeometryConverter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	run := uuid.NewString()
	log := opts.Logger.With(zap.String("run", run))
	stats := &Stats{}
	pipelines := NewPipelineCache(opts.Pipelines, opts.VertexShaderPath, opts.FragmentShaderPath, log, stats)

	return &Converter{
		opts:        opts,
		log:         log,
		run:         run,
		stats:       stats,
		pipelines:   pipelines,
		descriptors: NewDescriptorSetCache(pipelines, opts.States, log, stats),
		filenames:   NewFilenameMap(opts.Extension, stats),
		states:      newStateStack(),
		nodes:       make(map[scene.Node]target.Node),
	}
}

// RunID identifies this Converter in log output.
func (c *Converter) RunID() string { return c.run }

// Stats returns a snapshot of the run counters.
func (c *Converter) Stats() Stats { return *c.stats }

// Pipelines exposes the pipeline cache.
func (c *Converter) Pipelines() *PipelineCache { return c.pipelines }

// DescriptorSets exposes the descriptor-set cache.
func (c *Converter) DescriptorSets() *DescriptorSetCache { return c.descriptors }

// Filenames exposes the paged file name map.
func (c *Converter) Filenames() *FilenameMap { return c.filenames }

// traversal is the per-call context threaded through a conversion.
type traversal struct {
	states *stateStack
	// nodeShading is OR'd into the shading mask of drawables under the
	// current node; billboards set it for their drawables.
	nodeShading ShadingModes
}

func (t traversal) withNodeShading(m ShadingModes) traversal {
	t.nodeShading = m
	return t
}

// Convert converts n. Converting the same node again returns the same result,
// including nil for nodes that were dropped.
func (c *Converter) Convert(n scene.Node) target.Node {
	return c.convert(traversal{states: c.states}, n)
}

func (c *Converter) convert(t traversal, n scene.Node) target.Node {
	if n == nil {
		return nil
	}
	if out, ok := c.nodes[n]; ok {
		c.stats.NodeCacheHits++
		return out
	}

	out := c.visit(t, n)
	c.nodes[n] = out
	return out
}

func (c *Converter) visit(t traversal, n scene.Node) target.Node {
	c.stats.NodesVisited++

	var out target.Node
	switch n := n.(type) {
	case *scene.Geometry:
		out = c.visitGeometry(t, n)
	case *scene.Group:
		out = c.visitGroup(t, n)
	case *scene.Transform:
		out = c.visitTransform(t, n)
	case *scene.CoordinateSystem:
		out = c.visitCoordinateSystem(t, n)
	case *scene.Billboard:
		out = c.visitBillboard(t, n)
	case *scene.LOD:
		out = c.visitLOD(t, n)
	case *scene.PagedLOD:
		out = c.visitPagedLOD(t, n)
	case *scene.TerrainTile:
		out = c.visitTerrainTile(t, n)
	default:
		c.log.Warn("unsupported node", zap.String("type", fmt.Sprintf("%T", n)))
	}

	if out == nil {
		c.stats.NodesDropped++
	}
	return out
}

func (c *Converter) convertChildren(t traversal, children []scene.Node, add func(target.Node)) {
	for _, child := range children {
		if out := c.convert(t, child); out != nil {
			add(out)
		}
	}
}

func (c *Converter) visitGroup(t traversal, g *scene.Group) target.Node {
	defer t.states.push(g.State)()

	out := &target.Group{}
	c.convertChildren(t, g.Children, out.AddChild)
	return out
}

func (c *Converter) visitTransform(t traversal, xf *scene.Transform) target.Node {
	defer t.states.push(xf.State)()

	out := &target.MatrixTransform{Matrix: xf.Matrix}
	c.convertChildren(t, xf.Children, out.AddChild)
	return out
}

func (c *Converter) visitCoordinateSystem(t traversal, cs *scene.CoordinateSystem) target.Node {
	out := c.visitGroup(t, &cs.Group)
	if holder, ok := out.(target.ValueHolder); ok {
		holder.SetValue("class", "CoordinateSystemNode")
		if cs.Format != "" {
			holder.SetValue("format", cs.Format)
		}
		if cs.CoordinateSystem != "" {
			holder.SetValue("coordinate_system", cs.CoordinateSystem)
		}
	}
	return out
}

// visitTerrainTile converts the tile's children without a wrapper of its own.
// The last converted child is the result.
func (c *Converter) visitTerrainTile(t traversal, tile *scene.TerrainTile) target.Node {
	defer t.states.push(tile.State)()

	var out target.Node
	c.convertChildren(t, tile.Children, func(n target.Node) { out = n })
	return out
}

func (c *Converter) visitGeometry(t traversal, g *scene.Geometry) target.Node {
	defer t.states.push(g.State)()

	pair := t.states.top()
	masks := CalculateMasks(pair, g, MaskInputs{
		OverrideShading:     c.opts.OverrideShading,
		NodeShading:         t.nodeShading,
		SupportedShading:    c.opts.SupportedShading,
		OverrideAttributes:  c.opts.OverrideAttributes,
		SupportedAttributes: c.opts.SupportedAttributes,
	})

	group := &target.StateGroup{}
	if bind := c.pipelines.GetOrCreate(masks); bind != nil {
		group.Add(bind)
	}

	draw := c.opts.Geometries.ConvertGeometry(g, masks.Geometry, c.opts.GeometryTarget)
	if draw == nil {
		c.log.Debug("drawable dropped", zap.String("name", g.Name), zap.Stringer("masks", masks))
		return nil
	}

	if pair != nil && pair.Accumulated != nil {
		if bind := c.descriptors.GetOrCreate(masks, pair.Accumulated); bind != nil {
			group.Add(bind)
		}
	}

	group.AddChild(draw)
	return group
}

func (c *Converter) visitBillboard(t traversal, b *scene.Billboard) target.Node {
	defer t.states.push(b.State)()

	out := &target.Group{}
	if c.opts.BillboardTransform {
		c.billboardTransforms(t.withNodeShading(Billboard), b, out)
	} else {
		c.billboardInstances(t.withNodeShading(Billboard|ShaderTranslate), b, out)
	}

	switch len(out.Children) {
	case 0:
		return nil
	case 1:
		return out.Children[0]
	default:
		return out
	}
}

// billboardTransforms places each instance under its own translation. The
// drawable itself is converted once and shared by every instance.
func (c *Converter) billboardTransforms(t traversal, b *scene.Billboard, out *target.Group) {
	for i, d := range b.Drawables {
		if d == nil {
			continue
		}
		child := c.convert(t, d)
		if child == nil {
			continue
		}
		pos := b.PositionAt(i)
		xf := &target.MatrixTransform{Matrix: math.Translate(float64(pos.X), float64(pos.Y), float64(pos.Z))}
		xf.AddChild(child)
		out.AddChild(xf)
	}
}

// billboardInstances converts each distinct drawable once with all of its
// positions attached as a per-instance translate array.
func (c *Converter) billboardInstances(t traversal, b *scene.Billboard, out *target.Group) {
	var order []*scene.Geometry
	positions := make(map[*scene.Geometry][]math.Vec3)
	for i, d := range b.Drawables {
		if d == nil {
			continue
		}
		if _, seen := positions[d]; !seen {
			order = append(order, d)
		}
		positions[d] = append(positions[d], b.PositionAt(i))
	}

	for _, d := range order {
		if child := c.convertInstanced(t, d, positions[d]); child != nil {
			out.AddChild(child)
		}
	}
}

// convertInstanced converts g with positions in the translate slot and a bound
// covering every instance, then restores g.
func (c *Converter) convertInstanced(t traversal, g *scene.Geometry, positions []math.Vec3) target.Node {
	savedBound := g.ComputeBound
	savedTranslate := g.VertexAttrib(scene.TranslateAttribSlot)
	defer func() {
		g.ComputeBound = savedBound
		g.SetVertexAttrib(scene.TranslateAttribSlot, savedTranslate)
	}()

	g.ComputeBound = instancesBound(positions)
	g.SetVertexAttrib(scene.TranslateAttribSlot,
		scene.NewVec3Array(append([]math.Vec3(nil), positions...)).WithBinding(scene.BindOverall))

	c.stats.NodesVisited++
	out := c.visitGeometry(t, g)
	if out == nil {
		c.stats.NodesDropped++
	}
	return out
}

func instancesBound(positions []math.Vec3) func(*scene.Geometry) math.Box {
	return func(g *scene.Geometry) math.Box {
		local := g.VertexBound()
		world := math.EmptyBox()
		if !local.Valid() {
			return world
		}
		for _, p := range positions {
			world.ExpandBy(local.Min.Add(p))
			world.ExpandBy(local.Max.Add(p))
		}
		return world
	}
}

// lodBound returns the center and radius LOD ratios are computed from.
func lodBound(n scene.Node, l *scene.LOD) math.Sphere {
	bs := scene.ComputeBound(n)
	center := bs.Center
	if l.CenterMode == scene.UserDefinedCenter {
		center = l.Center
	}
	radius := bs.Radius
	if l.Radius > 0 {
		radius = l.Radius
	}
	return math.Sphere{Center: center, Radius: radius}
}

// screenHeightRatio returns the minimum screen-height ratio for r.
func screenHeightRatio(mode scene.RangeMode, radius float64, r scene.Range) float64 {
	if mode == scene.DistanceFromEyePoint {
		return gomath.Atan2(radius, float64(r.Max)) / referenceHalfFOV
	}
	return float64(r.Min) * pixelRatio
}

func (c *Converter) visitLOD(t traversal, l *scene.LOD) target.Node {
	defer t.states.push(l.State)()

	bound := lodBound(l, l)
	out := &target.LOD{Bound: bound}

	n := min(len(l.Children), len(l.Ranges))
	byRatio := make(map[float64]target.Node, n)
	for i := 0; i < n; i++ {
		child := c.convert(t, l.Children[i])
		if child == nil {
			continue
		}
		ratio := screenHeightRatio(l.RangeMode, bound.Radius, l.Ranges[i])
		if _, dup := byRatio[ratio]; dup {
			c.log.Debug("duplicate LOD ratio, keeping later child",
				zap.String("name", l.Name), zap.Float64("ratio", ratio), zap.Int("child", i))
		}
		byRatio[ratio] = child
	}

	ratios := make([]float64, 0, len(byRatio))
	for r := range byRatio {
		ratios = append(ratios, r)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ratios)))

	for _, r := range ratios {
		out.AddChild(target.LODChild{MinimumScreenHeightRatio: r, Node: byRatio[r]})
	}
	return out
}

func (c *Converter) visitPagedLOD(t traversal, p *scene.PagedLOD) target.Node {
	defer t.states.push(p.State)()

	bound := lodBound(p, &p.LOD)
	out := &target.PagedLOD{Bound: bound, DatabasePath: p.DatabasePath}

	children := make([]target.PagedLODChild, 0, len(p.Ranges))
	for i, r := range p.Ranges {
		var child target.Node
		if i < len(p.Children) {
			child = c.convert(t, p.Children[i])
		}

		var filename string
		if i < len(p.FileNames) {
			filename = c.filenames.Map(p.FileNames[i])
		}

		children = append(children, target.PagedLODChild{
			MinimumScreenHeightRatio: screenHeightRatio(p.RangeMode, bound.Radius, r),
			Filename:                 filename,
			Node:                     child,
		})
	}

	sort.SliceStable(children, func(i, j int) bool {
		return children[i].MinimumScreenHeightRatio > children[j].MinimumScreenHeightRatio
	})
	for _, child := range children {
		out.AddChild(child)
	}
	return out
}
