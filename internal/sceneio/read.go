package sceneio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
)

// ReadFile reads a source scene document from path.
func ReadFile(path string) (scene.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return root, nil
}

// Read decodes a source scene document.
func Read(r io.Reader) (scene.Node, error) {
	var doc SceneDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if doc.Format != "" && doc.Format != SourceFormat {
		return nil, fmt.Errorf("unsupported format %q", doc.Format)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("scene has no root")
	}
	return newReader().node(doc.Root)
}

type reader struct {
	nodes  map[string]scene.Node
	states map[string]*scene.StateSet
}

func newReader() *reader {
	return &reader{
		nodes:  make(map[string]scene.Node),
		states: make(map[string]*scene.StateSet),
	}
}

func (r *reader) node(d *NodeDoc) (scene.Node, error) {
	if d == nil {
		return nil, nil
	}
	if d.Ref != "" {
		n, ok := r.nodes[d.Ref]
		if !ok {
			return nil, fmt.Errorf("unknown node ref %q", d.Ref)
		}
		return n, nil
	}
	if d.ID != "" {
		if _, dup := r.nodes[d.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", d.ID)
		}
	}

	state, err := r.state(d.State)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", label(d), err)
	}
	base := scene.Base{Name: d.Name, State: state}

	var n scene.Node
	switch d.Type {
	case "group", "":
		g := &scene.Group{Base: base}
		if g.Children, err = r.children(d.Children); err == nil {
			n = g
		}

	case "transform":
		t := &scene.Transform{Base: base}
		if t.Matrix, err = matrix(d); err == nil {
			t.Children, err = r.children(d.Children)
		}
		n = t

	case "coordinate_system":
		c := &scene.CoordinateSystem{Format: d.Format, CoordinateSystem: d.CoordinateSystem}
		c.Base = base
		c.Children, err = r.children(d.Children)
		n = c

	case "terrain_tile":
		t := &scene.TerrainTile{Base: base, Level: d.Level, X: d.X, Y: d.Y}
		t.Children, err = r.children(d.Children)
		n = t

	case "lod":
		l := &scene.LOD{Base: base}
		err = r.fillLOD(l, d)
		n = l

	case "paged_lod":
		p := &scene.PagedLOD{FileNames: d.Filenames, DatabasePath: d.DatabasePath}
		p.Base = base
		err = r.fillLOD(&p.LOD, d)
		n = p

	case "billboard":
		n, err = r.billboard(base, d)

	case "geometry":
		n, err = geometry(base, d)

	default:
		err = fmt.Errorf("unknown node type %q", d.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", label(d), err)
	}

	if d.ID != "" {
		r.nodes[d.ID] = n
	}
	return n, nil
}

func label(d *NodeDoc) string {
	switch {
	case d.ID != "":
		return d.ID
	case d.Name != "":
		return d.Name
	case d.Type != "":
		return d.Type
	default:
		return "group"
	}
}

func (r *reader) children(docs []*NodeDoc) ([]scene.Node, error) {
	out := make([]scene.Node, 0, len(docs))
	for _, c := range docs {
		n, err := r.node(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func matrix(d *NodeDoc) (math.DMat4, error) {
	m := math.Identity()
	switch {
	case len(d.Matrix) == 16:
		copy(m[:], d.Matrix)
	case len(d.Matrix) != 0:
		return m, fmt.Errorf("matrix needs 16 values, got %d", len(d.Matrix))
	case len(d.Translate) == 3:
		m = math.Translate(d.Translate[0], d.Translate[1], d.Translate[2])
	case len(d.Translate) != 0:
		return m, fmt.Errorf("translate needs 3 values, got %d", len(d.Translate))
	}
	return m, nil
}

func (r *reader) fillLOD(l *scene.LOD, d *NodeDoc) error {
	var err error
	if l.Children, err = r.children(d.Children); err != nil {
		return err
	}
	for _, rg := range d.Ranges {
		l.Ranges = append(l.Ranges, scene.Range{Min: rg[0], Max: rg[1]})
	}

	switch d.RangeMode {
	case "", "distance":
		l.RangeMode = scene.DistanceFromEyePoint
	case "pixel":
		l.RangeMode = scene.PixelSizeOnScreen
	default:
		return fmt.Errorf("unknown range mode %q", d.RangeMode)
	}

	switch d.CenterMode {
	case "", "bound":
		l.CenterMode = scene.UseBoundingSphereCenter
	case "user":
		l.CenterMode = scene.UserDefinedCenter
	default:
		return fmt.Errorf("unknown center mode %q", d.CenterMode)
	}
	if len(d.Center) == 3 {
		l.Center = math.DVec3{X: d.Center[0], Y: d.Center[1], Z: d.Center[2]}
	} else if len(d.Center) != 0 {
		return fmt.Errorf("center needs 3 values, got %d", len(d.Center))
	}
	l.Radius = d.Radius
	return nil
}

var billboardModes = map[string]scene.BillboardMode{
	"":                scene.PointRotEye,
	"point_rot_eye":   scene.PointRotEye,
	"point_rot_world": scene.PointRotWorld,
	"axial":           scene.AxialRot,
}

func (r *reader) billboard(base scene.Base, d *NodeDoc) (scene.Node, error) {
	mode, ok := billboardModes[d.Mode]
	if !ok {
		return nil, fmt.Errorf("unknown billboard mode %q", d.Mode)
	}
	b := &scene.Billboard{Base: base, Mode: mode}
	if len(d.Axis) == 3 {
		b.Axis = math.Vec3{X: d.Axis[0], Y: d.Axis[1], Z: d.Axis[2]}
	}
	for _, p := range d.Positions {
		b.Positions = append(b.Positions, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
	}
	for _, dd := range d.Drawables {
		n, err := r.node(dd)
		if err != nil {
			return nil, err
		}
		g, ok := n.(*scene.Geometry)
		if !ok && n != nil {
			return nil, fmt.Errorf("billboard drawable %s is not a geometry", label(dd))
		}
		b.Drawables = append(b.Drawables, g)
	}
	return b, nil
}

var primitiveModes = map[string]scene.PrimitiveMode{
	"points":         scene.Points,
	"lines":          scene.Lines,
	"line_strip":     scene.LineStrip,
	"triangles":      scene.Triangles,
	"triangle_strip": scene.TriangleStrip,
	"triangle_fan":   scene.TriangleFan,
}

func geometry(base scene.Base, d *NodeDoc) (scene.Node, error) {
	g := &scene.Geometry{Base: base}
	var err error
	if g.Vertices, err = decodeArray(d.Vertices); err != nil {
		return nil, fmt.Errorf("vertices: %w", err)
	}
	if g.Normals, err = decodeArray(d.Normals); err != nil {
		return nil, fmt.Errorf("normals: %w", err)
	}
	if g.Colors, err = decodeArray(d.Colors); err != nil {
		return nil, fmt.Errorf("colors: %w", err)
	}
	for i, tc := range d.TexCoords {
		arr, err := decodeArray(tc)
		if err != nil {
			return nil, fmt.Errorf("texcoord %d: %w", i, err)
		}
		g.TexCoords = append(g.TexCoords, arr)
	}
	for slot, ad := range d.Attributes {
		arr, err := decodeArray(ad)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", slot, err)
		}
		g.SetVertexAttrib(slot, arr)
	}
	for _, p := range d.Primitives {
		mode, ok := primitiveModes[p.Mode]
		if !ok {
			return nil, fmt.Errorf("unknown primitive mode %q", p.Mode)
		}
		if p.First < 0 || p.Count < 0 {
			return nil, fmt.Errorf("primitive %s: negative range first=%d count=%d", p.Mode, p.First, p.Count)
		}
		g.Primitives = append(g.Primitives, scene.PrimitiveSet{Mode: mode, First: p.First, Count: p.Count, Indices: p.Indices})
	}
	return g, nil
}

func (r *reader) state(d *StateDoc) (*scene.StateSet, error) {
	if d == nil {
		return nil, nil
	}
	if d.Ref != "" {
		s, ok := r.states[d.Ref]
		if !ok {
			return nil, fmt.Errorf("unknown state ref %q", d.Ref)
		}
		return s, nil
	}

	s := scene.NewStateSet()
	s.Name = d.Name
	for name, value := range d.Modes {
		mode, ok := stateModes[name]
		if !ok {
			return nil, fmt.Errorf("unknown mode %q", name)
		}
		v, err := parseModeValue(value)
		if err != nil {
			return nil, fmt.Errorf("mode %s: %w", name, err)
		}
		s.SetMode(mode, v)
	}

	if m := d.Material; m != nil {
		mat := scene.DefaultMaterial()
		var err error
		for _, c := range []struct {
			dst *math.Vec4
			src []float32
		}{
			{&mat.Ambient, m.Ambient},
			{&mat.Diffuse, m.Diffuse},
			{&mat.Specular, m.Specular},
			{&mat.Emission, m.Emission},
		} {
			if err = colour(c.dst, c.src); err != nil {
				return nil, fmt.Errorf("material: %w", err)
			}
		}
		mat.Shininess = m.Shininess
		s.Material = mat
	}

	for unit, t := range d.Textures {
		tex, err := texture(t)
		if err != nil {
			return nil, fmt.Errorf("texture %d: %w", unit, err)
		}
		s.SetTexture(unit, tex)
	}

	if d.ID != "" {
		if _, dup := r.states[d.ID]; dup {
			return nil, fmt.Errorf("duplicate state id %q", d.ID)
		}
		r.states[d.ID] = s
	}
	return s, nil
}

var stateModes = map[string]scene.Mode{
	"lighting":   scene.ModeLighting,
	"blend":      scene.ModeBlend,
	"cull_face":  scene.ModeCullFace,
	"depth_test": scene.ModeDepthTest,
}

func parseModeValue(s string) (scene.ModeValue, error) {
	var v scene.ModeValue
	for _, part := range strings.Split(s, "|") {
		switch strings.TrimSpace(part) {
		case "on":
			v |= scene.On
		case "off":
		case "override":
			v |= scene.Override
		case "protected":
			v |= scene.Protected
		default:
			return 0, fmt.Errorf("unknown mode value %q", part)
		}
	}
	return v, nil
}

func colour(dst *math.Vec4, src []float32) error {
	switch len(src) {
	case 0:
	case 3:
		*dst = math.Vec4{X: src[0], Y: src[1], Z: src[2], W: 1}
	case 4:
		*dst = math.Vec4{X: src[0], Y: src[1], Z: src[2], W: src[3]}
	default:
		return fmt.Errorf("colour needs 3 or 4 values, got %d", len(src))
	}
	return nil
}

var (
	wraps = map[string]scene.Wrap{
		"":              scene.WrapClampToEdge,
		"clamp_to_edge": scene.WrapClampToEdge,
		"repeat":        scene.WrapRepeat,
		"mirror":        scene.WrapMirror,
	}
	filters = map[string]scene.Filter{
		"":                     scene.FilterLinear,
		"linear":               scene.FilterLinear,
		"nearest":              scene.FilterNearest,
		"linear_mipmap_linear": scene.FilterLinearMipmapLinear,
	}
)

func texture(d *TextureDoc) (*scene.Texture, error) {
	if d == nil {
		return nil, fmt.Errorf("empty texture")
	}
	t := &scene.Texture{Image: d.Image, Width: d.Width, Height: d.Height}
	var ok bool
	if t.WrapS, ok = wraps[d.WrapS]; !ok {
		return nil, fmt.Errorf("unknown wrap %q", d.WrapS)
	}
	if t.WrapT, ok = wraps[d.WrapT]; !ok {
		return nil, fmt.Errorf("unknown wrap %q", d.WrapT)
	}
	if t.MinFilter, ok = filters[d.MinFilter]; !ok {
		return nil, fmt.Errorf("unknown filter %q", d.MinFilter)
	}
	if t.MagFilter, ok = filters[d.MagFilter]; !ok {
		return nil, fmt.Errorf("unknown filter %q", d.MagFilter)
	}
	return t, nil
}
