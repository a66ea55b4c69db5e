package convert

import (
	"fmt"
	"strings"

	"github.com/Faultbox/scenebake/pkg/scene"
)

// ShadingModes is a bitmask of shading features a pipeline must support.
type ShadingModes uint32

const (
	Lighting ShadingModes = 1 << iota
	Material
	Blend
	Billboard
	DiffuseMap
	OpacityMap
	AmbientMap
	NormalMap
	SpecularMap
	ShaderTranslate

	NoShadingModes  ShadingModes = 0
	AllShadingModes              = Lighting | Material | Blend | Billboard | DiffuseMap | OpacityMap |
		AmbientMap | NormalMap | SpecularMap | ShaderTranslate
)

// TextureMaps lists the texture-map modes in texture unit order.
var TextureMaps = []ShadingModes{DiffuseMap, OpacityMap, AmbientMap, NormalMap, SpecularMap}

// Attributes is a bitmask of vertex attributes present on a geometry.
type Attributes uint32

const (
	Vertex Attributes = 1 << iota
	Normal
	NormalOverall
	Tangent
	TangentOverall
	Color
	ColorOverall
	TexCoord0
	TexCoord1
	TexCoord2
	Translate
	TranslateOverall

	NoAttributes  Attributes = 0
	AllAttributes            = Vertex | Normal | NormalOverall | Tangent | TangentOverall | Color | ColorOverall |
		TexCoord0 | TexCoord1 | TexCoord2 | Translate | TranslateOverall
)

// MaskPair identifies one pipeline permutation.
type MaskPair struct {
	Shading  ShadingModes
	Geometry Attributes
}

func (m MaskPair) String() string {
	return fmt.Sprintf("%s/%s", m.Shading, m.Geometry)
}

var shadingModeNames = []struct {
	mode ShadingModes
	name string
}{
	{Lighting, "lighting"},
	{Material, "material"},
	{Blend, "blend"},
	{Billboard, "billboard"},
	{DiffuseMap, "diffuse_map"},
	{OpacityMap, "opacity_map"},
	{AmbientMap, "ambient_map"},
	{NormalMap, "normal_map"},
	{SpecularMap, "specular_map"},
	{ShaderTranslate, "shader_translate"},
}

var attributeNames = []struct {
	attr Attributes
	name string
}{
	{Vertex, "vertex"},
	{Normal, "normal"},
	{NormalOverall, "normal_overall"},
	{Tangent, "tangent"},
	{TangentOverall, "tangent_overall"},
	{Color, "color"},
	{ColorOverall, "color_overall"},
	{TexCoord0, "texcoord0"},
	{TexCoord1, "texcoord1"},
	{TexCoord2, "texcoord2"},
	{Translate, "translate"},
	{TranslateOverall, "translate_overall"},
}

// Names returns the names of the set bits in declaration order.
func (m ShadingModes) Names() []string {
	var out []string
	for _, e := range shadingModeNames {
		if m&e.mode != 0 {
			out = append(out, e.name)
		}
	}
	return out
}

func (m ShadingModes) String() string {
	if m == NoShadingModes {
		return "none"
	}
	return strings.Join(m.Names(), "|")
}

// Names returns the names of the set bits in declaration order.
func (a Attributes) Names() []string {
	var out []string
	for _, e := range attributeNames {
		if a&e.attr != 0 {
			out = append(out, e.name)
		}
	}
	return out
}

func (a Attributes) String() string {
	if a == NoAttributes {
		return "none"
	}
	return strings.Join(a.Names(), "|")
}

// ParseShadingModes parses mode names. "all" and "none" are accepted.
func ParseShadingModes(names []string) (ShadingModes, error) {
	var m ShadingModes
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "", "none":
			continue
		case "all":
			m |= AllShadingModes
			continue
		}
		found := false
		for _, e := range shadingModeNames {
			if e.name == name {
				m |= e.mode
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown shading mode %q", raw)
		}
	}
	return m, nil
}

// ParseAttributes parses attribute names. "all" and "none" are accepted.
func ParseAttributes(names []string) (Attributes, error) {
	var a Attributes
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "", "none":
			continue
		case "all":
			a |= AllAttributes
			continue
		}
		found := false
		for _, e := range attributeNames {
			if e.name == name {
				a |= e.attr
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown geometry attribute %q", raw)
		}
	}
	return a, nil
}

// StateShadingModes returns the shading modes a single state set asks for.
func StateShadingModes(s *scene.StateSet) ShadingModes {
	if s == nil {
		return NoShadingModes
	}

	var m ShadingModes
	if s.ModeEnabled(scene.ModeLighting) {
		m |= Lighting
	}
	if s.Material != nil {
		m |= Material
	}
	if s.ModeEnabled(scene.ModeBlend) {
		m |= Blend
	}
	for unit, mode := range TextureMaps {
		if s.Texture(unit) != nil {
			m |= mode
		}
	}
	return m
}

// GeometryAttributes returns the attribute mask of g's arrays. Arrays bound
// overall set the *Overall bit instead of the per-vertex one.
func GeometryAttributes(g *scene.Geometry) Attributes {
	if g == nil {
		return NoAttributes
	}

	var a Attributes
	if g.Vertices != nil {
		a |= Vertex
	}
	a |= bindingBit(g.Normals, Normal, NormalOverall)
	a |= bindingBit(g.Colors, Color, ColorOverall)
	a |= bindingBit(g.VertexAttrib(scene.TangentAttribSlot), Tangent, TangentOverall)
	a |= bindingBit(g.VertexAttrib(scene.TranslateAttribSlot), Translate, TranslateOverall)

	for unit, bit := range []Attributes{TexCoord0, TexCoord1, TexCoord2} {
		if g.TexCoord(unit) != nil {
			a |= bit
		}
	}
	return a
}

func bindingBit(arr scene.Array, perVertex, overall Attributes) Attributes {
	if arr == nil {
		return 0
	}
	switch arr.Binding() {
	case scene.BindOff:
		return 0
	case scene.BindOverall:
		return overall
	default:
		return perVertex
	}
}

// MaskInputs are the caller-configured masks combined with the state-derived ones.
type MaskInputs struct {
	OverrideShading     ShadingModes
	NodeShading         ShadingModes
	SupportedShading    ShadingModes
	OverrideAttributes  Attributes
	SupportedAttributes Attributes
}

// CalculateMasks derives the mask pair for g under the given state pair.
// A nil pair means the state stack is empty.
func CalculateMasks(pair *StatePair, g *scene.Geometry, in MaskInputs) MaskPair {
	shading := NoShadingModes
	if pair != nil {
		shading = StateShadingModes(pair.Local) | StateShadingModes(pair.Accumulated)
	}
	return MaskPair{
		Shading:  (shading | in.OverrideShading | in.NodeShading) & in.SupportedShading,
		Geometry: (GeometryAttributes(g) | in.OverrideAttributes) & in.SupportedAttributes,
	}
}
