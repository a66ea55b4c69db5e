package shader

import (
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/scenebake/internal/convert"
	"github.com/Faultbox/scenebake/pkg/target"
)

// Descriptor-set indices of the pipeline layout.
const (
	// MaterialSet holds the material uniform and texture maps.
	MaterialSet = 0
	// CameraSet holds the projection and modelview matrices; the renderer binds it.
	CameraSet = 1
)

// MaterialBinding is the binding of the material uniform in MaterialSet.
const MaterialBinding uint32 = 0

// MaterialSize is the size in bytes of the material uniform block: four vec4
// colours and a float shininess, padded to 16 bytes.
const MaterialSize = 80

// TextureBinding returns the texture and sampler bindings used for unit.
func TextureBinding(unit int) (texture, sampler uint32) {
	return uint32(1 + 2*unit), uint32(2 + 2*unit)
}

// TextureUnit is the inverse of TextureBinding for texture bindings.
func TextureUnit(binding uint32) (int, bool) {
	if binding == 0 || binding%2 == 0 {
		return 0, false
	}
	return int(binding-1) / 2, true
}

var mapNames = map[convert.ShadingModes]string{
	convert.DiffuseMap:  "diffuse",
	convert.OpacityMap:  "opacity",
	convert.AmbientMap:  "ambient",
	convert.NormalMap:   "normal",
	convert.SpecularMap: "specular",
}

type vertexInput struct {
	Location uint32
	Name     string
	Type     string
	Format   gputypes.VertexFormat
	Stride   uint64
	// Overall inputs hold one element shared by every vertex.
	Overall  bool
	Instance bool
}

type textureSlot struct {
	Name           string
	Unit           int
	Binding        uint32
	SamplerBinding uint32
}

// permutation is the template data for one mask pair.
type permutation struct {
	Masks       convert.MaskPair
	CameraGroup int

	Inputs    []vertexInput
	Normal    bool
	Color     bool
	TexCoord  bool
	Translate bool

	Lighting    bool
	Material    bool
	Billboard   bool
	DiffuseMap  bool
	OpacityMap  bool
	AmbientMap  bool
	NormalMap   bool
	SpecularMap bool

	MaterialBinding uint32
	Textures        []textureSlot
}

func newPermutation(masks convert.MaskPair) permutation {
	s, g := masks.Shading, masks.Geometry
	p := permutation{
		Masks:           masks,
		CameraGroup:     CameraSet,
		Inputs:          vertexInputs(g),
		Normal:          g&(convert.Normal|convert.NormalOverall) != 0,
		Color:           g&(convert.Color|convert.ColorOverall) != 0,
		TexCoord:        g&convert.TexCoord0 != 0,
		Translate:       g&(convert.Translate|convert.TranslateOverall) != 0,
		Lighting:        s&convert.Lighting != 0,
		Material:        s&convert.Material != 0,
		Billboard:       s&convert.Billboard != 0,
		DiffuseMap:      s&convert.DiffuseMap != 0,
		OpacityMap:      s&convert.OpacityMap != 0,
		AmbientMap:      s&convert.AmbientMap != 0,
		NormalMap:       s&convert.NormalMap != 0,
		SpecularMap:     s&convert.SpecularMap != 0,
		MaterialBinding: MaterialBinding,
	}
	for unit, mode := range convert.TextureMaps {
		if s&mode == 0 {
			continue
		}
		tex, smp := TextureBinding(unit)
		p.Textures = append(p.Textures, textureSlot{Name: mapNames[mode], Unit: unit, Binding: tex, SamplerBinding: smp})
	}
	return p
}

// vertexInputs lists the vertex inputs in the order the geometry converter
// emits arrays. Position is always present.
func vertexInputs(g convert.Attributes) []vertexInput {
	inputs := []vertexInput{{Name: "position", Type: "vec3<f32>", Format: gputypes.VertexFormatFloat32x3, Stride: 12}}

	add := func(perVertex, overall convert.Attributes, name, typ string, format gputypes.VertexFormat, stride uint64) {
		if g&(perVertex|overall) == 0 {
			return
		}
		inputs = append(inputs, vertexInput{
			Location: uint32(len(inputs)),
			Name:     name,
			Type:     typ,
			Format:   format,
			Stride:   stride,
			Overall:  g&perVertex == 0,
		})
	}
	add(convert.Normal, convert.NormalOverall, "normal", "vec3<f32>", gputypes.VertexFormatFloat32x3, 12)
	add(convert.Tangent, convert.TangentOverall, "tangent", "vec4<f32>", gputypes.VertexFormatFloat32x4, 16)
	add(convert.Color, convert.ColorOverall, "color", "vec4<f32>", gputypes.VertexFormatFloat32x4, 16)
	add(convert.TexCoord0, 0, "texcoord0", "vec2<f32>", gputypes.VertexFormatFloat32x2, 8)
	add(convert.TexCoord1, 0, "texcoord1", "vec2<f32>", gputypes.VertexFormatFloat32x2, 8)
	add(convert.TexCoord2, 0, "texcoord2", "vec2<f32>", gputypes.VertexFormatFloat32x2, 8)
	add(convert.Translate, convert.TranslateOverall, "translate", "vec3<f32>", gputypes.VertexFormatFloat32x3, 12)

	// Overall translations advance per instance rather than staying constant.
	last := &inputs[len(inputs)-1]
	if last.Name == "translate" && last.Overall {
		last.Overall = false
		last.Instance = true
	}
	return inputs
}

// VertexBuffers returns one buffer layout per vertex input of g. Overall
// attributes use a zero stride; overall translations step per instance.
func VertexBuffers(g convert.Attributes) []gputypes.VertexBufferLayout {
	inputs := vertexInputs(g)
	layouts := make([]gputypes.VertexBufferLayout, 0, len(inputs))
	for _, in := range inputs {
		layout := gputypes.VertexBufferLayout{
			ArrayStride: in.Stride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{{
				Format:         in.Format,
				Offset:         0,
				ShaderLocation: in.Location,
			}},
		}
		switch {
		case in.Instance:
			layout.StepMode = gputypes.VertexStepModeInstance
		case in.Overall:
			layout.ArrayStride = 0
		}
		layouts = append(layouts, layout)
	}
	return layouts
}

// MaterialLayout returns the layout of MaterialSet for shading modes s.
func MaterialLayout(s convert.ShadingModes) *target.DescriptorSetLayout {
	layout := &target.DescriptorSetLayout{}
	if s&convert.Material != 0 {
		layout.Bindings = append(layout.Bindings, gputypes.BindGroupLayoutEntry{
			Binding:    MaterialBinding,
			Visibility: gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: MaterialSize,
			},
		})
	}
	for unit, mode := range convert.TextureMaps {
		if s&mode == 0 {
			continue
		}
		tex, smp := TextureBinding(unit)
		layout.Bindings = append(layout.Bindings,
			gputypes.BindGroupLayoutEntry{
				Binding:    tex,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    smp,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	return layout
}

// CameraLayout returns the layout of CameraSet.
func CameraLayout() *target.DescriptorSetLayout {
	return &target.DescriptorSetLayout{Bindings: []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: 128,
		},
	}}}
}

// PipelineLayout returns the pipeline layout for shading modes s.
func PipelineLayout(s convert.ShadingModes) *target.PipelineLayout {
	return &target.PipelineLayout{
		DescriptorSetLayouts: []*target.DescriptorSetLayout{MaterialLayout(s), CameraLayout()},
	}
}
