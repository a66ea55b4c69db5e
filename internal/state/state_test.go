package state

import (
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenebake/internal/convert"
	"github.com/Faultbox/scenebake/internal/shader"
	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

func layoutsFor(s convert.ShadingModes) []*target.DescriptorSetLayout {
	return shader.PipelineLayout(s).DescriptorSetLayouts
}

func TestBuildDescriptorSetMaterialAndTextures(t *testing.T) {
	state := scene.NewStateSet().
		SetTexture(0, &scene.Texture{Image: "bark.png", Width: 64, Height: 32, WrapS: scene.WrapRepeat, WrapT: scene.WrapMirror}).
		SetTexture(3, &scene.Texture{Image: "bark_n.png", MinFilter: scene.FilterNearest, MagFilter: scene.FilterNearest})
	state.Material = &scene.Material{Diffuse: math.Vec4{X: 1, W: 1}, Shininess: 8}

	shading := convert.Material | convert.DiffuseMap | convert.NormalMap
	conv := NewConverter(nil)
	set := conv.BuildDescriptorSet(layoutsFor(shading), state, shading)
	require.NotNil(t, set)
	require.Len(t, set.Descriptors, 3)

	buf, ok := set.Descriptors[0].(*target.DescriptorBuffer)
	require.True(t, ok)
	assert.Equal(t, shader.MaterialBinding, buf.DstBinding())
	assert.Len(t, buf.Data, shader.MaterialSize)

	diffuse, ok := set.Descriptors[1].(*target.DescriptorImage)
	require.True(t, ok)
	tex, smp := shader.TextureBinding(0)
	assert.Equal(t, tex, diffuse.Binding)
	assert.Equal(t, smp, diffuse.SamplerBinding)
	assert.Equal(t, &target.Image{Path: "bark.png", Width: 64, Height: 32, Format: gputypes.TextureFormatRGBA8Unorm}, diffuse.Image)
	assert.Equal(t, gputypes.AddressModeRepeat, diffuse.Sampler.AddressModeU)
	assert.Equal(t, gputypes.AddressModeMirrorRepeat, diffuse.Sampler.AddressModeV)
	assert.Equal(t, gputypes.FilterModeLinear, diffuse.Sampler.MinFilter)

	normal, ok := set.Descriptors[2].(*target.DescriptorImage)
	require.True(t, ok)
	tex, _ = shader.TextureBinding(3)
	assert.Equal(t, tex, normal.Binding)
	assert.Equal(t, gputypes.FilterModeNearest, normal.Sampler.MagFilter)
	assert.Equal(t, gputypes.MipmapFilterModeNearest, normal.Sampler.MipmapFilter)
}

func TestBuildDescriptorSetSharesTextureImages(t *testing.T) {
	bark := &scene.Texture{Image: "bark.png", Width: 64, Height: 64}
	leaves := &scene.Texture{Image: "bark.png", Width: 64, Height: 64}

	rough := scene.NewStateSet().SetTexture(0, bark)
	rough.Material = &scene.Material{Shininess: 2}
	shiny := scene.NewStateSet().SetTexture(0, bark)
	shiny.Material = &scene.Material{Shininess: 64}
	other := scene.NewStateSet().SetTexture(0, leaves)

	shading := convert.Material | convert.DiffuseMap
	conv := NewConverter(nil)
	image := func(state *scene.StateSet) *target.Image {
		set := conv.BuildDescriptorSet(layoutsFor(shading), state, shading)
		require.NotNil(t, set)
		for _, d := range set.Descriptors {
			if img, ok := d.(*target.DescriptorImage); ok {
				return img.Image
			}
		}
		t.Fatal("no image descriptor")
		return nil
	}

	first := image(rough)
	assert.Same(t, first, image(shiny), "one texture, one image")
	assert.NotSame(t, first, image(other), "images are shared per texture, not per path")

	// a fresh converter starts a fresh run
	assert.NotSame(t, first, NewConverter(nil).Image(bark))
}

func TestBuildDescriptorSetDefaultsMaterial(t *testing.T) {
	// Material forced by an override mask with no material on the state
	state := scene.NewStateSet().SetMode(scene.ModeLighting, scene.On)
	set := NewConverter(nil).BuildDescriptorSet(layoutsFor(convert.Material), state, convert.Material)
	require.NotNil(t, set)
	require.Len(t, set.Descriptors, 1)

	buf := set.Descriptors[0].(*target.DescriptorBuffer)
	assert.Equal(t, EncodeMaterial(scene.DefaultMaterial()), buf.Data)
}

func TestBuildDescriptorSetEmpty(t *testing.T) {
	conv := NewConverter(nil)

	assert.Nil(t, conv.BuildDescriptorSet(layoutsFor(convert.Material), nil, convert.Material))
	assert.Nil(t, conv.BuildDescriptorSet(nil, scene.NewStateSet(), convert.Material))

	// Layout expects a diffuse map but the state has none bound
	state := scene.NewStateSet().SetMode(scene.ModeBlend, scene.On)
	assert.Nil(t, conv.BuildDescriptorSet(layoutsFor(convert.DiffuseMap), state, convert.DiffuseMap))

	// No bindings at all
	assert.Nil(t, conv.BuildDescriptorSet(layoutsFor(convert.Lighting), state, convert.Lighting))
}

func TestEncodeMaterial(t *testing.T) {
	m := &scene.Material{
		Ambient:   math.Vec4{X: 0.1, Y: 0.2, Z: 0.3, W: 1},
		Emission:  math.Vec4{W: 0.5},
		Shininess: 32,
	}
	data := EncodeMaterial(m)
	require.Len(t, data, shader.MaterialSize)

	f := func(i int) float32 {
		return math32.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	assert.Equal(t, float32(0.2), f(1))
	assert.Equal(t, float32(1), f(3))
	assert.Equal(t, float32(0.5), f(15))
	assert.Equal(t, float32(32), f(16))
	assert.Equal(t, float32(0), f(19))
}
