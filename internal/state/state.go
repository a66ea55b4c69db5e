// Package state converts scene state sets into descriptor sets for the
// material group of generated pipelines.
package state

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"go.uber.org/zap"

	"github.com/Faultbox/scenebake/internal/convert"
	"github.com/Faultbox/scenebake/internal/shader"
	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

// Converter implements convert.StateConverter. It remembers the image made for
// each texture so materials sharing a texture share the image; use one
// Converter per conversion run and not from several goroutines.
type Converter struct {
	log    *zap.Logger
	images map[*scene.Texture]*target.Image
	// ImageFormat is the format recorded for every referenced image.
	ImageFormat gputypes.TextureFormat
	// MaxAnisotropy is copied into every sampler.
	MaxAnisotropy uint16
}

// NewConverter creates a Converter logging to log.
func NewConverter(log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		log:           log,
		images:        make(map[*scene.Texture]*target.Image),
		ImageFormat:   gputypes.TextureFormatRGBA8Unorm,
		MaxAnisotropy: 1,
	}
}

// BuildDescriptorSet fills the material layout from state. Bindings the state
// cannot supply are left out; nil is returned when nothing is bound.
func (c *Converter) BuildDescriptorSet(layouts []*target.DescriptorSetLayout, state *scene.StateSet, shading convert.ShadingModes) *target.DescriptorSet {
	if state == nil || len(layouts) <= shader.MaterialSet {
		return nil
	}
	layout := layouts[shader.MaterialSet]
	if layout == nil {
		return nil
	}

	set := &target.DescriptorSet{Layout: layout}
	for _, entry := range layout.Bindings {
		switch {
		case entry.Buffer != nil && entry.Binding == shader.MaterialBinding:
			if shading&convert.Material == 0 {
				continue
			}
			mat := state.Material
			if mat == nil {
				mat = scene.DefaultMaterial()
			}
			set.Descriptors = append(set.Descriptors, &target.DescriptorBuffer{
				Binding: entry.Binding,
				Data:    EncodeMaterial(mat),
			})

		case entry.Texture != nil:
			unit, ok := shader.TextureUnit(entry.Binding)
			if !ok {
				continue
			}
			tex := state.Texture(unit)
			if tex == nil {
				c.log.Debug("texture unit unbound", zap.Int("unit", unit))
				continue
			}
			_, samplerBinding := shader.TextureBinding(unit)
			set.Descriptors = append(set.Descriptors, &target.DescriptorImage{
				Binding:        entry.Binding,
				SamplerBinding: samplerBinding,
				Image:          c.Image(tex),
				Sampler:        c.Sampler(tex),
			})
		}
	}

	if len(set.Descriptors) == 0 {
		return nil
	}
	return set
}

// Image returns the image for tex, creating it on first use.
func (c *Converter) Image(tex *scene.Texture) *target.Image {
	if img, ok := c.images[tex]; ok {
		return img
	}
	img := &target.Image{
		Path:   tex.Image,
		Width:  tex.Width,
		Height: tex.Height,
		Format: c.ImageFormat,
	}
	c.images[tex] = img
	return img
}

// Sampler maps the texture's wrap and filter settings.
func (c *Converter) Sampler(tex *scene.Texture) gputypes.SamplerDescriptor {
	minFilter, mip := filterMode(tex.MinFilter)
	mag, _ := filterMode(tex.MagFilter)
	desc := gputypes.SamplerDescriptor{
		AddressModeU:  addressMode(tex.WrapS),
		AddressModeV:  addressMode(tex.WrapT),
		AddressModeW:  gputypes.AddressModeClampToEdge,
		MagFilter:     mag,
		MinFilter:     minFilter,
		MipmapFilter:  mip,
		LodMaxClamp:   32,
		MaxAnisotropy: c.MaxAnisotropy,
	}
	if tex.Image != "" {
		desc.Label = tex.Image
	}
	return desc
}

func addressMode(w scene.Wrap) gputypes.AddressMode {
	switch w {
	case scene.WrapRepeat:
		return gputypes.AddressModeRepeat
	case scene.WrapMirror:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

func filterMode(f scene.Filter) (gputypes.FilterMode, gputypes.MipmapFilterMode) {
	switch f {
	case scene.FilterNearest:
		return gputypes.FilterModeNearest, gputypes.MipmapFilterModeNearest
	case scene.FilterLinearMipmapLinear:
		return gputypes.FilterModeLinear, gputypes.MipmapFilterModeLinear
	default:
		return gputypes.FilterModeLinear, gputypes.MipmapFilterModeNearest
	}
}

// EncodeMaterial lays out m as the material uniform block: ambient, diffuse,
// specular and emission colours followed by shininess, little endian.
func EncodeMaterial(m *scene.Material) []byte {
	buf := make([]byte, shader.MaterialSize)
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math32.Float32bits(v))
		off += 4
	}
	for _, c := range []math.Vec4{m.Ambient, m.Diffuse, m.Specular, m.Emission} {
		put(c.X)
		put(c.Y)
		put(c.Z)
		put(c.W)
	}
	put(m.Shininess)
	return buf
}
