package target

import "github.com/gogpu/gputypes"

// ShaderStage is one compiled shader module of a pipeline.
type ShaderStage struct {
	Stage      gputypes.ShaderStage
	EntryPoint string
	// Source is the WGSL the module was compiled from.
	Source string
	// SPIRV is the compiled module as little-endian words.
	SPIRV []uint32
}

// DescriptorSetLayout lists the bindings of one descriptor set.
type DescriptorSetLayout struct {
	Bindings []gputypes.BindGroupLayoutEntry
}

// Binding returns the layout entry for binding, if present.
func (l *DescriptorSetLayout) Binding(binding uint32) (gputypes.BindGroupLayoutEntry, bool) {
	for _, b := range l.Bindings {
		if b.Binding == binding {
			return b, true
		}
	}
	return gputypes.BindGroupLayoutEntry{}, false
}

// PipelineLayout lists the descriptor-set layouts and push constants a pipeline uses.
type PipelineLayout struct {
	DescriptorSetLayouts []*DescriptorSetLayout
	PushConstantRanges   []gputypes.PushConstantRange
}

// GraphicsPipeline is a fully described graphics pipeline.
type GraphicsPipeline struct {
	Label         string
	Layout        *PipelineLayout
	Stages        []*ShaderStage
	VertexBuffers []gputypes.VertexBufferLayout
	Primitive     gputypes.PrimitiveState
	DepthStencil  *gputypes.DepthStencilState
	// Blend is nil for opaque pipelines.
	Blend *gputypes.BlendState
}

// BindGraphicsPipeline binds a pipeline. Instances are shared between every state
// group that needs the same pipeline.
type BindGraphicsPipeline struct {
	Pipeline *GraphicsPipeline
}

// Descriptor is one bound resource of a descriptor set.
type Descriptor interface {
	DstBinding() uint32
}

// DescriptorBuffer is a uniform buffer descriptor.
type DescriptorBuffer struct {
	Binding uint32
	Data    []byte
}

// DstBinding returns the binding the buffer is written to.
func (d *DescriptorBuffer) DstBinding() uint32 { return d.Binding }

// Image references texture pixels by path; pixel decoding happens at load time.
type Image struct {
	Path   string
	Width  int
	Height int
	Format gputypes.TextureFormat
}

// DescriptorImage is a combined image and sampler descriptor. Descriptors
// built from the same texture share one Image.
type DescriptorImage struct {
	Binding uint32
	// SamplerBinding is the binding of the paired sampler.
	SamplerBinding uint32
	Image          *Image
	Sampler        gputypes.SamplerDescriptor
}

// DstBinding returns the binding the image is written to.
func (d *DescriptorImage) DstBinding() uint32 { return d.Binding }

// DescriptorSet is a set of descriptors matching a layout.
type DescriptorSet struct {
	Layout      *DescriptorSetLayout
	Descriptors []Descriptor
}

// BindDescriptorSet binds Set at index FirstSet of Layout.
type BindDescriptorSet struct {
	BindPoint string
	Layout    *PipelineLayout
	FirstSet  uint32
	Set       *DescriptorSet
}

// BindPointGraphics is the bind point used for graphics pipelines.
const BindPointGraphics = "graphics"
