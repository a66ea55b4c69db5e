package convert

import (
	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

// PipelineBuilder builds the pipeline for one mask pair.
type PipelineBuilder interface {
	BuildPipeline(masks MaskPair, vertexShaderPath, fragmentShaderPath string) (*target.BindGraphicsPipeline, error)
}

// StateConverter builds descriptor data for a state set. It returns nil when
// the state carries nothing the layouts can bind.
type StateConverter interface {
	BuildDescriptorSet(layouts []*target.DescriptorSetLayout, state *scene.StateSet, shading ShadingModes) *target.DescriptorSet
}

// GeometryConverter turns a drawable into a draw node of the requested form.
type GeometryConverter interface {
	ConvertGeometry(g *scene.Geometry, attrs Attributes, form GeometryTarget) target.Node
}

// PipelineBuilderFunc adapts a function to PipelineBuilder.
type PipelineBuilderFunc func(masks MaskPair, vertexShaderPath, fragmentShaderPath string) (*target.BindGraphicsPipeline, error)

// BuildPipeline calls f.
func (f PipelineBuilderFunc) BuildPipeline(masks MaskPair, vert, frag string) (*target.BindGraphicsPipeline, error) {
	return f(masks, vert, frag)
}

// StateConverterFunc adapts a function to StateConverter.
type StateConverterFunc func(layouts []*target.DescriptorSetLayout, state *scene.StateSet, shading ShadingModes) *target.DescriptorSet

// BuildDescriptorSet calls f.
func (f StateConverterFunc) BuildDescriptorSet(layouts []*target.DescriptorSetLayout, state *scene.StateSet, shading ShadingModes) *target.DescriptorSet {
	return f(layouts, state, shading)
}
