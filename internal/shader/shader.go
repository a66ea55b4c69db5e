// Package shader builds graphics pipelines for mask pairs. Vertex and fragment
// WGSL is rendered from templates and compiled to SPIR-V with naga.
package shader

import (
	"bytes"
	"embed"
	"encoding/binary"
	"fmt"
	"os"
	"text/template"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"go.uber.org/zap"

	"github.com/Faultbox/scenebake/internal/convert"
	"github.com/Faultbox/scenebake/pkg/target"
)

//go:embed templates/*.wgsl
var templates embed.FS

// Entry points of the generated modules.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// Builder implements convert.PipelineBuilder.
type Builder struct {
	log *zap.Logger
	// DepthFormat is the depth attachment format pipelines are built for.
	DepthFormat gputypes.TextureFormat
	// Validate runs naga IR validation before SPIR-V generation.
	Validate bool

	// parsed templates by path; "" is the embedded one
	vertex   map[string]*template.Template
	fragment map[string]*template.Template
}

// NewBuilder creates a Builder logging to log.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		log:         log,
		DepthFormat: gputypes.TextureFormatDepth32Float,
		Validate:    true,
		vertex:      make(map[string]*template.Template),
		fragment:    make(map[string]*template.Template),
	}
}

// BuildPipeline renders, compiles and describes the pipeline for masks. Empty
// paths select the embedded templates.
func (b *Builder) BuildPipeline(masks convert.MaskPair, vertPath, fragPath string) (*target.BindGraphicsPipeline, error) {
	perm := newPermutation(masks)

	vertSrc, err := b.render(b.vertex, vertPath, "scene.vert.wgsl", perm)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	fragSrc, err := b.render(b.fragment, fragPath, "scene.frag.wgsl", perm)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}

	vert, err := b.compile(vertSrc, gputypes.ShaderStageVertex, VertexEntryPoint)
	if err != nil {
		return nil, fmt.Errorf("vertex shader %s: %w", masks, err)
	}
	frag, err := b.compile(fragSrc, gputypes.ShaderStageFragment, FragmentEntryPoint)
	if err != nil {
		return nil, fmt.Errorf("fragment shader %s: %w", masks, err)
	}

	depth := gputypes.DefaultDepthStencilState(b.DepthFormat)
	pipeline := &target.GraphicsPipeline{
		Label:         masks.String(),
		Layout:        PipelineLayout(masks.Shading),
		Stages:        []*target.ShaderStage{vert, frag},
		VertexBuffers: VertexBuffers(masks.Geometry),
		Primitive:     primitiveState(masks.Shading),
		DepthStencil:  &depth,
	}
	if masks.Shading&convert.Blend != 0 {
		blend := gputypes.BlendStateAlpha()
		pipeline.Blend = &blend
	}

	b.log.Debug("pipeline compiled",
		zap.Stringer("masks", masks),
		zap.Int("vertex_words", len(vert.SPIRV)),
		zap.Int("fragment_words", len(frag.SPIRV)))

	return &target.BindGraphicsPipeline{Pipeline: pipeline}, nil
}

// Render returns the vertex and fragment WGSL for masks from the embedded templates.
func (b *Builder) Render(masks convert.MaskPair) (vertex, fragment string, err error) {
	perm := newPermutation(masks)
	if vertex, err = b.render(b.vertex, "", "scene.vert.wgsl", perm); err != nil {
		return "", "", err
	}
	if fragment, err = b.render(b.fragment, "", "scene.frag.wgsl", perm); err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}

func (b *Builder) render(cache map[string]*template.Template, path, embedded string, perm permutation) (string, error) {
	tmpl, ok := cache[path]
	if !ok {
		var src []byte
		var err error
		if path == "" {
			src, err = templates.ReadFile("templates/" + embedded)
		} else {
			src, err = os.ReadFile(path)
		}
		if err != nil {
			return "", fmt.Errorf("read template: %w", err)
		}

		name := path
		if name == "" {
			name = embedded
		}
		tmpl, err = template.New(name).Parse(string(src))
		if err != nil {
			return "", fmt.Errorf("parse template %s: %w", name, err)
		}
		cache[path] = tmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, perm); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// compile compiles WGSL to a shader stage.
func (b *Builder) compile(source string, stage gputypes.ShaderStage, entry string) (*target.ShaderStage, error) {
	opts := naga.DefaultOptions()
	opts.Validate = b.Validate

	spirv, err := naga.CompileWithOptions(source, opts)
	if err != nil {
		return nil, err
	}
	words, err := Words(spirv)
	if err != nil {
		return nil, err
	}

	return &target.ShaderStage{
		Stage:      stage,
		EntryPoint: entry,
		Source:     source,
		SPIRV:      words,
	}, nil
}

// Words converts a little-endian SPIR-V byte stream to words and checks the
// module header.
func Words(spirv []byte) ([]uint32, error) {
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a multiple of 4", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	if len(words) == 0 || words[0] != spirvMagic {
		return nil, fmt.Errorf("invalid spir-v header")
	}
	return words, nil
}

func primitiveState(shading convert.ShadingModes) gputypes.PrimitiveState {
	state := gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeBack,
	}
	// Billboards are drawn double sided.
	if shading&convert.Billboard != 0 {
		state.CullMode = gputypes.CullModeNone
	}
	return state
}
