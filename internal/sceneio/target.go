package sceneio

// TargetDocument is the on-disk form of a converted graph. Pipelines and
// descriptor sets are listed once and referenced by id from state groups.
type TargetDocument struct {
	Format         string              `yaml:"format"`
	Pipelines      []*PipelineDoc      `yaml:"pipelines,omitempty"`
	DescriptorSets []*DescriptorSetDoc `yaml:"descriptor_sets,omitempty"`
	Images         []*ImageDoc         `yaml:"images,omitempty"`
	Root           *TargetNodeDoc      `yaml:"root"`
}

// PipelineDoc describes one graphics pipeline.
type PipelineDoc struct {
	ID            string             `yaml:"id"`
	Label         string             `yaml:"label,omitempty"`
	Topology      string             `yaml:"topology"`
	FrontFace     string             `yaml:"front_face"`
	CullMode      string             `yaml:"cull_mode"`
	DepthFormat   string             `yaml:"depth_format,omitempty"`
	Blend         bool               `yaml:"blend,omitempty"`
	VertexBuffers []VertexBufferDoc  `yaml:"vertex_buffers"`
	SetLayouts    [][]LayoutEntryDoc `yaml:"set_layouts"`
	Stages        []StageDoc         `yaml:"stages"`
}

// VertexBufferDoc is one vertex buffer layout with its single attribute.
type VertexBufferDoc struct {
	Location uint32 `yaml:"location"`
	Format   string `yaml:"format"`
	Stride   uint64 `yaml:"stride"`
	StepMode string `yaml:"step_mode"`
}

// LayoutEntryDoc is one descriptor binding of a set layout.
type LayoutEntryDoc struct {
	Binding uint32 `yaml:"binding"`
	Kind    string `yaml:"kind"`
	Size    uint64 `yaml:"size,omitempty"`
}

// StageDoc is a compiled shader stage. SPIRV is base64 encoded.
type StageDoc struct {
	Stage      string `yaml:"stage"`
	EntryPoint string `yaml:"entry_point"`
	SPIRV      string `yaml:"spirv"`
}

// DescriptorSetDoc is a bound descriptor set.
type DescriptorSetDoc struct {
	ID       string          `yaml:"id"`
	FirstSet uint32          `yaml:"first_set"`
	Buffers  []BufferDescDoc `yaml:"buffers,omitempty"`
	Images   []ImageDescDoc  `yaml:"images,omitempty"`
}

// BufferDescDoc is a uniform buffer. Data is base64 encoded.
type BufferDescDoc struct {
	Binding uint32 `yaml:"binding"`
	Data    string `yaml:"data"`
}

// ImageDoc is a referenced texture image, listed once per document.
type ImageDoc struct {
	ID     string `yaml:"id"`
	Path   string `yaml:"path"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Format string `yaml:"format"`
}

// ImageDescDoc is a texture binding: an image id and its sampler.
type ImageDescDoc struct {
	Binding        uint32 `yaml:"binding"`
	SamplerBinding uint32 `yaml:"sampler_binding"`
	Image          string `yaml:"image"`
	AddressU       string `yaml:"address_u"`
	AddressV       string `yaml:"address_v"`
	MinFilter      string `yaml:"min_filter"`
	MagFilter      string `yaml:"mag_filter"`
	MipmapFilter   string `yaml:"mipmap_filter"`
}

// TargetNodeDoc is one target node.
type TargetNodeDoc struct {
	ID     string            `yaml:"id,omitempty"`
	Ref    string            `yaml:"ref,omitempty"`
	Type   string            `yaml:"type,omitempty"`
	Values map[string]string `yaml:"values,omitempty"`

	Matrix   []float64        `yaml:"matrix,omitempty,flow"`
	State    []StateRefDoc    `yaml:"state,omitempty"`
	Sphere   *SphereDoc       `yaml:"bound_sphere,omitempty"`
	Levels   []LevelDoc       `yaml:"levels,omitempty"`
	Children []*TargetNodeDoc `yaml:"children,omitempty"`

	DatabasePath string `yaml:"database_path,omitempty"`

	Box      *BoxDoc      `yaml:"bound_box,omitempty"`
	Arrays   []*DataDoc   `yaml:"arrays,omitempty"`
	Indices  *DataDoc     `yaml:"indices,omitempty"`
	Draw     *DrawDoc     `yaml:"draw,omitempty"`
	Commands []CommandDoc `yaml:"commands,omitempty"`
}

// StateRefDoc references one state command of a state group.
type StateRefDoc struct {
	Pipeline      string `yaml:"pipeline,omitempty"`
	DescriptorSet string `yaml:"descriptor_set,omitempty"`
}

// SphereDoc is a bounding sphere.
type SphereDoc struct {
	Center [3]float64 `yaml:"center,flow"`
	Radius float64    `yaml:"radius"`
}

// BoxDoc is a bounding box.
type BoxDoc struct {
	Min [3]float32 `yaml:"min,flow"`
	Max [3]float32 `yaml:"max,flow"`
}

// LevelDoc is one LOD or paged LOD level.
type LevelDoc struct {
	Ratio    float64        `yaml:"min_screen_height_ratio"`
	Filename string         `yaml:"filename,omitempty"`
	Node     *TargetNodeDoc `yaml:"node,omitempty"`
}

// DataDoc is a vertex or index array.
type DataDoc struct {
	Format      string `yaml:"format"`
	Stride      int    `yaml:"stride"`
	Count       int    `yaml:"count"`
	PerInstance bool   `yaml:"per_instance,omitempty"`
	Values      any    `yaml:"values,flow"`
}

// DrawDoc holds the draw parameters of a vertex_index_draw node.
type DrawDoc struct {
	Topology      string `yaml:"topology"`
	IndexCount    uint32 `yaml:"index_count,omitempty"`
	VertexCount   uint32 `yaml:"vertex_count,omitempty"`
	InstanceCount uint32 `yaml:"instance_count"`
	FirstIndex    uint32 `yaml:"first_index,omitempty"`
	FirstVertex   uint32 `yaml:"first_vertex,omitempty"`
}

// CommandDoc is one recorded command.
type CommandDoc struct {
	Op           string     `yaml:"op"`
	FirstBinding uint32     `yaml:"first_binding,omitempty"`
	Arrays       []*DataDoc `yaml:"arrays,omitempty"`
	Indices      *DataDoc   `yaml:"indices,omitempty"`
	Draw         *DrawDoc   `yaml:"draw,omitempty"`
	VertexOffset int32      `yaml:"vertex_offset,omitempty"`
}
