// Package sceneio reads source scene documents and writes converted target
// graphs as YAML.
//
// Any node or state set may carry an id; a later {ref: id} reuses it, which is
// how shared subgraphs are expressed. References must follow their definition
// in document order.
package sceneio

import "gopkg.in/yaml.v3"

// SourceFormat and TargetFormat identify document kinds.
const (
	SourceFormat = "scenebake-scene/1"
	TargetFormat = "scenebake-target/1"
)

// SceneDocument is the on-disk form of a source graph.
type SceneDocument struct {
	Format string   `yaml:"format"`
	Root   *NodeDoc `yaml:"root"`
}

// NodeDoc is one source node. Type selects which fields apply.
type NodeDoc struct {
	ID   string `yaml:"id,omitempty"`
	Ref  string `yaml:"ref,omitempty"`
	Type string `yaml:"type,omitempty"`
	Name string `yaml:"name,omitempty"`

	State    *StateDoc  `yaml:"state,omitempty"`
	Children []*NodeDoc `yaml:"children,omitempty"`

	// transform
	Matrix    []float64 `yaml:"matrix,omitempty,flow"`
	Translate []float64 `yaml:"translate,omitempty,flow"`

	// coordinate_system
	Format           string `yaml:"format,omitempty"`
	CoordinateSystem string `yaml:"coordinate_system,omitempty"`

	// terrain_tile
	Level int `yaml:"level,omitempty"`
	X     int `yaml:"x,omitempty"`
	Y     int `yaml:"y,omitempty"`

	// lod and paged_lod
	Ranges       [][2]float32 `yaml:"ranges,omitempty,flow"`
	RangeMode    string       `yaml:"range_mode,omitempty"`
	CenterMode   string       `yaml:"center_mode,omitempty"`
	Center       []float64    `yaml:"center,omitempty,flow"`
	Radius       float64      `yaml:"radius,omitempty"`
	Filenames    []string     `yaml:"filenames,omitempty"`
	DatabasePath string       `yaml:"database_path,omitempty"`

	// billboard
	Mode      string       `yaml:"mode,omitempty"`
	Axis      []float32    `yaml:"axis,omitempty,flow"`
	Drawables []*NodeDoc   `yaml:"drawables,omitempty"`
	Positions [][3]float32 `yaml:"positions,omitempty,flow"`

	// geometry
	Vertices   *ArrayDoc         `yaml:"vertices,omitempty"`
	Normals    *ArrayDoc         `yaml:"normals,omitempty"`
	Colors     *ArrayDoc         `yaml:"colors,omitempty"`
	TexCoords  []*ArrayDoc       `yaml:"texcoords,omitempty"`
	Attributes map[int]*ArrayDoc `yaml:"attributes,omitempty"`
	Primitives []PrimitiveDoc    `yaml:"primitives,omitempty"`
}

// ArrayDoc is a typed array. Data holds one scalar or one list per element.
type ArrayDoc struct {
	Type    string    `yaml:"type"`
	Binding string    `yaml:"binding,omitempty"`
	Data    yaml.Node `yaml:"data"`
}

// PrimitiveDoc is one primitive set; Indices selects indexed drawing.
type PrimitiveDoc struct {
	Mode    string   `yaml:"mode"`
	First   int      `yaml:"first,omitempty"`
	Count   int      `yaml:"count,omitempty"`
	Indices []uint32 `yaml:"indices,omitempty,flow"`
}

// StateDoc is a state set. Mode values are "on" or "off", optionally joined
// with "override" and "protected" by '|'.
type StateDoc struct {
	ID       string              `yaml:"id,omitempty"`
	Ref      string              `yaml:"ref,omitempty"`
	Name     string              `yaml:"name,omitempty"`
	Modes    map[string]string   `yaml:"modes,omitempty"`
	Material *MaterialDoc        `yaml:"material,omitempty"`
	Textures map[int]*TextureDoc `yaml:"textures,omitempty"`
}

// MaterialDoc holds RGBA colours and a shininess exponent.
type MaterialDoc struct {
	Ambient   []float32 `yaml:"ambient,omitempty,flow"`
	Diffuse   []float32 `yaml:"diffuse,omitempty,flow"`
	Specular  []float32 `yaml:"specular,omitempty,flow"`
	Emission  []float32 `yaml:"emission,omitempty,flow"`
	Shininess float32   `yaml:"shininess,omitempty"`
}

// TextureDoc references an image file.
type TextureDoc struct {
	Image     string `yaml:"image"`
	Width     int    `yaml:"width,omitempty"`
	Height    int    `yaml:"height,omitempty"`
	WrapS     string `yaml:"wrap_s,omitempty"`
	WrapT     string `yaml:"wrap_t,omitempty"`
	MinFilter string `yaml:"min_filter,omitempty"`
	MagFilter string `yaml:"mag_filter,omitempty"`
}
