package scene

import "github.com/Faultbox/scenebake/pkg/math"

// Mode is a fixed-function rendering mode toggled by a state set.
type Mode int

const (
	ModeLighting Mode = iota
	ModeBlend
	ModeCullFace
	ModeDepthTest
)

// ModeValue is the value of a mode, with inheritance flags.
type ModeValue uint8

const (
	Off ModeValue = 0x0
	On  ModeValue = 0x1
	// Override forces the value onto descendants.
	Override ModeValue = 0x2
	// Protected keeps a descendant's value even under an ancestor's Override.
	Protected ModeValue = 0x4
)

// Enabled reports whether the On bit is set.
func (v ModeValue) Enabled() bool {
	return v&On != 0
}

// Material holds fixed-function lighting coefficients.
type Material struct {
	Ambient   math.Vec4
	Diffuse   math.Vec4
	Specular  math.Vec4
	Emission  math.Vec4
	Shininess float32
}

// DefaultMaterial returns the fixed-function default material.
func DefaultMaterial() *Material {
	return &Material{
		Ambient:  math.Vec4{X: 0.2, Y: 0.2, Z: 0.2, W: 1},
		Diffuse:  math.Vec4{X: 0.8, Y: 0.8, Z: 0.8, W: 1},
		Specular: math.Vec4{W: 1},
		Emission: math.Vec4{W: 1},
	}
}

// Wrap is a texture coordinate wrap mode.
type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
	WrapMirror
)

// Filter is a texture filter.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
	FilterLinearMipmapLinear
)

// Texture references an image and its sampling parameters. Images are not decoded.
type Texture struct {
	Image     string
	Width     int
	Height    int
	WrapS     Wrap
	WrapT     Wrap
	MinFilter Filter
	MagFilter Filter
}

// StateSet is the rendering state attached to a node. State sets are compared by
// identity; two equal-looking sets are distinct materials.
type StateSet struct {
	Name     string
	Modes    map[Mode]ModeValue
	Material *Material
	// Textures maps texture unit to texture.
	Textures map[int]*Texture
}

// NewStateSet returns an empty state set.
func NewStateSet() *StateSet {
	return &StateSet{
		Modes:    make(map[Mode]ModeValue),
		Textures: make(map[int]*Texture),
	}
}

// SetMode sets a mode value and returns the state set for chaining.
func (s *StateSet) SetMode(m Mode, v ModeValue) *StateSet {
	if s.Modes == nil {
		s.Modes = make(map[Mode]ModeValue)
	}
	s.Modes[m] = v
	return s
}

// SetTexture binds a texture to a unit and returns the state set for chaining.
func (s *StateSet) SetTexture(unit int, tex *Texture) *StateSet {
	if s.Textures == nil {
		s.Textures = make(map[int]*Texture)
	}
	s.Textures[unit] = tex
	return s
}

// ModeEnabled reports whether mode m is set and on.
func (s *StateSet) ModeEnabled(m Mode) bool {
	if s == nil {
		return false
	}
	return s.Modes[m].Enabled()
}

// Texture returns the texture bound to unit, or nil.
func (s *StateSet) Texture(unit int) *Texture {
	if s == nil {
		return nil
	}
	return s.Textures[unit]
}

// Empty reports whether the state set carries nothing.
func (s *StateSet) Empty() bool {
	return s == nil || (len(s.Modes) == 0 && s.Material == nil && len(s.Textures) == 0)
}

// Merge returns a new state set with child layered over parent. A parent mode
// flagged Override wins unless the child's value is Protected. Either argument
// may be nil.
func Merge(parent, child *StateSet) *StateSet {
	out := NewStateSet()
	if parent != nil {
		out.Name = parent.Name
		out.Material = parent.Material
		for m, v := range parent.Modes {
			out.Modes[m] = v
		}
		for u, t := range parent.Textures {
			out.Textures[u] = t
		}
	}
	if child == nil {
		return out
	}

	if child.Name != "" {
		out.Name = child.Name
	}
	if child.Material != nil {
		out.Material = child.Material
	}
	for m, v := range child.Modes {
		if pv, ok := out.Modes[m]; ok && pv&Override != 0 && v&Protected == 0 {
			continue
		}
		out.Modes[m] = v
	}
	for u, t := range child.Textures {
		out.Textures[u] = t
	}
	return out
}
