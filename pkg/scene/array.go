package scene

import "github.com/Faultbox/scenebake/pkg/math"

// ArrayType identifies the element type of a vertex array.
type ArrayType int

const (
	ByteArrayType ArrayType = iota
	ShortArrayType
	IntArrayType
	UByteArrayType
	UShortArrayType
	UIntArrayType
	FloatArrayType
	DoubleArrayType

	Vec2bArrayType
	Vec3bArrayType
	Vec4bArrayType
	Vec2sArrayType
	Vec3sArrayType
	Vec4sArrayType
	Vec2iArrayType
	Vec3iArrayType
	Vec4iArrayType

	Vec2ubArrayType
	Vec3ubArrayType
	Vec4ubArrayType
	Vec2usArrayType
	Vec3usArrayType
	Vec4usArrayType
	Vec2uiArrayType
	Vec3uiArrayType
	Vec4uiArrayType

	Vec2ArrayType
	Vec3ArrayType
	Vec4ArrayType
	Vec2dArrayType
	Vec3dArrayType
	Vec4dArrayType

	MatrixArrayType
	MatrixdArrayType
	QuatArrayType
	UInt64ArrayType
	Int64ArrayType
)

var arrayTypeNames = map[ArrayType]string{
	ByteArrayType:    "byte",
	ShortArrayType:   "short",
	IntArrayType:     "int",
	UByteArrayType:   "ubyte",
	UShortArrayType:  "ushort",
	UIntArrayType:    "uint",
	FloatArrayType:   "float",
	DoubleArrayType:  "double",
	Vec2bArrayType:   "vec2b",
	Vec3bArrayType:   "vec3b",
	Vec4bArrayType:   "vec4b",
	Vec2sArrayType:   "vec2s",
	Vec3sArrayType:   "vec3s",
	Vec4sArrayType:   "vec4s",
	Vec2iArrayType:   "vec2i",
	Vec3iArrayType:   "vec3i",
	Vec4iArrayType:   "vec4i",
	Vec2ubArrayType:  "vec2ub",
	Vec3ubArrayType:  "vec3ub",
	Vec4ubArrayType:  "vec4ub",
	Vec2usArrayType:  "vec2us",
	Vec3usArrayType:  "vec3us",
	Vec4usArrayType:  "vec4us",
	Vec2uiArrayType:  "vec2ui",
	Vec3uiArrayType:  "vec3ui",
	Vec4uiArrayType:  "vec4ui",
	Vec2ArrayType:    "vec2",
	Vec3ArrayType:    "vec3",
	Vec4ArrayType:    "vec4",
	Vec2dArrayType:   "vec2d",
	Vec3dArrayType:   "vec3d",
	Vec4dArrayType:   "vec4d",
	MatrixArrayType:  "mat4",
	MatrixdArrayType: "dmat4",
	QuatArrayType:    "quat",
	UInt64ArrayType:  "uint64",
	Int64ArrayType:   "int64",
}

// String returns the short type name used in scene files.
func (t ArrayType) String() string {
	if name, ok := arrayTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseArrayType is the inverse of ArrayType.String.
func ParseArrayType(name string) (ArrayType, bool) {
	for t, n := range arrayTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Binding says how often an array advances.
type Binding int

const (
	BindOff Binding = iota
	// BindOverall uses one value for the whole drawable (or per instance).
	BindOverall
	BindPerPrimitiveSet
	BindPerVertex
)

// Array is a typed vertex attribute array.
type Array interface {
	Type() ArrayType
	Len() int
	Binding() Binding
}

// TypedArray is an Array holding elements of type T.
type TypedArray[T any] struct {
	Kind     ArrayType
	Elements []T
	Bind     Binding
}

// NewArray creates an array of kind holding elems, bound per vertex.
func NewArray[T any](kind ArrayType, elems []T) *TypedArray[T] {
	return &TypedArray[T]{Kind: kind, Elements: elems, Bind: BindPerVertex}
}

// Type returns the element type.
func (a *TypedArray[T]) Type() ArrayType { return a.Kind }

// Len returns the element count.
func (a *TypedArray[T]) Len() int { return len(a.Elements) }

// Binding returns the array binding.
func (a *TypedArray[T]) Binding() Binding { return a.Bind }

// WithBinding sets the binding and returns the array for chaining.
func (a *TypedArray[T]) WithBinding(b Binding) *TypedArray[T] {
	a.Bind = b
	return a
}

// NewVec2Array creates a per-vertex float vec2 array.
func NewVec2Array(v []math.Vec2) *TypedArray[math.Vec2] {
	return NewArray(Vec2ArrayType, v)
}

// NewVec3Array creates a per-vertex float vec3 array.
func NewVec3Array(v []math.Vec3) *TypedArray[math.Vec3] {
	return NewArray(Vec3ArrayType, v)
}

// NewVec4Array creates a per-vertex float vec4 array.
func NewVec4Array(v []math.Vec4) *TypedArray[math.Vec4] {
	return NewArray(Vec4ArrayType, v)
}
