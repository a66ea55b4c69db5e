package sceneio

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
)

type arrayDecoder func(kind scene.ArrayType, bind scene.Binding, data *yaml.Node) (scene.Array, error)

// plain decodes elements that YAML maps directly onto T.
func plain[T any]() arrayDecoder {
	return func(kind scene.ArrayType, bind scene.Binding, data *yaml.Node) (scene.Array, error) {
		var elems []T
		if err := data.Decode(&elems); err != nil {
			return nil, err
		}
		return scene.NewArray(kind, elems).WithBinding(bind), nil
	}
}

// packed decodes fixed-size lists and packs them into T.
func packed[T any, C any](pack func(C) T) arrayDecoder {
	return func(kind scene.ArrayType, bind scene.Binding, data *yaml.Node) (scene.Array, error) {
		var raw []C
		if err := data.Decode(&raw); err != nil {
			return nil, err
		}
		elems := make([]T, len(raw))
		for i, c := range raw {
			elems[i] = pack(c)
		}
		return scene.NewArray(kind, elems).WithBinding(bind), nil
	}
}

var arrayDecoders = map[scene.ArrayType]arrayDecoder{
	scene.ByteArrayType:   plain[int8](),
	scene.ShortArrayType:  plain[int16](),
	scene.IntArrayType:    plain[int32](),
	scene.UByteArrayType:  plain[uint8](),
	scene.UShortArrayType: plain[uint16](),
	scene.UIntArrayType:   plain[uint32](),
	scene.FloatArrayType:  plain[float32](),
	scene.DoubleArrayType: plain[float64](),

	scene.Vec2bArrayType: plain[[2]int8](),
	scene.Vec3bArrayType: plain[[3]int8](),
	scene.Vec4bArrayType: plain[[4]int8](),
	scene.Vec2sArrayType: plain[[2]int16](),
	scene.Vec3sArrayType: plain[[3]int16](),
	scene.Vec4sArrayType: plain[[4]int16](),
	scene.Vec2iArrayType: plain[[2]int32](),
	scene.Vec3iArrayType: plain[[3]int32](),
	scene.Vec4iArrayType: plain[[4]int32](),

	scene.Vec2ubArrayType: plain[[2]uint8](),
	scene.Vec3ubArrayType: plain[[3]uint8](),
	scene.Vec4ubArrayType: plain[[4]uint8](),
	scene.Vec2usArrayType: plain[[2]uint16](),
	scene.Vec3usArrayType: plain[[3]uint16](),
	scene.Vec4usArrayType: plain[[4]uint16](),
	scene.Vec2uiArrayType: plain[[2]uint32](),
	scene.Vec3uiArrayType: plain[[3]uint32](),
	scene.Vec4uiArrayType: plain[[4]uint32](),

	scene.Vec2ArrayType: packed(func(c [2]float32) math.Vec2 { return math.Vec2{X: c[0], Y: c[1]} }),
	scene.Vec3ArrayType: packed(func(c [3]float32) math.Vec3 { return math.Vec3{X: c[0], Y: c[1], Z: c[2]} }),
	scene.Vec4ArrayType: packed(func(c [4]float32) math.Vec4 { return math.Vec4{X: c[0], Y: c[1], Z: c[2], W: c[3]} }),

	scene.Vec2dArrayType: plain[[2]float64](),
	scene.Vec3dArrayType: packed(func(c [3]float64) math.DVec3 { return math.DVec3{X: c[0], Y: c[1], Z: c[2]} }),
	scene.Vec4dArrayType: plain[[4]float64](),

	scene.MatrixArrayType:  plain[math.Mat4](),
	scene.MatrixdArrayType: plain[math.DMat4](),
	scene.QuatArrayType:    packed(func(c [4]float32) math.Quat { return math.Quat{X: c[0], Y: c[1], Z: c[2], W: c[3]} }),
	scene.UInt64ArrayType:  plain[uint64](),
	scene.Int64ArrayType:   plain[int64](),
}

var bindings = map[string]scene.Binding{
	"":                  scene.BindPerVertex,
	"per_vertex":        scene.BindPerVertex,
	"overall":           scene.BindOverall,
	"per_primitive_set": scene.BindPerPrimitiveSet,
	"off":               scene.BindOff,
}

// decodeArray builds a typed array; a nil doc yields a nil array.
func decodeArray(d *ArrayDoc) (scene.Array, error) {
	if d == nil {
		return nil, nil
	}
	kind, ok := scene.ParseArrayType(d.Type)
	if !ok {
		return nil, fmt.Errorf("unknown array type %q", d.Type)
	}
	decode, ok := arrayDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("array type %s cannot be read", kind)
	}
	bind, ok := bindings[d.Binding]
	if !ok {
		return nil, fmt.Errorf("unknown binding %q", d.Binding)
	}

	data := &d.Data
	if data.Kind == 0 {
		// absent data is an empty array
		data = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	}
	arr, err := decode(kind, bind, data)
	if err != nil {
		return nil, fmt.Errorf("%s data: %w", kind, err)
	}
	return arr, nil
}
