package convert

import (
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

// CopyArray copies src into a target array. It returns nil for a nil src, for
// element types the target cannot store (signed byte/short/int scalars and
// vectors, quaternions, 64-bit integers) and for arrays whose Go element type
// does not match their declared type.
func CopyArray(src scene.Array) target.Data {
	if src == nil {
		return nil
	}

	switch src.Type() {
	case scene.UByteArrayType:
		return copyArray[uint8](src, 1, gputypes.VertexFormatUndefined)
	case scene.UShortArrayType:
		return copyArray[uint16](src, 2, gputypes.VertexFormatUndefined)
	case scene.UIntArrayType:
		return copyArray[uint32](src, 4, gputypes.VertexFormatUint32)
	case scene.FloatArrayType:
		return copyArray[float32](src, 4, gputypes.VertexFormatFloat32)
	case scene.DoubleArrayType:
		return copyArray[float64](src, 8, gputypes.VertexFormatUndefined)

	case scene.Vec2ubArrayType:
		return copyArray[[2]uint8](src, 2, gputypes.VertexFormatUint8x2)
	case scene.Vec3ubArrayType:
		return copyArray[[3]uint8](src, 3, gputypes.VertexFormatUndefined)
	case scene.Vec4ubArrayType:
		return copyArray[[4]uint8](src, 4, gputypes.VertexFormatUnorm8x4)

	case scene.Vec2usArrayType:
		return copyArray[[2]uint16](src, 4, gputypes.VertexFormatUint16x2)
	case scene.Vec3usArrayType:
		return copyArray[[3]uint16](src, 6, gputypes.VertexFormatUndefined)
	case scene.Vec4usArrayType:
		return copyArray[[4]uint16](src, 8, gputypes.VertexFormatUint16x4)

	case scene.Vec2uiArrayType:
		return copyArray[[2]uint32](src, 8, gputypes.VertexFormatUint32x2)
	case scene.Vec3uiArrayType:
		return copyArray[[3]uint32](src, 12, gputypes.VertexFormatUint32x3)
	case scene.Vec4uiArrayType:
		return copyArray[[4]uint32](src, 16, gputypes.VertexFormatUint32x4)

	case scene.Vec2ArrayType:
		return copyArray[math.Vec2](src, 8, gputypes.VertexFormatFloat32x2)
	case scene.Vec3ArrayType:
		return copyArray[math.Vec3](src, 12, gputypes.VertexFormatFloat32x3)
	case scene.Vec4ArrayType:
		return copyArray[math.Vec4](src, 16, gputypes.VertexFormatFloat32x4)

	case scene.Vec2dArrayType:
		return copyArray[[2]float64](src, 16, gputypes.VertexFormatUndefined)
	case scene.Vec3dArrayType:
		return copyArray[math.DVec3](src, 24, gputypes.VertexFormatUndefined)
	case scene.Vec4dArrayType:
		return copyArray[[4]float64](src, 32, gputypes.VertexFormatUndefined)

	case scene.MatrixArrayType:
		return copyArray[math.Mat4](src, 64, gputypes.VertexFormatUndefined)
	case scene.MatrixdArrayType:
		return copyArray[math.DMat4](src, 128, gputypes.VertexFormatUndefined)

	default:
		// byte, short, int and their vectors, quat, uint64, int64
		return nil
	}
}

func copyArray[T any](src scene.Array, stride int, format gputypes.VertexFormat) target.Data {
	typed, ok := src.(*scene.TypedArray[T])
	if !ok {
		return nil
	}

	values := make([]T, len(typed.Elements))
	copy(values, typed.Elements)
	return &target.Array[T]{
		Values:       values,
		Stride:       stride,
		VertexFormat: format,
	}
}
