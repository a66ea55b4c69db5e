package target

import (
	"github.com/gogpu/gputypes"
)

// Data is a typed GPU buffer source.
type Data interface {
	// Len returns the element count.
	Len() int
	// ElementSize returns the size of one element in bytes.
	ElementSize() int
	// Format returns the vertex format of one element, or VertexFormatUndefined
	// for data that cannot feed a vertex attribute directly (matrices, doubles).
	Format() gputypes.VertexFormat
	// Elements returns the underlying element slice.
	Elements() any
	// Instanced reports whether the data advances per instance.
	Instanced() bool
}

// Array is a Data holding elements of type T.
type Array[T any] struct {
	Values []T
	// Stride is the element size in bytes.
	Stride int
	// VertexFormat is the attribute format of one element.
	VertexFormat gputypes.VertexFormat
	// PerInstance marks arrays that advance once per instance rather than per vertex.
	PerInstance bool
}

// Len returns the element count.
func (a *Array[T]) Len() int { return len(a.Values) }

// ElementSize returns the size of one element in bytes.
func (a *Array[T]) ElementSize() int { return a.Stride }

// Format returns the vertex format of one element.
func (a *Array[T]) Format() gputypes.VertexFormat { return a.VertexFormat }

// Instanced returns PerInstance.
func (a *Array[T]) Instanced() bool { return a.PerInstance }

// Elements returns Values.
func (a *Array[T]) Elements() any { return a.Values }

// IndexFormat returns the index format matching an index buffer, or
// IndexFormatUndefined when d is not a 16 or 32 bit unsigned array.
func IndexFormat(d Data) gputypes.IndexFormat {
	switch d.(type) {
	case *Array[uint16]:
		return gputypes.IndexFormatUint16
	case *Array[uint32]:
		return gputypes.IndexFormatUint32
	default:
		return gputypes.IndexFormatUndefined
	}
}
