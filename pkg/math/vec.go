// Package math provides the vector, matrix and bounding-volume types shared by
// source and target scene graphs.
package math

import "github.com/chewxy/math32"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a 4-component vector, typically an RGBA color.
type Vec4 struct {
	X, Y, Z, W float32
}

// Quat is a quaternion with W as the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{math32.Min(v.X, other.X), math32.Min(v.Y, other.Y), math32.Min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{math32.Max(v.X, other.X), math32.Max(v.Y, other.Y), math32.Max(v.Z, other.Z)}
}

// Double widens v to float64 precision.
func (v Vec3) Double() DVec3 {
	return DVec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// DVec3 is a double precision 3D vector.
type DVec3 struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v DVec3) Add(other DVec3) DVec3 {
	return DVec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v DVec3) Sub(other DVec3) DVec3 {
	return DVec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v DVec3) Scale(s float64) DVec3 {
	return DVec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the magnitude.
func (v DVec3) Length() float64 {
	return sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the distance to another point.
func (v DVec3) Distance(other DVec3) float64 {
	return v.Sub(other).Length()
}
