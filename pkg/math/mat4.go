package math

import gomath "math"

// Mat4 is a single precision 4x4 matrix in column-major order.
type Mat4 [16]float32

// DMat4 is a double precision 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type DMat4 [16]float64

// Identity returns an identity matrix.
func Identity() DMat4 {
	return DMat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float64) DMat4 {
	return DMat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float64) DMat4 {
	return DMat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m DMat4) Mul(other DMat4) DMat4 {
	var result DMat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a point by this matrix (assumes w=1).
func (m DMat4) TransformPoint(p DVec3) DVec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return DVec3{x / w, y / w, z / w}
	}
	return DVec3{x, y, z}
}

// MaxScale returns the largest axis scale factor of the upper 3x3 part.
func (m DMat4) MaxScale() float64 {
	sx := DVec3{m[0], m[1], m[2]}.Length()
	sy := DVec3{m[4], m[5], m[6]}.Length()
	sz := DVec3{m[8], m[9], m[10]}.Length()
	return gomath.Max(sx, gomath.Max(sy, sz))
}

// Float32 narrows the matrix to single precision.
func (m DMat4) Float32() Mat4 {
	var out Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func sqrt(v float64) float64 {
	return gomath.Sqrt(v)
}
