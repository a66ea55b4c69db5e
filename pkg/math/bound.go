package math

// Box is an axis-aligned bounding box. The zero value is not valid; use EmptyBox.
type Box struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns an inverted box that any ExpandBy call will make valid.
func EmptyBox() Box {
	return Box{
		Min: Vec3{1e30, 1e30, 1e30},
		Max: Vec3{-1e30, -1e30, -1e30},
	}
}

// Valid reports whether the box contains at least one point.
func (b Box) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// ExpandBy grows the box to include p.
func (b *Box) ExpandBy(p Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// ExpandByBox grows the box to include other.
func (b *Box) ExpandByBox(other Box) {
	if !other.Valid() {
		return
	}
	b.ExpandBy(other.Min)
	b.ExpandBy(other.Max)
}

// Center returns the box midpoint.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns half the diagonal length.
func (b Box) Radius() float32 {
	return b.Max.Sub(b.Min).Length() * 0.5
}

// Sphere is a bounding sphere. A negative radius marks an empty sphere.
type Sphere struct {
	Center DVec3
	Radius float64
}

// EmptySphere returns a sphere that contains nothing.
func EmptySphere() Sphere {
	return Sphere{Radius: -1}
}

// Valid reports whether the sphere is non-empty.
func (s Sphere) Valid() bool {
	return s.Radius >= 0
}

// SphereFromBox returns the sphere enclosing b.
func SphereFromBox(b Box) Sphere {
	if !b.Valid() {
		return EmptySphere()
	}
	return Sphere{Center: b.Center().Double(), Radius: float64(b.Radius())}
}

// ExpandBy grows s to enclose other, moving the center as little as possible.
func (s *Sphere) ExpandBy(other Sphere) {
	if !other.Valid() {
		return
	}
	if !s.Valid() {
		*s = other
		return
	}

	d := s.Center.Distance(other.Center)
	if d+other.Radius <= s.Radius {
		return
	}
	if d+s.Radius <= other.Radius {
		*s = other
		return
	}

	newRadius := (s.Radius + d + other.Radius) * 0.5
	ratio := (newRadius - s.Radius) / d
	s.Center = s.Center.Add(other.Center.Sub(s.Center).Scale(ratio))
	s.Radius = newRadius
}

// Transform returns the sphere moved by m; the radius is scaled by the largest axis scale.
func (s Sphere) Transform(m DMat4) Sphere {
	if !s.Valid() {
		return s
	}
	return Sphere{Center: m.TransformPoint(s.Center), Radius: s.Radius * m.MaxScale()}
}
