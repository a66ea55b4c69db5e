package scene

import "github.com/Faultbox/scenebake/pkg/math"

// ComputeBound returns the bounding sphere of n in its parent's coordinate frame.
func ComputeBound(n Node) math.Sphere {
	switch n := n.(type) {
	case *Geometry:
		return math.SphereFromBox(n.Bound())
	case *Transform:
		return childrenBound(n.Children).Transform(n.Matrix)
	case *Billboard:
		box := math.EmptyBox()
		for i, d := range n.Drawables {
			if d == nil {
				continue
			}
			local := d.Bound()
			if !local.Valid() {
				continue
			}
			pos := n.PositionAt(i)
			box.ExpandBy(local.Min.Add(pos))
			box.ExpandBy(local.Max.Add(pos))
		}
		return math.SphereFromBox(box)
	case *LOD:
		return lodBound(n)
	case *PagedLOD:
		return lodBound(&n.LOD)
	case nil:
		return math.EmptySphere()
	default:
		return childrenBound(Children(n))
	}
}

func childrenBound(children []Node) math.Sphere {
	s := math.EmptySphere()
	for _, c := range children {
		if c == nil {
			continue
		}
		s.ExpandBy(ComputeBound(c))
	}
	return s
}

func lodBound(l *LOD) math.Sphere {
	if l.CenterMode == UserDefinedCenter && l.Radius > 0 {
		return math.Sphere{Center: l.Center, Radius: l.Radius}
	}
	return childrenBound(l.Children)
}
