package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind identifies a collision shape.
type ShapeKind int

const (
	KindSphere ShapeKind = iota
	KindBox
	KindPlane
)

func (k ShapeKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindPlane:
		return "plane"
	}
	return "unknown"
}

// Shape is a collision geometry in body-local space.
type Shape interface {
	Kind() ShapeKind
	// Inertia returns the diagonal of the local inertia tensor for mass.
	Inertia(mass float64) mgl64.Vec3
	// AABB returns world-space bounds for the given pose.
	AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB
}

// Sphere is centred on the body origin.
type Sphere struct {
	Radius float64
}

func (s *Sphere) Kind() ShapeKind { return KindSphere }

func (s *Sphere) Inertia(mass float64) mgl64.Vec3 {
	i := 2.0 / 5.0 * mass * s.Radius * s.Radius
	return mgl64.Vec3{i, i, i}
}

func (s *Sphere) AABB(pos mgl64.Vec3, _ mgl64.Quat) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: pos.Sub(r), Max: pos.Add(r)}
}

// minExtent is the smallest half size of s. Planes are unbounded.
func minExtent(s Shape) float64 {
	switch s := s.(type) {
	case *Sphere:
		return s.Radius
	case *Box:
		return math.Min(s.HalfExtents[0], math.Min(s.HalfExtents[1], s.HalfExtents[2]))
	}
	return math.Inf(1)
}

// Box is an oriented box given by its half extents.
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Kind() ShapeKind { return KindBox }

func (b *Box) Inertia(mass float64) mgl64.Vec3 {
	x, y, z := b.HalfExtents.Elem()
	return mgl64.Vec3{
		mass / 3 * (y*y + z*z),
		mass / 3 * (x*x + z*z),
		mass / 3 * (x*x + y*y),
	}
}

func (b *Box) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	axes := boxAxes(rot)
	var ext mgl64.Vec3
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			ext[k] += math.Abs(axes[i][k]) * b.HalfExtents[i]
		}
	}
	return AABB{Min: pos.Sub(ext), Max: pos.Add(ext)}
}

// corners returns the eight world-space vertices of the box.
func (b *Box) corners(pos mgl64.Vec3, axes [3]mgl64.Vec3) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := range out {
		p := pos
		for a := 0; a < 3; a++ {
			off := axes[a].Mul(b.HalfExtents[a])
			if i&(1<<a) != 0 {
				p = p.Add(off)
			} else {
				p = p.Sub(off)
			}
		}
		out[i] = p
	}
	return out
}

// Plane is an infinite plane through the body origin with local normal +Z.
// Rotate the body to orient it.
type Plane struct{}

func (p *Plane) Kind() ShapeKind { return KindPlane }

func (p *Plane) Inertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

func (p *Plane) AABB(mgl64.Vec3, mgl64.Quat) AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{-inf, -inf, -inf},
		Max: mgl64.Vec3{inf, inf, inf},
	}
}

// planeNormal is the world-space normal of a plane body.
func planeNormal(rot mgl64.Quat) mgl64.Vec3 {
	return rot.Rotate(mgl64.Vec3{0, 0, 1})
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Overlaps reports whether the two boxes intersect or touch.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1] &&
		a.Min[2] <= b.Max[2] && a.Max[2] >= b.Min[2]
}

func boxAxes(rot mgl64.Quat) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		rot.Rotate(mgl64.Vec3{1, 0, 0}),
		rot.Rotate(mgl64.Vec3{0, 1, 0}),
		rot.Rotate(mgl64.Vec3{0, 0, 1}),
	}
}
