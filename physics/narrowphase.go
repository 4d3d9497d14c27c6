package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact is one touching point between two bodies. Normal points from A
// towards B and Depth is the penetration along it.
type Contact struct {
	A, B   *Body
	Normal mgl64.Vec3
	Point  mgl64.Vec3
	Depth  float64
}

// collide generates the contacts of one broadphase pair.
func collide(a, b *Body, out []Contact) []Contact {
	ka, kb := a.Shape.Kind(), b.Shape.Kind()
	if ka > kb {
		start := len(out)
		out = collide(b, a, out)
		for i := start; i < len(out); i++ {
			c := &out[i]
			c.A, c.B = c.B, c.A
			c.Normal = c.Normal.Mul(-1)
		}
		return out
	}

	switch {
	case ka == KindSphere && kb == KindSphere:
		return sphereSphere(a, b, out)
	case ka == KindSphere && kb == KindBox:
		return sphereBox(a, b, out)
	case ka == KindSphere && kb == KindPlane:
		return spherePlane(a, b, out)
	case ka == KindBox && kb == KindBox:
		return boxBox(a, b, out)
	case ka == KindBox && kb == KindPlane:
		return boxPlane(a, b, out)
	}
	// plane-plane never touches
	return out
}

func sphereSphere(a, b *Body, out []Contact) []Contact {
	ra := a.Shape.(*Sphere).Radius
	rb := b.Shape.(*Sphere).Radius
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	if dist >= ra+rb {
		return out
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-12 {
		n = d.Mul(1 / dist)
	}
	return append(out, Contact{
		A: a, B: b,
		Normal: n,
		Point:  a.Position.Add(n.Mul(ra)),
		Depth:  ra + rb - dist,
	})
}

func spherePlane(s, p *Body, out []Contact) []Contact {
	r := s.Shape.(*Sphere).Radius
	n := planeNormal(p.Quaternion)
	dist := s.Position.Sub(p.Position).Dot(n) - r
	if dist >= 0 {
		return out
	}
	return append(out, Contact{
		A: s, B: p,
		Normal: n.Mul(-1),
		Point:  s.Position.Sub(n.Mul(r)),
		Depth:  -dist,
	})
}

func sphereBox(s, bx *Body, out []Contact) []Contact {
	r := s.Shape.(*Sphere).Radius
	h := bx.Shape.(*Box).HalfExtents
	inv := bx.Quaternion.Conjugate()
	local := inv.Rotate(s.Position.Sub(bx.Position))

	closest := local
	inside := true
	for i := 0; i < 3; i++ {
		if closest[i] > h[i] {
			closest[i] = h[i]
			inside = false
		} else if closest[i] < -h[i] {
			closest[i] = -h[i]
			inside = false
		}
	}

	if inside {
		axis, gap := 0, math.Inf(1)
		for i := 0; i < 3; i++ {
			if g := h[i] - math.Abs(local[i]); g < gap {
				axis, gap = i, g
			}
		}
		var outward mgl64.Vec3
		outward[axis] = 1
		if local[axis] < 0 {
			outward[axis] = -1
		}
		n := bx.Quaternion.Rotate(outward)
		return append(out, Contact{
			A: s, B: bx,
			Normal: n.Mul(-1),
			Point:  s.Position,
			Depth:  r + gap,
		})
	}

	diff := local.Sub(closest)
	dist := diff.Len()
	if dist >= r {
		return out
	}
	return append(out, Contact{
		A: s, B: bx,
		Normal: bx.Quaternion.Rotate(diff.Mul(-1 / dist)),
		Point:  bx.Position.Add(bx.Quaternion.Rotate(closest)),
		Depth:  r - dist,
	})
}

func boxPlane(bx, p *Body, out []Contact) []Contact {
	box := bx.Shape.(*Box)
	n := planeNormal(p.Quaternion)
	for _, c := range box.corners(bx.Position, boxAxes(bx.Quaternion)) {
		d := c.Sub(p.Position).Dot(n)
		if d < 0 {
			out = append(out, Contact{
				A: bx, B: p,
				Normal: n.Mul(-1),
				Point:  c,
				Depth:  -d,
			})
		}
	}
	return out
}

// boxBox uses the separating axis test over the 15 candidate axes and takes
// the corners of either box lying inside the other as contact points.
func boxBox(a, b *Body, out []Contact) []Contact {
	ba, bb := a.Shape.(*Box), b.Shape.(*Box)
	axesA, axesB := boxAxes(a.Quaternion), boxAxes(b.Quaternion)
	l := b.Position.Sub(a.Position)

	candidates := make([]mgl64.Vec3, 0, 15)
	candidates = append(candidates, axesA[:]...)
	candidates = append(candidates, axesB[:]...)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := axesA[i].Cross(axesB[j])
			if c.LenSqr() > 1e-8 {
				candidates = append(candidates, c.Normalize())
			}
		}
	}

	minOverlap := math.Inf(1)
	var normal mgl64.Vec3
	for _, axis := range candidates {
		var pa, pb float64
		for i := 0; i < 3; i++ {
			pa += math.Abs(axesA[i].Dot(axis)) * ba.HalfExtents[i]
			pb += math.Abs(axesB[i].Dot(axis)) * bb.HalfExtents[i]
		}
		overlap := pa + pb - math.Abs(l.Dot(axis))
		if overlap <= 0 {
			return out
		}
		if overlap < minOverlap {
			minOverlap = overlap
			normal = axis
		}
	}
	if l.Dot(normal) < 0 {
		normal = normal.Mul(-1)
	}

	start := len(out)
	for _, c := range ba.corners(a.Position, axesA) {
		if pointInBox(c, b.Position, axesB, bb.HalfExtents) {
			out = append(out, Contact{A: a, B: b, Normal: normal, Point: c, Depth: minOverlap})
		}
	}
	for _, c := range bb.corners(b.Position, axesB) {
		if pointInBox(c, a.Position, axesA, ba.HalfExtents) {
			out = append(out, Contact{A: a, B: b, Normal: normal, Point: c, Depth: minOverlap})
		}
	}
	if len(out) == start {
		// edge-edge: no corner is inside, use the midpoint between centres
		out = append(out, Contact{
			A: a, B: b,
			Normal: normal,
			Point:  a.Position.Add(b.Position).Mul(0.5),
			Depth:  minOverlap,
		})
	}
	return out
}

func pointInBox(p, pos mgl64.Vec3, axes [3]mgl64.Vec3, half mgl64.Vec3) bool {
	d := p.Sub(pos)
	for i := 0; i < 3; i++ {
		if math.Abs(d.Dot(axes[i])) > half[i]+1e-6 {
			return false
		}
	}
	return true
}
