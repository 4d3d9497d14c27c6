package scene

import "physics-playground/math"

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from pt to the plane, positive inside.
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six planes of a row-vector view-projection
// matrix (clip = p * vp). Clip component i is the dot product of p with
// column i, so the Gribb/Hartmann rows are the columns of vp.
func FrustumFromVP(vp math.Mat4) Frustum {
	col := func(i int) math.Vec4 {
		return math.Vec4{X: vp[0][i], Y: vp[1][i], Z: vp[2][i], W: vp[3][i]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = planeFrom(c3.Add(c0))
	f.Planes[1] = planeFrom(c3.Sub(c0))
	f.Planes[2] = planeFrom(c3.Add(c1))
	f.Planes[3] = planeFrom(c3.Sub(c1))
	f.Planes[4] = planeFrom(c3.Add(c2))
	f.Planes[5] = planeFrom(c3.Sub(c2))
	return f
}

func planeFrom(v math.Vec4) Plane {
	n := math.Vec3{X: v.X, Y: v.Y, Z: v.Z}
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

func (b *AABB) extend(p math.Vec3) {
	b.Min = math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)}
	b.Max = math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)}
}

// IntersectsFrustum is false only when the box is entirely outside one plane.
// Each plane is tested against the corner furthest along its normal.
func (b AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		v := b.Max
		if p.Normal.X < 0 {
			v.X = b.Min.X
		}
		if p.Normal.Y < 0 {
			v.Y = b.Min.Y
		}
		if p.Normal.Z < 0 {
			v.Z = b.Min.Z
		}
		if p.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}

// Transform returns the world-space box enclosing b's eight corners under m.
func (b AABB) Transform(m math.Mat4) AABB {
	out := AABB{Min: m.MulVec3(b.Min)}
	out.Max = out.Min
	for i := 1; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		out.extend(m.MulVec3(c))
	}
	return out
}

// ComputeAABB returns the world-space bounds of mesh under worldMatrix.
func ComputeAABB(mesh *Mesh, worldMatrix math.Mat4) AABB {
	return mesh.LocalBounds().Transform(worldMatrix)
}
