package scene

import (
	"github.com/chewxy/math32"

	reMath "physics-playground/math"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position    reMath.Vec3
	Target      reMath.Vec3
	Up          reMath.Vec3
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       reMath.Mat4
	projectionMatrix reMath.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    reMath.Vec3Zero,
		Target:      reMath.NewVec3(0, 0, -1),
		Up:          reMath.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) LookAt(target reMath.Vec3) {
	c.Target = target
	c.dirty = true
}

func (c *Camera) GetViewMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() reMath.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

func (c *Camera) updateMatrices() {
	c.viewMatrix = reMath.Mat4LookAt(c.Position, c.Target, c.Up)
	c.projectionMatrix = reMath.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.dirty = false
}

const polarEpsilon = 1e-4

// OrbitControls orbits a camera around a target point using spherical
// coordinates. With damping enabled, input keeps easing out over the next
// updates instead of stopping dead.
type OrbitControls struct {
	Camera *Camera
	Target reMath.Vec3

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	MinDistance   float32
	MaxDistance   float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
}

func NewOrbitControls(camera *Camera, target reMath.Vec3) *OrbitControls {
	camera.LookAt(target)
	return &OrbitControls{
		Camera:        camera,
		Target:        target,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MinDistance:   0,
		MaxDistance:   math32.Inf(1),
		scale:         1,
	}
}

// Rotate feeds a mouse drag of (dx, dy) pixels in a viewport of the given height.
func (oc *OrbitControls) Rotate(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	oc.deltaTheta -= 2 * math32.Pi * dx / viewportHeight * oc.RotateSpeed
	oc.deltaPhi -= 2 * math32.Pi * dy / viewportHeight * oc.RotateSpeed
}

// Zoom feeds a scroll offset; positive values move the camera closer.
func (oc *OrbitControls) Zoom(scroll float32) {
	if scroll == 0 {
		return
	}
	step := math32.Pow(0.95, oc.ZoomSpeed*math32.Abs(scroll))
	if scroll > 0 {
		oc.scale *= step
	} else {
		oc.scale /= step
	}
}

// Update applies pending input to the camera and reports whether it moved.
func (oc *OrbitControls) Update() bool {
	offset := oc.Camera.Position.Sub(oc.Target)
	radius := offset.Length()
	if radius == 0 {
		return false
	}
	theta := math32.Atan2(offset.X, offset.Z)
	phi := math32.Acos(clamp(offset.Y/radius, -1, 1))

	if oc.EnableDamping {
		theta += oc.deltaTheta * oc.DampingFactor
		phi += oc.deltaPhi * oc.DampingFactor
	} else {
		theta += oc.deltaTheta
		phi += oc.deltaPhi
	}
	phi = clamp(phi, polarEpsilon, math32.Pi-polarEpsilon)
	radius = clamp(radius*oc.scale, oc.MinDistance, oc.MaxDistance)

	sinPhi, cosPhi := math32.Sincos(phi)
	sinTheta, cosTheta := math32.Sincos(theta)
	newPos := oc.Target.Add(reMath.Vec3{
		X: radius * sinPhi * sinTheta,
		Y: radius * cosPhi,
		Z: radius * sinPhi * cosTheta,
	})

	if oc.EnableDamping {
		oc.deltaTheta *= 1 - oc.DampingFactor
		oc.deltaPhi *= 1 - oc.DampingFactor
	} else {
		oc.deltaTheta, oc.deltaPhi = 0, 0
	}
	oc.scale = 1

	moved := newPos.Sub(oc.Camera.Position).LengthSqr() > 1e-12
	oc.Camera.SetPosition(newPos)
	oc.Camera.LookAt(oc.Target)
	return moved
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
