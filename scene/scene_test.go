package scene

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physics-playground/core"
	"physics-playground/math"
)

func TestSceneAddRemoveContains(t *testing.T) {
	s := NewScene()
	n := NewNode("cube")

	assert.False(t, s.Contains(n))
	s.AddNode(n)
	assert.True(t, s.Contains(n))
	assert.True(t, s.RemoveNode(n))
	assert.False(t, s.Contains(n))
	assert.False(t, s.RemoveNode(n), "second removal is a no-op")
}

func TestAddChildReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")

	a.AddChild(c)
	b.AddChild(c)
	assert.Empty(t, a.Children)
	assert.Equal(t, b, c.Parent)
	assert.True(t, b.HasChild(c))
}

func TestWorldMatrixFollowsParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	parent.SetScale(math.NewVec3(0.25, 0.25, 0.25))
	parent.SetPosition(math.NewVec3(0, 1, 0))
	child.SetPosition(math.NewVec3(4, 0, 0))

	got := child.GetWorldMatrix().MulVec3(math.Vec3Zero)
	assert.InDelta(t, 1.0, got.X, 1e-5)
	assert.InDelta(t, 1.0, got.Y, 1e-5)
	assert.InDelta(t, 0.0, got.Z, 1e-5)

	// Moving the parent afterwards must invalidate the cached child matrix.
	parent.SetPosition(math.Vec3Zero)
	got = child.GetWorldMatrix().MulVec3(math.Vec3Zero)
	assert.InDelta(t, 0.0, got.Y, 1e-5)
}

func TestSetPose(t *testing.T) {
	n := NewNode("body")
	rot := math.QuaternionFromAxisAngle(math.Vec3Up, stdmath.Pi)
	n.SetPose(math.NewVec3(1, 2, 3), rot)

	assert.Equal(t, math.NewVec3(1, 2, 3), n.Transform.Position)
	assert.Equal(t, rot, n.Transform.Rotation)
	p := n.GetWorldMatrix().MulVec3(math.Vec3Right)
	assert.InDelta(t, 0.0, p.X, 1e-5)
}

func TestEffectiveMaterial(t *testing.T) {
	shared := NewPhongMaterial("shared", core.ColorGreen)
	mesh := CreateBox(1, 1, 1)
	mesh.Material = shared

	n := NewMeshNode("box", mesh)
	assert.Same(t, shared, n.EffectiveMaterial())

	override := NewStandardMaterial("override", core.ColorWhite, 0.3, 0.4)
	n.Material = override
	assert.Same(t, override, n.EffectiveMaterial())
	assert.Same(t, shared, mesh.Material, "node override must not touch the mesh")
}

func TestGetVisibleNodesSkipsHiddenSubtrees(t *testing.T) {
	s := NewScene()
	group := NewNode("group")
	inner := NewMeshNode("inner", CreateBox(1, 1, 1))
	group.AddChild(inner)
	top := NewMeshNode("top", CreateSphere(1, 8, 6))
	s.AddNode(group)
	s.AddNode(top)

	assert.Len(t, s.GetVisibleNodes(), 2)
	group.Visible = false
	visible := s.GetVisibleNodes()
	require.Len(t, visible, 1)
	assert.Same(t, top, visible[0])
}

func TestLights(t *testing.T) {
	s := NewScene()
	s.AddLight(NewAmbientLight(core.ColorWhite, 0.7))
	sun := NewDirectionalLight(core.ColorWhite, 0.2, math.NewVec3(5, 5, 5))
	s.AddLight(sun)

	amb := s.AmbientColor()
	assert.InDelta(t, 0.7, amb.R, 1e-6)
	assert.Same(t, sun, s.DirectionalLight())

	d := sun.Direction()
	assert.InDelta(t, 1.0, d.Length(), 1e-5)
	assert.Less(t, d.Y, float32(0))
}

func TestPrimitives(t *testing.T) {
	sphere := CreateSphere(1, 20, 20)
	assert.Equal(t, 21*21, len(sphere.Vertices))
	assert.Equal(t, uint32(len(sphere.Indices)), sphere.IndexCount)
	for _, v := range sphere.Vertices {
		assert.InDelta(t, 1.0, v.Position.Length(), 1e-4)
	}

	box := CreateBox(2, 4, 6)
	assert.Len(t, box.Vertices, 24)
	assert.Len(t, box.Indices, 36)
	for _, v := range box.Vertices {
		assert.InDelta(t, 1.0, stdmath.Abs(float64(v.Position.X)), 1e-6)
		assert.InDelta(t, 2.0, stdmath.Abs(float64(v.Position.Y)), 1e-6)
		assert.InDelta(t, 3.0, stdmath.Abs(float64(v.Position.Z)), 1e-6)
	}

	plane := CreatePlane(10, 10)
	for _, v := range plane.Vertices {
		assert.Equal(t, math.Vec3Front, v.Normal)
		assert.Zero(t, v.Position.Z)
	}
}

func TestCameraAspect(t *testing.T) {
	cam := NewCamera(stdmath.Pi/2, 1, 0.1, 100)
	before := cam.GetProjectionMatrix()
	cam.UpdateAspectRatio(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, cam.AspectRatio, 1e-6)
	assert.NotEqual(t, before, cam.GetProjectionMatrix())

	cam.UpdateAspectRatio(800, 0)
	assert.InDelta(t, 1920.0/1080.0, cam.AspectRatio, 1e-6, "zero height keeps the last aspect")
}

func TestOrbitControlsDamping(t *testing.T) {
	cam := NewCamera(stdmath.Pi/2, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(-3, 3, 3))
	oc := NewOrbitControls(cam, math.Vec3Zero)
	oc.EnableDamping = true

	radius := cam.Position.Length()
	oc.Rotate(100, 0, 600)

	require.True(t, oc.Update())
	first := cam.Position
	require.True(t, oc.Update(), "damped input keeps moving the camera")
	assert.NotEqual(t, first, cam.Position)
	assert.InDelta(t, radius, cam.Position.Length(), 1e-3, "rotation keeps distance")

	for i := 0; i < 2000; i++ {
		oc.Update()
	}
	assert.False(t, oc.Update(), "motion decays to rest")
}

func TestOrbitControlsNoDampingStopsImmediately(t *testing.T) {
	cam := NewCamera(stdmath.Pi/2, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 5))
	oc := NewOrbitControls(cam, math.Vec3Zero)

	oc.Rotate(50, 0, 500)
	assert.True(t, oc.Update())
	assert.False(t, oc.Update())
}

func TestOrbitControlsZoom(t *testing.T) {
	cam := NewCamera(stdmath.Pi/2, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 5))
	oc := NewOrbitControls(cam, math.Vec3Zero)
	oc.MinDistance = 4

	oc.Zoom(1)
	oc.Update()
	assert.Less(t, cam.Position.Length(), float32(5))

	oc.Zoom(100)
	oc.Update()
	assert.InDelta(t, 4.0, cam.Position.Length(), 1e-4)
}

func TestShadowMatricesFrameTarget(t *testing.T) {
	sun := NewDirectionalLight(core.ColorWhite, 1, math.NewVec3(5, 5, 5))
	sun.Shadow = ShadowConfig{MapSize: 1024, Near: 0.5, Far: 15, Extent: 7}
	view, proj := sun.ShadowMatrices()
	vp := view.Mul(proj)

	center := vp.MulVec3(math.Vec3Zero)
	assert.InDelta(t, 0, center.X, 1e-5)
	assert.InDelta(t, 0, center.Y, 1e-5)
	// depth of the target inside the volume
	want := (2*stdmath.Sqrt(75) - 15.5) / 14.5
	assert.InDelta(t, want, center.Z, 1e-4)

	beyond := vp.MulVec3(math.NewVec3(-5, -5, -5))
	assert.Greater(t, beyond.Z, float32(1), "past the far plane")
}

func TestShadowMatricesStraightDown(t *testing.T) {
	sun := NewDirectionalLight(core.ColorWhite, 1, math.NewVec3(0, 10, 0))
	view, _ := sun.ShadowMatrices()
	for _, row := range view {
		for _, v := range row {
			require.False(t, stdmath.IsNaN(float64(v)))
		}
	}
}

func TestFrustumCulling(t *testing.T) {
	cam := NewCamera(stdmath.Pi/3, 1, 0.1, 100)
	cam.SetPosition(math.NewVec3(0, 0, 5))
	cam.LookAt(math.Vec3Zero)
	f := FrustumFromVP(cam.GetViewMatrix().Mul(cam.GetProjectionMatrix()))

	box := CreateBox(1, 1, 1)
	assert.Equal(t, AABB{Min: math.NewVec3(-0.5, -0.5, -0.5), Max: math.NewVec3(0.5, 0.5, 0.5)}, box.LocalBounds())

	cases := []struct {
		name    string
		pos     math.Vec3
		visible bool
	}{
		{"origin", math.Vec3Zero, true},
		{"behind camera", math.NewVec3(0, 0, 10), false},
		{"far left", math.NewVec3(-100, 0, 0), false},
		{"past far plane", math.NewVec3(0, 0, -200), false},
		{"straddling the edge", math.NewVec3(3.2, 0, 0), true},
	}
	for _, c := range cases {
		aabb := ComputeAABB(box, math.Mat4Translation(c.pos))
		assert.Equal(t, c.visible, aabb.IntersectsFrustum(&f), c.name)
	}
}
