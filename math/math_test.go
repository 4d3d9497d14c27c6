package math

import (
	"math"
	"testing"
)

const tolerance = 1e-4

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func nearVec3(a, b Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if got, want := v1.Add(v2), NewVec3(5, 7, 9); got != want {
		t.Errorf("Add: expected %v, got %v", want, got)
	}
	if got, want := v2.Sub(v1), NewVec3(3, 3, 3); got != want {
		t.Errorf("Sub: expected %v, got %v", want, got)
	}
	if got, want := v1.Mul(2), NewVec3(2, 4, 6); got != want {
		t.Errorf("Mul: expected %v, got %v", want, got)
	}
	if got := v1.Dot(v2); got != 32 {
		t.Errorf("Dot: expected 32, got %v", got)
	}
	if got := Vec3Right.Cross(Vec3Up); got != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := NewVec3(3, 0, 0).Normalize()
	if n != NewVec3(1, 0, 0) {
		t.Errorf("Normalize: expected (1,0,0), got %v", n)
	}
	if z := Vec3Zero.Normalize(); z != Vec3Zero {
		t.Errorf("Normalize: zero vector should stay zero, got %v", z)
	}
}

func TestVec3FromFloat64(t *testing.T) {
	v := Vec3FromFloat64(1.5, -2.25, 4)
	if v != NewVec3(1.5, -2.25, 4) {
		t.Errorf("Vec3FromFloat64: got %v", v)
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}
	if got := m.MulVec3(Vec3Zero); got != translation {
		t.Errorf("Translation: expected %v, got %v", translation, got)
	}
}

func TestMat4TRSOrder(t *testing.T) {
	// Scale first, then rotate 90° about Y, then translate.
	rot := QuaternionFromAxisAngle(Vec3Up, math.Pi/2)
	m := Mat4TRS(NewVec3(10, 0, 0), rot, NewVec3(2, 2, 2))

	got := m.MulVec3(Vec3Right)
	want := NewVec3(10, 0, -2)
	if !nearVec3(got, want) {
		t.Errorf("TRS: expected %v, got %v", want, got)
	}
}

func TestQuaternionRotation(t *testing.T) {
	q := QuaternionFromAxisAngle(Vec3Up, math.Pi/2)
	got := q.ToMat4().MulVec3(Vec3Right)
	if !nearVec3(got, NewVec3(0, 0, -1)) {
		t.Errorf("Quaternion rotation: expected (0,0,-1), got %v", got)
	}
}

func TestQuaternionFloorRotation(t *testing.T) {
	// A plane whose local normal is +Z faces up after -90° about X.
	q := QuaternionFromAxisAngle(Vec3Right, -math.Pi/2)
	got := q.ToMat4().MulVec3(Vec3Front)
	if !nearVec3(got, Vec3Up) {
		t.Errorf("floor normal: expected %v, got %v", Vec3Up, got)
	}
}

func TestMat4Perspective(t *testing.T) {
	wide := Mat4Perspective(math.Pi/4, 2, 0.1, 100)
	square := Mat4Perspective(math.Pi/4, 1, 0.1, 100)
	if !near(wide[0][0]*2, square[0][0]) {
		t.Errorf("Perspective: x scale should halve when aspect doubles, got %v vs %v", wide[0][0], square[0][0])
	}
	if wide[1][1] != square[1][1] {
		t.Errorf("Perspective: y scale should not depend on aspect")
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	m := Mat4LookAt(eye, Vec3Zero, Vec3Up)

	if got := m.MulVec3(eye); !nearVec3(got, Vec3Zero) {
		t.Errorf("LookAt: expected eye to transform to origin, got %v", got)
	}
	if got := m.MulVec3(Vec3Zero); !nearVec3(got, NewVec3(0, 0, -5)) {
		t.Errorf("LookAt: target should sit on -Z, got %v", got)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}
