package physics

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixedStep = 1.0 / 60

func newTestWorld() (*World, *Body) {
	w := NewWorld(mgl64.Vec3{0, -9.82, 0})
	w.SetDefaultContactMaterial(NewContactMaterial(w.DefaultMaterial, w.DefaultMaterial, 0.1, 0.7))

	floor := NewBody(0, &Plane{}, mgl64.Vec3{})
	floor.Quaternion = mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
	w.AddBody(floor)
	return w, floor
}

func stepN(t *testing.T, w *World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, w.Step(fixedStep, fixedStep, 3))
	}
}

func TestFloorNormalFacesUp(t *testing.T) {
	_, floor := newTestWorld()
	n := planeNormal(floor.Quaternion)
	assert.InDelta(t, 0, n.X(), 1e-9)
	assert.InDelta(t, 1, n.Y(), 1e-9)
	assert.InDelta(t, 0, n.Z(), 1e-9)
}

func TestFreeFall(t *testing.T) {
	w := NewWorld(mgl64.Vec3{0, -9.82, 0})
	b := NewBody(1, &Sphere{Radius: 0.5}, mgl64.Vec3{0, 100, 0})
	w.AddBody(b)

	stepN(t, w, 60)
	assert.InDelta(t, -9.82, b.Velocity.Y(), 0.1)
	assert.Less(t, b.Position.Y(), 96.0)
	assert.InDelta(t, 1.0, w.Time, 1e-9)
}

func TestSphereSettlesAndSleepsOnFloor(t *testing.T) {
	w, floor := newTestWorld()
	ball := NewBody(1, &Sphere{Radius: 0.5}, mgl64.Vec3{0, 2, 0})
	w.AddBody(ball)

	stepN(t, w, 600)

	assert.InDelta(t, 0.5, ball.Position.Y(), 0.05)
	assert.Equal(t, Sleeping, ball.SleepState)
	assert.Equal(t, mgl64.Vec3{}, ball.Velocity)
	assert.Equal(t, mgl64.Vec3{}, floor.Position, "static bodies never move")
}

func TestBoxRestsOnFloor(t *testing.T) {
	w, _ := newTestWorld()
	box := NewBody(1, &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, mgl64.Vec3{0, 1, 0})
	w.AddBody(box)

	stepN(t, w, 600)
	assert.InDelta(t, 0.5, box.Position.Y(), 0.1)
}

func TestSpheresStack(t *testing.T) {
	w, _ := newTestWorld()
	low := NewBody(1, &Sphere{Radius: 0.5}, mgl64.Vec3{0, 0.5, 0})
	high := NewBody(1, &Sphere{Radius: 0.5}, mgl64.Vec3{0, 1.6, 0})
	w.AddBody(low)
	w.AddBody(high)

	stepN(t, w, 300)
	assert.Greater(t, high.Position.Y(), low.Position.Y()+0.8, "upper sphere must not sink through")
}

func TestSleepingBodyWokenByFastContact(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	sleeper := NewBody(1, &Sphere{Radius: 0.5}, mgl64.Vec3{})
	mover := NewBody(1, &Sphere{Radius: 0.5}, mgl64.Vec3{0.9, 0, 0})
	mover.Velocity = mgl64.Vec3{-5, 0, 0}
	w.AddBody(sleeper)
	w.AddBody(mover)
	sleeper.Sleep()

	require.NoError(t, w.Step(fixedStep, fixedStep, 3))
	assert.NotEqual(t, Sleeping, sleeper.SleepState)
	assert.Less(t, sleeper.Velocity.X(), 0.0)
}

func TestApplyImpulseWakes(t *testing.T) {
	b := NewBody(2, &Sphere{Radius: 1}, mgl64.Vec3{})
	b.Sleep()
	b.ApplyImpulse(mgl64.Vec3{4, 0, 0}, mgl64.Vec3{})
	assert.Equal(t, Awake, b.SleepState)
	assert.InDelta(t, 2, b.Velocity.X(), 1e-12)

	static := NewBody(0, &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{})
	static.ApplyImpulse(mgl64.Vec3{4, 0, 0}, mgl64.Vec3{})
	assert.Equal(t, mgl64.Vec3{}, static.Velocity)
}

func TestApplyForceLastsOneStep(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	b := NewBody(2, &Sphere{Radius: 1}, mgl64.Vec3{})
	b.LinearDamping = 0
	w.AddBody(b)

	b.Sleep()
	b.ApplyForce(mgl64.Vec3{4, 0, 0})
	assert.Equal(t, Awake, b.SleepState)
	stepN(t, w, 1)
	assert.InDelta(t, 2*fixedStep, b.Velocity.X(), 1e-12)

	stepN(t, w, 1)
	assert.InDelta(t, 2*fixedStep, b.Velocity.X(), 1e-12, "force is cleared after a step")

	static := NewBody(0, &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{10, 0, 0})
	w.AddBody(static)
	static.ApplyForce(mgl64.Vec3{4, 0, 0})
	stepN(t, w, 1)
	assert.Equal(t, mgl64.Vec3{}, static.Velocity)
}

func TestTinySphereRisesOutOfFloor(t *testing.T) {
	w, _ := newTestWorld()
	// 9mm deep: less than the fixed slop, far more than its radius
	r := 0.003
	ball := NewBody(1, &Sphere{Radius: r}, mgl64.Vec3{0, -0.006, 0})
	w.AddBody(ball)

	stepN(t, w, 120)
	assert.Greater(t, ball.Position.Y(), r/2)
	assert.InDelta(t, r, ball.Position.Y(), 0.1*r+1e-3)
}

func TestStepAccumulator(t *testing.T) {
	w := NewWorld(mgl64.Vec3{0, -9.82, 0})

	require.NoError(t, w.Step(fixedStep, fixedStep/2, 3))
	assert.Equal(t, uint64(0), w.steps, "half a step is carried over")
	require.NoError(t, w.Step(fixedStep, fixedStep/2, 3))
	assert.Equal(t, uint64(1), w.steps)

	require.NoError(t, w.Step(fixedStep, 10, 3))
	assert.Equal(t, uint64(4), w.steps, "at most maxSubSteps per call")
	assert.Less(t, w.accumulator, fixedStep, "backlog beyond maxSubSteps is dropped")

	before := w.steps
	require.NoError(t, w.Step(fixedStep, 0, 3))
	assert.Equal(t, before+1, w.steps, "zero delta runs one fixed step")
}

func TestInterpolatedPose(t *testing.T) {
	w := NewWorld(mgl64.Vec3{0, -10, 0})
	b := NewBody(1, &Sphere{Radius: 0.1}, mgl64.Vec3{0, 10, 0})
	w.AddBody(b)

	require.NoError(t, w.Step(fixedStep, fixedStep*1.5, 3))
	pos, rot := b.InterpolatedPose()
	assert.Less(t, pos.Y(), b.previousPosition.Y())
	assert.Greater(t, pos.Y(), b.Position.Y())
	assert.InDelta(t, (b.previousPosition.Y()+b.Position.Y())/2, pos.Y(), 1e-9)
	assert.Equal(t, mgl64.QuatIdent(), rot)

	require.NoError(t, w.Step(fixedStep, 0, 3))
	pos, _ = b.InterpolatedPose()
	assert.Equal(t, b.Position, pos, "a zero delta step lands on the raw pose")

	w.RemoveBody(b)
	pos, _ = b.InterpolatedPose()
	assert.Equal(t, b.Position, pos)
}

func TestStepDiverged(t *testing.T) {
	w := NewWorld(mgl64.Vec3{0, -9.82, 0})
	ok := NewBody(1, &Sphere{Radius: 1}, mgl64.Vec3{10, 0, 0})
	bad := NewBody(1, &Sphere{Radius: 1}, mgl64.Vec3{})
	bad.Velocity = mgl64.Vec3{math.Inf(1), 0, 0}
	w.AddBody(ok)
	w.AddBody(bad)

	err := w.Step(fixedStep, fixedStep, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStepDiverged))

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Same(t, bad, stepErr.Body)
	assert.Contains(t, err.Error(), "sphere")
}

func TestAddRemoveBody(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	b := NewBody(1, &Sphere{Radius: 1}, mgl64.Vec3{})

	w.AddBody(b)
	w.AddBody(b)
	assert.Equal(t, 1, w.NumBodies())
	assert.True(t, w.HasBody(b))
	assert.Same(t, w, b.World())
	assert.Same(t, w.DefaultMaterial, b.Material)

	assert.True(t, w.RemoveBody(b))
	assert.False(t, w.RemoveBody(b))
	assert.False(t, w.HasBody(b))
	assert.Zero(t, w.NumBodies())
}

func TestContactMaterialLookup(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	ice := NewMaterial("ice")
	rubber := NewMaterial("rubber")
	cm := NewContactMaterial(ice, rubber, 0.05, 0.9)
	w.AddContactMaterial(cm)

	assert.Same(t, cm, w.ContactMaterial(ice, rubber))
	assert.Same(t, cm, w.ContactMaterial(rubber, ice), "pair is unordered")
	assert.Same(t, w.DefaultContactMaterial, w.ContactMaterial(ice, ice))
	assert.Same(t, w.DefaultContactMaterial, w.ContactMaterial(nil, rubber))

	def := NewContactMaterial(w.DefaultMaterial, w.DefaultMaterial, 0.1, 0.7)
	w.SetDefaultContactMaterial(def)
	assert.Same(t, def, w.ContactMaterial(w.DefaultMaterial, w.DefaultMaterial))
	assert.Same(t, def, w.ContactMaterial(ice, ice))
}

func TestSAPMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	w, _ := newTestWorld()
	for i := 0; i < 120; i++ {
		pos := mgl64.Vec3{rng.Float64()*8 - 4, rng.Float64() * 5, rng.Float64()*8 - 4}
		var b *Body
		if i%3 == 0 {
			he := mgl64.Vec3{rng.Float64()*0.5 + 0.1, rng.Float64()*0.5 + 0.1, rng.Float64()*0.5 + 0.1}
			b = NewBody(1, &Box{HalfExtents: he}, pos)
			b.Quaternion = mgl64.QuatRotate(rng.Float64()*math.Pi, mgl64.Vec3{0, 1, 1}.Normalize())
		} else {
			b = NewBody(1, &Sphere{Radius: rng.Float64()}, pos)
		}
		if i%7 == 0 {
			b.Sleep()
		}
		w.AddBody(b)
	}

	naive := NaiveBroadphase{}.CollisionPairs(w.Bodies())
	for _, axis := range []int{0, 1, 2} {
		sap := &SAPBroadphase{Axis: axis}
		got := sap.CollisionPairs(w.Bodies())
		want := append([]Pair(nil), naive...)
		SortPairs(got)
		SortPairs(want)
		assert.Equal(t, want, got, "axis %d", axis)
	}
	auto := NewSAPBroadphase().CollisionPairs(w.Bodies())
	SortPairs(auto)
	SortPairs(naive)
	assert.Equal(t, naive, auto)
	assert.NotEmpty(t, naive)
}

func TestBroadphaseFilters(t *testing.T) {
	w, floor := newTestWorld()
	wall := NewBody(0, &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{})
	w.AddBody(wall)
	asleep := NewBody(1, &Sphere{Radius: 1}, mgl64.Vec3{0, 0.5, 0})
	w.AddBody(asleep)
	asleep.Sleep()

	assert.Empty(t, NaiveBroadphase{}.CollisionPairs(w.Bodies()),
		"static-static and sleeping-static pairs are skipped")

	asleep.Wake()
	pairs := NaiveBroadphase{}.CollisionPairs(w.Bodies())
	SortPairs(pairs)
	require.Len(t, pairs, 2)
	assert.Same(t, floor, pairs[0].A)
	assert.Same(t, asleep, pairs[0].B)
	assert.Same(t, wall, pairs[1].A)
}
