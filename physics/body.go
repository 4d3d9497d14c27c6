package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SleepState of a dynamic body.
type SleepState int

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

func (s SleepState) String() string {
	switch s {
	case Awake:
		return "awake"
	case Sleepy:
		return "sleepy"
	case Sleeping:
		return "sleeping"
	}
	return "unknown"
}

const (
	DefaultSleepSpeedLimit = 0.1
	DefaultSleepTimeLimit  = 1.0
	DefaultDamping         = 0.01
)

// Body is a rigid body. A body with zero mass is static: it never moves and
// collides with dynamic bodies only.
type Body struct {
	ID       uint64
	Shape    Shape
	Material *Material

	Mass            float64
	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	LinearDamping  float64
	AngularDamping float64

	AllowSleep      bool
	SleepSpeedLimit float64
	SleepTimeLimit  float64
	SleepState      SleepState

	force mgl64.Vec3

	invMass          float64
	invInertia       mgl64.Vec3
	invInertiaWorld  mgl64.Mat3
	previousPosition mgl64.Vec3
	previousRotation mgl64.Quat
	sleepyTime       float64
	world            *World
}

// NewBody creates a body at pos with identity orientation. Pass mass 0 for a
// static body.
func NewBody(mass float64, shape Shape, pos mgl64.Vec3) *Body {
	b := &Body{
		Shape:           shape,
		Mass:            mass,
		Position:        pos,
		Quaternion:      mgl64.QuatIdent(),
		LinearDamping:   DefaultDamping,
		AngularDamping:  DefaultDamping,
		AllowSleep:      true,
		SleepSpeedLimit: DefaultSleepSpeedLimit,
		SleepTimeLimit:  DefaultSleepTimeLimit,
	}
	b.UpdateMassProperties()
	b.previousPosition = pos
	b.previousRotation = b.Quaternion
	return b
}

// UpdateMassProperties recomputes the inverse mass and inertia after Mass or
// Shape changed.
func (b *Body) UpdateMassProperties() {
	if b.Mass <= 0 {
		b.invMass = 0
		b.invInertia = mgl64.Vec3{}
		return
	}
	b.invMass = 1 / b.Mass
	inertia := b.Shape.Inertia(b.Mass)
	for i := range inertia {
		if inertia[i] > 0 {
			b.invInertia[i] = 1 / inertia[i]
		} else {
			b.invInertia[i] = 0
		}
	}
}

// InterpolatedPose blends the last two internal steps by the fraction of a
// step left in the world's accumulator. Renderers running at a frame rate
// that does not match the fixed step can draw it instead of the raw pose.
// Outside a world it is the current pose.
func (b *Body) InterpolatedPose() (mgl64.Vec3, mgl64.Quat) {
	if b.world == nil || b.world.alpha >= 1 {
		return b.Position, b.Quaternion
	}
	t := b.world.alpha
	return lerp(b.previousPosition, b.Position, t), mgl64.QuatSlerp(b.previousRotation, b.Quaternion, t)
}

func (b *Body) IsStatic() bool { return b.Mass <= 0 }

func (b *Body) IsSleeping() bool { return b.SleepState == Sleeping }

// World returns the world the body was added to, or nil.
func (b *Body) World() *World { return b.world }

// Wake puts a sleeping or sleepy body back into simulation.
func (b *Body) Wake() {
	b.SleepState = Awake
	b.sleepyTime = 0
}

// Sleep stops simulating the body until something wakes it.
func (b *Body) Sleep() {
	b.SleepState = Sleeping
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.sleepyTime = 0
}

// ApplyForce accumulates a world-space force at the centre of mass for the
// next step. Static bodies ignore it and sleeping bodies wake.
func (b *Body) ApplyForce(f mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	if b.IsSleeping() {
		b.Wake()
	}
	b.force = b.force.Add(f)
}

// ApplyImpulse changes velocity immediately. relPoint is the application point
// relative to the centre of mass, in world space.
func (b *Body) ApplyImpulse(impulse, relPoint mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	if b.IsSleeping() {
		b.Wake()
	}
	b.updateInertiaWorld()
	b.Velocity = b.Velocity.Add(impulse.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaWorld.Mul3x1(relPoint.Cross(impulse)))
}

// AABB returns the current world-space bounds.
func (b *Body) AABB() AABB {
	return b.Shape.AABB(b.Position, b.Quaternion)
}

// active reports whether the body is integrated and responds to contacts.
func (b *Body) active() bool {
	return !b.IsStatic() && !b.IsSleeping()
}

func (b *Body) effectiveInvMass() float64 {
	if !b.active() {
		return 0
	}
	return b.invMass
}

func (b *Body) updateInertiaWorld() {
	if !b.active() {
		b.invInertiaWorld = mgl64.Mat3{}
		return
	}
	r := b.Quaternion.Mat4().Mat3()
	b.invInertiaWorld = r.Mul3(mgl64.Diag3(b.invInertia)).Mul3(r.Transpose())
}

func (b *Body) speedSqr() float64 {
	return b.Velocity.LenSqr() + b.AngularVelocity.LenSqr()
}

func (b *Body) sleepTick(dt float64) {
	if !b.AllowSleep || b.IsStatic() || b.IsSleeping() {
		return
	}
	limitSq := b.SleepSpeedLimit * b.SleepSpeedLimit
	speedSq := b.speedSqr()
	switch b.SleepState {
	case Awake:
		if speedSq < limitSq {
			b.SleepState = Sleepy
			b.sleepyTime = 0
		}
	case Sleepy:
		if speedSq > limitSq {
			b.Wake()
			return
		}
		b.sleepyTime += dt
		if b.sleepyTime > b.SleepTimeLimit {
			b.Sleep()
		}
	}
}

func (b *Body) integrate(dt float64, gravity mgl64.Vec3) {
	b.Velocity = b.Velocity.Add(gravity.Add(b.force.Mul(b.invMass)).Mul(dt))
}

func (b *Body) applyDamping(dt float64) {
	b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
}

func (b *Body) advance(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	if b.AngularVelocity.LenSqr() > 0 {
		spin := mgl64.Quat{W: 0, V: b.AngularVelocity}
		b.Quaternion = b.Quaternion.Add(spin.Mul(b.Quaternion).Scale(0.5 * dt)).Normalize()
	}
}

// nonFinite names the first non-finite state field, or "".
func (b *Body) nonFinite() string {
	switch {
	case !finiteVec(b.Position):
		return "position"
	case !finiteVec(b.Velocity):
		return "velocity"
	case !finiteVec(b.AngularVelocity):
		return "angular velocity"
	case !finiteVec(b.Quaternion.V) || !finite(b.Quaternion.W):
		return "orientation"
	}
	return ""
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
