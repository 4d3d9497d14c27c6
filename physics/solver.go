package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Approach speeds below this do not bounce, so resting contacts settle.
	restitutionThreshold = 1.0
	baumgarte            = 0.2
	penetrationSlop      = 0.01
	// Small shapes get a proportional slop so they cannot rest fully sunk.
	slopFraction         = 0.1
)

// contactConstraint is a contact prepared for the sequential impulse solver.
// target is the normal separation speed the solver drives towards.
type contactConstraint struct {
	a, b      *Body
	n, t1, t2 mgl64.Vec3
	ra, rb    mgl64.Vec3
	massN     float64
	massT1    float64
	massT2    float64
	target    float64
	friction  float64
	impulseN  float64
	impulseT1 float64
	impulseT2 float64
}

// Solver resolves contacts with sequential impulses.
type Solver struct {
	Iterations int

	constraints []contactConstraint
}

func NewSolver(iterations int) *Solver {
	return &Solver{Iterations: iterations}
}

func (s *Solver) solve(contacts []Contact, dt float64, lookup func(a, b *Material) *ContactMaterial) {
	s.constraints = s.constraints[:0]
	for _, c := range contacts {
		cm := lookup(c.A.Material, c.B.Material)
		cc := contactConstraint{
			a: c.A, b: c.B,
			n:        c.Normal,
			ra:       c.Point.Sub(c.A.Position),
			rb:       c.Point.Sub(c.B.Position),
			friction: cm.Friction,
		}
		cc.t1, cc.t2 = tangentBasis(cc.n)
		cc.massN = effectiveMass(cc.a, cc.b, cc.ra, cc.rb, cc.n)
		cc.massT1 = effectiveMass(cc.a, cc.b, cc.ra, cc.rb, cc.t1)
		cc.massT2 = effectiveMass(cc.a, cc.b, cc.ra, cc.rb, cc.t2)

		vn := relativeVelocity(cc.a, cc.b, cc.ra, cc.rb).Dot(cc.n)
		bounce := 0.0
		if vn < -restitutionThreshold {
			bounce = -cm.Restitution * vn
		}
		slop := math.Min(penetrationSlop, slopFraction*math.Min(minExtent(c.A.Shape), minExtent(c.B.Shape)))
		bias := baumgarte / dt * math.Max(c.Depth-slop, 0)
		cc.target = math.Max(bounce, bias)
		s.constraints = append(s.constraints, cc)
	}

	for it := 0; it < s.Iterations; it++ {
		for i := range s.constraints {
			s.solveContact(&s.constraints[i])
		}
	}
}

func (s *Solver) solveContact(c *contactConstraint) {
	if c.massN > 0 {
		vn := relativeVelocity(c.a, c.b, c.ra, c.rb).Dot(c.n)
		delta := (c.target - vn) * c.massN
		prev := c.impulseN
		c.impulseN = math.Max(prev+delta, 0)
		applyImpulse(c.a, c.b, c.ra, c.rb, c.n.Mul(c.impulseN-prev))
	}

	maxFriction := c.friction * c.impulseN
	c.impulseT1 = solveTangent(c, c.t1, c.massT1, c.impulseT1, maxFriction)
	c.impulseT2 = solveTangent(c, c.t2, c.massT2, c.impulseT2, maxFriction)
}

func solveTangent(c *contactConstraint, t mgl64.Vec3, mass, accumulated, limit float64) float64 {
	if mass <= 0 {
		return accumulated
	}
	vt := relativeVelocity(c.a, c.b, c.ra, c.rb).Dot(t)
	next := mgl64.Clamp(accumulated-vt*mass, -limit, limit)
	applyImpulse(c.a, c.b, c.ra, c.rb, t.Mul(next-accumulated))
	return next
}

// relativeVelocity is the velocity of B's contact point seen from A's.
func relativeVelocity(a, b *Body, ra, rb mgl64.Vec3) mgl64.Vec3 {
	va := a.Velocity.Add(a.AngularVelocity.Cross(ra))
	vb := b.Velocity.Add(b.AngularVelocity.Cross(rb))
	return vb.Sub(va)
}

// applyImpulse pushes B along p and A against it.
func applyImpulse(a, b *Body, ra, rb, p mgl64.Vec3) {
	if a.active() {
		a.Velocity = a.Velocity.Sub(p.Mul(a.invMass))
		a.AngularVelocity = a.AngularVelocity.Sub(a.invInertiaWorld.Mul3x1(ra.Cross(p)))
	}
	if b.active() {
		b.Velocity = b.Velocity.Add(p.Mul(b.invMass))
		b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaWorld.Mul3x1(rb.Cross(p)))
	}
}

func effectiveMass(a, b *Body, ra, rb, dir mgl64.Vec3) float64 {
	k := a.effectiveInvMass() + b.effectiveInvMass()
	if a.active() {
		k += a.invInertiaWorld.Mul3x1(ra.Cross(dir)).Cross(ra).Dot(dir)
	}
	if b.active() {
		k += b.invInertiaWorld.Mul3x1(rb.Cross(dir)).Cross(rb).Dot(dir)
	}
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(n[0]) > 0.57735 {
		t1 = mgl64.Vec3{n[1], -n[0], 0}
	} else {
		t1 = mgl64.Vec3{0, n[2], -n[1]}
	}
	t1 = t1.Normalize()
	return t1, n.Cross(t1)
}
