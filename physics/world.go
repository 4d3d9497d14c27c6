package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World owns the bodies and advances them in fixed internal steps.
//
// A World is not safe for concurrent use; drive it from one goroutine.
type World struct {
	Gravity    mgl64.Vec3
	Broadphase Broadphase
	Solver     *Solver
	AllowSleep bool

	DefaultMaterial        *Material
	DefaultContactMaterial *ContactMaterial

	// Time is the simulated time consumed by internal steps.
	Time float64

	bodies           []*Body
	contactMaterials map[materialPair]*ContactMaterial
	contacts         []Contact
	accumulator      float64
	alpha            float64
	steps            uint64
	nextID           uint64
}

// NewWorld creates a world with the given gravity, a sweep-and-prune
// broadphase, sleeping enabled and a 10 iteration solver. The default
// contact material has friction 0.3 and restitution 0; replace it with
// SetDefaultContactMaterial.
func NewWorld(gravity mgl64.Vec3) *World {
	def := NewMaterial("default")
	w := &World{
		Gravity:                gravity,
		Broadphase:             NewSAPBroadphase(),
		Solver:                 NewSolver(10),
		AllowSleep:             true,
		DefaultMaterial:        def,
		DefaultContactMaterial: NewContactMaterial(def, def, 0.3, 0),
		contactMaterials:       make(map[materialPair]*ContactMaterial),
	}
	return w
}

// AddBody registers b. Adding a body twice is a no-op.
func (w *World) AddBody(b *Body) {
	if b.world == w {
		return
	}
	w.nextID++
	b.ID = w.nextID
	b.world = w
	if b.Material == nil {
		b.Material = w.DefaultMaterial
	}
	w.bodies = append(w.bodies, b)
}

// RemoveBody unregisters b and reports whether it was present.
func (w *World) RemoveBody(b *Body) bool {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			b.world = nil
			return true
		}
	}
	return false
}

func (w *World) HasBody(b *Body) bool {
	return b != nil && b.world == w
}

// Bodies returns a snapshot of the registered bodies.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) NumBodies() int {
	return len(w.bodies)
}

// Contacts returns the contacts found by the last internal step.
func (w *World) Contacts() []Contact {
	return w.contacts
}

// AddContactMaterial registers cm for its material pair, replacing any
// previous entry.
func (w *World) AddContactMaterial(cm *ContactMaterial) {
	w.contactMaterials[pairKey(cm.A, cm.B)] = cm
}

// SetDefaultContactMaterial makes cm the fallback for unregistered pairs and
// registers it for its own pair.
func (w *World) SetDefaultContactMaterial(cm *ContactMaterial) {
	w.AddContactMaterial(cm)
	w.DefaultContactMaterial = cm
}

// ContactMaterial returns the contact material for a and b in either order,
// falling back to the default.
func (w *World) ContactMaterial(a, b *Material) *ContactMaterial {
	if cm, ok := w.contactMaterials[pairKey(a, b)]; ok {
		return cm
	}
	return w.DefaultContactMaterial
}

// Step advances the world by delta seconds of wall time using internal steps
// of size fixed. At most maxSubSteps internal steps run per call; backlog
// beyond that is dropped so a long stall does not cause a burst of catch-up
// work. A delta of 0 runs exactly one fixed step. The remaining fraction of
// a step is what Body.InterpolatedPose blends by.
func (w *World) Step(fixed, delta float64, maxSubSteps int) error {
	if fixed <= 0 {
		return nil
	}
	if delta == 0 {
		if err := w.internalStep(fixed); err != nil {
			return err
		}
		w.alpha = 1
		return nil
	}
	w.accumulator += delta
	for n := 0; w.accumulator >= fixed && n < maxSubSteps; n++ {
		if err := w.internalStep(fixed); err != nil {
			return err
		}
		w.accumulator -= fixed
	}
	w.accumulator = math.Mod(w.accumulator, fixed)
	w.alpha = w.accumulator / fixed
	return nil
}

func (w *World) internalStep(dt float64) error {
	for _, b := range w.bodies {
		b.previousPosition = b.Position
		b.previousRotation = b.Quaternion
		b.updateInertiaWorld()
	}

	pairs := w.Broadphase.CollisionPairs(w.bodies)
	w.contacts = w.contacts[:0]
	for _, p := range pairs {
		w.contacts = collide(p.A, p.B, w.contacts)
	}
	if w.AllowSleep {
		w.wakeFromContacts()
	}

	gravity := w.Gravity
	for _, b := range w.bodies {
		if b.active() {
			b.integrate(dt, gravity)
		}
	}

	w.Solver.solve(w.contacts, dt, w.ContactMaterial)

	for _, b := range w.bodies {
		if !b.active() {
			continue
		}
		b.applyDamping(dt)
		b.advance(dt)
		b.force = mgl64.Vec3{}
	}

	w.steps++
	w.Time += dt
	for _, b := range w.bodies {
		if field := b.nonFinite(); field != "" {
			return &StepError{Body: b, Step: w.steps, Time: w.Time, Field: field}
		}
	}

	if w.AllowSleep {
		for _, b := range w.bodies {
			b.sleepTick(dt)
		}
	}
	return nil
}

// wakeFromContacts wakes sleeping bodies hit by a fast-moving awake body.
func (w *World) wakeFromContacts() {
	woke := false
	for _, c := range w.contacts {
		if wakeByContact(c.A, c.B) || wakeByContact(c.B, c.A) {
			woke = true
		}
	}
	if woke {
		for _, b := range w.bodies {
			b.updateInertiaWorld()
		}
	}
}

func wakeByContact(sleeper, other *Body) bool {
	if !sleeper.IsSleeping() || !sleeper.AllowSleep || !other.active() {
		return false
	}
	limit := other.SleepSpeedLimit * other.SleepSpeedLimit
	if other.speedSqr() >= 2*limit {
		sleeper.Wake()
		return true
	}
	return false
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
