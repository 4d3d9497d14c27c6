package physics

import "sync/atomic"

var materialIDs atomic.Uint32

// Material tags a body's surface. Friction and restitution live on the
// ContactMaterial describing a pair of materials.
type Material struct {
	Name string
	id   uint32
}

func NewMaterial(name string) *Material {
	return &Material{Name: name, id: materialIDs.Add(1)}
}

// ContactMaterial holds the response parameters used when bodies made of A
// and B touch. The pair is unordered.
type ContactMaterial struct {
	A, B        *Material
	Friction    float64
	Restitution float64
}

func NewContactMaterial(a, b *Material, friction, restitution float64) *ContactMaterial {
	return &ContactMaterial{A: a, B: b, Friction: friction, Restitution: restitution}
}

type materialPair struct{ lo, hi uint32 }

func pairKey(a, b *Material) materialPair {
	var ia, ib uint32
	if a != nil {
		ia = a.id
	}
	if b != nil {
		ib = b.id
	}
	if ia > ib {
		ia, ib = ib, ia
	}
	return materialPair{ia, ib}
}
