package playground

import (
	"physics-playground/math"
	"physics-playground/physics"
	"physics-playground/scene"
)

// DynamicObject pairs a rendered node with the body that drives it. The two
// are created and released together.
type DynamicObject struct {
	Node *scene.Node
	Body *physics.Body
}

// Registry is the single owner of every spawned object. Cleanup walks the
// registry, never the scene graph.
type Registry struct {
	objects []DynamicObject
}

func (r *Registry) Add(obj DynamicObject) {
	r.objects = append(r.objects, obj)
}

func (r *Registry) Len() int {
	return len(r.objects)
}

// Objects returns the live objects. The slice is only valid until the next
// Add or Clear.
func (r *Registry) Objects() []DynamicObject {
	return r.objects
}

// Owns reports whether b belongs to a registered object.
func (r *Registry) Owns(b *physics.Body) bool {
	for _, obj := range r.objects {
		if obj.Body == b {
			return true
		}
	}
	return false
}

// Clear empties the registry and hands back what it held.
func (r *Registry) Clear() []DynamicObject {
	out := r.objects
	r.objects = nil
	return out
}

// Sync copies each body's pose onto its node.
func (r *Registry) Sync() {
	for _, obj := range r.objects {
		p, q := obj.Body.Position, obj.Body.Quaternion
		obj.Node.SetPose(
			math.Vec3FromFloat64(p[0], p[1], p[2]),
			math.QuaternionFromFloat64(q.V[0], q.V[1], q.V[2], q.W),
		)
	}
}
