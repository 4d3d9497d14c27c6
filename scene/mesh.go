package scene

import (
	"physics-playground/core"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend. A mesh may be shared by
// many nodes; releasing a node never releases its mesh.
type Mesh struct {
	Name       string
	Vertices   []core.Vertex
	Indices    []uint32
	IndexCount uint32

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	// A node's Material, when set, takes precedence.
	Material *Material

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}

	bounds      AABB
	boundsValid bool
}

// LocalBounds returns the box around every vertex, computed on first use.
// Vertices must not change afterwards.
func (m *Mesh) LocalBounds() AABB {
	if m.boundsValid || len(m.Vertices) == 0 {
		return m.bounds
	}
	m.bounds = AABB{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		m.bounds.extend(v.Position)
	}
	m.boundsValid = true
	return m.bounds
}

// CreateMeshFromData builds a Mesh from already generated vertices.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	return &Mesh{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: uint32(len(indices)),
	}
}
