package scene

import (
	"physics-playground/core"
	"physics-playground/math"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Visible   bool
	Id        uint32

	// Material overrides Mesh.Material for this node only, so nodes sharing
	// a template mesh can still be shaded differently.
	Material *Material

	CastShadow    bool
	ReceiveShadow bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

var nodeIdCounter uint32 = 0

func NewNode(name string) *Node {
	nodeIdCounter++
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Children:         make([]*Node, 0),
		Visible:          true,
		Id:               nodeIdCounter,
		worldMatrixDirty: true,
	}
}

// NewMeshNode creates a node drawing mesh.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

// RemoveChild detaches child and reports whether it was attached to n.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return true
		}
	}
	return false
}

// HasChild reports whether child is a direct child of n.
func (n *Node) HasChild(child *Node) bool {
	return child != nil && child.Parent == n
}

// EffectiveMaterial resolves the material used to draw this node.
func (n *Node) EffectiveMaterial() *Material {
	if n.Material != nil {
		return n.Material
	}
	if n.Mesh != nil && n.Mesh.Material != nil {
		return n.Mesh.Material
	}
	return nil
}

func (n *Node) GetWorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = localMatrix.Mul(n.Parent.GetWorldMatrix())
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

// SetPose sets position and rotation together.
func (n *Node) SetPose(pos math.Vec3, rot math.Quaternion) {
	n.Transform.Position = pos
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
