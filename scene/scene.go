package scene

import (
	"physics-playground/core"
	"physics-playground/math"
)

// Scene manages a collection of nodes and the active camera
type Scene struct {
	Root       *Node
	Camera     *Camera
	Lights     []*Light
	Background core.Color

	// Skybox, when set and uploaded, is drawn behind all geometry.
	Skybox *CubeTexture
}

// Light types
const (
	LightTypeAmbient = iota
	LightTypeDirectional
)

// ShadowConfig describes the orthographic shadow volume of a directional light.
type ShadowConfig struct {
	MapSize int
	Near    float32
	Far     float32
	// Extent is the half-size of the orthographic frustum on X and Y.
	Extent float32
}

// Light represents a light source. A directional light shines from Position
// toward Target.
type Light struct {
	Type       int
	Position   math.Vec3
	Target     math.Vec3
	Color      core.Color
	Intensity  float32
	CastShadow bool
	Shadow     ShadowConfig
}

// NewAmbientLight returns a light added uniformly to every surface.
func NewAmbientLight(color core.Color, intensity float32) *Light {
	return &Light{Type: LightTypeAmbient, Color: color, Intensity: intensity}
}

// NewDirectionalLight returns a light shining from position toward the origin.
func NewDirectionalLight(color core.Color, intensity float32, position math.Vec3) *Light {
	return &Light{
		Type:      LightTypeDirectional,
		Position:  position,
		Target:    math.Vec3Zero,
		Color:     color,
		Intensity: intensity,
		Shadow:    ShadowConfig{MapSize: 1024, Near: 0.5, Far: 500, Extent: 5},
	}
}

// Direction is the normalized direction the light travels.
func (l *Light) Direction() math.Vec3 {
	return l.Target.Sub(l.Position).Normalize()
}

// ShadowMatrices returns the view and orthographic projection of the light's
// shadow volume, looking from Position at Target.
func (l *Light) ShadowMatrices() (view, proj math.Mat4) {
	up := math.Vec3Up
	if d := l.Direction(); d.Dot(up) > 0.999 || d.Dot(up) < -0.999 {
		up = math.NewVec3(0, 0, 1)
	}
	e := l.Shadow.Extent
	view = math.Mat4LookAt(l.Position, l.Target, up)
	proj = math.Mat4Orthographic(-e, e, -e, e, l.Shadow.Near, l.Shadow.Far)
	return view, proj
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Lights:     make([]*Light, 0),
		Background: core.ColorBlack,
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// RemoveNode detaches node from the root and reports whether it was present.
func (s *Scene) RemoveNode(node *Node) bool {
	return s.Root.RemoveChild(node)
}

// Contains reports whether node is a direct child of the root.
func (s *Scene) Contains(node *Node) bool {
	return s.Root.HasChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// AmbientColor sums every ambient light into one color.
func (s *Scene) AmbientColor() core.Color {
	var c core.Color
	for _, l := range s.Lights {
		if l != nil && l.Type == LightTypeAmbient {
			c.R += l.Color.R * l.Intensity
			c.G += l.Color.G * l.Intensity
			c.B += l.Color.B * l.Intensity
		}
	}
	c.A = 1
	return c
}

// DirectionalLight returns the first directional light, or nil.
func (s *Scene) DirectionalLight() *Light {
	for _, l := range s.Lights {
		if l != nil && l.Type == LightTypeDirectional {
			return l
		}
	}
	return nil
}

// GetVisibleNodes returns all nodes with meshes whose whole ancestry is visible.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return visible
}
