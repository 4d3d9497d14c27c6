package playground

import (
	"github.com/go-gl/mathgl/mgl64"

	"physics-playground/core"
	"physics-playground/math"
	"physics-playground/physics"
	"physics-playground/scene"
)

// Templates are the shared unit meshes every spawned object draws with. They
// live as long as the playground and are never released with an object.
type Templates struct {
	Sphere *scene.Mesh
	Box    *scene.Mesh
}

func newObjectMaterial(name string) *scene.Material {
	m := scene.NewStandardMaterial(name, core.ColorWhite, 0.3, 0.4)
	m.EnvMapIntensity = 0.5
	return m
}

// NewTemplates builds a radius 1 sphere and a 1x1x1 box.
func NewTemplates() *Templates {
	sphere := scene.CreateSphere(1, 20, 20)
	sphere.Material = newObjectMaterial("sphere")
	box := scene.CreateBox(1, 1, 1)
	box.Material = newObjectMaterial("box")
	return &Templates{Sphere: sphere, Box: box}
}

// SetEnvMap points both template materials at env.
func (t *Templates) SetEnvMap(env *scene.CubeTexture) {
	t.Sphere.Material.EnvMap = env
	t.Box.Material.EnvMap = env
}

// Factory creates and releases dynamic objects. Every object it creates is
// in the scene, the world and the registry, or in none of them.
type Factory struct {
	Scene     *scene.Scene
	World     *physics.World
	Registry  *Registry
	Templates *Templates
	Mass      float64
}

func NewFactory(s *scene.Scene, w *physics.World, r *Registry, t *Templates) *Factory {
	return &Factory{Scene: s, World: w, Registry: r, Templates: t, Mass: 1}
}

// CreateSphere spawns a sphere of the given radius centred at pos.
func (f *Factory) CreateSphere(radius float64, pos mgl64.Vec3) DynamicObject {
	r := float32(radius)
	return f.create("sphere", f.Templates.Sphere, math.NewVec3(r, r, r),
		&physics.Sphere{Radius: radius}, pos)
}

// CreateBox spawns a width x height x depth box centred at pos.
func (f *Factory) CreateBox(width, height, depth float64, pos mgl64.Vec3) DynamicObject {
	return f.create("box", f.Templates.Box,
		math.Vec3FromFloat64(width, height, depth),
		&physics.Box{HalfExtents: mgl64.Vec3{width / 2, height / 2, depth / 2}}, pos)
}

func (f *Factory) create(name string, mesh *scene.Mesh, scale math.Vec3, shape physics.Shape, pos mgl64.Vec3) DynamicObject {
	node := scene.NewMeshNode(name, mesh)
	node.SetScale(scale)
	node.SetPosition(math.Vec3FromFloat64(pos[0], pos[1], pos[2]))
	node.CastShadow = true

	body := physics.NewBody(f.Mass, shape, pos)
	body.Material = f.World.DefaultMaterial

	obj := DynamicObject{Node: node, Body: body}
	f.Scene.AddNode(node)
	f.World.AddBody(body)
	f.Registry.Add(obj)
	return obj
}

// Release detaches obj from the scene and the world. The template mesh and
// its material are left alone.
func (f *Factory) Release(obj DynamicObject) {
	f.Scene.RemoveNode(obj.Node)
	f.World.RemoveBody(obj.Body)
}
