package playground

import (
	"context"
	"fmt"
	stdmath "math"
	"time"

	"fortio.org/log"
	"github.com/go-gl/mathgl/mgl64"

	"physics-playground/assets"
	"physics-playground/config"
	"physics-playground/core"
	"physics-playground/math"
	"physics-playground/physics"
	"physics-playground/scene"
	"physics-playground/ui"
)

// Assets are the pending loads the playground consumes as they resolve. Any
// of them may be nil.
type Assets struct {
	EnvMap  *assets.Future[*scene.CubeTexture]
	Texture *assets.Future[*scene.Texture]
	Model   *assets.Future[*scene.GLTFResult]
}

// RequestAssets starts every asset load in the background.
func RequestAssets(ctx context.Context, l *assets.Loader, cfg config.AssetsConfig) Assets {
	return Assets{
		EnvMap:  l.LoadCubeTexture(ctx, cfg.EnvMap, cfg.EnvMapExt),
		Texture: l.LoadTexture(ctx, cfg.Texture),
		Model:   l.LoadModel(ctx, cfg.Model),
	}
}

// cubeMaterials are the three materials the reference cube switches between.
type cubeMaterials struct {
	standard *scene.Material
	flat     *scene.Material
	textured *scene.Material
}

// New builds the scene, the world and the UI from cfg. r may be nil to run
// without drawing.
func New(cfg *config.Config, r Renderer, pending Assets) (*Playground, error) {
	background, err := config.ParseColor(cfg.Render.Background)
	if err != nil {
		return nil, fmt.Errorf("render.background: %w", err)
	}

	p := &Playground{
		cfg:            cfg,
		renderer:       r,
		pending:        pending,
		Registry:       &Registry{},
		Templates:      NewTemplates(),
		animationSpeed: cfg.Camera.AnimationSpeed,
	}

	p.Scene = scene.NewScene()
	p.Scene.Background = core.ColorHex(background)
	p.setupLights()
	p.setupCamera()
	p.setupCube()
	p.World = newWorld(cfg.Physics)
	p.setupFloor()
	p.Factory = NewFactory(p.Scene, p.World, p.Registry, p.Templates)

	seed := cfg.Spawner.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Infof("[Playground] spawner seed %d", seed)
	p.Spawner = NewSpawner(cfg.Spawner.Interval, cfg.Spawner.MaxPerTick, cfg.Spawner.MaxObjects, seed)

	labels := make([]string, len(Toggles))
	for i, t := range Toggles {
		labels[i] = t.String()
	}
	p.Panel = ui.NewPanel(labels, 12, 12, 140, 24, 6)

	p.Resize(cfg.Window.Width, cfg.Window.Height, cfg.Window.Width, cfg.Window.Height)
	return p, nil
}

func newWorld(cfg config.PhysicsConfig) *physics.World {
	w := physics.NewWorld(mgl64.Vec3(cfg.Gravity))
	if cfg.Broadphase == "naive" {
		w.Broadphase = physics.NaiveBroadphase{}
	}
	w.AllowSleep = cfg.AllowSleep
	w.Solver = physics.NewSolver(cfg.SolverIterations)
	w.SetDefaultContactMaterial(physics.NewContactMaterial(
		w.DefaultMaterial, w.DefaultMaterial, cfg.Friction, cfg.Restitution))
	return w
}

func (p *Playground) setupLights() {
	p.Scene.AddLight(scene.NewAmbientLight(core.ColorWhite, 0.7))

	sun := scene.NewDirectionalLight(core.ColorWhite, 0.2, math.NewVec3(5, 5, 5))
	sun.CastShadow = true
	sun.Shadow = scene.ShadowConfig{
		MapSize: p.cfg.Render.ShadowMapSize,
		Near:    0.5,
		Far:     15,
		Extent:  7,
	}
	p.Scene.AddLight(sun)
}

func (p *Playground) setupCamera() {
	c := p.cfg.Camera
	aspect := float32(p.cfg.Window.Width) / float32(p.cfg.Window.Height)
	fov := float32(float64(c.FOV) * stdmath.Pi / 180)
	cam := scene.NewCamera(fov, aspect, c.Near, c.Far)
	cam.SetPosition(math.NewVec3(c.Position[0], c.Position[1], c.Position[2]))
	p.Scene.SetCamera(cam)

	p.Controls = scene.NewOrbitControls(cam, math.Vec3Zero)
	p.Controls.EnableDamping = c.Damping > 0
	p.Controls.DampingFactor = c.Damping
}

func (p *Playground) setupCube() {
	flat := scene.NewPhongMaterial("cube-flat", core.ColorGreen)
	flat.FlatShading = true
	p.cubeMaterials = cubeMaterials{
		standard: scene.DefaultMaterial(),
		flat:     flat,
		textured: scene.NewLambertMaterial("cube-textured", core.ColorWhite, nil),
	}

	// the box template is 1x1x1; the reference cube is 2 units wide
	p.cube = scene.NewMeshNode("cube", p.Templates.Box)
	p.cube.SetScale(math.NewVec3(2, 2, 2))
	p.cube.CastShadow = true
	p.cube.Material = p.cubeMaterials.standard
}

func (p *Playground) setupFloor() {
	rot := math.QuaternionFromAxisAngle(math.Vec3Right, -stdmath.Pi/2)

	p.floorNode = scene.NewMeshNode("floor", scene.CreatePlane(10, 10))
	p.floorNode.Material = scene.NewStandardMaterial("floor", core.ColorHex(0x777777), 0.3, 0.4)
	p.floorNode.SetRotation(rot)
	p.floorNode.ReceiveShadow = true

	p.floorBody = physics.NewBody(0, &physics.Plane{}, mgl64.Vec3{})
	p.floorBody.Quaternion = mgl64.QuatRotate(-stdmath.Pi/2, mgl64.Vec3{1, 0, 0})
	p.floorBody.Material = p.World.DefaultMaterial
}
