// Package playground wires the scene, the physics world and the toggle panel
// into a single frame loop.
package playground

import (
	"fmt"

	"fortio.org/log"
	"github.com/go-gl/mathgl/mgl64"

	"physics-playground/config"
	"physics-playground/math"
	"physics-playground/physics"
	"physics-playground/scene"
	"physics-playground/stats"
	"physics-playground/ui"
)

// Renderer draws a scene with a screen-space overlay on top. Uploads and
// draws happen on the calling goroutine.
type Renderer interface {
	UploadTexture(tex *scene.Texture) error
	UploadCubeTexture(tex *scene.CubeTexture) error
	ReleaseTexture(tex *scene.Texture)
	ReleaseCubeTexture(tex *scene.CubeTexture)
	Resize(vp Viewport)
	Render(s *scene.Scene, overlay []ui.Quad) error
}

// Playground owns every piece of runtime state. It is driven from one
// goroutine: HandleInput, then Tick, once per frame.
type Playground struct {
	State State

	Scene     *scene.Scene
	World     *physics.World
	Registry  *Registry
	Templates *Templates
	Factory   *Factory
	Spawner   *Spawner
	Controls  *scene.OrbitControls
	Panel     *ui.Panel

	// Stats, when set, receives one sample per tick.
	Stats *stats.Recorder

	cfg      *config.Config
	renderer Renderer
	viewport Viewport

	cube          *scene.Node
	cubeMaterials cubeMaterials
	floorNode     *scene.Node
	floorBody     *physics.Body

	pending  Assets
	textures []*scene.Texture
	envMap   *scene.CubeTexture
	ship     *scene.Node
	shipErr  error
	tunables <-chan config.Tunables

	animationSpeed float32
	dragging       bool

	started     bool
	lastElapsed float64
	frames      uint64
}

func (p *Playground) Viewport() Viewport { return p.viewport }

// Cube is the reference cube node.
func (p *Playground) Cube() *scene.Node { return p.cube }

// Ship is the imported model once it has loaded, or nil.
func (p *Playground) Ship() *scene.Node { return p.ship }

func (p *Playground) Floor() (*scene.Node, *physics.Body) { return p.floorNode, p.floorBody }

// WatchTunables applies every value received on ch at the start of a tick.
func (p *Playground) WatchTunables(ch <-chan config.Tunables) {
	p.tunables = ch
}

// Title summarises the flags and object count for the window title.
func (p *Playground) Title() string {
	return fmt.Sprintf("%s | %s | objects: %d", p.cfg.Window.Title, p.State, p.Registry.Len())
}

// Resize reacts to a window or framebuffer size change. The camera projection
// is refreshed before the next render.
func (p *Playground) Resize(width, height, fbWidth, fbHeight int) {
	p.viewport = NewViewport(width, height, fbWidth, fbHeight, p.cfg.Render.MaxPixelRatio)
	p.Scene.Camera.UpdateAspectRatio(float32(width), float32(height))
	if p.renderer != nil {
		p.renderer.Resize(p.viewport)
	}
}

// HandleInput maps panel clicks and number keys to toggles and everything
// else to the orbit controls.
func (p *Playground) HandleInput(in *ui.InputManager) {
	mx, my := float32(in.MouseX), float32(in.MouseY)
	overPanel := p.Panel.Contains(mx, my)

	if in.IsMousePressed(ui.MouseLeft) {
		if i, ok := p.Panel.HitTest(mx, my); ok {
			p.Toggle(Toggles[i])
		} else if !overPanel {
			p.dragging = true
		}
	}
	if !in.IsMouseDown(ui.MouseLeft) {
		p.dragging = false
	}
	if p.dragging {
		p.Controls.Rotate(float32(in.MouseDeltaX), float32(in.MouseDeltaY), float32(p.viewport.Height))
	}
	if in.ScrollDelta != 0 && !overPanel {
		p.Controls.Zoom(float32(in.ScrollDelta))
	}

	for i, t := range Toggles {
		if in.IsKeyPressed(ui.Key1 + i) {
			p.Toggle(t)
		}
	}
}

// Tick runs one frame at the given clock reading in seconds. A physics
// failure is returned wrapped around physics.ErrStepDiverged and is fatal.
func (p *Playground) Tick(elapsed float64) error {
	delta := 0.0
	if p.started {
		delta = max(0, elapsed-p.lastElapsed)
	}
	p.started = true
	p.lastElapsed = elapsed
	p.frames++

	p.drainTunables()
	p.pollAssets()

	if p.State.Animation {
		p.cube.Rotate(math.Vec3Up, float32(delta)*p.animationSpeed)
	}

	if p.State.Physics {
		for range p.Spawner.Due(delta, p.Registry.Len()) {
			p.spawn()
		}
	}

	phys := p.cfg.Physics
	if err := p.World.Step(phys.FixedStep, delta, phys.MaxSubSteps); err != nil {
		return fmt.Errorf("frame %d at %.3fs: %w", p.frames, elapsed, err)
	}
	p.Registry.Sync()

	p.Controls.Update()

	if p.Stats != nil {
		p.Stats.Record(delta, p.Registry.Len())
	}

	if p.renderer == nil {
		return nil
	}
	return p.renderer.Render(p.Scene, p.Panel.Quads(func(i int) bool {
		return p.State.Get(Toggles[i])
	}))
}

func (p *Playground) spawn() {
	s := p.Spawner.Next()
	if p.cfg.Spawner.Shape == "box" {
		d := s.Radius * 2
		p.Factory.CreateBox(d, d, d, s.Position)
		return
	}
	p.Factory.CreateSphere(s.Radius, s.Position)
}

func (p *Playground) drainTunables() {
	if p.tunables == nil {
		return
	}
	for {
		select {
		case t, ok := <-p.tunables:
			if !ok {
				p.tunables = nil
				return
			}
			p.applyTunables(t)
		default:
			return
		}
	}
}

func (p *Playground) applyTunables(t config.Tunables) {
	if err := t.Validate(); err != nil {
		log.Warnf("[Playground] ignoring tunables: %v", err)
		return
	}
	p.World.Gravity = mgl64.Vec3(t.Gravity)
	cm := p.World.DefaultContactMaterial
	cm.Friction = t.Friction
	cm.Restitution = t.Restitution
	p.Spawner.Interval = t.SpawnInterval
	p.Spawner.MaxObjects = t.MaxObjects
	p.animationSpeed = t.AnimationSpeed
	p.Controls.DampingFactor = t.OrbitDamping
	p.Controls.EnableDamping = t.OrbitDamping > 0

	// sleeping bodies would ignore a new gravity
	for _, b := range p.World.Bodies() {
		if !b.IsStatic() {
			b.Wake()
		}
	}
	log.Infof("[Playground] tunables applied: gravity %v friction %.2f restitution %.2f interval %.3fs",
		t.Gravity, t.Friction, t.Restitution, t.SpawnInterval)
}

// pollAssets consumes loads that finished since the last tick. A failed load
// leaves its feature inert.
func (p *Playground) pollAssets() {
	if f := p.pending.EnvMap; f != nil {
		if env, done, err := f.Poll(); done {
			p.pending.EnvMap = nil
			if err == nil {
				err = p.upload(func(r Renderer) error { return r.UploadCubeTexture(env) })
			}
			if err != nil {
				log.Warnf("[Playground] environment map unavailable: %v", err)
			} else {
				p.envMap = env
				p.Templates.SetEnvMap(env)
				if p.cfg.Render.Skybox {
					p.Scene.Skybox = env
				}
				log.Infof("[Playground] environment map %s ready (%dpx)", env.Name, env.Size)
			}
		}
	}

	if f := p.pending.Texture; f != nil {
		if tex, done, err := f.Poll(); done {
			p.pending.Texture = nil
			if err == nil {
				err = p.upload(func(r Renderer) error { return r.UploadTexture(tex) })
			}
			if err != nil {
				log.Warnf("[Playground] cube texture unavailable: %v", err)
			} else {
				p.textures = append(p.textures, tex)
				p.cubeMaterials.textured.AlbedoTexture = tex
			}
		}
	}

	if f := p.pending.Model; f != nil {
		if res, done, err := f.Poll(); done {
			p.pending.Model = nil
			if err != nil {
				p.shipErr = err
				log.Warnf("[Playground] model unavailable: %v", err)
				return
			}
			for _, tex := range res.Textures {
				if err := p.upload(func(r Renderer) error { return r.UploadTexture(tex) }); err != nil {
					log.Warnf("[Playground] model texture %s: %v", tex.Name, err)
					continue
				}
				p.textures = append(p.textures, tex)
			}
			s := p.cfg.Assets.ModelScale
			p.ship = res.Group("ship")
			p.ship.SetScale(math.NewVec3(s, s, s))
			log.Infof("[Playground] model ready (%d roots)", len(res.Roots))
			p.reconcileShip()
		}
	}
}

// Close releases every GPU texture the playground uploaded. Shared meshes
// belong to the renderer. Calling Close twice is a no-op.
func (p *Playground) Close() {
	if p.renderer == nil {
		return
	}
	for _, tex := range p.textures {
		p.renderer.ReleaseTexture(tex)
	}
	p.textures = nil
	if p.envMap != nil {
		p.renderer.ReleaseCubeTexture(p.envMap)
		p.envMap = nil
	}
}

func (p *Playground) upload(fn func(Renderer) error) error {
	if p.renderer == nil {
		return nil
	}
	return fn(p.renderer)
}
