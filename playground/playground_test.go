package playground

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physics-playground/assets"
	"physics-playground/config"
	reMath "physics-playground/math"
	"physics-playground/physics"
	"physics-playground/scene"
	"physics-playground/stats"
	"physics-playground/ui"
)

const frame = 1.0 / 60

type fakeRenderer struct {
	textures  []*scene.Texture
	cubes     []*scene.CubeTexture
	viewports []Viewport
	frames    int
	overlay   []ui.Quad
	uploadErr error

	releasedTextures []*scene.Texture
	releasedCubes    []*scene.CubeTexture
}

func (f *fakeRenderer) UploadTexture(tex *scene.Texture) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.textures = append(f.textures, tex)
	return nil
}

func (f *fakeRenderer) UploadCubeTexture(tex *scene.CubeTexture) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.cubes = append(f.cubes, tex)
	return nil
}

func (f *fakeRenderer) ReleaseTexture(tex *scene.Texture) {
	f.releasedTextures = append(f.releasedTextures, tex)
}

func (f *fakeRenderer) ReleaseCubeTexture(tex *scene.CubeTexture) {
	f.releasedCubes = append(f.releasedCubes, tex)
}

func (f *fakeRenderer) Resize(vp Viewport) { f.viewports = append(f.viewports, vp) }

func (f *fakeRenderer) Render(_ *scene.Scene, overlay []ui.Quad) error {
	f.frames++
	f.overlay = overlay
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Spawner.Seed = 42
	return cfg
}

func newTestPlayground(t *testing.T, pending Assets) (*Playground, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	p, err := New(testConfig(), r, pending)
	require.NoError(t, err)
	return p, r
}

// run ticks n frames starting after the given clock reading and returns the
// final reading.
func run(t *testing.T, p *Playground, start float64, n int) float64 {
	t.Helper()
	now := start
	for range n {
		now += frame
		require.NoError(t, p.Tick(now))
	}
	return now
}

func countNodes(s *scene.Scene, name string) int {
	n := 0
	for _, c := range s.Root.Children {
		if c.Name == name {
			n++
		}
	}
	return n
}

func TestAllFlagsStartOff(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	assert.Equal(t, State{}, p.State)
	assert.Empty(t, p.Scene.Root.Children)
	assert.Zero(t, p.World.NumBodies())
	assert.Contains(t, p.Title(), "objects: 0")
}

func TestToggleParity(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	rng := rand.New(rand.NewPCG(1, 2))
	clicks := map[Toggle]int{}

	for i := 0; i < 300; i++ {
		tg := Toggles[rng.IntN(len(Toggles))]
		p.Toggle(tg)
		clicks[tg]++
		for _, each := range Toggles {
			require.Equal(t, clicks[each]%2 == 1, p.State.Get(each), "after %d clicks of %s", clicks[each], each)
		}
		assert.Equal(t, p.State.BasicMesh, p.Scene.Contains(p.Cube()))
		assert.Equal(t, p.State.Wireframe, p.Cube().Material.Wireframe)
		floor, body := p.Floor()
		assert.Equal(t, p.State.Physics, p.Scene.Contains(floor))
		assert.Equal(t, p.State.Physics, p.World.HasBody(body))
	}
}

func TestUnknownToggleIsNoop(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	p.Toggle(Toggle(99))
	p.Toggle(Toggle(-1))
	assert.Equal(t, State{}, p.State)
	assert.Equal(t, "Toggle(99)", Toggle(99).String())
}

func TestCubeMaterialLastWriterWins(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	std := p.Cube().Material

	p.Toggle(ToggleCubeMaterial)
	assert.Equal(t, scene.ShadingPhong, p.Cube().Material.Shading)
	assert.True(t, p.Cube().Material.FlatShading)

	p.Toggle(ToggleTextureMaterial)
	assert.Equal(t, scene.ShadingLambert, p.Cube().Material.Shading)

	p.Toggle(ToggleCubeMaterial)
	assert.Same(t, std, p.Cube().Material)
	assert.True(t, p.State.TextureMaterial)
}

func TestWireframeFollowsCube(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	std := p.Cube().Material

	p.Toggle(ToggleWireframe)
	assert.True(t, std.Wireframe)

	p.Toggle(ToggleCubeMaterial)
	assert.NotSame(t, std, p.Cube().Material)
	assert.True(t, p.Cube().Material.Wireframe)
	assert.False(t, std.Wireframe)

	p.Toggle(ToggleWireframe)
	assert.False(t, p.Cube().Material.Wireframe)

	p.Toggle(ToggleCubeMaterial)
	assert.Same(t, std, p.Cube().Material)
	assert.False(t, std.Wireframe)
}

func TestAnimationRotatesCube(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	before := p.Cube().Transform.Rotation
	now := run(t, p, 0, 10)
	assert.Equal(t, before, p.Cube().Transform.Rotation)

	p.Toggle(ToggleAnimation)
	run(t, p, now, 10)
	assert.NotEqual(t, before, p.Cube().Transform.Rotation)
}

func TestPhysicsOffReleasesEverything(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	p.Toggle(ToggleBasicMesh)
	p.Toggle(TogglePhysics)
	run(t, p, 0, 120)

	n := p.Registry.Len()
	require.Positive(t, n)
	assert.Equal(t, n+1, p.World.NumBodies())
	assert.Equal(t, n, countNodes(p.Scene, "sphere"))
	objects := append([]DynamicObject(nil), p.Registry.Objects()...)
	sphereVerts := len(p.Templates.Sphere.Vertices)

	p.Toggle(TogglePhysics)
	assert.Zero(t, p.Registry.Len())
	assert.Zero(t, p.World.NumBodies())
	assert.Zero(t, countNodes(p.Scene, "sphere"))
	assert.Zero(t, countNodes(p.Scene, "floor"))
	for _, obj := range objects {
		assert.Nil(t, obj.Node.Parent)
		assert.Nil(t, obj.Body.World())
	}

	// the cube and the shared templates survive
	assert.True(t, p.Scene.Contains(p.Cube()))
	assert.Len(t, p.Templates.Sphere.Vertices, sphereVerts)
	assert.NotNil(t, p.Templates.Sphere.Material)
}

func TestPhysicsOffRemovesLeakedBodies(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	p.Toggle(TogglePhysics)
	stray := physics.NewBody(1, &physics.Sphere{Radius: 0.5}, mgl64.Vec3{0, 3, 0})
	p.World.AddBody(stray)

	p.Toggle(TogglePhysics)
	assert.Zero(t, p.World.NumBodies())
	assert.Nil(t, stray.World())
}

func TestSpawnsOnlyWhilePhysicsOn(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	now := run(t, p, 0, 60)
	assert.Zero(t, p.Registry.Len())

	p.Toggle(TogglePhysics)
	run(t, p, now, 60)
	// 1s at one spawn per 0.15s
	assert.InDelta(t, 6, p.Registry.Len(), 1)
}

func TestBoxSpawnShape(t *testing.T) {
	cfg := testConfig()
	cfg.Spawner.Shape = "box"
	p, err := New(cfg, nil, Assets{})
	require.NoError(t, err)
	p.Toggle(TogglePhysics)
	run(t, p, 0, 30)
	require.Positive(t, p.Registry.Len())
	for _, obj := range p.Registry.Objects() {
		assert.Equal(t, physics.KindBox, obj.Body.Shape.Kind())
		assert.Same(t, p.Templates.Box, obj.Node.Mesh)
	}
}

func TestSyncCopiesBodyPoseExactly(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	p.Toggle(TogglePhysics)
	obj := p.Factory.CreateSphere(0.5, mgl64.Vec3{1, 4, -2})
	obj.Body.AngularVelocity = mgl64.Vec3{0.3, 1.1, -0.7}
	run(t, p, 0, 45)

	for _, o := range p.Registry.Objects() {
		bp, bq := o.Body.Position, o.Body.Quaternion
		assert.Equal(t, reMath.Vec3FromFloat64(bp[0], bp[1], bp[2]), o.Node.Transform.Position)
		assert.Equal(t, reMath.QuaternionFromFloat64(bq.V[0], bq.V[1], bq.V[2], bq.W), o.Node.Transform.Rotation)
	}
}

func TestFactoryKeepsSceneWorldAndRegistryInStep(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	s := p.Factory.CreateSphere(0.25, mgl64.Vec3{0, 5, 0})
	b := p.Factory.CreateBox(1, 2, 3, mgl64.Vec3{2, 5, 0})

	for _, obj := range []DynamicObject{s, b} {
		assert.True(t, p.Scene.Contains(obj.Node))
		assert.True(t, p.World.HasBody(obj.Body))
		assert.True(t, p.Registry.Owns(obj.Body))
		assert.True(t, obj.Node.CastShadow)
		assert.Equal(t, 1.0, obj.Body.Mass)
		assert.Same(t, p.World.DefaultMaterial, obj.Body.Material)
	}
	assert.Same(t, p.Templates.Sphere, s.Node.Mesh)
	assert.Equal(t, reMath.NewVec3(0.25, 0.25, 0.25), s.Node.Transform.Scale)
	assert.Equal(t, reMath.NewVec3(1, 2, 3), b.Node.Transform.Scale)
	assert.Equal(t, mgl64.Vec3{0.5, 1, 1.5}, b.Body.Shape.(*physics.Box).HalfExtents)
}

func shipModel() *scene.GLTFResult {
	root := scene.NewMeshNode("hull", scene.CreateBox(1, 1, 1))
	return &scene.GLTFResult{Roots: []*scene.Node{root}}
}

func TestImportBeforeReadyShowsShipOnce(t *testing.T) {
	model := assets.NewFuture[*scene.GLTFResult]()
	p, _ := newTestPlayground(t, Assets{Model: model})

	p.Toggle(ToggleImportedShip)
	now := run(t, p, 0, 3)
	assert.Nil(t, p.Ship())
	assert.Zero(t, countNodes(p.Scene, "ship"))

	model.Resolve(shipModel(), nil)
	now = run(t, p, now, 1)
	require.NotNil(t, p.Ship())
	assert.Equal(t, 1, countNodes(p.Scene, "ship"))
	assert.Equal(t, reMath.NewVec3(0.25, 0.25, 0.25), p.Ship().Transform.Scale)

	run(t, p, now, 5)
	assert.Equal(t, 1, countNodes(p.Scene, "ship"))

	p.Toggle(ToggleImportedShip)
	assert.Zero(t, countNodes(p.Scene, "ship"))
	p.Toggle(ToggleImportedShip)
	assert.Equal(t, 1, countNodes(p.Scene, "ship"))
}

func TestImportToggledOffBeforeReadyStaysHidden(t *testing.T) {
	model := assets.NewFuture[*scene.GLTFResult]()
	p, _ := newTestPlayground(t, Assets{Model: model})

	p.Toggle(ToggleImportedShip)
	p.Toggle(ToggleImportedShip)
	model.Resolve(shipModel(), nil)
	run(t, p, 0, 2)
	require.NotNil(t, p.Ship())
	assert.False(t, p.Scene.Contains(p.Ship()))
}

func TestAssetFailuresAreNotFatal(t *testing.T) {
	fail := fmt.Errorf("%w: gone", assets.ErrAssetLoad)
	p, r := newTestPlayground(t, Assets{
		EnvMap:  assets.Resolved[*scene.CubeTexture](nil, fail),
		Texture: assets.Resolved[*scene.Texture](nil, fail),
		Model:   assets.Resolved[*scene.GLTFResult](nil, fail),
	})

	p.Toggle(ToggleImportedShip)
	p.Toggle(ToggleTextureMaterial)
	run(t, p, 0, 3)
	assert.Nil(t, p.Ship())
	assert.Nil(t, p.Cube().Material.AlbedoTexture)
	assert.Nil(t, p.Templates.Sphere.Material.EnvMap)
	assert.Empty(t, r.textures)
	assert.Equal(t, 3, r.frames)
}

func TestLoadedAssetsAreUploadedAndAttached(t *testing.T) {
	tex := &scene.Texture{Name: "diamond", Width: 1, Height: 1, Pixels: []byte{1, 2, 3, 255}}
	env := &scene.CubeTexture{Name: "env", Size: 1}
	p, r := newTestPlayground(t, Assets{
		EnvMap:  assets.Resolved(env, nil),
		Texture: assets.Resolved(tex, nil),
	})
	run(t, p, 0, 1)

	assert.Equal(t, []*scene.CubeTexture{env}, r.cubes)
	assert.Equal(t, []*scene.Texture{tex}, r.textures)
	assert.Same(t, env, p.Templates.Sphere.Material.EnvMap)
	assert.Same(t, env, p.Templates.Box.Material.EnvMap)
	assert.Nil(t, p.Scene.Skybox)

	p.Toggle(ToggleTextureMaterial)
	assert.Same(t, tex, p.Cube().Material.AlbedoTexture)
}

func TestCloseReleasesUploadedTextures(t *testing.T) {
	tex := &scene.Texture{Name: "diamond", Width: 1, Height: 1, Pixels: []byte{1, 2, 3, 255}}
	env := &scene.CubeTexture{Name: "env", Size: 1}
	p, r := newTestPlayground(t, Assets{
		EnvMap:  assets.Resolved(env, nil),
		Texture: assets.Resolved(tex, nil),
	})
	run(t, p, 0, 1)

	p.Close()
	assert.Equal(t, []*scene.Texture{tex}, r.releasedTextures)
	assert.Equal(t, []*scene.CubeTexture{env}, r.releasedCubes)

	p.Close()
	assert.Len(t, r.releasedTextures, 1)
	assert.Len(t, r.releasedCubes, 1)
}

func TestCloseSkipsFailedUploads(t *testing.T) {
	tex := &scene.Texture{Name: "diamond", Width: 1, Height: 1, Pixels: make([]byte, 4)}
	p, r := newTestPlayground(t, Assets{
		EnvMap:  assets.Resolved(&scene.CubeTexture{Name: "env", Size: 1}, nil),
		Texture: assets.Resolved(tex, nil),
	})
	r.uploadErr = errors.New("no context")
	run(t, p, 0, 1)

	p.Close()
	assert.Empty(t, r.releasedTextures)
	assert.Empty(t, r.releasedCubes)
}

func TestUploadFailureLeavesMaterialUntextured(t *testing.T) {
	tex := &scene.Texture{Name: "diamond", Width: 1, Height: 1, Pixels: make([]byte, 4)}
	p, r := newTestPlayground(t, Assets{Texture: assets.Resolved(tex, nil)})
	r.uploadErr = errors.New("no context")
	run(t, p, 0, 1)
	p.Toggle(ToggleTextureMaterial)
	assert.Nil(t, p.Cube().Material.AlbedoTexture)
}

func TestPhysicsStepFailureIsFatal(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	p.Toggle(TogglePhysics)
	obj := p.Factory.CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
	obj.Body.Velocity = mgl64.Vec3{math.NaN(), 0, 0}

	err := p.Tick(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, physics.ErrStepDiverged)
	var se *physics.StepError
	require.ErrorAs(t, err, &se)
	assert.Same(t, obj.Body, se.Body)
}

func TestResizeUpdatesAspectWithinOneFrame(t *testing.T) {
	p, r := newTestPlayground(t, Assets{})

	p.Resize(800, 400, 1600, 800)
	assert.InDelta(t, 2.0, p.Scene.Camera.AspectRatio, 1e-6)
	vp := r.viewports[len(r.viewports)-1]
	assert.Equal(t, float32(2), vp.PixelRatio)
	assert.False(t, vp.Offscreen())
	w, h := vp.RenderSize()
	assert.Equal(t, []int{1600, 800}, []int{w, h})

	p.Resize(600, 600, 1800, 1800)
	vp = p.Viewport()
	assert.InDelta(t, 1.0, p.Scene.Camera.AspectRatio, 1e-6)
	assert.Equal(t, float32(3), vp.NativeRatio)
	assert.Equal(t, float32(2), vp.PixelRatio)
	assert.True(t, vp.Offscreen())
	w, h = vp.RenderSize()
	assert.Equal(t, []int{1200, 1200}, []int{w, h})
}

func TestTunablesApplied(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	ch := make(chan config.Tunables, 1)
	p.WatchTunables(ch)

	tun := testConfig().Tunables()
	tun.Gravity = [3]float64{0, -1.62, 0}
	tun.Friction = 0.5
	tun.SpawnInterval = 0.5
	tun.OrbitDamping = 0
	ch <- tun
	run(t, p, 0, 1)

	assert.Equal(t, mgl64.Vec3{0, -1.62, 0}, p.World.Gravity)
	assert.Equal(t, 0.5, p.World.DefaultContactMaterial.Friction)
	assert.Equal(t, 0.5, p.Spawner.Interval)
	assert.False(t, p.Controls.EnableDamping)

	close(ch)
	run(t, p, frame, 1)
	assert.Nil(t, p.tunables)
}

func TestNonFiniteTunablesIgnored(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	ch := make(chan config.Tunables, 1)
	p.WatchTunables(ch)
	p.Toggle(TogglePhysics)

	tun := testConfig().Tunables()
	tun.Gravity = [3]float64{0, math.NaN(), 0}
	ch <- tun
	now := run(t, p, 0, 1)
	assert.Equal(t, mgl64.Vec3{0, -9.82, 0}, p.World.Gravity)

	tun = testConfig().Tunables()
	tun.SpawnInterval = math.Inf(1)
	ch <- tun
	run(t, p, now, 60)
	assert.Equal(t, 0.15, p.Spawner.Interval)
	assert.Positive(t, p.Registry.Len())
}

func TestStatsRecordedPerTick(t *testing.T) {
	p, _ := newTestPlayground(t, Assets{})
	p.Stats = stats.NewRecorder(16)
	run(t, p, 0, 5)
	assert.Equal(t, 5, p.Stats.Summary().Frames)
}

type fakeSource struct {
	x, y    float64
	buttons map[int]bool
	keys    map[int]bool
}

func (f *fakeSource) GetCursorPos() (float64, float64) { return f.x, f.y }
func (f *fakeSource) IsMouseButtonPressed(button int) bool { return f.buttons[button] }
func (f *fakeSource) IsKeyPressed(key int) bool { return f.keys[key] }
func (f *fakeSource) SetScrollCallback(func(xoff, yoff float64)) {}

func TestHandleInputPanelAndKeys(t *testing.T) {
	p, r := newTestPlayground(t, Assets{})
	src := &fakeSource{buttons: map[int]bool{}, keys: map[int]bool{}}
	in := ui.NewInputManager(src)

	// click the first button
	b := p.Panel.Buttons[0].Rect
	src.x, src.y = float64(b.X+2), float64(b.Y+2)
	src.buttons[ui.MouseLeft] = true
	in.Update()
	p.HandleInput(in)
	assert.True(t, p.State.BasicMesh)
	assert.False(t, p.dragging)

	// holding the button does not toggle again
	in.Update()
	p.HandleInput(in)
	assert.True(t, p.State.BasicMesh)

	src.buttons[ui.MouseLeft] = false
	src.keys[ui.Key7] = true
	in.Update()
	p.HandleInput(in)
	assert.True(t, p.State.Physics)

	// a click outside the panel starts an orbit drag instead
	src.keys[ui.Key7] = false
	src.x, src.y = 600, 400
	src.buttons[ui.MouseLeft] = true
	in.Update()
	p.HandleInput(in)
	assert.True(t, p.dragging)

	require.NoError(t, p.Tick(0))
	on := 0
	for _, q := range r.overlay {
		if q.Color == ui.ColorOn {
			on++
		}
	}
	assert.Equal(t, 2, on)
}

func TestStateString(t *testing.T) {
	s := State{Physics: true}
	assert.Equal(t, "-basicMesh -cubeMaterial -textureMaterial -wireframe -animation -importedShip +physics", s.String())
	tg, ok := ParseToggle("Physics")
	assert.True(t, ok)
	assert.Equal(t, TogglePhysics, tg)
}
