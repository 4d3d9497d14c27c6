package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFixedStep     = 1.0 / 60
	DefaultMaxSubSteps   = 3
	DefaultFriction      = 0.1
	DefaultRestitution   = 0.7
	DefaultSpawnInterval = 0.15
	DefaultMaxPerTick    = 3
	DefaultMaxPixelRatio = 2.0
	DefaultModelScale    = 0.25
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Assets  AssetsConfig  `yaml:"assets"`
	Physics PhysicsConfig `yaml:"physics"`
	Spawner SpawnerConfig `yaml:"spawner"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Log     LogConfig     `yaml:"log"`
}

type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Resizable  bool   `yaml:"resizable"`
	VSync      bool   `yaml:"vsync"`
	Fullscreen bool   `yaml:"fullscreen"`
	Samples    int    `yaml:"samples"`
}

// AssetsConfig paths are relative to Root.
type AssetsConfig struct {
	Root       string  `yaml:"root"`
	EnvMap     string  `yaml:"env_map"`
	EnvMapExt  string  `yaml:"env_map_ext"`
	Texture    string  `yaml:"texture"`
	Model      string  `yaml:"model"`
	ModelScale float32 `yaml:"model_scale"`
}

type PhysicsConfig struct {
	Gravity          [3]float64 `yaml:"gravity"`
	FixedStep        float64    `yaml:"fixed_step"`
	MaxSubSteps      int        `yaml:"max_sub_steps"`
	Friction         float64    `yaml:"friction"`
	Restitution      float64    `yaml:"restitution"`
	Broadphase       string     `yaml:"broadphase"`
	AllowSleep       bool       `yaml:"allow_sleep"`
	SolverIterations int        `yaml:"solver_iterations"`
}

type SpawnerConfig struct {
	Interval   float64 `yaml:"interval"`
	MaxPerTick int     `yaml:"max_per_tick"`
	// MaxObjects caps live spawned objects; 0 means unbounded.
	MaxObjects int    `yaml:"max_objects"`
	Shape      string `yaml:"shape"`
	// Seed for the spawn position/radius source; 0 picks one from the clock.
	Seed uint64 `yaml:"seed"`
}

type CameraConfig struct {
	FOV            float32    `yaml:"fov"`
	Near           float32    `yaml:"near"`
	Far            float32    `yaml:"far"`
	Position       [3]float32 `yaml:"position"`
	Damping        float32    `yaml:"damping"`
	AnimationSpeed float32    `yaml:"animation_speed"`
}

type RenderConfig struct {
	Skybox        bool    `yaml:"skybox"`
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"`
	ShadowMapSize int     `yaml:"shadow_map_size"`
	Background    string  `yaml:"background"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var (
	broadphases = []string{"sap", "naive"}
	shapes      = []string{"sphere", "box"}
	logLevels   = []string{"debug", "verbose", "info", "warning", "error", "critical", "fatal"}
)

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "Physics Playground",
			Resizable: true,
			VSync:     true,
			Samples:   4,
		},
		Assets: AssetsConfig{
			Root:       "static",
			EnvMap:     "textures/environmentMaps/0",
			EnvMapExt:  "png",
			Texture:    "textures/diamond.png",
			Model:      "starwarsship/source/ship.gltf",
			ModelScale: DefaultModelScale,
		},
		Physics: PhysicsConfig{
			Gravity:          [3]float64{0, -9.82, 0},
			FixedStep:        DefaultFixedStep,
			MaxSubSteps:      DefaultMaxSubSteps,
			Friction:         DefaultFriction,
			Restitution:      DefaultRestitution,
			Broadphase:       "sap",
			AllowSleep:       true,
			SolverIterations: 10,
		},
		Spawner: SpawnerConfig{
			Interval:   DefaultSpawnInterval,
			MaxPerTick: DefaultMaxPerTick,
			Shape:      "sphere",
		},
		Camera: CameraConfig{
			FOV:            75,
			Near:           0.1,
			Far:            100,
			Position:       [3]float32{-3, 3, 3},
			Damping:        0.05,
			AnimationSpeed: 1,
		},
		Render: RenderConfig{
			MaxPixelRatio: DefaultMaxPixelRatio,
			ShadowMapSize: 1024,
			Background:    "#000000",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports every bad field at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(finite(float64(c.Assets.ModelScale)) && c.Assets.ModelScale > 0, "assets.model_scale %v must be > 0", c.Assets.ModelScale)

	p := c.Physics
	check(finite(p.Gravity[:]...), "physics.gravity %v must be finite", p.Gravity)
	check(finite(p.FixedStep, p.Friction, p.Restitution), "physics values must be finite")
	check(p.FixedStep > 0, "physics.fixed_step %v must be > 0", p.FixedStep)
	check(p.MaxSubSteps >= 1, "physics.max_sub_steps %d must be >= 1", p.MaxSubSteps)
	check(p.Friction >= 0, "physics.friction %v must be >= 0", p.Friction)
	check(p.Restitution >= 0 && p.Restitution <= 1, "physics.restitution %v must be in [0,1]", p.Restitution)
	check(p.SolverIterations >= 1, "physics.solver_iterations %d must be >= 1", p.SolverIterations)
	check(slices.Contains(broadphases, p.Broadphase), "physics.broadphase %q not one of %v", p.Broadphase, broadphases)

	s := c.Spawner
	check(finite(s.Interval), "spawner.interval %v must be finite", s.Interval)
	check(s.Interval > 0, "spawner.interval %v must be > 0", s.Interval)
	check(s.MaxPerTick >= 1, "spawner.max_per_tick %d must be >= 1", s.MaxPerTick)
	check(s.MaxObjects >= 0, "spawner.max_objects %d must be >= 0", s.MaxObjects)
	check(slices.Contains(shapes, s.Shape), "spawner.shape %q not one of %v", s.Shape, shapes)

	cam := c.Camera
	check(finite(float64(cam.AnimationSpeed), float64(cam.Damping), float64(cam.Near), float64(cam.Far)),
		"camera values must be finite")
	check(finite(float64(cam.Position[0]), float64(cam.Position[1]), float64(cam.Position[2])),
		"camera.position %v must be finite", cam.Position)
	check(cam.FOV > 0 && cam.FOV < 180, "camera.fov %v must be in (0,180)", cam.FOV)
	check(cam.Near > 0 && cam.Far > cam.Near, "camera near/far %v/%v", cam.Near, cam.Far)
	check(cam.Damping >= 0 && cam.Damping <= 1, "camera.damping %v must be in [0,1]", cam.Damping)

	check(c.Render.MaxPixelRatio >= 1, "render.max_pixel_ratio %v must be >= 1", c.Render.MaxPixelRatio)
	check(c.Render.ShadowMapSize > 0, "render.shadow_map_size %d must be > 0", c.Render.ShadowMapSize)
	_, err := ParseColor(c.Render.Background)
	check(err == nil, "render.background %q: %v", c.Render.Background, err)

	check(slices.Contains(logLevels, strings.ToLower(c.Log.Level)), "log.level %q not one of %v", c.Log.Level, logLevels)

	return errors.Join(errs...)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ParseColor parses "#rrggbb" into a packed 0xRRGGBB value.
func ParseColor(s string) (uint32, error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, fmt.Errorf("want #rrggbb")
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Tunables are the values applied to a running playground on hot reload.
type Tunables struct {
	Gravity        [3]float64
	Friction       float64
	Restitution    float64
	SpawnInterval  float64
	MaxObjects     int
	AnimationSpeed float32
	OrbitDamping   float32
}

func (c *Config) Tunables() Tunables {
	return Tunables{
		Gravity:        c.Physics.Gravity,
		Friction:       c.Physics.Friction,
		Restitution:    c.Physics.Restitution,
		SpawnInterval:  c.Spawner.Interval,
		MaxObjects:     c.Spawner.MaxObjects,
		AnimationSpeed: c.Camera.AnimationSpeed,
		OrbitDamping:   c.Camera.Damping,
	}
}

// Validate rejects tunables that would destabilise a running world. Values
// from Load have already passed Config.Validate.
func (t Tunables) Validate() error {
	switch {
	case !finite(t.Gravity[:]...):
		return fmt.Errorf("%w: gravity %v must be finite", ErrInvalid, t.Gravity)
	case !finite(t.Friction, t.Restitution, t.SpawnInterval, float64(t.AnimationSpeed), float64(t.OrbitDamping)):
		return fmt.Errorf("%w: tunables must be finite", ErrInvalid)
	case t.Friction < 0 || t.Restitution < 0 || t.Restitution > 1:
		return fmt.Errorf("%w: friction %v restitution %v", ErrInvalid, t.Friction, t.Restitution)
	case t.SpawnInterval <= 0 || t.MaxObjects < 0:
		return fmt.Errorf("%w: spawn interval %v max objects %d", ErrInvalid, t.SpawnInterval, t.MaxObjects)
	case t.OrbitDamping < 0 || t.OrbitDamping > 1:
		return fmt.Errorf("%w: orbit damping %v", ErrInvalid, t.OrbitDamping)
	}
	return nil
}
