package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fortio.org/log"
	"github.com/spf13/cobra"

	"physics-playground/assets"
	"physics-playground/config"
	"physics-playground/physics"
	"physics-playground/platform"
	"physics-playground/playground"
	"physics-playground/renderer"
	"physics-playground/stats"
	"physics-playground/ui"
)

// headlessStep is the simulated frame time in headless mode.
const headlessStep = 1.0 / 60

func run(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := log.SetLogLevelStr(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}

	var toggles []playground.Toggle
	for _, name := range opts.toggles {
		t, ok := playground.ParseToggle(name)
		if !ok {
			return fmt.Errorf("unknown toggle %q", name)
		}
		toggles = append(toggles, t)
	}

	var rec *stats.Recorder
	if opts.stats {
		rec = stats.NewRecorder(0)
		defer printStats(rec)
	}

	loader := assets.NewLoader(cfg.Assets.Root)
	pending := playground.RequestAssets(ctx, loader, cfg.Assets)

	if opts.headless > 0 {
		return runHeadless(ctx, cfg, pending, toggles, rec, opts.headless)
	}
	return runWindow(ctx, cfg, opts.configPath, pending, toggles, rec)
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.assetsRoot != "" {
		cfg.Assets.Root = opts.assetsRoot
	}
	if opts.width > 0 {
		cfg.Window.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Window.Height = opts.height
	}
	if cmd.Flags().Changed("fullscreen") {
		cfg.Window.Fullscreen = opts.fullscreen
	}
	if cmd.Flags().Changed("seed") {
		cfg.Spawner.Seed = opts.seed
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, cfg.Validate()
}

func runWindow(ctx context.Context, cfg *config.Config, configPath string, pending playground.Assets,
	toggles []playground.Toggle, rec *stats.Recorder,
) error {
	window, err := platform.NewWindow(platform.WindowConfig{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  cfg.Window.Resizable,
		VSync:      cfg.Window.VSync,
		Fullscreen: cfg.Window.Fullscreen,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine()
	if err != nil {
		return err
	}
	defer engine.Destroy()

	pg, err := playground.New(cfg, engine, pending)
	if err != nil {
		return err
	}
	defer pg.Close()
	pg.Stats = rec
	fbw, fbh := window.GetFramebufferSize()
	pg.Resize(window.Width, window.Height, fbw, fbh)
	window.OnResize(pg.Resize)
	for _, t := range toggles {
		pg.Toggle(t)
	}

	if configPath != "" {
		updates, err := config.Watch(ctx, configPath)
		if err != nil {
			log.Warnf("[Playground] not watching %s: %v", configPath, err)
		} else {
			pg.WatchTunables(updates)
		}
	}

	input := ui.NewInputManager(window)
	title := ""
	for !window.ShouldClose() && ctx.Err() == nil {
		window.PollEvents()
		input.Update()
		if input.IsKeyPressed(ui.KeyEscape) {
			window.SetShouldClose(true)
		}
		pg.HandleInput(input)

		if err := pg.Tick(platform.Time()); err != nil {
			return stepFailure(err)
		}
		window.SwapBuffers()
		input.EndFrame()

		if t := pg.Title(); t != title {
			window.SetTitle(t)
			title = t
		}
	}
	objects, triangles, culled := engine.DrawStats()
	log.Infof("[Playground] closing with %d objects; last frame drew %d meshes (%d triangles, %d culled)",
		pg.Registry.Len(), objects, triangles, culled)
	return nil
}

// runHeadless drives the playground on a simulated clock with no renderer.
func runHeadless(ctx context.Context, cfg *config.Config, pending playground.Assets,
	toggles []playground.Toggle, rec *stats.Recorder, seconds float64,
) error {
	pg, err := playground.New(cfg, nil, pending)
	if err != nil {
		return err
	}
	pg.Stats = rec
	for _, t := range toggles {
		pg.Toggle(t)
	}

	for elapsed := 0.0; elapsed <= seconds && ctx.Err() == nil; elapsed += headlessStep {
		if err := pg.Tick(elapsed); err != nil {
			return stepFailure(err)
		}
	}
	log.Infof("[Playground] headless run done: %s", pg.Title())
	return nil
}

func stepFailure(err error) error {
	var se *physics.StepError
	if errors.As(err, &se) {
		log.Errf("[Playground] body %d diverged: non-finite %s", se.Body.ID, se.Field)
	}
	return fmt.Errorf("physics step: %w", err)
}

func printStats(rec *stats.Recorder) {
	s := rec.Summary()
	fmt.Printf("frames %d  avg %.2fms  max %.2fms  peak objects %d\n",
		s.Frames, s.AvgFrameMs, s.MaxFrameMs, s.PeakObjects)
	if err := rec.Plot(os.Stdout); err != nil {
		log.Warnf("[Playground] stats plot: %v", err)
	}
}

func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	log.Infof("[Config] wrote %s", path)
	return nil
}
