// Command editor opens a stagecraft project and runs the scene editor.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/app"
	"github.com/Faultbox/stagecraft/internal/config"
	"github.com/Faultbox/stagecraft/internal/engine/audio"
	"github.com/Faultbox/stagecraft/internal/engine/camera"
	"github.com/Faultbox/stagecraft/internal/engine/debug"
	"github.com/Faultbox/stagecraft/internal/engine/gpu"
	"github.com/Faultbox/stagecraft/internal/engine/input"
	"github.com/Faultbox/stagecraft/internal/engine/overlay"
	"github.com/Faultbox/stagecraft/internal/engine/scene"
	"github.com/Faultbox/stagecraft/internal/engine/window"
	"github.com/Faultbox/stagecraft/internal/logger"
)

const appTitle = "Stagecraft"

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		dialog.Message("Configuration error: %v", err).Title(appTitle).Error()
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== Stagecraft editor ===",
		zap.String("project", cfg.Project.Folder),
		zap.String("scene", cfg.Project.SceneName),
	)

	if err := run(cfg); err != nil {
		logger.Error("editor failed", zap.Error(err))
		logger.Sync()
		dialog.Message("%v", err).Title(appTitle).Error()
		os.Exit(1)
	}
	logger.Sync()
}

// teardown releases what run acquired, newest first. The app owns everything
// once it is running, so it is only unwound on a failed start.
type teardown []func()

func (t *teardown) add(f func()) { *t = append(*t, f) }

func (t teardown) unwind() {
	for i := len(t) - 1; i >= 0; i-- {
		t[i]()
	}
}

func run(cfg *config.Config) error {
	var undo teardown

	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	undo.add(win.Close)

	width, height := win.Drawable()
	gfx, err := gpu.New(gpu.Config{Width: width, Height: height})
	if err != nil {
		undo.unwind()
		return fmt.Errorf("creating renderer: %w", err)
	}
	undo.add(gfx.Release)

	ui, err := overlay.New(gfx.Shaders(), width, height, cfg.Editor.WarningSeconds)
	if err != nil {
		undo.unwind()
		return fmt.Errorf("creating overlay: %w", err)
	}
	undo.add(ui.Release)
	ui.ShowFPS = cfg.Editor.ShowFPS
	logger.SetWarningSink(ui.Warn)
	defer logger.SetWarningSink(nil)

	s, err := openScene(cfg)
	if err != nil {
		undo.unwind()
		return err
	}

	snd := audio.New(float64(cfg.Audio.MasterVolume), cfg.Audio.FalloffRange)
	snd.SetMuted(cfg.Audio.Muted)
	if err := snd.Init(); err != nil {
		logger.Warn("audio unavailable", zap.Error(err))
	}
	undo.add(snd.Close)
	undo.add(func() {
		s.Close()
		s.Release(gfx)
	})

	d := &desktop{win: win, in: input.New()}
	editor, err := app.New(app.Options{
		Platform:       d,
		Renderer:       gfx,
		UI:             ui,
		Controls:       d,
		Audio:          snd,
		Scene:          s,
		Camera:         camera.New(mgl32.Vec3{0, 2, 8}, cfg.Editor.CameraSpeed, cfg.Editor.MouseSensitivity),
		Screenshots:    debug.NewScreenshotCapture(cfg.Editor.ScreenshotDir, "stagecraft"),
		PickModel:      pickModel,
		ShowCollisions: cfg.Editor.ShowCollisions,
	})
	if err != nil {
		undo.unwind()
		return fmt.Errorf("creating editor: %w", err)
	}
	return editor.Run()
}

// openScene creates the project layout and loads the scene file when one
// exists. A new scene starts with a single light. An unreadable file is only
// tolerated once it has been moved aside, so saving cannot overwrite it.
func openScene(cfg *config.Config) (*scene.Scene, error) {
	s, err := scene.New(scene.Options{
		Meta: scene.Metadata{
			Name:     cfg.Project.SceneName,
			Author:   cfg.Project.Author,
			Renderer: scene.Renderer(cfg.Project.Renderer),
			Type:     scene.Type(cfg.Project.SceneType),
		},
		Root:    cfg.Project.Folder,
		Workers: cfg.Editor.ImportWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scene: %w", err)
	}

	err = s.Load(s.Path())
	switch {
	case err == nil:
	case errors.Is(err, scene.ErrNoSceneFile):
		s.AddLight("Light", mgl32.Vec3{2, 4, 2}, mgl32.Vec3{1, 1, 1}, 1)
	case errors.Is(err, scene.ErrInvalidScene) && !exists(s.Path()):
		logger.Warn("scene not loaded", zap.String("path", s.Path()), zap.Error(err))
	default:
		s.Close()
		return nil, fmt.Errorf("loading scene: %w", err)
	}
	return s, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// pickModel shows the native file picker. Cancelling returns an empty path.
func pickModel() (string, error) {
	path, err := dialog.File().
		Filter("glTF models", "gltf", "glb").
		Filter("All Files", "*").
		Title("Import model").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", nil
	}
	return path, err
}
