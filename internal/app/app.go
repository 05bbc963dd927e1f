// Package app runs the editor's frame loop.
//
// A frame executes in a fixed order: poll events, clear, begin UI, merge
// finished imports, tick the clock, update camera uniforms, collide, step
// physics, draw, render UI, process input, present, and finally apply
// scheduled deletions. Everything GL-facing sits behind the interfaces
// below so the loop runs headless in tests.
package app

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/engine/camera"
	"github.com/Faultbox/stagecraft/internal/engine/collision"
	"github.com/Faultbox/stagecraft/internal/engine/debug"
	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/scene"
	"github.com/Faultbox/stagecraft/internal/engine/shader"
	"github.com/Faultbox/stagecraft/internal/engine/shader/sources"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// Projection parameters.
const (
	nearPlane = 0.1
	farPlane  = 1000
)

// Platform is the window and its event pump.
type Platform interface {
	// PollEvents collects this frame's input and reports whether the user
	// asked to quit.
	PollEvents() bool
	// Resized returns the new drawable size when it changed this frame.
	Resized() (width, height int, ok bool)
	Present()
	Close()
}

// Renderer uploads and draws scene content.
type Renderer interface {
	scene.Uploader

	Clear()
	Resize(width, height int)
	Size() (int, int)
	Manifest(u shader.FrameUniforms)
	SetLights(lights []*entity.Entity)
	DrawSkybox(e *entity.Entity)
	DrawEntity(program string, e *entity.Entity)
	DrawBoxes(boxes []debug.Box)
	ReadPixels() ([]byte, int, int)
	Release()
}

// UI is the 2D layer drawn over the viewport.
type UI interface {
	Begin()
	Render(s *scene.Scene)
	End()
	Resize(width, height int)
	Selected() entity.ID
	Select(id entity.ID)
	SelectNext()
	Release()
}

// Controls turns the frame's input into camera motion and shortcuts.
type Controls interface {
	Process(cam *camera.Camera, dt float32)
	Shortcuts() []Shortcut
	// Clicked returns the position of this frame's left click in drawable
	// pixels.
	Clicked() (x, y float32, ok bool)
}

// Audio plays the scene's audio sources.
type Audio interface {
	Sync(sources []*entity.Entity, listener mgl32.Vec3)
	Close()
}

// Options wires an App. Audio, Screenshots and PickModel are optional.
type Options struct {
	Platform Platform
	Renderer Renderer
	UI       UI
	Controls Controls
	Audio    Audio

	Scene  *scene.Scene
	Camera *camera.Camera
	Clock  *Clock

	Screenshots *debug.ScreenshotCapture
	// PickModel asks the user for a model file. An empty path means the
	// user cancelled.
	PickModel func() (string, error)

	ShowCollisions bool
}

// App owns one editor session.
type App struct {
	platform Platform
	renderer Renderer
	ui       UI
	controls Controls
	audio    Audio

	scene  *scene.Scene
	camera *camera.Camera
	clock  *Clock

	screenshots *debug.ScreenshotCapture
	pickModel   func() (string, error)

	// ShowCollisions draws the AABB of every collision participant.
	ShowCollisions bool

	shutdown bool
}

// New validates the wiring and creates the app.
func New(opts Options) (*App, error) {
	switch {
	case opts.Platform == nil:
		return nil, errors.New("app: no platform")
	case opts.Renderer == nil:
		return nil, errors.New("app: no renderer")
	case opts.UI == nil:
		return nil, errors.New("app: no UI")
	case opts.Controls == nil:
		return nil, errors.New("app: no controls")
	case opts.Scene == nil:
		return nil, errors.New("app: no scene")
	case opts.Camera == nil:
		return nil, errors.New("app: no camera")
	}
	if opts.Clock == nil {
		opts.Clock = NewClock(nil)
	}
	return &App{
		platform:       opts.Platform,
		renderer:       opts.Renderer,
		ui:             opts.UI,
		controls:       opts.Controls,
		audio:          opts.Audio,
		scene:          opts.Scene,
		camera:         opts.Camera,
		clock:          opts.Clock,
		screenshots:    opts.Screenshots,
		pickModel:      opts.PickModel,
		ShowCollisions: opts.ShowCollisions,
	}, nil
}

// Scene returns the edited scene.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Run loops until the user quits, then shuts down.
func (a *App) Run() error {
	logger.Info("editor running", zap.String("scene", a.scene.Meta.Name))
	for a.Frame() {
	}
	return a.Shutdown()
}

// Frame runs one frame. It returns false when the user asked to quit; the
// rest of that frame is skipped.
func (a *App) Frame() bool {
	// 1. Events
	if a.platform.PollEvents() {
		return false
	}
	if w, h, ok := a.platform.Resized(); ok {
		a.renderer.Resize(w, h)
		a.ui.Resize(w, h)
	}

	// 2. Clear
	a.renderer.Clear()

	// 3. UI frame
	a.ui.Begin()

	// 4. Merge finished imports
	a.scene.CheckThreadsAndTriggerActions(a.renderer)

	// 5. Delta time
	dt := a.clock.Tick()

	// 6. Camera uniforms
	a.updateWorldMatrices()

	// 7. Collision
	collision.Pass(a.scene.Colliders())

	// 8. Physics
	world := a.scene.Physics()
	world.Step(dt)
	world.Finalize()

	// 9. Draw
	a.draw(dt)

	// 10. UI
	a.ui.Render(a.scene)
	a.ui.End()

	// 11. Input for the next frame
	a.controls.Process(a.camera, dt)
	a.handleShortcuts(a.controls.Shortcuts())
	if x, y, ok := a.controls.Clicked(); ok {
		a.selectAt(x, y)
	}
	if a.audio != nil {
		a.audio.Sync(a.scene.AudioSources, a.camera.Position)
	}

	// 12. Present
	a.platform.Present()

	// 13. Deferred deletions
	a.scene.CheckScheduleDeletions(a.renderer)
	return true
}

// FrameUniforms returns the camera matrices for the current viewport.
// The field of view is the camera zoom, 45 degrees unless scrolled.
func (a *App) FrameUniforms() shader.FrameUniforms {
	w, h := a.renderer.Size()
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}
	return shader.FrameUniforms{
		View:       a.camera.ViewMatrix(),
		Projection: mgl32.Perspective(mgl32.DegToRad(a.camera.Zoom), aspect, nearPlane, farPlane),
		ViewPos:    a.camera.Position,
	}
}

func (a *App) updateWorldMatrices() {
	a.renderer.Manifest(a.FrameUniforms())
	a.renderer.SetLights(a.scene.Lights)
}

func (a *App) draw(dt float32) {
	s := a.scene
	a.renderer.DrawSkybox(s.Skybox)
	for _, e := range s.Objects {
		a.renderer.DrawEntity(sources.Simple, e)
	}
	for _, e := range s.Instanced {
		a.renderer.DrawEntity(sources.SimpleInstanced, e)
	}
	for _, e := range s.Animated {
		animate(e, dt)
		a.renderer.DrawEntity(sources.SimpleAnimated, e)
	}
	for _, e := range s.InstancedAnimated {
		animate(e, dt)
		a.renderer.DrawEntity(sources.SimpleInstancedAnimated, e)
	}
	for _, e := range s.Lights {
		a.renderer.DrawEntity(sources.Light, e)
	}
	if a.ShowCollisions {
		a.renderer.DrawBoxes(debug.CollisionBoxes(s.Colliders()))
	}
}

// animate advances the clip of a visible animated entity and rebuilds its
// bone palette.
func animate(e *entity.Entity, dt float32) {
	if e.Animator == nil || !e.Render || !e.IsLoaded() {
		return
	}
	e.Animator.UpdateAnimation(dt)
	e.Animator.BuildAnimationMatrices()
}

// Shutdown saves the scene, joins running imports and releases everything
// in reverse order of creation. Later calls do nothing.
func (a *App) Shutdown() error {
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	err := a.scene.Save()
	if err != nil {
		logger.Error("saving scene on exit failed", zap.Error(err))
	}

	a.scene.Close()
	a.scene.Release(a.renderer)
	a.ui.Release()
	a.renderer.Release()
	if a.audio != nil {
		a.audio.Close()
	}
	a.platform.Close()

	logger.Info("editor closed")
	return err
}
