package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/stagecraft/internal/app"
	"github.com/Faultbox/stagecraft/internal/engine/camera"
	"github.com/Faultbox/stagecraft/internal/engine/input"
	"github.com/Faultbox/stagecraft/internal/engine/window"
)

// desktop adapts the SDL window and input state to the app's Platform and
// Controls.
type desktop struct {
	win *window.Window
	in  *input.Input
}

func (d *desktop) PollEvents() bool { return d.in.Update() }

// Resized reports the drawable size, which is what the viewport needs on
// high-DPI displays.
func (d *desktop) Resized() (int, int, bool) {
	if _, _, ok := d.in.Resized(); !ok {
		return 0, 0, false
	}
	w, h := d.win.Drawable()
	return w, h, true
}

func (d *desktop) Present() { d.win.SwapBuffers() }
func (d *desktop) Close()   { d.win.Close() }

func (d *desktop) Process(cam *camera.Camera, dt float32) {
	d.in.Process(cam, dt)
}

func (d *desktop) Shortcuts() []app.Shortcut {
	return shortcuts(d.in)
}

// Clicked converts the click from window to drawable pixels.
func (d *desktop) Clicked() (float32, float32, bool) {
	x, y, ok := d.in.Clicked()
	if !ok {
		return 0, 0, false
	}
	ww, wh := d.win.GetSize()
	dw, dh := d.win.Drawable()
	sx, sy := scaleClick(x, y, ww, wh, dw, dh)
	return sx, sy, true
}

func scaleClick(x, y, winW, winH, drawW, drawH int) (float32, float32) {
	sx, sy := float32(1), float32(1)
	if winW > 0 && winH > 0 {
		sx = float32(drawW) / float32(winW)
		sy = float32(drawH) / float32(winH)
	}
	return float32(x) * sx, float32(y) * sy
}

type keyState interface {
	IsKeyPressed(scancode sdl.Scancode) bool
	IsKeyHeld(scancode sdl.Scancode) bool
	Ctrl() bool
}

var bindings = []struct {
	key    sdl.Scancode
	ctrl   bool
	shift  bool
	action app.Shortcut
}{
	{sdl.SCANCODE_S, true, false, app.ShortcutSave},
	{sdl.SCANCODE_O, true, false, app.ShortcutImport},
	{sdl.SCANCODE_O, true, true, app.ShortcutImportAnimated},
	{sdl.SCANCODE_DELETE, false, false, app.ShortcutDelete},
	{sdl.SCANCODE_TAB, false, false, app.ShortcutNextEntity},
	{sdl.SCANCODE_F, false, false, app.ShortcutFocus},
	{sdl.SCANCODE_F3, false, false, app.ShortcutToggleCollisions},
	{sdl.SCANCODE_F12, false, false, app.ShortcutScreenshot},
}

// shortcuts maps this frame's key presses to editor actions. Modifiers must
// match exactly, so Ctrl+Shift+O does not also trigger Ctrl+O.
func shortcuts(keys keyState) []app.Shortcut {
	ctrl := keys.Ctrl()
	shift := keys.IsKeyHeld(sdl.SCANCODE_LSHIFT) || keys.IsKeyHeld(sdl.SCANCODE_RSHIFT)

	var out []app.Shortcut
	for _, b := range bindings {
		if b.ctrl == ctrl && b.shift == shift && keys.IsKeyPressed(b.key) {
			out = append(out, b.action)
		}
	}
	return out
}
