package input

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/stagecraft/internal/engine/camera"
)

func TestHeldKeysMoveCamera(t *testing.T) {
	in := New()
	cam := camera.New(mgl32.Vec3{}, 2, 0.1)

	in.Apply(Event{Type: EventKeyDown, Key: sdl.SCANCODE_W})
	in.Process(cam, 1)
	if !near(cam.Position, mgl32.Vec3{0, 0, -2}) {
		t.Errorf("after W: %v", cam.Position)
	}

	// Still held on the next frame.
	in.Process(cam, 1)
	if !near(cam.Position, mgl32.Vec3{0, 0, -4}) {
		t.Errorf("after holding W: %v", cam.Position)
	}

	in.Apply(Event{Type: EventKeyUp, Key: sdl.SCANCODE_W})
	in.Process(cam, 1)
	if !near(cam.Position, mgl32.Vec3{0, 0, -4}) {
		t.Errorf("after release: %v", cam.Position)
	}
}

func TestCtrlSuppressesMovement(t *testing.T) {
	in := New()
	cam := camera.New(mgl32.Vec3{}, 2, 0.1)

	in.Apply(Event{Type: EventKeyDown, Key: sdl.SCANCODE_LCTRL})
	in.Apply(Event{Type: EventKeyDown, Key: sdl.SCANCODE_S})
	in.Process(cam, 1)

	if cam.Position != (mgl32.Vec3{}) {
		t.Errorf("Ctrl+S moved the camera to %v", cam.Position)
	}
	if !in.Ctrl() || !in.IsKeyPressed(sdl.SCANCODE_S) {
		t.Error("shortcut not visible")
	}
}

func TestRightDragTurnsCamera(t *testing.T) {
	in := New()
	cam := camera.New(mgl32.Vec3{}, 2, 1)

	// Motion without the button does nothing.
	in.Apply(Event{Type: EventMouseMove, RelX: 10})
	in.Process(cam, 0)
	if cam.Yaw != -90 {
		t.Fatalf("Yaw = %f without drag", cam.Yaw)
	}

	in.Apply(Event{Type: EventMouseDown, Button: sdl.BUTTON_RIGHT})
	in.Apply(Event{Type: EventMouseMove, RelX: 10, RelY: 5})
	in.Process(cam, 0)
	if cam.Yaw != -80 || cam.Pitch != -5 {
		t.Errorf("Yaw %f Pitch %f, want -80 -5", cam.Yaw, cam.Pitch)
	}

	// Deltas are consumed.
	in.Process(cam, 0)
	if cam.Yaw != -80 {
		t.Errorf("drag applied twice, Yaw %f", cam.Yaw)
	}
}

func TestWheelZooms(t *testing.T) {
	in := New()
	cam := camera.New(mgl32.Vec3{}, 2, 1)
	in.Apply(Event{Type: EventMouseWheel, Wheel: 3})
	in.Process(cam, 0)
	if cam.Zoom != 42 {
		t.Errorf("Zoom = %f, want 42", cam.Zoom)
	}
}

func TestResize(t *testing.T) {
	in := New()
	if _, _, ok := in.Resized(); ok {
		t.Fatal("resized before any event")
	}
	in.Apply(Event{Type: EventWindowResize, Width: 800, Height: 600})
	w, h, ok := in.Resized()
	if !ok || w != 800 || h != 600 {
		t.Errorf("Resized() = %d %d %v", w, h, ok)
	}
}

func TestClicked(t *testing.T) {
	in := New()
	in.Apply(Event{Type: EventMouseDown, Button: sdl.BUTTON_RIGHT, MouseX: 1, MouseY: 1})
	if _, _, ok := in.Clicked(); ok {
		t.Fatal("right button counted as a click")
	}
	in.Apply(Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT, MouseX: 30, MouseY: 40})
	x, y, ok := in.Clicked()
	if !ok || x != 30 || y != 40 {
		t.Errorf("Clicked() = %d %d %v", x, y, ok)
	}
}

// near reports whether a and b agree within 1e-5 on every axis.
func near(a, b mgl32.Vec3) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			return false
		}
	}
	return true
}
