// Package input handles SDL2 input events and maps them to editor actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/stagecraft/internal/engine/camera"
)

// Event types for editor use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Wheel  int
	Button uint8
}

// Input collects the events of one frame and tracks held keys.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool

	looking bool // Right mouse button held
	dragX   float32
	dragY   float32
	wheel   float32

	resized       bool
	width, height int
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events for this frame.
// Returns true if the editor should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events
	i.resized = false

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true
			i.Apply(Event{Type: EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.Apply(Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				i.Apply(Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			} else if e.Type == sdl.KEYUP {
				i.Apply(Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
			}

		case *sdl.MouseMotionEvent:
			i.Apply(Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				RelX:   int(e.XRel),
				RelY:   int(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			typ := EventMouseDown
			if e.Type == sdl.MOUSEBUTTONUP {
				typ = EventMouseUp
			}
			i.Apply(Event{
				Type:   typ,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			})

		case *sdl.MouseWheelEvent:
			i.Apply(Event{Type: EventMouseWheel, Wheel: int(e.Y)})
		}
	}

	return quit
}

// Apply records one event. Update calls it for every SDL event.
func (i *Input) Apply(e Event) {
	i.events = append(i.events, e)

	switch e.Type {
	case EventWindowResize:
		i.resized = true
		i.width, i.height = e.Width, e.Height
	case EventKeyDown:
		i.held[e.Key] = true
	case EventKeyUp:
		delete(i.held, e.Key)
	case EventMouseDown:
		if e.Button == sdl.BUTTON_RIGHT {
			i.looking = true
		}
	case EventMouseUp:
		if e.Button == sdl.BUTTON_RIGHT {
			i.looking = false
		}
	case EventMouseMove:
		if i.looking {
			i.dragX += float32(e.RelX)
			i.dragY += float32(e.RelY)
		}
	case EventMouseWheel:
		i.wheel += float32(e.Wheel)
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether a key is currently down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return i.held[scancode]
}

// Ctrl reports whether either control key is down.
func (i *Input) Ctrl() bool {
	return i.held[sdl.SCANCODE_LCTRL] || i.held[sdl.SCANCODE_RCTRL]
}

// Clicked returns the window position of the first left click this frame.
func (i *Input) Clicked() (x, y int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventMouseDown && e.Button == sdl.BUTTON_LEFT {
			return e.MouseX, e.MouseY, true
		}
	}
	return 0, 0, false
}

// Resized returns the new window size if it changed this frame.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

var movement = []struct {
	key sdl.Scancode
	dir camera.Direction
}{
	{sdl.SCANCODE_W, camera.Forward},
	{sdl.SCANCODE_S, camera.Backward},
	{sdl.SCANCODE_A, camera.Left},
	{sdl.SCANCODE_D, camera.Right},
	{sdl.SCANCODE_E, camera.Up},
	{sdl.SCANCODE_Q, camera.Down},
}

// Process moves the camera from held keys, right-drag and the wheel.
// Movement keys are ignored while Ctrl is down so shortcuts like Ctrl+S do
// not nudge the view.
func (i *Input) Process(cam *camera.Camera, dt float32) {
	if !i.Ctrl() {
		for _, m := range movement {
			if i.held[m.key] {
				cam.Move(m.dir, dt)
			}
		}
	}
	if i.dragX != 0 || i.dragY != 0 {
		cam.HandleDrag(i.dragX, i.dragY)
	}
	if i.wheel != 0 {
		cam.HandleZoom(i.wheel)
	}
	i.dragX, i.dragY, i.wheel = 0, 0, 0
}
