// Package physics integrates simple rigid bodies for the editor viewport.
//
// A step runs in two phases like most physics engines: Step simulates into
// a scratch buffer and Finalize writes results back to entity transforms.
package physics

import "github.com/go-gl/mathgl/mgl32"

// GravityConst is the downward acceleration applied per unit of weight.
const GravityConst = 9.81

// Body is a simulated actor. Position points at the owning entity's
// transform, so the world and the entity share it.
type Body struct {
	Position *mgl32.Vec3
	Weight   float32
	Gravity  bool
	Reversed bool // Gravity pulls up instead of down

	world *World
	next  mgl32.Vec3
}

// World owns every body in the scene.
type World struct {
	bodies   []*Body
	steps    uint64
	stepping bool
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// Add registers a body driving pos.
func (w *World) Add(pos *mgl32.Vec3, weight float32, gravity bool) *Body {
	b := &Body{
		Position: pos,
		Weight:   weight,
		Gravity:  gravity,
		world:    w,
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Remove unregisters b. Removing an unknown body is a no-op.
func (w *World) Remove(b *Body) {
	if b == nil || b.world != w {
		return
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.world = nil
}

// Len returns the number of registered bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Steps returns how many steps have been finalized.
func (w *World) Steps() uint64 {
	return w.steps
}

// Step simulates dt seconds. Results become visible after Finalize.
func (w *World) Step(dt float32) {
	for _, b := range w.bodies {
		b.next = *b.Position
		if !b.Gravity || dt <= 0 {
			continue
		}
		fall := b.Weight * GravityConst * dt
		if b.Reversed {
			b.next[1] += fall
		} else {
			b.next[1] -= fall
		}
	}
	w.stepping = true
}

// Finalize commits the last Step. Calling it without a Step does nothing.
func (w *World) Finalize() {
	if !w.stepping {
		return
	}
	for _, b := range w.bodies {
		*b.Position = b.next
	}
	w.stepping = false
	w.steps++
}
