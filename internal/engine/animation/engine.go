package animation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Engine is the per-entity playback state of an Animation.
type Engine struct {
	current *Animation // Borrowed; owned by the entity's model
	time    float32
	final   [MaxBones]mgl32.Mat4
}

// NewEngine creates an engine playing a. a may be nil.
func NewEngine(a *Animation) *Engine {
	e := &Engine{}
	e.PlayAnimation(a)
	return e
}

// PlayAnimation switches to a and rewinds. Final matrices reset to identity.
func (e *Engine) PlayAnimation(a *Animation) {
	e.current = a
	e.time = 0
	for i := range e.final {
		e.final[i] = mgl32.Ident4()
	}
}

// Current returns the clip being played.
func (e *Engine) Current() *Animation {
	return e.current
}

// Time returns the cursor in ticks, always within [0, Duration).
func (e *Engine) Time() float32 {
	return e.time
}

// UpdateAnimation advances the cursor by dt seconds, wrapping at the clip end.
func (e *Engine) UpdateAnimation(dt float32) {
	if e.current == nil {
		return
	}
	duration := float64(e.current.Duration)
	if duration <= 0 {
		e.time = 0
		return
	}

	t := math.Mod(float64(e.time)+float64(e.current.TicksPerSecond)*float64(dt), duration)
	if t < 0 {
		t += duration
	}
	e.time = float32(t)
	// float32 rounding can land exactly on the end.
	if e.time >= e.current.Duration {
		e.time = 0
	}
}

// BuildAnimationMatrices evaluates the skeleton at the current time and
// stores one matrix per skinning slot.
func (e *Engine) BuildAnimationMatrices() {
	if e.current == nil || e.current.Root == nil {
		return
	}
	e.calculateBoneTransform(e.current.Root, mgl32.Ident4())
}

// calculateBoneTransform walks the hierarchy depth first. Nodes without a
// skinning slot still pass their global transform down to their children.
func (e *Engine) calculateBoneTransform(node *Node, parent mgl32.Mat4) {
	local := node.Transform
	if local == (mgl32.Mat4{}) {
		local = mgl32.Ident4()
	}
	if bone := e.current.FindBone(node.Name); bone != nil {
		local = bone.Local(e.time)
	}

	global := parent.Mul4(local)

	if info, ok := e.current.BoneInfo(node.Name); ok && info.ID >= 0 && info.ID < MaxBones {
		e.final[info.ID] = global.Mul4(info.Offset)
	}

	for _, child := range node.Children {
		e.calculateBoneTransform(child, global)
	}
}

// FinalBoneMatrices returns the matrices for the skinning shader uniform.
// The slice aliases engine state and is valid until the next build.
func (e *Engine) FinalBoneMatrices() []mgl32.Mat4 {
	return e.final[:]
}
