// Package entity defines the flat record shared by everything in a scene.
//
// The record carries optional components (transform, geometry, animation,
// physics, light, sound) selected by its Kind. Entities are owned by the
// scene collection they live in and are mutated only on the render thread.
package entity

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/animation"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/physics"
	"github.com/Faultbox/stagecraft/internal/engine/texture"
)

// ID identifies an entity for the lifetime of the process.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Light holds point light parameters.
type Light struct {
	Color     mgl32.Vec3
	Intensity float32
}

// Sound holds audio source parameters.
type Sound struct {
	Path   string
	Volume float32
	Looped bool
}

// Entity is one element of a scene.
type Entity struct {
	id ID

	Name   string
	Kind   Kind
	Render bool // Draw when loaded

	Transform Transformation
	Instances []Transformation // Per-instance props for instanced kinds

	Geometry     geometry.Type
	Source       string   // Model file for Custom geometry
	SkyboxFaces  []string // +X, -X, +Y, -Y, +Z, -Z for KindSkybox
	FlipTextures bool
	Meshes       []*geometry.Mesh
	Cubemap      uint32        // Skybox texture, owned by the entity
	Bounds       geometry.AABB // Local space, union of mesh bounds

	Animations      []*animation.Animation
	ActiveAnimation int
	Animator        *animation.Engine

	Physics bool // Participates in collision and physics
	Gravity bool
	Weight  float32
	Body    *physics.Body // Shared with the physics world

	Light *Light
	Sound *Sound

	loaded    bool
	colliding bool
}

// New creates an entity with a fresh id, unit transform and rendering enabled.
func New(kind Kind, name string) *Entity {
	e := &Entity{
		id:        nextID(),
		Name:      name,
		Kind:      kind,
		Render:    true,
		Transform: NewTransformation(),
		Weight:    1,
		Bounds:    geometry.EmptyAABB(),
	}
	switch kind {
	case KindLight:
		e.Light = &Light{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}
		e.Geometry = geometry.Cube
		e.Transform.Scale = mgl32.Vec3{0.2, 0.2, 0.2}
	case KindAudio:
		e.Sound = &Sound{Volume: 1}
		e.loaded = true
	case KindSkybox:
		e.Geometry = geometry.Cube
	}
	return e
}

// ID returns the entity's process-unique id.
func (e *Entity) ID() ID {
	return e.id
}

// IsLoaded reports whether GPU resources are ready. Unloaded entities are
// never drawn.
func (e *Entity) IsLoaded() bool {
	return e.loaded
}

// MarkLoaded flags the entity as drawable. Called after the main thread has
// finished uploading.
func (e *Entity) MarkLoaded() {
	e.loaded = true
}

// Colliding reports whether the entity overlapped anything in the last collision pass.
func (e *Entity) Colliding() bool {
	return e.colliding
}

// SetColliding raises the collision flag. It is never lowered mid-pass.
func (e *Entity) SetColliding(colliding bool) {
	if e.colliding {
		return
	}
	e.colliding = colliding
}

// ResetCollision clears the collision flag before a new pass.
func (e *Entity) ResetCollision() {
	e.colliding = false
}

// Drawable reports whether the entity should be drawn this frame.
func (e *Entity) Drawable() bool {
	return e.Render && e.loaded && len(e.Meshes) > 0
}

// WorldBounds returns the local bounds scaled and translated into world
// space. Rotation is ignored; the box stays axis aligned.
func (e *Entity) WorldBounds() geometry.AABB {
	return e.Bounds.ScaleTranslate(e.Transform.Scale, e.Transform.Position)
}

// InstanceModels returns one model matrix per instance prop.
func (e *Entity) InstanceModels() []mgl32.Mat4 {
	models := make([]mgl32.Mat4, len(e.Instances))
	for i, t := range e.Instances {
		models[i] = t.Model()
	}
	return models
}

// ActiveClip returns the selected animation, or nil.
func (e *Entity) ActiveClip() *animation.Animation {
	if e.ActiveAnimation < 0 || e.ActiveAnimation >= len(e.Animations) {
		return nil
	}
	return e.Animations[e.ActiveAnimation]
}

// ReleaseResources frees meshes and drops texture references. It must run
// on the render thread. The entity returns to the not-loaded state.
func (e *Entity) ReleaseResources(cache *texture.Cache, up texture.Uploader) {
	for _, m := range e.Meshes {
		if m.GPU != nil {
			m.GPU.Release()
		}
		for _, t := range m.Textures {
			cache.Release(t, up)
		}
	}
	e.Meshes = nil
	if e.Cubemap != 0 && up != nil {
		up.DeleteTexture(e.Cubemap)
	}
	e.Cubemap = 0
	e.loaded = false
}
