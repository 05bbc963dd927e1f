// Package lighting gathers the scene's point lights for the lit shaders.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
)

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = 8

// PointLight represents a point light source for GPU upload.
type PointLight struct {
	Position mgl32.Vec3 // World position
	Color    mgl32.Vec3 // RGB premultiplied by intensity
}

// PointLightBuffer holds lights for GPU upload.
type PointLightBuffer struct {
	Lights []PointLight
}

// NewPointLightBuffer creates an empty point light buffer.
func NewPointLightBuffer() *PointLightBuffer {
	return &PointLightBuffer{
		Lights: make([]PointLight, 0, MaxPointLights),
	}
}

// Collect replaces the buffer with the rendered lights among entities, in
// order, up to MaxPointLights.
func (b *PointLightBuffer) Collect(entities []*entity.Entity) {
	b.Lights = b.Lights[:0]
	for _, e := range entities {
		if len(b.Lights) == MaxPointLights {
			break
		}
		if e.Light == nil || !e.Render {
			continue
		}

		// Clamp color values to 0-1 range before scaling
		var c mgl32.Vec3
		for i := 0; i < 3; i++ {
			c[i] = mgl32.Clamp(e.Light.Color[i], 0, 1)
		}
		intensity := e.Light.Intensity
		if intensity < 0 {
			intensity = 0
		}

		b.Lights = append(b.Lights, PointLight{
			Position: e.Transform.Position,
			Color:    c.Mul(intensity),
		})
	}
}

// Positions returns the light positions for a vec3 array uniform.
func (b *PointLightBuffer) Positions() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(b.Lights))
	for i, l := range b.Lights {
		out[i] = l.Position
	}
	return out
}

// Colors returns the light colors for a vec3 array uniform.
func (b *PointLightBuffer) Colors() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(b.Lights))
	for i, l := range b.Lights {
		out[i] = l.Color
	}
	return out
}
