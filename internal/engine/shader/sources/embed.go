// Package sources provides the embedded GLSL sources of the editor shaders.
package sources

import _ "embed"

// Shader names used for registration and lookup.
const (
	Simple                  = "Simple"
	SimpleInstanced         = "SimpleInstanced"
	SimpleAnimated          = "SimpleAnimated"
	SimpleInstancedAnimated = "SimpleInstancedAnimated"
	Light                   = "Light"
	Collision               = "Collision"
	Skybox                  = "Skybox"
	Overlay                 = "Overlay"
)

// SimpleVertexShader draws static meshes.
//
//go:embed simple.vert
var SimpleVertexShader string

// SimpleInstancedVertexShader reads per-instance model matrices from attributes 5-8.
//
//go:embed simple_instanced.vert
var SimpleInstancedVertexShader string

// SimpleAnimatedVertexShader skins vertices with finalBonesMatrices.
//
//go:embed simple_animated.vert
var SimpleAnimatedVertexShader string

// SimpleInstancedAnimatedVertexShader skins and instances.
//
//go:embed simple_instanced_animated.vert
var SimpleInstancedAnimatedVertexShader string

// SimpleFragmentShader lights every mesh variant.
//
//go:embed simple.frag
var SimpleFragmentShader string

//go:embed light.vert
var LightVertexShader string

//go:embed light.frag
var LightFragmentShader string

//go:embed collision.vert
var CollisionVertexShader string

//go:embed collision.frag
var CollisionFragmentShader string

//go:embed skybox.vert
var SkyboxVertexShader string

//go:embed skybox.frag
var SkyboxFragmentShader string

// OverlayVertexShader draws 2D quads in window pixels.
//
//go:embed overlay.vert
var OverlayVertexShader string

//go:embed overlay.frag
var OverlayFragmentShader string

// Source pairs a shader name with its stages.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// All returns every editor shader in registration order.
func All() []Source {
	return []Source{
		{Skybox, SkyboxVertexShader, SkyboxFragmentShader},
		{Simple, SimpleVertexShader, SimpleFragmentShader},
		{SimpleInstanced, SimpleInstancedVertexShader, SimpleFragmentShader},
		{SimpleAnimated, SimpleAnimatedVertexShader, SimpleFragmentShader},
		{SimpleInstancedAnimated, SimpleInstancedAnimatedVertexShader, SimpleFragmentShader},
		{Light, LightVertexShader, LightFragmentShader},
		{Collision, CollisionVertexShader, CollisionFragmentShader},
		{Overlay, OverlayVertexShader, OverlayFragmentShader},
	}
}
