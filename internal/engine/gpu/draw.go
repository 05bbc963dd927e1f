package gpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/debug"
	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/shader"
	"github.com/Faultbox/stagecraft/internal/engine/shader/sources"
)

// Untextured meshes are shaded with this albedo.
var defaultBaseColor = mgl32.Vec3{0.8, 0.8, 0.8}

var litPrograms = []string{
	sources.Simple,
	sources.SimpleInstanced,
	sources.SimpleAnimated,
	sources.SimpleInstancedAnimated,
}

// SetLights uploads the scene lights to every lit program.
func (r *Renderer) SetLights(lights []*entity.Entity) {
	r.lights.Collect(lights)
	positions, colors := r.lights.Positions(), r.lights.Colors()
	for _, name := range litPrograms {
		p := r.shaders.Get(name)
		if !p.Valid() {
			continue
		}
		p.Use()
		p.SetInt("lightCount", int32(len(positions)))
		p.SetVec3Array("lightPositions", positions)
		p.SetVec3Array("lightColors", colors)
	}
}

// DrawEntity draws e with the named program. Instanced kinds draw one copy
// per instance prop; animated kinds upload the bone palette first.
func (r *Renderer) DrawEntity(program string, e *entity.Entity) {
	p := r.shaders.Get(program)
	if !p.Valid() || !e.Drawable() {
		return
	}
	p.Use()

	var models []mgl32.Mat4
	if e.Kind.Instanced() {
		models = e.InstanceModels()
		if len(models) == 0 {
			return
		}
	} else {
		p.SetMat4("model", e.Transform.Model())
	}
	if e.Kind.Animated() && e.Animator != nil {
		p.SetMat4Array("finalBonesMatrices", e.Animator.FinalBoneMatrices())
	}
	if e.Light != nil {
		p.SetVec3("lightColor", e.Light.Color.Mul(e.Light.Intensity))
	}

	for _, m := range e.Meshes {
		h, ok := m.GPU.(*meshHandle)
		if !ok || h.vao == 0 {
			continue
		}
		bindMaterial(p, m)
		gl.BindVertexArray(h.vao)
		if models != nil {
			h.setInstances(models)
			gl.DrawElementsInstanced(gl.TRIANGLES, m.IndexCount, gl.UNSIGNED_INT, nil, int32(len(models)))
		} else {
			gl.DrawElementsWithOffset(gl.TRIANGLES, m.IndexCount, gl.UNSIGNED_INT, 0)
		}
	}
	gl.BindVertexArray(0)
}

func bindMaterial(p *shader.Program, m *geometry.Mesh) {
	if len(m.Textures) > 0 && m.Textures[0] != nil && m.Textures[0].ID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, m.Textures[0].ID)
		p.SetInt("texture_diffuse1", 0)
		p.SetBool("hasTexture", true)
		return
	}
	p.SetBool("hasTexture", false)
	p.SetVec3("baseColor", defaultBaseColor)
}

// DrawSkybox draws the cube map behind everything else.
func (r *Renderer) DrawSkybox(e *entity.Entity) {
	if e == nil || e.Cubemap == 0 || !e.Drawable() {
		return
	}
	p := r.shaders.Get(sources.Skybox)
	if !p.Valid() {
		return
	}
	p.Use()

	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, e.Cubemap)
	p.SetInt("skybox", 0)
	for _, m := range e.Meshes {
		if h, ok := m.GPU.(*meshHandle); ok && h.vao != 0 {
			gl.BindVertexArray(h.vao)
			gl.DrawElementsWithOffset(gl.TRIANGLES, m.IndexCount, gl.UNSIGNED_INT, 0)
		}
	}
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// DrawBoxes outlines world-space boxes with the collision program.
func (r *Renderer) DrawBoxes(boxes []debug.Box) {
	if len(boxes) == 0 {
		return
	}
	p := r.shaders.Get(sources.Collision)
	if !p.Valid() {
		return
	}
	p.Use()
	p.SetMat4("model", mgl32.Ident4())

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	for _, b := range boxes {
		verts := debug.Wireframe(b.Bounds, debug.DefaultBBoxPadding)
		if len(verts) == 0 {
			continue
		}
		p.SetVec3("color", b.Color)
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STREAM_DRAW)
		gl.DrawArrays(gl.LINES, 0, debug.BBoxWireframeVertexCount)
	}
	gl.BindVertexArray(0)
}
