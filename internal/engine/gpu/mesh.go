package gpu

import (
	"errors"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/geometry"
)

// ErrEmptyMesh is returned when a mesh has no vertices or indices.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Attribute locations shared with the GLSL sources.
const (
	attribPosition = 0
	attribNormal   = 1
	attribTexCoord = 2
	attribBoneIDs  = 3
	attribWeights  = 4
	attribInstance = 5 // mat4 takes 5..8
)

var (
	vertexStride   = int32(unsafe.Sizeof(geometry.Vertex{}))
	offsetNormal   = unsafe.Offsetof(geometry.Vertex{}.Normal)
	offsetTexCoord = unsafe.Offsetof(geometry.Vertex{}.TexCoord)
	offsetBoneIDs  = unsafe.Offsetof(geometry.Vertex{}.BoneIDs)
	offsetWeights  = unsafe.Offsetof(geometry.Vertex{}.Weights)
	mat4Size       = int32(unsafe.Sizeof(mgl32.Mat4{}))
)

// meshHandle is the GL side of an uploaded mesh.
type meshHandle struct {
	vao, vbo, ebo uint32

	// Per-instance model matrices, created on the first instanced draw.
	instanceVBO uint32
}

// UploadMesh creates the vertex array for md. Bone attributes are always
// present; programs that do not skin simply ignore them.
func (r *Renderer) UploadMesh(md *geometry.MeshData) (geometry.Handle, error) {
	if len(md.Vertices) == 0 || len(md.Indices) == 0 {
		return nil, ErrEmptyMesh
	}

	h := &meshHandle{}
	gl.GenVertexArrays(1, &h.vao)
	gl.BindVertexArray(h.vao)

	gl.GenBuffers(1, &h.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(md.Vertices)*int(vertexStride), unsafe.Pointer(&md.Vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, vertexStride, offsetNormal)
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointerWithOffset(attribTexCoord, 2, gl.FLOAT, false, vertexStride, offsetTexCoord)
	gl.EnableVertexAttribArray(attribTexCoord)
	// Bone ids stay integers in the shader.
	gl.VertexAttribIPointerWithOffset(attribBoneIDs, geometry.MaxBoneInfluence, gl.INT, vertexStride, offsetBoneIDs)
	gl.EnableVertexAttribArray(attribBoneIDs)
	gl.VertexAttribPointerWithOffset(attribWeights, geometry.MaxBoneInfluence, gl.FLOAT, false, vertexStride, offsetWeights)
	gl.EnableVertexAttribArray(attribWeights)

	gl.GenBuffers(1, &h.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, h.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(md.Indices)*4, unsafe.Pointer(&md.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return h, nil
}

// setInstances streams the instance matrices. The VAO must be bound.
func (h *meshHandle) setInstances(models []mgl32.Mat4) {
	if h.instanceVBO == 0 {
		gl.GenBuffers(1, &h.instanceVBO)
		gl.BindBuffer(gl.ARRAY_BUFFER, h.instanceVBO)
		for col := uint32(0); col < 4; col++ {
			loc := attribInstance + col
			gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, mat4Size, uintptr(col*16))
			gl.EnableVertexAttribArray(loc)
			gl.VertexAttribDivisor(loc, 1)
		}
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, h.instanceVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(models)*int(mat4Size), unsafe.Pointer(&models[0]), gl.STREAM_DRAW)
}

// Release deletes the buffers. It is safe to call twice.
func (h *meshHandle) Release() {
	if h.instanceVBO != 0 {
		gl.DeleteBuffers(1, &h.instanceVBO)
		h.instanceVBO = 0
	}
	if h.ebo != 0 {
		gl.DeleteBuffers(1, &h.ebo)
		h.ebo = 0
	}
	if h.vbo != 0 {
		gl.DeleteBuffers(1, &h.vbo)
		h.vbo = 0
	}
	if h.vao != 0 {
		gl.DeleteVertexArrays(1, &h.vao)
		h.vao = 0
	}
}
