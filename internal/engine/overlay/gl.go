package overlay

import (
	"errors"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/shader"
	"github.com/Faultbox/stagecraft/internal/engine/shader/sources"
)

type gpuState struct {
	program  *shader.Program
	vao, vbo uint32
	tex      uint32
}

// New creates the overlay and uploads its glyph atlas. The overlay program
// must already be registered.
func New(shaders *shader.Registry, width, height int, warningSeconds float64) (*Overlay, error) {
	o := newOverlay(width, height, time.Duration(warningSeconds*float64(time.Second)), time.Now)

	p := shaders.Get(sources.Overlay)
	if !p.Valid() {
		return nil, errors.New("overlay shader failed to build")
	}
	g := &gpuState{program: p}

	img := o.atlas.Image
	gl.GenTextures(1, &g.tex)
	gl.BindTexture(gl.TEXTURE_2D, g.tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)

	o.gpu = g
	return o, nil
}

func (g *gpuState) flush(batch []float32, width, height int) {
	if len(batch) == 0 || !g.program.Valid() {
		return
	}

	var prevBlend, prevDepth int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)

	g.program.Use()
	g.program.SetMat4("uProjection", mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1))
	g.program.SetInt("uTexture", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, g.tex)

	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(batch)*4, unsafe.Pointer(&batch[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(batch)/floatsPerVertex))

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
	if prevDepth == gl.TRUE {
		gl.Enable(gl.DEPTH_TEST)
	}
}

// Release deletes the atlas and buffers.
func (o *Overlay) Release() {
	g := o.gpu
	if g == nil {
		return
	}
	gl.DeleteTextures(1, &g.tex)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteVertexArrays(1, &g.vao)
	o.gpu = nil
}
