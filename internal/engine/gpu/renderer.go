// Package gpu uploads scene data to OpenGL and issues the draw calls.
//
// Every function here must run on the thread that owns the GL context.
// Workers hand their decoded buffers to the scene, and the scene calls the
// upload methods from the main loop.
package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/engine/lighting"
	"github.com/Faultbox/stagecraft/internal/engine/shader"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer owns the shader registry and the shared GL state.
type Renderer struct {
	config  Config
	shaders *shader.Registry
	lights  *lighting.PointLightBuffer

	// Line buffer for debug boxes
	lineVAO uint32
	lineVBO uint32
}

// New initializes OpenGL and builds every editor shader.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	r := &Renderer{
		config:  cfg,
		shaders: shader.NewRegistry(),
		lights:  lighting.NewPointLightBuffer(),
	}
	r.shaders.LoadDefaults()
	r.Resize(cfg.Width, cfg.Height)

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return r, nil
}

// Shaders returns the program registry.
func (r *Renderer) Shaders() *shader.Registry {
	return r.shaders
}

// Manifest pushes the per-frame camera uniforms to every program.
func (r *Renderer) Manifest(u shader.FrameUniforms) {
	r.shaders.Manifest(u)
}

// Release deletes the shared buffers and every shader program.
func (r *Renderer) Release() {
	logger.Info("closing renderer")
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
		r.lineVAO = 0
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
		r.lineVBO = 0
	}
	r.shaders.Release()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Clear starts a new frame.
func (r *Renderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
