package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/engine/shader/sources"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// Program is a linked shader program with cached uniform locations.
// A program that failed to build stays registered but is not Valid; setting
// uniforms on it does nothing and draw code skips it.
type Program struct {
	Name string
	ID   uint32
	Err  error

	uniforms map[string]int32
}

// Valid reports whether the program linked.
func (p *Program) Valid() bool {
	return p != nil && p.ID != 0
}

// Use binds the program.
func (p *Program) Use() {
	if p.Valid() {
		gl.UseProgram(p.ID)
	}
}

// Uniform returns the location of name, or -1 when the program does not use it.
func (p *Program) Uniform(name string) int32 {
	if !p.Valid() {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := GetUniform(p.ID, name)
	p.uniforms[name] = loc
	return loc
}

// SetMat4 sets a matrix uniform. The program must be in use.
func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// SetMat4Array sets a matrix array uniform such as finalBonesMatrices.
func (p *Program) SetMat4Array(name string, ms []mgl32.Mat4) {
	if len(ms) == 0 {
		return
	}
	if loc := p.Uniform(name + "[0]"); loc >= 0 {
		gl.UniformMatrix4fv(loc, int32(len(ms)), false, &ms[0][0])
	}
}

// SetVec3 sets a vector uniform.
func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.Uniform3f(loc, v[0], v[1], v[2])
	}
}

// SetVec3Array sets a vector array uniform.
func (p *Program) SetVec3Array(name string, vs []mgl32.Vec3) {
	if len(vs) == 0 {
		return
	}
	if loc := p.Uniform(name + "[0]"); loc >= 0 {
		gl.Uniform3fv(loc, int32(len(vs)), &vs[0][0])
	}
}

// SetInt sets an integer or sampler uniform.
func (p *Program) SetInt(name string, v int32) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

// SetBool sets a boolean uniform.
func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.SetInt(name, i)
}

// FrameUniforms are shared by every program for one frame.
type FrameUniforms struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	ViewPos    mgl32.Vec3
}

// Registry owns the shader programs by name.
type Registry struct {
	programs map[string]*Program
	order    []string
	compile  func(vertex, fragment string) (uint32, error)
	release  func(id uint32)
}

// NewRegistry creates a registry compiling with the current GL context.
func NewRegistry() *Registry {
	return &Registry{
		programs: make(map[string]*Program),
		compile:  CompileProgram,
		release:  func(id uint32) { gl.DeleteProgram(id) },
	}
}

// Load compiles and registers a program. Build failures are logged and the
// returned program is not Valid. Loading an existing name replaces it.
func (r *Registry) Load(name, vertex, fragment string) *Program {
	id, err := r.compile(vertex, fragment)
	p := &Program{Name: name, ID: id, uniforms: make(map[string]int32)}
	if err != nil {
		p.ID = 0
		p.Err = fmt.Errorf("building shader %s: %w", name, err)
		logger.Error("shader build failed", zap.String("shader", name), zap.Error(err))
	} else {
		logger.Debug("shader loaded", zap.String("shader", name), zap.Uint32("program", id))
	}

	if old, ok := r.programs[name]; ok {
		if old.Valid() {
			r.release(old.ID)
		}
	} else {
		r.order = append(r.order, name)
	}
	r.programs[name] = p
	return p
}

// LoadDefaults registers every editor shader.
func (r *Registry) LoadDefaults() {
	for _, src := range sources.All() {
		r.Load(src.Name, src.Vertex, src.Fragment)
	}
}

// Get returns the program registered as name. Asking for a program that was
// never loaded is a programming error and panics.
func (r *Registry) Get(name string) *Program {
	p, ok := r.programs[name]
	if !ok {
		panic(fmt.Sprintf("shader %q not registered", name))
	}
	return p
}

// Each calls fn for every program in registration order.
func (r *Registry) Each(fn func(p *Program)) {
	for _, name := range r.order {
		fn(r.programs[name])
	}
}

// Manifest sets view, projection and viewPos on every valid program.
func (r *Registry) Manifest(u FrameUniforms) {
	r.Each(func(p *Program) {
		if !p.Valid() {
			return
		}
		p.Use()
		p.SetMat4("view", u.View)
		p.SetMat4("projection", u.Projection)
		p.SetVec3("viewPos", u.ViewPos)
	})
}

// Release deletes every program.
func (r *Registry) Release() {
	r.Each(func(p *Program) {
		if p.Valid() {
			r.release(p.ID)
		}
		p.ID = 0
	})
	r.programs = make(map[string]*Program)
	r.order = nil
}
