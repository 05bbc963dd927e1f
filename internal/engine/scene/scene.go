// Package scene owns the entities of an editor project and their lifecycle.
//
// Entities are created unloaded. Their geometry is decoded by the importer on
// worker goroutines and merged on the render thread by
// CheckThreadsAndTriggerActions, which performs every GPU upload. Deletions
// are deferred to CheckScheduleDeletions at the end of the frame.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/engine/collision"
	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/importer"
	"github.com/Faultbox/stagecraft/internal/engine/physics"
	"github.com/Faultbox/stagecraft/internal/engine/texture"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// Scene errors.
var (
	ErrNoSceneFile  = errors.New("scene file not found")
	ErrInvalidScene = errors.New("invalid scene file")
)

// Renderer names the graphics backend a project targets.
type Renderer string

const (
	RendererOpenGL33 Renderer = "OpenGL3_3"
	RendererOpenGL4  Renderer = "OpenGL4"
)

// Type distinguishes 2D and 3D projects.
type Type string

const (
	Type2D Type = "Scene2D"
	Type3D Type = "Scene3D"
)

// Metadata describes the project a scene belongs to.
type Metadata struct {
	Name     string
	Author   string
	Renderer Renderer
	Type     Type
}

// ToolboxEntry mirrors one entity for the editor's entity list.
type ToolboxEntry struct {
	ID   entity.ID
	Name string
	Kind entity.Kind
}

// Uploader moves decoded content to the GPU. Implemented by the gpu package;
// all calls happen on the render thread.
type Uploader interface {
	texture.Uploader
	UploadMesh(md *geometry.MeshData) (geometry.Handle, error)
	UploadCubemap(faces []*texture.Image) (uint32, error)
}

// Options configures a new scene.
type Options struct {
	Meta    Metadata
	Root    string          // Project folder
	Workers int             // Concurrent imports
	Loader  importer.Loader // Defaults to importer.DefaultLoader()
}

// Scene holds every entity of the open project, grouped by draw category.
type Scene struct {
	Meta    Metadata
	Folders Folders

	// Collections in draw order
	Skybox            *entity.Entity
	Objects           []*entity.Entity
	Instanced         []*entity.Entity
	Animated          []*entity.Entity
	InstancedAnimated []*entity.Entity
	Lights            []*entity.Entity
	AudioSources      []*entity.Entity

	Toolbox []ToolboxEntry

	importer *importer.Importer
	textures *texture.Cache
	physics  *physics.World

	deletions map[entity.ID]bool
	orphans   []*entity.Entity // Removed by Load, released at end of frame
	file      string           // Set by Load; Save writes back to it
}

// New creates an empty scene and its project folders.
func New(opts Options) (*Scene, error) {
	if opts.Meta.Name == "" {
		return nil, fmt.Errorf("%w: empty scene name", ErrInvalidScene)
	}
	if opts.Meta.Renderer == "" {
		opts.Meta.Renderer = RendererOpenGL4
	}
	if opts.Meta.Type == "" {
		opts.Meta.Type = Type3D
	}
	if opts.Loader == nil {
		opts.Loader = importer.DefaultLoader()
	}

	s := &Scene{
		Meta:      opts.Meta,
		Folders:   NewFolders(opts.Root),
		importer:  importer.New(opts.Loader, opts.Workers),
		textures:  texture.NewCache(),
		physics:   physics.NewWorld(),
		deletions: make(map[entity.ID]bool),
	}
	if err := s.EnsureProjectFolders(); err != nil {
		return nil, err
	}

	logger.Info("scene created",
		zap.String("name", s.Meta.Name),
		zap.String("folder", s.Folders.Root),
		zap.String("renderer", string(s.Meta.Renderer)),
	)
	return s, nil
}

// Physics returns the scene's physics world.
func (s *Scene) Physics() *physics.World { return s.physics }

// Textures returns the shared texture cache.
func (s *Scene) Textures() *texture.Cache { return s.textures }

// InFlight lists imports still decoding.
func (s *Scene) InFlight() []*importer.Job { return s.importer.InFlight() }

// Add places e in the collection for its kind and mirrors it in the toolbox.
// Adding a second skybox schedules the first one for deletion.
func (s *Scene) Add(e *entity.Entity) {
	switch e.Kind {
	case entity.KindObject:
		s.Objects = append(s.Objects, e)
	case entity.KindInstanced:
		s.Instanced = append(s.Instanced, e)
	case entity.KindAnimated:
		s.Animated = append(s.Animated, e)
	case entity.KindInstancedAnimated:
		s.InstancedAnimated = append(s.InstancedAnimated, e)
	case entity.KindLight:
		s.Lights = append(s.Lights, e)
	case entity.KindAudio:
		s.AudioSources = append(s.AudioSources, e)
	case entity.KindSkybox:
		if s.Skybox != nil {
			s.orphans = append(s.orphans, s.Skybox)
			s.removeFromToolbox(s.Skybox.ID())
		}
		s.Skybox = e
	}
	s.Toolbox = append(s.Toolbox, ToolboxEntry{ID: e.ID(), Name: e.Name, Kind: e.Kind})
	s.SetPhysics(e, e.Physics)
}

// SetPhysics toggles collision and physics participation of e.
func (s *Scene) SetPhysics(e *entity.Entity, enabled bool) {
	e.Physics = enabled
	if enabled && e.Body == nil && !e.Kind.Instanced() {
		e.Body = s.physics.Add(&e.Transform.Position, e.Weight, e.Gravity)
	}
	if enabled && e.Body != nil {
		e.Body.Gravity = e.Gravity
		e.Body.Weight = e.Weight
	}
	if !enabled && e.Body != nil {
		s.physics.Remove(e.Body)
		e.Body = nil
	}
}

// AddPrimitive creates an entity drawing a built-in shape. Its mesh is
// uploaded on the next CheckThreadsAndTriggerActions.
func (s *Scene) AddPrimitive(kind entity.Kind, name string, g geometry.Type) (*entity.Entity, error) {
	if _, ok := geometry.Primitive(g); !ok {
		return nil, fmt.Errorf("no primitive for geometry %s", g)
	}
	e := entity.New(kind, name)
	e.Geometry = g
	if kind.Instanced() {
		e.Instances = []entity.Transformation{entity.NewTransformation()}
	}
	s.Add(e)
	s.queueGeometry(e)
	return e, nil
}

// ImportModel creates an entity and starts importing its model file in the
// background. The entity stays unloaded until the import is merged.
func (s *Scene) ImportModel(kind entity.Kind, name, path string, flip bool) *entity.Entity {
	e := entity.New(kind, name)
	e.Geometry = geometry.Custom
	e.Source = path
	e.FlipTextures = flip
	if kind.Instanced() {
		e.Instances = []entity.Transformation{entity.NewTransformation()}
	}
	s.Add(e)
	s.queueGeometry(e)
	return e
}

// AddLight creates a point light drawn as a small cube.
func (s *Scene) AddLight(name string, pos, color mgl32.Vec3, intensity float32) *entity.Entity {
	e := entity.New(entity.KindLight, name)
	e.Transform.Position = pos
	e.Light.Color = color
	e.Light.Intensity = intensity
	s.Add(e)
	s.queueGeometry(e)
	return e
}

// AddAudioSource creates a positional sound. It has no geometry and is
// loaded immediately.
func (s *Scene) AddAudioSource(name, path string, pos mgl32.Vec3, volume float32, looped bool) *entity.Entity {
	e := entity.New(entity.KindAudio, name)
	e.Transform.Position = pos
	e.Sound.Path = path
	e.Sound.Volume = volume
	e.Sound.Looped = looped
	s.Add(e)
	return e
}

// SetSkybox replaces the skybox with one built from six face images in
// +X, -X, +Y, -Y, +Z, -Z order. Faces are decoded in the background.
func (s *Scene) SetSkybox(name string, faces []string) (*entity.Entity, error) {
	if len(faces) != 6 {
		return nil, fmt.Errorf("skybox needs 6 faces, got %d", len(faces))
	}
	paths := append([]string(nil), faces...)
	e := entity.New(entity.KindSkybox, name)
	e.SkyboxFaces = append([]string(nil), faces...)
	s.Add(e)

	s.importer.Run(e.ID(), name, func() (*importer.Model, error) {
		m := &importer.Model{Meshes: []*geometry.MeshData{geometry.NewCube()}}
		for _, f := range paths {
			img, err := texture.DecodeFile(f, false)
			if err != nil {
				return nil, fmt.Errorf("skybox face: %w", err)
			}
			m.Images = append(m.Images, img)
		}
		return m, nil
	})
	return e, nil
}

// Find returns the entity with id, or nil.
func (s *Scene) Find(id entity.ID) *entity.Entity {
	for _, e := range s.All() {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

// All returns every entity in draw order.
func (s *Scene) All() []*entity.Entity {
	n := len(s.Objects) + len(s.Instanced) + len(s.Animated) + len(s.InstancedAnimated) +
		len(s.Lights) + len(s.AudioSources) + 1
	all := make([]*entity.Entity, 0, n)
	if s.Skybox != nil {
		all = append(all, s.Skybox)
	}
	all = append(all, s.Objects...)
	all = append(all, s.Instanced...)
	all = append(all, s.Animated...)
	all = append(all, s.InstancedAnimated...)
	all = append(all, s.Lights...)
	all = append(all, s.AudioSources...)
	return all
}

// Colliders returns the entities taking part in this frame's collision pass.
func (s *Scene) Colliders() []*entity.Entity {
	return collision.Participants(s.Objects, s.Animated, s.Lights)
}
