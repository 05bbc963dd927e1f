package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/importer"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// sceneFile is the YAML document written by Save.
type sceneFile struct {
	Name     string       `yaml:"name"`
	Author   string       `yaml:"author,omitempty"`
	Renderer Renderer     `yaml:"renderer"`
	Type     Type         `yaml:"type"`
	Folders  folderFile   `yaml:"folders"`
	Skybox   *skyboxFile  `yaml:"skybox,omitempty"`
	Entities []entityFile `yaml:"entities"`
}

// folderFile records the layout at save time. Load derives the folders from
// the project root instead, so a moved project keeps working.
type folderFile struct {
	Assets         string `yaml:"assets"`
	Sound          string `yaml:"sound"`
	ImportedModels string `yaml:"imported_models"`
	Configuration  string `yaml:"configuration"`
	Packages       string `yaml:"packages"`
	Main           string `yaml:"main"`
}

type skyboxFile struct {
	Name  string   `yaml:"name"`
	Faces []string `yaml:"faces"`
}

type transformFile struct {
	Position [3]float32 `yaml:"position,flow"`
	Rotation [3]float32 `yaml:"rotation,flow"`
	Scale    [3]float32 `yaml:"scale,flow"`
}

type lightFile struct {
	Color     [3]float32 `yaml:"color,flow"`
	Intensity float32    `yaml:"intensity"`
}

type soundFile struct {
	Path   string  `yaml:"path"`
	Volume float32 `yaml:"volume"`
	Looped bool    `yaml:"looped"`
}

type entityFile struct {
	Kind      string          `yaml:"kind"`
	Name      string          `yaml:"name"`
	Render    bool            `yaml:"render"`
	Geometry  string          `yaml:"geometry,omitempty"`
	Model     string          `yaml:"model,omitempty"`
	Flip      bool            `yaml:"flip_textures,omitempty"`
	Transform transformFile   `yaml:"transform"`
	Instances []transformFile `yaml:"instances,omitempty"`
	Animation int             `yaml:"animation,omitempty"`
	Physics   bool            `yaml:"physics,omitempty"`
	Gravity   bool            `yaml:"gravity,omitempty"`
	Weight    float32         `yaml:"weight,omitempty"`
	Light     *lightFile      `yaml:"light,omitempty"`
	Sound     *soundFile      `yaml:"sound,omitempty"`
}

func toTransformFile(t entity.Transformation) transformFile {
	return transformFile{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}

func (t transformFile) transformation() entity.Transformation {
	return entity.Transformation{
		Position: mgl32.Vec3(t.Position),
		Rotation: mgl32.Vec3(t.Rotation),
		Scale:    mgl32.Vec3(t.Scale),
	}
}

func (s *Scene) encode() sceneFile {
	f := sceneFile{
		Name:     s.Meta.Name,
		Author:   s.Meta.Author,
		Renderer: s.Meta.Renderer,
		Type:     s.Meta.Type,
		Folders: folderFile{
			Assets:         s.Folders.Assets,
			Sound:          s.Folders.Sound,
			ImportedModels: s.Folders.ImportedModels,
			Configuration:  s.Folders.Configuration,
			Packages:       s.Folders.Packages,
			Main:           s.Folders.Main,
		},
	}
	if s.Skybox != nil {
		f.Skybox = &skyboxFile{Name: s.Skybox.Name, Faces: s.Skybox.SkyboxFaces}
	}

	for _, e := range s.All() {
		if e.Kind == entity.KindSkybox || s.deletions[e.ID()] {
			continue
		}
		ef := entityFile{
			Kind:      e.Kind.String(),
			Name:      e.Name,
			Render:    e.Render,
			Transform: toTransformFile(e.Transform),
			Animation: e.ActiveAnimation,
			Physics:   e.Physics,
			Gravity:   e.Gravity,
			Weight:    e.Weight,
		}
		if e.Kind.HasGeometry() {
			ef.Geometry = e.Geometry.String()
			if e.Geometry == geometry.Custom {
				ef.Model = e.Source
				ef.Flip = e.FlipTextures
			}
		}
		for _, inst := range e.Instances {
			ef.Instances = append(ef.Instances, toTransformFile(inst))
		}
		if e.Light != nil {
			ef.Light = &lightFile{Color: e.Light.Color, Intensity: e.Light.Intensity}
		}
		if e.Sound != nil {
			ef.Sound = &soundFile{Path: e.Sound.Path, Volume: e.Sound.Volume, Looped: e.Sound.Looped}
		}
		f.Entities = append(f.Entities, ef)
	}
	return f
}

// Save writes the scene to Path(). The file is replaced atomically so an
// interrupted save never leaves a truncated scene behind.
func (s *Scene) Save() error {
	data, err := yaml.Marshal(s.encode())
	if err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}

	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+s.Meta.Name+"-*.yml")
	if err != nil {
		return fmt.Errorf("saving scene: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("saving scene: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("saving scene: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("saving scene: %w", err)
	}

	logger.Info("scene saved", zap.String("path", path), zap.Int("entities", len(s.Toolbox)))
	return nil
}

// Load replaces the scene content with the file at path. Collections are
// repopulated before it returns; geometry arrives through the import queue.
// The previous entities are released at the next CheckScheduleDeletions.
func (s *Scene) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoSceneFile, path)
		}
		return fmt.Errorf("reading scene: %w", err)
	}

	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return setAside(path, fmt.Errorf("%w: %v", ErrInvalidScene, err))
	}
	if err := f.validate(); err != nil {
		return setAside(path, err)
	}

	s.clear()
	s.Meta = Metadata{Name: f.Name, Author: f.Author, Renderer: f.Renderer, Type: f.Type}
	if s.Meta.Renderer == "" {
		s.Meta.Renderer = RendererOpenGL4
	}
	if s.Meta.Type == "" {
		s.Meta.Type = Type3D
	}

	if f.Skybox != nil {
		if _, err := s.SetSkybox(f.Skybox.Name, f.Skybox.Faces); err != nil {
			logger.Warn("skipping skybox", zap.Error(err))
		}
	}
	for _, ef := range f.Entities {
		s.restore(ef)
	}

	s.file = path
	logger.Info("scene loaded", zap.String("path", path), zap.Int("entities", len(s.Toolbox)))
	return nil
}

// setAside renames an unreadable scene file to <path>.bak so the next Save
// cannot overwrite what the user wrote.
func setAside(path string, cause error) error {
	backup := path + ".bak"
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("%w (moving it aside: %v)", cause, err)
	}
	logger.Warn("unreadable scene moved aside",
		zap.String("path", path),
		zap.String("backup", backup),
		zap.Error(cause),
	)
	return cause
}

func (f *sceneFile) validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidScene)
	}
	for i, ef := range f.Entities {
		kind, ok := entity.ParseKind(ef.Kind)
		if !ok || kind == entity.KindSkybox {
			return fmt.Errorf("%w: entity %d has kind %q", ErrInvalidScene, i, ef.Kind)
		}
		if ef.Geometry != "" {
			if _, ok := geometry.ParseType(ef.Geometry); !ok {
				return fmt.Errorf("%w: entity %d has geometry %q", ErrInvalidScene, i, ef.Geometry)
			}
		}
	}
	return nil
}

// restore recreates one entity. Kinds and geometry were checked by validate.
func (s *Scene) restore(ef entityFile) {
	kind, _ := entity.ParseKind(ef.Kind)
	e := entity.New(kind, ef.Name)
	if kind.HasGeometry() && ef.Geometry != "" {
		e.Geometry, _ = geometry.ParseType(ef.Geometry)
		if e.Geometry == geometry.Custom {
			e.Source = ef.Model
			e.FlipTextures = ef.Flip
		}
	}

	e.Render = ef.Render
	e.Transform = ef.Transform.transformation()
	for _, inst := range ef.Instances {
		e.Instances = append(e.Instances, inst.transformation())
	}
	e.ActiveAnimation = ef.Animation
	e.Gravity = ef.Gravity
	if ef.Weight > 0 {
		e.Weight = ef.Weight
	}
	if ef.Light != nil && e.Light != nil {
		e.Light.Color = mgl32.Vec3(ef.Light.Color)
		e.Light.Intensity = ef.Light.Intensity
	}
	if ef.Sound != nil && e.Sound != nil {
		e.Sound.Path = ef.Sound.Path
		e.Sound.Volume = ef.Sound.Volume
		e.Sound.Looped = ef.Sound.Looped
	}

	s.Add(e)
	s.SetPhysics(e, ef.Physics)
	s.queueGeometry(e)
}

// queueGeometry schedules the upload of e's meshes.
func (s *Scene) queueGeometry(e *entity.Entity) {
	if !e.Kind.HasGeometry() {
		return
	}
	if e.Geometry == geometry.Custom {
		s.importer.Import(e.ID(), e.Source, importOptions(e))
		return
	}
	if data, ok := geometry.Primitive(e.Geometry); ok {
		s.importer.Resolve(e.ID(), &importer.Model{Meshes: []*geometry.MeshData{data}})
	}
}

func importOptions(e *entity.Entity) importer.Options {
	return importer.Options{FlipTextures: e.FlipTextures, Animated: e.Kind.Animated()}
}

// clear empties every collection. Removed entities are released at the end
// of the frame, on the render thread.
func (s *Scene) clear() {
	s.orphans = append(s.orphans, s.All()...)
	s.Skybox = nil
	s.Objects = nil
	s.Instanced = nil
	s.Animated = nil
	s.InstancedAnimated = nil
	s.Lights = nil
	s.AudioSources = nil
	s.Toolbox = nil
	clear(s.deletions)
}
