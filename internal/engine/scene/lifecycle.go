package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/stagecraft/internal/engine/animation"
	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/importer"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// CheckThreadsAndTriggerActions merges finished imports into their entities.
// It must run on the render thread once per frame. Results whose entity was
// deleted meanwhile are dropped; failures leave the entity unloaded and raise
// a warning.
func (s *Scene) CheckThreadsAndTriggerActions(up Uploader) {
	for _, r := range s.importer.Drain() {
		e := s.Find(r.Target)
		if e == nil || s.deletions[r.Target] {
			logger.Debug("discarding import for removed entity", zap.String("path", r.Path))
			continue
		}
		if r.Err != nil {
			logger.Warn("import failed",
				zap.String("entity", e.Name),
				zap.String("path", r.Path),
				zap.Error(r.Err),
			)
			continue
		}
		if err := s.threadSetup(e, r.Model, up); err != nil {
			e.ReleaseResources(s.textures, up)
			logger.Warn("upload failed",
				zap.String("entity", e.Name),
				zap.Error(err),
			)
			continue
		}
		logger.Debug("entity loaded",
			zap.String("entity", e.Name),
			zap.Int("meshes", len(e.Meshes)),
			zap.Int("animations", len(e.Animations)),
		)
	}
}

// threadSetup uploads a decoded model and makes e drawable.
func (s *Scene) threadSetup(e *entity.Entity, m *importer.Model, up Uploader) error {
	// Re-imports replace whatever was resident.
	e.ReleaseResources(s.textures, up)

	bounds := geometry.EmptyAABB()
	for _, md := range m.Meshes {
		handle, err := up.UploadMesh(md)
		if err != nil {
			return fmt.Errorf("uploading mesh %s: %w", md.Name, err)
		}
		mesh := &geometry.Mesh{
			Name:       md.Name,
			GPU:        handle,
			IndexCount: int32(len(md.Indices)),
			Bounds:     md.Bounds,
		}
		e.Meshes = append(e.Meshes, mesh)

		for _, slot := range md.Textures {
			if slot < 0 || slot >= len(m.Images) {
				continue
			}
			tex, err := s.textures.Acquire(m.Images[slot], up)
			if err != nil {
				return err
			}
			mesh.Textures = append(mesh.Textures, tex)
		}
		bounds = bounds.Union(md.Bounds)
	}
	e.Bounds = bounds

	if e.Kind == entity.KindSkybox {
		id, err := up.UploadCubemap(m.Images)
		if err != nil {
			return fmt.Errorf("uploading skybox: %w", err)
		}
		e.Cubemap = id
	}

	if e.Kind.Animated() {
		e.Animations = m.Animations
		if e.ActiveAnimation >= len(e.Animations) {
			e.ActiveAnimation = 0
		}
		e.Animator = animation.NewEngine(e.ActiveClip())
	}

	e.MarkLoaded()
	return nil
}

// ScheduleDeletion marks an entity for removal at the end of the frame.
// It reports whether the entity exists.
func (s *Scene) ScheduleDeletion(id entity.ID) bool {
	if s.Find(id) == nil {
		return false
	}
	s.deletions[id] = true
	return true
}

// CheckScheduleDeletions removes marked entities from every collection and
// frees their resources. It must run on the render thread after drawing.
func (s *Scene) CheckScheduleDeletions(up Uploader) {
	for _, e := range s.orphans {
		s.release(e, up)
	}
	s.orphans = nil

	if len(s.deletions) == 0 {
		return
	}

	keep := func(list []*entity.Entity) []*entity.Entity {
		out := list[:0]
		for _, e := range list {
			if s.deletions[e.ID()] {
				s.release(e, up)
				continue
			}
			out = append(out, e)
		}
		clear(list[len(out):])
		return out
	}
	s.Objects = keep(s.Objects)
	s.Instanced = keep(s.Instanced)
	s.Animated = keep(s.Animated)
	s.InstancedAnimated = keep(s.InstancedAnimated)
	s.Lights = keep(s.Lights)
	s.AudioSources = keep(s.AudioSources)
	if s.Skybox != nil && s.deletions[s.Skybox.ID()] {
		s.release(s.Skybox, up)
		s.Skybox = nil
	}

	for id := range s.deletions {
		s.removeFromToolbox(id)
	}
	clear(s.deletions)
}

func (s *Scene) release(e *entity.Entity, up Uploader) {
	if e.Body != nil {
		s.physics.Remove(e.Body)
		e.Body = nil
	}
	e.ReleaseResources(s.textures, up)
	logger.Debug("entity removed", zap.String("entity", e.Name))
}

func (s *Scene) removeFromToolbox(id entity.ID) {
	for i, t := range s.Toolbox {
		if t.ID == id {
			s.Toolbox = append(s.Toolbox[:i], s.Toolbox[i+1:]...)
			return
		}
	}
}

// Close waits for running imports. GPU resources stay resident until
// Release, which the caller runs while the context is still current.
func (s *Scene) Close() {
	s.importer.Close()
}

// Release frees the GPU resources of every entity. Pending import results
// are dropped.
func (s *Scene) Release(up Uploader) {
	s.importer.Drain()
	for _, e := range s.All() {
		s.release(e, up)
	}
	for _, e := range s.orphans {
		s.release(e, up)
	}
	s.orphans = nil
}
