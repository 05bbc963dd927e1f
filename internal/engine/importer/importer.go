// Package importer loads model files on background goroutines.
//
// Workers parse and decode into a Model that they own exclusively, then
// publish a Result on the completion queue. The render thread drains the
// queue once per frame and performs every GPU upload itself; no worker ever
// touches the GL context.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/stagecraft/internal/engine/animation"
	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/texture"
	"github.com/Faultbox/stagecraft/internal/logger"
)

// Import errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrNoMeshes          = errors.New("model contains no triangle meshes")
	ErrClosed            = errors.New("importer closed")
)

// Options control how a file is decoded.
type Options struct {
	FlipTextures bool // Reverse image rows for bottom-left texture origin
	Animated     bool // Read skins and animation clips
}

// Model is the decoded, CPU-side content of a model file.
type Model struct {
	Meshes     []*geometry.MeshData
	Images     []*texture.Image // Indexed by MeshData.Textures
	Root       *animation.Node
	BoneInfo   map[string]animation.BoneInfo
	Animations []*animation.Animation
}

// Loader decodes one model file. Implementations must not make GL calls.
type Loader interface {
	Load(path string, opts Options) (*Model, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string, opts Options) (*Model, error)

// Load calls f.
func (f LoaderFunc) Load(path string, opts Options) (*Model, error) {
	return f(path, opts)
}

// DefaultLoader picks a decoder by file extension.
func DefaultLoader() Loader {
	return LoaderFunc(loadByExtension)
}

func loadByExtension(path string, opts Options) (*Model, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTF(path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Result is the outcome of one import, delivered exactly once by Drain.
type Result struct {
	Target entity.ID
	Path   string
	Model  *Model
	Err    error
}

// Job tracks one in-flight import.
type Job struct {
	Target  entity.ID
	Path    string
	Started time.Time

	finished atomic.Bool
}

// Finished reports whether the worker has published its result.
func (j *Job) Finished() bool {
	return j.finished.Load()
}

// Importer runs imports and collects their results.
type Importer struct {
	loader Loader
	sem    *semaphore.Weighted
	wg     sync.WaitGroup

	mu     sync.Mutex
	jobs   []*Job
	done   []Result
	closed bool
}

// New creates an importer running at most workers decodes at once.
func New(loader Loader, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{
		loader: loader,
		sem:    semaphore.NewWeighted(int64(workers)),
	}
}

// Import starts decoding path for target and returns immediately.
func (im *Importer) Import(target entity.ID, path string, opts Options) *Job {
	return im.Run(target, path, func() (*Model, error) {
		return im.loader.Load(path, opts)
	})
}

// Run starts decode on a worker for content that does not come from the
// loader, such as the six faces of a skybox. label identifies the job in
// results and logs.
func (im *Importer) Run(target entity.ID, label string, decode func() (*Model, error)) *Job {
	job := &Job{Target: target, Path: label, Started: time.Now()}

	im.mu.Lock()
	if im.closed {
		im.done = append(im.done, Result{Target: target, Path: label, Err: ErrClosed})
		im.mu.Unlock()
		job.finished.Store(true)
		return job
	}
	im.jobs = append(im.jobs, job)
	im.wg.Add(1)
	im.mu.Unlock()

	logger.Debug("import started", zap.String("path", label), zap.Uint64("target", uint64(target)))

	go im.run(job, decode)
	return job
}

func (im *Importer) run(job *Job, decode func() (*Model, error)) {
	defer im.wg.Done()

	// Acquire only fails on a cancelled context.
	_ = im.sem.Acquire(context.Background(), 1)
	model, err := safeDecode(job.Path, decode)
	im.sem.Release(1)

	if err == nil && (model == nil || len(model.Meshes) == 0) {
		err = fmt.Errorf("%w: %s", ErrNoMeshes, job.Path)
	}
	if err != nil {
		model = nil
	}

	im.mu.Lock()
	for i, j := range im.jobs {
		if j == job {
			im.jobs = append(im.jobs[:i], im.jobs[i+1:]...)
			break
		}
	}
	im.done = append(im.done, Result{Target: job.Target, Path: job.Path, Model: model, Err: err})
	im.mu.Unlock()
	job.finished.Store(true)

	logger.Debug("import finished",
		zap.String("path", job.Path),
		zap.Duration("elapsed", time.Since(job.Started)),
		zap.Bool("ok", err == nil),
	)
}

// safeDecode shields the worker from decoder panics on malformed files.
func safeDecode(label string, decode func() (*Model, error)) (model *Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			model, err = nil, fmt.Errorf("decoding %s: panic: %v", label, r)
		}
	}()
	return decode()
}

// Resolve publishes an already decoded model, such as a procedural primitive,
// so it goes through the same render-thread merge as file imports.
func (im *Importer) Resolve(target entity.ID, model *Model) {
	im.mu.Lock()
	im.done = append(im.done, Result{Target: target, Model: model})
	im.mu.Unlock()
}

// Drain removes and returns every completed result. Each result is returned
// by exactly one call.
func (im *Importer) Drain() []Result {
	im.mu.Lock()
	defer im.mu.Unlock()

	if len(im.done) == 0 {
		return nil
	}
	out := im.done
	im.done = nil
	return out
}

// InFlight returns a snapshot of imports still decoding.
func (im *Importer) InFlight() []*Job {
	im.mu.Lock()
	defer im.mu.Unlock()

	out := make([]*Job, len(im.jobs))
	copy(out, im.jobs)
	return out
}

// Pending returns the number of imports not yet drained.
func (im *Importer) Pending() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return len(im.jobs) + len(im.done)
}

// Wait blocks until every worker has published its result.
func (im *Importer) Wait() {
	im.wg.Wait()
}

// Close rejects new imports and waits for running ones. Results already
// published remain available to Drain.
func (im *Importer) Close() {
	im.mu.Lock()
	im.closed = true
	im.mu.Unlock()
	im.wg.Wait()
}
