package importer

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/stagecraft/internal/engine/animation"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
)

func oneMesh() *Model {
	return &Model{Meshes: []*geometry.MeshData{geometry.NewTriangle()}}
}

func TestImportDeliversResultOnce(t *testing.T) {
	release := make(chan struct{})
	im := New(LoaderFunc(func(path string, opts Options) (*Model, error) {
		<-release
		return oneMesh(), nil
	}), 2)

	job := im.Import(7, "a.gltf", Options{})
	if job.Finished() {
		t.Fatal("job finished before loader returned")
	}
	if got := len(im.InFlight()); got != 1 {
		t.Fatalf("InFlight() = %d, want 1", got)
	}
	if r := im.Drain(); r != nil {
		t.Fatalf("Drain() before completion = %v, want nil", r)
	}

	close(release)
	im.Wait()

	if !job.Finished() {
		t.Error("job not finished after Wait")
	}
	if got := len(im.InFlight()); got != 0 {
		t.Errorf("InFlight() after Wait = %d, want 0", got)
	}

	results := im.Drain()
	if len(results) != 1 {
		t.Fatalf("Drain() returned %d results, want 1", len(results))
	}
	r := results[0]
	if r.Target != 7 || r.Path != "a.gltf" || r.Err != nil || r.Model == nil {
		t.Errorf("unexpected result %+v", r)
	}
	if again := im.Drain(); again != nil {
		t.Errorf("second Drain() = %v, want nil", again)
	}
	if im.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", im.Pending())
	}
}

func TestImportBoundsConcurrency(t *testing.T) {
	const workers = 2
	var running, peak atomic.Int32
	var mu sync.Mutex
	seen := make(map[string]bool)

	im := New(LoaderFunc(func(path string, opts Options) (*Model, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		mu.Lock()
		seen[path] = true
		mu.Unlock()
		running.Add(-1)
		return oneMesh(), nil
	}), workers)

	for i := 0; i < 12; i++ {
		im.Import(1, fmt.Sprintf("m%d.gltf", i), Options{})
	}
	im.Wait()

	if p := peak.Load(); p > workers {
		t.Errorf("peak concurrency %d exceeds %d workers", p, workers)
	}
	if got := len(im.Drain()); got != 12 {
		t.Errorf("Drain() returned %d results, want 12", got)
	}
	if len(seen) != 12 {
		t.Errorf("loader saw %d paths, want 12", len(seen))
	}
}

func TestImportFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		loader LoaderFunc
		want   error
	}{
		{
			name:   "loader error",
			loader: func(string, Options) (*Model, error) { return nil, boom },
			want:   boom,
		},
		{
			name:   "no meshes",
			loader: func(string, Options) (*Model, error) { return &Model{}, nil },
			want:   ErrNoMeshes,
		},
		{
			name:   "panic",
			loader: func(string, Options) (*Model, error) { panic("corrupt accessor") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := New(tt.loader, 1)
			im.Import(3, "bad.gltf", Options{})
			im.Wait()

			results := im.Drain()
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			r := results[0]
			if r.Err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(r.Err, tt.want) {
				t.Errorf("error = %v, want %v", r.Err, tt.want)
			}
			if r.Model != nil {
				t.Error("failed import should carry no model")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	im := New(DefaultLoader(), 1)
	m := oneMesh()
	im.Resolve(9, m)

	results := im.Drain()
	if len(results) != 1 || results[0].Target != 9 || results[0].Model != m {
		t.Fatalf("Drain() = %+v", results)
	}
}

func TestCloseRejectsNewImports(t *testing.T) {
	im := New(LoaderFunc(func(string, Options) (*Model, error) { return oneMesh(), nil }), 1)
	im.Import(1, "first.gltf", Options{})
	im.Close()

	job := im.Import(2, "late.gltf", Options{})
	if !job.Finished() {
		t.Error("rejected job should be finished")
	}

	results := im.Drain()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		switch r.Target {
		case 1:
			if r.Err != nil {
				t.Errorf("first import failed: %v", r.Err)
			}
		case 2:
			if !errors.Is(r.Err, ErrClosed) {
				t.Errorf("late import error = %v, want ErrClosed", r.Err)
			}
		}
	}
}

func TestDefaultLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join("testdata", "nope.gltf"), os.ErrNotExist},
		{"unknown extension", filepath.Join("testdata", "notes.txt"), ErrUnsupportedFormat},
		{"malformed gltf", filepath.Join("testdata", "broken.gltf"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultLoader().Load(tt.path, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func approx(a, b mgl32.Vec3) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-4 {
			return false
		}
	}
	return true
}

func TestLoadGLTFStatic(t *testing.T) {
	path := filepath.Join("testdata", "triangle.gltf")
	m, err := LoadGLTF(path, Options{})
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}

	if len(m.Meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(m.Meshes))
	}
	mesh := m.Meshes[0]
	if len(mesh.Vertices) != 3 || len(mesh.Indices) != 3 {
		t.Fatalf("got %d vertices / %d indices", len(mesh.Vertices), len(mesh.Indices))
	}

	// Node translation is baked into static meshes.
	if !approx(mesh.Bounds.Min, mgl32.Vec3{2, 0, 0}) || !approx(mesh.Bounds.Max, mgl32.Vec3{3, 1, 0}) {
		t.Errorf("bounds = %v..%v, want (2,0,0)..(3,1,0)", mesh.Bounds.Min, mesh.Bounds.Max)
	}
	// No normals in the file, so they come from the face.
	if n := mgl32.Vec3(mesh.Vertices[0].Normal); !approx(n, mgl32.Vec3{0, 0, 1}) {
		t.Errorf("normal = %v, want +Z", n)
	}
	if mesh.Vertices[0].BoneIDs[0] != -1 {
		t.Error("static mesh should carry no bone influences")
	}

	if len(mesh.Textures) != 1 || len(m.Images) != 1 {
		t.Fatalf("textures %v, images %d", mesh.Textures, len(m.Images))
	}
	img := m.Images[mesh.Textures[0]]
	if img.Width() != 2 || img.Height() != 2 {
		t.Errorf("image size %dx%d, want 2x2", img.Width(), img.Height())
	}
	if r := img.RGBA.RGBAAt(0, 0); r.R != 255 || r.B != 0 {
		t.Errorf("top-left pixel = %v, want red", r)
	}
	if m.Root != nil || len(m.Animations) != 0 {
		t.Error("skeleton read without Animated option")
	}
}

func TestLoadGLTFFlipTextures(t *testing.T) {
	m, err := LoadGLTF(filepath.Join("testdata", "triangle.gltf"), Options{FlipTextures: true})
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if r := m.Images[0].RGBA.RGBAAt(0, 0); r.B != 255 || r.R != 0 {
		t.Errorf("top-left pixel after flip = %v, want blue", r)
	}
}

func TestLoadGLTFSkinned(t *testing.T) {
	m, err := LoadGLTF(filepath.Join("testdata", "skinned.gltf"), Options{Animated: true})
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}

	if len(m.Meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(m.Meshes))
	}
	v := m.Meshes[0].Vertices[2]
	if v.BoneIDs[0] != 1 || v.Weights[0] != 1 || v.BoneIDs[1] != -1 {
		t.Errorf("vertex 2 influences = %v %v", v.BoneIDs, v.Weights)
	}

	for name, id := range map[string]int{"Hip": 0, "Knee": 1} {
		info, ok := m.BoneInfo[name]
		if !ok || info.ID != id {
			t.Errorf("BoneInfo[%s] = %+v, %v; want id %d", name, info, ok, id)
		}
	}

	// Two scene roots are gathered under a synthetic root.
	if m.Root == nil || m.Root.Name != "root" || len(m.Root.Children) != 2 {
		t.Fatalf("unexpected skeleton root %+v", m.Root)
	}

	if len(m.Animations) != 1 {
		t.Fatalf("got %d animations, want 1", len(m.Animations))
	}
	clip := m.Animations[0]
	if clip.Name != "Bend" || clip.Duration != 2 || clip.TicksPerSecond != 1 {
		t.Errorf("clip = %s %f %f", clip.Name, clip.Duration, clip.TicksPerSecond)
	}

	e := animation.NewEngine(clip)
	e.UpdateAnimation(1)
	e.BuildAnimationMatrices()
	final := e.FinalBoneMatrices()

	// Knee moves from y=1 to y=3 over two seconds; halfway its bind offset of
	// -1 leaves a net lift of one unit.
	if got := final[1].Col(3).Vec3(); !approx(got, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("knee matrix translation = %v, want (0,1,0)", got)
	}
	if got := final[0]; !approx(got.Col(3).Vec3(), mgl32.Vec3{}) || !approx(got.Col(0).Vec3(), mgl32.Vec3{1, 0, 0}) {
		t.Errorf("hip matrix = %v, want identity", got)
	}
	if math.IsNaN(float64(final[1][0])) {
		t.Error("NaN in bone matrix")
	}
}

func TestLoadGLTFRotationOnlyKeepsRestPose(t *testing.T) {
	doc, err := gltf.Open(filepath.Join("testdata", "skinned.gltf"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// Drive the knee with a still rotation channel instead of translation.
	times := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 2})
	turns := modeler.WriteAccessor(doc, gltf.TargetNone, [][4]float32{{0, 0, 0, 1}, {0, 0, 0, 1}})
	doc.Buffers[0].EmbeddedResource()
	clip := doc.Animations[0]
	clip.Samplers[0].Input, clip.Samplers[0].Output = times, turns
	clip.Channels[0].Target.Path = gltf.TRSRotation

	path := filepath.Join(t.TempDir(), "turn.gltf")
	if err := gltf.Save(doc, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m, err := LoadGLTF(path, Options{Animated: true})
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	knee := m.Animations[0].FindBone("Knee")
	if knee == nil {
		t.Fatal("no track for Knee")
	}
	if got := knee.Local(1).Col(3).Vec3(); !approx(got, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("knee local translation = %v, want rest (0,1,0)", got)
	}

	// At rest the bind offset cancels the knee's pose.
	e := animation.NewEngine(m.Animations[0])
	e.UpdateAnimation(1)
	e.BuildAnimationMatrices()
	if got := e.FinalBoneMatrices()[1].Col(3).Vec3(); !approx(got, mgl32.Vec3{}) {
		t.Errorf("knee matrix translation = %v, want origin", got)
	}
}
