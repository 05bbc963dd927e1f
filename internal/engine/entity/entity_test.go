package entity

import (
	"image"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/animation"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/texture"
)

func TestIDsStrictlyIncreasing(t *testing.T) {
	var prev ID
	for i := 0; i < 100; i++ {
		e := New(KindObject, "box")
		if e.ID() <= prev {
			t.Fatalf("id %d not greater than previous %d", e.ID(), prev)
		}
		prev = e.ID()
	}
}

func TestIDsUniqueAcrossGoroutines(t *testing.T) {
	const workers, perWorker = 8, 250

	var (
		mu  sync.Mutex
		all []ID
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]ID, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, New(KindLight, "lamp").ID())
			}
			for i := 1; i < len(local); i++ {
				if local[i] <= local[i-1] {
					t.Errorf("ids not increasing within a goroutine: %d then %d", local[i-1], local[i])
				}
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	for i := 1; i < len(all); i++ {
		if all[i] == all[i-1] {
			t.Fatalf("duplicate id %d", all[i])
		}
	}
}

func TestModelMatrix(t *testing.T) {
	tests := []struct {
		name  string
		tr    Transformation
		point mgl32.Vec3
		want  mgl32.Vec3
	}{
		{
			name:  "identity",
			tr:    NewTransformation(),
			point: mgl32.Vec3{1, 2, 3},
			want:  mgl32.Vec3{1, 2, 3},
		},
		{
			name:  "translate",
			tr:    Transformation{Position: mgl32.Vec3{5, 0, -2}, Scale: mgl32.Vec3{1, 1, 1}},
			point: mgl32.Vec3{1, 1, 1},
			want:  mgl32.Vec3{6, 1, -1},
		},
		{
			name:  "scale then translate",
			tr:    Transformation{Position: mgl32.Vec3{0, 1, 0}, Scale: mgl32.Vec3{2, 3, 4}},
			point: mgl32.Vec3{1, 1, 1},
			want:  mgl32.Vec3{2, 4, 4},
		},
		{
			name:  "rotate 90 degrees about y",
			tr:    Transformation{Rotation: mgl32.Vec3{0, 90, 0}, Scale: mgl32.Vec3{1, 1, 1}},
			point: mgl32.Vec3{1, 0, 0},
			want:  mgl32.Vec3{0, 0, -1},
		},
		{
			name:  "rotation order is x then y then z on the right",
			tr:    Transformation{Rotation: mgl32.Vec3{90, 0, 90}, Scale: mgl32.Vec3{1, 1, 1}},
			point: mgl32.Vec3{1, 0, 0},
			// Rz(90) takes x to y, then Rx(90) takes y to z.
			want: mgl32.Vec3{0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mgl32.TransformCoordinate(tt.point, tt.tr.Model())
			if !near(got, tt.want) {
				t.Errorf("Model() * %v = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestModelIsRecomputed(t *testing.T) {
	tr := NewTransformation()
	first := tr.Model()
	tr.Position = mgl32.Vec3{1, 0, 0}
	if tr.Model() == first {
		t.Error("Model() did not reflect the new position")
	}
}

func TestCollisionFlagIsSticky(t *testing.T) {
	e := New(KindObject, "crate")
	e.SetColliding(true)
	e.SetColliding(false)
	if !e.Colliding() {
		t.Error("flag cleared by SetColliding(false)")
	}
	e.ResetCollision()
	if e.Colliding() {
		t.Error("ResetCollision did not clear the flag")
	}
}

func TestKindNames(t *testing.T) {
	for k := KindObject; k <= KindSkybox; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("camera"); ok {
		t.Error("unknown kind parsed")
	}
	if Kind(99).String() != "unknown" {
		t.Error("out of range kind should be unknown")
	}
}

func TestKindCapabilities(t *testing.T) {
	tests := []struct {
		kind      Kind
		instanced bool
		animated  bool
	}{
		{KindObject, false, false},
		{KindInstanced, true, false},
		{KindAnimated, false, true},
		{KindInstancedAnimated, true, true},
		{KindLight, false, false},
	}
	for _, tt := range tests {
		if tt.kind.Instanced() != tt.instanced || tt.kind.Animated() != tt.animated {
			t.Errorf("%v: instanced=%v animated=%v", tt.kind, tt.kind.Instanced(), tt.kind.Animated())
		}
	}
}

func TestNewDefaults(t *testing.T) {
	light := New(KindLight, "sun")
	if light.Light == nil || light.Geometry != geometry.Cube {
		t.Errorf("light defaults missing: %+v", light)
	}
	if light.IsLoaded() {
		t.Error("light should wait for its mesh upload")
	}

	audio := New(KindAudio, "wind")
	if audio.Sound == nil || !audio.IsLoaded() {
		t.Errorf("audio defaults wrong: %+v", audio)
	}
	if audio.Drawable() {
		t.Error("audio sources are never drawn")
	}
}

func TestWorldBounds(t *testing.T) {
	e := New(KindObject, "crate")
	e.Bounds = geometry.AABB{Min: mgl32.Vec3{-0.5, -0.5, -0.5}, Max: mgl32.Vec3{0.5, 0.5, 0.5}}
	e.Transform.Position = mgl32.Vec3{10, 0, 0}
	e.Transform.Scale = mgl32.Vec3{2, 2, 2}

	got := e.WorldBounds()
	if !near(got.Min, mgl32.Vec3{9, -1, -1}) || !near(got.Max, mgl32.Vec3{11, 1, 1}) {
		t.Errorf("WorldBounds = %+v", got)
	}
}

func TestInstanceModels(t *testing.T) {
	e := New(KindInstanced, "trees")
	for i := 0; i < 3; i++ {
		tr := NewTransformation()
		tr.Position = mgl32.Vec3{float32(i), 0, 0}
		e.Instances = append(e.Instances, tr)
	}

	models := e.InstanceModels()
	if len(models) != 3 {
		t.Fatalf("got %d models", len(models))
	}
	if x := models[2].Col(3).X(); x != 2 {
		t.Errorf("instance 2 x = %f", x)
	}
}

func TestActiveClip(t *testing.T) {
	e := New(KindAnimated, "dancer")
	if e.ActiveClip() != nil {
		t.Error("no clips should give nil")
	}
	clip := animation.New("spin", 1, 1, animation.NewNode("root"), nil, nil)
	e.Animations = []*animation.Animation{clip}
	if e.ActiveClip() != clip {
		t.Error("expected first clip")
	}
	e.ActiveAnimation = 4
	if e.ActiveClip() != nil {
		t.Error("out of range index should give nil")
	}
}

type fakeHandle struct{ released int }

func (h *fakeHandle) Release() { h.released++ }

type fakeTextures struct{ deleted []uint32 }

func (f *fakeTextures) UploadTexture(*texture.Image) (uint32, error) { return 7, nil }
func (f *fakeTextures) DeleteTexture(id uint32) { f.deleted = append(f.deleted, id) }

func TestReleaseResources(t *testing.T) {
	cache := texture.NewCache()
	up := &fakeTextures{}
	tex, _ := cache.Acquire(&texture.Image{Key: "wood.png", RGBA: image.NewRGBA(image.Rect(0, 0, 2, 2))}, up)

	h := &fakeHandle{}
	e := New(KindObject, "table")
	e.Meshes = []*geometry.Mesh{{GPU: h, IndexCount: 6, Textures: []*texture.Texture{tex}}}
	e.MarkLoaded()

	if !e.Drawable() {
		t.Fatal("loaded entity with meshes should be drawable")
	}

	e.ReleaseResources(cache, up)
	if h.released != 1 {
		t.Errorf("mesh released %d times", h.released)
	}
	if len(up.deleted) != 1 {
		t.Errorf("texture deletions = %v", up.deleted)
	}
	if e.IsLoaded() || e.Drawable() {
		t.Error("entity should be unloaded after release")
	}
}

// near reports whether a and b agree within 1e-5 on every axis.
func near(a, b mgl32.Vec3) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			return false
		}
	}
	return true
}
