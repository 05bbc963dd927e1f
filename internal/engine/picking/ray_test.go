package picking

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
)

var unitBox = geometry.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

func TestIntersectAABB(t *testing.T) {
	tests := []struct {
		name  string
		ray   Ray
		wantT float32
		hit   bool
	}{
		{"hit from outside", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}}, 4, true},
		{"start inside returns exit", Ray{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}}, 1, true},
		{"box behind", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}}, 0, false},
		{"parallel miss", Ray{mgl32.Vec3{0, 3, 5}, mgl32.Vec3{0, 0, -1}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(unitBox)
			if hit != tt.hit || got != tt.wantT {
				t.Errorf("IntersectAABB = (%f, %v), want (%f, %v)", got, hit, tt.wantT, tt.hit)
			}
		})
	}

	if _, hit := (Ray{Direction: mgl32.Vec3{0, 0, -1}}).IntersectAABB(geometry.EmptyAABB()); hit {
		t.Error("empty box was hit")
	}
}

func TestScreenToRayCentre(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	r := ScreenToRay(50, 50, 100, 100, proj.Mul4(view).Inv())

	if !near(r.Direction, mgl32.Vec3{0, 0, -1}) {
		t.Errorf("direction = %v, want straight ahead", r.Direction)
	}
	if r.Origin.Z() > 5 || r.Origin.Z() < 4.8 {
		t.Errorf("origin = %v, want on the near plane", r.Origin)
	}
}

func TestPickNearest(t *testing.T) {
	newBox := func(name string, z float32) *entity.Entity {
		e := entity.New(entity.KindObject, name)
		e.Bounds = unitBox
		e.Transform.Position = mgl32.Vec3{0, 0, z}
		e.MarkLoaded()
		return e
	}
	far := newBox("far", -10)
	near := newBox("near", 0)
	hidden := newBox("hidden", 2)
	hidden.Render = false
	sky := entity.New(entity.KindSkybox, "sky")
	sky.Bounds = geometry.AABB{Min: mgl32.Vec3{-100, -100, -100}, Max: mgl32.Vec3{100, 100, 100}}
	sky.MarkLoaded()

	r := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	if got := Pick(r, []*entity.Entity{sky, far, hidden, near}); got != near {
		t.Errorf("picked %v, want near", got)
	}

	r.Origin = mgl32.Vec3{10, 0, 5}
	if got := Pick(r, []*entity.Entity{sky, far, near}); got != nil {
		t.Errorf("picked %s on a miss", got.Name)
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
