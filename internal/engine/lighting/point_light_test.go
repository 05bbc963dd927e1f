package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
)

func TestCollect(t *testing.T) {
	var lights []*entity.Entity
	for i := 0; i < MaxPointLights+3; i++ {
		l := entity.New(entity.KindLight, "l")
		l.Transform.Position = mgl32.Vec3{float32(i), 0, 0}
		l.Light.Color = mgl32.Vec3{1, 0.5, 0}
		l.Light.Intensity = 2
		lights = append(lights, l)
	}
	lights[0].Render = false
	lights[1].Light.Color = mgl32.Vec3{3, -1, 0.5}

	b := NewPointLightBuffer()
	b.Collect(append(lights, entity.New(entity.KindObject, "not a light")))

	if len(b.Lights) != MaxPointLights {
		t.Fatalf("collected %d lights, want %d", len(b.Lights), MaxPointLights)
	}
	if got := b.Positions()[0]; got != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("hidden light was collected: first position %v", got)
	}

	tests := []struct {
		name  string
		index int
		want  mgl32.Vec3
	}{
		{"clamped then scaled", 0, mgl32.Vec3{2, 0, 1}},
		{"premultiplied", 1, mgl32.Vec3{2, 1, 0}},
	}
	colors := b.Colors()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if colors[tt.index] != tt.want {
				t.Errorf("color = %v, want %v", colors[tt.index], tt.want)
			}
		})
	}

	b.Collect(nil)
	if len(b.Lights) != 0 || len(b.Positions()) != 0 {
		t.Error("Collect did not reset the buffer")
	}
}
