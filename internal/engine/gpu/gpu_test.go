package gpu

import (
	"testing"
	"unsafe"

	"github.com/Faultbox/stagecraft/internal/engine/geometry"
)

// The shaders read the vertex as 3+3+2 floats, 4 ints and 4 floats.
func TestVertexLayout(t *testing.T) {
	if vertexStride != 64 {
		t.Errorf("vertex stride = %d, want 64", vertexStride)
	}
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"normal", offsetNormal, 12},
		{"texcoord", offsetTexCoord, 24},
		{"bone ids", offsetBoneIDs, 32},
		{"weights", offsetWeights, 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("offset = %d, want %d", tt.got, tt.want)
			}
		})
	}
	if unsafe.Sizeof(geometry.Vertex{}.BoneIDs[0]) != 4 {
		t.Error("bone ids must be 32-bit for VertexAttribIPointer")
	}
}
