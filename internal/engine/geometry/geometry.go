// Package geometry holds CPU-side mesh data, procedural primitives and
// bounding volumes. Nothing here touches the GPU.
package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/texture"
)

// MaxBoneInfluence is the number of bones that may weight a single vertex.
const MaxBoneInfluence = 4

// Type identifies how an object's geometry was produced.
type Type int

const (
	Custom Type = iota // Imported from a model file
	Cube
	Triangle
	Sphere
)

var typeNames = map[Type]string{
	Custom:   "custom",
	Cube:     "cube",
	Triangle: "triangle",
	Sphere:   "sphere",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseType converts a serialized geometry name back into a Type.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return Custom, false
}

// Vertex is the interleaved vertex layout shared by every mesh shader.
// Bone ids of -1 mark unused influence slots.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	BoneIDs  [MaxBoneInfluence]int32
	Weights  [MaxBoneInfluence]float32
}

// NewVertex returns a vertex with every bone slot unused.
func NewVertex(pos, normal [3]float32, uv [2]float32) Vertex {
	return Vertex{
		Position: pos,
		Normal:   normal,
		TexCoord: uv,
		BoneIDs:  [MaxBoneInfluence]int32{-1, -1, -1, -1},
	}
}

// SetBone stores a bone influence in the first free slot.
// Influences beyond MaxBoneInfluence are dropped.
func (v *Vertex) SetBone(id int32, weight float32) {
	for i := range v.BoneIDs {
		if v.BoneIDs[i] < 0 {
			v.BoneIDs[i] = id
			v.Weights[i] = weight
			return
		}
	}
}

// MeshData is an indexed triangle list waiting for upload.
// Textures index into the owning model's decoded image list.
type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Textures []int
	Bounds   AABB
}

// Handle is a GPU-resident mesh created by the renderer.
type Handle interface {
	Release()
}

// Mesh is an uploaded mesh. Buffers are immutable after upload; textures are
// shared with every other mesh that uses the same image.
type Mesh struct {
	Name       string
	GPU        Handle
	IndexCount int32
	Textures   []*texture.Texture
	Bounds     AABB
}

// ComputeBounds recalculates md.Bounds from the vertex positions.
func (md *MeshData) ComputeBounds() {
	md.Bounds = EmptyAABB()
	for i := range md.Vertices {
		md.Bounds.Extend(mgl32.Vec3(md.Vertices[i].Position))
	}
}

// SmoothNormals averages normals of vertices sharing a position.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum mgl32.Vec3
		for _, idx := range idxs {
			sum = sum.Add(mgl32.Vec3(vertices[idx].Normal))
		}
		if sum.Len() == 0 {
			continue
		}
		avg := sum.Normalize()

		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}
