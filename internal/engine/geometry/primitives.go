package geometry

import (
	"math"
)

// cubeFaces lists each face as normal, then the four corners counter-clockwise
// when viewed from outside.
var cubeFaces = [6]struct {
	normal  [3]float32
	corners [4][3]float32
}{
	{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
	{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
	{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
	{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
	{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// NewCube returns a unit cube centred on the origin with per-face normals.
func NewCube() *MeshData {
	md := &MeshData{
		Name:     "cube",
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, face := range cubeFaces {
		base := uint32(len(md.Vertices))
		for i, c := range face.corners {
			md.Vertices = append(md.Vertices, NewVertex(c, face.normal, quadUVs[i]))
		}
		md.Indices = append(md.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	md.ComputeBounds()
	return md
}

// NewTriangle returns a single triangle in the XY plane facing +Z.
func NewTriangle() *MeshData {
	n := [3]float32{0, 0, 1}
	md := &MeshData{
		Name: "triangle",
		Vertices: []Vertex{
			NewVertex([3]float32{-0.5, -0.5, 0}, n, [2]float32{0, 0}),
			NewVertex([3]float32{0.5, -0.5, 0}, n, [2]float32{1, 0}),
			NewVertex([3]float32{0, 0.5, 0}, n, [2]float32{0.5, 1}),
		},
		Indices: []uint32{0, 1, 2},
	}
	md.ComputeBounds()
	return md
}

// NewSphere returns a UV sphere of radius 0.5. sectors and stacks are clamped to
// the minimum that still produces a closed solid.
func NewSphere(sectors, stacks int) *MeshData {
	if sectors < 3 {
		sectors = 3
	}
	if stacks < 2 {
		stacks = 2
	}
	const radius = 0.5

	md := &MeshData{
		Name:     "sphere",
		Vertices: make([]Vertex, 0, (sectors+1)*(stacks+1)),
		Indices:  make([]uint32, 0, sectors*stacks*6),
	}

	for i := 0; i <= stacks; i++ {
		stackAngle := math.Pi/2 - float64(i)*math.Pi/float64(stacks)
		xy := math.Cos(stackAngle)
		z := math.Sin(stackAngle)

		for j := 0; j <= sectors; j++ {
			sectorAngle := float64(j) * 2 * math.Pi / float64(sectors)
			n := [3]float32{
				float32(xy * math.Cos(sectorAngle)),
				float32(xy * math.Sin(sectorAngle)),
				float32(z),
			}
			pos := [3]float32{n[0] * radius, n[1] * radius, n[2] * radius}
			uv := [2]float32{float32(j) / float32(sectors), float32(i) / float32(stacks)}
			md.Vertices = append(md.Vertices, NewVertex(pos, n, uv))
		}
	}

	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors+1)
		for j := 0; j < sectors; j++ {
			if i != 0 {
				md.Indices = append(md.Indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				md.Indices = append(md.Indices, k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}

	md.ComputeBounds()
	return md
}

// Primitive builds the procedural mesh for t. Custom has no procedural form.
func Primitive(t Type) (*MeshData, bool) {
	switch t {
	case Cube:
		return NewCube(), true
	case Triangle:
		return NewTriangle(), true
	case Sphere:
		return NewSphere(36, 18), true
	default:
		return nil, false
	}
}
