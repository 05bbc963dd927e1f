// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/entity"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding keeps the wireframe off the surface it outlines.
const DefaultBBoxPadding = 0.01

// Box colors for the collision overlay.
var (
	ColorColliding = mgl32.Vec3{1, 0.2, 0.2}
	ColorFree      = mgl32.Vec3{0.2, 1, 0.3}
)

// Box is a world-space bounding box to outline.
type Box struct {
	Bounds geometry.AABB
	Color  mgl32.Vec3
}

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// Wireframe returns the line vertices of b expanded by padding on all sides.
func Wireframe(b geometry.AABB, padding float32) []float32 {
	if b.IsEmpty() {
		return nil
	}
	return GenerateBBoxWireframeVertices(
		b.Min[0]-padding, b.Min[1]-padding, b.Min[2]-padding,
		b.Max[0]+padding, b.Max[1]+padding, b.Max[2]+padding,
	)
}

// CollisionBoxes outlines each participant of the collision pass, colored by
// its collision flag.
func CollisionBoxes(participants []*entity.Entity) []Box {
	boxes := make([]Box, 0, len(participants))
	for _, e := range participants {
		b := e.WorldBounds()
		if b.IsEmpty() {
			continue
		}
		color := ColorFree
		if e.Colliding() {
			color = ColorColliding
		}
		boxes = append(boxes, Box{Bounds: b, Color: color})
	}
	return boxes
}
