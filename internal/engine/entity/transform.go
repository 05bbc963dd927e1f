package entity

import "github.com/go-gl/mathgl/mgl32"

// Transformation is position, rotation (degrees, applied X then Y then Z) and scale.
type Transformation struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewTransformation returns a transform at the origin with unit scale.
func NewTransformation() Transformation {
	return Transformation{Scale: mgl32.Vec3{1, 1, 1}}
}

// Model builds translate * rotX * rotY * rotZ * scale from identity.
// It is recomputed for every draw and never cached.
func (t Transformation) Model() mgl32.Mat4 {
	m := mgl32.Ident4()
	m = m.Mul4(mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]))
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(t.Rotation[0])))
	m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(t.Rotation[1])))
	m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(t.Rotation[2])))
	return m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}
