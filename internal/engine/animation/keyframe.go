package animation

import "github.com/go-gl/mathgl/mgl32"

// PositionKey is a translation sample at Time ticks.
type PositionKey struct {
	Time  float32
	Value mgl32.Vec3
}

// RotationKey is an orientation sample at Time ticks.
type RotationKey struct {
	Time  float32
	Value mgl32.Quat
}

// ScaleKey is a scale sample at Time ticks.
type ScaleKey struct {
	Time  float32
	Value mgl32.Vec3
}

// Bone is the keyframe track driving one node of the skeleton.
// Keys must be sorted by time.
type Bone struct {
	Name      string
	ID        int
	Positions []PositionKey
	Rotations []RotationKey
	Scales    []ScaleKey
}

// Local returns the interpolated translate * rotate * scale transform at t.
func (b *Bone) Local(t float32) mgl32.Mat4 {
	p := b.position(t)
	r := b.rotation(t)
	s := b.scale(t)
	return mgl32.Translate3D(p[0], p[1], p[2]).Mul4(r.Mat4()).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// span finds the keys surrounding t and the blend factor between them.
// prev == next means t is outside the keyed range and clamps to that key.
func span(n int, timeAt func(int) float32, t float32) (prev, next int, factor float32) {
	for i := 0; i < n; i++ {
		if timeAt(i) > t {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next {
		return prev, next, 0
	}

	t0, t1 := timeAt(prev), timeAt(next)
	if t1 == t0 {
		return prev, next, 0
	}
	return prev, next, (t - t0) / (t1 - t0)
}

func (b *Bone) position(t float32) mgl32.Vec3 {
	switch len(b.Positions) {
	case 0:
		return mgl32.Vec3{}
	case 1:
		return b.Positions[0].Value
	}
	prev, next, f := span(len(b.Positions), func(i int) float32 { return b.Positions[i].Time }, t)
	p0, p1 := b.Positions[prev].Value, b.Positions[next].Value
	return p0.Add(p1.Sub(p0).Mul(f))
}

func (b *Bone) rotation(t float32) mgl32.Quat {
	switch len(b.Rotations) {
	case 0:
		return mgl32.QuatIdent()
	case 1:
		return b.Rotations[0].Value.Normalize()
	}
	prev, next, f := span(len(b.Rotations), func(i int) float32 { return b.Rotations[i].Time }, t)
	if prev == next {
		return b.Rotations[prev].Value.Normalize()
	}
	return mgl32.QuatSlerp(b.Rotations[prev].Value, b.Rotations[next].Value, f).Normalize()
}

func (b *Bone) scale(t float32) mgl32.Vec3 {
	switch len(b.Scales) {
	case 0:
		return mgl32.Vec3{1, 1, 1}
	case 1:
		return b.Scales[0].Value
	}
	prev, next, f := span(len(b.Scales), func(i int) float32 { return b.Scales[i].Time }, t)
	s0, s1 := b.Scales[prev].Value, b.Scales[next].Value
	return s0.Add(s1.Sub(s0).Mul(f))
}
