// Package camera provides the editor's free-flying viewport camera.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/stagecraft/internal/engine/geometry"
)

// Direction is a keyboard movement request.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// Camera looks along its yaw and pitch from Position.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // Degrees, -90 looks down -Z
	Pitch    float32 // Degrees

	// Field of view in degrees, changed by the scroll wheel
	Zoom    float32
	MinZoom float32
	MaxZoom float32

	// Sensitivity
	Speed            float32 // Units per second
	MouseSensitivity float32 // Degrees per pixel
	MaxPitch         float32

	worldUp mgl32.Vec3
}

// New creates a camera at pos looking down -Z.
func New(pos mgl32.Vec3, speed, sensitivity float32) *Camera {
	return &Camera{
		Position:         pos,
		Yaw:              -90,
		Pitch:            0,
		Zoom:             45,
		MinZoom:          1,
		MaxZoom:          45,
		Speed:            speed,
		MouseSensitivity: sensitivity,
		MaxPitch:         89,
		worldUp:          mgl32.Vec3{0, 1, 0},
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Right returns the unit right vector.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(c.worldUp).Normalize()
}

// ViewMatrix returns the view matrix for this camera.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	front := c.Front()
	up := c.Right().Cross(front).Normalize()
	return mgl32.LookAtV(c.Position, c.Position.Add(front), up)
}

// Move translates the camera for dt seconds of keyboard movement.
func (c *Camera) Move(dir Direction, dt float32) {
	step := c.Speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front().Mul(step))
	case Backward:
		c.Position = c.Position.Sub(c.Front().Mul(step))
	case Left:
		c.Position = c.Position.Sub(c.Right().Mul(step))
	case Right:
		c.Position = c.Position.Add(c.Right().Mul(step))
	case Up:
		c.Position = c.Position.Add(c.worldUp.Mul(step))
	case Down:
		c.Position = c.Position.Sub(c.worldUp.Mul(step))
	}
}

// HandleDrag turns the camera by a mouse delta in pixels.
func (c *Camera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.MouseSensitivity
	c.Pitch -= deltaY * c.MouseSensitivity

	// Clamp pitch
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
	if c.Pitch < -c.MaxPitch {
		c.Pitch = -c.MaxPitch
	}
}

// HandleZoom narrows or widens the field of view.
func (c *Camera) HandleZoom(delta float32) {
	c.Zoom -= delta
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	if c.Zoom > c.MaxZoom {
		c.Zoom = c.MaxZoom
	}
}

// FitToBounds moves the camera back along its view direction until the box
// fits the view.
func (c *Camera) FitToBounds(b geometry.AABB) {
	if b.IsEmpty() {
		return
	}
	center := b.Min.Add(b.Max).Mul(0.5)
	radius := b.Max.Sub(b.Min).Len() / 2
	if radius < 1 {
		radius = 1
	}
	half := float64(mgl32.DegToRad(c.Zoom)) / 2
	distance := radius / float32(math.Sin(half))
	c.Position = center.Sub(c.Front().Mul(distance))
}
