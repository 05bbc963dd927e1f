// Package animation evaluates skeletal animation on the CPU.
//
// An Animation is built once at import time and shared read-only. Each
// animated entity owns an Engine holding its own time cursor and the final
// bone matrices uploaded to the skinning shader.
package animation

import "github.com/go-gl/mathgl/mgl32"

// MaxBones is the size of the bone matrix array in the skinning shaders.
const MaxBones = 100

// DefaultTicksPerSecond is used when a file does not specify a tick rate.
const DefaultTicksPerSecond = 25

// BoneInfo binds a skeleton node to a skinning slot.
type BoneInfo struct {
	ID     int
	Offset mgl32.Mat4 // Mesh space to bone space (inverse bind pose)
}

// Node is one element of the skeleton hierarchy as authored in the model.
type Node struct {
	Name      string
	Transform mgl32.Mat4 // Static local transform, used when no track animates the node
	Children  []*Node
}

// NewNode returns a node with an identity transform.
func NewNode(name string, children ...*Node) *Node {
	return &Node{Name: name, Transform: mgl32.Ident4(), Children: children}
}

// Animation is an immutable clip over a skeleton.
type Animation struct {
	Name           string
	Duration       float32 // In ticks
	TicksPerSecond float32
	Root           *Node

	bones    map[string]*Bone
	boneInfo map[string]BoneInfo
}

// New assembles a clip. boneInfo is copied; tracks naming a node that has no
// skinning slot are given fresh ids after the existing ones, so every track
// can still contribute a matrix.
func New(name string, duration, ticksPerSecond float32, root *Node, tracks []*Bone, boneInfo map[string]BoneInfo) *Animation {
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}

	a := &Animation{
		Name:           name,
		Duration:       duration,
		TicksPerSecond: ticksPerSecond,
		Root:           root,
		bones:          make(map[string]*Bone, len(tracks)),
		boneInfo:       make(map[string]BoneInfo, len(boneInfo)+len(tracks)),
	}
	for k, v := range boneInfo {
		a.boneInfo[k] = v
	}

	next := nextBoneID(a.boneInfo)
	for _, b := range tracks {
		info, ok := a.boneInfo[b.Name]
		if !ok {
			info = BoneInfo{ID: next, Offset: mgl32.Ident4()}
			a.boneInfo[b.Name] = info
			next++
		}
		b.ID = info.ID
		a.bones[b.Name] = b
	}

	return a
}

func nextBoneID(m map[string]BoneInfo) int {
	next := 0
	for _, info := range m {
		if info.ID >= next {
			next = info.ID + 1
		}
	}
	return next
}

// FindBone returns the track animating the named node, or nil.
func (a *Animation) FindBone(name string) *Bone {
	return a.bones[name]
}

// BoneInfo returns the skinning slot for the named node.
func (a *Animation) BoneInfo(name string) (BoneInfo, bool) {
	info, ok := a.boneInfo[name]
	return info, ok
}

// BoneCount returns the number of skinning slots known to the clip.
func (a *Animation) BoneCount() int {
	return len(a.boneInfo)
}
