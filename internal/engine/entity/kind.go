package entity

// Kind selects which optional components an entity carries and which
// scene collection owns it.
type Kind int

const (
	KindObject Kind = iota
	KindInstanced
	KindAnimated
	KindInstancedAnimated
	KindLight
	KindAudio
	KindSkybox
)

var kindNames = [...]string{
	KindObject:            "object",
	KindInstanced:         "instanced",
	KindAnimated:          "animated",
	KindInstancedAnimated: "instanced_animated",
	KindLight:             "light",
	KindAudio:             "audio",
	KindSkybox:            "skybox",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind converts a serialized kind name back into a Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindObject, false
}

// Instanced reports whether the kind draws many copies of one mesh.
func (k Kind) Instanced() bool {
	return k == KindInstanced || k == KindInstancedAnimated
}

// Animated reports whether the kind carries an animation engine.
func (k Kind) Animated() bool {
	return k == KindAnimated || k == KindInstancedAnimated
}

// HasGeometry reports whether the kind owns meshes.
func (k Kind) HasGeometry() bool {
	return k != KindAudio
}
