package importer

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/stagecraft/internal/engine/animation"
	"github.com/Faultbox/stagecraft/internal/engine/geometry"
	"github.com/Faultbox/stagecraft/internal/engine/texture"
)

// glTF stores key times in seconds.
const gltfTicksPerSecond = 1

// LoadGLTF decodes a .gltf or .glb file.
//
// Static meshes are baked into model space using their node transforms.
// Skinned meshes stay in bind space and are posed by the animation engine.
func LoadGLTF(path string, opts Options) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	g := &gltfReader{
		doc:      doc,
		path:     path,
		dir:      filepath.Dir(path),
		opts:     opts,
		images:   make(map[int]int),
		names:    make([]string, len(doc.Nodes)),
		boneInfo: make(map[string]animation.BoneInfo),
		skin:     -1,
	}
	g.assignNames()

	model := &Model{}
	for _, root := range g.sceneRoots() {
		if err := g.walk(root, mgl32.Ident4(), model); err != nil {
			return nil, err
		}
	}
	model.Images = g.decoded

	if opts.Animated {
		model.Root = g.skeleton()
		model.BoneInfo = g.boneInfo
		for i, a := range doc.Animations {
			clip, err := g.animation(i, a, model.Root)
			if err != nil {
				return nil, err
			}
			model.Animations = append(model.Animations, clip)
		}
	}
	return model, nil
}

type gltfReader struct {
	doc  *gltf.Document
	path string
	dir  string
	opts Options

	images  map[int]int // glTF image index -> Model.Images index
	decoded []*texture.Image

	names    []string
	boneInfo map[string]animation.BoneInfo
	skin     int
}

// index normalizes the index fields of the glTF document, which are plain
// or optional depending on the property.
func index(v any) (int, bool) {
	switch i := v.(type) {
	case int:
		return i, true
	case *int:
		if i == nil {
			return 0, false
		}
		return *i, true
	case uint32:
		return int(i), true
	case *uint32:
		if i == nil {
			return 0, false
		}
		return int(*i), true
	}
	return 0, false
}

func (g *gltfReader) assignNames() {
	seen := make(map[string]bool, len(g.doc.Nodes))
	for i, n := range g.doc.Nodes {
		name := n.Name
		if name == "" || seen[name] {
			name = fmt.Sprintf("node_%d", i)
		}
		seen[name] = true
		g.names[i] = name
	}
}

func (g *gltfReader) sceneRoots() []int {
	scene := 0
	if s, ok := index(g.doc.Scene); ok {
		scene = s
	}
	if scene < len(g.doc.Scenes) {
		roots := make([]int, 0, len(g.doc.Scenes[scene].Nodes))
		for _, n := range g.doc.Scenes[scene].Nodes {
			if i, ok := index(n); ok {
				roots = append(roots, i)
			}
		}
		return roots
	}

	// No scene: every node that is nobody's child is a root.
	child := make([]bool, len(g.doc.Nodes))
	for _, n := range g.doc.Nodes {
		for _, c := range n.Children {
			if i, ok := index(c); ok && i < len(child) {
				child[i] = true
			}
		}
	}
	var roots []int
	for i := range g.doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func localMatrix(n *gltf.Node) mgl32.Mat4 {
	var m mgl32.Mat4
	for i, v := range n.Matrix {
		m[i] = float32(v)
	}
	if m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		return m
	}

	t := mgl32.Translate3D(float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2]))
	r := mgl32.QuatIdent()
	if n.Rotation != [4]float64{} {
		r = mgl32.Quat{
			W: float32(n.Rotation[3]),
			V: mgl32.Vec3{float32(n.Rotation[0]), float32(n.Rotation[1]), float32(n.Rotation[2])},
		}.Normalize()
	}
	s := mgl32.Scale3D(1, 1, 1)
	if n.Scale != [3]float64{} {
		s = mgl32.Scale3D(float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2]))
	}
	return t.Mul4(r.Mat4()).Mul4(s)
}

// restPose splits a node's local transform into translation, rotation and
// scale.
func restPose(n *gltf.Node) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	m := localMatrix(n)
	scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	rot := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		if scale[c] != 0 {
			rot.SetCol(c, m.Col(c).Vec3().Mul(1/scale[c]).Vec4(0))
		}
	}
	return m.Col(3).Vec3(), mgl32.Mat4ToQuat(rot).Normalize(), scale
}

func (g *gltfReader) walk(node int, parent mgl32.Mat4, model *Model) error {
	if node < 0 || node >= len(g.doc.Nodes) {
		return fmt.Errorf("parsing %s: node %d out of range", g.path, node)
	}
	n := g.doc.Nodes[node]
	global := parent.Mul4(localMatrix(n))

	if mi, ok := index(n.Mesh); ok && mi < len(g.doc.Meshes) {
		skin, skinned := index(n.Skin)
		skinned = skinned && g.opts.Animated
		if skinned {
			if err := g.readSkin(skin); err != nil {
				return err
			}
		}
		for p, prim := range g.doc.Meshes[mi].Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			name := g.doc.Meshes[mi].Name
			if name == "" {
				name = g.names[node]
			}
			data, err := g.primitive(fmt.Sprintf("%s_%d", name, p), prim, skinned)
			if err != nil {
				return err
			}
			if !skinned {
				bake(data, global)
			}
			data.ComputeBounds()
			model.Meshes = append(model.Meshes, data)
		}
	}

	for _, c := range n.Children {
		if ci, ok := index(c); ok {
			if err := g.walk(ci, global, model); err != nil {
				return err
			}
		}
	}
	return nil
}

func bake(data *geometry.MeshData, m mgl32.Mat4) {
	if m == mgl32.Ident4() {
		return
	}
	normal := m.Mat3().Inv().Transpose()
	for i := range data.Vertices {
		v := &data.Vertices[i]
		p := m.Mul4x1(mgl32.Vec3(v.Position).Vec4(1)).Vec3()
		v.Position = [3]float32(p)
		nrm := normal.Mul3x1(mgl32.Vec3(v.Normal))
		if nrm.Len() > 0 {
			nrm = nrm.Normalize()
		}
		v.Normal = [3]float32(nrm)
	}
}

func (g *gltfReader) accessor(attr map[string]int, name string) (*gltf.Accessor, bool) {
	i, ok := attr[name]
	if !ok || i < 0 || i >= len(g.doc.Accessors) {
		return nil, false
	}
	return g.doc.Accessors[i], true
}

func (g *gltfReader) primitive(name string, prim *gltf.Primitive, skinned bool) (*geometry.MeshData, error) {
	attr := make(map[string]int, len(prim.Attributes))
	for k, v := range prim.Attributes {
		if i, ok := index(v); ok {
			attr[k] = i
		}
	}

	posAcc, ok := g.accessor(attr, "POSITION")
	if !ok {
		return nil, fmt.Errorf("parsing %s: primitive %s has no positions", g.path, name)
	}
	positions, err := modeler.ReadPosition(g.doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions of %s: %w", name, err)
	}

	var normals [][3]float32
	if acc, ok := g.accessor(attr, "NORMAL"); ok {
		if normals, err = modeler.ReadNormal(g.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("reading normals of %s: %w", name, err)
		}
	}
	var uvs [][2]float32
	if acc, ok := g.accessor(attr, "TEXCOORD_0"); ok {
		if uvs, err = modeler.ReadTextureCoord(g.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("reading texture coordinates of %s: %w", name, err)
		}
	}
	var joints [][4]uint16
	var weights [][4]float32
	if skinned {
		if acc, ok := g.accessor(attr, "JOINTS_0"); ok {
			if joints, err = modeler.ReadJoints(g.doc, acc, nil); err != nil {
				return nil, fmt.Errorf("reading joints of %s: %w", name, err)
			}
		}
		if acc, ok := g.accessor(attr, "WEIGHTS_0"); ok {
			if weights, err = modeler.ReadWeights(g.doc, acc, nil); err != nil {
				return nil, fmt.Errorf("reading weights of %s: %w", name, err)
			}
		}
	}

	data := &geometry.MeshData{Name: name, Vertices: make([]geometry.Vertex, len(positions))}
	for i, p := range positions {
		var n [3]float32
		var uv [2]float32
		if i < len(normals) {
			n = normals[i]
		}
		if i < len(uvs) {
			uv = uvs[i]
		}
		v := geometry.NewVertex(p, n, uv)
		if i < len(joints) && i < len(weights) {
			for k := 0; k < geometry.MaxBoneInfluence; k++ {
				if weights[i][k] > 0 {
					v.SetBone(int32(joints[i][k]), weights[i][k])
				}
			}
		}
		data.Vertices[i] = v
	}

	if ii, ok := index(prim.Indices); ok && ii < len(g.doc.Accessors) {
		if data.Indices, err = modeler.ReadIndices(g.doc, g.doc.Accessors[ii], nil); err != nil {
			return nil, fmt.Errorf("reading indices of %s: %w", name, err)
		}
	} else {
		data.Indices = make([]uint32, len(positions))
		for i := range data.Indices {
			data.Indices[i] = uint32(i)
		}
	}
	if len(normals) == 0 {
		faceNormals(data)
	}

	if img, ok := g.baseColorImage(prim); ok {
		slot, err := g.image(img)
		if err != nil {
			return nil, err
		}
		data.Textures = []int{slot}
	}
	return data, nil
}

// faceNormals accumulates area-weighted triangle normals per vertex.
func faceNormals(data *geometry.MeshData) {
	acc := make([]mgl32.Vec3, len(data.Vertices))
	for i := 0; i+2 < len(data.Indices); i += 3 {
		a, b, c := data.Indices[i], data.Indices[i+1], data.Indices[i+2]
		if int(a) >= len(acc) || int(b) >= len(acc) || int(c) >= len(acc) {
			continue
		}
		pa := mgl32.Vec3(data.Vertices[a].Position)
		n := mgl32.Vec3(data.Vertices[b].Position).Sub(pa).Cross(mgl32.Vec3(data.Vertices[c].Position).Sub(pa))
		acc[a], acc[b], acc[c] = acc[a].Add(n), acc[b].Add(n), acc[c].Add(n)
	}
	for i, n := range acc {
		if n.Len() > 0 {
			data.Vertices[i].Normal = [3]float32(n.Normalize())
		}
	}
}

func (g *gltfReader) baseColorImage(prim *gltf.Primitive) (int, bool) {
	mi, ok := index(prim.Material)
	if !ok || mi >= len(g.doc.Materials) {
		return 0, false
	}
	pbr := g.doc.Materials[mi].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return 0, false
	}
	ti, ok := index(pbr.BaseColorTexture.Index)
	if !ok || ti >= len(g.doc.Textures) {
		return 0, false
	}
	src, ok := index(g.doc.Textures[ti].Source)
	if !ok || src >= len(g.doc.Images) {
		return 0, false
	}
	return src, true
}

// image decodes a glTF image once per file and returns its Model.Images slot.
func (g *gltfReader) image(i int) (int, error) {
	if slot, ok := g.images[i]; ok {
		return slot, nil
	}
	gi := g.doc.Images[i]

	var img *texture.Image
	var err error
	switch {
	case strings.HasPrefix(gi.URI, "data:"):
		var data []byte
		if data, err = decodeDataURI(gi.URI); err == nil {
			img, err = texture.DecodeBytes(data, fmt.Sprintf("%s#image%d", g.path, i), g.opts.FlipTextures)
		}
	case gi.URI != "":
		img, err = texture.DecodeFile(filepath.Join(g.dir, filepath.FromSlash(gi.URI)), g.opts.FlipTextures)
	default:
		var data []byte
		if data, err = g.bufferView(gi.BufferView); err == nil {
			img, err = texture.DecodeBytes(data, fmt.Sprintf("%s#image%d", g.path, i), g.opts.FlipTextures)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("loading image %d of %s: %w", i, g.path, err)
	}

	slot := len(g.decoded)
	g.decoded = append(g.decoded, img)
	g.images[i] = slot
	return slot, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 || !strings.HasSuffix(uri[:comma], ";base64") {
		return nil, fmt.Errorf("unsupported data URI")
	}
	return base64.StdEncoding.DecodeString(uri[comma+1:])
}

func (g *gltfReader) bufferView(ref any) ([]byte, error) {
	bi, ok := index(ref)
	if !ok || bi >= len(g.doc.BufferViews) {
		return nil, fmt.Errorf("image has neither URI nor buffer view")
	}
	bv := g.doc.BufferViews[bi]
	buf, _ := index(bv.Buffer)
	off, _ := index(bv.ByteOffset)
	n, _ := index(bv.ByteLength)
	if buf >= len(g.doc.Buffers) || off+n > len(g.doc.Buffers[buf].Data) {
		return nil, fmt.Errorf("buffer view %d out of range", bi)
	}
	return g.doc.Buffers[buf].Data[off : off+n], nil
}

// readSkin registers the joints of the first skin as bones. Joint order is
// the bone id, matching the JOINTS_0 vertex attribute.
func (g *gltfReader) readSkin(si int) error {
	if g.skin >= 0 || si >= len(g.doc.Skins) {
		return nil
	}
	g.skin = si
	skin := g.doc.Skins[si]

	var ibm [][4][4]float32
	if ai, ok := index(skin.InverseBindMatrices); ok && ai < len(g.doc.Accessors) {
		raw, err := modeler.ReadAccessor(g.doc, g.doc.Accessors[ai], nil)
		if err != nil {
			return fmt.Errorf("reading inverse bind matrices of %s: %w", g.path, err)
		}
		ibm, _ = raw.([][4][4]float32)
	}

	for id, j := range skin.Joints {
		node, ok := index(j)
		if !ok || node >= len(g.names) {
			continue
		}
		offset := mgl32.Ident4()
		if id < len(ibm) {
			for c := 0; c < 4; c++ {
				for r := 0; r < 4; r++ {
					offset[c*4+r] = ibm[id][r][c]
				}
			}
		}
		g.boneInfo[g.names[node]] = animation.BoneInfo{ID: id, Offset: offset}
	}
	return nil
}

// skeleton mirrors the node hierarchy. Several scene roots are gathered
// under a synthetic identity root.
func (g *gltfReader) skeleton() *animation.Node {
	var build func(i int) *animation.Node
	build = func(i int) *animation.Node {
		n := g.doc.Nodes[i]
		out := animation.NewNode(g.names[i])
		out.Transform = localMatrix(n)
		for _, c := range n.Children {
			if ci, ok := index(c); ok && ci < len(g.doc.Nodes) {
				out.Children = append(out.Children, build(ci))
			}
		}
		return out
	}

	roots := g.sceneRoots()
	if len(roots) == 1 {
		return build(roots[0])
	}
	root := animation.NewNode("root")
	for _, r := range roots {
		if r < len(g.doc.Nodes) {
			root.Children = append(root.Children, build(r))
		}
	}
	return root
}

func (g *gltfReader) animation(ai int, a *gltf.Animation, root *animation.Node) (*animation.Animation, error) {
	tracks := make(map[string]*animation.Bone)
	targets := make(map[string]int)
	var duration float32

	for _, ch := range a.Channels {
		node, ok := index(ch.Target.Node)
		if !ok || node >= len(g.names) {
			continue
		}
		si, ok := index(ch.Sampler)
		if !ok || si >= len(a.Samplers) {
			continue
		}
		s := a.Samplers[si]
		in, okIn := index(s.Input)
		out, okOut := index(s.Output)
		if !okIn || !okOut || in >= len(g.doc.Accessors) || out >= len(g.doc.Accessors) {
			continue
		}

		rawTimes, err := modeler.ReadAccessor(g.doc, g.doc.Accessors[in], nil)
		if err != nil {
			return nil, fmt.Errorf("reading animation %d of %s: %w", ai, g.path, err)
		}
		times, _ := rawTimes.([]float32)
		if len(times) == 0 {
			continue
		}
		rawValues, err := modeler.ReadAccessor(g.doc, g.doc.Accessors[out], nil)
		if err != nil {
			return nil, fmt.Errorf("reading animation %d of %s: %w", ai, g.path, err)
		}

		name := g.names[node]
		bone, ok := tracks[name]
		if !ok {
			bone = &animation.Bone{Name: name}
			tracks[name] = bone
			targets[name] = node
		}

		// Cubic spline samplers store in-tangent, value and out-tangent per key.
		stride, mid := 1, 0
		if s.Interpolation == gltf.InterpolationCubicSpline {
			stride, mid = 3, 1
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation:
			values, _ := rawValues.([][3]float32)
			for k, t := range times {
				if v := k*stride + mid; v < len(values) {
					bone.Positions = append(bone.Positions, animation.PositionKey{Time: t, Value: values[v]})
				}
			}
		case gltf.TRSScale:
			values, _ := rawValues.([][3]float32)
			for k, t := range times {
				if v := k*stride + mid; v < len(values) {
					bone.Scales = append(bone.Scales, animation.ScaleKey{Time: t, Value: values[v]})
				}
			}
		case gltf.TRSRotation:
			values, _ := rawValues.([][4]float32)
			for k, t := range times {
				if v := k*stride + mid; v < len(values) {
					q := mgl32.Quat{W: values[v][3], V: mgl32.Vec3{values[v][0], values[v][1], values[v][2]}}
					bone.Rotations = append(bone.Rotations, animation.RotationKey{Time: t, Value: q})
				}
			}
		default:
			continue
		}
		if last := times[len(times)-1]; last > duration {
			duration = last
		}
	}

	name := a.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", ai)
	}
	list := make([]*animation.Bone, 0, len(tracks))
	for name, b := range tracks {
		// Channels animate single TRS paths; the rest keep the node's pose.
		pos, rot, scale := restPose(g.doc.Nodes[targets[name]])
		if len(b.Positions) == 0 {
			b.Positions = []animation.PositionKey{{Value: pos}}
		}
		if len(b.Rotations) == 0 {
			b.Rotations = []animation.RotationKey{{Value: rot}}
		}
		if len(b.Scales) == 0 {
			b.Scales = []animation.ScaleKey{{Value: scale}}
		}
		list = append(list, b)
	}
	// Stable order so unskinned tracks get the same ids on every load.
	slices.SortFunc(list, func(x, y *animation.Bone) int { return strings.Compare(x.Name, y.Name) })
	return animation.New(name, duration, gltfTicksPerSecond, root, list, g.boneInfo), nil
}
