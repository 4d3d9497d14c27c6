package scene

import (
	"bytes"
	"fmt"
	"path/filepath"

	"fortio.org/log"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"physics-playground/core"
	"physics-playground/math"
)

// GLTFResult holds the nodes and textures loaded from a .glb / .gltf file.
// Textures still need a GPU upload on the render thread before drawing.
type GLTFResult struct {
	Roots    []*Node
	Textures []*Texture
}

// Group wraps every root in a single parent node so the model can be placed,
// scaled and detached as one unit.
func (r *GLTFResult) Group(name string) *Node {
	group := NewNode(name)
	for _, root := range r.Roots {
		group.AddChild(root)
	}
	return group
}

// LoadGLTF opens a .glb or .gltf file and builds a scene graph from it.
// Geometry, metallic-roughness materials, base-color textures and the node
// hierarchy are populated. It does not touch the GPU and is safe to call off
// the render thread.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	result := &GLTFResult{}

	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		tex, err := loadGLTFImage(doc, dir, *gt.Source)
		if err != nil {
			log.Warnf("[glTF] %s: image %d: %v", filepath.Base(path), *gt.Source, err)
			continue
		}
		if tex != nil {
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}

	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		matCache[i] = convertGLTFMaterial(gm, texCache)
	}

	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, *prim)
			if err != nil {
				log.Warnf("[glTF] %s: mesh %d prim %d: %v", filepath.Base(path), mi, pi, err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)
		n.CastShadow = true

		t := gn.TranslationOrDefault()
		sc := gn.ScaleOrDefault()
		r := gn.RotationOrDefault() // [x, y, z, w]
		n.Transform = core.Transform{
			Position: math.Vec3FromFloat64(t[0], t[1], t[2]),
			Rotation: math.QuaternionFromFloat64(r[0], r[1], r[2], r[3]),
			Scale:    math.Vec3FromFloat64(sc[0], sc[1], sc[2]),
		}
		n.MarkWorldMatrixDirty()

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				n.Mesh = prims[0]
			default:
				for pi, p := range prims {
					child := NewMeshNode(fmt.Sprintf("%s_prim%d", name, pi), p)
					child.CastShadow = true
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) && nodes[childIdx] != nil {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) && nodes[rootIdx] != nil {
				result.Roots = append(result.Roots, nodes[rootIdx])
			}
		}
	} else {
		for _, n := range nodes {
			if n != nil && n.Parent == nil {
				result.Roots = append(result.Roots, n)
			}
		}
	}

	if len(result.Roots) == 0 {
		return nil, fmt.Errorf("gltf %q: no root nodes", path)
	}
	return result, nil
}

func loadGLTFImage(doc *gltf.Document, dir string, source int) (*Texture, error) {
	img := doc.Images[source]
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("gltf_img_%d", source)
	}
	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, fmt.Errorf("bufferview: %w", err)
		}
		return DecodeTexture(name, bytes.NewReader(raw))
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("embedded: %w", err)
		}
		return DecodeTexture(name, bytes.NewReader(raw))
	case img.URI != "":
		return LoadTexture(filepath.Join(dir, img.URI))
	}
	return nil, nil
}

func convertGLTFMaterial(gm *gltf.Material, texCache []*Texture) *Material {
	mat := NewStandardMaterial(gm.Name, core.ColorWhite, 1, 1)
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Albedo = core.Color{
			R: float32(cf[0]), G: float32(cf[1]),
			B: float32(cf[2]), A: float32(cf[3]),
		}
		mat.Metallic = float32(pbr.MetallicFactorOrDefault())
		mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			idx := pbr.BaseColorTexture.Index
			if idx < len(texCache) && texCache[idx] != nil {
				mat.AlbedoTexture = texCache[idx]
			}
		}
	}
	return mat
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return CreateMeshFromData(name, verts, indices), nil
}
