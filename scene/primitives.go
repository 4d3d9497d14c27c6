package scene

import (
	"github.com/chewxy/math32"

	"physics-playground/core"
	"physics-playground/math"
)

// CreateSphere generates a UV sphere centred on the origin.
func CreateSphere(radius float32, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	vertices := make([]core.Vertex, 0, (widthSegments+1)*(heightSegments+1))
	indices := make([]uint32, 0, widthSegments*heightSegments*6)

	for ring := 0; ring <= heightSegments; ring++ {
		sinPhi, cosPhi := math32.Sincos(float32(ring) * math32.Pi / float32(heightSegments))

		for seg := 0; seg <= widthSegments; seg++ {
			sinTheta, cosTheta := math32.Sincos(float32(seg) * 2 * math32.Pi / float32(widthSegments))

			normal := math.Vec3{X: -sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(widthSegments), Y: 1 - float32(ring)/float32(heightSegments)},
				Color:    core.ColorWhite,
			})
		}
	}

	stride := uint32(widthSegments + 1)
	for ring := 0; ring < heightSegments; ring++ {
		for seg := 0; seg < widthSegments; seg++ {
			a := uint32(ring)*stride + uint32(seg)
			b := a + stride
			if ring != 0 {
				indices = append(indices, a, b, a+1)
			}
			if ring != heightSegments-1 {
				indices = append(indices, a+1, b, b+1)
			}
		}
	}

	return CreateMeshFromData("Sphere", vertices, indices)
}

type boxFace struct {
	normal, u, v math.Vec3
}

var boxFaces = [6]boxFace{
	{normal: math.Vec3{X: 1}, u: math.Vec3{Z: -1}, v: math.Vec3{Y: 1}},
	{normal: math.Vec3{X: -1}, u: math.Vec3{Z: 1}, v: math.Vec3{Y: 1}},
	{normal: math.Vec3{Y: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: -1}},
	{normal: math.Vec3{Y: -1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: 1}},
	{normal: math.Vec3{Z: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Y: 1}},
	{normal: math.Vec3{Z: -1}, u: math.Vec3{X: -1}, v: math.Vec3{Y: 1}},
}

// CreateBox generates an axis-aligned box with per-face normals and UVs.
func CreateBox(width, height, depth float32) *Mesh {
	half := math.Vec3{X: width / 2, Y: height / 2, Z: depth / 2}
	scale := func(v math.Vec3) math.Vec3 {
		return math.Vec3{X: v.X * half.X, Y: v.Y * half.Y, Z: v.Z * half.Z}
	}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, f := range boxFaces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1]))
			vertices = append(vertices, core.Vertex{
				Position: scale(p),
				Normal:   f.normal,
				UV:       math.Vec2{X: (c[0] + 1) / 2, Y: (c[1] + 1) / 2},
				Color:    core.ColorWhite,
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}

	return CreateMeshFromData("Box", vertices, indices)
}

// CreatePlane generates a plane in the XY plane facing +Z. Rotate the node
// -90° about X to lay it flat.
func CreatePlane(width, height float32) *Mesh {
	hw, hh := width/2, height/2
	normal := math.Vec3Front
	vertices := []core.Vertex{
		{Position: math.Vec3{X: -hw, Y: -hh}, Normal: normal, UV: math.Vec2{X: 0, Y: 0}, Color: core.ColorWhite},
		{Position: math.Vec3{X: hw, Y: -hh}, Normal: normal, UV: math.Vec2{X: 1, Y: 0}, Color: core.ColorWhite},
		{Position: math.Vec3{X: hw, Y: hh}, Normal: normal, UV: math.Vec2{X: 1, Y: 1}, Color: core.ColorWhite},
		{Position: math.Vec3{X: -hw, Y: hh}, Normal: normal, UV: math.Vec2{X: 0, Y: 1}, Color: core.ColorWhite},
	}
	indices := []uint32{0, 1, 2, 2, 3, 0}
	return CreateMeshFromData("Plane", vertices, indices)
}
