package scene

import "physics-playground/core"

// Shading selects the lighting model used for a material.
type Shading int

const (
	// ShadingStandard is metallic-roughness (Cook-Torrance) shading.
	ShadingStandard Shading = iota
	// ShadingPhong is Blinn-Phong with a specular highlight.
	ShadingPhong
	// ShadingLambert is diffuse only.
	ShadingLambert
	// ShadingUnlit outputs the base color untouched.
	ShadingUnlit
)

func (s Shading) String() string {
	switch s {
	case ShadingStandard:
		return "standard"
	case ShadingPhong:
		return "phong"
	case ShadingLambert:
		return "lambert"
	case ShadingUnlit:
		return "unlit"
	}
	return "unknown"
}

// Material describes surface appearance properties for a mesh.
type Material struct {
	Name    string
	Shading Shading
	Albedo  core.Color // multiplied with AlbedoTexture when set

	// Phong
	Specular  core.Color
	Shininess float32

	// Standard
	Metallic  float32
	Roughness float32

	// Wireframe draws the triangles as lines. It is a property of the
	// material, so swapping materials swaps the wireframe state with it.
	Wireframe bool
	// FlatShading uses per-face normals derived from screen-space derivatives.
	FlatShading bool

	// Optional albedo texture; upload via opengl.UploadTexture before rendering.
	AlbedoTexture *Texture

	// Optional environment cube map sampled along the reflected view vector.
	EnvMap          *CubeTexture
	EnvMapIntensity float32
}

// DefaultMaterial returns a plain white standard material.
func DefaultMaterial() *Material {
	return NewStandardMaterial("Default", core.ColorWhite, 0, 0.5)
}

// NewStandardMaterial creates a metallic-roughness material.
func NewStandardMaterial(name string, albedo core.Color, metallic, roughness float32) *Material {
	return &Material{
		Name:            name,
		Shading:         ShadingStandard,
		Albedo:          albedo,
		Metallic:        metallic,
		Roughness:       roughness,
		EnvMapIntensity: 1,
	}
}

// NewPhongMaterial creates a Blinn-Phong material with the given albedo color.
func NewPhongMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:      name,
		Shading:   ShadingPhong,
		Albedo:    albedo,
		Specular:  core.Color{R: 0.07, G: 0.07, B: 0.07, A: 1},
		Shininess: 30,
	}
}

// NewLambertMaterial creates a diffuse-only material, optionally textured.
func NewLambertMaterial(name string, albedo core.Color, tex *Texture) *Material {
	return &Material{
		Name:          name,
		Shading:       ShadingLambert,
		Albedo:        albedo,
		AlbedoTexture: tex,
	}
}
