package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
}

// CubeFace indexes the six faces of a cube map in OpenGL order.
type CubeFace int

const (
	CubePosX CubeFace = iota
	CubeNegX
	CubePosY
	CubeNegY
	CubePosZ
	CubeNegZ
)

// CubeFaceNames are the file stems used for the six faces, in CubeFace order.
var CubeFaceNames = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

// CubeTexture is a six-face environment map. All faces share one square size.
type CubeTexture struct {
	Name  string
	Size  int
	Faces [6]*Texture
	// GLID is set by opengl.UploadCubeTexture.
	GLID uint32
}

// LoadTexture reads a PNG or JPEG file from disk and returns a CPU-side Texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	tex, err := DecodeTexture(path, f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes any registered image format into RGBA8.
func DecodeTexture(name string, r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return TextureFromImage(name, img), nil
}

// TextureFromImage converts img to an RGBA8 texture.
func TextureFromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	}
	return &Texture{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: rgba.Pix,
	}
}
