package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"fortio.org/log"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"physics-playground/scene"
)

// ErrAssetLoad wraps every load failure. Callers treat it as non-fatal.
var ErrAssetLoad = errors.New("asset load failed")

// Loader resolves asset paths under Root and decodes them off the render
// thread. Results carry CPU-side data only; GPU upload happens on the thread
// owning the GL context.
type Loader struct {
	Root string
}

func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// Path joins rel onto the asset root.
func (l *Loader) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(l.Root, rel)
}

func loadError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrAssetLoad, path, err)
}

// LoadTexture decodes a PNG or JPEG.
func (l *Loader) LoadTexture(ctx context.Context, rel string) *Future[*scene.Texture] {
	path := l.Path(rel)
	return Go(ctx, func(ctx context.Context) (*scene.Texture, error) {
		if err := ctx.Err(); err != nil {
			return nil, loadError(path, err)
		}
		tex, err := scene.LoadTexture(path)
		if err != nil {
			return nil, loadError(path, err)
		}
		log.Debugf("[Assets] texture %s %dx%d", rel, tex.Width, tex.Height)
		return tex, nil
	})
}

// LoadModel parses a glTF / GLB file and its images.
func (l *Loader) LoadModel(ctx context.Context, rel string) *Future[*scene.GLTFResult] {
	path := l.Path(rel)
	return Go(ctx, func(ctx context.Context) (*scene.GLTFResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, loadError(path, err)
		}
		res, err := scene.LoadGLTF(path)
		if err != nil {
			return nil, loadError(path, err)
		}
		log.Debugf("[Assets] model %s: %d roots, %d textures", rel, len(res.Roots), len(res.Textures))
		return res, nil
	})
}

// LoadCubeTexture loads the six faces dir/{px,nx,py,ny,pz,nz}.ext
// concurrently. Faces of differing sizes are resampled to the largest one.
func (l *Loader) LoadCubeTexture(ctx context.Context, dir, ext string) *Future[*scene.CubeTexture] {
	base := l.Path(dir)
	return Go(ctx, func(ctx context.Context) (*scene.CubeTexture, error) {
		cube, err := loadCube(ctx, base, ext)
		if err != nil {
			return nil, loadError(base, err)
		}
		log.Debugf("[Assets] cube map %s %dpx", dir, cube.Size)
		return cube, nil
	})
}

func loadCube(ctx context.Context, dir, ext string) (*scene.CubeTexture, error) {
	var faces [6]image.Image
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range scene.CubeFaceNames {
		path := filepath.Join(dir, name+"."+ext)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeImage(path)
			if err != nil {
				return err
			}
			faces[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cubeFromImages(filepath.Base(dir), faces), nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// cubeFromImages builds a cube texture whose faces are square and of equal
// size.
func cubeFromImages(name string, faces [6]image.Image) *scene.CubeTexture {
	size := 0
	for _, img := range faces {
		b := img.Bounds()
		size = max(size, b.Dx(), b.Dy())
	}
	cube := &scene.CubeTexture{Name: name, Size: size}
	for i, img := range faces {
		b := img.Bounds()
		if b.Dx() != size || b.Dy() != size {
			dst := image.NewRGBA(image.Rect(0, 0, size, size))
			xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
			img = dst
		}
		cube.Faces[i] = scene.TextureFromImage(name+"_"+scene.CubeFaceNames[i], img)
	}
	return cube
}
