package opengl

import (
	"errors"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"physics-playground/scene"
)

// ErrEmptyTexture is returned when a texture has no pixel data to upload.
var ErrEmptyTexture = errors.New("texture has no pixel data")

// UploadTexture uploads a scene.Texture to the GPU and sets its GLID field.
// The OpenGL context must be current. Uploading twice is a no-op.
func UploadTexture(tex *scene.Texture) error {
	if tex == nil {
		return fmt.Errorf("nil texture")
	}
	if tex.GLID != 0 {
		return nil
	}
	if len(tex.Pixels) == 0 || len(tex.Pixels) < tex.Width*tex.Height*4 {
		return fmt.Errorf("%q: %w", tex.Name, ErrEmptyTexture)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// UploadCubeTexture uploads the six faces of env as one cube map and sets
// its GLID field. Every face must be square and env.Size wide.
func UploadCubeTexture(env *scene.CubeTexture) error {
	if env == nil {
		return fmt.Errorf("nil cube texture")
	}
	if env.GLID != 0 {
		return nil
	}
	for i, face := range env.Faces {
		if face == nil || len(face.Pixels) < env.Size*env.Size*4 {
			return fmt.Errorf("%q face %s: %w", env.Name, scene.CubeFaceNames[i], ErrEmptyTexture)
		}
		if face.Width != env.Size || face.Height != env.Size {
			return fmt.Errorf("%q face %s is %dx%d, want %dx%d", env.Name, scene.CubeFaceNames[i],
				face.Width, face.Height, env.Size, env.Size)
		}
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, face := range env.Faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
			int32(env.Size), int32(env.Size), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(face.Pixels))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	env.GLID = id
	return nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

func DeleteCubeTexture(env *scene.CubeTexture) {
	if env == nil || env.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &env.GLID)
	env.GLID = 0
}
