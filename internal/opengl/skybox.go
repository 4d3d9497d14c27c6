package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"physics-playground/math"
)

// Skybox draws an environment cube map on an inverted unit cube. The vertex
// shader forces every fragment to NDC depth 1.0, so the sky always sits
// behind scene geometry.
type Skybox struct {
	vao  uint32
	vbo  uint32
	prog uint32

	vpLoc  int32
	envLoc int32
}

// ── Shaders ───────────────────────────────────────────────────────────────────

const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 skyVP;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = skyVP * vec4(inPosition, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

const skyFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;

uniform samplerCube env;

void main() {
    outColor = vec4(texture(env, fragDir).rgb, 1.0);
}
` + "\x00"

// ── Cube geometry ─────────────────────────────────────────────────────────────

// skyboxVerts returns the 36 corner positions of a unit cube, two triangles
// per face. Winding does not matter since culling is off.
func skyboxVerts() []float32 {
	faces := [6][3]math.Vec3{
		{{X: 1}, {Z: -1}, {Y: 1}},
		{{X: -1}, {Z: 1}, {Y: 1}},
		{{Y: 1}, {X: 1}, {Z: -1}},
		{{Y: -1}, {X: 1}, {Z: 1}},
		{{Z: 1}, {X: 1}, {Y: 1}},
		{{Z: -1}, {X: -1}, {Y: 1}},
	}
	corners := [6][2]float32{{-1, -1}, {1, -1}, {1, 1}, {1, 1}, {-1, 1}, {-1, -1}}

	verts := make([]float32, 0, 36*3)
	for _, f := range faces {
		n, u, v := f[0], f[1], f[2]
		for _, c := range corners {
			p := n.Add(u.Mul(c[0])).Add(v.Mul(c[1]))
			verts = append(verts, p.X, p.Y, p.Z)
		}
	}
	return verts
}

// ── Constructor ───────────────────────────────────────────────────────────────

func NewSkybox() (*Skybox, error) {
	prog, err := newProgram(skyVertSrc, skyFragSrc)
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}

	sb := &Skybox{
		prog:   prog,
		vpLoc:  gl.GetUniformLocation(prog, gl.Str("skyVP\x00")),
		envLoc: gl.GetUniformLocation(prog, gl.Str("env\x00")),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(sb.envLoc, 0)

	verts := skyboxVerts()
	gl.GenVertexArrays(1, &sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindVertexArray(sb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return sb, nil
}

// ── Draw ──────────────────────────────────────────────────────────────────────

// Draw renders cube map tex. skyVP must be view×proj with the view's
// translation row zeroed.
func (sb *Skybox) Draw(tex uint32, skyVP math.Mat4) {
	// LEQUAL so depth=1.0 fragments pass against the cleared depth; no writes.
	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)

	gl.UseProgram(sb.prog)
	gl.UniformMatrix4fv(sb.vpLoc, 1, false, &skyVP[0][0])
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)

	gl.BindVertexArray(sb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

func (sb *Skybox) Destroy() {
	gl.DeleteVertexArrays(1, &sb.vao)
	gl.DeleteBuffers(1, &sb.vbo)
	gl.DeleteProgram(sb.prog)
}
