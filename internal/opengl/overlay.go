package opengl

import (
	"fmt"

	"fortio.org/log"
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"physics-playground/ui"
)

const overlayVertSrc = `
#version 410 core
layout(location = 0) in vec2 inPos;
layout(location = 1) in vec2 inUV;
layout(location = 2) in vec4 inColor;

out vec2 fragUV;
out vec4 fragColor;

void main() {
    gl_Position = vec4(inPos, 0.0, 1.0);
    fragUV      = inUV;
    fragColor   = inColor;
}
` + "\x00"

const overlayFragSrc = `
#version 410 core
in vec2 fragUV;
in vec4 fragColor;
out vec4 outColor;

uniform sampler2D tex;
uniform bool      hasTex;

void main() {
    vec4 c = fragColor;
    if (hasTex) {
        c *= texture(tex, fragUV);
    }
    outColor = c;
}
` + "\x00"

// floats per overlay vertex: pos(2) uv(2) color(4)
const overlayStride = 8

// Overlay draws screen-space quads over the finished frame. Quads share one
// dynamic buffer and are drawn in order, so later quads land on top.
type Overlay struct {
	prog      uint32
	vao       uint32
	vbo       uint32
	hasTexLoc int32
	vboCap    int // in vertices

	buf []float32
}

func NewOverlay() (*Overlay, error) {
	prog, err := newProgram(overlayVertSrc, overlayFragSrc)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}
	o := &Overlay{
		prog:      prog,
		hasTexLoc: gl.GetUniformLocation(prog, gl.Str("hasTex\x00")),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("tex\x00")), 0)

	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	stride := int32(overlayStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(4*4))
	gl.BindVertexArray(0)
	return o, nil
}

// Draw renders quads given in window coordinates onto a framebuffer of
// fbW×fbH pixels. scale converts window coordinates to framebuffer pixels.
// Label textures are uploaded on first use.
func (o *Overlay) Draw(quads []ui.Quad, fbW, fbH, scale float32) {
	if len(quads) == 0 || fbW <= 0 || fbH <= 0 {
		return
	}

	o.buf = o.buf[:0]
	for _, q := range quads {
		x0 := q.Rect.X*scale/fbW*2 - 1
		x1 := (q.Rect.X+q.Rect.Width)*scale/fbW*2 - 1
		y0 := 1 - q.Rect.Y*scale/fbH*2
		y1 := 1 - (q.Rect.Y+q.Rect.Height)*scale/fbH*2

		// clipped labels sample only the visible part
		u1, v1 := float32(1), float32(1)
		if t := q.Texture; t != nil && t.Width > 0 {
			u1 = min(1, q.Rect.Width/float32(t.Width))
		}
		c := q.Color
		corner := func(x, y, u, v float32) {
			o.buf = append(o.buf, x, y, u, v, c.R, c.G, c.B, c.A)
		}
		corner(x0, y0, 0, 0)
		corner(x1, y0, u1, 0)
		corner(x1, y1, u1, v1)
		corner(x1, y1, u1, v1)
		corner(x0, y1, 0, v1)
		corner(x0, y0, 0, 0)
	}

	n := len(o.buf) / overlayStride
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	if n > o.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(o.buf)*4, gl.Ptr(o.buf), gl.DYNAMIC_DRAW)
		o.vboCap = n
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(o.buf)*4, gl.Ptr(o.buf))
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(o.prog)
	gl.BindVertexArray(o.vao)
	gl.ActiveTexture(gl.TEXTURE0)

	for i, q := range quads {
		if q.Texture != nil && q.Texture.GLID == 0 {
			if err := UploadTexture(q.Texture); err != nil {
				log.Warnf("[OpenGL] overlay texture %s: %v", q.Texture.Name, err)
			}
		}
		if q.Texture != nil && q.Texture.GLID != 0 {
			gl.BindTexture(gl.TEXTURE_2D, q.Texture.GLID)
			gl.Uniform1i(o.hasTexLoc, 1)
		} else {
			gl.Uniform1i(o.hasTexLoc, 0)
		}
		gl.DrawArrays(gl.TRIANGLES, int32(i*6), 6)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *Overlay) Destroy() {
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteBuffers(1, &o.vbo)
	gl.DeleteProgram(o.prog)
}
