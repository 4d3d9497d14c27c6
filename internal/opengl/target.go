package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is an offscreen color+depth framebuffer. The scene is drawn
// into it at the capped pixel ratio and then scaled onto the window.
type RenderTarget struct {
	FBO      uint32
	ColorTex uint32
	DepthRBO uint32
	Width    int32
	Height   int32
}

func NewRenderTarget(width, height int) (*RenderTarget, error) {
	t := &RenderTarget{}
	if err := t.alloc(width, height); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *RenderTarget) alloc(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render target size %dx%d", width, height)
	}
	t.Width = int32(width)
	t.Height = int32(height)

	gl.GenTextures(1, &t.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, t.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, t.Width, t.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenRenderbuffers(1, &t.DepthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.DepthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, t.Width, t.Height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.ColorTex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.DepthRBO)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		t.free()
		return fmt.Errorf("offscreen FBO incomplete: status=0x%X", status)
	}
	return nil
}

func (t *RenderTarget) free() {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
		t.FBO = 0
	}
	if t.ColorTex != 0 {
		gl.DeleteTextures(1, &t.ColorTex)
		t.ColorTex = 0
	}
	if t.DepthRBO != 0 {
		gl.DeleteRenderbuffers(1, &t.DepthRBO)
		t.DepthRBO = 0
	}
}

// Resize reallocates the target when the size changed.
func (t *RenderTarget) Resize(width, height int) error {
	if int32(width) == t.Width && int32(height) == t.Height {
		return nil
	}
	t.free()
	return t.alloc(width, height)
}

// Blit scales the color buffer onto the default framebuffer.
func (t *RenderTarget) Blit(dstW, dstH int32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.FBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, t.Width, t.Height, 0, 0, dstW, dstH, gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (t *RenderTarget) Destroy() {
	t.free()
}
