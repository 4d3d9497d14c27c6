package playground

// Viewport describes the window and framebuffer sizes after a resize.
type Viewport struct {
	Width, Height                       int
	FramebufferWidth, FramebufferHeight int
	// NativeRatio is framebuffer width over window width.
	NativeRatio float32
	// PixelRatio is NativeRatio capped at the configured maximum.
	PixelRatio float32
}

func NewViewport(width, height, fbWidth, fbHeight int, maxRatio float32) Viewport {
	v := Viewport{
		Width:             width,
		Height:            height,
		FramebufferWidth:  fbWidth,
		FramebufferHeight: fbHeight,
		NativeRatio:       1,
	}
	if width > 0 && fbWidth > 0 {
		v.NativeRatio = float32(fbWidth) / float32(width)
	}
	v.PixelRatio = v.NativeRatio
	if maxRatio > 0 && v.PixelRatio > maxRatio {
		v.PixelRatio = maxRatio
	}
	return v
}

func (v Viewport) Aspect() float32 {
	if v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Offscreen reports whether the scene must render at a reduced size and be
// scaled up to the framebuffer.
func (v Viewport) Offscreen() bool {
	return v.NativeRatio > v.PixelRatio
}

// RenderSize is the size of the color target the scene is drawn into.
func (v Viewport) RenderSize() (int, int) {
	if !v.Offscreen() {
		return v.FramebufferWidth, v.FramebufferHeight
	}
	return int(float32(v.Width) * v.PixelRatio), int(float32(v.Height) * v.PixelRatio)
}
