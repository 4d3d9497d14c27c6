// Package ui draws the toggle panel overlay and turns raw window input into
// per-frame edges.
package ui

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"physics-playground/core"
	"physics-playground/scene"
)

var (
	ColorOn         = core.Color{R: 0.18, G: 0.62, B: 0.25, A: 0.9}
	ColorOff        = core.Color{R: 0.32, G: 0.32, B: 0.34, A: 0.9}
	ColorBackground = core.Color{R: 0.08, G: 0.08, B: 0.1, A: 0.6}
)

const labelPadding = 4

// Quad is one screen-space overlay rectangle, optionally textured. Texture
// alpha is multiplied over Color.
type Quad struct {
	Rect    core.Rect
	Color   core.Color
	Texture *scene.Texture
}

type Button struct {
	Label string
	Rect  core.Rect
	label *scene.Texture
}

// Panel is a vertical column of toggle buttons anchored at the top-left.
type Panel struct {
	Buttons []Button
	Bounds  core.Rect
	Padding float32
}

// NewPanel lays out one button per label starting at (x, y).
func NewPanel(labels []string, x, y, width, height, gap float32) *Panel {
	p := &Panel{Padding: gap}
	for i, l := range labels {
		p.Buttons = append(p.Buttons, Button{
			Label: l,
			Rect:  core.Rect{X: x, Y: y + float32(i)*(height+gap), Width: width, Height: height},
			label: LabelTexture(l),
		})
	}
	n := float32(len(labels))
	p.Bounds = core.Rect{
		X:      x - gap,
		Y:      y - gap,
		Width:  width + 2*gap,
		Height: n*height + (n+1)*gap,
	}
	return p
}

// HitTest returns the index of the button under (x, y).
func (p *Panel) HitTest(x, y float32) (int, bool) {
	for i, b := range p.Buttons {
		if b.Rect.Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether (x, y) falls anywhere on the panel background.
func (p *Panel) Contains(x, y float32) bool {
	return p.Bounds.Contains(x, y)
}

// Quads returns the overlay for this frame, back to front. on reports whether
// button i is active.
func (p *Panel) Quads(on func(i int) bool) []Quad {
	quads := make([]Quad, 0, 1+2*len(p.Buttons))
	quads = append(quads, Quad{Rect: p.Bounds, Color: ColorBackground})
	for i, b := range p.Buttons {
		c := ColorOff
		if on(i) {
			c = ColorOn
		}
		quads = append(quads, Quad{Rect: b.Rect, Color: c})
		if b.label == nil {
			continue
		}
		w, h := float32(b.label.Width), float32(b.label.Height)
		quads = append(quads, Quad{
			Rect: core.Rect{
				X:      b.Rect.X + labelPadding,
				Y:      b.Rect.Y + (b.Rect.Height-h)/2,
				Width:  min(w, b.Rect.Width-labelPadding),
				Height: h,
			},
			Color:   core.ColorWhite,
			Texture: b.label,
		})
	}
	return quads
}

// LabelTexture rasterizes text in white on a transparent background.
func LabelTexture(text string) *scene.Texture {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	if w == 0 {
		return nil
	}
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = img
	d.Src = image.NewUniform(color.White)
	d.Dot = fixed.Point26_6{X: 0, Y: m.Ascent}
	d.DrawString(text)
	return scene.TextureFromImage("label:"+text, img)
}
