package core

import (
	"physics-playground/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
)

// ColorHex converts a packed 0xRRGGBB value to an opaque Color.
func ColorHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}

type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

func (t Transform) GetMatrix() math.Mat4 {
	return math.Mat4TRS(t.Position, t.Rotation, t.Scale)
}

// Rect is a screen-space rectangle in window coordinates, origin top-left.
type Rect struct {
	X, Y, Width, Height float32
}

func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
