package palette

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/math"
)

// Srgb is an opaque colour with channels in [0, 1].
type Srgb struct {
	R, G, B float32
}

// Rgba is a colour with alpha, channels in [0, 1].
type Rgba struct {
	R, G, B, A float32
}

var (
	White = Rgba{1, 1, 1, 1}
	Black = Rgba{0, 0, 0, 1}
)

func NewSrgb(r, g, b float32) Srgb {
	return Srgb{R: math.Saturate(r), G: math.Saturate(g), B: math.Saturate(b)}
}

func NewRgba(r, g, b, a float32) Rgba {
	return Rgba{R: math.Saturate(r), G: math.Saturate(g), B: math.Saturate(b), A: math.Saturate(a)}
}

// SrgbFromArray is used by configuration loading.
func SrgbFromArray(c [3]float32) Srgb {
	return NewSrgb(c[0], c[1], c[2])
}

func (c Srgb) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

func (c Srgb) Rgba(alpha float32) Rgba {
	return NewRgba(c.R, c.G, c.B, alpha)
}

func (c Rgba) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

func (c Rgba) Srgb() Srgb {
	return Srgb{R: c.R, G: c.G, B: c.B}
}

// Scale multiplies the colour channels by k, keeping them in range.
func (c Srgb) Scale(k float32) Srgb {
	return NewSrgb(c.R*k, c.G*k, c.B*k)
}
