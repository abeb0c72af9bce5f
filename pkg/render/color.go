package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
	ColorSky   = color.RGBA{135, 206, 235, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// FloatColor converts 0-1 RGBA components, as stored in glTF materials.
func FloatColor(c [4]float64) Color {
	return Color{
		R: saturate(c[0] * 255),
		G: saturate(c[1] * 255),
		B: saturate(c[2] * 255),
		A: saturate(c[3] * 255),
	}
}

// saturate clamps v into a channel. NaN maps to 0.
func saturate(v float64) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// MultiplyColor scales the RGB channels by intensity, clamping each to
// 0..255. Alpha is kept.
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: saturate(float64(c.R) * intensity),
		G: saturate(float64(c.G) * intensity),
		B: saturate(float64(c.B) * intensity),
		A: c.A,
	}
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: saturate(math.Round(float64(a.R) + (float64(b.R)-float64(a.R))*t)),
		G: saturate(math.Round(float64(a.G) + (float64(b.G)-float64(a.G))*t)),
		B: saturate(math.Round(float64(a.B) + (float64(b.B)-float64(a.B))*t)),
		A: saturate(math.Round(float64(a.A) + (float64(b.A)-float64(a.A))*t)),
	}
}

// Pack encodes c as 0xRRGGBBAA.
func Pack(c Color) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// Unpack decodes a 0xRRGGBBAA value.
func Unpack(p uint32) Color {
	return Color{R: uint8(p >> 24), G: uint8(p >> 16), B: uint8(p >> 8), A: uint8(p)}
}
