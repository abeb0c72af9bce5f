package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/objviewer/pkg/math3d"
)

// ColorMap returns the surface color at a texture coordinate in [0,1]².
type ColorMap interface {
	ColorAt(u, v float64) Color
}

// NormalMap returns a surface normal at a texture coordinate.
type NormalMap interface {
	NormalAt(u, v float64) math3d.Vec3
}

// SpecularMap returns a specular scale in [0,1] at a texture coordinate.
type SpecularMap interface {
	SpecularAt(u, v float64) float64
}

// PlainColor is a ColorMap with one color everywhere.
type PlainColor Color

func (c PlainColor) ColorAt(float64, float64) Color { return Color(c) }

// ConstSpecular is a SpecularMap with one value everywhere.
type ConstSpecular float64

func (s ConstSpecular) SpecularAt(float64, float64) float64 { return float64(s) }

// ConstNormal is a NormalMap with one direction everywhere.
type ConstNormal math3d.Vec3

func (n ConstNormal) NormalAt(float64, float64) math3d.Vec3 { return math3d.Vec3(n) }

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture is a decoded image sampled with v = 0 at the bottom row.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color // Row-major, row 0 at the top
	Wrap       WrapMode
	FilterMode FilterMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
		Wrap:   WrapClamp,
	}
}

// LoadImage decodes a PNG, JPEG, BMP, TIFF or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// LoadTexture loads a texture from an image file.
func LoadTexture(path string) (*Texture, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return TextureFromImage(img), nil
}

// TextureFromImage copies img into a texture.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.Pixels[y*tex.Width+x] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			c := c2
			if (x/checkSize+y/checkSize)%2 == 0 {
				c = c1
			}
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}

func (t *Texture) pixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// ColorAt implements ColorMap.
func (t *Texture) ColorAt(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	u, v = t.wrap(u), t.wrap(v)
	if t.FilterMode == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	// pixel (u·(w−1), (1−v)·(h−1))
	return t.pixel(int(u*float64(t.Width-1)), int((1-v)*float64(t.Height-1)))
}

func (t *Texture) wrap(c float64) float64 {
	if t.Wrap == WrapRepeat {
		if c == 1 {
			return 1
		}
		return c - math.Floor(c)
	}
	return math.Max(0, math.Min(1, c))
}

func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u * float64(t.Width-1)
	fy := (1 - v) * float64(t.Height-1)

	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	x1, y1 := min(x0+1, t.Width-1), min(y0+1, t.Height-1)
	tx, ty := fx-float64(x0), fy-float64(y0)

	top := lerpColor(t.pixel(x0, y0), t.pixel(x1, y0), tx)
	bot := lerpColor(t.pixel(x0, y1), t.pixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

// ImageNormalMap decodes tangent-free normals stored as RGB, each channel
// mapping 0..255 to -1..1.
type ImageNormalMap struct {
	*Texture
}

// NormalAt implements NormalMap.
func (m ImageNormalMap) NormalAt(u, v float64) math3d.Vec3 {
	c := m.ColorAt(u, v)
	return math3d.V3(
		float64(c.R)/127.5-1,
		float64(c.G)/127.5-1,
		float64(c.B)/127.5-1,
	).Normalize()
}

// ImageSpecularMap reads the specular scale from the blue channel.
type ImageSpecularMap struct {
	*Texture
}

// SpecularAt implements SpecularMap.
func (m ImageSpecularMap) SpecularAt(u, v float64) float64 {
	return float64(m.ColorAt(u, v).B) / 255
}

// Maps bundles the optional texture inputs of the textured shader. Nil
// members fall back to the face color, the interpolated normal and a
// specular scale of 1.
type Maps struct {
	Color    ColorMap
	Normal   NormalMap
	Specular SpecularMap
}
