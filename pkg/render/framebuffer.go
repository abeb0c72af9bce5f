// Package render is a CPU rasterizer: it transforms and culls faces,
// scan-converts them, shades the samples and resolves visibility in a
// depth buffer before handing the result to a Framebuffer.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrUnsupportedFormat is returned by Save for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Framebuffer is the resolved image of a frame.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Resize changes the dimensions, reusing the pixel slice when it is large
// enough. Contents are undefined afterwards.
func (fb *Framebuffer) Resize(width, height int) {
	n := width * height
	if cap(fb.Pixels) < n {
		fb.Pixels = make([]color.RGBA, n)
	}
	fb.Pixels = fb.Pixels[:n]
	fb.Width, fb.Height = width, height
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y); out-of-range writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or transparent black out of range.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// Packed returns the pixels row-major as 0xRRGGBBAA values.
func (fb *Framebuffer) Packed() []uint32 {
	out := make([]uint32, len(fb.Pixels))
	for i, c := range fb.Pixels {
		out[i] = Pack(c)
	}
	return out
}

// ToImage copies the framebuffer into an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// Scaled returns the image enlarged by an integer factor with
// nearest-neighbour sampling, keeping pixels crisp.
func (fb *Framebuffer) Scaled(factor int) *image.RGBA {
	src := fb.ToImage()
	if factor <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, fb.Width*factor, fb.Height*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// DrawLabel writes text with its top-left corner at (x, y) on a filled
// background using the 7x13 basic font.
func (fb *Framebuffer) DrawLabel(x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil() + 2
	h := face.Metrics().Height.Ceil() + 2

	label := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(label, label.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  label,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(1, 1+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	for ly := range h {
		for lx := range w {
			fb.SetPixel(x+lx, y+ly, label.RGBAAt(lx, ly))
		}
	}
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return fb.save(path, func(f *os.File, img image.Image) error { return png.Encode(f, img) }, 1)
}

// SaveBMP saves the framebuffer as a BMP file.
func (fb *Framebuffer) SaveBMP(path string) error {
	return fb.save(path, func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, 1)
}

// Save writes a PNG or BMP chosen by the file extension, upscaled by scale.
func (fb *Framebuffer) Save(path string, scale int) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return fb.save(path, func(f *os.File, img image.Image) error { return png.Encode(f, img) }, scale)
	case ".bmp":
		return fb.save(path, func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, scale)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

func (fb *Framebuffer) save(path string, encode func(*os.File, image.Image) error, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encode(f, fb.Scaled(scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
