package render

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
)

func TestFramebufferPixels(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorWhite)
	fb.SetPixel(2, 1, ColorRed)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(3, 0, ColorRed)

	if got := fb.GetPixel(2, 1); got != ColorRed {
		t.Errorf("GetPixel(2,1) = %v, want red", got)
	}
	if got := fb.GetPixel(5, 5); got != (Color{}) {
		t.Errorf("GetPixel out of range = %v, want zero", got)
	}

	packed := fb.Packed()
	want := []uint32{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff, 0xff0000ff}
	if len(packed) != len(want) {
		t.Fatalf("got %d values, want %d", len(packed), len(want))
	}
	for i := range want {
		if packed[i] != want[i] {
			t.Errorf("packed[%d] = %#x, want %#x", i, packed[i], want[i])
		}
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Resize(2, 3)
	if fb.Width != 2 || fb.Height != 3 || len(fb.Pixels) != 6 {
		t.Errorf("got %dx%d with %d pixels, want 2x3 with 6", fb.Width, fb.Height, len(fb.Pixels))
	}
	fb.Resize(10, 10)
	if len(fb.Pixels) != 100 {
		t.Errorf("got %d pixels, want 100", len(fb.Pixels))
	}
}

func TestFramebufferScaled(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Clear(ColorBlue)
	fb.SetPixel(1, 0, ColorRed)

	img := fb.Scaled(3)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Fatalf("bounds = %v, want 6x6", b)
	}
	for _, p := range []image.Point{{3, 0}, {5, 2}} {
		if got := img.RGBAAt(p.X, p.Y); got != ColorRed {
			t.Errorf("pixel %v = %v, want red", p, got)
		}
	}
	if got := img.RGBAAt(2, 2); got != ColorBlue {
		t.Errorf("pixel (2,2) = %v, want blue", got)
	}

	if b := fb.Scaled(0).Bounds(); b.Dx() != 2 {
		t.Errorf("Scaled(0) width = %d, want 2", b.Dx())
	}
}

func TestFramebufferDrawLabel(t *testing.T) {
	fb := NewFramebuffer(80, 20)
	fb.Clear(ColorWhite)
	fb.DrawLabel(2, 2, "faces 12", ColorRed, ColorBlack)

	var red, black int
	for _, c := range fb.Pixels {
		switch c {
		case ColorRed:
			red++
		case ColorBlack:
			black++
		}
	}
	if red == 0 {
		t.Error("no glyph pixels drawn")
	}
	if black == 0 {
		t.Error("no background pixels drawn")
	}
	if got := fb.GetPixel(2, 2); got != ColorBlack {
		t.Errorf("label corner = %v, want background", got)
	}
	if got := fb.GetPixel(0, 0); got != ColorWhite {
		t.Errorf("pixel outside label = %v, want white", got)
	}

	// Labels running off the edge are clipped.
	fb.DrawLabel(75, 15, "clipped", ColorRed, ColorBlack)
}

func TestFramebufferSave(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	fb.Clear(ColorSky)
	dir := t.TempDir()

	tests := []struct {
		name  string
		file  string
		scale int
		w, h  int
	}{
		{"png", "out.png", 1, 4, 3},
		{"bmp", "out.bmp", 1, 4, 3},
		{"scaled png", "big.PNG", 2, 8, 6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			if err := fb.Save(path, tc.scale); err != nil {
				t.Fatalf("Save: %v", err)
			}
			img, err := LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tc.w || b.Dy() != tc.h {
				t.Errorf("saved size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tc.w, tc.h)
			}
			r, g, b, _ := img.At(0, 0).RGBA()
			if uint8(r>>8) != ColorSky.R || uint8(g>>8) != ColorSky.G || uint8(b>>8) != ColorSky.B {
				t.Errorf("saved color = %d,%d,%d, want %v", r>>8, g>>8, b>>8, ColorSky)
			}
		})
	}

	err := fb.Save(filepath.Join(dir, "out.gif"), 1)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.gif")); !os.IsNotExist(statErr) {
		t.Error("unsupported format still created a file")
	}

	if err := fb.SavePNG(filepath.Join(dir, "missing", "x.png")); err == nil {
		t.Error("expected error for a missing directory")
	}
	if err := fb.SaveBMP(filepath.Join(dir, "plain.bmp")); err != nil {
		t.Errorf("SaveBMP: %v", err)
	}
}

func TestFramebufferDraw(t *testing.T) {
	fb := NewFramebuffer(3, 4)
	fb.Clear(ColorWhite)
	fb.SetPixel(1, 0, ColorRed)
	fb.SetPixel(1, 1, ColorBlue)
	fb.SetPixel(2, 3, Color{})

	scr := uv.NewScreenBuffer(5, 2)
	fb.Draw(scr, uv.Rect(0, 0, 5, 2))

	cell := scr.CellAt(1, 0)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell (1,0) = %+v, want a half block", cell)
	}
	if cell.Style.Fg != ColorRed || cell.Style.Bg != ColorBlue {
		t.Errorf("cell (1,0) colors = %v/%v, want red/blue", cell.Style.Fg, cell.Style.Bg)
	}

	// A transparent pixel falls back to the terminal default.
	if bg := scr.CellAt(2, 1).Style.Bg; bg != nil {
		t.Errorf("transparent pixel background = %v, want nil", bg)
	}
	// Columns past the framebuffer width are left alone.
	if c := scr.CellAt(4, 0); c != nil && c.Content == "▀" {
		t.Error("drew past the framebuffer width")
	}
}
