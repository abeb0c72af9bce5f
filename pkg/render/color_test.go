package render

import (
	"math"
	"testing"
)

func TestMultiplyColor(t *testing.T) {
	tests := []struct {
		name      string
		c         Color
		intensity float64
		expected  Color
	}{
		{"identity", RGB(10, 20, 30), 1, RGB(10, 20, 30)},
		{"half", RGB(200, 100, 50), 0.5, RGB(100, 50, 25)},
		{"saturates", RGB(200, 200, 200), 2, RGB(255, 255, 255)},
		{"negative", RGB(200, 200, 200), -1, RGB(0, 0, 0)},
		{"nan", RGB(200, 200, 200), math.NaN(), RGB(0, 0, 0)},
		{"keeps alpha", Color{R: 100, G: 100, B: 100, A: 7}, 0.5, Color{R: 50, G: 50, B: 50, A: 7}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MultiplyColor(tc.c, tc.intensity); got != tc.expected {
				t.Errorf("got %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestFloatColor(t *testing.T) {
	got := FloatColor([4]float64{1, 0.5, 0, 1})
	if want := (Color{R: 255, G: 127, B: 0, A: 255}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPackUnpack(t *testing.T) {
	c := Color{R: 0x12, G: 0x34, B: 0x56, A: 0x78}
	if p := Pack(c); p != 0x12345678 {
		t.Errorf("Pack = %#x, want 0x12345678", p)
	}
	if got := Unpack(Pack(c)); got != c {
		t.Errorf("Unpack(Pack(c)) = %v, want %v", got, c)
	}
}

func TestLerpColor(t *testing.T) {
	got := lerpColor(RGB(0, 100, 200), RGB(100, 200, 0), 0.5)
	if want := RGB(50, 150, 100); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
