package render

import "runtime"

// Options configures a Renderer.
type Options struct {
	// Depth buffer allocation; window sizes above it are refused.
	CapacityWidth  int
	CapacityHeight int

	// Blank fills pixels no face covers.
	Blank Color

	// Workers bounds the goroutines shading faces. 1 renders sequentially.
	Workers int
	// BatchSize is the number of faces handed to a worker at once.
	BatchSize int

	Shading     ShadingMode
	Line        LineAlgorithm
	StrokeColor Color
	// BaseColor is used for faces without a material.
	BaseColor Color
	Maps      Maps

	// ScreenMirror maps pixels to (width−x, height−y) after the viewport
	// transform, turning the image by 180 degrees.
	ScreenMirror bool
	// FrustumCull skips objects whose bounds lie outside the view volume.
	FrustumCull bool
}

// DefaultOptions returns a 3840x2160 white-cleared Phong setup using every
// CPU.
func DefaultOptions() Options {
	return Options{
		CapacityWidth:  3840,
		CapacityHeight: 2160,
		Blank:          ColorWhite,
		Workers:        runtime.GOMAXPROCS(0),
		BatchSize:      64,
		Shading:        ShadePhong,
		Line:           LineDDA,
		StrokeColor:    ColorBlack,
		BaseColor:      ColorGray,
		ScreenMirror:   true,
		FrustumCull:    true,
	}
}
